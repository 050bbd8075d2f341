package formatters

import (
	"fmt"
	"regexp"
	"strings"
)

// Message is one chat completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Formatter turns a piece of resume text into a chat prompt and cleans the
// model's reply.
type Formatter interface {
	Messages(text string) []Message
	Clean(output string) string
}

const systemPrompt = "You are an experienced resume editor. Reply with the rewritten text only: no preamble, no quotes, no markdown, no list of alternatives."

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	bulletPrefix = regexp.MustCompile(`^(?:[-*\x{2022}\x{2023}\x{25E6}\x{2043}]|\d+[.)])\s+`)
	labelPrefix  = regexp.MustCompile(`(?i)^(?:improved|rewritten|revised)(?:\s+\w+)?:\s*`)
)

func buildMessages(instruction, language, text string) []Message {
	sys := systemPrompt
	if language != "" {
		sys += fmt.Sprintf(" Write the answer in %s.", language)
	}
	return []Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: fmt.Sprintf("%s:\n%q", instruction, text)},
	}
}

// cleanText strips what chat models commonly wrap around a one-off rewrite:
// a label, surrounding quotes and a leading bullet glyph.
func cleanText(out string) string {
	s := strings.TrimSpace(out)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = labelPrefix.ReplaceAllString(s, "")
	s = trimQuotes(s)
	s = bulletPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func trimQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"\u201c", "\u201d"}, {"`", "`"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			return strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
		}
	}
	return s
}
