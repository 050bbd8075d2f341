package formatters

import "strings"

// ProfileFormatter polishes the headline shown under the name.
type ProfileFormatter struct {
	language string
}

func NewProfileFormatter(language string) *ProfileFormatter {
	return &ProfileFormatter{language: language}
}

func (pf *ProfileFormatter) Messages(text string) []Message {
	return buildMessages("Improve this job title to sound more professional, specific, and impactful", pf.language, text)
}

// Clean keeps the first line without a trailing period.
func (pf *ProfileFormatter) Clean(output string) string {
	s := collapseSpace(firstLine(cleanText(output)))
	return strings.TrimRight(trimQuotes(s), ".")
}
