package layout

import "strings"

// SplitSentences turns a descriptive string into bullets by splitting on
// ". ". Fragments are trimmed and empty ones dropped.
//
// The split is lossy and cannot be reversed. Abbreviations such as "U.S. "
// produce a spurious break.
func SplitSentences(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ". ") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
