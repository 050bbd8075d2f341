package formatters

import "strings"

type ExperienceFormatter struct {
	language string
}

func NewExperienceFormatter(language string) *ExperienceFormatter {
	return &ExperienceFormatter{language: language}
}

func (ef *ExperienceFormatter) Messages(text string) []Message {
	return buildMessages("Rewrite this resume experience bullet to be measurable, action-oriented, and ATS-optimized", ef.language, text)
}

// Clean returns a single bullet. When the model answers with several lines
// only the first non-empty one is kept.
func (ef *ExperienceFormatter) Clean(output string) string {
	for _, line := range strings.Split(cleanText(output), "\n") {
		if l := cleanText(line); l != "" {
			return collapseSpace(l)
		}
	}
	return ""
}
