package formatters

type SummaryFormatter struct {
	language string
}

func NewSummaryFormatter(language string) *SummaryFormatter {
	return &SummaryFormatter{language: language}
}

func (sf *SummaryFormatter) Messages(text string) []Message {
	return buildMessages("Rewrite this resume summary to be concise, professional, and achievement-focused", sf.language, text)
}

// Clean keeps the summary as one paragraph.
func (sf *SummaryFormatter) Clean(output string) string {
	return collapseSpace(cleanText(output))
}
