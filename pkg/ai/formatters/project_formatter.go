package formatters

type ProjectFormatter struct {
	language string
}

func NewProjectFormatter(language string) *ProjectFormatter {
	return &ProjectFormatter{language: language}
}

func (pf *ProjectFormatter) Messages(text string) []Message {
	return buildMessages("Rewrite this project description to be concise, professional, and impactful", pf.language, text)
}

func (pf *ProjectFormatter) Clean(output string) string {
	return collapseSpace(cleanText(output))
}
