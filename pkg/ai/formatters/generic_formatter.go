package formatters

type GenericFormatter struct {
	language string
}

func NewGenericFormatter(language string) *GenericFormatter {
	return &GenericFormatter{language: language}
}

func (gf *GenericFormatter) Messages(text string) []Message {
	return buildMessages("Improve the clarity and professionalism of this text", gf.language, text)
}

func (gf *GenericFormatter) Clean(output string) string {
	return cleanText(output)
}
