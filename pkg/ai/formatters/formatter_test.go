package formatters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"Led a team of five"`, "Led a team of five"},
		{"- Led a team", "Led a team"},
		{"• Led a team", "Led a team"},
		{"1. Led a team", "Led a team"},
		{"Improved text: \"Led a team\"", "Led a team"},
		{"```\nLed a team\n```", "Led a team"},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanText(tt.in), tt.in)
	}
}

func TestFormatters_Prompts(t *testing.T) {
	tests := []struct {
		f    Formatter
		want string
	}{
		{NewProfileFormatter(""), "Improve this job title to sound more professional, specific, and impactful"},
		{NewSummaryFormatter(""), "Rewrite this resume summary to be concise, professional, and achievement-focused"},
		{NewExperienceFormatter(""), "Rewrite this resume experience bullet to be measurable, action-oriented, and ATS-optimized"},
		{NewProjectFormatter(""), "Rewrite this project description to be concise, professional, and impactful"},
		{NewGenericFormatter(""), "Improve the clarity and professionalism of this text"},
	}
	for _, tt := range tests {
		msgs := tt.f.Messages("some text")
		if assert.Len(t, msgs, 2) {
			assert.Equal(t, "system", msgs[0].Role)
			assert.Equal(t, tt.want+":\n\"some text\"", msgs[1].Content)
		}
	}
}

func TestFormatters_Language(t *testing.T) {
	msgs := NewSummaryFormatter("Portuguese").Messages("x")
	assert.Contains(t, msgs[0].Content, "Write the answer in Portuguese.")
}

func TestFormatters_Clean(t *testing.T) {
	assert.Equal(t, "Staff Engineer", NewProfileFormatter("").Clean("\"Staff Engineer.\"\nAlternatively: Principal"))
	assert.Equal(t, "Cut costs 20%", NewExperienceFormatter("").Clean("\n- Cut costs 20%\n- Another"))
	assert.Equal(t, "One paragraph here.", NewSummaryFormatter("").Clean("One\n paragraph   here."))
}
