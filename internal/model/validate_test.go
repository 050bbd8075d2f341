package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(New()))
	assert.NoError(t, Validate(sampleDocument()))
}

func TestValidateJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"wrong summary type", `{"summary": 3}`},
		{"unknown section kind", `{"sections": [{"kind": "hobbies"}]}`},
		{"bullets not strings", `{"sections": [{"kind": "experience", "items": [{"bullets": [1]}]}]}`},
		{"link without kind", `{"contact": {"links": [{"url": "x"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON([]byte(tt.in))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestValidateMap(t *testing.T) {
	assert.NoError(t, ValidateMap(map[string]interface{}{"summary": "ok"}))
	assert.ErrorIs(t, ValidateMap(map[string]interface{}{"title": 1}), ErrInvalidDocument)
}
