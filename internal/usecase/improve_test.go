package usecase

import (
	"context"
	"errors"
	"testing"

	"resume-builder/internal/model"
	"resume-builder/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockImprover struct {
	mock.Mock
}

func (m *MockImprover) Improve(ctx context.Context, text string, hint ai.Hint) (string, error) {
	args := m.Called(ctx, text, hint)
	return args.String(0), args.Error(1)
}

func TestRequestTextImprovement_Applies(t *testing.T) {
	ctx := context.Background()
	doc := baseDoc()

	tests := []struct {
		name  string
		path  string
		hint  ai.Hint
		input string
		check func(model.Document) string
	}{
		{"summary", "summary", ai.HintSummary, "Engineer.", func(d model.Document) string { return d.Summary }},
		{"bullet", "experience.0.bullets.0", ai.HintExperience, "Built reports", func(d model.Document) string {
			return d.Sections[0].Experience[0].Bullets[0]
		}},
		{"skill category", "skills.0.category", ai.HintGeneric, "Go", func(d model.Document) string {
			return d.Sections[1].Skills[0].Category
		}},
		{"experience description", "experience.0.description", ai.HintExperience, "Built reports Fixed bugs", func(d model.Document) string {
			return d.Sections[0].Experience[0].Bullets[0]
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockImprover)
			m.On("Improve", ctx, tt.input, tt.hint).Return("Better text", nil)

			res, err := NewEngine(m, nil).RequestTextImprovement(ctx, doc, tt.path, "")
			require.NoError(t, err)
			assert.True(t, res.Applied)
			assert.NoError(t, res.Notice)
			assert.Equal(t, tt.input, res.Original)
			assert.Equal(t, "Better text", res.Text)
			assert.Equal(t, "Better text", tt.check(res.Document))
			assert.Equal(t, baseDoc(), doc)
			m.AssertExpectations(t)
		})
	}
}

func TestRequestTextImprovement_ExplicitHint(t *testing.T) {
	ctx := context.Background()
	m := new(MockImprover)
	m.On("Improve", ctx, "Ada", ai.HintJobTitle).Return("Ada", nil)

	res, err := NewEngine(m, nil).RequestTextImprovement(ctx, baseDoc(), "contact.name", ai.HintJobTitle)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, baseDoc(), res.Document)
	m.AssertExpectations(t)
}

func TestRequestTextImprovement_EmptyInput(t *testing.T) {
	m := new(MockImprover)
	e := NewEngine(m, nil)
	doc := baseDoc()
	doc.Summary = "   "

	_, err := e.RequestTextImprovement(context.Background(), doc, "summary", ai.HintSummary)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = e.RequestTextImprovement(context.Background(), doc, "contact.email", "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	m.AssertNotCalled(t, "Improve", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestTextImprovement_AdapterFailure(t *testing.T) {
	ctx := context.Background()
	doc := baseDoc()
	m := new(MockImprover)
	m.On("Improve", ctx, "Built reports", ai.HintExperience).
		Return("Built reports", errors.New("connection refused"))

	res, err := NewEngine(m, nil).RequestTextImprovement(ctx, doc, "experience.0.bullets.0", "")
	require.NoError(t, err)
	assert.Equal(t, "Built reports", res.Text)
	assert.False(t, res.Applied)
	assert.ErrorIs(t, res.Notice, ErrAdapterUnavailable)
	assert.Equal(t, doc, res.Document)
	assert.Equal(t, "Built reports", doc.Sections[0].Experience[0].Bullets[0])
}

func TestRequestTextImprovement_BlankImprovement(t *testing.T) {
	ctx := context.Background()
	m := new(MockImprover)
	m.On("Improve", ctx, "Engineer.", ai.HintSummary).Return(" ", nil)

	res, err := NewEngine(m, nil).RequestTextImprovement(ctx, baseDoc(), "summary", "")
	require.NoError(t, err)
	assert.Equal(t, "Engineer.", res.Text)
	assert.ErrorIs(t, res.Notice, ErrAdapterUnavailable)
}

func TestRequestTextImprovement_NoImprover(t *testing.T) {
	res, err := NewEngine(nil, nil).RequestTextImprovement(context.Background(), baseDoc(), "summary", "")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Notice, ErrAdapterUnavailable)
	assert.Equal(t, "Engineer.", res.Text)
}

func TestRequestTextImprovement_BadPaths(t *testing.T) {
	m := new(MockImprover)
	e := NewEngine(m, nil)
	doc := baseDoc()

	tests := []struct {
		path string
		want error
	}{
		{"contact.fax", ErrInvalidFieldPath},
		{"hobbies.0.name", ErrInvalidFieldPath},
		{"experience.x.role", ErrInvalidFieldPath},
		{"experience.0.salary", ErrInvalidFieldPath},
		{"experience.7.role", ErrIndexOutOfRange},
		{"projects.0.description", ErrIndexOutOfRange},
		{"experience.0.bullets.5", ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		_, err := e.RequestTextImprovement(context.Background(), doc, tt.path, "")
		assert.ErrorIs(t, err, tt.want, tt.path)
	}
	m.AssertNotCalled(t, "Improve", mock.Anything, mock.Anything, mock.Anything)
}

func TestFieldValue(t *testing.T) {
	e := NewEngine(nil, nil)
	doc := baseDoc()
	doc.Contact.Links = []model.Link{{Kind: "github", URL: "github.com/ada"}}

	v, err := e.FieldValue(doc, "links.github")
	require.NoError(t, err)
	assert.Equal(t, "github.com/ada", v)

	v, err = e.FieldValue(doc, "experience.1.organization")
	require.NoError(t, err)
	assert.Equal(t, "B", v)
}
