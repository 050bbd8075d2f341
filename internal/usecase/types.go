package usecase

import (
	"context"
	"errors"

	"resume-builder/internal/model"
	"resume-builder/pkg/ai"
)

var (
	ErrInvalidFieldPath   = errors.New("invalid field path")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrEmptyInput         = errors.New("empty input")
	ErrAdapterUnavailable = errors.New("text improvement unavailable")
	ErrInvalidSectionKind = errors.New("invalid section kind")
	ErrItemKindMismatch   = errors.New("item does not match section kind")
)

// Improver rewrites a piece of resume text. Implementations return the input
// unchanged together with a non-nil error when no improvement is available.
type Improver interface {
	Improve(ctx context.Context, text string, hint ai.Hint) (string, error)
}

// Improvement is the outcome of RequestTextImprovement. Notice carries a soft
// failure: the original text was kept and the document is untouched.
type Improvement struct {
	Document model.Document
	Path     string
	Original string
	Text     string
	Applied  bool
	Notice   error
}
