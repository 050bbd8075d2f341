package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"resume-builder/internal/model"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/metrics"
)

// fieldTarget is a resolved improvement path: how to read the current text
// and how to write a replacement back.
type fieldTarget struct {
	text  string
	hint  ai.Hint
	apply func(doc model.Document, text string) (model.Document, error)
}

// RequestTextImprovement sends the text at path to the improver and applies
// the result. path is a scalar path ("summary", "contact.title") or an item
// path "<kind>.<index>.<field>" such as "experience.0.bullets.2". An empty
// hint is derived from the path.
//
// A failing improver is not an error: the result keeps the original text,
// the document is returned unchanged and Notice wraps ErrAdapterUnavailable.
func (e *Engine) RequestTextImprovement(ctx context.Context, doc model.Document, path string, hint ai.Hint) (*Improvement, error) {
	target, err := e.resolve(doc, path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(target.text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, path)
	}
	if hint == "" {
		hint = target.hint
	}

	res := &Improvement{Document: doc, Path: path, Original: target.text, Text: target.text}
	if e.improver == nil {
		res.Notice = fmt.Errorf("%w: no improver configured", ErrAdapterUnavailable)
		metrics.ImprovementsTotal.WithLabelValues("unavailable").Inc()
		return res, nil
	}

	improved, err := e.improver.Improve(ctx, target.text, hint)
	if err == nil && strings.TrimSpace(improved) == "" {
		err = errors.New("empty improvement")
	}
	if err != nil {
		e.log.Warn("draft: improvement unavailable, keeping original", "path", path, "hint", hint, "error", err)
		res.Notice = fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
		metrics.ImprovementsTotal.WithLabelValues("unavailable").Inc()
		return res, nil
	}

	improved = strings.TrimSpace(improved)
	res.Text = improved
	if improved == target.text {
		metrics.ImprovementsTotal.WithLabelValues("unchanged").Inc()
		return res, nil
	}
	next, err := target.apply(doc, improved)
	if err != nil {
		return nil, err
	}
	res.Document = next
	res.Applied = true
	metrics.ImprovementsTotal.WithLabelValues("applied").Inc()
	e.log.Debug("draft: improvement applied", "path", path, "hint", hint)
	return res, nil
}

// FieldValue reads the text at an improvement path.
func (e *Engine) FieldValue(doc model.Document, path string) (string, error) {
	t, err := e.resolve(doc, path)
	if err != nil {
		return "", err
	}
	return t.text, nil
}

func (e *Engine) resolve(doc model.Document, path string) (fieldTarget, error) {
	path = strings.TrimSpace(path)
	if kind, ok := linkKind(path); ok {
		return fieldTarget{
			text: linkValue(doc.Contact.Links, kind),
			hint: ai.HintGeneric,
			apply: func(d model.Document, text string) (model.Document, error) {
				return e.SetScalarField(d, path, text)
			},
		}, nil
	}
	probe := doc
	if ref := scalarRef(&probe, path); ref != nil {
		hint := ai.HintGeneric
		switch path {
		case "summary":
			hint = ai.HintSummary
		case "headline", "contact.title", "contact.headline":
			hint = ai.HintJobTitle
		}
		return fieldTarget{
			text: *ref,
			hint: hint,
			apply: func(d model.Document, text string) (model.Document, error) {
				return e.SetScalarField(d, path, text)
			},
		}, nil
	}

	head, rest, _ := strings.Cut(path, ".")
	kind := model.SectionKind(head)
	if !kind.Valid() || kind == model.KindSummary {
		return fieldTarget{}, fmt.Errorf("%w: %q", ErrInvalidFieldPath, path)
	}
	idxStr, field, _ := strings.Cut(rest, ".")
	index, err := strconv.Atoi(idxStr)
	if err != nil {
		return fieldTarget{}, fmt.Errorf("%w: %q", ErrInvalidFieldPath, path)
	}
	i, err := locate(doc, kind, index)
	if err != nil {
		return fieldTarget{}, err
	}

	var text string
	if kind == model.KindExperience && field == "description" {
		text = strings.Join(doc.Sections[i].Experience[index].Bullets, " ")
	} else {
		// itemFieldRef only reads here; doc's slices are not written.
		s := doc.Sections[i]
		ref, err := itemFieldRef(&s, index, field)
		if err != nil {
			return fieldTarget{}, err
		}
		text = *ref
	}

	return fieldTarget{
		text: text,
		hint: hintForKind(kind),
		apply: func(d model.Document, t string) (model.Document, error) {
			return e.UpdateSectionItem(d, kind, index, field, t)
		},
	}, nil
}

func hintForKind(k model.SectionKind) ai.Hint {
	switch k {
	case model.KindExperience:
		return ai.HintExperience
	case model.KindProjects:
		return ai.HintProject
	}
	return ai.HintGeneric
}
