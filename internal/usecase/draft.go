package usecase

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"resume-builder/internal/model"
)

// Engine applies typed edits to resume snapshots. Every operation returns a
// new document and leaves its input untouched.
type Engine struct {
	improver Improver
	log      *slog.Logger
}

func NewEngine(improver Improver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{improver: improver, log: logger}
}

// SetScalarField sets a contact field, the summary, the document title or a
// contact link ("links.<kind>", blank value removes the link).
func (e *Engine) SetScalarField(doc model.Document, path, value string) (model.Document, error) {
	if kind, ok := linkKind(path); ok {
		next := model.Clone(doc)
		next.Contact.Links = upsertLink(next.Contact.Links, kind, value)
		return next, nil
	}
	next := model.Clone(doc)
	ref := scalarRef(&next, path)
	if ref == nil {
		return doc, fmt.Errorf("%w: %q", ErrInvalidFieldPath, path)
	}
	*ref = value
	return next, nil
}

// AddSectionItem appends item, or the kind's blank template when item is nil.
// The section is created at the end of the document if it does not exist.
func (e *Engine) AddSectionItem(doc model.Document, kind model.SectionKind, item model.Item) (model.Document, error) {
	if !kind.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidSectionKind, kind)
	}
	if item == nil {
		item = model.EmptyItem(kind)
	}
	if !model.Accepts(item, kind) {
		return doc, fmt.Errorf("%w: %T for %s", ErrItemKindMismatch, item, kind)
	}
	next := model.Clone(doc)
	i := next.Find(kind)
	if i < 0 {
		next.Sections = append(next.Sections, model.NewSection(kind))
		i = len(next.Sections) - 1
	}
	s := &next.Sections[i]
	switch it := item.(type) {
	case model.Experience:
		it.Bullets = append([]string{}, it.Bullets...)
		s.Experience = append(s.Experience, it)
	case model.Education:
		s.Education = append(s.Education, it)
	case model.Project:
		s.Projects = append(s.Projects, it)
	case model.SkillGroup:
		it.Details = append([]string{}, it.Details...)
		s.Skills = append(s.Skills, it)
	case model.Certificate:
		s.Certificates = append(s.Certificates, it)
	case model.Text:
		s.Text = append(s.Text, string(it))
	}
	e.log.Debug("draft: item added", "kind", kind, "index", s.Len()-1)
	return next, nil
}

// EnsureSection adds an empty section of kind at the end when absent. It is
// the only way to place the summary marker.
func (e *Engine) EnsureSection(doc model.Document, kind model.SectionKind) (model.Document, error) {
	if !kind.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidSectionKind, kind)
	}
	next := model.Clone(doc)
	if next.Find(kind) < 0 {
		next.Sections = append(next.Sections, model.NewSection(kind))
	}
	return next, nil
}

// UpdateSectionItem sets one field of the item at index.
func (e *Engine) UpdateSectionItem(doc model.Document, kind model.SectionKind, index int, field, value string) (model.Document, error) {
	i, err := locate(doc, kind, index)
	if err != nil {
		return doc, err
	}
	next := model.Clone(doc)
	s := &next.Sections[i]

	switch {
	case kind == model.KindExperience && field == "description":
		s.Experience[index].Bullets = nonBlankLines(value, false)
		return next, nil
	case kind == model.KindExperience && field == "bullets":
		s.Experience[index].Bullets = nonBlankLines(value, true)
		return next, nil
	case kind == model.KindSkills && field == "details":
		s.Skills[index].Details = model.SplitList(value)
		return next, nil
	}

	ref, err := itemFieldRef(s, index, field)
	if err != nil {
		return doc, err
	}
	*ref = value
	return next, nil
}

// RemoveSectionItem deletes the item at index. The section stays in the
// document even when it becomes empty.
func (e *Engine) RemoveSectionItem(doc model.Document, kind model.SectionKind, index int) (model.Document, error) {
	i, err := locate(doc, kind, index)
	if err != nil {
		return doc, err
	}
	n := doc.Sections[i].Len()
	order := make([]int, 0, n-1)
	for j := 0; j < n; j++ {
		if j != index {
			order = append(order, j)
		}
	}
	next := model.Clone(doc)
	reorder(&next.Sections[i], order)
	e.log.Debug("draft: item removed", "kind", kind, "index", index)
	return next, nil
}

// MoveSectionItem moves the item at from so that it ends up at position to.
func (e *Engine) MoveSectionItem(doc model.Document, kind model.SectionKind, from, to int) (model.Document, error) {
	i, err := locate(doc, kind, from)
	if err != nil {
		return doc, err
	}
	n := doc.Sections[i].Len()
	if to < 0 || to >= n {
		return doc, fmt.Errorf("%w: %s[%d] (len %d)", ErrIndexOutOfRange, kind, to, n)
	}
	next := model.Clone(doc)
	reorder(&next.Sections[i], moved(n, from, to))
	return next, nil
}

// MoveSection moves the section of kind to position to.
func (e *Engine) MoveSection(doc model.Document, kind model.SectionKind, to int) (model.Document, error) {
	if !kind.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidSectionKind, kind)
	}
	from := doc.Find(kind)
	if from < 0 {
		return doc, fmt.Errorf("%w: no %s section", ErrIndexOutOfRange, kind)
	}
	if to < 0 || to >= len(doc.Sections) {
		return doc, fmt.Errorf("%w: section position %d (len %d)", ErrIndexOutOfRange, to, len(doc.Sections))
	}
	next := model.Clone(doc)
	next.Sections = permute(next.Sections, moved(len(next.Sections), from, to))
	return next, nil
}

// locate returns the position of the section of kind after checking that
// index addresses one of its items.
func locate(doc model.Document, kind model.SectionKind, index int) (int, error) {
	if !kind.Valid() {
		return -1, fmt.Errorf("%w: %q", ErrInvalidSectionKind, kind)
	}
	i := doc.Find(kind)
	n := 0
	if i >= 0 {
		n = doc.Sections[i].Len()
	}
	if i < 0 || index < 0 || index >= n {
		return -1, fmt.Errorf("%w: %s[%d] (len %d)", ErrIndexOutOfRange, kind, index, n)
	}
	return i, nil
}

func scalarRef(d *model.Document, path string) *string {
	switch path {
	case "summary":
		return &d.Summary
	case "title":
		return &d.Title
	case "name", "contact.name":
		return &d.Contact.Name
	case "headline", "contact.title", "contact.headline":
		return &d.Contact.Title
	case "email", "contact.email":
		return &d.Contact.Email
	case "phone", "contact.phone":
		return &d.Contact.Phone
	case "location", "contact.location":
		return &d.Contact.Location
	}
	return nil
}

func linkKind(path string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimPrefix(path, "contact."), "links.")
	if !ok || strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

func linkValue(links []model.Link, kind string) string {
	for _, l := range links {
		if l.Kind == kind {
			return l.URL
		}
	}
	return ""
}

func upsertLink(links []model.Link, kind, url string) []model.Link {
	url = strings.TrimSpace(url)
	out := make([]model.Link, 0, len(links)+1)
	found := false
	for _, l := range links {
		if l.Kind != kind {
			out = append(out, l)
			continue
		}
		if !found && url != "" {
			out = append(out, model.Link{Kind: kind, URL: url})
		}
		found = true
	}
	if !found && url != "" {
		out = append(out, model.Link{Kind: kind, URL: url})
	}
	return out
}

// itemFieldRef returns a pointer to a single string field of s's item at
// index. The caller has already bounds-checked index.
func itemFieldRef(s *model.Section, index int, field string) (*string, error) {
	bad := fmt.Errorf("%w: %s.%d.%s", ErrInvalidFieldPath, s.Kind, index, field)
	switch s.Kind {
	case model.KindExperience:
		it := &s.Experience[index]
		switch field {
		case "role":
			return &it.Role, nil
		case "organization", "company":
			return &it.Organization, nil
		case "period":
			return &it.Period, nil
		case "location":
			return &it.Location, nil
		}
		if sub, ok := strings.CutPrefix(field, "bullets."); ok {
			return elemRef(it.Bullets, sub, bad)
		}
	case model.KindEducation:
		it := &s.Education[index]
		switch field {
		case "institution":
			return &it.Institution, nil
		case "degree":
			return &it.Degree, nil
		case "field":
			return &it.Field, nil
		case "emphasis":
			return &it.Emphasis, nil
		case "location":
			return &it.Location, nil
		case "period":
			return &it.Period, nil
		case "grade":
			return &it.Grade, nil
		}
	case model.KindProjects:
		it := &s.Projects[index]
		switch field {
		case "name":
			return &it.Name, nil
		case "link":
			return &it.Link, nil
		case "stack":
			return &it.Stack, nil
		case "description":
			return &it.Description, nil
		case "date":
			return &it.Date, nil
		}
	case model.KindSkills:
		it := &s.Skills[index]
		if field == "category" {
			return &it.Category, nil
		}
		if sub, ok := strings.CutPrefix(field, "details."); ok {
			return elemRef(it.Details, sub, bad)
		}
	case model.KindCertificates:
		it := &s.Certificates[index]
		switch field {
		case "title":
			return &it.Title, nil
		case "issuer":
			return &it.Issuer, nil
		case "date":
			return &it.Date, nil
		}
	default:
		if s.Kind.IsText() && (field == "" || field == "value") {
			return &s.Text[index], nil
		}
	}
	return nil, bad
}

func elemRef(list []string, sub string, bad error) (*string, error) {
	n, err := strconv.Atoi(sub)
	if err != nil {
		return nil, bad
	}
	if n < 0 || n >= len(list) {
		return nil, fmt.Errorf("%w: element %d (len %d)", ErrIndexOutOfRange, n, len(list))
	}
	return &list[n], nil
}

// nonBlankLines splits v into lines when split is set, dropping blanks.
func nonBlankLines(v string, split bool) []string {
	parts := []string{v}
	if split {
		parts = strings.Split(v, "\n")
	}
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func moved(n, from, to int) []int {
	order := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if j != from {
			order = append(order, j)
		}
	}
	order = append(order[:to], append([]int{from}, order[to:]...)...)
	return order
}

func permute[T any](in []T, order []int) []T {
	out := make([]T, 0, len(order))
	for _, j := range order {
		out = append(out, in[j])
	}
	return out
}

// reorder rebuilds the active item slice of s from the given index order.
func reorder(s *model.Section, order []int) {
	switch s.Kind {
	case model.KindExperience:
		s.Experience = permute(s.Experience, order)
	case model.KindEducation:
		s.Education = permute(s.Education, order)
	case model.KindProjects:
		s.Projects = permute(s.Projects, order)
	case model.KindSkills:
		s.Skills = permute(s.Skills, order)
	case model.KindCertificates:
		s.Certificates = permute(s.Certificates, order)
	default:
		s.Text = permute(s.Text, order)
	}
}
