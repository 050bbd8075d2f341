package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type sectionJSON struct {
	Kind  SectionKind     `json:"kind"`
	Items json.RawMessage `json:"items,omitempty"`
}

// MarshalJSON writes the section as {"kind": ..., "items": [...]}. The summary
// section has no items.
func (s Section) MarshalJSON() ([]byte, error) {
	var items interface{}
	switch s.Kind {
	case KindSummary:
		return json.Marshal(sectionJSON{Kind: s.Kind})
	case KindExperience:
		items = nonNil(s.Experience)
	case KindEducation:
		items = nonNil(s.Education)
	case KindProjects:
		items = nonNil(s.Projects)
	case KindSkills:
		items = nonNil(s.Skills)
	case KindCertificates:
		items = nonNil(s.Certificates)
	default:
		if !s.Kind.IsText() {
			return nil, fmt.Errorf("marshal section: unknown kind %q", s.Kind)
		}
		items = nonNil(s.Text)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{Kind: s.Kind, Items: raw})
}

// UnmarshalJSON accepts the canonical section form. Missing items decode to an
// empty list.
func (s *Section) UnmarshalJSON(b []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := NewSection(raw.Kind)
	if len(raw.Items) > 0 && string(raw.Items) != "null" {
		var err error
		switch raw.Kind {
		case KindExperience:
			err = json.Unmarshal(raw.Items, &out.Experience)
		case KindEducation:
			err = json.Unmarshal(raw.Items, &out.Education)
		case KindProjects:
			err = json.Unmarshal(raw.Items, &out.Projects)
		case KindSkills:
			err = json.Unmarshal(raw.Items, &out.Skills)
		case KindCertificates:
			err = json.Unmarshal(raw.Items, &out.Certificates)
		default:
			if raw.Kind.IsText() {
				err = json.Unmarshal(raw.Items, &out.Text)
			}
		}
		if err != nil {
			return fmt.Errorf("section %q: %w", raw.Kind, err)
		}
	}
	*s = out
	return nil
}

// Encode serializes the document to its flat JSON record.
func Encode(d Document) ([]byte, error) {
	return json.Marshal(Normalize(d))
}

// Decode parses a canonical JSON document. Missing arrays become empty lists
// and sections of unknown kind are dropped.
func Decode(b []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return Document{}, fmt.Errorf("decode resume: %w", err)
	}
	return Normalize(d), nil
}

// DecodeYAML reads a resume written as YAML (any supported shape) by routing it
// through the JSON decoders. Unquoted numbers, booleans and dates are read
// as the text they were written as.
func DecodeYAML(b []byte) (Document, error) {
	var m map[string]interface{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Document{}, fmt.Errorf("decode yaml resume: %w", err)
	}
	jb, err := json.Marshal(scalarsAsText(m))
	if err != nil {
		return Document{}, fmt.Errorf("decode yaml resume: %w", err)
	}
	return DecodeAny(jb)
}

func scalarsAsText(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			t[k] = scalarsAsText(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = scalarsAsText(e)
		}
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	}
	return v
}

// Normalize returns a deep copy of d with every list non-nil and unknown
// sections removed.
func Normalize(d Document) Document {
	out := d
	out.Contact.Links = make([]Link, 0, len(d.Contact.Links))
	for _, l := range d.Contact.Links {
		out.Contact.Links = append(out.Contact.Links, l)
	}
	out.Sections = make([]Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		if !s.Kind.Valid() {
			continue
		}
		out.Sections = append(out.Sections, cloneSection(s))
	}
	return out
}

// Clone is a deep copy; the result shares no slices with d.
func Clone(d Document) Document {
	return Normalize(d)
}

func cloneSection(s Section) Section {
	out := NewSection(s.Kind)
	switch s.Kind {
	case KindExperience:
		for _, e := range s.Experience {
			e.Bullets = cloneStrings(e.Bullets)
			out.Experience = append(out.Experience, e)
		}
	case KindEducation:
		out.Education = append(out.Education, s.Education...)
	case KindProjects:
		out.Projects = append(out.Projects, s.Projects...)
	case KindSkills:
		for _, g := range s.Skills {
			g.Details = cloneStrings(g.Details)
			out.Skills = append(out.Skills, g)
		}
	case KindCertificates:
		out.Certificates = append(out.Certificates, s.Certificates...)
	default:
		if s.Kind.IsText() {
			out.Text = append(out.Text, s.Text...)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// DecodeItem parses a single item of kind k. Empty input or null yields a nil
// item, which callers treat as the kind's blank template.
func DecodeItem(k SectionKind, raw []byte) (Item, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var (
		it  Item
		err error
	)
	switch k {
	case KindExperience:
		var v Experience
		err = json.Unmarshal(raw, &v)
		v.Bullets = cloneStrings(v.Bullets)
		it = v
	case KindEducation:
		var v Education
		err = json.Unmarshal(raw, &v)
		it = v
	case KindProjects:
		var v Project
		err = json.Unmarshal(raw, &v)
		it = v
	case KindSkills:
		var v SkillGroup
		err = json.Unmarshal(raw, &v)
		v.Details = cloneStrings(v.Details)
		it = v
	case KindCertificates:
		var v Certificate
		err = json.Unmarshal(raw, &v)
		it = v
	default:
		if !k.IsText() {
			return nil, fmt.Errorf("decode item: kind %q has no items", k)
		}
		var v string
		err = json.Unmarshal(raw, &v)
		it = Text(v)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s item: %w", k, err)
	}
	return it, nil
}
