package model

import (
	"strings"
	"time"
)

// Go models for the canonical resume document. Every stored or legacy shape is
// converted into these types at the I/O boundary (see legacy.go).

// SectionKind names one independently orderable block of resume content.
type SectionKind string

const (
	KindSummary      SectionKind = "summary"
	KindExperience   SectionKind = "experience"
	KindEducation    SectionKind = "education"
	KindProjects     SectionKind = "projects"
	KindSkills       SectionKind = "skills"
	KindLanguages    SectionKind = "languages"
	KindInterests    SectionKind = "interests"
	KindCertificates SectionKind = "certificates"
	KindCoursework   SectionKind = "coursework"
	KindAchievements SectionKind = "achievements"
)

// Kinds lists every known section kind in default display order.
var Kinds = []SectionKind{
	KindSummary,
	KindExperience,
	KindEducation,
	KindProjects,
	KindSkills,
	KindCertificates,
	KindLanguages,
	KindInterests,
	KindCoursework,
	KindAchievements,
}

// Valid reports whether k is one of the known kinds.
func (k SectionKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsText reports whether the kind holds a plain list of strings.
func (k SectionKind) IsText() bool {
	switch k {
	case KindLanguages, KindInterests, KindAchievements, KindCoursework:
		return true
	}
	return false
}

type Link struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type Contact struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Links    []Link `json:"links"`
}

// Document is one resume snapshot. Values are treated as immutable: every
// mutation goes through Clone first.
type Document struct {
	ID        string     `json:"id,omitempty"`
	OwnerID   string     `json:"ownerId,omitempty"`
	Title     string     `json:"title,omitempty"`
	Contact   Contact    `json:"contact"`
	Summary   string     `json:"summary"`
	Sections  []Section  `json:"sections"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Section is a tagged variant: only the slice matching Kind carries data.
// The JSON form is {"kind": ..., "items": [...]} (see codec.go).
type Section struct {
	Kind         SectionKind
	Experience   []Experience
	Education    []Education
	Projects     []Project
	Skills       []SkillGroup
	Certificates []Certificate
	Text         []string
}

type Experience struct {
	Role         string   `json:"role"`
	Organization string   `json:"organization"`
	Period       string   `json:"period"`
	Location     string   `json:"location"`
	Bullets      []string `json:"bullets"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Emphasis    string `json:"emphasis,omitempty"`
	Location    string `json:"location"`
	Period      string `json:"period"`
	Grade       string `json:"grade,omitempty"`
}

type Project struct {
	Name        string `json:"name"`
	Link        string `json:"link,omitempty"`
	Stack       string `json:"stack"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
}

type SkillGroup struct {
	Category string   `json:"category"`
	Details  []string `json:"details"`
}

type Certificate struct {
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// Item is a value that can be appended to a section. Text covers the
// string-list kinds.
type Item interface {
	accepts(k SectionKind) bool
}

type Text string

func (Experience) accepts(k SectionKind) bool  { return k == KindExperience }
func (Education) accepts(k SectionKind) bool   { return k == KindEducation }
func (Project) accepts(k SectionKind) bool     { return k == KindProjects }
func (SkillGroup) accepts(k SectionKind) bool  { return k == KindSkills }
func (Certificate) accepts(k SectionKind) bool { return k == KindCertificates }
func (Text) accepts(k SectionKind) bool        { return k.IsText() }

// Accepts reports whether it can be stored in a section of kind k.
func Accepts(it Item, k SectionKind) bool {
	return it != nil && it.accepts(k)
}

// EmptyItem returns the blank template a form uses for a new entry.
func EmptyItem(k SectionKind) Item {
	switch k {
	case KindExperience:
		return Experience{Bullets: []string{}}
	case KindEducation:
		return Education{}
	case KindProjects:
		return Project{}
	case KindSkills:
		return SkillGroup{Details: []string{}}
	case KindCertificates:
		return Certificate{}
	}
	if k.IsText() {
		return Text("")
	}
	return nil
}

// New returns an empty document for a fresh editing session.
func New() Document {
	return Document{
		Contact:  Contact{Links: []Link{}},
		Sections: []Section{},
	}
}

// NewSection returns an empty section of the given kind.
func NewSection(k SectionKind) Section {
	return Section{
		Kind:         k,
		Experience:   []Experience{},
		Education:    []Education{},
		Projects:     []Project{},
		Skills:       []SkillGroup{},
		Certificates: []Certificate{},
		Text:         []string{},
	}
}

// Len is the number of items in the section's active slice.
func (s Section) Len() int {
	switch s.Kind {
	case KindExperience:
		return len(s.Experience)
	case KindEducation:
		return len(s.Education)
	case KindProjects:
		return len(s.Projects)
	case KindSkills:
		return len(s.Skills)
	case KindCertificates:
		return len(s.Certificates)
	}
	if s.Kind.IsText() {
		return len(s.Text)
	}
	return 0
}

// Find returns the index of the first section of kind k, or -1.
func (d Document) Find(k SectionKind) int {
	for i, s := range d.Sections {
		if s.Kind == k {
			return i
		}
	}
	return -1
}

// FileName is the export artifact name derived from the contact name.
func (d Document) FileName() string {
	name := strings.TrimSpace(strings.NewReplacer("/", "-", "\\", "-").Replace(d.Contact.Name))
	if name == "" {
		name = "resume"
	}
	return name + ".pdf"
}
