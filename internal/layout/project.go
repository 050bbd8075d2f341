package layout

import (
	"strings"

	"resume-builder/internal/model"
)

// Tree is what the printable surface shows, in display order.
type Tree struct {
	Header Header  `json:"header"`
	Blocks []Block `json:"blocks"`
}

type Header struct {
	Name     string        `json:"name"`
	Title    string        `json:"title,omitempty"`
	Contacts []ContactItem `json:"contacts"`
}

// Block is one visible section. Summary blocks carry Text, string-list
// sections carry Items and the structured kinds carry Entries.
type Block struct {
	Kind    model.SectionKind `json:"kind"`
	Heading string            `json:"heading"`
	Text    string            `json:"text,omitempty"`
	Entries []Entry           `json:"entries,omitempty"`
	Items   []string          `json:"items,omitempty"`
}

type Entry struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Period   string   `json:"period,omitempty"`
	Location string   `json:"location,omitempty"`
	Link     string   `json:"link,omitempty"`
	Meta     string   `json:"meta,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

var headings = map[model.SectionKind]string{
	model.KindSummary:      "Summary",
	model.KindExperience:   "Experience",
	model.KindEducation:    "Education",
	model.KindProjects:     "Projects",
	model.KindSkills:       "Skills",
	model.KindLanguages:    "Languages",
	model.KindInterests:    "Interests",
	model.KindCertificates: "Certificates",
	model.KindCoursework:   "Relevant Coursework",
	model.KindAchievements: "Achievements",
}

// Heading is the default title shown above a section.
func Heading(k model.SectionKind) string {
	return headings[k]
}

// Project maps a document to its layout tree. It does not modify doc and
// returns the same tree for the same document.
func Project(doc model.Document) Tree {
	t := Tree{
		Header: Header{
			Name:     strings.TrimSpace(doc.Contact.Name),
			Title:    strings.TrimSpace(doc.Contact.Title),
			Contacts: ContactItems(doc.Contact),
		},
		Blocks: []Block{},
	}

	summary := strings.TrimSpace(doc.Summary)
	if summary != "" && doc.Find(model.KindSummary) < 0 {
		t.Blocks = append(t.Blocks, Block{Kind: model.KindSummary, Heading: Heading(model.KindSummary), Text: summary})
	}
	for _, s := range doc.Sections {
		if s.Kind == model.KindSummary {
			if summary != "" {
				t.Blocks = append(t.Blocks, Block{Kind: s.Kind, Heading: Heading(s.Kind), Text: summary})
			}
			continue
		}
		if s.Len() == 0 {
			continue
		}
		t.Blocks = append(t.Blocks, projectSection(s))
	}
	return t
}

func projectSection(s model.Section) Block {
	b := Block{Kind: s.Kind, Heading: Heading(s.Kind)}
	switch s.Kind {
	case model.KindExperience:
		for _, e := range s.Experience {
			b.Entries = append(b.Entries, Entry{
				Title:    strings.TrimSpace(e.Role),
				Subtitle: strings.TrimSpace(e.Organization),
				Period:   strings.TrimSpace(e.Period),
				Location: strings.TrimSpace(e.Location),
				Bullets:  experienceBullets(e.Bullets),
			})
		}
	case model.KindEducation:
		for _, e := range s.Education {
			meta := []string{}
			if v := strings.TrimSpace(e.Emphasis); v != "" {
				meta = append(meta, "Emphasis: "+v)
			}
			if v := strings.TrimSpace(e.Grade); v != "" {
				meta = append(meta, "GPA: "+v)
			}
			b.Entries = append(b.Entries, Entry{
				Title:    joinNonBlank(" in ", e.Degree, e.Field),
				Subtitle: strings.TrimSpace(e.Institution),
				Period:   strings.TrimSpace(e.Period),
				Location: strings.TrimSpace(e.Location),
				Meta:     strings.Join(meta, " | "),
			})
		}
	case model.KindProjects:
		for _, p := range s.Projects {
			b.Entries = append(b.Entries, Entry{
				Title:    strings.TrimSpace(p.Name),
				Subtitle: strings.TrimSpace(p.Stack),
				Period:   strings.TrimSpace(p.Date),
				Link:     Href(p.Link),
				Bullets:  SplitSentences(p.Description),
			})
		}
	case model.KindSkills:
		for _, g := range s.Skills {
			b.Entries = append(b.Entries, Entry{
				Title: strings.TrimSpace(g.Category),
				Meta:  joinNonBlank(", ", g.Details...),
			})
		}
	case model.KindCertificates:
		for _, c := range s.Certificates {
			b.Entries = append(b.Entries, Entry{
				Title:    strings.TrimSpace(c.Title),
				Subtitle: strings.TrimSpace(c.Issuer),
				Period:   strings.TrimSpace(c.Date),
			})
		}
	default:
		for _, v := range s.Text {
			b.Items = append(b.Items, strings.TrimSpace(v))
		}
	}
	return b
}

// experienceBullets splits an entry that carries a single descriptive string;
// explicit bullet lists are kept as written.
func experienceBullets(in []string) []string {
	if len(in) == 1 {
		return SplitSentences(in[0])
	}
	out := []string{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonBlank(sep string, vals ...string) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
