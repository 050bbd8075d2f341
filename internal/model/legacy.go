package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Shape identifies which stored record layout a resume payload uses.
type Shape string

const (
	ShapeCanonical Shape = "canonical"
	ShapeClassic   Shape = "classic"
	ShapeStandard  Shape = "standard"
	ShapeATS       Shape = "ats"
)

// legacyRecord is the union of every flat record the builder forms have
// written. Polymorphic fields stay raw until the shape is known. Scalars are
// loose: stored records carry numbers where the forms later wrote strings.
type legacyRecord struct {
	ID                 looseString         `json:"id"`
	Name               looseString         `json:"name"`
	Title              looseString         `json:"title"`
	JobTitle           looseString         `json:"jobtitle"`
	Email              looseString         `json:"email"`
	Phone              looseString         `json:"phone"`
	Location           looseString         `json:"location"`
	LinkedIn           looseString         `json:"linkedin"`
	GitHub             looseString         `json:"github"`
	Portfolio          looseString         `json:"portfolio"`
	Summary            looseString         `json:"summary"`
	SkillsSummary      looseString         `json:"skillsSummary"`
	Experiences        []legacyJob         `json:"experiences"`
	Experience         []legacyJob         `json:"experience"`
	Education          []legacyEducation   `json:"education"`
	Projects           []legacyProject     `json:"projects"`
	Certificates       []legacyCertificate `json:"certificates"`
	Skills             json.RawMessage     `json:"skills"`
	Languages          json.RawMessage     `json:"languages"`
	Interests          looseStrings        `json:"interests"`
	RelevantCoursework looseStrings        `json:"relevantCoursework"`
	Achievement        looseStrings        `json:"achievement"`
}

type legacyJob struct {
	Role        looseString  `json:"role"`
	Position    looseString  `json:"position"`
	Company     looseString  `json:"company"`
	Date        looseString  `json:"date"`
	Duration    looseString  `json:"duration"`
	StartDate   looseString  `json:"startDate"`
	EndDate     looseString  `json:"endDate"`
	Location    looseString  `json:"location"`
	Points      looseStrings `json:"points"`
	Description looseString  `json:"description"`
}

type legacyEducation struct {
	Degree       looseString `json:"degree"`
	School       looseString `json:"school"`
	University   looseString `json:"university"`
	FieldOfStudy looseString `json:"fieldOfStudy"`
	Emphasis     looseString `json:"emphasis"`
	Location     looseString `json:"location"`
	Date         looseString `json:"date"`
	GPA          looseString `json:"gpa"`
}

type legacyCertificate struct {
	Title  looseString `json:"title"`
	Issuer looseString `json:"issuer"`
	Date   looseString `json:"date"`
}

type legacyProject struct {
	Name        looseString `json:"name"`
	Title       looseString `json:"title"`
	Description looseString `json:"description"`
	Link        looseString `json:"link"`
	Tech        looseString `json:"tech"`
	TechStack   looseString `json:"techStack"`
	Date        looseString `json:"date"`
}

// skill record categories, in the order the forms list them.
var skillCategories = []struct{ key, label string }{
	{"programming", "Programming Languages"},
	{"technical", "Technical"},
	{"languages", "Languages"},
	{"frameworks", "Frameworks"},
	{"operating", "Operating Systems"},
	{"database", "Database"},
	{"software", "Software Tools"},
	{"tools", "Tools"},
	{"platforms", "Platforms"},
	{"cloud", "Cloud"},
	{"soft", "Soft Skills"},
}

// DetectShape inspects the top-level keys of a JSON resume payload.
func DetectShape(b []byte) (Shape, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return "", fmt.Errorf("detect resume shape: %w", err)
	}
	if _, ok := keys["sections"]; ok {
		return ShapeCanonical, nil
	}
	if raw, ok := keys["contact"]; ok && isJSONObject(raw) {
		return ShapeCanonical, nil
	}
	if _, ok := keys["experiences"]; ok {
		return ShapeClassic, nil
	}
	if isJSONObject(keys["skills"]) {
		return ShapeATS, nil
	}
	for _, k := range []string{"certificates", "skillsSummary", "portfolio"} {
		if _, ok := keys[k]; ok {
			return ShapeATS, nil
		}
	}
	for _, k := range []string{"experience", "relevantCoursework", "achievement", "jobtitle"} {
		if _, ok := keys[k]; ok {
			return ShapeStandard, nil
		}
	}
	return ShapeClassic, nil
}

// DecodeAny converts any supported stored shape into a normalized Document.
func DecodeAny(b []byte) (Document, error) {
	shape, err := DetectShape(b)
	if err != nil {
		return Document{}, err
	}
	if shape == ShapeCanonical {
		return Decode(b)
	}
	var rec legacyRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return Document{}, fmt.Errorf("decode %s resume: %w", shape, err)
	}
	return convertLegacy(shape, rec), nil
}

func convertLegacy(shape Shape, rec legacyRecord) Document {
	doc := New()
	doc.ID = string(rec.ID)
	doc.Contact = Contact{
		Name:     string(rec.Name),
		Title:    firstNonBlank(string(rec.Title), string(rec.JobTitle)),
		Email:    string(rec.Email),
		Phone:    string(rec.Phone),
		Location: string(rec.Location),
		Links:    []Link{},
	}
	for _, l := range []Link{{"linkedin", string(rec.LinkedIn)}, {"github", string(rec.GitHub)}, {"portfolio", string(rec.Portfolio)}} {
		if strings.TrimSpace(l.URL) != "" {
			doc.Contact.Links = append(doc.Contact.Links, l)
		}
	}
	doc.Summary = firstNonBlank(string(rec.Summary), string(rec.SkillsSummary))

	jobs := rec.Experience
	if shape == ShapeClassic {
		jobs = rec.Experiences
	}
	built := map[SectionKind]Section{
		KindSummary:      NewSection(KindSummary),
		KindExperience:   experienceSection(jobs),
		KindEducation:    educationSection(rec.Education),
		KindProjects:     projectSection(rec.Projects),
		KindSkills:       skillSection(rec.Skills),
		KindLanguages:    textSection(KindLanguages, decodeLanguages(rec.Languages)),
		KindInterests:    textSection(KindInterests, rec.Interests),
		KindCoursework:   textSection(KindCoursework, rec.RelevantCoursework),
		KindAchievements: textSection(KindAchievements, rec.Achievement),
		KindCertificates: certificateSection(rec.Certificates),
	}

	var order []SectionKind
	switch shape {
	case ShapeClassic:
		order = []SectionKind{KindSkills, KindLanguages, KindInterests, KindSummary, KindExperience, KindEducation, KindProjects}
	case ShapeStandard:
		order = []SectionKind{KindSummary, KindEducation, KindCoursework, KindSkills, KindExperience, KindProjects, KindAchievements}
	default:
		order = []SectionKind{KindSummary, KindEducation, KindSkills, KindExperience, KindProjects, KindCertificates}
	}
	for _, k := range order {
		doc.Sections = append(doc.Sections, built[k])
	}
	return Normalize(doc)
}

func experienceSection(jobs []legacyJob) Section {
	s := NewSection(KindExperience)
	for _, j := range jobs {
		period := firstNonBlank(string(j.Date), string(j.Duration))
		if period == "" {
			period = joinNonBlank(" - ", string(j.StartDate), string(j.EndDate))
		}
		bullets := make([]string, 0, len(j.Points)+1)
		for _, p := range j.Points {
			if strings.TrimSpace(p) != "" {
				bullets = append(bullets, p)
			}
		}
		if len(bullets) == 0 && strings.TrimSpace(string(j.Description)) != "" {
			bullets = append(bullets, string(j.Description))
		}
		s.Experience = append(s.Experience, Experience{
			Role:         firstNonBlank(string(j.Role), string(j.Position)),
			Organization: string(j.Company),
			Period:       period,
			Location:     string(j.Location),
			Bullets:      bullets,
		})
	}
	return s
}

func educationSection(in []legacyEducation) Section {
	s := NewSection(KindEducation)
	for _, e := range in {
		s.Education = append(s.Education, Education{
			Institution: firstNonBlank(string(e.University), string(e.School)),
			Degree:      string(e.Degree),
			Field:       string(e.FieldOfStudy),
			Emphasis:    string(e.Emphasis),
			Location:    string(e.Location),
			Period:      string(e.Date),
			Grade:       string(e.GPA),
		})
	}
	return s
}

func projectSection(in []legacyProject) Section {
	s := NewSection(KindProjects)
	for _, p := range in {
		s.Projects = append(s.Projects, Project{
			Name:        firstNonBlank(string(p.Name), string(p.Title)),
			Link:        string(p.Link),
			Stack:       firstNonBlank(string(p.TechStack), string(p.Tech)),
			Description: string(p.Description),
			Date:        string(p.Date),
		})
	}
	return s
}

func certificateSection(in []legacyCertificate) Section {
	s := NewSection(KindCertificates)
	for _, c := range in {
		s.Certificates = append(s.Certificates, Certificate{Title: string(c.Title), Issuer: string(c.Issuer), Date: string(c.Date)})
	}
	return s
}

func textSection(k SectionKind, in []string) Section {
	s := NewSection(k)
	for _, v := range in {
		if strings.TrimSpace(v) != "" {
			s.Text = append(s.Text, v)
		}
	}
	return s
}

// skillSection accepts a list of {name, details} groups, a list of fixed
// category records, or a single category record.
func skillSection(raw json.RawMessage) Section {
	s := NewSection(KindSkills)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return s
	}
	var records []map[string]json.RawMessage
	if isJSONObject(raw) {
		var one map[string]json.RawMessage
		if json.Unmarshal(raw, &one) == nil {
			records = append(records, one)
		}
	} else if err := json.Unmarshal(raw, &records); err != nil {
		return s
	}
	for _, rec := range records {
		if name, ok := rec["name"]; ok {
			var category looseString
			var details looseStrings
			_ = json.Unmarshal(name, &category)
			if d, ok := rec["details"]; ok {
				_ = json.Unmarshal(d, &details)
			}
			g := SkillGroup{Category: string(category), Details: []string{}}
			g.Details = append(g.Details, details...)
			s.Skills = append(s.Skills, g)
			continue
		}
		for _, c := range skillCategories {
			var v looseString
			if json.Unmarshal(rec[c.key], &v) != nil || strings.TrimSpace(string(v)) == "" {
				continue
			}
			s.Skills = append(s.Skills, SkillGroup{Category: c.label, Details: SplitList(string(v))})
		}
	}
	return s
}

// decodeLanguages reads either plain strings or {preference} objects.
func decodeLanguages(raw json.RawMessage) []string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var prefs []struct {
		Preference looseString `json:"preference"`
	}
	if json.Unmarshal(raw, &prefs) == nil {
		out := make([]string, 0, len(prefs))
		for _, p := range prefs {
			out = append(out, string(p.Preference))
		}
		return out
	}
	var plain looseStrings
	if json.Unmarshal(raw, &plain) != nil {
		return nil
	}
	return plain
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonBlank(sep string, vals ...string) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, strings.TrimSpace(v))
		}
	}
	return strings.Join(parts, sep)
}

// looseString reads any JSON scalar as text. null and nested values read as
// empty instead of failing the whole record.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, string(b) == "null", b[0] == '{', b[0] == '[':
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		// number or bool literal
		*s = looseString(b)
	}
	return nil
}

// looseStrings reads a list of scalars, or a single scalar as a one item list.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] != '[' {
		var one looseString
		if err := one.UnmarshalJSON(b); err != nil {
			return err
		}
		*l = nil
		if one != "" {
			*l = looseStrings{string(one)}
		}
		return nil
	}
	var items []looseString
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(looseStrings, 0, len(items))
	for _, it := range items {
		out = append(out, string(it))
	}
	*l = out
	return nil
}
