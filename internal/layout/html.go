package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/resume.html templates/style.css
var templateFS embed.FS

// SurfaceSelector is the element the export capturer screenshots.
const SurfaceSelector = "#resume"

var icons = map[string]string{
	"mail":     "✉",
	"phone":    "☎",
	"location": "⌂",
	"linkedin": "in",
	"github":   "gh",
	"link":     "↗",
}

var page = template.Must(template.New("resume.html").Funcs(template.FuncMap{
	"icon": func(name string) string { return icons[name] },
	"href": safeHref,
}).ParseFS(templateFS, "templates/resume.html"))

var stylesheet = mustRead("templates/style.css")

func mustRead(name string) string {
	b, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// HTML renders the printable surface for a layout tree with the stylesheet
// inlined, so the page needs no further assets.
func HTML(t Tree) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Tree
		CSS template.CSS
	}{Tree: t, CSS: template.CSS(stylesheet)}
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render resume html: %w", err)
	}
	return buf.Bytes(), nil
}

// safeHref lets tel: links through html/template, which only trusts http,
// https and mailto on its own.
func safeHref(raw string) template.URL {
	lower := strings.ToLower(raw)
	for _, scheme := range []string{"http://", "https://", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return template.URL(raw)
		}
	}
	return template.URL("#")
}
