package layout

import (
	"net/url"
	"strings"

	"resume-builder/internal/model"

	"golang.org/x/net/publicsuffix"
)

// ContactItem is one entry of the header contact row.
type ContactItem struct {
	Kind  string `json:"kind"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// ContactItems lists the non-empty contact fields in a fixed order: email,
// phone, location, then links in document order.
func ContactItems(c model.Contact) []ContactItem {
	out := []ContactItem{}
	if v := strings.TrimSpace(c.Email); v != "" {
		out = append(out, ContactItem{Kind: "email", Icon: "mail", Label: v, Href: "mailto:" + v})
	}
	if v := strings.TrimSpace(c.Phone); v != "" {
		out = append(out, ContactItem{Kind: "phone", Icon: "phone", Label: v, Href: "tel:" + strings.ReplaceAll(v, " ", "")})
	}
	if v := strings.TrimSpace(c.Location); v != "" {
		out = append(out, ContactItem{Kind: "location", Icon: "location", Label: v})
	}
	for _, l := range c.Links {
		u := strings.TrimSpace(l.URL)
		if u == "" {
			continue
		}
		href := Href(u)
		domain := registrableDomain(href)
		out = append(out, ContactItem{Kind: l.Kind, Icon: linkIcon(domain), Label: linkLabel(domain, u), Href: href})
	}
	return out
}

// Href adds https:// to a link without a scheme.
func Href(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return raw
	}
	return "https://" + raw
}

// registrableDomain returns the eTLD+1 of href's host, or the bare host when
// the public suffix list has no answer.
func registrableDomain(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ""
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}

func linkIcon(domain string) string {
	switch domain {
	case "linkedin.com":
		return "linkedin"
	case "github.com":
		return "github"
	}
	return "link"
}

func linkLabel(domain, raw string) string {
	if domain != "" {
		return domain
	}
	return raw
}
