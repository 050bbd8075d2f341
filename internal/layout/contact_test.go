package layout

import (
	"testing"

	"resume-builder/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestContactItems(t *testing.T) {
	c := model.Contact{
		Email:    "a@b.io",
		Phone:    "+1 555 0100",
		Location: " ",
		Links: []model.Link{
			{Kind: "linkedin", URL: "www.linkedin.com/in/ada"},
			{Kind: "github", URL: "https://github.com/ada"},
			{Kind: "portfolio", URL: "https://blog.ada.co.uk/posts"},
			{Kind: "website", URL: ""},
		},
	}
	assert.Equal(t, []ContactItem{
		{Kind: "email", Icon: "mail", Label: "a@b.io", Href: "mailto:a@b.io"},
		{Kind: "phone", Icon: "phone", Label: "+1 555 0100", Href: "tel:+15550100"},
		{Kind: "linkedin", Icon: "linkedin", Label: "linkedin.com", Href: "https://www.linkedin.com/in/ada"},
		{Kind: "github", Icon: "github", Label: "github.com", Href: "https://github.com/ada"},
		{Kind: "portfolio", Icon: "link", Label: "ada.co.uk", Href: "https://blog.ada.co.uk/posts"},
	}, ContactItems(c))
}

func TestContactItems_Empty(t *testing.T) {
	assert.Equal(t, []ContactItem{}, ContactItems(model.Contact{}))
}

func TestHref(t *testing.T) {
	assert.Equal(t, "", Href(" "))
	assert.Equal(t, "https://x.dev", Href("x.dev"))
	assert.Equal(t, "http://x.dev", Href("http://x.dev"))
	assert.Equal(t, "mailto:a@b", Href("mailto:a@b"))
}

func TestRegistrableDomain_Fallback(t *testing.T) {
	assert.Equal(t, "localhost", registrableDomain("https://localhost:8080/x"))
	assert.Equal(t, "", registrableDomain("https://"))
}
