// ABOUTME: Help pages rendered from embedded markdown with goldmark
// ABOUTME: Only the pages listed in helpPages are served

package webadmin

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type helpPage struct {
	Slug  string
	Title string
}

var helpPages = []helpPage{
	{Slug: "getting-started", Title: "Getting Started"},
	{Slug: "agents", Title: "Agents"},
	{Slug: "users", Title: "Users and Jobs"},
	{Slug: "meetings", Title: "Meetings"},
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderHelp converts an embedded help page to HTML.
func renderHelp(slug string) (template.HTML, error) {
	src, err := templateFS.ReadFile("templates/help/" + slug + ".md")
	if err != nil {
		return "", fmt.Errorf("reading help page %s: %w", slug, err)
	}
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering help page %s: %w", slug, err)
	}
	return template.HTML(buf.String()), nil
}

func (a *Admin) handleHelp(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("page")
	if slug == "" {
		slug = helpPages[0].Slug
	}

	known := false
	for _, p := range helpPages {
		if p.Slug == slug {
			known = true
			break
		}
	}
	if !known {
		redirect(w, r, "/help")
		return
	}

	content, err := renderHelp(slug)
	if err != nil {
		a.logger.Error("failed to render help", "page", slug, "error", err)
		http.Error(w, "Help page unavailable", http.StatusInternalServerError)
		return
	}

	a.render(w, http.StatusOK, "help.html", helpData{
		pageData: a.newPage(w, r, "Help", "help"),
		Pages:    helpPages,
		Current:  slug,
		Content:  content,
	})
}
