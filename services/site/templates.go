package site

import (
	"embed"
	"html/template"

	"golang.org/x/xerrors"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLoading = "loading"
	pageHome    = "home"
	pageFixture = "fixture"
	pageStats   = "stats"
	pageMedia   = "media"
	pageBets    = "bets"
	pageAdmin   = "admin"
)

// parseTemplates pairs the layout with every page, each in its own set so the
// pages can all define "content".
func parseTemplates() (map[string]*template.Template, error) {
	pages := []string{pageLoading, pageHome, pageFixture, pageStats, pageMedia, pageBets, pageAdmin}
	sets := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, xerrors.Errorf("parse %s template: %w", name, err)
		}
		sets[name] = t
	}
	return sets, nil
}
