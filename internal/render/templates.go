package render

import (
	"embed"
	"fmt"
)

//go:embed all:templates
var templates embed.FS

// Template names.
const (
	IndexTemplate    = "index.html"
	IndexSVGTemplate = "index-svg.html"
	MainSCSSTemplate = "scss/main.scss"
)

// Partials are the SCSS partials written next to the main stylesheet, as
// scss/_<name>.scss.
var Partials = []string{
	"animated",
	"core",
	"extras",
	"functions",
	"icons",
	"path",
	"variables",
}

// PartialTemplate returns the template name of a partial.
func PartialTemplate(name string) string {
	return "scss/_" + name + ".scss"
}

// Template returns the text of an embedded template.
func Template(name string) (string, error) {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("template %q: %w", name, err)
	}
	return string(data), nil
}
