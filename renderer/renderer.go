// Package renderer turns point of sale reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/pdv"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates is the directory of markdown templates.
var templates, _ = fs.Sub(templatesFS, "templates")

// funcs are the helpers available in every template.
var funcs = template.FuncMap{
	"qty": Quantity,
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// Quantity formats q in its unit, like "3 un", "1.25 kg" or "0.5 l".
func Quantity(q pdv.Quantity, unit pdv.UnitType) string {
	switch unit {
	case pdv.Kilo:
		return q.String() + " kg"
	case pdv.Liter:
		return q.String() + " l"
	default:
		return q.String() + " un"
	}
}
