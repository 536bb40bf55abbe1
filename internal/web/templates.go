package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewTemplates parses the site templates plus every *.html file in extra
// into one set. Pages share the "header" and "footer" blocks.
func NewTemplates(organization string, extra ...fs.FS) (*template.Template, error) {
	t := template.New("").Funcs(template.FuncMap{
		"organization": func() string { return organization },
		"date": func(ts time.Time) string {
			return ts.Format("2006-01-02")
		},
	})

	t, err := t.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	for _, fsys := range extra {
		if t, err = t.ParseFS(fsys, "*.html"); err != nil {
			return nil, err
		}
	}
	return t, nil
}
