// Package components renders the HTML views of the UI.
//
// Views are html/template sets exposed as templ.Component values, so
// handlers render full pages and datastar patches through one interface.
package components

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var sharedFS embed.FS

// base holds the layout and the partials every feature can call.
var base = template.Must(template.New("components").Funcs(Funcs()).ParseFS(sharedFS, "templates/*.html"))

// Set is a feature's templates parsed on top of the shared layout.
type Set struct {
	t *template.Template
}

// MustParse parses patterns from fsys on top of the shared layout.
// It panics on error and is meant for package-level variables.
func MustParse(fsys fs.FS, patterns ...string) *Set {
	s, err := Parse(fsys, patterns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse parses patterns from fsys on top of the shared layout.
func Parse(fsys fs.FS, patterns ...string) (*Set, error) {
	t, err := base.Clone()
	if err != nil {
		return nil, err
	}
	t, err = t.ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Set{t: t}, nil
}

// Fragment renders the named template with data.
func (s *Set) Fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return s.t.ExecuteTemplate(w, name, data)
	})
}

// Page renders the named template inside the application shell.
func (s *Set) Page(page PageData, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body bytes.Buffer
		if err := s.Fragment(name, data).Render(ctx, &body); err != nil {
			return err
		}
		//nolint:gosec // body is the output of html/template
		page.Body = template.HTML(body.String())
		return s.t.ExecuteTemplate(w, "layout", page)
	})
}
