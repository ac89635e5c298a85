// Package pages holds the editor's page components. Pages are static
// shells — all live state arrives over SSE — so each component streams a
// pre-built HTML document.
package pages

import (
	"context"
	"embed"
	"io"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var htmlFS embed.FS

// page builds a component that writes the named embedded document.
func page(name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data, err := htmlFS.ReadFile("html/" + name)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
}

// Editor is the main camera path editor page.
func Editor() templ.Component { return page("editor.html") }

// Library is the camera path library page.
func Library() templ.Component { return page("library.html") }

// Settings is the settings page.
func Settings() templ.Component { return page("settings.html") }
