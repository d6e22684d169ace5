package formset

import (
	"io/fs"

	"github.com/goliatone/go-formset/pkg/render"
)

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the render package directly.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}
