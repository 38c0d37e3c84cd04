package pubtemplate

import (
	"io/fs"

	pkgopenapi "github.com/goliatone/go-pubtemplate/pkg/openapi"
	"github.com/goliatone/go-pubtemplate/pkg/preview"
)

// EmbeddedPreviewTemplates exposes the built-in preview templates so callers
// can copy or extend them without importing the preview package directly.
func EmbeddedPreviewTemplates() fs.FS {
	return preview.EmbeddedTemplates()
}

// EmbeddedAPIDocument exposes the bundled templates API document.
func EmbeddedAPIDocument() fs.FS {
	return pkgopenapi.EmbeddedFS()
}
