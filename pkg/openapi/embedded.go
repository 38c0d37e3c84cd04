package openapi

import (
	"embed"
	"io/fs"
	"sync"
)

// EmbeddedDocumentName is the file name of the bundled API description.
const EmbeddedDocumentName = "templates-api.yaml"

//go:embed spec/templates-api.yaml
var embedded embed.FS

var (
	embeddedOnce sync.Once
	embeddedDoc  Document
)

// EmbeddedFS exposes the bundled API description.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "spec")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultDocument returns the bundled templates API description.
func DefaultDocument() Document {
	embeddedOnce.Do(func() {
		raw, err := fs.ReadFile(embedded, "spec/"+EmbeddedDocumentName)
		if err != nil {
			panic(err)
		}
		embeddedDoc = MustNewDocument(source{kind: SourceKindEmbedded, location: EmbeddedDocumentName}, raw)
	})
	return embeddedDoc
}
