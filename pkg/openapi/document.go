package openapi

import (
	"errors"
	"fmt"
	"strings"
)

// Document wraps a raw API description and its origin so callers never touch
// kin-openapi types directly.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument validates the inputs and copies raw.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Operation is one route of the templates API.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Issue is a single schema violation. Path is a JSON pointer into the
// template document ("/customFields/0/fieldType").
type Issue struct {
	Path    string
	Message string
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "openapi: document is invalid"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return "openapi: document is invalid: " + strings.Join(parts, "; ")
}

// Payload groups the issue messages by path, in the shape the API uses for
// its own validation errors. Document-level issues use the empty key.
func (e *ValidationError) Payload() map[string][]string {
	payload := make(map[string][]string, len(e.Issues))
	for _, issue := range e.Issues {
		payload[issue.Path] = append(payload[issue.Path], issue.Message)
	}
	return payload
}
