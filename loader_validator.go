package pubtemplate

import (
	"context"

	internalLoader "github.com/goliatone/go-pubtemplate/internal/openapi/loader"
	internalValidator "github.com/goliatone/go-pubtemplate/internal/openapi/validator"
	pkgopenapi "github.com/goliatone/go-pubtemplate/pkg/openapi"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewValidator compiles doc into a template validator. A nil doc uses the
// bundled templates API document.
func NewValidator(ctx context.Context, doc *pkgopenapi.Document, options ...pkgopenapi.ValidatorOption) (pkgopenapi.Validator, error) {
	source := pkgopenapi.DefaultDocument()
	if doc != nil {
		source = *doc
	}
	cfg := pkgopenapi.NewValidatorOptions(options...)
	return internalValidator.New(ctx, source, cfg)
}

// LoadValidator loads src with loader and compiles the result.
func LoadValidator(ctx context.Context, loader pkgopenapi.Loader, src pkgopenapi.Source, options ...pkgopenapi.ValidatorOption) (pkgopenapi.Validator, error) {
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return NewValidator(ctx, &doc, options...)
}
