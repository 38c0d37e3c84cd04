package openapi

import (
	"context"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// DefaultSchema is the component schema template documents are checked
// against.
const DefaultSchema = "Template"

// Validator checks template documents against the API description.
type Validator interface {
	ValidateTemplate(ctx context.Context, doc model.Template) error
	Operations() []Operation
}

// ValidatorOptions configures a Validator.
type ValidatorOptions struct {
	// SchemaName selects the component schema. Defaults to DefaultSchema.
	SchemaName string
	// SkipDocumentValidation skips validating the API description itself.
	SkipDocumentValidation bool
}

// ValidatorOption mutates ValidatorOptions prior to construction.
type ValidatorOption func(*ValidatorOptions)

// WithSchemaName selects the component schema used for validation.
func WithSchemaName(name string) ValidatorOption {
	return func(opts *ValidatorOptions) {
		if name != "" {
			opts.SchemaName = name
		}
	}
}

// WithoutDocumentValidation skips validating the API description on load.
func WithoutDocumentValidation() ValidatorOption {
	return func(opts *ValidatorOptions) {
		opts.SkipDocumentValidation = true
	}
}

// NewValidatorOptions applies options over the defaults.
func NewValidatorOptions(options ...ValidatorOption) ValidatorOptions {
	cfg := ValidatorOptions{SchemaName: DefaultSchema}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
