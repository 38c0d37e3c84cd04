package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-pubtemplate/pkg/model"
	pkgopenapi "github.com/goliatone/go-pubtemplate/pkg/openapi"
)

// Validator implements pkgopenapi.Validator using kin-openapi.
type Validator struct {
	schemaName string
	schema     *openapi3.Schema
	operations []pkgopenapi.Operation
}

var _ pkgopenapi.Validator = (*Validator)(nil)

// New parses doc, validates it unless disabled, and resolves the component
// schema template documents are checked against.
func New(ctx context.Context, doc pkgopenapi.Document, options pkgopenapi.ValidatorOptions) (*Validator, error) {
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi validator: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi validator: load %s: %w", doc.Location(), err)
	}
	if !options.SkipDocumentValidation {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi validator: validate %s: %w", doc.Location(), err)
		}
	}

	name := options.SchemaName
	if name == "" {
		name = pkgopenapi.DefaultSchema
	}
	if spec.Components == nil {
		return nil, fmt.Errorf("openapi validator: %s has no components", doc.Location())
	}
	ref, ok := spec.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi validator: schema %q not found in %s", name, doc.Location())
	}

	return &Validator{
		schemaName: name,
		schema:     ref.Value,
		operations: collectOperations(spec),
	}, nil
}

// ValidateTemplate checks the JSON form of tpl against the schema. Every
// violation is reported in a *pkgopenapi.ValidationError.
func (v *Validator) ValidateTemplate(ctx context.Context, tpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("openapi validator: encode template: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("openapi validator: decode template: %w", err)
	}

	err = v.schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var issues []pkgopenapi.Issue
	collectIssues(err, &issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
	return &pkgopenapi.ValidationError{Issues: issues}
}

// Operations lists the routes of the document sorted by path then method.
func (v *Validator) Operations() []pkgopenapi.Operation {
	return append([]pkgopenapi.Operation(nil), v.operations...)
}

// SchemaName reports the component schema in use.
func (v *Validator) SchemaName() string {
	return v.schemaName
}

func collectIssues(err error, out *[]pkgopenapi.Issue) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collectIssues(inner, out)
		}
	case *openapi3.SchemaError:
		path := ""
		if pointer := e.JSONPointer(); len(pointer) > 0 {
			path = "/" + strings.Join(pointer, "/")
		}
		reason := e.Reason
		if reason == "" {
			reason = e.Error()
		}
		*out = append(*out, pkgopenapi.Issue{Path: path, Message: reason})
	default:
		*out = append(*out, pkgopenapi.Issue{Message: err.Error()})
	}
}

func collectOperations(spec *openapi3.T) []pkgopenapi.Operation {
	if spec.Paths == nil {
		return nil
	}

	var operations []pkgopenapi.Operation
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			operations = append(operations, pkgopenapi.Operation{
				ID:      id,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}

	sort.Slice(operations, func(i, j int) bool {
		if operations[i].Path != operations[j].Path {
			return operations[i].Path < operations[j].Path
		}
		return operations[i].Method < operations[j].Method
	})
	return operations
}
