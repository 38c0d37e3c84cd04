package model

import (
	"fmt"
	"strings"
)

// Problem describes a single invariant violation. Attribute uses the wire
// name of the offending attribute; Field is the fieldName of the offending
// field when the problem is field-scoped.
type Problem struct {
	Field     string `json:"field,omitempty"`
	Attribute string `json:"attribute"`
	Reason    string `json:"reason"`
}

func (p Problem) String() string {
	if p.Field != "" {
		return fmt.Sprintf("%s.%s: %s", p.Field, p.Attribute, p.Reason)
	}
	return fmt.Sprintf("%s: %s", p.Attribute, p.Reason)
}

// FieldProblems reports the builder-level requirements a field must satisfy
// before it can join a template.
func FieldProblems(field Field) []Problem {
	var problems []Problem
	name := field.FieldName
	if strings.TrimSpace(field.FieldName) == "" {
		problems = append(problems, Problem{Attribute: "fieldName", Reason: "is required"})
	}
	if strings.TrimSpace(field.FieldLabel) == "" {
		problems = append(problems, Problem{Field: name, Attribute: "fieldLabel", Reason: "is required"})
	}
	if field.FieldType == FieldTypeExtracted && strings.TrimSpace(field.ExtractionInstructions) == "" {
		problems = append(problems, Problem{
			Field:     name,
			Attribute: "extractionInstructions",
			Reason:    "is required for extracted fields",
		})
	}
	if field.FieldType != "" && !field.FieldType.Valid() {
		problems = append(problems, Problem{Field: name, Attribute: "fieldType", Reason: fmt.Sprintf("unknown type %q", field.FieldType)})
	}
	if field.Formatting != "" && !field.Formatting.Valid() {
		problems = append(problems, Problem{Field: name, Attribute: "formatting", Reason: fmt.Sprintf("unknown formatting %q", field.Formatting)})
	}
	return problems
}

// TemplateProblems checks every template invariant: a name, known enums, a
// positive length cap, at least one field, unique field names, and a
// contiguous display order.
func TemplateProblems(tpl Template) []Problem {
	var problems []Problem
	if strings.TrimSpace(tpl.Name) == "" {
		problems = append(problems, Problem{Attribute: "name", Reason: "is required"})
	}
	if !tpl.TemplateType.Valid() {
		problems = append(problems, Problem{Attribute: "templateType", Reason: fmt.Sprintf("unknown type %q", tpl.TemplateType)})
	}
	if tpl.HeaderFormatting != "" && !tpl.HeaderFormatting.Valid() {
		problems = append(problems, Problem{Attribute: "headerFormatting", Reason: fmt.Sprintf("unknown formatting %q", tpl.HeaderFormatting)})
	}
	if tpl.FooterFormatting != "" && !tpl.FooterFormatting.Valid() {
		problems = append(problems, Problem{Attribute: "footerFormatting", Reason: fmt.Sprintf("unknown formatting %q", tpl.FooterFormatting)})
	}
	if tpl.MaxLength != nil && *tpl.MaxLength <= 0 {
		problems = append(problems, Problem{Attribute: "maxLength", Reason: "must be a positive integer"})
	}
	if len(tpl.CustomFields) == 0 {
		problems = append(problems, Problem{Attribute: "customFields", Reason: "at least one field is required"})
	}

	seen := make(map[string]struct{}, len(tpl.CustomFields))
	for idx, field := range tpl.CustomFields {
		problems = append(problems, FieldProblems(field)...)
		if _, dup := seen[field.FieldName]; dup {
			problems = append(problems, Problem{Field: field.FieldName, Attribute: "fieldName", Reason: "is used by more than one field"})
		}
		seen[field.FieldName] = struct{}{}
		if field.DisplayOrder != idx {
			problems = append(problems, Problem{
				Field:     field.FieldName,
				Attribute: "displayOrder",
				Reason:    fmt.Sprintf("is %d but the field is at position %d", field.DisplayOrder, idx),
			})
		}
	}
	return problems
}
