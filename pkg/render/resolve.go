package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// DateLayout is the format used for date_today fields.
const DateLayout = "2006-01-02"

// Inputs are the pipeline outputs a template's values are resolved from.
type Inputs struct {
	// Summary is the processed (summarised) text of the item.
	Summary string
	// Extracted holds values produced by the AI extraction step keyed by
	// fieldName.
	Extracted map[string]string
	// Serial is the running serial number assigned to the item, if any.
	Serial string
	// Now overrides the resolver clock for date_today fields.
	Now time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the clock used for date_today fields.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSerialFieldNames replaces the field names treated as serial numbers.
func WithSerialFieldNames(names ...string) ResolverOption {
	return func(r *Resolver) {
		r.serialNames = make(map[string]struct{}, len(names))
		for _, name := range names {
			r.serialNames[model.NormalizeFieldName(name)] = struct{}{}
		}
	}
}

// Resolver derives the value of every field from pipeline inputs according
// to the field type.
type Resolver struct {
	now         func() time.Time
	serialNames map[string]struct{}
}

// NewResolver returns a resolver using time.Now and the default serial
// field names.
func NewResolver(options ...ResolverOption) *Resolver {
	r := &Resolver{now: time.Now}
	WithSerialFieldNames("serial_number", "record_number", "رقم_القيد")(r)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

var summaryKeys = []string{"summary", "التلخيص"}

// Resolve returns the value of each field keyed by fieldName:
//   - date_today: the current date in DateLayout
//   - static: the default value; serial fields take the item serial with a
//     leading '#'
//   - summary: the extracted value for the field, else the summary text
//   - extracted: the extracted value for the field
//
// Default-value fallback for empty values is applied by the Renderer.
func (r *Resolver) Resolve(tpl model.Template, in Inputs) map[string]string {
	now := in.Now
	if now.IsZero() {
		now = r.now()
	}

	values := make(map[string]string, len(tpl.CustomFields))
	for _, field := range tpl.CustomFields {
		name := field.FieldName
		switch field.FieldType {
		case model.FieldTypeDateToday:
			values[name] = now.Format(DateLayout)
		case model.FieldTypeStatic:
			if r.isSerial(name) {
				values[name] = formatSerial(firstNonEmpty(in.Serial, in.Extracted[name]))
				continue
			}
			values[name] = field.DefaultValue
		case model.FieldTypeSummary:
			value := strings.TrimSpace(in.Extracted[name])
			for _, key := range summaryKeys {
				if value != "" {
					break
				}
				value = strings.TrimSpace(in.Extracted[key])
			}
			if value == "" {
				value = strings.TrimSpace(in.Summary)
			}
			values[name] = value
		default:
			values[name] = strings.TrimSpace(in.Extracted[name])
		}
	}
	return values
}

func (r *Resolver) isSerial(name string) bool {
	_, ok := r.serialNames[name]
	return ok
}

func formatSerial(raw string) string {
	value := strings.TrimSpace(raw)
	switch value {
	case "", "0", "-", "---":
		return ""
	}
	if strings.HasPrefix(value, "#") {
		return value
	}
	return "#" + value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// ExtractionRequest describes one field the external AI step must fill.
type ExtractionRequest struct {
	FieldName    string `json:"fieldName"`
	FieldLabel   string `json:"fieldLabel"`
	Instructions string `json:"extractionInstructions"`
}

// ExtractionRequests lists the active extracted fields in display order.
func ExtractionRequests(tpl model.Template) []ExtractionRequest {
	var out []ExtractionRequest
	for _, field := range model.SortByDisplayOrder(tpl.CustomFields) {
		if !field.IsActive || field.FieldType != model.FieldTypeExtracted {
			continue
		}
		out = append(out, ExtractionRequest{
			FieldName:    field.FieldName,
			FieldLabel:   field.FieldLabel,
			Instructions: strings.TrimSpace(field.ExtractionInstructions),
		})
	}
	return out
}

// ExtractionPrompt builds the instruction block handed to the AI extraction
// step: the template-level prompt, one line per extracted field, and the
// expected JSON reply shape. It returns "" when nothing needs extraction.
func ExtractionPrompt(tpl model.Template) string {
	requests := ExtractionRequests(tpl)
	if len(requests) == 0 {
		return ""
	}

	var out strings.Builder
	if prompt := strings.TrimSpace(tpl.ExtractionPrompt); prompt != "" {
		out.WriteString(prompt)
		out.WriteString("\n\n")
	}
	out.WriteString("Extract the following fields from the text:\n")
	keys := make([]string, 0, len(requests))
	for _, req := range requests {
		fmt.Fprintf(&out, "- %q (%s): %s\n", req.FieldName, req.FieldLabel, req.Instructions)
		keys = append(keys, fmt.Sprintf("%q: \"...\"", req.FieldName))
	}
	out.WriteString("Reply with a single JSON object: {")
	out.WriteString(strings.Join(keys, ", "))
	out.WriteString("}. Leave a value empty when the text does not mention it.")
	return out.String()
}
