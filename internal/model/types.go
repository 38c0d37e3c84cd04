package model

import "encoding/json"

// TemplateType classifies a publishing template.
type TemplateType string

const (
	TemplateTypeNews      TemplateType = "news"
	TemplateTypeReport    TemplateType = "report"
	TemplateTypeInterview TemplateType = "interview"
	TemplateTypeSummary   TemplateType = "summary"
	TemplateTypeCustom    TemplateType = "custom"
)

// FieldType determines where a field's value comes from at render time.
type FieldType string

const (
	// FieldTypeExtracted values are produced by an external AI extraction step
	// driven by the field's extraction instructions.
	FieldTypeExtracted FieldType = "extracted"
	// FieldTypeSummary values come from a prior summarisation step.
	FieldTypeSummary FieldType = "summary"
	// FieldTypeDateToday values are the current date.
	FieldTypeDateToday FieldType = "date_today"
	// FieldTypeStatic values are the field's default value.
	FieldTypeStatic FieldType = "static"
)

// Formatting names the wrapper applied to a rendered value, header, or footer.
type Formatting string

const (
	FormattingNone          Formatting = "none"
	FormattingBold          Formatting = "bold"
	FormattingItalic        Formatting = "italic"
	FormattingCode          Formatting = "code"
	FormattingQuote         Formatting = "quote"
	FormattingSpoiler       Formatting = "spoiler"
	FormattingStrikethrough Formatting = "strikethrough"
	FormattingUnderline     Formatting = "underline"
)

const (
	DefaultFieldSeparator = "\n"
	DefaultLabelSeparator = ": "
)

var (
	templateTypes = []TemplateType{
		TemplateTypeNews, TemplateTypeReport, TemplateTypeInterview,
		TemplateTypeSummary, TemplateTypeCustom,
	}
	fieldTypes = []FieldType{
		FieldTypeExtracted, FieldTypeSummary, FieldTypeDateToday, FieldTypeStatic,
	}
	formattings = []Formatting{
		FormattingNone, FormattingBold, FormattingItalic, FormattingCode,
		FormattingQuote, FormattingSpoiler, FormattingStrikethrough, FormattingUnderline,
	}
)

// TemplateTypes returns every template type in wire order.
func TemplateTypes() []TemplateType { return append([]TemplateType(nil), templateTypes...) }

// FieldTypes returns every field type in wire order.
func FieldTypes() []FieldType { return append([]FieldType(nil), fieldTypes...) }

// Formattings returns every formatting option in wire order.
func Formattings() []Formatting { return append([]Formatting(nil), formattings...) }

// Valid reports whether t is a known template type.
func (t TemplateType) Valid() bool {
	for _, candidate := range templateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	for _, candidate := range fieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Valid reports whether f is a known formatting option.
func (f Formatting) Valid() bool {
	for _, candidate := range formattings {
		if candidate == f {
			return true
		}
	}
	return false
}

// Field is one named, typed slot of a publishing template. JSON and YAML
// names are part of the wire contract with the templates API.
type Field struct {
	ID                     int64      `json:"id,omitempty" yaml:"id,omitempty"`
	FieldName              string     `json:"fieldName" yaml:"fieldName"`
	FieldLabel             string     `json:"fieldLabel" yaml:"fieldLabel"`
	FieldType              FieldType  `json:"fieldType" yaml:"fieldType"`
	ExtractionInstructions string     `json:"extractionInstructions" yaml:"extractionInstructions"`
	DefaultValue           string     `json:"defaultValue" yaml:"defaultValue"`
	Prefix                 string     `json:"prefix" yaml:"prefix"`
	Suffix                 string     `json:"suffix" yaml:"suffix"`
	UseDefaultIfEmpty      bool       `json:"useDefaultIfEmpty" yaml:"useDefaultIfEmpty"`
	Formatting             Formatting `json:"formatting" yaml:"formatting"`
	DisplayOrder           int        `json:"displayOrder" yaml:"displayOrder"`
	ShowLabel              bool       `json:"showLabel" yaml:"showLabel"`
	LabelSeparator         string     `json:"labelSeparator" yaml:"labelSeparator"`
	IsActive               bool       `json:"isActive" yaml:"isActive"`
}

// Template is the whole document submitted to the templates API.
type Template struct {
	ID                     int64        `json:"id,omitempty" yaml:"id,omitempty"`
	TaskID                 int64        `json:"taskId" yaml:"taskId"`
	Name                   string       `json:"name" yaml:"name"`
	TemplateType           TemplateType `json:"templateType" yaml:"templateType"`
	IsDefault              bool         `json:"isDefault" yaml:"isDefault"`
	IsActive               bool         `json:"isActive" yaml:"isActive"`
	HeaderText             string       `json:"headerText" yaml:"headerText"`
	HeaderFormatting       Formatting   `json:"headerFormatting" yaml:"headerFormatting"`
	FooterText             string       `json:"footerText" yaml:"footerText"`
	FooterFormatting       Formatting   `json:"footerFormatting" yaml:"footerFormatting"`
	FieldSeparator         string       `json:"fieldSeparator" yaml:"fieldSeparator"`
	UseNewlineAfterHeader  bool         `json:"useNewlineAfterHeader" yaml:"useNewlineAfterHeader"`
	UseNewlineBeforeFooter bool         `json:"useNewlineBeforeFooter" yaml:"useNewlineBeforeFooter"`
	MaxLength              *int         `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	ExtractionPrompt       string       `json:"extractionPrompt,omitempty" yaml:"extractionPrompt,omitempty"`
	CustomFields           []Field      `json:"customFields" yaml:"customFields"`
}

// NewField returns a field populated with the builder defaults.
func NewField() Field {
	return Field{
		FieldType:         FieldTypeExtracted,
		UseDefaultIfEmpty: true,
		Formatting:        FormattingNone,
		ShowLabel:         true,
		LabelSeparator:    DefaultLabelSeparator,
		IsActive:          true,
	}
}

// NewTemplate returns an empty draft populated with the template defaults.
func NewTemplate() Template {
	return Template{
		TemplateType:           TemplateTypeCustom,
		IsActive:               true,
		HeaderFormatting:       FormattingNone,
		FooterFormatting:       FormattingNone,
		FieldSeparator:         DefaultFieldSeparator,
		UseNewlineAfterHeader:  true,
		UseNewlineBeforeFooter: true,
		CustomFields:           []Field{},
	}
}

// UnmarshalJSON applies NewField defaults to attributes missing from data.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	decoded := plain(NewField())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*f = Field(decoded)
	return nil
}

// UnmarshalJSON applies NewTemplate defaults to attributes missing from data.
func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	decoded := plain(NewTemplate())
	decoded.CustomFields = nil
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.CustomFields == nil {
		decoded.CustomFields = []Field{}
	}
	*t = Template(decoded)
	return nil
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	if t.MaxLength != nil {
		limit := *t.MaxLength
		out.MaxLength = &limit
	}
	out.CustomFields = append([]Field{}, t.CustomFields...)
	return out
}

// IsPersisted reports whether the API has assigned the template an id.
func (t Template) IsPersisted() bool {
	return t.ID != 0
}

// IndexOf returns the position of the field named name, or -1.
func (t Template) IndexOf(name string) int {
	for idx, field := range t.CustomFields {
		if field.FieldName == name {
			return idx
		}
	}
	return -1
}

// MaxLengthOf returns the configured cap, or zero when unlimited.
func (t Template) MaxLengthOf() int {
	if t.MaxLength == nil {
		return 0
	}
	return *t.MaxLength
}

// IntPtr is a small helper for populating MaxLength.
func IntPtr(v int) *int {
	return &v
}
