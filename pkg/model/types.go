package model

import internalmodel "github.com/goliatone/go-pubtemplate/internal/model"

// TemplateType re-exports the internal TemplateType enumeration.
type TemplateType = internalmodel.TemplateType

const (
	TemplateTypeNews      = internalmodel.TemplateTypeNews
	TemplateTypeReport    = internalmodel.TemplateTypeReport
	TemplateTypeInterview = internalmodel.TemplateTypeInterview
	TemplateTypeSummary   = internalmodel.TemplateTypeSummary
	TemplateTypeCustom    = internalmodel.TemplateTypeCustom
)

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeExtracted = internalmodel.FieldTypeExtracted
	FieldTypeSummary   = internalmodel.FieldTypeSummary
	FieldTypeDateToday = internalmodel.FieldTypeDateToday
	FieldTypeStatic    = internalmodel.FieldTypeStatic
)

// Formatting re-exports the internal Formatting enumeration.
type Formatting = internalmodel.Formatting

const (
	FormattingNone          = internalmodel.FormattingNone
	FormattingBold          = internalmodel.FormattingBold
	FormattingItalic        = internalmodel.FormattingItalic
	FormattingCode          = internalmodel.FormattingCode
	FormattingQuote         = internalmodel.FormattingQuote
	FormattingSpoiler       = internalmodel.FormattingSpoiler
	FormattingStrikethrough = internalmodel.FormattingStrikethrough
	FormattingUnderline     = internalmodel.FormattingUnderline
)

const (
	DefaultFieldSeparator = internalmodel.DefaultFieldSeparator
	DefaultLabelSeparator = internalmodel.DefaultLabelSeparator
)

type Field = internalmodel.Field
type Template = internalmodel.Template
type Problem = internalmodel.Problem

var (
	NewField           = internalmodel.NewField
	NewTemplate        = internalmodel.NewTemplate
	TemplateTypes      = internalmodel.TemplateTypes
	FieldTypes         = internalmodel.FieldTypes
	Formattings        = internalmodel.Formattings
	NormalizeFieldName = internalmodel.NormalizeFieldName
	DefaultLabeler     = internalmodel.DefaultLabeler
	Renumber           = internalmodel.Renumber
	SortByDisplayOrder = internalmodel.SortByDisplayOrder
	OrderIsContiguous  = internalmodel.OrderIsContiguous
	FieldProblems      = internalmodel.FieldProblems
	TemplateProblems   = internalmodel.TemplateProblems
	IntPtr             = internalmodel.IntPtr
)
