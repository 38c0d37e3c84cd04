package render

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

const ellipsis = "..."

// RenderOptions carries the per-item data a template is rendered with.
type RenderOptions struct {
	// Values holds the resolved value of each field keyed by fieldName.
	// Resolver.Resolve produces it from pipeline inputs.
	Values map[string]string
	// Fallback is returned untouched when the template is inactive.
	Fallback string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDialect selects the output dialect. Defaults to TelegramHTML.
func WithDialect(dialect Dialect) Option {
	return func(r *Renderer) {
		if dialect != nil {
			r.dialect = dialect
		}
	}
}

// WithoutSanitizer disables value sanitisation. Intended for trusted values
// only.
func WithoutSanitizer() Option {
	return func(r *Renderer) {
		r.sanitize = false
	}
}

// WithLogger sets the logger used for render traces.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer turns a template plus resolved values into the published text.
type Renderer struct {
	dialect  Dialect
	sanitize bool
	logger   *zap.Logger
}

// NewRenderer constructs a Renderer with the Telegram HTML dialect and value
// sanitisation enabled.
func NewRenderer(options ...Option) *Renderer {
	r := &Renderer{
		dialect:  TelegramHTML(),
		sanitize: true,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Dialect returns the dialect in use.
func (r *Renderer) Dialect() Dialect {
	return r.dialect
}

// Render assembles header, active fields in display order joined by the
// field separator, and footer, then applies the maxLength cap.
func (r *Renderer) Render(tpl model.Template, opts RenderOptions) string {
	if !tpl.IsActive {
		r.logger.Debug("render: template inactive", zap.String("template", tpl.Name))
		return opts.Fallback
	}

	var out strings.Builder

	if header := strings.TrimSpace(tpl.HeaderText); header != "" {
		out.WriteString(r.dialect.Wrap(header, tpl.HeaderFormatting))
		if tpl.UseNewlineAfterHeader {
			out.WriteString("\n")
		}
	}

	fields := model.SortByDisplayOrder(tpl.CustomFields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if !field.IsActive {
			continue
		}
		parts = append(parts, r.RenderField(field, opts.Values[field.FieldName]))
	}
	out.WriteString(strings.Join(parts, tpl.FieldSeparator))

	if footer := strings.TrimSpace(tpl.FooterText); footer != "" {
		if tpl.UseNewlineBeforeFooter {
			out.WriteString("\n")
		}
		out.WriteString(r.dialect.Wrap(footer, tpl.FooterFormatting))
	}

	result := Truncate(out.String(), tpl.MaxLengthOf())
	r.logger.Debug("render: template applied",
		zap.String("template", tpl.Name),
		zap.Int("fields", len(parts)),
		zap.Int("length", len([]rune(result))))
	return result
}

// RenderField renders a single field as
// prefix + label + separator + formatted value + suffix. An empty value
// falls back to the default value when UseDefaultIfEmpty is set and is never
// wrapped.
func (r *Renderer) RenderField(field model.Field, value string) string {
	if strings.TrimSpace(value) == "" {
		value = ""
		if field.UseDefaultIfEmpty {
			value = field.DefaultValue
		}
	}
	if r.sanitize {
		value = r.dialect.Sanitize(value)
	}

	var out strings.Builder
	out.WriteString(field.Prefix)
	if field.ShowLabel && field.FieldLabel != "" {
		out.WriteString(field.FieldLabel)
		out.WriteString(field.LabelSeparator)
	}
	if value != "" {
		out.WriteString(r.dialect.Wrap(value, field.Formatting))
	}
	out.WriteString(field.Suffix)
	return out.String()
}

// Truncate caps text at limit runes. Longer text keeps limit-3 runes followed
// by "..."; limits of three or less cut without an ellipsis. A limit of zero
// or less disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
