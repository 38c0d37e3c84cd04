package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// ErrorMapping splits an API validation payload into messages for individual
// fields (keyed by fieldName), for template attributes (keyed by wire name),
// and for the template as a whole.
type ErrorMapping struct {
	Fields     map[string][]string
	Attributes map[string][]string
	Template   []string
}

// Empty reports whether the mapping carries no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Attributes) == 0 && len(m.Template) == 0
}

var templateAttributes = map[string]struct{}{
	"id":                     {},
	"taskId":                 {},
	"name":                   {},
	"templateType":           {},
	"isDefault":              {},
	"isActive":               {},
	"headerText":             {},
	"headerFormatting":       {},
	"footerText":             {},
	"footerFormatting":       {},
	"fieldSeparator":         {},
	"useNewlineAfterHeader":  {},
	"useNewlineBeforeFooter": {},
	"maxLength":              {},
	"extractionPrompt":       {},
}

// MergeMessages concatenates and normalises message slices, trimming
// whitespace and removing duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (JSON pointer paths,
// dotted paths, bracketed indexes) against tpl. customFields entries resolve
// by index or by fieldName; unknown paths become template-level messages so
// nothing is lost.
func MapErrorPayload(tpl model.Template, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields:     make(map[string][]string),
		Attributes: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		kind, key := mapErrorPath(rawPath, tpl)
		switch kind {
		case pathField:
			mapping.Fields[key] = append(mapping.Fields[key], normalized...)
		case pathAttribute:
			mapping.Attributes[key] = append(mapping.Attributes[key], normalized...)
		default:
			mapping.Template = append(mapping.Template, normalized...)
		}
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	if len(mapping.Attributes) == 0 {
		mapping.Attributes = nil
	}
	mapping.Template = normalizeMessages(mapping.Template)
	return mapping
}

type pathKind int

const (
	pathTemplate pathKind = iota
	pathField
	pathAttribute
)

func mapErrorPath(raw string, tpl model.Template) (pathKind, string) {
	trimmed := strings.TrimSpace(raw)
	if isTemplateLevelKey(trimmed) {
		return pathTemplate, ""
	}

	segments := dropWrapperSegments(parsePathSegments(trimmed))
	if len(segments) == 0 {
		return pathTemplate, ""
	}

	head := segments[0]
	if head == "customFields" || head == "fields" {
		if len(segments) < 2 {
			return pathAttribute, "customFields"
		}
		if idx, err := strconv.Atoi(segments[1]); err == nil {
			if idx >= 0 && idx < len(tpl.CustomFields) {
				return pathField, tpl.CustomFields[idx].FieldName
			}
			return pathTemplate, ""
		}
		if tpl.IndexOf(segments[1]) >= 0 {
			return pathField, segments[1]
		}
		return pathTemplate, ""
	}

	if _, ok := templateAttributes[head]; ok {
		return pathAttribute, head
	}
	if tpl.IndexOf(head) >= 0 {
		return pathField, head
	}
	return pathTemplate, ""
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":     {},
		"request":  {},
		"payload":  {},
		"data":     {},
		"template": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isTemplateLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors", "detail":
		return true
	default:
		return false
	}
}
