package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/render"
)

var (
	// ErrNotFound is matched by an *APIError with status 404.
	ErrNotFound = errors.New("api: not found")
	// ErrRejected is matched by an *APIError with status 400 or 422.
	ErrRejected = errors.New("api: document rejected")
	// ErrUnauthorized is matched by an *APIError with status 401 or 403.
	ErrUnauthorized = errors.New("api: unauthorized")
)

// APIError is returned for every non-2xx response. Messages holds the
// server's validation payload keyed by attribute path; Message holds a
// single top-level error.
type APIError struct {
	Method   string
	Path     string
	Status   int
	Message  string
	Messages map[string][]string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	keys := make([]string, 0, len(e.Messages))
	for key := range e.Messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "; %s: %s", key, strings.Join(e.Messages[key], ", "))
	}
	return b.String()
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrRejected:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Mapping splits the server messages between the fields of tpl and the
// template itself.
func (e *APIError) Mapping(tpl model.Template) render.ErrorMapping {
	mapping := render.MapErrorPayload(tpl, e.Messages)
	if e.Message != "" {
		mapping.Template = render.MergeMessages(mapping.Template, e.Message)
	}
	return mapping
}

type errorBody struct {
	Error  json.RawMessage            `json:"error"`
	Errors map[string]json.RawMessage `json:"errors"`
}

func decodeAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: status}

	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = decodeMessage(payload.Error)
	if len(payload.Errors) > 0 {
		apiErr.Messages = make(map[string][]string, len(payload.Errors))
		for key, raw := range payload.Errors {
			if messages := decodeMessages(raw); len(messages) > 0 {
				apiErr.Messages[key] = messages
			}
		}
	}
	return apiErr
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func decodeMessages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return render.MergeMessages(list)
	}
	if text := decodeMessage(raw); text != "" {
		return []string{text}
	}
	return nil
}
