package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// field name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload resolves payload keys to field names. A key may be a field
// name, a dotted or slash path whose first segment is a field name
// ("email.format", "/body/email"), or a JSON pointer into the schema array
// ("/3/conditions/0/field") as reported by the linter. Keys that match no
// field become form-level errors so no message is lost.
func MapErrorPayload(fields []schema.Field, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Name != "" {
			names[field.Name] = struct{}{}
		}
	}

	for _, raw := range sortedKeys(payload) {
		messages := normalizeMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		name, ok := mapErrorPath(raw, fields, names)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], messages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func mapErrorPath(raw string, fields []schema.Field, names map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	if _, ok := names[trimmed]; ok {
		return trimmed, true
	}

	segments := dropWrapperSegments(parsePathSegments(trimmed))
	if len(segments) == 0 {
		return "", false
	}
	if index, err := strconv.Atoi(segments[0]); err == nil {
		if index >= 0 && index < len(fields) && fields[index].Name != "" {
			return fields[index].Name, true
		}
		return "", false
	}
	if _, ok := names[segments[0]]; ok {
		return segments[0], true
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(path), "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
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

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"request": {},
	"payload": {},
	"data":    {},
	"values":  {},
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 1 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(key) {
	case "", "_", "#", "/", "$", "form", "_form", "__form__", "_global", "_error":
		return true
	}
	return false
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
