package render

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// FieldSubset selects fields by name or by type. A field matches when either
// list contains it; an empty subset matches everything.
type FieldSubset struct {
	Names []string
	Types []string
}

// Empty reports whether the subset has no filters.
func (s FieldSubset) Empty() bool {
	return len(normaliseTokens(s.Names)) == 0 && len(normaliseTokens(s.Types)) == 0
}

// ParseSubset splits comma separated lists, as passed on command lines and
// query strings.
func ParseSubset(names, types string) FieldSubset {
	return FieldSubset{Names: splitList(names), Types: splitList(types)}
}

// ApplySubset returns copies of the fields matching subset, in order.
func ApplySubset(fields []schema.Field, subset FieldSubset) []schema.Field {
	names := normaliseTokens(subset.Names)
	types := normaliseTokens(subset.Types)
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if len(names) > 0 || len(types) > 0 {
			_, byName := names[strings.ToLower(field.Name)]
			_, byType := types[strings.ToLower(string(field.Type))]
			if !byName && !byType {
				continue
			}
		}
		out = append(out, field.Clone())
	}
	return out
}

func normaliseTokens(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		out[trimmed] = struct{}{}
	}
	return out
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
