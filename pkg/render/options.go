package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// RenderOptions describe per-request data renderers use to customise their
// output without mutating the schema.
type RenderOptions struct {
	// Title is shown above the form when set.
	Title string
	// Action and Method populate the form element. Method defaults to POST.
	Action string
	Method string
	// Values holds the current form values. They pre-populate controls and
	// drive which fields are visible.
	Values visibility.Values
	// Errors surfaces feedback keyed by field name; see MapErrorPayload.
	Errors map[string][]string
	// FormErrors are messages not tied to a field.
	FormErrors []string
	// Hidden adds hidden inputs beside the schema fields (CSRF tokens and
	// such).
	Hidden map[string]string
	// Subset restricts rendering to matching fields.
	Subset FieldSubset
	// ShowAll renders every field regardless of its conditions.
	ShowAll bool
	// Evaluator overrides the clause evaluator.
	Evaluator visibility.Evaluator
	// Theme carries the resolved theme: CSS variables, partial overrides and
	// the asset resolver.
	Theme *theme.RendererConfig
}

// VisibleFields applies the subset and, unless ShowAll is set, the visibility
// rules to fields.
func (o RenderOptions) VisibleFields(fields []schema.Field) []schema.Field {
	out := ApplySubset(fields, o.Subset)
	if o.ShowAll {
		return out
	}
	// Visibility is decided against the whole schema so references to fields
	// outside the subset still resolve.
	visible := visibility.Filter(o.Evaluator, fields, o.Values)
	keep := make(map[string]struct{}, len(visible))
	for _, field := range visible {
		keep[field.ID] = struct{}{}
	}
	filtered := out[:0]
	for _, field := range out {
		if _, ok := keep[field.ID]; ok {
			filtered = append(filtered, field)
		}
	}
	return filtered
}
