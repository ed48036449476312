// Package visibility decides which fields of a schema render for a given set
// of form values. Evaluation is pure: the same fields and values always yield
// the same ordered subset, so callers simply re-run it after every schema
// mutation or value change.
package visibility

import "github.com/goliatone/go-formbuilder/pkg/schema"

// Values maps a field name to its current value, usually a string or a bool
// as produced by the preview surface.
type Values map[string]any

// Context provides the inputs a clause evaluator needs: the current values
// and the set of names declared by the schema, used to detect dangling
// references.
type Context struct {
	Values Values
	Names  map[string]struct{}
}

// NewContext indexes the field names of fields.
func NewContext(fields []schema.Field, values Values) Context {
	names := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		names[field.Name] = struct{}{}
	}
	return Context{Values: values, Names: names}
}

// Declares reports whether the schema has a field with the given name.
func (c Context) Declares(name string) bool {
	_, ok := c.Names[name]
	return ok
}

// Evaluator decides whether a clause list holds.
type Evaluator interface {
	Eval(conditions []schema.Condition, ctx Context) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(conditions []schema.Condition, ctx Context) bool

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(conditions []schema.Condition, ctx Context) bool {
	return fn(conditions, ctx)
}

// Default is the clause fold used by VisibleFields.
var Default Evaluator = Clauses{}

// VisibleFields returns, in their original order, the fields that have no
// conditions or whose conditions hold under values.
func VisibleFields(fields []schema.Field, values Values) []schema.Field {
	return Filter(Default, fields, values)
}

// Filter is VisibleFields with a caller supplied evaluator. A nil evaluator
// falls back to Default.
func Filter(eval Evaluator, fields []schema.Field, values Values) []schema.Field {
	if eval == nil {
		eval = Default
	}
	ctx := NewContext(fields, values)
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if len(field.Conditions) == 0 || eval.Eval(field.Conditions, ctx) {
			out = append(out, field.Clone())
		}
	}
	return out
}

// VisibleNames is VisibleFields reduced to field names.
func VisibleNames(fields []schema.Field, values Values) []string {
	visible := VisibleFields(fields, values)
	out := make([]string, 0, len(visible))
	for _, field := range visible {
		out = append(out, field.Name)
	}
	return out
}
