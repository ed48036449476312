package schema

import (
	"strconv"
)

// NewField creates a field of type t positioned after existing. The name is
// {type}_{n} and the label {Type} Field {n}, where n is one more than the
// number of existing fields of the same type. Type-specific defaults come
// from DefaultConfig.
func NewField(t FieldType, existing []Field, ids IDGenerator) Field {
	n := countOfType(existing, t) + 1
	suffix := strconv.Itoa(n)
	return Field{
		ID:        generatorOrDefault(ids).NewID(),
		Type:      t,
		Label:     t.Title() + " Field " + suffix,
		Name:      string(t) + "_" + suffix,
		ClassName: DefaultClassName,
		Config:    DefaultConfig(t),
	}
}

// DefaultConfig returns the payload a freshly created field of type t
// carries, or nil for types without one.
func DefaultConfig(t FieldType) Config {
	switch t {
	case FieldTypeText:
		return TextConfig{Subtype: SubtypeText, MaxLength: DefaultMaxLength}
	case FieldTypeTextArea:
		return TextAreaConfig{MaxLength: DefaultMaxLength}
	case FieldTypeSelect, FieldTypeRadio:
		return ChoiceConfig{Kind: t, Values: DefaultOptions()}
	default:
		return nil
	}
}

// DefaultOptions returns the two placeholder options new choice fields start
// with.
func DefaultOptions() []Option {
	return []Option{
		{Label: "Option 1", Value: "option_1"},
		{Label: "Option 2", Value: "option_2"},
	}
}

func countOfType(fields []Field, t FieldType) int {
	count := 0
	for _, field := range fields {
		if field.Type == t {
			count++
		}
	}
	return count
}

// Patch is a partial set of attribute changes. Nil members are left alone.
type Patch struct {
	Type       *FieldType
	Label      *string
	Name       *string
	Required   *bool
	ClassName  *string
	Access     *bool
	Subtype    *string
	MaxLength  *int
	Multiple   *bool
	Values     *[]Option
	Conditions *[]Condition
}

// Ptr returns a pointer to v, for building Patch literals.
func Ptr[T any](v T) *T {
	return &v
}

// Apply merges patch into a copy of f. Changing the type reshapes the payload:
// configuration that still applies (a length limit moving between text and
// textarea, options moving between select and radio) is kept, anything else is
// replaced with the new type's defaults. Type-specific members of the patch
// are ignored when the resulting type does not support them. An empty
// Conditions slice is stored as nil and a negative length limit as 0 (no
// limit).
func (f Field) Apply(patch Patch) Field {
	out := f.Clone()

	if patch.Type != nil && *patch.Type != out.Type {
		out.Config = reshape(out.Config, *patch.Type)
		out.Type = *patch.Type
	}
	if patch.Label != nil {
		out.Label = *patch.Label
	}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Required != nil {
		out.Required = *patch.Required
	}
	if patch.ClassName != nil {
		out.ClassName = *patch.ClassName
	}
	if patch.Access != nil {
		out.Access = *patch.Access
	}
	if patch.Conditions != nil {
		out.Conditions = cloneConditions(*patch.Conditions)
	}

	switch cfg := out.Config.(type) {
	case TextConfig:
		if patch.Subtype != nil {
			cfg.Subtype = *patch.Subtype
		}
		if patch.MaxLength != nil {
			cfg.MaxLength = max(*patch.MaxLength, 0)
		}
		out.Config = cfg
	case TextAreaConfig:
		if patch.MaxLength != nil {
			cfg.MaxLength = max(*patch.MaxLength, 0)
		}
		out.Config = cfg
	case ChoiceConfig:
		if patch.Values != nil {
			cfg.Values = cloneOptions(*patch.Values)
			if cfg.Values == nil {
				cfg.Values = []Option{}
			}
		}
		if patch.Multiple != nil && cfg.Kind == FieldTypeSelect {
			cfg.Multiple = *patch.Multiple
		}
		out.Config = cfg
	}
	return out
}

func reshape(current Config, to FieldType) Config {
	next := DefaultConfig(to)
	switch target := next.(type) {
	case TextConfig:
		if prev, ok := current.(TextAreaConfig); ok && prev.MaxLength > 0 {
			target.MaxLength = prev.MaxLength
		}
		return target
	case TextAreaConfig:
		if prev, ok := current.(TextConfig); ok && prev.MaxLength > 0 {
			target.MaxLength = prev.MaxLength
		}
		return target
	case ChoiceConfig:
		if prev, ok := current.(ChoiceConfig); ok {
			target.Values = cloneOptions(prev.Values)
			if to == FieldTypeSelect {
				target.Multiple = prev.Multiple
			}
		}
		return target
	default:
		return next
	}
}
