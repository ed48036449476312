package schema

import "strings"

// FieldType identifies the widget a field renders as. Values outside the
// known set are preserved so newer schemas survive a round trip.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeDate     FieldType = "date"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeHidden   FieldType = "hidden"
)

// FieldTypes lists the known field types in palette order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextArea,
	FieldTypeSelect,
	FieldTypeDate,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeHidden,
}

// Known reports whether t is one of the built-in field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// HasMaxLength reports whether fields of this type carry a length limit.
func (t FieldType) HasMaxLength() bool {
	return t == FieldTypeText || t == FieldTypeTextArea
}

// Title returns the capitalised type name used in generated labels.
func (t FieldType) Title() string {
	raw := string(t)
	if raw == "" {
		return ""
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}

const (
	SubtypeText     = "text"
	SubtypeEmail    = "email"
	SubtypePassword = "password"
	SubtypeTel      = "tel"
	SubtypeURL      = "url"
)

const (
	// DefaultMaxLength is applied to new text and textarea fields.
	DefaultMaxLength = 192
	// DefaultClassName mirrors the CSS class the builder stamps on new fields.
	DefaultClassName = "form-control"
)

// Option is one entry of a select or radio field.
type Option struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// Config is the type-indexed payload attached to a Field. The concrete types
// are TextConfig, TextAreaConfig and ChoiceConfig; fields of other types carry
// no payload.
type Config interface {
	// FieldType reports the field type the payload belongs to.
	FieldType() FieldType
	clone() Config
}

// TextConfig configures single-line text inputs.
type TextConfig struct {
	Subtype   string
	MaxLength int
}

func (TextConfig) FieldType() FieldType { return FieldTypeText }
func (c TextConfig) clone() Config     { return c }

// TextAreaConfig configures multi-line text inputs.
type TextAreaConfig struct {
	MaxLength int
}

func (TextAreaConfig) FieldType() FieldType { return FieldTypeTextArea }
func (c TextAreaConfig) clone() Config     { return c }

// ChoiceConfig configures select and radio fields. Multiple only applies to
// select fields.
type ChoiceConfig struct {
	Kind     FieldType
	Values   []Option
	Multiple bool
}

func (c ChoiceConfig) FieldType() FieldType { return c.Kind }

func (c ChoiceConfig) clone() Config {
	c.Values = cloneOptions(c.Values)
	return c
}

// Field is one element of a form schema.
type Field struct {
	// ID is process-local, assigned on creation and never serialised.
	ID        string
	Type      FieldType
	Label     string
	Name      string
	Required  bool
	ClassName string
	Access    bool
	// Config holds the type-specific payload; nil for types without one.
	Config Config
	// Conditions is nil when the field is always visible and never empty
	// otherwise.
	Conditions []Condition
	// Extras carries attributes the model does not interpret (for example
	// sort_option or the configuration of unknown field types) so they
	// survive import/export unchanged.
	Extras map[string]any
}

// Text returns the text payload when the field is a text input.
func (f Field) Text() (TextConfig, bool) {
	cfg, ok := f.Config.(TextConfig)
	return cfg, ok
}

// TextArea returns the textarea payload when the field is a textarea.
func (f Field) TextArea() (TextAreaConfig, bool) {
	cfg, ok := f.Config.(TextAreaConfig)
	return cfg, ok
}

// Choice returns the option payload for select and radio fields.
func (f Field) Choice() (ChoiceConfig, bool) {
	cfg, ok := f.Config.(ChoiceConfig)
	return cfg, ok
}

// Options returns a copy of the field's options, or nil when the field has
// none.
func (f Field) Options() []Option {
	cfg, ok := f.Choice()
	if !ok {
		return nil
	}
	return cloneOptions(cfg.Values)
}

// MaxLength returns the configured length limit, or 0 when unset.
func (f Field) MaxLength() int {
	switch cfg := f.Config.(type) {
	case TextConfig:
		return cfg.MaxLength
	case TextAreaConfig:
		return cfg.MaxLength
	default:
		return 0
	}
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Config != nil {
		out.Config = f.Config.clone()
	}
	out.Conditions = cloneConditions(f.Conditions)
	if f.Extras != nil {
		out.Extras = make(map[string]any, len(f.Extras))
		for key, value := range f.Extras {
			out.Extras[key] = value
		}
	}
	return out
}

// CloneFields deep-copies a field slice, preserving nil.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

func cloneOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	out := make([]Option, len(in))
	copy(out, in)
	return out
}

func cloneConditions(in []Condition) []Condition {
	if len(in) == 0 {
		return nil
	}
	out := make([]Condition, len(in))
	copy(out, in)
	return out
}
