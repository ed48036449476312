package codec

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// WireField is one entry of the wire schema. Type-specific attributes are
// pointers so they are emitted only for the types that carry them, while
// Conditions is always emitted (null when empty).
type WireField struct {
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Name       string          `json:"name"`
	Required   bool            `json:"required"`
	ClassName  string          `json:"className"`
	Access     bool            `json:"access"`
	Subtype    *string         `json:"subtype,omitempty"`
	MaxLength  *int            `json:"maxlength,omitempty"`
	Multiple   *bool           `json:"multiple,omitempty"`
	Values     *[]WireOption   `json:"values,omitempty"`
	Conditions []WireCondition `json:"conditions"`
	// Extras are appended after the known attributes in key order.
	Extras map[string]any `json:"-"`
}

// WireOption is one option of a select or radio field.
type WireOption struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// WireCondition is one visibility clause.
type WireCondition struct {
	Field     string `json:"field"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
	Condition string `json:"condition"`
}

var reservedKeys = map[string]struct{}{
	"id":         {},
	"type":       {},
	"label":      {},
	"name":       {},
	"required":   {},
	"className":  {},
	"access":     {},
	"subtype":    {},
	"maxlength":  {},
	"multiple":   {},
	"values":     {},
	"conditions": {},
}

// emits reports whether the struct encoding already writes key. Typed
// attributes count only when set, so an unknown type keeps its values,
// subtype and the like through Extras.
func (w WireField) emits(key string) bool {
	switch key {
	case "id", "type", "label", "name", "required", "className", "access", "conditions":
		return true
	case "subtype":
		return w.Subtype != nil
	case "maxlength":
		return w.MaxLength != nil
	case "multiple":
		return w.Multiple != nil
	case "values":
		return w.Values != nil
	default:
		return false
	}
}

// MarshalJSON emits the known attributes in a stable order followed by the
// extras sorted by key.
func (w WireField) MarshalJSON() ([]byte, error) {
	type plain WireField
	base, err := json.Marshal(plain(w))
	if err != nil {
		return nil, err
	}
	if len(w.Extras) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(w.Extras))
	for key := range w.Extras {
		if w.emits(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(bytes.TrimSpace(base), []byte("}")))
	for _, key := range keys {
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(w.Extras[key])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode converts fields into wire entries, dropping the internal ids.
func Encode(fields []schema.Field) []WireField {
	out := make([]WireField, 0, len(fields))
	for _, field := range fields {
		out = append(out, encodeField(field))
	}
	return out
}

// Marshal encodes fields as a compact JSON array.
func Marshal(fields []schema.Field) ([]byte, error) {
	return json.Marshal(Encode(fields))
}

// MarshalIndent encodes fields as an indented JSON array, the format used for
// exports.
func MarshalIndent(fields []schema.Field) ([]byte, error) {
	return json.MarshalIndent(Encode(fields), "", "  ")
}

func encodeField(field schema.Field) WireField {
	wire := WireField{
		Type:      string(field.Type),
		Label:     field.Label,
		Name:      field.Name,
		Required:  field.Required,
		ClassName: field.ClassName,
		Access:    field.Access,
	}

	switch cfg := field.Config.(type) {
	case schema.TextConfig:
		if cfg.Subtype != "" {
			wire.Subtype = schema.Ptr(cfg.Subtype)
		}
		if cfg.MaxLength > 0 {
			wire.MaxLength = schema.Ptr(cfg.MaxLength)
		}
	case schema.TextAreaConfig:
		if cfg.MaxLength > 0 {
			wire.MaxLength = schema.Ptr(cfg.MaxLength)
		}
	case schema.ChoiceConfig:
		options := make([]WireOption, 0, len(cfg.Values))
		for _, option := range cfg.Values {
			options = append(options, WireOption(option))
		}
		wire.Values = &options
		if cfg.Kind == schema.FieldTypeSelect {
			wire.Multiple = schema.Ptr(cfg.Multiple)
		}
	}

	if len(field.Conditions) > 0 {
		wire.Conditions = make([]WireCondition, 0, len(field.Conditions))
		for _, clause := range field.Conditions {
			wire.Conditions = append(wire.Conditions, WireCondition{
				Field:     clause.Field,
				Operator:  string(clause.Operator),
				Value:     clause.Value,
				Condition: string(clause.Condition),
			})
		}
	}

	if len(field.Extras) > 0 {
		wire.Extras = make(map[string]any, len(field.Extras))
		for key, value := range field.Extras {
			wire.Extras[key] = value
		}
	}
	return wire
}
