package codec

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Decode parses a JSON wire schema. Every field receives a fresh id from ids
// (random UUIDs when nil). Unknown field types are kept with all of their
// attributes in Extras. Any failure is reported as an *ImportError.
func Decode(data []byte, ids schema.IDGenerator) ([]schema.Field, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, documentError("document is empty", nil)
	}
	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, documentError("malformed JSON", nil)
		}
		return nil, documentError("schema must be a JSON array of fields", nil)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, documentError("malformed JSON", err)
	}

	if ids == nil {
		ids = schema.UUIDGenerator{}
	}
	fields := make([]schema.Field, 0, len(entries))
	for i, entry := range entries {
		field, err := decodeField(i, entry)
		if err != nil {
			return nil, err
		}
		field.ID = ids.NewID()
		fields = append(fields, field)
	}
	return fields, nil
}

func decodeField(index int, raw json.RawMessage) (schema.Field, error) {
	if !isObject(raw) {
		return schema.Field{}, fieldError(index, "", "entry must be an object", nil)
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return schema.Field{}, fieldError(index, "", "entry must be an object", err)
	}

	var (
		field schema.Field
		err   error
	)
	str := func(key string) string {
		if err != nil {
			return ""
		}
		var out string
		out, err = decodeString(attrs[key])
		if err != nil {
			err = fieldError(index, key, "", err)
		}
		return out
	}
	flag := func(key string) bool {
		if err != nil {
			return false
		}
		var out bool
		out, err = decodeBool(attrs[key])
		if err != nil {
			err = fieldError(index, key, "", err)
		}
		return out
	}

	field.Type = schema.FieldType(strings.TrimSpace(str("type")))
	field.Label = str("label")
	field.Name = str("name")
	field.Required = flag("required")
	field.ClassName = str("className")
	field.Access = flag("access")
	if err != nil {
		return schema.Field{}, err
	}

	conditions, cerr := decodeConditions(attrs["conditions"])
	if cerr != nil {
		return schema.Field{}, fieldError(index, "conditions", "", cerr)
	}
	field.Conditions = conditions

	consumed := map[string]struct{}{}
	if field.Type.Known() {
		field.Config, err = decodeConfig(index, field.Type, attrs)
		if err != nil {
			return schema.Field{}, err
		}
		for _, key := range []string{"subtype", "maxlength", "multiple", "values"} {
			consumed[key] = struct{}{}
		}
	}

	for key, value := range attrs {
		if _, ok := consumed[key]; ok {
			continue
		}
		if _, reserved := reservedKeys[key]; reserved && field.Type.Known() {
			continue
		}
		switch key {
		case "id", "type", "label", "name", "required", "className", "access", "conditions":
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return schema.Field{}, fieldError(index, key, "", err)
		}
		if field.Extras == nil {
			field.Extras = make(map[string]any)
		}
		field.Extras[key] = decoded
	}
	return field, nil
}

func decodeConfig(index int, t schema.FieldType, attrs map[string]json.RawMessage) (schema.Config, error) {
	switch t {
	case schema.FieldTypeText:
		subtype, err := decodeString(attrs["subtype"])
		if err != nil {
			return nil, fieldError(index, "subtype", "", err)
		}
		maxLength, err := decodeInt(attrs["maxlength"])
		if err != nil {
			return nil, fieldError(index, "maxlength", "", err)
		}
		return schema.TextConfig{Subtype: subtype, MaxLength: max(maxLength, 0)}, nil
	case schema.FieldTypeTextArea:
		maxLength, err := decodeInt(attrs["maxlength"])
		if err != nil {
			return nil, fieldError(index, "maxlength", "", err)
		}
		return schema.TextAreaConfig{MaxLength: max(maxLength, 0)}, nil
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		options, err := decodeOptions(attrs["values"])
		if err != nil {
			return nil, fieldError(index, "values", "", err)
		}
		cfg := schema.ChoiceConfig{Kind: t, Values: options}
		if t == schema.FieldTypeSelect {
			multiple, err := decodeBool(attrs["multiple"])
			if err != nil {
				return nil, fieldError(index, "multiple", "", err)
			}
			cfg.Multiple = multiple
		}
		return cfg, nil
	default:
		return nil, nil
	}
}

func decodeConditions(raw json.RawMessage) ([]schema.Condition, error) {
	if isNull(raw) {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("expected an array of clauses: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]schema.Condition, 0, len(entries))
	for i, entry := range entries {
		if !isObject(entry) {
			return nil, fmt.Errorf("clause %d must be an object", i)
		}
		var attrs map[string]json.RawMessage
		if err := json.Unmarshal(entry, &attrs); err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		var clause schema.Condition
		var values [4]string
		for j, key := range []string{"field", "operator", "value", "condition"} {
			value, err := decodeString(attrs[key])
			if err != nil {
				return nil, fmt.Errorf("clause %d %q: %w", i, key, err)
			}
			values[j] = value
		}
		clause.Field = values[0]
		clause.Operator = schema.ParseOperator(values[1])
		clause.Value = values[2]
		clause.Condition = schema.ParseCombinator(values[3])
		out = append(out, clause)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// decodeString accepts strings, numbers and booleans; null and absent values
// decode as "".
func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", value)
	}
}

// decodeBool accepts booleans and strings. Strings that strconv.ParseBool
// understands map accordingly; any other non-empty string is true.
func decodeBool(raw json.RawMessage) (bool, error) {
	if isNull(raw) {
		return false, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, err
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed, nil
		}
		return trimmed != "", nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", value)
	}
}

// decodeInt accepts integral numbers and numeric strings; null and absent
// values decode as 0.
func decodeInt(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, err
	}
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}
