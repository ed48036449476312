package codec

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// DecodeYAML parses a YAML wire schema. The document goes through the same
// JSON decoding path, so every lenient rule of Decode applies.
func DecodeYAML(data []byte, ids schema.IDGenerator) ([]schema.Field, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, documentError("document is empty", nil)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, documentError("malformed YAML", err)
	}
	if _, ok := doc.([]any); !ok {
		return nil, documentError("schema must be a sequence of fields", nil)
	}
	encoded, err := json.Marshal(normaliseYAML(doc))
	if err != nil {
		return nil, documentError("convert YAML", err)
	}
	return Decode(encoded, ids)
}

// DecodeAny sniffs the document: JSON when it starts with '[' or '{',
// otherwise YAML.
func DecodeAny(data []byte, ids schema.IDGenerator) ([]schema.Field, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return Decode(trimmed, ids)
	}
	return DecodeYAML(trimmed, ids)
}

// MarshalYAML encodes fields as YAML with the same key order and null
// handling as the JSON export.
func MarshalYAML(fields []schema.Field) ([]byte, error) {
	encoded, err := Marshal(fields)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, fmt.Errorf("codec: yaml: %w", err)
	}
	plainStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("codec: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("codec: yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// plainStyle drops the flow and quoting styles inherited from the JSON source
// so the encoder picks block style and quotes only where required.
func plainStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		plainStyle(child)
	}
}

func normaliseYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normaliseYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normaliseYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normaliseYAML(item)
		}
		return out
	default:
		return v
	}
}
