package codec

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// decodeOptions reads a values attribute. Besides the array form it accepts
// the sparse object form written by older builders, keyed by position with
// possible gaps: numeric keys come first in ascending order, then any other
// keys in lexical order. Null entries are skipped. The result is never nil.
func decodeOptions(raw json.RawMessage) ([]schema.Option, error) {
	options := []schema.Option{}
	if isNull(raw) {
		return options, nil
	}

	trimmed := bytes.TrimSpace(raw)
	var entries []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
	case '{':
		var sparse map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &sparse); err != nil {
			return nil, err
		}
		for _, key := range sparseOrder(sparse) {
			entries = append(entries, sparse[key])
		}
	default:
		return nil, fmt.Errorf("expected an array or object of options")
	}

	for i, entry := range entries {
		if isNull(entry) {
			continue
		}
		option, err := decodeOption(entry)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		options = append(options, option)
	}
	return options, nil
}

func decodeOption(raw json.RawMessage) (schema.Option, error) {
	if !isObject(raw) {
		return schema.Option{}, fmt.Errorf("must be an object")
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return schema.Option{}, err
	}
	label, err := decodeString(attrs["label"])
	if err != nil {
		return schema.Option{}, fmt.Errorf("label: %w", err)
	}
	value, err := decodeString(attrs["value"])
	if err != nil {
		return schema.Option{}, fmt.Errorf("value: %w", err)
	}
	selected, err := decodeBool(attrs["selected"])
	if err != nil {
		return schema.Option{}, fmt.Errorf("selected: %w", err)
	}
	return schema.Option{Label: label, Value: value, Selected: selected}, nil
}

func sparseOrder(sparse map[string]json.RawMessage) []string {
	type numbered struct {
		key string
		n   int
	}
	var numeric []numbered
	var other []string
	for key := range sparse {
		if n, err := strconv.Atoi(key); err == nil {
			numeric = append(numeric, numbered{key: key, n: n})
			continue
		}
		other = append(other, key)
	}
	sort.Slice(numeric, func(i, j int) bool {
		if numeric[i].n != numeric[j].n {
			return numeric[i].n < numeric[j].n
		}
		return numeric[i].key < numeric[j].key
	})
	sort.Strings(other)

	keys := make([]string, 0, len(sparse))
	for _, entry := range numeric {
		keys = append(keys, entry.key)
	}
	return append(keys, other...)
}
