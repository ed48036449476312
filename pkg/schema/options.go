package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OptionKey names an attribute of an Option for UpdateOption.
type OptionKey string

const (
	OptionKeyLabel    OptionKey = "label"
	OptionKeyValue    OptionKey = "value"
	OptionKeySelected OptionKey = "selected"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// OptionValue derives an option value from its label: lower case with every
// run of whitespace replaced by a single underscore. The derivation is one
// way; editing a value directly never touches the label.
func OptionValue(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
}

// AddOption appends "Option k" / "option_k" where k is one more than the
// current option count. Fields without options are returned unchanged.
func (f Field) AddOption() Field {
	out := f.Clone()
	cfg, ok := out.Choice()
	if !ok {
		return out
	}
	k := strconv.Itoa(len(cfg.Values) + 1)
	cfg.Values = append(cfg.Values, Option{
		Label: "Option " + k,
		Value: "option_" + k,
	})
	out.Config = cfg
	return out
}

// UpdateOption replaces one attribute of the option at index. Setting the
// label also re-derives the value. Labels and values accept any value and
// are formatted as strings; selected accepts a bool or a string understood by
// strconv.ParseBool. Out of range indices, unknown keys and fields without
// options leave the field unchanged.
func (f Field) UpdateOption(index int, key OptionKey, value any) Field {
	out := f.Clone()
	cfg, ok := out.Choice()
	if !ok || index < 0 || index >= len(cfg.Values) {
		return out
	}

	option := cfg.Values[index]
	switch key {
	case OptionKeyLabel:
		option.Label = stringValue(value)
		option.Value = OptionValue(option.Label)
	case OptionKeyValue:
		option.Value = stringValue(value)
	case OptionKeySelected:
		selected, ok := boolValue(value)
		if !ok {
			return out
		}
		option.Selected = selected
	default:
		return out
	}

	cfg.Values[index] = option
	out.Config = cfg
	return out
}

// DeleteOption removes the option at index.
func (f Field) DeleteOption(index int) Field {
	out := f.Clone()
	cfg, ok := out.Choice()
	if !ok || index < 0 || index >= len(cfg.Values) {
		return out
	}
	cfg.Values = append(cfg.Values[:index], cfg.Values[index+1:]...)
	out.Config = cfg
	return out
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func boolValue(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}
