package vanilla

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// sanitizeLabel keeps inline formatting in labels and escapes everything
// else. The result is safe to emit unescaped.
func sanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(labelSanitizer().Sanitize(trimmed))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "small", "br", "sub", "sup", "span")
		policy.AllowAttrs("class").OnElements("span")
		labelPolicy = policy
	})
	return labelPolicy
}

func controlID(field, name string) string {
	token := strings.TrimSpace(name)
	if token == "" {
		token = strings.TrimSpace(field)
	}
	if token == "" {
		return ""
	}
	return "fb-" + strings.Join(strings.Fields(token), "-")
}

func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "formbuilder-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// valueString renders a form value the way an input would carry it.
func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// valueSet returns the selected values of a single or multiple choice.
func valueSet(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case nil:
	case []string:
		for _, item := range v {
			out[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			out[valueString(item)] = struct{}{}
		}
	default:
		out[valueString(v)] = struct{}{}
	}
	return out
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return strings.EqualFold(strings.TrimSpace(v), "on")
	default:
		return false
	}
}

type themeContext struct {
	Name     string
	Variant  string
	Partials map[string]string
	CSSVars  string
	AssetURL func(string) string
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	return themeContext{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Partials: copyStringMap(cfg.Partials),
		CSSVars:  cssVarsStyle(cfg.CSSVars),
		AssetURL: cfg.AssetURL,
	}
}

func (t themeContext) asset(key string) string {
	if t.AssetURL == nil {
		return ""
	}
	return strings.TrimSpace(t.AssetURL(key))
}

func (t themeContext) view() map[string]any {
	return map[string]any{
		"name":     t.Name,
		"variant":  t.Variant,
		"css_vars": t.CSSVars,
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".formbuilder-form {\n")
	for _, key := range keys {
		// Values land inside a style element.
		if strings.ContainsAny(key+vars[key], "<>{}") {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
