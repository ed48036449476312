package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

type fieldRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
	options   render.RenderOptions

	used map[string]struct{}
}

func (r *fieldRenderer) render(field schema.Field) (string, error) {
	name := components.ForField(field)
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", name, field.Name)
	}

	view := fieldView(field, r.options)
	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, components.ComponentData{
		Template: r.templates,
		View:     view,
		Partials: r.partials,
	}); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", name, field.Name, err)
	}
	r.used[name] = struct{}{}

	if name == components.NameHidden {
		return strings.TrimSpace(control.String()), nil
	}
	return wrapField(field, name, view, control.String()), nil
}

// fieldView flattens a field and its current value into the map the
// component templates read.
func fieldView(field schema.Field, options render.RenderOptions) map[string]any {
	value, hasValue := options.Values[field.Name]

	view := map[string]any{
		"id":         controlID(field.ID, field.Name),
		"name":       field.Name,
		"type":       string(field.Type),
		"input_type": inputType(field),
		"label":      sanitizeLabel(field.Label),
		"required":   field.Required,
		"class":      sanitizeClassList(field.ClassName),
		"maxlength":  field.MaxLength(),
		"value":      valueString(value),
		"checked":    hasValue && truthy(value),
		"errors":     options.Errors[field.Name],
	}

	if cfg, ok := field.Choice(); ok {
		view["multiple"] = cfg.Multiple && field.Type == schema.FieldTypeSelect
		selected := valueSet(value)
		opts := make([]map[string]any, 0, len(cfg.Values))
		for i, option := range cfg.Values {
			isSelected := option.Selected
			if hasValue {
				_, isSelected = selected[option.Value]
			}
			opts = append(opts, map[string]any{
				"id":       fmt.Sprintf("%s-%d", view["id"], i),
				"label":    option.Label,
				"value":    option.Value,
				"selected": isSelected,
			})
		}
		view["options"] = opts
	}
	return view
}

func inputType(field schema.Field) string {
	switch field.Type {
	case schema.FieldTypeDate:
		return "date"
	case schema.FieldTypeText:
		if cfg, ok := field.Text(); ok && strings.TrimSpace(cfg.Subtype) != "" {
			return cfg.Subtype
		}
	}
	return "text"
}

// componentHandlesLabel reports whether the component template renders the
// label itself.
func componentHandlesLabel(name string) bool {
	switch name {
	case components.NameRadio, components.NameCheckbox:
		return true
	default:
		return false
	}
}

func wrapField(field schema.Field, componentName string, view map[string]any, control string) string {
	var b strings.Builder
	b.Grow(len(control) + 256)

	b.WriteString(`<div class="formbuilder-field formbuilder-field--`)
	b.WriteString(html.EscapeString(string(field.Type)))
	b.WriteString(`" data-field="`)
	b.WriteString(html.EscapeString(field.Name))
	b.WriteString(`">`)
	b.WriteByte('\n')

	if !componentHandlesLabel(componentName) {
		if label, _ := view["label"].(string); label != "" {
			b.WriteString(`<label for="`)
			b.WriteString(html.EscapeString(view["id"].(string)))
			b.WriteString(`">`)
			b.WriteString(label)
			if field.Required {
				b.WriteString(`<span class="formbuilder-required" aria-hidden="true">*</span>`)
			}
			b.WriteString("</label>\n")
		}
	}

	b.WriteString(strings.TrimSpace(control))
	b.WriteByte('\n')

	errs, _ := view["errors"].([]string)
	for _, message := range render.MergeFormErrors(errs) {
		b.WriteString(`<p class="formbuilder-error">`)
		b.WriteString(html.EscapeString(message))
		b.WriteString("</p>\n")
	}
	b.WriteString("</div>")
	return b.String()
}
