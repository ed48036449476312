package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry with one template-backed component
// per built-in field type plus a placeholder for unknown types.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, name := range []string{NameInput, NameTextarea, NameSelect, NameRadio, NameCheckbox, NameHidden, NameUnknown} {
		registry.MustRegister(name, Descriptor{
			Renderer: TemplateRenderer("forms."+name, templatePrefix+name+".tpl"),
		})
	}
	return registry
}

// ForField picks the component for a field type.
func ForField(field schema.Field) string {
	switch field.Type {
	case schema.FieldTypeText, schema.FieldTypeDate:
		return NameInput
	case schema.FieldTypeTextArea:
		return NameTextarea
	case schema.FieldTypeSelect:
		return NameSelect
	case schema.FieldTypeRadio:
		return NameRadio
	case schema.FieldTypeCheckbox:
		return NameCheckbox
	case schema.FieldTypeHidden:
		return NameHidden
	default:
		return NameUnknown
	}
}

// TemplateRenderer renders templateName with the field view. A theme partial
// registered under partialKey replaces the template.
func TemplateRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, _ schema.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		resolved := templateName
		if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
			resolved = candidate
		}
		rendered, err := data.Template.Render(resolved, map[string]any{"field": data.View})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
