package openapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Extension keys added to generated property schemas.
const (
	ExtensionType       = "x-formbuilder-type"
	ExtensionConditions = "x-formbuilder-conditions"
	ExtensionClassName  = "x-formbuilder-class-name"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// SubmissionSchemaName is the component name of the submission schema.
const SubmissionSchemaName = "FormSubmission"

var subtypeFormats = map[string]string{
	schema.SubtypeEmail:    "email",
	schema.SubtypeURL:      "uri",
	schema.SubtypePassword: "password",
}

// SchemaFor returns an object schema with one property per named field.
// Fields without a name cannot carry a value and are skipped; visibility
// clauses travel in the x-formbuilder-conditions extension.
func SchemaFor(fields []schema.Field) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Properties = make(openapi3.Schemas, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if _, exists := out.Properties[field.Name]; exists {
			continue
		}
		out.Properties[field.Name] = openapi3.NewSchemaRef("", propertyFor(field))
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

func propertyFor(field schema.Field) *openapi3.Schema {
	var prop *openapi3.Schema
	switch field.Type {
	case schema.FieldTypeText:
		prop = openapi3.NewStringSchema()
		if cfg, ok := field.Text(); ok {
			prop.Format = subtypeFormats[cfg.Subtype]
		}
		withMaxLength(prop, field.MaxLength())
	case schema.FieldTypeTextArea:
		prop = openapi3.NewStringSchema()
		withMaxLength(prop, field.MaxLength())
	case schema.FieldTypeDate:
		prop = openapi3.NewStringSchema()
		prop.Format = "date"
	case schema.FieldTypeCheckbox:
		prop = openapi3.NewBoolSchema()
	case schema.FieldTypeHidden:
		prop = openapi3.NewStringSchema()
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		prop = choiceSchema(field)
	default:
		prop = &openapi3.Schema{}
	}

	prop.Title = field.Label
	prop.Extensions = map[string]any{ExtensionType: string(field.Type)}
	if field.ClassName != "" {
		prop.Extensions[ExtensionClassName] = field.ClassName
	}
	if len(field.Conditions) > 0 {
		clauses := make([]map[string]string, 0, len(field.Conditions))
		for _, clause := range field.Conditions {
			clauses = append(clauses, map[string]string{
				"field":     clause.Field,
				"operator":  string(clause.Operator),
				"value":     clause.Value,
				"condition": string(clause.Condition),
			})
		}
		prop.Extensions[ExtensionConditions] = clauses
	}
	return prop
}

func choiceSchema(field schema.Field) *openapi3.Schema {
	cfg, _ := field.Choice()
	values := make([]any, 0, len(cfg.Values))
	var selected []any
	seen := make(map[string]struct{}, len(cfg.Values))
	for _, option := range cfg.Values {
		if _, dup := seen[option.Value]; dup {
			continue
		}
		seen[option.Value] = struct{}{}
		values = append(values, option.Value)
		if option.Selected {
			selected = append(selected, option.Value)
		}
	}

	item := openapi3.NewStringSchema()
	if len(values) > 0 {
		item.Enum = values
	}
	if cfg.Kind == schema.FieldTypeSelect && cfg.Multiple {
		list := openapi3.NewArraySchema()
		list.Items = openapi3.NewSchemaRef("", item)
		list.UniqueItems = true
		if len(selected) > 0 {
			list.Default = selected
		}
		return list
	}
	if len(selected) > 0 {
		item.Default = selected[0]
	}
	return item
}

func withMaxLength(prop *openapi3.Schema, n int) {
	if n > 0 {
		limit := uint64(n)
		prop.MaxLength = &limit
	}
}

// Document wraps SchemaFor in a document exposing a POST operation that
// accepts a submission of the form identified by formID.
func Document(title, formID string, fields []schema.Field) *openapi3.T {
	if strings.TrimSpace(title) == "" {
		title = "Form"
	}
	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		SubmissionSchemaName: openapi3.NewSchemaRef("", SchemaFor(fields)),
	}

	ref := "#/components/schemas/" + SubmissionSchemaName
	body := openapi3.NewRequestBody().
		WithDescription("Values entered into " + title).
		WithRequired(true).
		WithJSONSchemaRef(openapi3.NewSchemaRef(ref, nil))

	op := openapi3.NewOperation()
	op.OperationID = "submit" + operationSuffix(formID)
	op.Summary = "Submit " + title
	op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	op.AddResponse(201, openapi3.NewResponse().WithDescription("Submission accepted"))
	op.AddResponse(400, openapi3.NewResponse().WithDescription("Submission rejected"))

	paths := openapi3.NewPaths()
	paths.Set(submissionPath(formID), &openapi3.PathItem{Post: op})

	return &openapi3.T{
		OpenAPI:    Version,
		Info:       &openapi3.Info{Title: title, Version: "1.0.0"},
		Paths:      paths,
		Components: &components,
	}
}

func submissionPath(formID string) string {
	if formID == "" {
		return "/submissions"
	}
	return fmt.Sprintf("/forms/%s/submissions", url.PathEscape(formID))
}

func operationSuffix(formID string) string {
	var b strings.Builder
	upper := true
	for _, r := range formID {
		switch {
		case r >= 'a' && r <= 'z':
			if upper {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	if b.Len() == 0 {
		return "Form"
	}
	return b.String()
}
