package vanilla

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func contactFields() []schema.Field {
	return []schema.Field{
		{ID: "1", Type: schema.FieldTypeText, Name: "full_name", Label: "<b>Full</b> name<script>alert(1)</script>", Required: true,
			Config: schema.TextConfig{Subtype: schema.SubtypeText, MaxLength: 80}},
		{ID: "2", Type: schema.FieldTypeText, Name: "email", Label: "Email", Config: schema.TextConfig{Subtype: schema.SubtypeEmail}},
		{ID: "3", Type: schema.FieldTypeRadio, Name: "contact_type", Label: "Type", Config: schema.ChoiceConfig{
			Kind: schema.FieldTypeRadio,
			Values: []schema.Option{
				{Label: "Client", Value: "client"},
				{Label: "Candidate", Value: "candidate", Selected: true},
			},
		}},
		{ID: "4", Type: schema.FieldTypeText, Name: "company", Label: "Company", Conditions: []schema.Condition{
			{Field: "contact_type", Operator: schema.OperatorEqual, Value: "client", Condition: schema.CombinatorAnd},
		}},
		{ID: "5", Type: schema.FieldTypeSelect, Name: "topics", Label: "Topics", Config: schema.ChoiceConfig{
			Kind:     schema.FieldTypeSelect,
			Multiple: true,
			Values: []schema.Option{
				{Label: "A", Value: "a"},
				{Label: "B", Value: "b"},
				{Label: "C", Value: "c", Selected: true},
			},
		}},
		{ID: "6", Type: schema.FieldTypeCheckbox, Name: "subscribe", Label: "Subscribe"},
		{ID: "7", Type: schema.FieldTypeHidden, Name: "source", Label: "Source"},
		{ID: "8", Type: "stars", Name: "rating", Label: "Rating"},
	}
}

func renderString(t *testing.T, fields []schema.Field, opts render.RenderOptions) string {
	t.Helper()
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), fields, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func assertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, output)
		}
	}
}

func TestRenderVisibleFieldsOnly(t *testing.T) {
	t.Parallel()

	hidden := renderString(t, contactFields(), render.RenderOptions{
		Values: visibility.Values{"contact_type": "candidate"},
	})
	assertContains(t, hidden, `data-field="full_name"`, `data-field="contact_type"`)
	assertNotContains(t, hidden, `data-field="company"`)

	shown := renderString(t, contactFields(), render.RenderOptions{
		Values: visibility.Values{"contact_type": "client"},
	})
	assertContains(t, shown, `data-field="company"`, `value="client" checked`)
	assertNotContains(t, shown, `value="candidate" checked`)

	if strings.Index(shown, `data-field="contact_type"`) > strings.Index(shown, `data-field="company"`) {
		t.Fatalf("expected schema order to be preserved\n%s", shown)
	}
}

func TestRenderControls(t *testing.T) {
	t.Parallel()

	output := renderString(t, contactFields(), render.RenderOptions{
		Title:  "Contact",
		Action: "/submit",
		Values: visibility.Values{
			"topics":    []any{"a", "b"},
			"subscribe": "on",
			"source":    "landing",
		},
	})

	assertContains(t, output,
		`method="POST" action="/submit"`,
		`<h2>Contact</h2>`,
		`type="text" id="fb-full_name" name="full_name" maxlength="80" required`,
		`<label for="fb-full_name"><b>Full</b> name<span class="formbuilder-required"`,
		`type="email" id="fb-email" name="email"`,
		`<select id="fb-topics" name="topics" multiple>`,
		`<option value="a" selected>A</option>`,
		`<option value="c">C</option>`,
		`value="true" checked`,
		`<input type="hidden" id="fb-source" name="source" value="landing">`,
		`data-type="stars"`,
		`<button type="submit">Submit</button>`,
		`<style>.formbuilder-form{`,
	)
	assertNotContains(t, output, "<script", `data-field="source"`)
}

func TestRenderDefaultSelections(t *testing.T) {
	t.Parallel()

	output := renderString(t, contactFields(), render.RenderOptions{ShowAll: true})
	assertContains(t, output, `value="candidate" checked`, `<option value="c" selected>C</option>`, `data-field="company"`)
	assertNotContains(t, output, `value="true" checked`)
}

func TestRenderErrorsAndHiddenInputs(t *testing.T) {
	t.Parallel()

	fields := contactFields()
	mapped := render.MapErrorPayload(fields, map[string][]string{
		"/body/email": {"Email is invalid"},
		"_form":       {"Please fix the errors below"},
	})

	output := renderString(t, fields, render.RenderOptions{
		Method:     "put",
		Errors:     mapped.Fields,
		FormErrors: mapped.Form,
		Hidden:     render.MergeHiddenFields(nil, render.CSRFToken("_csrf", "tok<1>")),
	})

	assertContains(t, output,
		`method="PUT"`,
		`<li>Please fix the errors below</li>`,
		`name="email" aria-invalid="true">`,
		`<p class="formbuilder-error">Email is invalid</p>`,
		`<input type="hidden" name="_csrf" value="tok&lt;1&gt;">`,
	)
}

func TestRenderTheme(t *testing.T) {
	t.Parallel()

	output := renderString(t, contactFields()[:1], render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:   "acme",
			Variant: "dark",
			CSSVars: map[string]string{
				"--fb-brand":  "#123456",
				"--fb-border": "</style>",
			},
			AssetURL: func(key string) string {
				return "/themes/acme/" + key
			},
		},
	})

	assertContains(t, output,
		`class="formbuilder-form formbuilder-theme-acme"`,
		`data-theme-variant="dark"`,
		`<link rel="stylesheet" href="/themes/acme/vanilla.stylesheet">`,
		"--fb-brand: #123456;",
	)
	assertNotContains(t, output, "--fb-border", `<style>.formbuilder-form{`)
}

func TestRenderHonoursContext(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, contactFields(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}

func TestRendererMetadata(t *testing.T) {
	t.Parallel()

	renderer, err := New(WithInlineStyles(false), WithSubmitLabel("Send"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "vanilla" || !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected metadata %s %s", renderer.Name(), renderer.ContentType())
	}
	out, err := renderer.Render(context.Background(), nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, string(out), `<button type="submit">Send</button>`)
	assertNotContains(t, string(out), "<style>")
}
