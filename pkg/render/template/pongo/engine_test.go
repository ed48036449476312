package pongo

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEngineRendersFromFS(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"greet.tpl": {Data: []byte(`Hello {{ name|trim }}{% if site %} from {{ site }}{% endif %}`)},
	}
	engine, err := New(WithFS(files), WithGlobalData(map[string]any{"site": "formbuilder"}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	var buf bytes.Buffer
	got, err := engine.Render("greet", map[string]any{"name": "  Ada "}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada from formbuilder" || buf.String() != got {
		t.Fatalf("unexpected output %q (writer %q)", got, buf.String())
	}
}

func TestEngineEscapesAndRendersStrings(t *testing.T) {
	t.Parallel()

	engine, err := New(WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.Render(`<p>{{ label }}</p>`, map[string]any{"label": "<b>x</b>"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if strings.Contains(got, "<b>") {
		t.Fatalf("expected escaped output, got %q", got)
	}
}

func TestEngineErrors(t *testing.T) {
	t.Parallel()

	if _, err := New(); err == nil {
		t.Fatalf("expected error without template source")
	}
	engine, err := New(WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.Render("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, err := engine.Render("x", 42); err == nil {
		t.Fatalf("expected unsupported data error")
	}
	if err := engine.RegisterFilter("trim", func(in, _ any) (any, error) { return in, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}
