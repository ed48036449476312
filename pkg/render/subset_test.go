package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func sampleFields() []schema.Field {
	return []schema.Field{
		{ID: "1", Type: schema.FieldTypeRadio, Name: "kind"},
		{ID: "2", Type: schema.FieldTypeText, Name: "company", Conditions: []schema.Condition{
			{Field: "kind", Operator: schema.OperatorEqual, Value: "client"},
		}},
		{ID: "3", Type: schema.FieldTypeDate, Name: "start"},
		{ID: "4", Type: schema.FieldTypeText, Name: "notes"},
	}
}

func names(fields []schema.Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Name)
	}
	return out
}

func TestApplySubset(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		subset FieldSubset
		want   []string
	}{
		{name: "empty keeps all", subset: FieldSubset{}, want: []string{"kind", "company", "start", "notes"}},
		{name: "by name", subset: FieldSubset{Names: []string{" Notes ", "kind"}}, want: []string{"kind", "notes"}},
		{name: "by type", subset: FieldSubset{Types: []string{"text"}}, want: []string{"company", "notes"}},
		{name: "union", subset: FieldSubset{Names: []string{"start"}, Types: []string{"radio"}}, want: []string{"kind", "start"}},
		{name: "no match", subset: FieldSubset{Names: []string{"missing"}}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := names(ApplySubset(sampleFields(), tc.subset))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("subset mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSubset(t *testing.T) {
	t.Parallel()

	got := ParseSubset("a, b,,", " ")
	if diff := cmp.Diff(FieldSubset{Names: []string{"a", "b"}}, got); diff != "" {
		t.Fatalf("parse mismatch (-want +got):\n%s", diff)
	}
	if !ParseSubset("", "").Empty() {
		t.Fatalf("expected empty subset")
	}
}

func TestRenderOptionsVisibleFields(t *testing.T) {
	t.Parallel()

	fields := sampleFields()

	opts := RenderOptions{Values: visibility.Values{"kind": "candidate"}}
	if diff := cmp.Diff([]string{"kind", "start", "notes"}, names(opts.VisibleFields(fields))); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	opts.Values["kind"] = "client"
	opts.Subset = FieldSubset{Types: []string{"text"}}
	if diff := cmp.Diff([]string{"company", "notes"}, names(opts.VisibleFields(fields))); diff != "" {
		t.Fatalf("subset visible mismatch (-want +got):\n%s", diff)
	}

	opts.Values = nil
	opts.ShowAll = true
	if got := len(opts.VisibleFields(fields)); got != 2 {
		t.Fatalf("expected show all to ignore conditions, got %d", got)
	}
}
