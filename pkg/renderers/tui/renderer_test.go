package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func contactFields() []schema.Field {
	return []schema.Field{
		{ID: "1", Type: schema.FieldTypeText, Name: "name", Label: "Name", Required: true, Config: schema.TextConfig{MaxLength: 10}},
		{ID: "2", Type: schema.FieldTypeRadio, Name: "kind", Label: "Kind", Config: schema.ChoiceConfig{
			Kind: schema.FieldTypeRadio,
			Values: []schema.Option{
				{Label: "Client", Value: "client"},
				{Label: "Candidate", Value: "candidate"},
			},
		}},
		{ID: "3", Type: schema.FieldTypeText, Name: "company", Label: "Company", Conditions: []schema.Condition{
			{Field: "kind", Operator: schema.OperatorEqual, Value: "client", Condition: schema.CombinatorAnd},
		}},
		{ID: "4", Type: schema.FieldTypeCheckbox, Name: "subscribe", Label: "Subscribe"},
		{ID: "5", Type: schema.FieldTypeHidden, Name: "source"},
		{ID: "6", Type: "stars", Name: "rating", Label: "Rating"},
	}
}

func renderWith(t *testing.T, driver *stubDriver, fields []schema.Field, opts render.RenderOptions, options ...Option) string {
	t.Helper()
	renderer, err := New(append([]Option{WithPromptDriver(driver)}, options...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), fields, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderAsksConditionalFieldsWhenVisible(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		inputs:    []string{"Ada", "Acme"},
		selectIdx: []int{0},
		confirm:   []bool{true},
	}
	out := renderWith(t, driver, contactFields(), render.RenderOptions{})

	want := `{"company":"Acme","kind":"client","name":"Ada","source":"","subscribe":true}`
	if out != want {
		t.Fatalf("unexpected output\nwant %s\ngot  %s", want, out)
	}
	if diff := cmp.Diff([]string{"Name", "Kind", "Company", "Subscribe"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "unsupported field type") {
		t.Fatalf("expected unsupported type notice, got %v", driver.infoMessages)
	}
}

func TestRenderSkipsHiddenConditionalFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		inputs:    []string{"Ada"},
		selectIdx: []int{1},
		confirm:   []bool{false},
	}
	out := renderWith(t, driver, contactFields(), render.RenderOptions{
		Values: visibility.Values{"source": "landing"},
	})

	want := `{"kind":"candidate","name":"Ada","source":"landing","subscribe":false}`
	if out != want {
		t.Fatalf("unexpected output\nwant %s\ngot  %s", want, out)
	}
}

func TestRenderDropsAnswersHiddenByLaterAnswers(t *testing.T) {
	t.Parallel()

	fields := []schema.Field{
		{Type: schema.FieldTypeText, Name: "alias", Label: "Alias", Conditions: []schema.Condition{
			{Field: "mode", Operator: schema.OperatorEqual, Value: ""},
		}},
		{Type: schema.FieldTypeText, Name: "mode", Label: "Mode"},
	}
	driver := &stubDriver{inputs: []string{"x", "manual"}}
	out := renderWith(t, driver, fields, render.RenderOptions{})

	if out != `{"mode":"manual"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRenderValidatesAnswers(t *testing.T) {
	t.Parallel()

	fields := []schema.Field{
		{ID: "1", Type: schema.FieldTypeText, Name: "code", Label: "Code", Required: true, Config: schema.TextConfig{MaxLength: 3}},
		{ID: "2", Type: schema.FieldTypeDate, Name: "start", Label: "Start"},
		{ID: "3", Type: schema.FieldTypeText, Name: "secret", Label: "Secret", Config: schema.TextConfig{Subtype: schema.SubtypePassword}},
		{ID: "4", Type: schema.FieldTypeTextArea, Name: "notes", Label: "Notes"},
	}
	driver := &stubDriver{
		inputs:    []string{"", "toolong", "ok", "13/01/2026", "2026-01-13"},
		passwords: []string{"hunter2"},
		textAreas: []string{"line one\nline two"},
	}
	out := renderWith(t, driver, fields, render.RenderOptions{
		Errors: map[string][]string{"code": {"already taken"}},
	}, WithOutputFormat(OutputFormatPrettyText), WithTheme(Theme{ErrorPrefix: "! "}))

	want := "code=ok\nstart=2026-01-13\nsecret=hunter2\nnotes=line one\nline two\n"
	if out != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, out)
	}
	if len(driver.infoMessages) != 4 {
		t.Fatalf("expected 4 info messages, got %v", driver.infoMessages)
	}
	if driver.infoMessages[0] != "! Code: already taken" {
		t.Fatalf("unexpected error notice %q", driver.infoMessages[0])
	}
}

func TestRenderMultiSelectAndFormOutput(t *testing.T) {
	t.Parallel()

	fields := []schema.Field{
		{ID: "1", Type: schema.FieldTypeSelect, Name: "topics", Label: "Topics", Config: schema.ChoiceConfig{
			Kind:     schema.FieldTypeSelect,
			Multiple: true,
			Values: []schema.Option{
				{Label: "A", Value: "a"},
				{Label: "B", Value: "b"},
				{Label: "C", Value: "c"},
			},
		}},
	}
	driver := &stubDriver{multiIdx: [][]int{{0, 2}}}
	renderer, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %s", renderer.ContentType())
	}
	out, err := renderer.Render(context.Background(), fields, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "topics=a&topics=c" {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	if _, err := New(WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unknown format error")
	}

	empty := []schema.Field{{ID: "1", Type: schema.FieldTypeRadio, Name: "pick", Config: schema.ChoiceConfig{Kind: schema.FieldTypeRadio}}}
	renderer, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := renderer.Render(context.Background(), empty, render.RenderOptions{}); !errors.Is(err, ErrNoOptions) {
		t.Fatalf("expected ErrNoOptions, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, contactFields(), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}

	if _, err := renderer.Render(context.Background(), contactFields(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error to propagate")
	}
}
