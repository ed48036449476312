package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

const dateLayout = "2006-01-02"

// Renderer implements render.Renderer for terminal sessions. It prompts for
// the visible fields one at a time, re-evaluating visibility after every
// answer, and serializes the values of the fields visible at the end.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{outputFormat: OutputFormatJSON}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(survey.WithShowCursor(true))
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs the prompt loop. options.Values prefill defaults and
// options.Errors are shown before the matching prompt.
func (r *Renderer) Render(ctx context.Context, fields []schema.Field, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	fields = withIDs(fields)
	state := NewState(options.Values, options.Errors)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		field, ok := nextField(fields, options, state)
		if !ok {
			break
		}
		state.markAsked(field.ID)
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	final := options
	final.Values = state.Values()
	visible := final.VisibleFields(fields)

	values := make(visibility.Values, len(visible))
	order := make([]string, 0, len(visible))
	for _, field := range visible {
		if field.Name == "" {
			continue
		}
		if value, ok := state.Get(field.Name); ok {
			if _, dup := values[field.Name]; !dup {
				order = append(order, field.Name)
			}
			values[field.Name] = value
		}
	}

	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values, order)
}

// nextField returns the first visible field not yet asked, evaluated against
// the answers collected so far.
func nextField(fields []schema.Field, options render.RenderOptions, state *State) (schema.Field, bool) {
	current := options
	current.Values = state.Values()
	for _, field := range current.VisibleFields(fields) {
		if !state.wasAsked(field.ID) {
			return field, true
		}
	}
	return schema.Field{}, false
}

// withIDs gives id-less fields a positional id so each is asked once.
func withIDs(fields []schema.Field) []schema.Field {
	out := schema.CloneFields(fields)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = "#" + strconv.Itoa(i)
		}
	}
	return out
}

func (r *Renderer) promptField(ctx context.Context, field schema.Field, state *State) error {
	for _, message := range state.ErrorsFor(field.Name) {
		if err := r.info(ctx, r.theme.ErrorPrefix+displayLabel(field)+": "+message); err != nil {
			return err
		}
	}

	switch field.Type {
	case schema.FieldTypeHidden:
		if _, ok := state.Get(field.Name); !ok {
			state.Set(field.Name, "")
		}
		return nil
	case schema.FieldTypeCheckbox:
		return r.promptCheckbox(ctx, field, state)
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		return r.promptChoice(ctx, field, state)
	case schema.FieldTypeText, schema.FieldTypeTextArea, schema.FieldTypeDate:
		return r.promptText(ctx, field, state)
	default:
		return r.info(ctx, fmt.Sprintf("%sskipping %s: unsupported field type %q", r.theme.InfoPrefix, displayLabel(field), field.Type))
	}
}

func (r *Renderer) promptText(ctx context.Context, field schema.Field, state *State) error {
	label := displayLabel(field)
	current, _ := state.Get(field.Name)
	defaultVal := stringValue(current)
	validate := textValidator(field)

	for {
		var (
			response string
			err      error
		)
		cfg := InputConfig{Message: label, Default: defaultVal, Validator: validate}
		switch {
		case field.Type == schema.FieldTypeTextArea:
			response, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultVal})
		case isPassword(field):
			response, err = r.driver.Password(ctx, cfg)
		default:
			if field.Type == schema.FieldTypeDate {
				cfg.Help = "YYYY-MM-DD"
			}
			response, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}
		if err := validate(response); err != nil {
			if err := r.info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, label, err)); err != nil {
				return err
			}
			continue
		}
		state.Set(field.Name, response)
		return nil
	}
}

func (r *Renderer) promptCheckbox(ctx context.Context, field schema.Field, state *State) error {
	label := displayLabel(field)
	current, _ := state.Get(field.Name)
	defaultVal := boolValue(current)
	for {
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: defaultVal})
		if err != nil {
			return err
		}
		if field.Required && !answer {
			if err := r.info(ctx, fmt.Sprintf("%s%s is required", r.theme.ErrorPrefix, label)); err != nil {
				return err
			}
			continue
		}
		state.Set(field.Name, answer)
		return nil
	}
}

func (r *Renderer) promptChoice(ctx context.Context, field schema.Field, state *State) error {
	cfg, _ := field.Choice()
	if len(cfg.Values) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOptions, displayLabel(field))
	}

	labels := make([]string, len(cfg.Values))
	for i, option := range cfg.Values {
		labels[i] = optionLabel(option)
	}
	current, hasCurrent := state.Get(field.Name)
	selected := selectedIndices(cfg.Values, current, hasCurrent)

	prompt := SelectConfig{Message: displayLabel(field), Options: labels, DefaultIndex: -1, PageSize: 10}
	if cfg.Multiple && field.Type == schema.FieldTypeSelect {
		prompt.Defaults = selected
		for {
			indices, err := r.driver.MultiSelect(ctx, prompt)
			if err != nil {
				return err
			}
			picked := make([]string, 0, len(indices))
			for _, idx := range indices {
				if idx >= 0 && idx < len(cfg.Values) {
					picked = append(picked, cfg.Values[idx].Value)
				}
			}
			if field.Required && len(picked) == 0 {
				if err := r.info(ctx, fmt.Sprintf("%s%s is required", r.theme.ErrorPrefix, prompt.Message)); err != nil {
					return err
				}
				continue
			}
			state.Set(field.Name, picked)
			return nil
		}
	}

	if len(selected) > 0 {
		prompt.DefaultIndex = selected[0]
	}
	idx, err := r.driver.Select(ctx, prompt)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(cfg.Values) {
		return fmt.Errorf("tui: selection %d out of range for %s", idx, prompt.Message)
	}
	state.Set(field.Name, cfg.Values[idx].Value)
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, msg)
}

func (r *Renderer) serialize(values visibility.Values, order []string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for name, value := range values {
			if items, ok := value.([]string); ok {
				form[name] = append([]string(nil), items...)
				continue
			}
			form.Set(name, stringValue(value))
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, name := range order {
			value, ok := values[name]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s=%s\n", name, stringValue(value))
		}
		return []byte(b.String()), nil
	default:
		return json.Marshal(values)
	}
}

func textValidator(field schema.Field) func(string) error {
	limit := field.MaxLength()
	return func(answer string) error {
		trimmed := strings.TrimSpace(answer)
		if field.Required && trimmed == "" {
			return errors.New("value is required")
		}
		if limit > 0 && len([]rune(answer)) > limit {
			return fmt.Errorf("must be at most %d characters", limit)
		}
		if field.Type == schema.FieldTypeDate && trimmed != "" {
			if _, err := time.Parse(dateLayout, trimmed); err != nil {
				return fmt.Errorf("must be a date formatted as %s", dateLayout)
			}
		}
		return nil
	}
}

func isPassword(field schema.Field) bool {
	cfg, ok := field.Text()
	return ok && cfg.Subtype == schema.SubtypePassword
}

func selectedIndices(options []schema.Option, current any, hasCurrent bool) []int {
	var out []int
	if !hasCurrent {
		for i, option := range options {
			if option.Selected {
				out = append(out, i)
			}
		}
		return out
	}
	chosen := make(map[string]struct{})
	switch v := current.(type) {
	case []string:
		for _, item := range v {
			chosen[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			chosen[stringValue(item)] = struct{}{}
		}
	default:
		chosen[stringValue(v)] = struct{}{}
	}
	for i, option := range options {
		if _, ok := chosen[option.Value]; ok {
			out = append(out, i)
		}
	}
	return out
}

func displayLabel(field schema.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.Name
}

func optionLabel(option schema.Option) string {
	if strings.TrimSpace(option.Label) != "" {
		return option.Label
	}
	return option.Value
}

func stringValue(value any) string {
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

func boolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(v))
		return parsed
	default:
		return false
	}
}
