package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// schemaArg returns the single positional schema path.
func schemaArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one schema path, got %d", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return raw, nil
}

func loadSchema(path string) ([]schema.Field, error) {
	raw, err := readSource(path)
	if err != nil {
		return nil, err
	}
	fields, err := codec.DecodeAny(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func runLint(args []string, stdout io.Writer) error {
	fs := newFlagSet("lint")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("lint: expected at least one schema path")
	}

	failed := false
	for _, path := range fs.Args() {
		raw, err := readSource(path)
		if err != nil {
			return err
		}
		result := validation.ValidateDocument(raw)
		if !result.Valid {
			failed = true
		}
		if *asJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s\n", data)
			continue
		}
		for _, issue := range result.Issues {
			location := issue.Path
			if location == "" {
				location = "/"
			}
			fmt.Fprintf(stdout, "%s: %s %s -> %s\n", path, issue.Code, location, issue.Message)
		}
	}
	if failed {
		return errLintFailed
	}
	return nil
}

func runConvert(args []string, stdout io.Writer) error {
	fs := newFlagSet("convert")
	to := fs.String("to", "", "target format: json or yaml (default: the other one, by file extension)")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := schemaArg(fs)
	if err != nil {
		return err
	}
	fields, err := loadSchema(path)
	if err != nil {
		return err
	}

	target := strings.ToLower(*to)
	if target == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			target = "json"
		default:
			target = "yaml"
		}
	}

	var data []byte
	switch target {
	case "json":
		data, err = codec.MarshalIndent(fields)
		data = append(data, '\n')
	case "yaml", "yml":
		data, err = codec.MarshalYAML(fields)
	default:
		return fmt.Errorf("convert: unknown format %q", *to)
	}
	if err != nil {
		return err
	}
	return writeOutput(stdout, *output, data)
}

func runOpenAPI(args []string, stdout io.Writer) error {
	fs := newFlagSet("openapi")
	title := fs.String("title", "", "document title (default: schema file name)")
	formID := fs.String("form-id", "form", "form id used in the submission path")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := schemaArg(fs)
	if err != nil {
		return err
	}
	fields, err := loadSchema(path)
	if err != nil {
		return err
	}
	if *title == "" {
		*title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	data, err := json.MarshalIndent(openapi.Document(*title, *formID, fields), "", "  ")
	if err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return writeOutput(stdout, *output, append(data, '\n'))
}

func runPreview(args []string, stdout io.Writer) error {
	fs := newFlagSet("preview")
	values := valueFlags{}
	fs.Var(values, "set", "form value as name=value (repeatable)")
	title := fs.String("title", "", "form title")
	action := fs.String("action", "", "form action URL")
	all := fs.Bool("all", false, "render every field regardless of conditions")
	names := fs.String("names", "", "comma separated field names to render")
	types := fs.String("types", "", "comma separated field types to render")
	errorsPath := fs.String("errors", "", "JSON file mapping field names or paths to error messages")
	templates := fs.String("templates", "", "directory overriding the embedded templates")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := schemaArg(fs)
	if err != nil {
		return err
	}
	fields, err := loadSchema(path)
	if err != nil {
		return err
	}

	var mapping render.ErrorMapping
	if *errorsPath != "" {
		raw, err := os.ReadFile(*errorsPath)
		if err != nil {
			return fmt.Errorf("read errors: %w", err)
		}
		var payload map[string][]string
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("%s: %w", *errorsPath, err)
		}
		mapping = render.MapErrorPayload(fields, payload)
	}

	var opts []vanilla.Option
	if *templates != "" {
		opts = append(opts, vanilla.WithTemplatesDir(*templates))
	}
	renderer, err := vanilla.New(opts...)
	if err != nil {
		return err
	}
	html, err := renderer.Render(context.Background(), fields, render.RenderOptions{
		Title:      *title,
		Action:     *action,
		Values:     visibility.Values(values),
		Errors:     mapping.Fields,
		FormErrors: mapping.Form,
		Subset:     render.ParseSubset(*names, *types),
		ShowAll:    *all,
	})
	if err != nil {
		return err
	}
	return writeOutput(stdout, *output, append(html, '\n'))
}

func runVisible(args []string, stdout io.Writer) error {
	fs := newFlagSet("visible")
	values := valueFlags{}
	fs.Var(values, "set", "form value as name=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := schemaArg(fs)
	if err != nil {
		return err
	}
	fields, err := loadSchema(path)
	if err != nil {
		return err
	}
	for _, name := range visibility.VisibleNames(fields, visibility.Values(values)) {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func runFill(args []string, stdout io.Writer) error {
	fs := newFlagSet("fill")
	values := valueFlags{}
	fs.Var(values, "set", "prefilled value as name=value (repeatable)")
	format := fs.String("format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := schemaArg(fs)
	if err != nil {
		return err
	}
	if path == "-" {
		return fmt.Errorf("fill: the schema cannot be read from stdin while prompting")
	}
	fields, err := loadSchema(path)
	if err != nil {
		return err
	}

	renderer, err := tui.New(tui.WithOutputFormat(tui.OutputFormat(*format)))
	if err != nil {
		return err
	}
	data, err := renderer.Render(context.Background(), fields, render.RenderOptions{Values: visibility.Values(values)})
	if err != nil {
		return err
	}
	return writeOutput(stdout, *output, append(data, '\n'))
}
