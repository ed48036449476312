// Command formbuilder-cli works with form schema documents from the terminal:
// linting, converting between JSON and YAML, exporting OpenAPI, rendering HTML
// previews and filling a form in interactively.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type command struct {
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = map[string]command{
	"lint":    {summary: "report schema problems; exits 1 when any are found", run: runLint},
	"convert": {summary: "convert a schema between JSON and YAML", run: runConvert},
	"openapi": {summary: "export the submission schema as an OpenAPI document", run: runOpenAPI},
	"preview": {summary: "render the visible fields as HTML", run: runPreview},
	"visible": {summary: "print the names of the visible fields", run: runVisible},
	"fill":    {summary: "fill the form in the terminal and print the values", run: runFill},
}

// errLintFailed signals that lint found issues and already reported them.
var errLintFailed = errors.New("lint failed")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errLintFailed) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(args[1:], stdout)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: formbuilder-cli <command> [flags] <schema>\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nA schema path of - reads standard input.\n")
}

// valueFlags collects repeated -set name=value pairs. A name given more than
// once becomes a list.
type valueFlags map[string]any

func (v valueFlags) String() string {
	parts := make([]string, 0, len(v))
	for name, value := range v {
		parts = append(parts, fmt.Sprintf("%s=%v", name, value))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (v valueFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	switch existing := v[name].(type) {
	case nil:
		v[name] = value
	case string:
		v[name] = []string{existing, value}
	case []string:
		v[name] = append(existing, value)
	}
	return nil
}
