package builder

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed examples/*
var examplesFS embed.FS

// Examples lists the names of the bundled example schemas.
func Examples() []string {
	entries, err := fs.ReadDir(examplesFS, "examples")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		names = append(names, strings.TrimSuffix(name, path.Ext(name)))
	}
	sort.Strings(names)
	return names
}

// Example returns the raw document of a bundled example.
func Example(name string) ([]byte, error) {
	entries, err := fs.ReadDir(examplesFS, "examples")
	if err != nil {
		return nil, fmt.Errorf("builder: examples: %w", err)
	}
	for _, entry := range entries {
		file := entry.Name()
		if strings.TrimSuffix(file, path.Ext(file)) == name {
			return examplesFS.ReadFile(path.Join("examples", file))
		}
	}
	return nil, fmt.Errorf("builder: unknown example %q", name)
}

// LoadExample imports a bundled example into the session.
func (s *Session) LoadExample(name string) error {
	data, err := Example(name)
	if err != nil {
		return err
	}
	return s.Import(data)
}
