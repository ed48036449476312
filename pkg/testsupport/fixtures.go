// Package testsupport holds fixture and golden file helpers shared by package
// tests.
package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// UpdateEnv is the environment variable that makes golden helpers rewrite
// their files instead of comparing against them.
const UpdateEnv = "UPDATE_GOLDENS"

// LoadFields decodes a JSON or YAML schema fixture. Field ids come from a
// sequence so they are stable across runs.
func LoadFields(t *testing.T, path string) []schema.Field {
	t.Helper()

	fields, err := codec.DecodeAny(MustReadFile(t, path), schema.NewSequence("fixture"))
	if err != nil {
		t.Fatalf("decode fixture %s: %v", path, err)
	}
	return fields
}

// MustReadFile reads a fixture or fails the test.
func MustReadFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// WriteMaybeGolden rewrites a golden file when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
	return true
}

// AssertJSONGolden compares got with the JSON golden at path. Both sides are
// decoded before comparing, so formatting and key order do not matter.
func AssertJSONGolden(t *testing.T, path string, got []byte) {
	t.Helper()

	if WriteMaybeGolden(t, path, indentJSON(t, got)) {
		return
	}
	if diff := CompareJSON(MustReadFile(t, path), got); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// CompareJSON returns a cmp diff between two JSON documents, or a diff of the
// raw bytes when either side does not parse.
func CompareJSON(want, got []byte) string {
	var wantValue, gotValue any
	if err := json.Unmarshal(want, &wantValue); err != nil {
		return cmp.Diff(string(want), string(got))
	}
	if err := json.Unmarshal(got, &gotValue); err != nil {
		return cmp.Diff(string(want), string(got))
	}
	return cmp.Diff(wantValue, gotValue)
}

func indentJSON(t *testing.T, data []byte) []byte {
	t.Helper()

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		t.Fatalf("golden is not JSON: %v", err)
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("indent golden: %v", err)
	}
	return append(bytes.TrimSpace(out), '\n')
}
