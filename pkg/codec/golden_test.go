package codec_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func TestLegacyBuilderExportNormalises(t *testing.T) {
	t.Parallel()

	fields := testsupport.LoadFields(t, filepath.Join("testdata", "legacy_builder.json"))
	if fields[0].ID != "fixture-1" {
		t.Fatalf("expected sequence ids, got %q", fields[0].ID)
	}

	got, err := codec.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	testsupport.AssertJSONGolden(t, filepath.Join("testdata", "legacy_builder.golden.json"), got)
}
