package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

var (
	_ builder.Saver = (*MemoryRepository)(nil)
	_ builder.Saver = (*SQLRepository)(nil)
)

func sampleFields() []schema.Field {
	ids := schema.NewSequence("f")
	radio := schema.NewField(schema.FieldTypeRadio, nil, ids)
	text := schema.NewField(schema.FieldTypeText, []schema.Field{radio}, ids).AddCondition([]schema.Field{radio})
	return []schema.Field{radio, text}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	ignoreIDs := cmpopts.IgnoreFields(schema.Field{}, "ID")

	created, err := repo.Create(ctx, "Contact", sampleFields())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("unexpected created record: %#v", created)
	}
	if diff := cmp.Diff(sampleFields(), created.Fields, ignoreIDs); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	second, err := repo.Create(ctx, "Survey", nil)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(created, got, ignoreIDs); diff != "" {
		t.Fatalf("get mismatch (-want +got):\n%s", diff)
	}

	forms, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(forms) != 2 || forms[0].ID != created.ID || forms[1].ID != second.ID {
		t.Fatalf("unexpected list order: %#v", forms)
	}

	updated, err := repo.Update(ctx, created.ID, "Contact v2", sampleFields()[:1])
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Contact v2" || len(updated.Fields) != 1 || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("unexpected update result: %#v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}

	if _, err := repo.Update(ctx, "missing", "x", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on get, got %v", err)
	}
	if _, err := repo.Create(ctx, "  ", nil); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	forms, err = repo.List(ctx)
	if err != nil || len(forms) != 1 || forms[0].ID != second.ID {
		t.Fatalf("unexpected list after delete: %#v, %v", forms, err)
	}
}

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := NewMemory(WithClock(clock.Now))
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestSQLiteRepository(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	dsn := filepath.Join(t.TempDir(), "nested", "forms.db")
	repo, err := NewSQLite(WithDSN(dsn), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	exerciseRepository(t, repo)

	reopened, err := NewSQLite(WithDSN(dsn))
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer reopened.Close()
	forms, err := reopened.List(context.Background())
	if err != nil || len(forms) != 1 {
		t.Fatalf("expected persisted form after reopen, got %#v, %v", forms, err)
	}
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("FORMBUILDER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("env FORMBUILDER_TEST_POSTGRES_DSN not set")
	}
	repo, err := NewPostgres(WithDSN(dsn))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer repo.Close()
	if _, err := repo.db.Exec("DELETE FROM forms"); err != nil {
		t.Fatalf("clean table: %v", err)
	}
	clock := &fakeClock{now: time.Now().UTC()}
	repo.opts.Now = clock.Now
	exerciseRepository(t, repo)
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Parallel()

	repo, err := Open("")
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := repo.(*MemoryRepository); !ok {
		t.Fatalf("expected memory repository, got %T", repo)
	}
	if _, err := Open("mongo"); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(DriverSQLite); err == nil {
		t.Fatalf("expected missing DSN error")
	}
}

func TestNumberedPlaceholders(t *testing.T) {
	t.Parallel()

	got := numberedPlaceholders(`UPDATE forms SET name = ?, fields = ? WHERE id = ?`)
	if want := `UPDATE forms SET name = $1, fields = $2 WHERE id = $3`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
