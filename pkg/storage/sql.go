package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Connection pool defaults for Postgres.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

// sqliteTimeLayout is fixed width so stored timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

type dialect struct {
	name       string
	driver     string
	migrations string
	// bind rewrites ? placeholders for the driver.
	bind func(query string) string
	// timeArg converts a timestamp into a query argument.
	timeArg func(time.Time) any
}

var sqliteDialect = dialect{
	name:       DriverSQLite,
	driver:     "sqlite",
	migrations: sqliteMigrations,
	bind:       func(query string) string { return query },
	timeArg:    func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

var postgresDialect = dialect{
	name:       DriverPostgres,
	driver:     "postgres",
	migrations: postgresMigrations,
	bind:       numberedPlaceholders,
	timeArg:    func(t time.Time) any { return t },
}

func numberedPlaceholders(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLRepository stores forms in SQLite or PostgreSQL.
type SQLRepository struct {
	db      *sql.DB
	opts    Opts
	dialect dialect
}

// NewSQLite opens (creating when needed) the SQLite database at the DSN path
// and applies the migrations.
func NewSQLite(opts ...Option) (*SQLRepository, error) {
	cfg := resolveOpts(opts)
	cfg.Logger.Debug("NewSQLite invoked", "DSN_set", cfg.DSN != "")
	if cfg.DSN == "" {
		return nil, errors.New("storage: database DSN not set")
	}
	if !strings.HasPrefix(cfg.DSN, "file:") && cfg.DSN != ":memory:" {
		dir := filepath.Dir(cfg.DSN)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			cfg.Logger.Error("Failed to create database directory", "error", err, "dir", dir)
			return nil, fmt.Errorf("storage: create database directory: %w", err)
		}
	}

	db, err := sql.Open(sqliteDialect.driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases consistent and avoids
	// SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)
	return newSQLRepository(db, cfg, sqliteDialect)
}

// NewPostgres connects to PostgreSQL and applies the migrations.
func NewPostgres(opts ...Option) (*SQLRepository, error) {
	cfg := resolveOpts(opts)
	cfg.Logger.Debug("NewPostgres invoked", "DSN_set", cfg.DSN != "")
	if cfg.DSN == "" {
		return nil, errors.New("storage: database DSN not set")
	}
	db, err := sql.Open(postgresDialect.driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	return newSQLRepository(db, cfg, postgresDialect)
}

func newSQLRepository(db *sql.DB, cfg Opts, d dialect) (*SQLRepository, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		cfg.Logger.Error("Database ping failed", "dialect", d.name, "error", err)
		return nil, fmt.Errorf("storage: ping %s: %w", d.name, err)
	}
	if _, err := db.Exec(d.migrations); err != nil {
		db.Close()
		cfg.Logger.Error("Failed to run migrations", "dialect", d.name, "error", err)
		return nil, fmt.Errorf("storage: run %s migrations: %w", d.name, err)
	}
	cfg.Logger.Debug("Migrations applied", "dialect", d.name)
	return &SQLRepository{db: db, opts: cfg, dialect: d}, nil
}

func (r *SQLRepository) Create(ctx context.Context, name string, fields []schema.Field) (Form, error) {
	if err := validName(name); err != nil {
		return Form{}, err
	}
	wire, err := codec.Marshal(fields)
	if err != nil {
		return Form{}, err
	}
	now := r.opts.timestamp()
	id := r.opts.IDs.NewID()

	query := r.dialect.bind(`INSERT INTO forms (id, name, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, id, name, string(wire), r.dialect.timeArg(now), r.dialect.timeArg(now)); err != nil {
		r.opts.Logger.Error("SQLRepository Create failed", "dialect", r.dialect.name, "error", err)
		return Form{}, fmt.Errorf("storage: insert form: %w", err)
	}
	r.opts.Logger.Debug("SQLRepository Create succeeded", "id", id, "fields", len(fields))
	return r.Get(ctx, id)
}

func (r *SQLRepository) Get(ctx context.Context, id string) (Form, error) {
	query := r.dialect.bind(`SELECT id, name, fields, created_at, updated_at FROM forms WHERE id = ?`)
	form, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Form{}, ErrNotFound
	}
	return form, err
}

func (r *SQLRepository) List(ctx context.Context) ([]Form, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, fields, created_at, updated_at FROM forms ORDER BY created_at, id`)
	if err != nil {
		r.opts.Logger.Error("SQLRepository List query failed", "error", err)
		return nil, fmt.Errorf("storage: query forms: %w", err)
	}
	defer rows.Close()

	var forms []Form
	for rows.Next() {
		form, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate forms: %w", err)
	}
	r.opts.Logger.Debug("SQLRepository List succeeded", "count", len(forms))
	return forms, nil
}

func (r *SQLRepository) Update(ctx context.Context, id, name string, fields []schema.Field) (Form, error) {
	if err := validName(name); err != nil {
		return Form{}, err
	}
	wire, err := codec.Marshal(fields)
	if err != nil {
		return Form{}, err
	}
	query := r.dialect.bind(`UPDATE forms SET name = ?, fields = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, name, string(wire), r.dialect.timeArg(r.opts.timestamp()), id)
	if err != nil {
		r.opts.Logger.Error("SQLRepository Update failed", "id", id, "error", err)
		return Form{}, fmt.Errorf("storage: update form %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return Form{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.dialect.bind(`DELETE FROM forms WHERE id = ?`), id)
	if err != nil {
		r.opts.Logger.Error("SQLRepository Delete failed", "id", id, "error", err)
		return fmt.Errorf("storage: delete form %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateForm saves a new form and returns its id.
func (r *SQLRepository) CreateForm(ctx context.Context, name string, fields []schema.Field) (string, error) {
	form, err := r.Create(ctx, name, fields)
	return form.ID, err
}

// Close releases the database handle.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scan(row rowScanner) (Form, error) {
	var (
		form             Form
		wire             []byte
		created, updated any
	)
	if err := row.Scan(&form.ID, &form.Name, &wire, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Form{}, err
		}
		return Form{}, fmt.Errorf("storage: scan form: %w", err)
	}
	fields, err := codec.Decode(wire, nil)
	if err != nil {
		return Form{}, fmt.Errorf("storage: form %s: %w", form.ID, err)
	}
	form.Fields = fields
	if form.CreatedAt, err = parseTime(created); err != nil {
		return Form{}, fmt.Errorf("storage: form %s created_at: %w", form.ID, err)
	}
	if form.UpdatedAt, err = parseTime(updated); err != nil {
		return Form{}, fmt.Errorf("storage: form %s updated_at: %w", form.ID, err)
	}
	return form, nil
}

func parseTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		return parseTimeString(v)
	case []byte:
		return parseTimeString(string(v))
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp %T", value)
	}
}

func parseTimeString(raw string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
