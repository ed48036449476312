// Package storage persists saved forms. A form is stored as its wire schema,
// so field ids are reassigned every time it is read back.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

var (
	// ErrNotFound is returned when no form has the requested id.
	ErrNotFound = errors.New("storage: form not found")
	// ErrInvalidName is returned when a form is saved without a name.
	ErrInvalidName = errors.New("storage: form name is required")
)

// Form is a saved schema.
type Form struct {
	ID        string
	Name      string
	Fields    []schema.Field
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository stores forms.
type Repository interface {
	Create(ctx context.Context, name string, fields []schema.Field) (Form, error)
	Get(ctx context.Context, id string) (Form, error)
	List(ctx context.Context) ([]Form, error)
	Update(ctx context.Context, id, name string, fields []schema.Field) (Form, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Opts holds repository configuration.
type Opts struct {
	DSN    string
	Logger *slog.Logger
	IDs    schema.IDGenerator
	Now    func() time.Time
}

// Option configures a repository.
type Option func(*Opts)

// WithDSN sets the database connection string (a file path for SQLite).
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opts) {
		o.Logger = logger
	}
}

// WithIDGenerator sets the generator for form ids; random UUIDs by default.
func WithIDGenerator(ids schema.IDGenerator) Option {
	return func(o *Opts) {
		o.IDs = ids
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Now = now
	}
}

func resolveOpts(opts []Option) Opts {
	var cfg Opts
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IDs == nil {
		cfg.IDs = schema.UUIDGenerator{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

// timestamp truncates to the precision every backend can store.
func (o Opts) timestamp() time.Time {
	return o.Now().UTC().Truncate(time.Microsecond)
}

// Open builds the repository for driver.
func Open(driver string, opts ...Option) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(opts...), nil
	case DriverSQLite:
		return NewSQLite(opts...)
	case DriverPostgres:
		return NewPostgres(opts...)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}
