package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// ErrNoSaver is returned by Save when the session has no persistence
// collaborator.
var ErrNoSaver = errors.New("builder: no saver configured")

// Saver persists a schema and returns the identifier it was stored under.
type Saver interface {
	CreateForm(ctx context.Context, name string, fields []schema.Field) (string, error)
}

// SaverFunc adapts a function into a Saver.
type SaverFunc func(ctx context.Context, name string, fields []schema.Field) (string, error)

// CreateForm delegates to the underlying function.
func (fn SaverFunc) CreateForm(ctx context.Context, name string, fields []schema.Field) (string, error) {
	return fn(ctx, name, fields)
}

// Option customises a Session.
type Option func(*Session)

// WithIDGenerator sets the generator used for new and imported fields.
func WithIDGenerator(ids schema.IDGenerator) Option {
	return func(s *Session) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithSaver injects the persistence collaborator used by Save.
func WithSaver(saver Saver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// WithEvaluator replaces the clause evaluator used for the visible set.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(s *Session) {
		if eval != nil {
			s.eval = eval
		}
	}
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFields seeds the session with an existing schema.
func WithFields(fields []schema.Field) Option {
	return func(s *Session) {
		s.seed = schema.CloneFields(fields)
	}
}

// Session is one builder: a schema store, the current form values and the
// visible set derived from both. Methods are serialised so the visible set
// always reflects the schema and values as they stood after the last call.
type Session struct {
	mu      sync.Mutex
	ids     schema.IDGenerator
	store   *schema.Store
	values  visibility.Values
	visible []schema.Field
	eval    visibility.Evaluator
	saver   Saver
	logger  *slog.Logger
	status  string
	seed    []schema.Field
}

// New constructs a Session.
func New(options ...Option) *Session {
	s := &Session{
		ids:    schema.UUIDGenerator{},
		values: visibility.Values{},
		eval:   visibility.Default,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.store = schema.NewStore(schema.WithIDGenerator(s.ids), schema.WithFields(s.seed))
	s.seed = nil
	s.refresh()
	return s
}

// refresh recomputes the visible set. Callers hold mu.
func (s *Session) refresh() {
	s.visible = visibility.Filter(s.eval, s.store.Fields(), s.values)
}

// Fields returns a copy of the schema.
func (s *Session) Fields() []schema.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Fields()
}

// Field looks up a field by id.
func (s *Session) Field(id string) (schema.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Field(id)
}

// Visible returns a copy of the fields that currently render.
func (s *Session) Visible() []schema.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.CloneFields(s.visible)
}

// VisibleNames returns the names of the fields that currently render.
func (s *Session) VisibleNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.visible))
	for _, field := range s.visible {
		out = append(out, field.Name)
	}
	return out
}

// Values returns a copy of the current form values.
func (s *Session) Values() visibility.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(visibility.Values, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Status returns the message recorded by the last Save.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Lint reports non-fatal problems in the current schema.
func (s *Session) Lint() validation.SchemaValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validation.Lint(s.store.Fields())
}

// Add appends a new field of type t.
func (s *Session) Add(t schema.FieldType) schema.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	field := s.store.Add(t)
	s.refresh()
	return field
}

// Apply merges patch into the field with the given id.
func (s *Session) Apply(id string, patch schema.Patch) (schema.Field, bool) {
	return s.Update(id, func(f schema.Field) schema.Field { return f.Apply(patch) })
}

// Update replaces the field with the given id by fn's result. The id is kept
// whatever fn returns.
func (s *Session) Update(id string, fn func(schema.Field) schema.Field) (schema.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	field, ok := s.store.Update(id, fn)
	if ok {
		s.refresh()
	}
	return field, ok
}

// AddCondition appends a default clause to the field with the given id.
func (s *Session) AddCondition(id string) (schema.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.store.Fields()
	field, ok := s.store.Update(id, func(f schema.Field) schema.Field { return f.AddCondition(fields) })
	if ok {
		s.refresh()
	}
	return field, ok
}

// Delete removes the field with the given id.
func (s *Session) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.Delete(id)
	if ok {
		s.refresh()
	}
	return ok
}

// Move places the field with the given id at index to.
func (s *Session) Move(id string, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.Move(id, to)
	if ok {
		s.refresh()
	}
	return ok
}

// MoveUp swaps the field with its predecessor.
func (s *Session) MoveUp(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.MoveUp(id)
	if ok {
		s.refresh()
	}
	return ok
}

// MoveDown swaps the field with its successor.
func (s *Session) MoveDown(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.MoveDown(id)
	if ok {
		s.refresh()
	}
	return ok
}

// SetValue records the value of the named field and recomputes the visible
// set.
func (s *Session) SetValue(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	s.refresh()
}

// SetValues replaces all form values.
func (s *Session) SetValues(values visibility.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(visibility.Values, len(values))
	for key, value := range values {
		s.values[key] = value
	}
	s.refresh()
}

// Import replaces the schema with the decoded document (JSON or YAML). The
// schema is left untouched when decoding fails; the error is an
// *codec.ImportError.
func (s *Session) Import(data []byte) error {
	fields, err := codec.DecodeAny(data, s.ids)
	if err != nil {
		s.logger.Debug("builder: import rejected", "error", err)
		return err
	}
	s.replace(fields)
	return nil
}

// Replace swaps in fields, assigning ids where they are missing.
func (s *Session) Replace(fields []schema.Field) {
	s.replace(schema.CloneFields(fields))
}

func (s *Session) replace(fields []schema.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Replace(fields)
	s.refresh()
	s.logger.Debug("builder: schema replaced", "fields", len(fields))
}

// Export encodes the schema as indented JSON.
func (s *Session) Export() ([]byte, error) {
	return codec.MarshalIndent(s.Fields())
}

// ExportYAML encodes the schema as YAML.
func (s *Session) ExportYAML() ([]byte, error) {
	return codec.MarshalYAML(s.Fields())
}

// Save hands the schema to the saver under name and records a status
// message. The schema and values are never rolled back on failure.
func (s *Session) Save(ctx context.Context, name string) (string, error) {
	fields := s.Fields()

	s.mu.Lock()
	saver := s.saver
	s.mu.Unlock()

	var (
		id  string
		err error
	)
	switch {
	case saver == nil:
		err = ErrNoSaver
	case name == "":
		err = errors.New("builder: form name is required")
	default:
		id, err = saver.CreateForm(ctx, name, fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = fmt.Sprintf("Error saving form: %v", err)
		s.logger.Warn("builder: save failed", "name", name, "error", err)
		return "", err
	}
	s.status = fmt.Sprintf("Form saved successfully with ID: %s", id)
	s.logger.Info("builder: form saved", "name", name, "id", id, "fields", len(fields))
	return id, nil
}
