package storage

import (
	"context"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// MemoryRepository keeps forms in process memory. Schemas are held in wire
// form so reads behave like the SQL backends.
type MemoryRepository struct {
	mu    sync.RWMutex
	opts  Opts
	order []string
	forms map[string]memoryRecord
}

type memoryRecord struct {
	form Form
	wire []byte
}

// NewMemory constructs an empty MemoryRepository.
func NewMemory(opts ...Option) *MemoryRepository {
	return &MemoryRepository{opts: resolveOpts(opts), forms: make(map[string]memoryRecord)}
}

func (r *MemoryRepository) Create(_ context.Context, name string, fields []schema.Field) (Form, error) {
	if err := validName(name); err != nil {
		return Form{}, err
	}
	wire, err := codec.Marshal(fields)
	if err != nil {
		return Form{}, err
	}
	now := r.opts.timestamp()
	form := Form{ID: r.opts.IDs.NewID(), Name: name, CreatedAt: now, UpdatedAt: now}

	r.mu.Lock()
	r.forms[form.ID] = memoryRecord{form: form, wire: wire}
	r.order = append(r.order, form.ID)
	r.mu.Unlock()

	r.opts.Logger.Debug("MemoryRepository Create succeeded", "id", form.ID, "fields", len(fields))
	return r.hydrate(memoryRecord{form: form, wire: wire})
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Form, error) {
	r.mu.RLock()
	record, ok := r.forms[id]
	r.mu.RUnlock()
	if !ok {
		return Form{}, ErrNotFound
	}
	return r.hydrate(record)
}

func (r *MemoryRepository) List(_ context.Context) ([]Form, error) {
	r.mu.RLock()
	records := make([]memoryRecord, 0, len(r.order))
	for _, id := range r.order {
		records = append(records, r.forms[id])
	}
	r.mu.RUnlock()

	out := make([]Form, 0, len(records))
	for _, record := range records {
		form, err := r.hydrate(record)
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id, name string, fields []schema.Field) (Form, error) {
	if err := validName(name); err != nil {
		return Form{}, err
	}
	wire, err := codec.Marshal(fields)
	if err != nil {
		return Form{}, err
	}

	r.mu.Lock()
	record, ok := r.forms[id]
	if !ok {
		r.mu.Unlock()
		return Form{}, ErrNotFound
	}
	record.form.Name = name
	record.form.UpdatedAt = r.opts.timestamp()
	record.wire = wire
	r.forms[id] = record
	r.mu.Unlock()

	return r.hydrate(record)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[id]; !ok {
		return ErrNotFound
	}
	delete(r.forms, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// CreateForm saves a new form and returns its id.
func (r *MemoryRepository) CreateForm(ctx context.Context, name string, fields []schema.Field) (string, error) {
	form, err := r.Create(ctx, name, fields)
	return form.ID, err
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) hydrate(record memoryRecord) (Form, error) {
	fields, err := codec.Decode(record.wire, nil)
	if err != nil {
		return Form{}, err
	}
	form := record.form
	form.Fields = fields
	return form, nil
}
