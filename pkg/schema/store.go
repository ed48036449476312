package schema

// Store is the ordered collection of fields for one form. It is owned by a
// single builder session and is not safe for concurrent use; every mutation
// replaces the internal slice instead of editing it in place, so slices
// returned earlier stay valid snapshots.
type Store struct {
	fields []Field
	ids    IDGenerator
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator overrides the generator used for new field ids.
func WithIDGenerator(ids IDGenerator) StoreOption {
	return func(s *Store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithFields seeds the store, as Replace would.
func WithFields(fields []Field) StoreOption {
	return func(s *Store) {
		s.fields = s.adopt(fields)
	}
}

// NewStore constructs an empty Store.
func NewStore(options ...StoreOption) *Store {
	s := &Store{ids: UUIDGenerator{}}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// IDs exposes the store's id generator so collaborators (such as the codec)
// can hydrate fields with identifiers from the same source.
func (s *Store) IDs() IDGenerator {
	return s.ids
}

// Fields returns a deep copy of the current fields in order.
func (s *Store) Fields() []Field {
	return CloneFields(s.fields)
}

// Len reports the number of fields.
func (s *Store) Len() int {
	return len(s.fields)
}

// Field looks up a field by id.
func (s *Store) Field(id string) (Field, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.fields[i].Clone(), true
	}
	return Field{}, false
}

// Index reports the position of the field with the given id, or -1.
func (s *Store) Index(id string) int {
	return s.indexOf(id)
}

// Add appends a new field of type t and returns it.
func (s *Store) Add(t FieldType) Field {
	field := NewField(t, s.fields, s.ids)
	next := make([]Field, 0, len(s.fields)+1)
	next = append(next, s.fields...)
	next = append(next, field)
	s.fields = next
	return field.Clone()
}

// Update replaces the field with the given id by fn's result. The id is
// preserved whatever fn returns. It reports false when the id is unknown.
func (s *Store) Update(id string, fn func(Field) Field) (Field, bool) {
	i := s.indexOf(id)
	if i < 0 || fn == nil {
		return Field{}, false
	}
	updated := fn(s.fields[i].Clone())
	updated.ID = id

	next := make([]Field, len(s.fields))
	copy(next, s.fields)
	next[i] = updated
	s.fields = next
	return updated.Clone(), true
}

// Apply merges patch into the field with the given id.
func (s *Store) Apply(id string, patch Patch) (Field, bool) {
	return s.Update(id, func(f Field) Field { return f.Apply(patch) })
}

// Delete removes the field with the given id. Its id is never handed out
// again by the store's generator.
func (s *Store) Delete(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	next := make([]Field, 0, len(s.fields)-1)
	next = append(next, s.fields[:i]...)
	next = append(next, s.fields[i+1:]...)
	s.fields = next
	return true
}

// Move relocates the field with the given id to position to, clamped to the
// valid range.
func (s *Store) Move(id string, to int) bool {
	from := s.indexOf(id)
	if from < 0 {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to > len(s.fields)-1 {
		to = len(s.fields) - 1
	}
	if from == to {
		return true
	}

	moving := s.fields[from]
	rest := make([]Field, 0, len(s.fields)-1)
	rest = append(rest, s.fields[:from]...)
	rest = append(rest, s.fields[from+1:]...)

	next := make([]Field, 0, len(s.fields))
	next = append(next, rest[:to]...)
	next = append(next, moving)
	next = append(next, rest[to:]...)
	s.fields = next
	return true
}

// MoveUp swaps the field with its predecessor. It reports false at the top.
func (s *Store) MoveUp(id string) bool {
	i := s.indexOf(id)
	if i <= 0 {
		return false
	}
	return s.Move(id, i-1)
}

// MoveDown swaps the field with its successor. It reports false at the
// bottom.
func (s *Store) MoveDown(id string) bool {
	i := s.indexOf(id)
	if i < 0 || i >= len(s.fields)-1 {
		return false
	}
	return s.Move(id, i+1)
}

// Replace swaps the whole field list. Fields with an empty or duplicated id
// receive a fresh one.
func (s *Store) Replace(fields []Field) {
	s.fields = s.adopt(fields)
}

func (s *Store) adopt(fields []Field) []Field {
	next := CloneFields(fields)
	if next == nil {
		next = []Field{}
	}
	seen := make(map[string]struct{}, len(next))
	for i := range next {
		if _, dup := seen[next[i].ID]; next[i].ID == "" || dup {
			next[i].ID = s.ids.NewID()
		}
		seen[next[i].ID] = struct{}{}
	}
	return next
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, field := range s.fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}
