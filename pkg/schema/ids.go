package schema

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out field identifiers. Implementations must never return
// an empty string or repeat a value.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function into an IDGenerator.
type IDGeneratorFunc func() string

// NewID delegates to the underlying function.
func (fn IDGeneratorFunc) NewID() string {
	return fn()
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence issues prefix-1, prefix-2, ... and is safe for concurrent use.
// Handy for deterministic tests and fixtures.
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence constructs a Sequence. An empty prefix defaults to "field".
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "field"
	}
	return &Sequence{prefix: prefix}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	n := s.next.Add(1)
	return s.prefix + "-" + strconv.FormatUint(n, 10)
}

func generatorOrDefault(ids IDGenerator) IDGenerator {
	if ids == nil {
		return UUIDGenerator{}
	}
	return ids
}
