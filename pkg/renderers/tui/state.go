package tui

import (
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// State tracks collected values by field name, seeded from prefilled values,
// plus any server-provided errors.
type State struct {
	values visibility.Values
	errors map[string][]string
	asked  map[string]struct{}
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill visibility.Values, errs map[string][]string) *State {
	values := make(visibility.Values, len(prefill))
	for key, value := range prefill {
		values[key] = value
	}
	errors := make(map[string][]string, len(errs))
	for key, messages := range errs {
		errors[key] = append([]string(nil), messages...)
	}
	return &State{values: values, errors: errors, asked: make(map[string]struct{})}
}

// Values returns the live value map. The visibility evaluator reads it after
// every answer.
func (s *State) Values() visibility.Values {
	return s.values
}

// Get returns the current value of a field.
func (s *State) Get(name string) (any, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Set records an answer. Errors for the field are cleared.
func (s *State) Set(name string, value any) {
	s.values[name] = value
	delete(s.errors, name)
}

// ErrorsFor returns the errors attached to a field.
func (s *State) ErrorsFor(name string) []string {
	return s.errors[name]
}

func (s *State) markAsked(id string) {
	s.asked[id] = struct{}{}
}

func (s *State) wasAsked(id string) bool {
	_, ok := s.asked[id]
	return ok
}
