package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned when a choice field has nothing to pick.
	ErrNoOptions = errors.New("tui: choice field has no options")
)
