package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoComposer is returned by NewSession without a composer.
	ErrNoComposer = errors.New("tui: composer is required")
)
