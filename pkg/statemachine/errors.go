package statemachine

import "errors"

var (
	// ErrNoTransition is returned when the current state has no
	// transition for the fired event.
	ErrNoTransition = errors.New("no transition for event")

	// ErrTransitionRejected is returned when transitions exist but every
	// guard rejected them.
	ErrTransitionRejected = errors.New("transition rejected by guard")
)
