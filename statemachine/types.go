package statemachine

import (
	"context"
	"time"
)

// Transition is a named, directed edge between two states.
type Transition[S ~string] struct {
	Name string
	From S
	To   S
}

// Hook is a side effect run after a transition has committed. It receives the
// new state and whatever payload was passed to Fire.
type Hook[S ~string] func(ctx context.Context, state S, payload ...any) error

// Hooks maps transition names to their hook.
type Hooks[S ~string] map[string]Hook[S]

// Record is one entry of a machine's transition history.
type Record[S ~string] struct {
	Transition string
	From       S
	To         S
	At         time.Time
}
