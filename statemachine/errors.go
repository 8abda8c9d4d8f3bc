package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined error types.
var (
	// ErrConfiguration is the umbrella for every problem found while validating a transition table.
	ErrConfiguration = errors.New("invalid state machine configuration")
	// ErrUnknownTransition indicates Fire was called with a name that is not in the table.
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrInvalidTransition indicates the transition cannot fire from the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrHookFailed indicates a transition committed but its hook returned an error.
	ErrHookFailed = errors.New("transition hook failed")
	// ErrHookPanic indicates a transition hook panicked.
	ErrHookPanic = errors.New("panic in transition hook")
	// ErrMailboxClosed is returned when firing through a mailbox that has stopped.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrConfigNameRequired indicates that a configuration name is required.
	ErrConfigNameRequired = errors.New("config name is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrTransitionNameRequired indicates that a transition name is required.
	ErrTransitionNameRequired = errors.New("transition name is required")
	// ErrTransitionFromRequired indicates that a transition from state is required.
	ErrTransitionFromRequired = errors.New("transition from state is required")
	// ErrTransitionToRequired indicates that a transition to state is required.
	ErrTransitionToRequired = errors.New("transition to state is required")
	// ErrDuplicateTransition indicates that two transitions share a name.
	ErrDuplicateTransition = errors.New("duplicate transition name")
	// ErrHookWithoutTransition indicates a hook was registered for a name that has no transition.
	ErrHookWithoutTransition = errors.New("hook registered for unknown transition")
)

// ConfigurationError carries every problem found in a transition table.
// It matches ErrConfiguration and each of the individual problems under errors.Is.
type ConfigurationError struct {
	Problems []error
}

func (e *ConfigurationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}

	return fmt.Sprintf("%v: %s", ErrConfiguration, strings.Join(msgs, "; "))
}

func (e *ConfigurationError) Unwrap() []error {
	return append([]error{ErrConfiguration}, e.Problems...)
}

// UnknownTransitionError reports a Fire call for a name that is not in the table.
type UnknownTransitionError struct {
	Name string
}

func (e *UnknownTransitionError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownTransition, e.Name)
}

func (e *UnknownTransitionError) Unwrap() error {
	return ErrUnknownTransition
}

// InvalidTransitionError reports a Fire call whose transition does not start at the current state.
type InvalidTransitionError struct {
	Name    string
	From    string
	Current string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%v: %q requires state %q, machine is in %q", ErrInvalidTransition, e.Name, e.From, e.Current)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// HookError wraps the failure of a hook. The transition it belongs to has
// already committed; State is the state the machine is now in.
type HookError struct {
	Transition string
	State      string
	Err        error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%v: %s (state %s): %v", ErrHookFailed, e.Transition, e.State, e.Err)
}

func (e *HookError) Unwrap() []error {
	return []error{ErrHookFailed, e.Err}
}

// wrapProblem attaches transition position context to a configuration problem.
func wrapProblem(index int, name string, err error) error {
	if name == "" {
		return fmt.Errorf("transition %d: %w", index, err)
	}

	return fmt.Errorf("transition %d (%s): %w", index, name, err)
}
