// Package fsmtest provides test helpers for code built on statemachine.
package fsmtest

import (
	"context"
	"sync"
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/require"
)

// LoadMachine loads a YAML machine definition and builds it, failing the test on any error.
func LoadMachine(
	t testing.TB, path string, hooks statemachine.Hooks[string], opts ...statemachine.Option,
) *statemachine.Machine[string] {
	t.Helper()

	config, err := statemachine.LoadConfig(path)
	require.NoError(t, err, "failed to load %s", path)

	machine, err := config.Build(hooks, opts...)
	require.NoError(t, err, "failed to build %s", path)

	return machine
}

// RequireFire fires name and requires it to succeed and land in want.
func RequireFire[S ~string](t testing.TB, m *statemachine.Machine[S], name string, want S, payload ...any) {
	t.Helper()

	got, err := m.Fire(context.Background(), name, payload...)
	require.NoError(t, err, "fire %q from %q", name, m.Current())
	require.Equal(t, want, got, "fire %q returned the wrong state", name)
	require.Equal(t, want, m.Current(), "fire %q did not commit", name)
}

// RequireRejected fires name and requires it to fail with target while leaving the state alone.
func RequireRejected[S ~string](t testing.TB, m *statemachine.Machine[S], name string, target error) {
	t.Helper()

	before := m.Current()

	_, err := m.Fire(context.Background(), name)
	require.ErrorIs(t, err, target, "fire %q from %q", name, before)
	require.Equal(t, before, m.Current(), "rejected fire %q changed the state", name)
}

// RequireCycle fires names in order for the given number of rounds and
// requires the machine to be back in its starting state after every round.
func RequireCycle[S ~string](t testing.TB, m *statemachine.Machine[S], rounds int, names ...string) {
	t.Helper()

	start := m.Current()

	for round := range rounds {
		for _, name := range names {
			_, err := m.Fire(context.Background(), name)
			require.NoError(t, err, "round %d: fire %q", round, name)
		}

		require.Equal(t, start, m.Current(), "round %d did not close the cycle", round)
	}
}

// Call is one recorded hook invocation.
type Call[S ~string] struct {
	State   S
	Payload []any
}

// Recorder is a hook that remembers how it was called.
type Recorder[S ~string] struct {
	mu    sync.Mutex
	calls []Call[S]
	err   error
}

// NewRecorder creates a recorder whose hook succeeds.
func NewRecorder[S ~string]() *Recorder[S] {
	return &Recorder[S]{}
}

// FailWith makes the recorder's hook return err after recording the call.
func (r *Recorder[S]) FailWith(err error) *Recorder[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err

	return r
}

// Hook returns the hook function to register on a machine.
func (r *Recorder[S]) Hook() statemachine.Hook[S] {
	return func(_ context.Context, state S, payload ...any) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.calls = append(r.calls, Call[S]{State: state, Payload: payload})

		return r.err
	}
}

// Calls returns the recorded invocations in order.
func (r *Recorder[S]) Calls() []Call[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Call[S](nil), r.calls...)
}
