package statemachine

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Machine is a finite state machine over a fixed table of named transitions.
//
// The current state is guarded by a mutex, so Fire and the read accessors may
// be called from several goroutines. Hooks run on the goroutine that called
// Fire, after the lock has been released; use a Mailbox when hooks must also
// be serialized.
type Machine[S ~string] struct {
	id          string
	name        string
	initial     S
	transitions []Transition[S]
	index       map[string]int
	hooks       Hooks[S]
	logger      Logger

	mu           sync.RWMutex
	current      S
	history      []Record[S]
	historyLimit int
}

// New creates a machine in state initial. The transition table is validated
// and every problem is reported in a single *ConfigurationError; in that case
// no machine is returned. Nil hooks are ignored.
func New[S ~string](initial S, transitions []Transition[S], hooks Hooks[S], opts ...Option) (*Machine[S], error) {
	problems := validateTable(initial, transitions, hooks)
	if len(problems) > 0 {
		return nil, &ConfigurationError{Problems: problems}
	}

	o := newOptions(opts)

	m := &Machine[S]{
		id:           uuid.NewString(),
		name:         o.name,
		initial:      initial,
		transitions:  slices.Clone(transitions),
		index:        make(map[string]int, len(transitions)),
		hooks:        make(Hooks[S], len(hooks)),
		logger:       o.logger,
		current:      initial,
		historyLimit: o.historyLimit,
	}

	for i, t := range m.transitions {
		m.index[t.Name] = i
	}

	for name, hook := range hooks {
		if hook != nil {
			m.hooks[name] = hook
		}
	}

	return m, nil
}

// MustNew is like New but panics on a configuration error.
func MustNew[S ~string](initial S, transitions []Transition[S], hooks Hooks[S], opts ...Option) *Machine[S] {
	m, err := New(initial, transitions, hooks, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}

	return m
}

// ID returns the unique identifier assigned to this machine instance.
func (m *Machine[S]) ID() string {
	return m.id
}

// Name returns the machine name.
func (m *Machine[S]) Name() string {
	return m.name
}

// Initial returns the state the machine was created in.
func (m *Machine[S]) Initial() S {
	return m.initial
}

// Current returns the current state.
func (m *Machine[S]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current
}

// Is reports whether the machine is currently in state.
func (m *Machine[S]) Is(state S) bool {
	return m.Current() == state
}

// Can reports whether the named transition could fire from the current state.
func (m *Machine[S]) Can(name string) bool {
	idx, ok := m.index[name]
	if !ok {
		return false
	}

	return m.Is(m.transitions[idx].From)
}

// Available lists, in table order, the transitions that can fire from the current state.
func (m *Machine[S]) Available() []string {
	current := m.Current()

	var names []string

	for _, t := range m.transitions {
		if t.From == current {
			names = append(names, t.Name)
		}
	}

	return names
}

// Transitions returns a copy of the transition table.
func (m *Machine[S]) Transitions() []Transition[S] {
	return slices.Clone(m.transitions)
}

// States returns every state the machine knows about: the initial state first,
// then the others in the order the table first mentions them.
func (m *Machine[S]) States() []S {
	seen := map[S]bool{m.initial: true}
	states := []S{m.initial}

	for _, t := range m.transitions {
		for _, s := range []S{t.From, t.To} {
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}

	return states
}

// History returns the retained transition records, oldest first.
func (m *Machine[S]) History() []Record[S] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.history)
}

// Fire runs the named transition and returns the new state.
//
// It fails with *UnknownTransitionError if the name is not in the table and
// with *InvalidTransitionError if the transition does not start at the current
// state; in both cases the state is unchanged. Otherwise the new state is
// committed and the transition's hook, if any, is run before Fire returns. A
// failing hook does not undo the transition: Fire returns the new state
// together with a *HookError.
func (m *Machine[S]) Fire(ctx context.Context, name string, payload ...any) (_ S, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := startFireSpan(ctx, m.name, m.id, name)

	defer func() {
		endFireSpan(span, err)
	}()

	from, to, err := m.commit(name)
	if err != nil {
		m.rejected(ctx, name, from, err)

		var zero S

		return zero, err
	}

	annotateFireSpan(span, string(from), string(to))

	transitionsTotal.WithLabelValues(m.name, name, string(from), string(to)).Inc()

	if m.logger != nil {
		m.logger.TransitionFired(ctx, m.name, name, string(from), string(to))
	}

	if err := m.runHook(ctx, name, to, payload); err != nil {
		return to, err
	}

	return to, nil
}

// commit checks and applies a transition under the write lock. On failure it
// returns the unchanged current state as from.
func (m *Machine[S]) commit(name string) (from, to S, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[name]
	if !ok {
		return m.current, to, &UnknownTransitionError{Name: name}
	}

	t := m.transitions[idx]
	if t.From != m.current {
		return m.current, to, &InvalidTransitionError{
			Name:    name,
			From:    string(t.From),
			Current: string(m.current),
		}
	}

	m.current = t.To
	m.record(t)

	return t.From, t.To, nil
}

// record appends to the bounded history. Callers hold the write lock.
func (m *Machine[S]) record(t Transition[S]) {
	if m.historyLimit == 0 {
		return
	}

	m.history = append(m.history, Record[S]{
		Transition: t.Name,
		From:       t.From,
		To:         t.To,
		At:         time.Now(),
	})

	if over := len(m.history) - m.historyLimit; over > 0 {
		m.history = slices.Delete(m.history, 0, over)
	}
}

// rejected records a failed Fire attempt with the observers.
func (m *Machine[S]) rejected(ctx context.Context, name string, current S, err error) {
	transition, reason := rejectionLabels(name, err)
	transitionRejectionsTotal.WithLabelValues(m.name, transition, reason).Inc()

	if m.logger != nil {
		m.logger.TransitionRejected(ctx, m.name, name, string(current), err)
	}
}

// runHook invokes the hook registered for name, containing panics.
func (m *Machine[S]) runHook(ctx context.Context, name string, state S, payload []any) (err error) {
	hook, ok := m.hooks[name]
	if !ok {
		return nil
	}

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			if e, isErr := r.(error); isErr {
				err = fmt.Errorf("%w: %w", ErrHookPanic, e)
			} else {
				err = fmt.Errorf("%w: %v", ErrHookPanic, r)
			}
		}

		hookDuration.WithLabelValues(m.name, name).Observe(time.Since(start).Seconds())

		if err == nil {
			return
		}

		err = &HookError{Transition: name, State: string(state), Err: err}

		hookFailuresTotal.WithLabelValues(m.name, name).Inc()

		if m.logger != nil {
			m.logger.HookFailed(ctx, m.name, name, string(state), err)
		}
	}()

	return hook(ctx, state, payload...)
}

// validateTable collects every problem with a transition table.
func validateTable[S ~string](initial S, transitions []Transition[S], hooks Hooks[S]) []error {
	var problems []error

	if initial == "" {
		problems = append(problems, ErrInitialStateRequired)
	}

	names := make(map[string]bool, len(transitions))

	for i, t := range transitions {
		if t.Name == "" {
			problems = append(problems, wrapProblem(i, "", ErrTransitionNameRequired))
		}

		if t.From == "" {
			problems = append(problems, wrapProblem(i, t.Name, ErrTransitionFromRequired))
		}

		if t.To == "" {
			problems = append(problems, wrapProblem(i, t.Name, ErrTransitionToRequired))
		}

		if t.Name == "" {
			continue
		}

		if names[t.Name] {
			problems = append(problems, wrapProblem(i, t.Name, ErrDuplicateTransition))
		}

		names[t.Name] = true
	}

	hookNames := make([]string, 0, len(hooks))

	for name, hook := range hooks {
		if hook != nil && !names[name] {
			hookNames = append(hookNames, name)
		}
	}

	// Map iteration order is random; keep the report stable.
	slices.Sort(hookNames)

	for _, name := range hookNames {
		problems = append(problems, fmt.Errorf("%w: %q", ErrHookWithoutTransition, name))
	}

	return problems
}
