package statemachine

// Builder provides a fluent API for constructing state machines.
type Builder[S ~string] struct {
	name        string
	initial     S
	transitions []Transition[S]
	hooks       Hooks[S]
	opts        []Option
}

// NewBuilder creates a new state machine builder.
func NewBuilder[S ~string](name string) *Builder[S] {
	return &Builder[S]{
		name:  name,
		hooks: make(Hooks[S]),
	}
}

// WithInitialState sets the initial state.
func (b *Builder[S]) WithInitialState(state S) *Builder[S] {
	b.initial = state

	return b
}

// AddTransition appends a transition to the table.
func (b *Builder[S]) AddTransition(name string, from, to S) *Builder[S] {
	b.transitions = append(b.transitions, Transition[S]{Name: name, From: from, To: to})

	return b
}

// OnTransition registers the hook for a transition, replacing any earlier one.
func (b *Builder[S]) OnTransition(name string, hook Hook[S]) *Builder[S] {
	b.hooks[name] = hook

	return b
}

// WithOptions adds construction options.
func (b *Builder[S]) WithOptions(opts ...Option) *Builder[S] {
	b.opts = append(b.opts, opts...)

	return b
}

// Build validates the table and constructs the machine.
func (b *Builder[S]) Build() (*Machine[S], error) {
	opts := append([]Option{WithName(b.name)}, b.opts...)

	return New(b.initial, b.transitions, b.hooks, opts...)
}
