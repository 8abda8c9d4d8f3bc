// Package statemachine implements a finite state machine over a fixed table of
// named transitions.
//
// A Machine holds one current state and a table of Transition values, each with
// a name, a source state and a destination state. Fire looks a transition up by
// name, checks that the machine is in its source state, commits the destination
// state and then runs the transition's Hook, if one is registered:
//
//	m, err := statemachine.New("pending", []statemachine.Transition[string]{
//	    {Name: "resolve", From: "pending", To: "fulfilled"},
//	    {Name: "reject", From: "pending", To: "rejected"},
//	}, statemachine.Hooks[string]{
//	    "resolve": func(ctx context.Context, state string, payload ...any) error {
//	        return notify(ctx, payload...)
//	    },
//	})
//
//	state, err := m.Fire(ctx, "resolve")
//
// Hooks run after the new state is committed. A failing hook is reported as a
// *HookError but does not undo the transition.
//
// Tables can also be loaded from YAML with LoadConfig and turned into a machine
// with Config.Build, or assembled with a Builder.
package statemachine
