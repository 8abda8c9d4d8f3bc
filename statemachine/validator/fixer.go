package validator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/amp-labs/amp-fsm/statemachine"
)

var (
	// ErrTransitionNotFound is returned when a fix targets a transition that doesn't exist.
	ErrTransitionNotFound = errors.New("transition not found")
	// ErrTransitionExists is returned when renaming to a transition name that is taken.
	ErrTransitionExists = errors.New("transition already exists")
	// ErrStateNotFound is returned when a fix targets a state that doesn't exist.
	ErrStateNotFound = errors.New("state not found")
	// ErrStateAlreadyExists is returned when renaming to an existing state name.
	ErrStateAlreadyExists = errors.New("state already exists")
	// ErrEmptyName is returned when a rename targets the empty name.
	ErrEmptyName = errors.New("new name is empty")
)

// Fix represents an automatic fix for a validation issue.
type Fix struct {
	Description string
	Apply       func(config *statemachine.Config) error
}

// RemoveTransition creates a fix that deletes the named transition.
func RemoveTransition(name string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Remove transition '%s'", name),
		Apply: func(config *statemachine.Config) error {
			for i, t := range config.Transitions {
				if t.Name == name {
					config.Transitions = append(config.Transitions[:i:i], config.Transitions[i+1:]...)

					return nil
				}
			}

			return fmt.Errorf("%w: '%s'", ErrTransitionNotFound, name)
		},
	}
}

// RemoveTransitionsFrom creates a fix that deletes every transition leaving state.
func RemoveTransitionsFrom(state string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Remove transitions leaving '%s'", state),
		Apply: func(config *statemachine.Config) error {
			kept := make([]statemachine.TransitionConfig, 0, len(config.Transitions))

			for _, t := range config.Transitions {
				if t.From != state {
					kept = append(kept, t)
				}
			}

			if len(kept) == len(config.Transitions) {
				return fmt.Errorf("%w: '%s'", ErrStateNotFound, state)
			}

			config.Transitions = kept

			return nil
		},
	}
}

// RenameTransition creates a fix that renames a transition.
func RenameTransition(oldName, newName string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Rename transition from '%s' to '%s'", oldName, newName),
		Apply: func(config *statemachine.Config) error {
			if newName == "" {
				return fmt.Errorf("%w: transition '%s'", ErrEmptyName, oldName)
			}

			idx := -1

			for i, t := range config.Transitions {
				switch t.Name {
				case newName:
					return fmt.Errorf("%w: '%s'", ErrTransitionExists, newName)
				case oldName:
					idx = i
				}
			}

			if idx < 0 {
				return fmt.Errorf("%w: '%s'", ErrTransitionNotFound, oldName)
			}

			config.Transitions[idx].Name = newName

			return nil
		},
	}
}

// RenameState creates a fix that renames a state everywhere it appears.
func RenameState(oldName, newName string) *Fix {
	return &Fix{
		Description: fmt.Sprintf("Rename state from '%s' to '%s'", oldName, newName),
		Apply: func(config *statemachine.Config) error {
			if newName == "" {
				return fmt.Errorf("%w: state '%s'", ErrEmptyName, oldName)
			}

			known := states(config)

			if slices.Contains(known, newName) {
				return fmt.Errorf("%w: '%s'", ErrStateAlreadyExists, newName)
			}

			if !slices.Contains(known, oldName) {
				return fmt.Errorf("%w: '%s'", ErrStateNotFound, oldName)
			}

			if config.Initial == oldName {
				config.Initial = newName
			}

			for i, t := range config.Transitions {
				if t.From == oldName {
					config.Transitions[i].From = newName
				}

				if t.To == oldName {
					config.Transitions[i].To = newName
				}
			}

			return nil
		},
	}
}

// ApplyFixes applies a list of fixes to a config and returns how many took
// effect. A fix whose target an earlier fix already removed is skipped.
func ApplyFixes(config *statemachine.Config, fixes []*Fix) (int, error) {
	applied := 0

	for _, fix := range fixes {
		if fix == nil || fix.Apply == nil {
			continue
		}

		err := fix.Apply(config)

		switch {
		case err == nil:
			applied++
		case errors.Is(err, ErrTransitionNotFound), errors.Is(err, ErrStateNotFound):
			continue
		default:
			return applied, fmt.Errorf("failed to apply fix '%s': %w", fix.Description, err)
		}
	}

	return applied, nil
}
