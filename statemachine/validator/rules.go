package validator

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/statemachine"
)

// Issue codes.
const (
	CodeLoadFailed         = "CONFIG_LOAD_FAILED"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeUnreachableState   = "UNREACHABLE_STATE"
	CodeParallelTransition = "PARALLEL_TRANSITION"
	CodeNameWhitespace     = "NAME_WHITESPACE"
	CodeSelfLoop           = "SELF_LOOP"
	CodeTerminalState      = "TERMINAL_STATE"
)

// Severity defines the severity level of a validation issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// Rule defines a validation rule that can check a config for specific issues.
type Rule interface {
	Name() string
	Severity() Severity
	Check(config *statemachine.Config) []Issue
}

// DefaultRules returns the standard set of validation rules.
func DefaultRules() []Rule {
	return []Rule{
		&invalidConfigRule{},
		&unreachableStateRule{},
		&parallelTransitionRule{},
		&nameWhitespaceRule{},
		&selfLoopRule{},
		&terminalStateRule{},
	}
}

func loadFile(path string) (*statemachine.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return statemachine.ParseConfig(data)
}

// invalidConfigRule reports everything statemachine.New would reject.
type invalidConfigRule struct{}

func (r *invalidConfigRule) Name() string {
	return "InvalidConfig"
}

func (r *invalidConfigRule) Severity() Severity {
	return SeverityError
}

func (r *invalidConfigRule) Check(config *statemachine.Config) []Issue {
	err := config.Validate()
	if err == nil {
		return nil
	}

	var cfgErr *statemachine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		return []Issue{{Code: CodeInvalidConfig, Message: err.Error(), Location: Location{Index: -1}}}
	}

	issues := make([]Issue, 0, len(cfgErr.Problems))
	for _, problem := range cfgErr.Problems {
		issues = append(issues, Issue{
			Code:     CodeInvalidConfig,
			Message:  problem.Error(),
			Location: Location{Index: -1},
		})
	}

	return issues
}

// unreachableStateRule checks for states that cannot be reached from the initial state.
type unreachableStateRule struct{}

func (r *unreachableStateRule) Name() string {
	return "UnreachableState"
}

func (r *unreachableStateRule) Severity() Severity {
	return SeverityWarning
}

func (r *unreachableStateRule) Check(config *statemachine.Config) []Issue {
	if config.Initial == "" {
		return nil
	}

	// Find all reachable states using BFS
	reachable := map[string]bool{config.Initial: true}

	queue := []string{config.Initial}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, transition := range config.Transitions {
			if transition.From == current && !reachable[transition.To] {
				reachable[transition.To] = true
				queue = append(queue, transition.To)
			}
		}
	}

	var unreachable []string

	for _, state := range states(config) {
		if !reachable[state] {
			unreachable = append(unreachable, state)
		}
	}

	natsort.Sort(unreachable)

	issues := make([]Issue, 0, len(unreachable))
	for _, state := range unreachable {
		issues = append(issues, Issue{
			Code:     CodeUnreachableState,
			Message:  fmt.Sprintf("State '%s' cannot be reached from initial state '%s'", state, config.Initial),
			Location: Location{State: state, Index: -1},
			Fix:      RemoveTransitionsFrom(state),
		})
	}

	return issues
}

// parallelTransitionRule finds two names for the same edge.
type parallelTransitionRule struct{}

func (r *parallelTransitionRule) Name() string {
	return "ParallelTransition"
}

func (r *parallelTransitionRule) Severity() Severity {
	return SeverityWarning
}

func (r *parallelTransitionRule) Check(config *statemachine.Config) []Issue {
	var issues []Issue

	first := make(map[[2]string]string)

	for i, transition := range config.Transitions {
		if transition.Name == "" || transition.From == "" || transition.To == "" {
			continue
		}

		key := [2]string{transition.From, transition.To}

		original, ok := first[key]
		if !ok {
			first[key] = transition.Name

			continue
		}

		if original == transition.Name {
			// Same name twice is a hard error reported by INVALID_CONFIG.
			continue
		}

		issues = append(issues, Issue{
			Code: CodeParallelTransition,
			Message: fmt.Sprintf("Transition '%s' duplicates '%s' (both go from '%s' to '%s')",
				transition.Name, original, transition.From, transition.To),
			Location: Location{Transition: transition.Name, Index: i, State: transition.From},
			Fix:      RemoveTransition(transition.Name),
		})
	}

	return issues
}

// nameWhitespaceRule flags names that are awkward to type on a command line.
type nameWhitespaceRule struct{}

func (r *nameWhitespaceRule) Name() string {
	return "NameWhitespace"
}

func (r *nameWhitespaceRule) Severity() Severity {
	return SeverityWarning
}

func (r *nameWhitespaceRule) Check(config *statemachine.Config) []Issue {
	var issues []Issue

	for i, transition := range config.Transitions {
		if hasWhitespace(transition.Name) {
			issues = append(issues, Issue{
				Code: CodeNameWhitespace,
				Message: fmt.Sprintf("Transition '%s' contains whitespace (suggested: '%s')",
					transition.Name, toIdentifier(transition.Name)),
				Location: Location{Transition: transition.Name, Index: i},
				Fix:      renameFix(transition.Name, RenameTransition),
			})
		}
	}

	for _, state := range states(config) {
		if hasWhitespace(state) {
			issues = append(issues, Issue{
				Code: CodeNameWhitespace,
				Message: fmt.Sprintf("State '%s' contains whitespace (suggested: '%s')",
					state, toIdentifier(state)),
				Location: Location{State: state, Index: -1},
				Fix:      renameFix(state, RenameState),
			})
		}
	}

	return issues
}

// selfLoopRule notes transitions that leave the state unchanged.
type selfLoopRule struct{}

func (r *selfLoopRule) Name() string {
	return "SelfLoop"
}

func (r *selfLoopRule) Severity() Severity {
	return SeverityInfo
}

func (r *selfLoopRule) Check(config *statemachine.Config) []Issue {
	var issues []Issue

	for i, transition := range config.Transitions {
		if transition.From != "" && transition.From == transition.To {
			issues = append(issues, Issue{
				Code:     CodeSelfLoop,
				Message:  fmt.Sprintf("Transition '%s' loops on state '%s'", transition.Name, transition.From),
				Location: Location{Transition: transition.Name, Index: i, State: transition.From},
			})
		}
	}

	return issues
}

// terminalStateRule notes states with no way out.
type terminalStateRule struct{}

func (r *terminalStateRule) Name() string {
	return "TerminalState"
}

func (r *terminalStateRule) Severity() Severity {
	return SeverityInfo
}

func (r *terminalStateRule) Check(config *statemachine.Config) []Issue {
	hasOutgoing := make(map[string]bool)
	for _, transition := range config.Transitions {
		hasOutgoing[transition.From] = true
	}

	var terminal []string

	for _, state := range states(config) {
		if !hasOutgoing[state] {
			terminal = append(terminal, state)
		}
	}

	natsort.Sort(terminal)

	issues := make([]Issue, 0, len(terminal))
	for _, state := range terminal {
		issues = append(issues, Issue{
			Code:     CodeTerminalState,
			Message:  fmt.Sprintf("State '%s' has no outgoing transitions", state),
			Location: Location{State: state, Index: -1},
		})
	}

	return issues
}

// Helper functions

// states lists the non-empty states of config, initial first, in table order.
func states(config *statemachine.Config) []string {
	seen := make(map[string]bool)

	var out []string

	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(config.Initial)

	for _, transition := range config.Transitions {
		add(transition.From)
		add(transition.To)
	}

	return out
}

func hasWhitespace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

func toIdentifier(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// renameFix suggests a whitespace-free rename, or nil when the name is all whitespace.
func renameFix(name string, rename func(oldName, newName string) *Fix) *Fix {
	ident := toIdentifier(name)
	if ident == "" {
		return nil
	}

	return rename(name, ident)
}
