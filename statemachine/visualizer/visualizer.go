// Package visualizer renders state machine configurations as Mermaid or
// Graphviz DOT diagrams.
//
//nolint:varnamelen // short names idiomatic
package visualizer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/statemachine"
)

// Visualizer errors.
var (
	ErrConfigNil      = errors.New("config cannot be nil")
	ErrNoInitialState = errors.New("config must have an initial state")
	ErrUnknownFormat  = errors.New("unknown diagram format")
	ErrBadDirection   = errors.New("direction must be TD or LR")
)

// Format selects the diagram language.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatDot     Format = "dot"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatMermaid, FormatDot:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Render draws config in the given format.
func Render(config *statemachine.Config, format Format, opts Options) (string, error) {
	switch format {
	case FormatMermaid:
		return Mermaid(config, opts)
	case FormatDot:
		return Dot(config, opts)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// RenderFile loads and validates a machine definition, then draws it.
func RenderFile(path string, format Format, opts Options) (string, error) {
	config, err := statemachine.LoadConfig(path)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return Render(config, format, opts)
}

// GenerateMermaidFromFile loads a config from a file and generates a Mermaid
// diagram with the default options.
func GenerateMermaidFromFile(path string) (string, error) {
	return RenderFile(path, FormatMermaid, DefaultOptions())
}

// Mermaid converts a Config to a Mermaid state diagram. Edges follow table
// order; terminal states are listed in natural order.
func Mermaid(config *statemachine.Config, opts Options) (string, error) {
	g, err := newGraph(config, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    direction %s\n", g.direction)

	for _, state := range g.states {
		if id := g.ids[state]; id != state {
			fmt.Fprintf(&sb, "    state %q as %s\n", state, id)
		}
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", g.ids[config.Initial])

	for _, t := range config.Transitions {
		label := ""
		if opts.ShowLabels {
			label = ": " + t.Name
		}

		fmt.Fprintf(&sb, "    %s --> %s%s\n", g.ids[t.From], g.ids[t.To], label)
	}

	for _, state := range g.terminal {
		fmt.Fprintf(&sb, "    %s --> [*]\n", g.ids[state])
	}

	if g.highlight != "" {
		sb.WriteString("\n")
		sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
		fmt.Fprintf(&sb, "    class %s highlighted\n", g.ids[g.highlight])
	}

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}

// Dot converts a Config to a Graphviz digraph.
func Dot(config *statemachine.Config, opts Options) (string, error) {
	g, err := newGraph(config, opts)
	if err != nil {
		return "", err
	}

	rankdir := "TB"
	if g.direction == DirectionLeftRight {
		rankdir = "LR"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %q {\n", config.Name)
	fmt.Fprintf(&sb, "    rankdir=%s;\n", rankdir)
	sb.WriteString("    node [shape=ellipse];\n")
	fmt.Fprintf(&sb, "    %s [shape=point];\n", g.start)

	for _, state := range g.terminal {
		fmt.Fprintf(&sb, "    %q [shape=doublecircle];\n", state)
	}

	if g.highlight != "" {
		fmt.Fprintf(&sb, "    %q [style=filled, fillcolor=\"#fff9c4\"];\n", g.highlight)
	}

	fmt.Fprintf(&sb, "    %s -> %q;\n", g.start, config.Initial)

	for _, t := range config.Transitions {
		if opts.ShowLabels {
			fmt.Fprintf(&sb, "    %q -> %q [label=%q];\n", t.From, t.To, t.Name)
		} else {
			fmt.Fprintf(&sb, "    %q -> %q;\n", t.From, t.To)
		}
	}

	sb.WriteString("}\n")

	return sb.String(), nil
}

// graph is the layout-independent view both renderers draw from.
type graph struct {
	direction string
	states    []string
	terminal  []string
	highlight string
	ids       map[string]string
	// start names the Dot entry point, never equal to a state name.
	start string
}

func newGraph(config *statemachine.Config, opts Options) (*graph, error) {
	if config == nil {
		return nil, ErrConfigNil
	}

	if config.Initial == "" {
		return nil, ErrNoInitialState
	}

	direction := strings.ToUpper(opts.Direction)
	if direction == "" {
		direction = DirectionTopDown
	}

	if direction != DirectionTopDown && direction != DirectionLeftRight {
		return nil, fmt.Errorf("%w: %q", ErrBadDirection, opts.Direction)
	}

	g := &graph{
		direction: direction,
		states:    []string{config.Initial},
		ids:       map[string]string{},
	}

	outgoing := map[string]bool{}
	seen := map[string]bool{config.Initial: true}

	for _, t := range config.Transitions {
		outgoing[t.From] = true

		for _, s := range []string{t.From, t.To} {
			if !seen[s] {
				seen[s] = true
				g.states = append(g.states, s)
			}
		}
	}

	taken := map[string]bool{}

	for _, state := range g.states {
		if isPlainID(state) {
			g.ids[state] = state
			taken[state] = true
		}
	}

	for i, state := range g.states {
		if _, ok := g.ids[state]; !ok {
			g.ids[state] = freeID(taken, "__s", i)
		}

		if !outgoing[state] {
			g.terminal = append(g.terminal, state)
		}
	}

	g.start = "__start"
	for n := 0; seen[g.start]; n++ {
		g.start = fmt.Sprintf("__start%d", n)
	}

	natsort.Sort(g.terminal)

	if seen[opts.Highlight] {
		g.highlight = opts.Highlight
	}

	return g, nil
}

// freeID returns prefix+n for the first n >= from not yet taken, and marks it taken.
func freeID(taken map[string]bool, prefix string, from int) string {
	id := fmt.Sprintf("%s%d", prefix, from)
	for n := from + 1; taken[id]; n++ {
		id = fmt.Sprintf("%s%d", prefix, n)
	}

	taken[id] = true

	return id
}

// isPlainID reports whether a state name can be used verbatim as a Mermaid identifier.
func isPlainID(name string) bool {
	if name == "" || slices.Contains([]string{"state", "direction", "class", "classDef"}, name) {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}

	return true
}
