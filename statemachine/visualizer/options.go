package visualizer

// Direction values accepted by Options.Direction.
const (
	DirectionTopDown   = "TD"
	DirectionLeftRight = "LR"
)

// Options configures the visualization output.
type Options struct {
	// Direction controls diagram flow: "TD" (top-down) or "LR" (left-right)
	Direction string

	// ShowLabels labels each edge with its transition name
	ShowLabels bool

	// Highlight marks one state, typically the machine's current state
	Highlight string

	// Fenced wraps Mermaid output in a markdown code fence
	Fenced bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		Direction:  DirectionTopDown,
		ShowLabels: true,
	}
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithShowLabels enables/disables transition labels.
func (o Options) WithShowLabels(show bool) Options {
	o.ShowLabels = show

	return o
}

// WithHighlight sets the state to highlight.
func (o Options) WithHighlight(state string) Options {
	o.Highlight = state

	return o
}

// WithFenced enables/disables the markdown fence around Mermaid output.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
