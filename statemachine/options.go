package statemachine

// defaultMachineName labels metrics and spans of machines created without WithName.
const defaultMachineName = "unnamed"

// Option configures a machine during construction.
type Option func(*options)

type options struct {
	name         string
	logger       Logger
	historyLimit int
}

func newOptions(opts []Option) *options {
	o := &options{name: defaultMachineName}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return o
}

// WithName sets the machine name used in logs, metrics and spans.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger attaches a Logger that observes fired and rejected transitions.
// Without one the machine does not log.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHistory keeps the last limit transitions, retrievable with History.
// A limit of zero or less disables history.
func WithHistory(limit int) Option {
	return func(o *options) {
		o.historyLimit = max(limit, 0)
	}
}
