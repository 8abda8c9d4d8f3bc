package statemachine

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the serializable form of a transition table.
type Config struct {
	Name        string             `json:"name"        yaml:"name"`
	Initial     string             `json:"initial"     yaml:"initial"`
	Transitions []TransitionConfig `json:"transitions" yaml:"transitions"`
}

// TransitionConfig defines one named transition.
type TransitionConfig struct {
	Name string `json:"name" yaml:"name"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to"   yaml:"to"`
}

// LoadConfig reads and validates a machine definition from a YAML (or JSON) file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates a machine definition.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	config, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigFromFS loads a configuration from a filesystem such as embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// ParseConfig parses a machine definition without validating it. Tools that
// report on broken definitions use this; everything else should use a Load function.
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration with the same rules New applies, and
// additionally requires a name. It returns a *ConfigurationError.
func (c *Config) Validate() error {
	var problems []error

	if c.Name == "" {
		problems = append(problems, ErrConfigNameRequired)
	}

	problems = append(problems, validateTable(c.Initial, c.table(), nil)...)

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}

	return nil
}

// Build creates a machine from the configuration. The config name is used
// as the machine name unless opts override it.
func (c *Config) Build(hooks Hooks[string], opts ...Option) (*Machine[string], error) {
	if c.Name == "" {
		return nil, &ConfigurationError{Problems: []error{ErrConfigNameRequired}}
	}

	return New(c.Initial, c.table(), hooks, append([]Option{WithName(c.Name)}, opts...)...)
}

func (c *Config) table() []Transition[string] {
	table := make([]Transition[string], len(c.Transitions))
	for i, t := range c.Transitions {
		table[i] = Transition[string]{Name: t.Name, From: t.From, To: t.To}
	}

	return table
}

// ConfigOf describes a machine as a Config. The result reflects the table,
// not the current state.
func ConfigOf[S ~string](m *Machine[S]) *Config {
	config := &Config{
		Name:        m.Name(),
		Initial:     string(m.Initial()),
		Transitions: make([]TransitionConfig, 0, len(m.transitions)),
	}

	for _, t := range m.transitions {
		config.Transitions = append(config.Transitions, TransitionConfig{
			Name: t.Name,
			From: string(t.From),
			To:   string(t.To),
		})
	}

	return config
}
