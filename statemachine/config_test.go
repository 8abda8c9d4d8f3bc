package statemachine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("testdata/promise.yaml")
	require.NoError(t, err)

	assert.Equal(t, "promise", config.Name)
	assert.Equal(t, "pending", config.Initial)
	assert.Equal(t, []TransitionConfig{
		{Name: "resolve", From: "pending", To: "fulfilled"},
		{Name: "reject", From: "pending", To: "rejected"},
	}, config.Transitions)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigReportsAllProblems(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig("testdata/duplicate.yaml")
	require.ErrorIs(t, err, ErrConfiguration)
	require.ErrorIs(t, err, ErrDuplicateTransition)
	require.ErrorIs(t, err, ErrTransitionNameRequired)
	require.ErrorIs(t, err, ErrTransitionToRequired)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Problems, 3)
}

func TestLoadConfigFromBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "valid",
			data: "name: door\ninitial: closed\ntransitions:\n  - {name: open, from: closed, to: opened}\n",
		},
		{
			name: "json is yaml",
			data: `{"name": "door", "initial": "closed", "transitions": [{"name": "open", "from": "closed", "to": "opened"}]}`,
		},
		{
			name:    "missing name",
			data:    "initial: closed\ntransitions: []\n",
			wantErr: ErrConfigNameRequired,
		},
		{
			name:    "missing initial",
			data:    "name: door\n",
			wantErr: ErrInitialStateRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config, err := LoadConfigFromBytes([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, config)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "door", config.Name)
		})
	}
}

func TestParseConfigSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte("name: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseConfigDoesNotValidate(t *testing.T) {
	t.Parallel()

	config, err := ParseConfig([]byte("transitions:\n  - name: x\n"))
	require.NoError(t, err)
	require.Len(t, config.Transitions, 1)
	require.ErrorIs(t, config.Validate(), ErrTransitionFromRequired)
}

func TestLoadConfigFromFS(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/bookmark.yaml")
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"machines/bookmark.yaml": &fstest.MapFile{Data: data},
	}

	config, err := LoadConfigFromFS(fsys, "machines/bookmark.yaml")
	require.NoError(t, err)
	assert.Equal(t, "bookmark", config.Name)

	_, err = LoadConfigFromFS(fsys, "machines/other.yaml")
	require.Error(t, err)
}

func TestConfigBuild(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("testdata/bookmark.yaml")
	require.NoError(t, err)

	var labels []string

	label := func(_ context.Context, state string, _ ...any) error {
		labels = append(labels, state)

		return nil
	}

	m, err := config.Build(Hooks[string]{"doStore": label, "deleteStore": label})
	require.NoError(t, err)
	assert.Equal(t, "bookmark", m.Name())

	for _, name := range []string{"doStore", "deleteStore", "doStore"} {
		_, err = m.Fire(t.Context(), name)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"unbookmark", "bookmark", "unbookmark"}, labels)
}

func TestConfigBuildNameOverride(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("testdata/promise.yaml")
	require.NoError(t, err)

	m, err := config.Build(nil, WithName("order-42"))
	require.NoError(t, err)
	assert.Equal(t, "order-42", m.Name())
}

func TestConfigBuildRequiresName(t *testing.T) {
	t.Parallel()

	config := &Config{Initial: "a"}

	_, err := config.Build(nil)
	require.ErrorIs(t, err, ErrConfigNameRequired)
}

func TestConfigOfRoundTrip(t *testing.T) {
	t.Parallel()

	m := MustNew(pending, promiseTable(), nil, WithName("promise"))

	_, err := m.Fire(t.Context(), "reject")
	require.NoError(t, err)

	config := ConfigOf(m)
	assert.Equal(t, "pending", config.Initial)

	data, err := yaml.Marshal(config)
	require.NoError(t, err)

	loaded, err := LoadConfig("testdata/promise.yaml")
	require.NoError(t, err)

	parsed, err := LoadConfigFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, loaded, parsed)
}
