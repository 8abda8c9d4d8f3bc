//nolint:varnamelen // Test file
package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Code
	}

	return out
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		config       *statemachine.Config
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
		wantNotes    []string
	}{
		{
			name: "promise",
			config: &statemachine.Config{
				Name:    "promise",
				Initial: "pending",
				Transitions: []statemachine.TransitionConfig{
					{Name: "resolve", From: "pending", To: "fulfilled"},
					{Name: "reject", From: "pending", To: "rejected"},
				},
			},
			wantValid: true,
			wantNotes: []string{CodeTerminalState, CodeTerminalState},
		},
		{
			name: "cycle",
			config: &statemachine.Config{
				Name:    "light",
				Initial: "green",
				Transitions: []statemachine.TransitionConfig{
					{Name: "slow", From: "green", To: "yellow"},
					{Name: "stop", From: "yellow", To: "red"},
					{Name: "go", From: "red", To: "green"},
				},
			},
			wantValid: true,
		},
		{
			name: "hard errors",
			config: &statemachine.Config{
				Initial: "a",
				Transitions: []statemachine.TransitionConfig{
					{Name: "next", From: "a", To: "b"},
					{Name: "next", From: "a", To: "b"},
				},
			},
			wantValid:  false,
			wantErrors: []string{CodeInvalidConfig, CodeInvalidConfig},
			wantNotes:  []string{CodeTerminalState},
		},
		{
			name:       "nil config",
			config:     nil,
			wantValid:  false,
			wantErrors: []string{CodeInvalidConfig, CodeInvalidConfig},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := Validate(tt.config)

			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantValid, !result.HasErrors())
			assert.ElementsMatch(t, tt.wantErrors, codes(result.Errors))
			assert.ElementsMatch(t, tt.wantWarnings, codes(result.Warnings))
			assert.ElementsMatch(t, tt.wantNotes, codes(result.Notes))
		})
	}
}

func TestValidateFileLint(t *testing.T) {
	t.Parallel()

	result, err := ValidateFile("../testdata/lint.yaml", false)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.True(t, result.HasWarnings())
	assert.Equal(t,
		[]string{CodeUnreachableState, CodeParallelTransition, CodeNameWhitespace},
		codes(result.Warnings))
	assert.Equal(t, []string{CodeSelfLoop, CodeTerminalState}, codes(result.Notes))

	assert.Equal(t, "archived", result.Warnings[0].Location.State)
	assert.Equal(t, "fast track", result.Warnings[1].Location.Transition)
	assert.Equal(t, 2, result.Warnings[1].Location.Index)
	assert.Equal(t, "comment", result.Notes[0].Location.Transition)
	assert.Equal(t, "published", result.Notes[1].Location.State)

	for _, issue := range result.Warnings {
		assert.Equal(t, "../testdata/lint.yaml", issue.Location.File)
	}
}

func TestValidateFileStrict(t *testing.T) {
	t.Parallel()

	result, err := ValidateFile("../testdata/lint.yaml", true)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 3)
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Notes, 2)
}

func TestValidateFileInvalid(t *testing.T) {
	t.Parallel()

	result, err := ValidateFile("../testdata/duplicate.yaml", false)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{CodeInvalidConfig, CodeInvalidConfig, CodeInvalidConfig}, codes(result.Errors))
	assert.Contains(t, result.Errors[0].Message, "duplicate transition name")
}

func TestValidateFileMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.yaml")

	result, err := ValidateFile(path, false)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeLoadFailed, result.Errors[0].Code)
	assert.Equal(t, path, result.Errors[0].Location.File)
}

func TestUnreachableNaturalOrder(t *testing.T) {
	t.Parallel()

	config := &statemachine.Config{
		Name:    "orphans",
		Initial: "start",
		Transitions: []statemachine.TransitionConfig{
			{Name: "a", From: "orphan10", To: "start"},
			{Name: "b", From: "orphan2", To: "start"},
			{Name: "c", From: "orphan1", To: "start"},
		},
	}

	result := Validate(config)

	states := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		states = append(states, w.Location.State)
	}

	assert.Equal(t, []string{"orphan1", "orphan2", "orphan10"}, states)
}

func TestResultString(t *testing.T) {
	t.Parallel()

	result, err := ValidateFile("../testdata/lint.yaml", false)
	require.NoError(t, err)

	out := result.String()
	assert.Contains(t, out, "✓ Configuration is valid")
	assert.Contains(t, out, "⚠ 3 warning(s):")
	assert.Contains(t, out, "[PARALLEL_TRANSITION]")
	assert.Contains(t, out, "Fix: Remove transition 'fast track'")
	assert.Contains(t, out, "2 note(s):")

	strict := ValidateStrict(&statemachine.Config{Initial: "a"})
	assert.Contains(t, strict.String(), "✗ Configuration has 1 error(s)")
}

func TestApplyFixes(t *testing.T) {
	t.Parallel()

	config, err := statemachine.ParseConfig(mustRead(t, "../testdata/lint.yaml"))
	require.NoError(t, err)

	result := Validate(config)

	applied, err := ApplyFixes(config, result.Fixes())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	after := Validate(config)
	assert.True(t, after.Valid)
	assert.Empty(t, after.Warnings)

	names := make([]string, 0, len(config.Transitions))
	for _, tr := range config.Transitions {
		names = append(names, tr.Name)
	}

	assert.Equal(t, []string{"submit", "approve", "comment"}, names)
}

func TestFixes(t *testing.T) {
	t.Parallel()

	newConfig := func() *statemachine.Config {
		return &statemachine.Config{
			Name:    "door",
			Initial: "closed door",
			Transitions: []statemachine.TransitionConfig{
				{Name: "open", From: "closed door", To: "opened"},
				{Name: "close", From: "opened", To: "closed door"},
			},
		}
	}

	t.Run("rename state", func(t *testing.T) {
		t.Parallel()

		config := newConfig()
		require.NoError(t, RenameState("closed door", "closed").Apply(config))

		assert.Equal(t, "closed", config.Initial)
		assert.Equal(t, "closed", config.Transitions[0].From)
		assert.Equal(t, "closed", config.Transitions[1].To)

		require.ErrorIs(t, RenameState("opened", "closed").Apply(config), ErrStateAlreadyExists)
		require.ErrorIs(t, RenameState("ajar", "half").Apply(config), ErrStateNotFound)
	})

	t.Run("rename transition", func(t *testing.T) {
		t.Parallel()

		config := newConfig()
		require.ErrorIs(t, RenameTransition("open", "close").Apply(config), ErrTransitionExists)
		require.ErrorIs(t, RenameTransition("slam", "bang").Apply(config), ErrTransitionNotFound)
		require.NoError(t, RenameTransition("open", "unlock").Apply(config))
		assert.Equal(t, "unlock", config.Transitions[0].Name)
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()

		config := newConfig()
		require.NoError(t, RemoveTransition("open").Apply(config))
		require.Len(t, config.Transitions, 1)
		require.ErrorIs(t, RemoveTransition("open").Apply(config), ErrTransitionNotFound)

		require.NoError(t, RemoveTransitionsFrom("opened").Apply(config))
		assert.Empty(t, config.Transitions)
		require.ErrorIs(t, RemoveTransitionsFrom("opened").Apply(config), ErrStateNotFound)
	})

	t.Run("whitespace fix", func(t *testing.T) {
		t.Parallel()

		config := newConfig()

		result := Validate(config)
		require.Equal(t, []string{CodeNameWhitespace}, codes(result.Warnings))

		applied, err := ApplyFixes(config, result.Fixes())
		require.NoError(t, err)
		assert.Equal(t, 1, applied)
		assert.Equal(t, "closed_door", config.Initial)
	})

	t.Run("blank names get no fix", func(t *testing.T) {
		t.Parallel()

		config := &statemachine.Config{
			Name:    "blank",
			Initial: "a",
			Transitions: []statemachine.TransitionConfig{
				{Name: " ", From: "a", To: "b"},
				{Name: "go", From: "b", To: "\t"},
			},
		}

		result := Validate(config)
		require.Equal(t, []string{CodeNameWhitespace, CodeNameWhitespace}, codes(result.Warnings))
		assert.Empty(t, result.Fixes())

		applied, err := ApplyFixes(config, result.Fixes())
		require.NoError(t, err)
		assert.Zero(t, applied)
		require.NoError(t, config.Validate())
	})

	t.Run("rename to empty", func(t *testing.T) {
		t.Parallel()

		config := newConfig()
		require.ErrorIs(t, RenameTransition("open", "").Apply(config), ErrEmptyName)
		require.ErrorIs(t, RenameState("opened", "").Apply(config), ErrEmptyName)
		require.NoError(t, config.Validate())

		_, err := ApplyFixes(config, []*Fix{RenameTransition("open", "")})
		require.ErrorIs(t, err, ErrEmptyName)
	})
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}
