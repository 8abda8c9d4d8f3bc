package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amp-labs/amp-fsm/cli"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/statemachine/visualizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../statemachine/testdata/"

// run executes fsmctl with args and returns stdout.
// Commands reconfigure the global logger, so tests in this package do not run in parallel.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	err := execute(t.Context(), append([]string{"--env-file", ""}, args...), strings.NewReader(""), &out, &errOut)

	return out.String(), err
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestValidateCommand(t *testing.T) { //nolint:paralleltest // Reconfigures global logging
	out, err := run(t, "validate", testdata+"promise.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration is valid")
	assert.Contains(t, out, "[TERMINAL_STATE]")

	out, err = run(t, "validate", testdata+"duplicate.yaml")
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "[INVALID_CONFIG]")

	out, err = run(t, "validate", testdata+"lint.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "⚠ 3 warning(s):")

	_, err = run(t, "validate", "--strict", testdata+"lint.yaml")
	require.ErrorIs(t, err, errValidationFailed)

	_, err = run(t, "validate", testdata+"missing.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateFix(t *testing.T) { //nolint:paralleltest // Reconfigures global logging
	out, err := run(t, "validate", "--fix", testdata+"lint.yaml")
	require.NoError(t, err)

	_, fixed, found := strings.Cut(out, "# 2 fix(es) applied\n")
	require.True(t, found, out)

	config, err := statemachine.LoadConfigFromBytes([]byte(fixed))
	require.NoError(t, err)
	assert.Len(t, config.Transitions, 3)

	out, err = run(t, "validate", "--fix", testdata+"traffic_light.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "No fixes available")
}

func TestGraphCommand(t *testing.T) { //nolint:paralleltest // Reconfigures global logging
	out, err := run(t, "graph", testdata+"promise.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"), out)
	assert.Contains(t, out, "pending --> fulfilled: resolve")

	out, err = run(t, "graph", "--format", "dot", "--direction", "LR", "--no-labels", testdata+"promise.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "rankdir=LR;")
	assert.NotContains(t, out, "label=")

	out, err = run(t, "graph", "--fenced", "--highlight", "red", testdata+"traffic_light.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "```mermaid\n"), out)
	assert.Contains(t, out, "class red highlighted")

	_, err = run(t, "graph", "--format", "svg", testdata+"promise.yaml")
	require.ErrorIs(t, err, visualizer.ErrUnknownFormat)
}

func TestFireCommand(t *testing.T) { //nolint:paralleltest // Reconfigures global logging
	out, err := run(t, "fire", testdata+"traffic_light.yaml", "slow", "stop", "go")
	require.NoError(t, err)
	assert.Equal(t, "slow: green -> yellow\nstop: yellow -> red\ngo: red -> green\nstate: green\n", out)

	out, err = run(t, "fire", testdata+"promise.yaml", "resolve", "reject")
	require.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	assert.Equal(t, "resolve: pending -> fulfilled\n", out)

	_, err = run(t, "fire", testdata+"promise.yaml", "settle")
	require.ErrorIs(t, err, statemachine.ErrUnknownTransition)

	_, err = run(t, "fire", testdata+"promise.yaml")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) { //nolint:paralleltest // Reconfigures global logging
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fsmctl "), out)
}

func TestLogLevel(t *testing.T) { //nolint:paralleltest // Uses t.Setenv
	t.Setenv("FSM_LOG_LEVEL", "loud")

	_, err := run(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = run(t, "--log-level", "debug", "version")
	require.NoError(t, err)
}

func TestLoadConfigEnvFile(t *testing.T) { //nolint:paralleltest // Uses t.Setenv
	unsetenv(t, "FSM_LOG_JSON")
	unsetenv(t, "FSM_METRICS_ADDR")
	t.Setenv("FSM_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path,
		[]byte("FSM_LOG_JSON=true\nFSM_LOG_LEVEL=debug\nFSM_METRICS_ADDR=127.0.0.1:9464\n"), 0o600))

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.True(t, config.LogJSON)
	assert.Equal(t, "warn", config.LogLevel, "set variables win over the env file")
	assert.Equal(t, "127.0.0.1:9464", config.MetricsAddr)

	_, err = loadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestMetricsServer(t *testing.T) { //nolint:paralleltest // Reads the global registry
	ctx := t.Context()

	server, err := startMetricsServer(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, server.shutdown(context.Background()))
	})

	m := statemachine.MustNew("green", []statemachine.Transition[string]{
		{Name: "slow", From: "green", To: "yellow"},
	}, nil, statemachine.WithName("fsmctl-metrics-test"))

	_, err = m.Fire(ctx, "slow")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+server.addr.String()+"/metrics", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `statemachine_transitions_total{from_state="green",machine="fsmctl-metrics-test",to_state="yellow",transition="slow"} 1`)

	_, err = startMetricsServer(ctx, server.addr.String())
	require.Error(t, err)
}

func TestMetricsAddrFlag(t *testing.T) { //nolint:paralleltest // Reconfigures global logging
	_, err := run(t, "--metrics-addr", "127.0.0.1:0", "fire", testdata+"bookmark.yaml", "doStore")
	require.NoError(t, err)

	_, err = run(t, "--metrics-addr", "not an address", "version")
	require.Error(t, err)
}

// script plays back fixed choices, then quits. Quit confirmations are
// answered from confirms, yes once those run out.
type script struct {
	choices  []string
	confirms []bool
	asked    []string
}

func scripted(choices ...string) *script {
	return &script{choices: choices}
}

func (s *script) Choose(_ string, _ []string) (string, error) {
	if len(s.choices) == 0 {
		return cli.Quit, nil
	}

	next := s.choices[0]
	s.choices = s.choices[1:]

	return next, nil
}

func (s *script) ConfirmQuit(state string) (bool, error) {
	s.asked = append(s.asked, state)

	if len(s.confirms) == 0 {
		return true, nil
	}

	next := s.confirms[0]
	s.confirms = s.confirms[1:]

	return next, nil
}

func TestPlay(t *testing.T) { //nolint:paralleltest // Shares the banner suppression flag
	cli.SuppressBanners(true)
	t.Cleanup(func() { cli.SuppressBanners(false) })

	t.Run("terminal", func(t *testing.T) {
		m, err := loadMachine(testdata + "promise.yaml")
		require.NoError(t, err)

		var out bytes.Buffer

		require.NoError(t, play(t.Context(), &out, m, scripted("reject")))
		assert.Contains(t, out.String(), "promise\nstate: pending\n")
		assert.Contains(t, out.String(), "reject: pending -> rejected\n")
		assert.Contains(t, out.String(), "Reached terminal state rejected\n")
	})

	t.Run("quit", func(t *testing.T) {
		m, err := loadMachine(testdata + "traffic_light.yaml")
		require.NoError(t, err)

		var out bytes.Buffer

		p := scripted("slow", "stop")

		require.NoError(t, play(t.Context(), &out, m, p))
		assert.Contains(t, out.String(), "Stopped in state red\n")
		assert.Equal(t, []string{"red"}, p.asked)
	})

	t.Run("quit declined", func(t *testing.T) {
		m, err := loadMachine(testdata + "traffic_light.yaml")
		require.NoError(t, err)

		var out bytes.Buffer

		p := scripted("slow", cli.Quit, "stop")
		p.confirms = []bool{false}

		require.NoError(t, play(t.Context(), &out, m, p))
		assert.Equal(t, []string{"yellow", "red"}, p.asked)
		assert.Contains(t, out.String(), "stop: yellow -> red\n")
		assert.Contains(t, out.String(), "Stopped in state red\n")
		assert.NotContains(t, out.String(), "Stopped in state yellow")
	})

	t.Run("canceled", func(t *testing.T) {
		m, err := loadMachine(testdata + "traffic_light.yaml")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		require.ErrorIs(t, play(ctx, io.Discard, m, scripted()), context.Canceled)
	})
}
