package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/amp-labs/amp-fsm/cli"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/telemetry"
	"github.com/spf13/cobra"
)

const (
	serviceName     = "fsmctl"
	shutdownTimeout = 5 * time.Second

	flagEnvFile     = "env-file"
	flagLogJSON     = "log-json"
	flagLogLevel    = "log-level"
	flagMetricsAddr = "metrics-addr"
)

// app carries what the persistent hooks set up for a single invocation.
type app struct {
	envFile   string
	config    *Config
	metrics   *metricsServer
	telemetry bool
}

// execute runs one fsmctl invocation and always releases what setup acquired.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return errors.Join(err, a.close(closeCtx))
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "fsmctl",
		Short:             "Validate, draw and drive state machines defined in YAML",
		Long:              `fsmctl loads a state machine definition (name, initial state and named transitions) and lints it, renders it as a diagram, or fires transitions against it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, flagEnvFile, ".env", "Env file to load before reading FSM_* and OTEL_* variables")
	flags.Bool(flagLogJSON, false, "Log JSON instead of text (FSM_LOG_JSON)")
	flags.String(flagLogLevel, "info", "Minimum log level: debug, info, warn or error (FSM_LOG_LEVEL)")
	flags.String(flagMetricsAddr, "", "Serve Prometheus metrics on this address while running (FSM_METRICS_ADDR)")

	root.AddCommand(
		newValidateCommand(),
		newGraphCommand(),
		newFireCommand(),
		newPlayCommand(),
		newVersionCommand(),
	)

	return root
}

// setup loads configuration and starts logging, telemetry and the metrics server.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(a.envFile)
	if err != nil {
		return err
	}

	if err := config.applyFlags(cmd.Flags()); err != nil {
		return err
	}

	level, err := logger.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}

	a.config = config

	logOpts := logger.Options{
		Subsystem:   serviceName,
		JSON:        config.LogJSON,
		MinLevel:    level,
		LegacyLevel: slog.LevelDebug,
		Output:      cmd.ErrOrStderr(),
	}

	logger.ConfigureLoggingWithOptions(logOpts)
	cli.SuppressBanners(config.NoBanner)

	ctx := cmd.Context()

	telemetryConfig, err := telemetry.LoadConfigFromEnv(serviceName)
	if err != nil {
		return err
	}

	if err := telemetry.Initialize(ctx, telemetryConfig); err != nil {
		return err
	}

	a.telemetry = true

	if handler := telemetry.LogHandler(serviceName); handler != nil {
		logOpts.Handlers = append(logOpts.Handlers, handler)
		logger.ConfigureLoggingWithOptions(logOpts)
	}

	if config.MetricsAddr != "" {
		a.metrics, err = startMetricsServer(ctx, config.MetricsAddr)
		if err != nil {
			return err
		}
	}

	return nil
}

// close stops whatever setup started. It is safe to call when setup never ran.
func (a *app) close(ctx context.Context) error {
	var errs []error

	if a.metrics != nil {
		errs = append(errs, a.metrics.shutdown(ctx))
		a.metrics = nil
	}

	if a.telemetry {
		errs = append(errs, telemetry.Shutdown(ctx))
		a.telemetry = false
	}

	return errors.Join(errs...)
}

// loadMachine builds a machine from a definition file, logging its transitions.
func loadMachine(path string) (*statemachine.Machine[string], error) {
	config, err := statemachine.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return config.Build(nil, statemachine.WithLogger(statemachine.NewDefaultLogger()))
}
