package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/LynnColeArt/stream"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Flags BenchFlags

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs RunIDGenerator

	// Clock allows overriding the kernel clock (for testing).
	Clock stream.Clock
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the four kernels and report bandwidth",
		Long: `Run the Copy, Scale, Add and Triad kernels the configured number of
times, report the best rate of each (excluding the first repetition) and
validate the arrays against the reference model.

Exit status is 0 when the solution validates, 1 when validation fails and
2 for configuration or allocation errors.

Example:
  stream run
  stream run --length 50000000 --reps 20 --precision float32
  stream run --config bench.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, cmd)
		},
	}

	opts.Flags.register(cmd.Flags(), true)

	return cmd
}

func runBench(opts *RunOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, counters, err := opts.Flags.resolve(cmd.Flags(), opts.ConfigFile)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return fail(out, "invalid configuration", err)
	}

	host, advice, err := preflight(cmdContext(cmd), cfg, logger)
	if err != nil {
		return fail(out, "insufficient memory", err)
	}

	benchOpts := benchOptions(counters, opts.Clock, logger)

	stop := handleSignals(logger)
	defer stop()

	logger.Debug("starting run", "length", cfg.ArrayLength, "reps", cfg.Repetitions, "precision", cfg.Precision)
	res, err := stream.Run(cfg, benchOpts...)
	if err != nil {
		return fail(out, "benchmark failed", err)
	}

	gen := opts.RunIDs
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	report := &Report{
		RunID:   gen.Generate(),
		Version: versionString(),
		Host:    host,
		Advice:  advice,
		Result:  res,
	}

	if out.Format == "json" {
		status := "ok"
		if !res.Validation.Passed {
			status = "failed"
		}
		err = out.JSON(status, report.RunID, report)
	} else {
		err = WriteText(out.Writer, report)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if verr := res.Err(); verr != nil {
		return WrapExitError(ExitFailure, "validation failed", verr)
	}
	return nil
}

// preflight collects host information, rejects configurations that cannot
// fit in available memory and returns the cache sizing advisory.
func preflight(ctx context.Context, cfg stream.Config, logger *slog.Logger) (*stream.HostInfo, string, error) {
	host, err := stream.CollectHostInfo(ctx)
	if err != nil {
		logger.Warn("host information incomplete", "error", err)
	}
	if err := host.CheckMemory(cfg); err != nil {
		return host, "", err
	}
	advice := host.SizingAdvice(cfg)
	if advice != "" {
		logger.Warn(advice)
	}
	return host, advice, nil
}

// benchOptions wires the logger, clock and, when requested, the per-worker
// hardware counters into the harness.
func benchOptions(counters bool, clock stream.Clock, logger *slog.Logger) []stream.Option {
	opts := []stream.Option{stream.WithLogger(logger)}
	if clock != nil {
		opts = append(opts, stream.WithClock(clock))
	}
	if counters {
		opts = append(opts, stream.WithCounters(stream.PerfCounters))
	}
	return opts
}

// fail reports err in JSON mode and maps it to an exit code. In text mode
// the error is printed by main.
func fail(out *OutputFormatter, message string, err error) error {
	if out.Format == "json" {
		_ = out.Error(err)
	}
	return WrapExitError(exitCodeFor(err), message, err)
}

// handleSignals exits with ExitInterrupted through atexit on SIGINT/SIGTERM.
// The returned func stops listening.
func handleSignals(logger *slog.Logger) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn("received signal, exiting", "signal", sig)
			atexit.Exit(ExitInterrupted)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// cmdContext returns the command's context, or Background outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
