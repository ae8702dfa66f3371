package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/stream"
)

// DefaultSweepKiB are the per-array working-set sizes, in KiB, swept by
// default. They step through typical L1, L2 and L3 capacities.
var DefaultSweepKiB = []int{8, 16, 32, 40, 48, 64, 80, 112, 128, 256, 512, 1024, 2048, 3072, 8192}

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Flags BenchFlags
	Sizes []int

	RunIDs RunIDGenerator
	Clock  stream.Clock
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the benchmark over a range of working-set sizes",
		Long: `Run the harness once per working-set size and report the best rate of
each kernel. Sizes are given per array in KiB; the element count is
KiB*1024 divided by the element size.

Example:
  stream sweep
  stream sweep --sizes 32,256,8192 --precision float32`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, cmd)
		},
	}

	opts.Flags.register(cmd.Flags(), false)
	cmd.Flags().IntSliceVar(&opts.Sizes, "sizes", DefaultSweepKiB, "per-array working-set sizes in KiB")

	return cmd
}

// sweepLength converts a per-array size in KiB to an element count.
func sweepLength(kib int, p stream.Precision) int {
	return kib * 1024 / p.Size()
}

func runSweep(opts *SweepOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	base, counters, err := opts.Flags.resolve(cmd.Flags(), opts.ConfigFile)
	if err != nil {
		return fail(out, "invalid configuration", err)
	}
	if len(opts.Sizes) == 0 {
		return fail(out, "invalid configuration", stream.NewConfigurationError("sweep", "no sizes given"))
	}

	gen := opts.RunIDs
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	report := &SweepReport{RunID: gen.Generate(), Version: versionString()}

	stop := handleSignals(logger)
	defer stop()

	failed := 0
	for _, kib := range opts.Sizes {
		cfg := base
		cfg.ArrayLength = sweepLength(kib, cfg.Precision)
		if err := cfg.Validate(); err != nil {
			return fail(out, fmt.Sprintf("invalid configuration for %d KiB", kib), err)
		}

		logger.Debug("sweep step", "kib", kib, "elements", cfg.ArrayLength)
		res, err := stream.Run(cfg, benchOptions(counters, opts.Clock, logger)...)
		if err != nil {
			return fail(out, fmt.Sprintf("benchmark failed at %d KiB", kib), err)
		}
		if !res.Validation.Passed {
			failed++
			logger.Warn("validation failed", "kib", kib, "error", res.Err())
		}
		report.Rows = append(report.Rows, SweepRow{KiB: kib, Elements: cfg.ArrayLength, Result: res})
	}

	if out.Format == "json" {
		status := "ok"
		if failed > 0 {
			status = "failed"
		}
		err = out.JSON(status, report.RunID, report)
	} else {
		err = WriteSweepText(out.Writer, report)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d of %d sizes", failed, len(opts.Sizes)))
	}
	return nil
}
