package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/stream"
)

// Comparison statuses.
const (
	StatusPass   = "PASS"
	StatusFail   = "FAIL"
	StatusSlower = "SLOWER"
	StatusFaster = "FASTER"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Regress float64
	Strict  bool
}

// KernelComparison is one kernel's best rate in a baseline and a current run.
type KernelComparison struct {
	Kernel      string  `json:"kernel"`
	Status      string  `json:"status"`
	BaselineMBs float64 `json:"baseline_mb_s"`
	CurrentMBs  float64 `json:"current_mb_s"`
	Speedup     float64 `json:"speedup"`
	Message     string  `json:"message,omitempty"`
}

// Comparison is the output of the compare command.
type Comparison struct {
	BaselineRunID string             `json:"baseline_run_id"`
	CurrentRunID  string             `json:"current_run_id"`
	Warnings      []string           `json:"warnings,omitempty"`
	Kernels       []KernelComparison `json:"kernels"`
}

// Count returns how many kernels have the given status.
func (c *Comparison) Count(status string) int {
	n := 0
	for _, k := range c.Kernels {
		if k.Status == status {
			n++
		}
	}
	return n
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare BASELINE CURRENT",
		Short: "Compare two JSON run reports",
		Long: `Compare the best rate of each kernel in two reports written by
"stream run --format json". A kernel whose rate dropped by more than the
--regress factor is SLOWER, one that rose by more is FASTER. A kernel
missing from the current report, or a current run that failed validation,
is FAIL.

Exit status is 1 when any kernel is FAIL, or SLOWER with --strict.

Example:
  stream run --format json > baseline.json
  stream run --format json > current.json
  stream compare baseline.json current.json --regress 1.05`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().Float64Var(&opts.Regress, "regress", 1.1, "rate ratio treated as a change (1.1 = 10%)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat SLOWER kernels as failures")

	return cmd
}

// LoadRunReport reads a report written by the run command in JSON format.
func LoadRunReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stream.NewConfigurationError("LoadRunReport", fmt.Sprintf("reading %s: %v", path, err))
	}
	var resp struct {
		Status string `json:"status"`
		Data   Report `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, stream.NewConfigurationError("LoadRunReport", fmt.Sprintf("decoding %s: %v", path, err))
	}
	if resp.Data.Result == nil || len(resp.Data.Result.Kernels) == 0 {
		return nil, stream.NewConfigurationError("LoadRunReport", fmt.Sprintf("%s has no kernel results", path))
	}
	return &resp.Data, nil
}

// CompareReports matches kernels by name and classifies the change in best
// rate. regress must be at least 1.
func CompareReports(baseline, current *Report, regress float64) *Comparison {
	c := &Comparison{BaselineRunID: baseline.RunID, CurrentRunID: current.RunID}

	bc, cc := baseline.Result.Config, current.Result.Config
	if bc.ArrayLength != cc.ArrayLength || bc.Precision != cc.Precision {
		c.Warnings = append(c.Warnings, fmt.Sprintf("configurations differ: %d %s elements vs %d %s elements",
			bc.ArrayLength, bc.Precision, cc.ArrayLength, cc.Precision))
	}

	cur := make(map[string]stream.KernelStats, len(current.Result.Kernels))
	for _, ks := range current.Result.Kernels {
		cur[ks.Name] = ks
	}

	for _, base := range baseline.Result.Kernels {
		kc := KernelComparison{Kernel: base.Name, BaselineMBs: base.RateMBs}

		ks, ok := cur[base.Name]
		switch {
		case !ok:
			kc.Status = StatusFail
			kc.Message = "kernel missing in current report"
		case !current.Result.Validation.Passed:
			kc.CurrentMBs = ks.RateMBs
			kc.Status = StatusFail
			kc.Message = "current run failed validation"
		default:
			kc.CurrentMBs = ks.RateMBs
			kc.Status = StatusPass
			if base.RateMBs > 0 {
				kc.Speedup = ks.RateMBs / base.RateMBs
			}
			switch {
			case base.RateMBs == 0:
				kc.Message = "no baseline rate"
			case kc.Speedup < 1/regress:
				kc.Status = StatusSlower
				kc.Message = fmt.Sprintf("%.2fx slower", 1/kc.Speedup)
			case kc.Speedup > regress:
				kc.Status = StatusFaster
				kc.Message = fmt.Sprintf("%.2fx faster", kc.Speedup)
			}
		}
		c.Kernels = append(c.Kernels, kc)
	}
	return c
}

func runCompare(opts *CompareOptions, cmd *cobra.Command, baselinePath, currentPath string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}

	if opts.Regress < 1 {
		return fail(out, "invalid configuration",
			stream.NewConfigurationError("compare", fmt.Sprintf("--regress must be at least 1, got %g", opts.Regress)))
	}
	baseline, err := LoadRunReport(baselinePath)
	if err != nil {
		return fail(out, "cannot load baseline", err)
	}
	current, err := LoadRunReport(currentPath)
	if err != nil {
		return fail(out, "cannot load current report", err)
	}

	c := CompareReports(baseline, current, opts.Regress)
	failed := c.Count(StatusFail)
	if opts.Strict {
		failed += c.Count(StatusSlower)
	}

	if out.Format == "json" {
		status := "ok"
		if failed > 0 {
			status = "failed"
		}
		err = out.JSON(status, "", c)
	} else {
		err = writeComparisonText(out, c)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write comparison", err)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d kernels failed comparison", failed, len(c.Kernels)))
	}
	return nil
}

func writeComparisonText(out *OutputFormatter, c *Comparison) error {
	t := &textWriter{p: newPrinter()}

	t.line("Baseline %s vs current %s", c.BaselineRunID, c.CurrentRunID)
	for _, w := range c.Warnings {
		t.line("WARNING: %s", w)
	}
	t.line("  PASS: %d  FAIL: %d  SLOWER: %d  FASTER: %d",
		c.Count(StatusPass), c.Count(StatusFail), c.Count(StatusSlower), c.Count(StatusFaster))
	t.line(rule)
	t.line("%-8s %-6s %14s %14s %8s", "Kernel", "Status", "Baseline MB/s", "Current MB/s", "Speedup")
	for _, k := range c.Kernels {
		t.line("%-8s %-6s %14s %14s %8.2f  %s", k.Kernel, k.Status,
			t.p.Sprintf("%.1f", k.BaselineMBs), t.p.Sprintf("%.1f", k.CurrentMBs), k.Speedup, k.Message)
	}

	_, err := fmt.Fprint(out.Writer, t.String())
	return err
}
