package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/stream"
)

// HostReport is the output of the info command.
type HostReport struct {
	Host             *stream.HostInfo `json:"host"`
	AllowedCPUs      []int            `json:"allowed_cpus,omitempty"`
	SuggestedLengths map[string]int   `json:"suggested_lengths,omitempty"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the host without running the kernels",
		Long: `Print the CPU model, cache and memory sizes, SIMD features and the
smallest array length that keeps each array at least four times the
reported cache size.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, cmd)
		},
	}
}

// suggestedLength is the smallest element count that is CacheSizeMultiple
// times the cache, or 0 if the cache size is unknown.
func suggestedLength(host *stream.HostInfo, p stream.Precision) int {
	if host == nil || host.CacheKiB <= 0 {
		return 0
	}
	return stream.CacheSizeMultiple * host.CacheKiB * 1024 / p.Size()
}

func buildHostReport(host *stream.HostInfo, cpus []int) *HostReport {
	r := &HostReport{Host: host, AllowedCPUs: cpus}
	if n := suggestedLength(host, stream.Float64); n > 0 {
		r.SuggestedLengths = map[string]int{
			stream.Float32.String(): suggestedLength(host, stream.Float32),
			stream.Float64.String(): n,
		}
	}
	return r
}

func runInfo(opts *RootOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
	logger := newLogger(opts, cmd.ErrOrStderr())

	host, err := stream.CollectHostInfo(cmdContext(cmd))
	if err != nil {
		logger.Warn("host information incomplete", "error", err)
	}
	cpus, err := stream.AllowedCPUs()
	if err != nil {
		logger.Warn("cannot read cpu affinity", "error", err)
	}
	report := buildHostReport(host, cpus)

	if out.Format == "json" {
		return out.JSON("ok", "", report)
	}
	writeHostText(out, report)
	return nil
}

func writeHostText(out *OutputFormatter, r *HostReport) {
	t := &textWriter{p: newPrinter()}
	h := r.Host

	t.line("OS/Arch:          %s/%s", h.OS, h.Arch)
	if h.ModelName != "" {
		t.line("CPU:              %s", h.ModelName)
	}
	if h.PhysicalCPUs > 0 {
		t.line("Physical cores:   %d", h.PhysicalCPUs)
	}
	t.line("Logical CPUs:     %d", h.LogicalCPUs)
	t.line("GOMAXPROCS:       %d", h.GOMAXPROCS)
	if len(r.AllowedCPUs) > 0 {
		t.line("Allowed CPUs:     %d", len(r.AllowedCPUs))
	}
	if h.CacheKiB > 0 {
		t.line("Cache:            %s KiB", t.num(h.CacheKiB))
	}
	if h.MemTotal > 0 {
		t.line("Memory:           %s MiB total, %s MiB available",
			t.num(h.MemTotal/mib), t.num(h.MemAvailable/mib))
	}
	features := "none detected"
	if len(h.Features) > 0 {
		features = strings.Join(h.Features, ", ")
	}
	t.line("SIMD features:    %s", features)
	for _, p := range []stream.Precision{stream.Float32, stream.Float64} {
		if n, ok := r.SuggestedLengths[p.String()]; ok {
			t.line("%-18s%s elements", fmt.Sprintf("Min %s length:", p), t.num(n))
		}
	}

	fmt.Fprint(out.Writer, t.String())
}
