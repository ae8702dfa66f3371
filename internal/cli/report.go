package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/LynnColeArt/stream"
)

const (
	rule = "-------------------------------------------------------------"
	mib  = 1 << 20
	gib  = 1 << 30
)

// Report is one benchmark run as presented to the user.
type Report struct {
	RunID   string           `json:"run_id"`
	Version string           `json:"version,omitempty"`
	Host    *stream.HostInfo `json:"host,omitempty"`
	Advice  string           `json:"advice,omitempty"`
	Result  *stream.Result   `json:"result"`
}

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// textWriter accumulates report lines.
type textWriter struct {
	strings.Builder
	p *message.Printer
}

func (t *textWriter) line(format string, args ...interface{}) {
	fmt.Fprintf(&t.Builder, format+"\n", args...)
}

// num formats an integer with thousands separators.
func (t *textWriter) num(v interface{}) string {
	return t.p.Sprintf("%d", v)
}

// WriteText renders the report in the layout of the classic STREAM output.
func WriteText(w io.Writer, r *Report) error {
	t := &textWriter{p: newPrinter()}
	res := r.Result
	cfg := res.Config

	t.line(rule)
	t.line("STREAM memory bandwidth, run %s", r.RunID)
	if r.Version != "" {
		t.line("Version: %s", r.Version)
	}
	t.line(rule)
	t.line("This system uses %d bytes per array element.", res.ElementSize)
	t.line(rule)
	t.line("Array size = %s (elements), Offset = %s (elements)", t.num(cfg.ArrayLength), t.num(cfg.Offset))
	arrayBytes := float64(cfg.ArrayLength) * float64(res.ElementSize)
	t.line("Memory per array = %.1f MiB (= %.1f GiB).", arrayBytes/mib, arrayBytes/gib)
	t.line("Total memory required = %.1f MiB (= %.1f GiB).", stream.NumArrays*arrayBytes/mib, stream.NumArrays*arrayBytes/gib)
	t.line("Each kernel will be executed %d times.", cfg.Repetitions)
	t.line(" The *best* time for each kernel (excluding the first iteration)")
	t.line(" will be used to compute the reported bandwidth.")
	t.line(rule)
	t.line("Number of workers = %d", res.Workers)
	if r.Host != nil && r.Host.ModelName != "" {
		t.line("CPU: %s (%d logical CPUs)", r.Host.ModelName, r.Host.LogicalCPUs)
	}
	if r.Advice != "" {
		t.line("WARNING: %s", r.Advice)
	}
	t.line(rule)

	writeCalibration(t, res.Calibration)
	t.line(rule)

	t.line("Function    Best Rate MB/s  Avg time     Min time     Max time")
	for _, ks := range res.Kernels {
		t.line("%-12s%14s  %11.6f  %11.6f  %11.6f",
			ks.Name+":", t.p.Sprintf("%.1f", ks.RateMBs),
			ks.Avg.Seconds(), ks.Best.Seconds(), ks.Worst.Seconds())
	}
	t.line(rule)

	writeValidation(t, &res.Validation)
	t.line(rule)

	if res.Counters != nil {
		t.WriteString(res.Counters.String())
		t.line(rule)
	}

	_, err := io.WriteString(w, t.String())
	return err
}

func writeCalibration(t *textWriter, cal stream.Calibration) {
	switch {
	case cal.Granularity == 0:
		t.line("Your clock did not advance while it was being measured.")
	case cal.Granularity < time.Microsecond:
		t.line("Your clock granularity appears to be less than one microsecond.")
	default:
		t.line("Your clock granularity/precision appears to be %d microseconds.", cal.Granularity.Microseconds())
	}
	t.line("Each test below will take on the order of %d microseconds.", cal.Pass.Microseconds())
	t.line("   (= %s clock ticks)", t.num(cal.Ticks))
	t.line("Increase the size of the arrays if this shows that")
	t.line("you are not getting at least %d clock ticks per test.", stream.MinCalibrationTicks)
	if cal.TooCoarse() {
		t.line("WARNING: the calibration pass took only %d clock ticks.", cal.Ticks)
	}
}

func writeValidation(t *textWriter, v *stream.ValidationResult) {
	if v.Passed {
		t.line("Solution Validates: avg error less than %e on all three arrays", v.Epsilon)
	}
	for _, a := range v.Arrays {
		if a.Failed {
			t.line("Failed Validation on array %s[], AvgRelAbsErr > epsilon (%e)", a.Name, v.Epsilon)
			t.line("     Expected Value: %e, AvgAbsErr: %e, AvgRelAbsErr: %e", a.Expected, a.AvgAbsErr, a.AvgRelErr)
		}
		if a.Errors > 0 {
			t.line("     For array %s[], %s errors were found.", a.Name, t.num(a.Errors))
			for _, o := range a.Offenders {
				t.line("         %s[%d]: observed %e, expected %e, relative error %e",
					a.Name, o.Index, o.Observed, o.Expected, o.RelErr)
			}
		}
	}
}

// SweepRow is the outcome of one working-set size in a sweep.
type SweepRow struct {
	KiB      int            `json:"kib"`
	Elements int            `json:"elements"`
	Result   *stream.Result `json:"result"`
}

// SweepReport is a sweep over working-set sizes.
type SweepReport struct {
	RunID   string     `json:"run_id"`
	Version string     `json:"version,omitempty"`
	Rows    []SweepRow `json:"rows"`
}

// WriteSweepText renders one line per working-set size.
func WriteSweepText(w io.Writer, r *SweepReport) error {
	t := &textWriter{p: newPrinter()}

	t.line(rule)
	t.line("STREAM working-set sweep, run %s", r.RunID)
	t.line(rule)
	t.line("%10s  %12s  %12s  %12s  %12s  %12s  %s",
		"Size KiB", "Elements", "Copy MB/s", "Scale MB/s", "Add MB/s", "Triad MB/s", "Valid")
	for _, row := range r.Rows {
		rates := make([]string, 0, stream.NumKernels)
		for _, k := range stream.Kernels {
			ks, _ := row.Result.Stats(k)
			rates = append(rates, t.p.Sprintf("%.1f", ks.RateMBs))
		}
		valid := "yes"
		if !row.Result.Validation.Passed {
			valid = "NO"
		}
		t.line("%10s  %12s  %12s  %12s  %12s  %12s  %s",
			t.num(row.KiB), t.num(row.Elements), rates[0], rates[1], rates[2], rates[3], valid)
	}
	t.line(rule)

	_, err := io.WriteString(w, t.String())
	return err
}
