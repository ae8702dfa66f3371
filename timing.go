package stream

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimingTable holds one elapsed time per kernel per repetition. Each cell is
// written once.
type TimingTable struct {
	reps    int
	samples [NumKernels][]time.Duration
	set     [NumKernels][]bool
}

// NewTimingTable returns an empty table for reps repetitions.
func NewTimingTable(reps int) (*TimingTable, error) {
	if reps <= 0 {
		return nil, NewConfigurationError("NewTimingTable",
			fmt.Sprintf("repetition count %d must be positive", reps))
	}
	t := &TimingTable{reps: reps}
	for k := range t.samples {
		t.samples[k] = make([]time.Duration, reps)
		t.set[k] = make([]bool, reps)
	}
	return t, nil
}

// Repetitions returns N.
func (t *TimingTable) Repetitions() int {
	return t.reps
}

func (t *TimingTable) check(op string, k Kernel, rep int) error {
	if k < 0 || int(k) >= NumKernels {
		return NewConfigurationError(op, fmt.Sprintf("kernel %d out of range", int(k)))
	}
	if rep < 0 || rep >= t.reps {
		return NewConfigurationError(op, fmt.Sprintf("repetition %d out of range [0,%d)", rep, t.reps))
	}
	return nil
}

// Record stores the time of kernel k in repetition rep.
func (t *TimingTable) Record(k Kernel, rep int, d time.Duration) error {
	if err := t.check("TimingTable.Record", k, rep); err != nil {
		return err
	}
	if t.set[k][rep] {
		return NewConfigurationError("TimingTable.Record",
			fmt.Sprintf("%s repetition %d already recorded", k, rep))
	}
	t.samples[k][rep] = d
	t.set[k][rep] = true
	return nil
}

// Sample returns the recorded time and whether the cell has been written.
func (t *TimingTable) Sample(k Kernel, rep int) (time.Duration, bool) {
	if t.check("TimingTable.Sample", k, rep) != nil {
		return 0, false
	}
	return t.samples[k][rep], t.set[k][rep]
}

// Row returns a copy of the samples for kernel k.
func (t *TimingTable) Row(k Kernel) []time.Duration {
	return append([]time.Duration(nil), t.samples[k]...)
}

// MarshalJSON encodes the table as kernel name to per-repetition nanoseconds.
func (t *TimingTable) MarshalJSON() ([]byte, error) {
	rows := make(map[string][]int64, NumKernels)
	for _, k := range Kernels {
		row := make([]int64, t.reps)
		for i, d := range t.samples[k] {
			row[i] = d.Nanoseconds()
		}
		rows[k.String()] = row
	}
	return json.Marshal(rows)
}

// KernelStats summarizes one kernel over repetitions 1..N-1.
type KernelStats struct {
	Kernel  Kernel        `json:"-"`
	Name    string        `json:"kernel"`
	Bytes   int64         `json:"bytes"`
	Flops   int64         `json:"flops"`
	Best    time.Duration `json:"best_ns"`
	Avg     time.Duration `json:"avg_ns"`
	Worst   time.Duration `json:"worst_ns"`
	RateMBs float64       `json:"rate_mb_s"`
	GFlops  float64       `json:"gflop_s"`
}

// UnmarshalJSON restores Kernel from the serialized name.
func (ks *KernelStats) UnmarshalJSON(data []byte) error {
	type plain KernelStats
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	k, err := ParseKernel(v.Name)
	if err != nil {
		return err
	}
	v.Kernel = k
	*ks = KernelStats(v)
	return nil
}

// Summarize computes best, average and worst time per kernel, discarding
// repetition 0, and derives bandwidth from the best time. A best time of zero
// (a clock too coarse to see the pass) yields zero rates.
func Summarize(t *TimingTable, length, elemSize int) ([]KernelStats, error) {
	if t.reps < MinRepetitions {
		return nil, ErrTooFewRepetitions
	}

	stats := make([]KernelStats, 0, NumKernels)
	for _, k := range Kernels {
		var sum time.Duration
		best, worst := time.Duration(0), time.Duration(0)
		for rep := 1; rep < t.reps; rep++ {
			if !t.set[k][rep] {
				return nil, NewConfigurationError("Summarize",
					fmt.Sprintf("%s repetition %d was never recorded", k, rep))
			}
			d := t.samples[k][rep]
			if rep == 1 || d < best {
				best = d
			}
			if rep == 1 || d > worst {
				worst = d
			}
			sum += d
		}

		ks := KernelStats{
			Kernel: k,
			Name:   k.String(),
			Bytes:  k.Bytes(length, elemSize),
			Flops:  int64(k.Flops()) * int64(length),
			Best:   best,
			Avg:    sum / time.Duration(t.reps-1),
			Worst:  worst,
		}
		if best > 0 {
			secs := best.Seconds()
			ks.RateMBs = 1e-6 * float64(ks.Bytes) / secs
			ks.GFlops = 1e-9 * float64(ks.Flops) / secs
		}
		stats = append(stats, ks)
	}
	return stats, nil
}
