package stream

import (
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Option configures a Bench.
type Option func(*options)

type options struct {
	clock    Clock
	counters CounterFactory
	logger   *slog.Logger
}

// WithClock replaces the system clock used to time kernel passes.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithCounters captures counters around the timed repetitions. The factory
// is called once per worker and the per-worker samples are summed.
func WithCounters(f CounterFactory) Option {
	return func(o *options) { o.counters = f }
}

// WithLogger sets the logger for run progress. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Result is everything one run measured.
type Result struct {
	Config      Config           `json:"config"`
	ElementSize int              `json:"element_size"`
	Workers     int              `json:"workers"`
	ArenaBytes  int              `json:"arena_bytes"`
	Calibration Calibration      `json:"calibration"`
	Timings     *TimingTable     `json:"timings"`
	Kernels     []KernelStats    `json:"kernels"`
	Reference   *ReferenceState  `json:"reference,omitempty"` // canonical seeding only
	Validation  ValidationResult `json:"validation"`
	Counters    *CounterSample   `json:"counters,omitempty"`
}

// Err returns the validation failure, if any.
func (r *Result) Err() error {
	return r.Validation.Err()
}

// Stats returns the summary of kernel k.
func (r *Result) Stats(k Kernel) (KernelStats, bool) {
	for _, ks := range r.Kernels {
		if ks.Kernel == k {
			return ks, true
		}
	}
	return KernelStats{}, false
}

// executor is the element-type specific body of a Bench.
type executor interface {
	run() (*Result, error)
}

// Bench owns the arena and worker pool for repeated runs of one
// configuration. It is not safe for concurrent use.
type Bench struct {
	cfg    Config
	opts   options
	arena  *Arena
	pool   *WorkerPool
	exec   executor
	closed bool
}

// NewBench validates cfg, allocates the working arrays and starts the worker
// pool. Configuration errors are returned before any memory is allocated.
func NewBench(cfg Config, opts ...Option) (*Bench, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		clock:  SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	arena, err := NewArena(cfg.ArrayLength, cfg.Offset, cfg.Precision.Size())
	if err != nil {
		return nil, err
	}
	o.logger.Debug("allocated arena",
		"bytes", arena.Size(),
		"array_bytes", arena.ArrayBytes(),
		"offset", cfg.Offset)

	var cpus []int
	if cfg.PinCPUs {
		cpus, err = AllowedCPUs()
		if err != nil {
			o.logger.Warn("cpu pinning disabled", "error", err)
			cpus = nil
		}
	}

	pool := NewWorkerPool(cfg.ArrayLength, cfg.workers(runtime.GOMAXPROCS(0)), cpus)
	for _, perr := range pool.PinErrors() {
		o.logger.Warn("worker not pinned", "error", perr)
	}
	o.logger.Debug("started worker pool", "workers", pool.Workers(), "pinned", len(cpus) > 0)

	b := &Bench{cfg: cfg, opts: o, arena: arena, pool: pool}
	switch cfg.Precision {
	case Float32:
		b.exec = newRunner[float32](b)
	default:
		b.exec = newRunner[float64](b)
	}
	return b, nil
}

// Config returns the configuration the bench was built with.
func (b *Bench) Config() Config {
	return b.cfg
}

// Run initializes the arrays, runs the timed repetitions and validates the
// result. A validation failure is reported in the result, not as an error.
func (b *Bench) Run() (*Result, error) {
	if b.closed {
		return nil, NewConfigurationError("Bench.Run", "bench is closed")
	}
	return b.exec.run()
}

// Close stops the workers and releases the arena. It is safe to call more
// than once.
func (b *Bench) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.pool.Close()
	return b.arena.Close()
}

// Run is NewBench, one Bench.Run and Close.
func Run(cfg Config, opts ...Option) (*Result, error) {
	b, err := NewBench(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.Run()
}

type runner[T Float] struct {
	*Bench
	a, b, c []T
	s       T
}

func newRunner[T Float](b *Bench) *runner[T] {
	return &runner[T]{
		Bench: b,
		a:     arenaView[T](b.arena, 0),
		b:     arenaView[T](b.arena, 1),
		c:     arenaView[T](b.arena, 2),
		s:     T(b.cfg.Scalar),
	}
}

// initialize fills the arrays from the workers that will stream them, so
// pages are first touched near their consumer.
func (r *runner[T]) initialize() {
	switch r.cfg.SeedPolicy {
	case SeedRandom:
		r.pool.RunIndexed(func(w, lo, hi int) {
			rng := workerRand(r.cfg.Seed, w)
			FillRandom(r.a[lo:hi], rng)
			FillRandom(r.b[lo:hi], rng)
			FillRandom(r.c[lo:hi], rng)
		})
	default:
		r.pool.Run(func(lo, hi int) {
			FillConstant(r.a[lo:hi], T(CanonicalA))
			FillConstant(r.b[lo:hi], T(CanonicalB))
			FillConstant(r.c[lo:hi], T(CanonicalC))
		})
	}
}

// calibrate times one doubling pass over A against the clock resolution.
func (r *runner[T]) calibrate() Calibration {
	clock := r.opts.clock
	granularity := MeasureGranularity(clock)

	start := clock.Now()
	r.pool.Run(func(lo, hi int) { doubleRange(r.a, lo, hi) })
	cal := newCalibration(granularity, clock.Now().Sub(start))

	log := r.opts.logger
	if granularity == 0 {
		log.Warn("clock did not advance; timings are unreliable")
	} else {
		log.Debug("calibrated",
			"granularity", cal.Granularity,
			"pass", cal.Pass,
			"ticks", cal.Ticks)
	}
	if cal.TooCoarse() {
		log.Warn("calibration pass is shorter than the recommended minimum; increase the array length",
			"ticks", cal.Ticks,
			"min_ticks", MinCalibrationTicks)
	}
	return cal
}

// startCounters starts one counter on each worker's thread. Workers whose
// counter cannot be created or started are left out of the sample; nil is
// returned when no worker is counting.
func (r *runner[T]) startCounters() []RegionCounter {
	if r.opts.counters == nil {
		return nil
	}
	n := r.pool.Workers()
	counters := make([]RegionCounter, n)
	errs := make([]error, n)
	r.pool.RunIndexed(func(w, _, _ int) {
		c, err := r.opts.counters()
		if err == nil && c == nil {
			err = ErrCountersUnsupported
		}
		if err == nil {
			err = c.Start()
		}
		if err != nil {
			errs[w] = err
			return
		}
		counters[w] = c
	})

	var failed int
	var firstErr error
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	switch {
	case failed == n:
		r.opts.logger.Warn("hardware counters unavailable", "error", firstErr)
		return nil
	case failed > 0:
		r.opts.logger.Warn("hardware counters missing on some workers",
			"failed", failed, "workers", n, "error", firstErr)
	}
	return counters
}

// stopCounters stops every started counter on its own worker and sums the
// samples. It returns nil if no worker produced a sample.
func (r *runner[T]) stopCounters(counters []RegionCounter) *CounterSample {
	if counters == nil {
		return nil
	}
	samples := make([]*CounterSample, len(counters))
	errs := make([]error, len(counters))
	r.pool.RunIndexed(func(w, _, _ int) {
		if counters[w] != nil {
			samples[w], errs[w] = counters[w].Stop()
		}
	})

	var total *CounterSample
	for w, sample := range samples {
		if errs[w] != nil {
			r.opts.logger.Warn("reading hardware counters failed", "worker", w, "error", errs[w])
			continue
		}
		if sample == nil {
			continue
		}
		if total == nil {
			total = &CounterSample{}
		}
		total.add(sample)
	}
	if total != nil {
		total.derive()
	}
	return total
}

// timedLoop runs every kernel Repetitions times, bracketing each pass with
// clock reads taken outside the parallel region. Counters are stopped on
// every return path.
func (r *runner[T]) timedLoop(table *TimingTable) (sample *CounterSample, err error) {
	clock := r.opts.clock

	var fns [NumKernels]func(lo, hi int)
	for _, k := range Kernels {
		fns[k] = kernelFunc(k, r.a, r.b, r.c, r.s)
	}

	counters := r.startCounters()
	defer func() {
		s := r.stopCounters(counters)
		if err == nil {
			sample = s
		}
	}()

	for rep := 0; rep < r.cfg.Repetitions; rep++ {
		for _, k := range Kernels {
			start := clock.Now()
			r.pool.Run(fns[k])
			if err := table.Record(k, rep, clock.Now().Sub(start)); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

// replayExpectation computes the expected contents of every element from
// its value of A when the timed loop began. B and C are overwritten before
// they are first read, so only A matters.
func (r *runner[T]) replayExpectation(a0 []T) Expectation[T] {
	n := len(a0)
	ea, eb, ec := a0, make([]T, n), make([]T, n)
	reps := r.cfg.Repetitions
	r.pool.Run(func(lo, hi int) {
		for j := lo; j < hi; j++ {
			ea[j], eb[j], ec[j] = Replay(a0[j], 0, 0, reps, r.s)
		}
	})
	return ElementwiseExpectation(ea, eb, ec)
}

func (r *runner[T]) run() (*Result, error) {
	log := r.opts.logger
	cfg := r.cfg

	r.initialize()
	cal := r.calibrate()

	var a0 []T
	if cfg.SeedPolicy == SeedRandom {
		a0 = append([]T(nil), r.a...)
	}

	table, err := NewTimingTable(cfg.Repetitions)
	if err != nil {
		return nil, err
	}
	began := time.Now()
	counters, err := r.timedLoop(table)
	if err != nil {
		return nil, err
	}
	log.Debug("timed loop finished", "repetitions", cfg.Repetitions, "elapsed", time.Since(began))

	stats, err := Summarize(table, cfg.ArrayLength, cfg.Precision.Size())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Config:      cfg,
		ElementSize: cfg.Precision.Size(),
		Workers:     r.pool.Workers(),
		ArenaBytes:  r.arena.Size(),
		Calibration: cal,
		Timings:     table,
		Kernels:     stats,
		Counters:    counters,
	}

	var exp Expectation[T]
	if cfg.SeedPolicy == SeedRandom {
		exp = r.replayExpectation(a0)
	} else {
		ref := Reference(cfg.Repetitions, r.s)
		res.Reference = &ref
		exp = ConstantExpectation[T](ref)
	}

	res.Validation, err = Validate(r.a, r.b, r.c, exp, cfg.Precision, cfg.MaxOffenders)
	if err != nil {
		return nil, err
	}
	if res.Validation.Passed {
		log.Info("solution validates", "epsilon", res.Validation.Epsilon)
	} else {
		log.Warn("solution failed validation", "error", res.Validation.Err())
	}
	return res, nil
}
