package dnsbench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"
)

// ErrPanic wraps a value recovered from a panicking benchmarked operation.
var ErrPanic = errors.New("benchmarked operation panicked")

// ErrTrialAlreadyRun is returned when a Trial is run more than once.
var ErrTrialAlreadyRun = errors.New("trial has already been run")

// State is a state of a Trial.
type State int

const (
	// Idle is the state of a Trial that has not been run yet.
	Idle State = iota
	// Warmup is the state of a Trial making discarded invocations.
	Warmup
	// Sampling is the state of a Trial collecting samples.
	Sampling
	// Settled is the terminal state of a Trial, its Result is published.
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Warmup:
		return "warmup"
	case Sampling:
		return "sampling"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure the sampling of a Trial. Zero values are replaced by defaults, see DefaultOptions.
type Options struct {
	// Warmup is the number of discarded invocations, negative value disables warmup.
	Warmup int
	// MinSamples is the number of successful samples needed before the margin of error may stop the sampling.
	MinSamples int
	// MaxSamples limits the number of samples, successful and failed.
	MaxSamples int
	// MaxTime limits the wall-clock duration of sampling.
	MaxTime time.Duration
	// MaxRME is the relative margin of error in percent at which the sampling stops.
	MaxRME float64
	// Confidence is the confidence level of the margin of error.
	Confidence float64
	// Rate limits invocations per second, zero means unlimited.
	Rate int

	HistMin       time.Duration
	HistMax       time.Duration
	HistPrecision int

	// RequestLog when set receives one event per sample.
	RequestLog *zerolog.Logger
}

// DefaultOptions returns Options with all defaults filled in.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Warmup == 0 {
		o.Warmup = DefaultWarmup
	}
	if o.Warmup < 0 {
		o.Warmup = 0
	}
	if o.MinSamples == 0 {
		o.MinSamples = DefaultMinSamples
	}
	// the margin of error is undefined for less than two samples
	if o.MinSamples < 2 {
		o.MinSamples = 2
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	if o.MaxTime <= 0 {
		o.MaxTime = DefaultMaxTime
	}
	if o.MaxRME <= 0 {
		o.MaxRME = DefaultMaxRME
	}
	if o.Confidence <= 0 || o.Confidence >= 1 {
		o.Confidence = DefaultConfidence
	}
	if o.HistMin < 0 {
		o.HistMin = DefaultHistMin
	}
	if o.HistMax <= 0 {
		o.HistMax = DefaultHistMax
	}
	if o.HistPrecision <= 0 {
		o.HistPrecision = DefaultHistPrecision
	}
	return o
}

// Trial runs a single Benchmark and produces its Result. A Trial can be run only once.
type Trial struct {
	bench *Benchmark
	opts  Options
	suite string

	state   State
	limiter ratelimit.Limiter
	result  *Result
}

// NewTrial creates a Trial of the benchmark.
func NewTrial(b Benchmark, opts Options) *Trial {
	return newTrial("", cloneBenchmark(b), opts)
}

func newTrial(suite string, b *Benchmark, opts Options) *Trial {
	t := &Trial{
		bench: b,
		opts:  opts.withDefaults(),
		suite: suite,
		state: Idle,
	}
	if t.opts.Rate > 0 {
		t.limiter = ratelimit.New(t.opts.Rate)
	}
	return t
}

// State returns current state of the Trial.
func (t *Trial) State() State {
	return t.state
}

// Result returns the published Result, nil unless the Trial is Settled.
func (t *Trial) Result() *Result {
	return t.result
}

// Run executes warmup and sampling invocations and returns the Result once settled.
// Invocations never overlap, the operation is responsible for bounding its own duration.
// Sampling stops early when ctx is done.
func (t *Trial) Run(ctx context.Context) (*Result, error) {
	if t.state != Idle {
		return nil, ErrTrialAlreadyRun
	}

	t.state = Warmup
	for i := 0; i < t.opts.Warmup && ctx.Err() == nil; i++ {
		t.invoke(ctx)
	}

	t.state = Sampling
	var (
		samples   []Sample
		durations []float64
		est       estimate
	)
	start := time.Now()
	for ctx.Err() == nil {
		s := t.invoke(ctx)
		samples = append(samples, s)
		t.observe(s)

		if !s.Failed() {
			durations = append(durations, s.Duration.Seconds())
			est = estimateOf(durations, t.opts.Confidence)
		}
		if t.shouldStop(len(durations), len(samples), time.Since(start), est.rme) {
			break
		}
	}

	t.result = newResult(t.bench, t.opts, samples, start, time.Since(start))
	t.state = Settled
	observeResult(t.suite, t.result)
	return t.result, nil
}

func (t *Trial) shouldStop(successes, samples int, elapsed time.Duration, rme float64) bool {
	if samples >= t.opts.MaxSamples || elapsed >= t.opts.MaxTime {
		return true
	}
	return successes >= t.opts.MinSamples && rme <= t.opts.MaxRME
}

func (t *Trial) invoke(ctx context.Context) (s Sample) {
	if t.limiter != nil {
		t.limiter.Take()
	}

	s.Start = time.Now()
	defer func() {
		s.Duration = time.Since(s.Start)
		if r := recover(); r != nil {
			s.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	s.Err = t.bench.Fn(ctx)
	return s
}

func (t *Trial) observe(s Sample) {
	observeSample(t.suite, t.bench.Name, s)
	if t.opts.RequestLog != nil {
		logSample(t.opts.RequestLog, t.suite, t.bench.Name, s)
	}
}
