package dnsbench

import (
	"errors"
	"fmt"
	"math"
	"net"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

// Sample is a single measured invocation of a benchmarked operation.
type Sample struct {
	Start    time.Time
	Duration time.Duration
	// Err is the error returned by the operation, failed samples are excluded from statistics.
	Err error
}

// Failed reports whether the invocation failed.
func (s Sample) Failed() bool {
	return s.Err != nil
}

// Result is the outcome of a single Trial. It is published once the Trial settles and never modified afterward.
type Result struct {
	Name string
	Tags []string

	// Samples contains all sampling invocations in the order they were made, warmup invocations are not included.
	Samples []Sample
	// Count is the number of samples, successful and failed.
	Count int64
	// Failed is the number of failed samples.
	Failed int64

	// Mean is the mean duration of successful samples.
	Mean time.Duration
	// StdDev is the sample standard deviation of successful durations.
	StdDev time.Duration
	// Moe is the margin of error of Mean at DefaultConfidence.
	Moe time.Duration
	// RME is Moe relative to Mean in percent.
	RME float64
	// Hz is the throughput in operations per second derived from Mean, zero if no sample succeeded.
	Hz float64

	// Hist is the latency histogram of successful samples.
	Hist *hdrhistogram.Histogram
	// GroupedErrors maps error descriptions of failed samples to their number of occurrences.
	GroupedErrors map[string]int
	// Kinds maps resolution error kinds of failed samples to their number of occurrences.
	Kinds map[resolver.Kind]int64

	// Start is the time the sampling started.
	Start time.Time
	// Elapsed is the wall-clock duration of the sampling.
	Elapsed time.Duration
}

func newResult(b *Benchmark, opts Options, samples []Sample, start time.Time, elapsed time.Duration) *Result {
	r := &Result{
		Name:          b.Name,
		Tags:          slices.Clone(b.Tags),
		Samples:       samples,
		Count:         int64(len(samples)),
		Hist:          hdrhistogram.New(opts.HistMin.Nanoseconds(), opts.HistMax.Nanoseconds(), opts.HistPrecision),
		GroupedErrors: make(map[string]int),
		Kinds:         make(map[resolver.Kind]int64),
		Start:         start,
		Elapsed:       elapsed,
	}

	durations := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Failed() {
			r.Failed++
			r.GroupedErrors[errString(s.Err)]++
			r.Kinds[kindOf(s.Err)]++
			continue
		}
		durations = append(durations, s.Duration.Seconds())
		// values outside of histogram range are not tracked
		_ = r.Hist.RecordValue(s.Duration.Nanoseconds())
	}

	est := estimateOf(durations, opts.Confidence)
	r.Mean = seconds(est.mean)
	r.StdDev = seconds(est.stddev)
	r.Moe = seconds(est.moe)
	r.RME = est.rme
	if est.mean > 0 {
		r.Hz = 1 / est.mean
	}
	return r
}

// HasTag reports whether the benchmark of the result is tagged by tag, see Benchmark.HasTag.
func (r *Result) HasTag(tag string) bool {
	return hasTag(r.Name, r.Tags, tag)
}

// Succeeded returns number of successful samples.
func (r *Result) Succeeded() int64 {
	return r.Count - r.Failed
}

// Durations returns durations of successful samples.
func (r *Result) Durations() []time.Duration {
	durations := make([]time.Duration, 0, r.Succeeded())
	for _, s := range r.Samples {
		if !s.Failed() {
			durations = append(durations, s.Duration)
		}
	}
	return durations
}

// Percentile returns the duration of successful samples at the given percentile, between 0 and 100.
// Zero is returned when no sample succeeded.
func (r *Result) Percentile(percent float64) time.Duration {
	durations := r.Durations()
	data := make(stats.Float64Data, 0, len(durations))
	for _, d := range durations {
		data = append(data, float64(d))
	}
	p, err := stats.Percentile(data, percent)
	if err != nil {
		return 0
	}
	return time.Duration(p)
}

// TopErrors returns up to n most frequent error descriptions, most frequent first.
func (r *Result) TopErrors(n int) []string {
	errs := make([]string, 0, len(r.GroupedErrors))
	for k := range r.GroupedErrors {
		errs = append(errs, k)
	}
	sort.Slice(errs, func(i, j int) bool {
		if r.GroupedErrors[errs[i]] == r.GroupedErrors[errs[j]] {
			return errs[i] < errs[j]
		}
		return r.GroupedErrors[errs[i]] > r.GroupedErrors[errs[j]]
	})
	if len(errs) > n {
		errs = errs[:n]
	}
	return errs
}

// String formats the result as a single cycle line, for example
// "lookup without caching x 1,234 ops/sec ±1.52% (85 runs sampled)".
func (r *Result) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	sb.WriteString(" x ")
	sb.WriteString(FormatHz(r.Hz))
	sb.WriteString(fmt.Sprintf(" ops/sec ±%.2f%% (%d runs sampled)", r.RME, r.Count))
	if r.Failed > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.Failed))
	}
	return sb.String()
}

// FormatHz formats throughput with thousands separators, two decimal places are kept for values below 100.
func FormatHz(hz float64) string {
	if hz < 100 {
		return humanize.CommafWithDigits(math.Round(hz*100)/100, 2)
	}
	return humanize.CommafWithDigits(math.Round(hz), 0)
}

// KindUnknown is used for failures not carrying resolver.ResolutionError.
const KindUnknown resolver.Kind = "unknown"

func kindOf(err error) resolver.Kind {
	if kind := resolver.KindOf(err); kind != "" {
		return kind
	}
	return KindUnknown
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func errString(err error) string {
	var resErr *resolver.ResolutionError
	var netOpErr *net.OpError
	var resolveErr *net.DNSError

	switch {
	case errors.As(err, &resolveErr):
		return resolveErr.Err + " " + resolveErr.Name
	case errors.As(err, &netOpErr):
		errorString := netOpErr.Op + " " + netOpErr.Net
		if netOpErr.Addr != nil {
			errorString += " " + netOpErr.Addr.String()
		}
		return errorString
	case errors.As(err, &resErr):
		return resErr.Op + " " + resErr.Query + ": " + string(resErr.Kind)
	default:
		return err.Error()
	}
}
