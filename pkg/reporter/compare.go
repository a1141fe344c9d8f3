package reporter

import (
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
)

// FailurePolicy decides whether benchmarks without a single successful sample take part in fastest selection.
type FailurePolicy int

const (
	// ExcludeFailed never reports a benchmark without successful samples as the fastest.
	ExcludeFailed FailurePolicy = iota
	// IncludeFailed lets benchmarks without successful samples compete with zero throughput.
	IncludeFailed
)

func (p FailurePolicy) String() string {
	if p == IncludeFailed {
		return "include"
	}
	return "exclude"
}

// CompareOptions configure fastest selection.
type CompareOptions struct {
	// Tag selects the competing benchmarks, empty Tag selects all of them.
	Tag string
	// Overlap reports as ties also benchmarks whose throughput margins of error overlap with the fastest one.
	Overlap bool
	// FailurePolicy decides about benchmarks without successful samples.
	FailurePolicy FailurePolicy
}

// DefaultCompareOptions selects the fastest benchmark without caching, ignoring benchmarks that never succeeded.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Tag: dnsbench.TagWithoutCaching, FailurePolicy: ExcludeFailed}
}

// Fastest returns results with the highest throughput among results matching the options, in the order
// they were given. More than one result is returned only for ties. Nil is returned when no result competes.
func Fastest(results []*dnsbench.Result, opts CompareOptions) []*dnsbench.Result {
	candidates := make([]*dnsbench.Result, 0, len(results))
	for _, r := range results {
		if opts.Tag != "" && !r.HasTag(opts.Tag) {
			continue
		}
		if opts.FailurePolicy == ExcludeFailed && r.Succeeded() == 0 {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for _, r := range candidates[1:] {
		if r.Hz > best.Hz {
			best = r
		}
	}

	var fastest []*dnsbench.Result
	for _, r := range candidates {
		if r.Hz == best.Hz || (opts.Overlap && overlaps(r, best)) {
			fastest = append(fastest, r)
		}
	}
	return fastest
}

// Names returns names of the results.
func Names(results []*dnsbench.Result) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	return names
}

// overlaps reports whether the throughput of r within its margin of error reaches the lower bound of best.
func overlaps(r, best *dnsbench.Result) bool {
	upper := r.Hz * (1 + r.RME/100)
	lower := best.Hz * (1 - best.RME/100)
	return upper >= lower
}
