package reporter

import (
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

// BenchmarkSample is a sample attributed to the benchmark it was taken by.
type BenchmarkSample struct {
	Benchmark string
	dnsbench.Sample
}

// SuiteResultStats represents merged results of all benchmarks of a dnsbench.Suite.
type SuiteResultStats struct {
	Hist *hdrhistogram.Histogram
	// Timings are successful samples sorted by their start.
	Timings []BenchmarkSample
	// Errors are failed samples sorted by their start.
	Errors        []BenchmarkSample
	Count         int64
	Failed        int64
	GroupedErrors map[string]int
	Kinds         map[resolver.Kind]int64
}

// Merge takes results of the executed dnsbench.Suite and merges them.
func Merge(results []*dnsbench.Result) SuiteResultStats {
	totals := SuiteResultStats{
		Hist:          hdrhistogram.New(dnsbench.DefaultHistMin, dnsbench.DefaultHistMax.Nanoseconds(), dnsbench.DefaultHistPrecision),
		GroupedErrors: make(map[string]int),
		Kinds:         make(map[resolver.Kind]int64),
	}

	for _, r := range results {
		totals.Count += r.Count
		totals.Failed += r.Failed
		if r.Hist != nil {
			totals.Hist.Merge(r.Hist)
		}
		for k, v := range r.GroupedErrors {
			totals.GroupedErrors[k] += v
		}
		for k, v := range r.Kinds {
			totals.Kinds[k] += v
		}
		for _, s := range r.Samples {
			bs := BenchmarkSample{Benchmark: r.Name, Sample: s}
			if s.Failed() {
				totals.Errors = append(totals.Errors, bs)
			} else {
				totals.Timings = append(totals.Timings, bs)
			}
		}
	}

	// sort data points from the oldest to the earliest, so we can better plot time dependant graphs (like line)
	sort.SliceStable(totals.Timings, func(i, j int) bool {
		return totals.Timings[i].Start.Before(totals.Timings[j].Start)
	})
	sort.SliceStable(totals.Errors, func(i, j int) bool {
		return totals.Errors[i].Start.Before(totals.Errors[j].Start)
	})
	return totals
}
