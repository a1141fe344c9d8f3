package reporter

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
)

type jsonReporter struct{}

type latencyStats struct {
	MinMs  float64 `json:"minMs"`
	MeanMs float64 `json:"meanMs"`
	StdMs  float64 `json:"stdMs"`
	MaxMs  float64 `json:"maxMs"`
	P99Ms  float64 `json:"p99Ms"`
	P95Ms  float64 `json:"p95Ms"`
	P90Ms  float64 `json:"p90Ms"`
	P75Ms  float64 `json:"p75Ms"`
	P50Ms  float64 `json:"p50Ms"`
}

type jsonBenchmark struct {
	Name             string           `json:"name"`
	Tags             []string         `json:"tags,omitempty"`
	Samples          int64            `json:"samples"`
	Failed           int64            `json:"failed"`
	OpsPerSecond     float64          `json:"opsPerSecond"`
	RMEPercent       float64          `json:"rmePercent"`
	MeanMs           float64          `json:"meanMs"`
	StdDevMs         float64          `json:"stdDevMs"`
	MarginOfErrorMs  float64          `json:"marginOfErrorMs"`
	DurationSeconds  float64          `json:"durationSeconds"`
	LatencyStats     *latencyStats    `json:"latencyStats,omitempty"`
	Errors           map[string]int   `json:"errors,omitempty"`
	ErrorKinds       map[string]int64 `json:"errorKinds,omitempty"`
	FastestCandidate bool             `json:"fastestCandidate"`
}

type jsonResult struct {
	Suite                string          `json:"suite"`
	SuiteDurationSeconds float64         `json:"suiteDurationSeconds"`
	TotalSamples         int64           `json:"totalSamples"`
	TotalFailed          int64           `json:"totalFailed"`
	Benchmarks           []jsonBenchmark `json:"benchmarks"`
	FastestTag           string          `json:"fastestTag,omitempty"`
	FailurePolicy        string          `json:"failurePolicy"`
	Fastest              []string        `json:"fastest"`
	LatencyStats         *latencyStats   `json:"latencyStats,omitempty"`
}

func (s *jsonReporter) start(io.Writer, string) {}

func (s *jsonReporter) cycle(io.Writer, *dnsbench.Result) {}

func (s *jsonReporter) complete(params reportParameters) error {
	benchmarks := make([]jsonBenchmark, 0, len(params.results))
	for _, r := range params.results {
		kinds := make(map[string]int64, len(r.Kinds))
		for k, v := range r.Kinds {
			kinds[string(k)] = v
		}
		benchmarks = append(benchmarks, jsonBenchmark{
			Name:             r.Name,
			Tags:             r.Tags,
			Samples:          r.Count,
			Failed:           r.Failed,
			OpsPerSecond:     math.Round(r.Hz*100) / 100,
			RMEPercent:       math.Round(r.RME*100) / 100,
			MeanMs:           milliseconds(r.Mean),
			StdDevMs:         milliseconds(r.StdDev),
			MarginOfErrorMs:  milliseconds(r.Moe),
			DurationSeconds:  roundDuration(r.Elapsed).Seconds(),
			LatencyStats:     newLatencyStats(r.Hist),
			Errors:           r.GroupedErrors,
			ErrorKinds:       kinds,
			FastestCandidate: params.compare.Tag == "" || r.HasTag(params.compare.Tag),
		})
	}

	result := jsonResult{
		Suite:                params.suite,
		SuiteDurationSeconds: roundDuration(params.suiteDuration).Seconds(),
		TotalSamples:         params.totals.Count,
		TotalFailed:          params.totals.Failed,
		Benchmarks:           benchmarks,
		FastestTag:           params.compare.Tag,
		FailurePolicy:        params.compare.FailurePolicy.String(),
		Fastest:              Names(params.fastest),
		LatencyStats:         newLatencyStats(params.totals.Hist),
	}
	return json.NewEncoder(params.outputWriter).Encode(result)
}

func newLatencyStats(hist *hdrhistogram.Histogram) *latencyStats {
	if hist == nil || hist.TotalCount() == 0 {
		return nil
	}
	return &latencyStats{
		MinMs:  milliseconds(roundDuration(time.Duration(hist.Min()))),
		MeanMs: milliseconds(roundDuration(time.Duration(hist.Mean()))),
		StdMs:  milliseconds(roundDuration(time.Duration(hist.StdDev()))),
		MaxMs:  milliseconds(roundDuration(time.Duration(hist.Max()))),
		P99Ms:  milliseconds(roundDuration(time.Duration(hist.ValueAtQuantile(99)))),
		P95Ms:  milliseconds(roundDuration(time.Duration(hist.ValueAtQuantile(95)))),
		P90Ms:  milliseconds(roundDuration(time.Duration(hist.ValueAtQuantile(90)))),
		P75Ms:  milliseconds(roundDuration(time.Duration(hist.ValueAtQuantile(75)))),
		P50Ms:  milliseconds(roundDuration(time.Duration(hist.ValueAtQuantile(50)))),
	}
}
