package dnsbench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sampleDurationMetrics = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resolvebench",
		Name:      "sample_duration_seconds",
		Help:      "Duration of successful benchmarked operations in seconds",
	}, []string{"suite", "benchmark"})

	samplesTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolvebench",
		Name:      "samples_total",
		Help:      "The total number of samples",
	}, []string{"suite", "benchmark", "outcome"})

	errorsTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolvebench",
		Name:      "errors_total",
		Help:      "The total number of failed samples by resolution error kind",
	}, []string{"suite", "benchmark", "kind"})

	throughputMetrics = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "resolvebench",
		Name:      "throughput_ops_per_second",
		Help:      "Throughput of settled benchmarks",
	}, []string{"suite", "benchmark"})

	rmeMetrics = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "resolvebench",
		Name:      "relative_margin_of_error_percent",
		Help:      "Relative margin of error of settled benchmarks",
	}, []string{"suite", "benchmark"})
)

func observeSample(suite, benchmark string, s Sample) {
	if s.Failed() {
		samplesTotalMetrics.WithLabelValues(suite, benchmark, "failed").Inc()
		errorsTotalMetrics.WithLabelValues(suite, benchmark, string(kindOf(s.Err))).Inc()
		return
	}
	samplesTotalMetrics.WithLabelValues(suite, benchmark, "success").Inc()
	sampleDurationMetrics.WithLabelValues(suite, benchmark).Observe(s.Duration.Seconds())
}

func observeResult(suite string, r *Result) {
	throughputMetrics.WithLabelValues(suite, r.Name).Set(r.Hz)
	rmeMetrics.WithLabelValues(suite, r.Name).Set(r.RME)
}
