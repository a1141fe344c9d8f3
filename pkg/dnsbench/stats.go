package dnsbench

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// estimate describes the sample mean of durations in seconds.
type estimate struct {
	mean   float64
	stddev float64
	sem    float64
	moe    float64
	// rme is the margin of error relative to the mean, in percent
	rme float64
}

// estimateOf computes the mean of durations with its margin of error at the given confidence level
// using the two-sided critical value of Student's t-distribution.
func estimateOf(durations []float64, confidence float64) estimate {
	n := len(durations)
	switch n {
	case 0:
		return estimate{}
	case 1:
		return estimate{mean: durations[0]}
	}

	mean, stddev := stat.MeanStdDev(durations, nil)
	sem := stddev / math.Sqrt(float64(n))
	critical := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-confidence)/2)
	moe := sem * critical

	var rme float64
	if mean > 0 {
		rme = moe / mean * 100
	}
	return estimate{mean: mean, stddev: stddev, sem: sem, moe: moe, rme: rme}
}
