package dnsbench

import (
	"time"
)

const (
	// DefaultWarmup is a default number of discarded invocations preceding sampling.
	DefaultWarmup = 3

	// DefaultMinSamples is a default minimum number of successful samples before the margin of error is evaluated.
	DefaultMinSamples = 5

	// DefaultMaxSamples is a default maximum number of samples, successful and failed, collected by a trial.
	DefaultMaxSamples = 1000

	// DefaultMaxTime is a default wall-clock budget of the sampling phase of a trial.
	DefaultMaxTime = 5 * time.Second

	// DefaultMaxRME is a default relative margin of error in percent at which sampling stops.
	DefaultMaxRME = 2.0

	// DefaultConfidence is a confidence level of the margin of error.
	DefaultConfidence = 0.95

	// DefaultRequestLogPath is a default path to the file, where the samples will be logged.
	DefaultRequestLogPath = "requests.log"

	// DefaultHistMin is a default minimal value tracked by latency histogram.
	DefaultHistMin = 0

	// DefaultHistMax is a default maximal value tracked by latency histogram.
	DefaultHistMax = time.Minute

	// DefaultHistPrecision is a default precision for histogram.
	DefaultHistPrecision = 1
)
