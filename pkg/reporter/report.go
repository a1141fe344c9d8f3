package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tantalor93/resolvebench/pkg/dnsbench"
)

// DefaultPlotFormat is a default format for plots.
const DefaultPlotFormat = "svg"

// Config configures the report of a suite.
type Config struct {
	// Writer receives the report.
	Writer io.Writer
	// JSON replaces the line based report by a single JSON document printed once the suite completes.
	JSON bool
	// Silent suppresses the report, plots are still exported.
	Silent bool
	// Summary appends a table of all results and top errors to the line based report.
	Summary bool
	// PlotDir is an existing directory, where a subdirectory with plots is created once the suite completes.
	PlotDir string
	// PlotFormat is a file format of plots, see gonum.org/v1/plot for supported formats.
	PlotFormat string
	// Compare configures fastest selection.
	Compare CompareOptions
}

type reportParameters struct {
	outputWriter  io.Writer
	suite         string
	results       []*dnsbench.Result
	fastest       []*dnsbench.Result
	compare       CompareOptions
	totals        SuiteResultStats
	summary       bool
	suiteDuration time.Duration
}

type reportPrinter interface {
	start(w io.Writer, suite string)
	cycle(w io.Writer, res *dnsbench.Result)
	complete(params reportParameters) error
}

// Reporter reports lifecycle of a dnsbench.Suite.
type Reporter struct {
	cfg     Config
	printer reportPrinter
	started time.Time
	err     error
}

// New creates Reporter.
func New(cfg Config) *Reporter {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.PlotFormat == "" {
		cfg.PlotFormat = DefaultPlotFormat
	}
	return &Reporter{cfg: cfg, printer: printer(cfg)}
}

// Attach registers the reporter as a listener of all events of the suite.
func (r *Reporter) Attach(s *dnsbench.Suite) {
	s.On(dnsbench.EventStart, r.onStart)
	s.On(dnsbench.EventCycle, r.onCycle)
	s.On(dnsbench.EventComplete, r.onComplete)
}

// Err returns the first error that happened while reporting, for example when plots could not be exported.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) onStart(e dnsbench.Event) {
	r.started = time.Now()
	if !r.cfg.Silent {
		r.printer.start(r.cfg.Writer, e.Suite.Name())
	}
}

func (r *Reporter) onCycle(e dnsbench.Event) {
	if !r.cfg.Silent {
		r.printer.cycle(r.cfg.Writer, e.Result)
	}
}

func (r *Reporter) onComplete(e dnsbench.Event) {
	totals := Merge(e.Results)

	if len(r.cfg.PlotDir) != 0 {
		if err := r.plot(e.Suite.Name(), e.Results, totals); err != nil {
			r.setErr(err)
		}
	}

	if r.cfg.Silent {
		return
	}
	params := reportParameters{
		outputWriter:  r.cfg.Writer,
		suite:         e.Suite.Name(),
		results:       e.Results,
		fastest:       Fastest(e.Results, r.cfg.Compare),
		compare:       r.cfg.Compare,
		totals:        totals,
		summary:       r.cfg.Summary,
		suiteDuration: time.Since(r.started),
	}
	if err := r.printer.complete(params); err != nil {
		r.setErr(err)
	}
}

func (r *Reporter) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reporter) plot(suite string, results []*dnsbench.Result, totals SuiteResultStats) error {
	if err := directoryExists(r.cfg.PlotDir); err != nil {
		return fmt.Errorf("unable to plot results: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	dir := filepath.Join(r.cfg.PlotDir, fmt.Sprintf("graphs-%s-%s", suite, now))
	if err := os.Mkdir(dir, os.ModePerm); err != nil {
		return fmt.Errorf("unable to plot results: %w", err)
	}
	plotThroughput(r.fileName(dir, "throughput-barchart"), results)
	plotBoxPlotLatency(r.fileName(dir, "latency-boxplot"), results)
	plotHistogramLatency(r.fileName(dir, "latency-histogram"), totals.Timings)
	plotLineLatencies(r.fileName(dir, "latency-lineplot"), r.started, totals.Timings)
	plotErrorRate(r.fileName(dir, "errorrate-lineplot"), r.started, totals.Errors)
	return nil
}

func (r *Reporter) fileName(dir, name string) string {
	return filepath.Join(dir, name+"."+r.cfg.PlotFormat)
}

func directoryExists(plotDir string) error {
	stat, err := os.Stat(plotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' path does not point to an existing directory", plotDir)
		}
		return err
	} else if !stat.IsDir() {
		return fmt.Errorf("'%s' is not a path to a directory", plotDir)
	}
	return nil
}

func printer(cfg Config) reportPrinter {
	switch {
	case cfg.JSON:
		return &jsonReporter{}
	default:
		return &standardReporter{}
	}
}

// fastestLabel returns the label of the fastest line, "Fastest without caching" for the default options.
func fastestLabel(opts CompareOptions) string {
	if opts.Tag == "" {
		return "Fastest"
	}
	return "Fastest " + opts.Tag
}

func joinNames(results []*dnsbench.Result) string {
	return strings.Join(Names(results), ", ")
}
