package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
	"github.com/tantalor93/resolvebench/pkg/printutils"
	"github.com/tantalor93/resolvebench/pkg/reporter"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

var (
	// Version is set during release of project during build process.
	Version = "development"
)

var (
	pApp = kingpin.New("resolvebench", "Compares latency of DNS resolvers with and without caching.")

	config Config
)

// Config holds output options of the command, resolver configuration is fixed.
type Config struct {
	Suites []string

	JSON       bool
	Silent     bool
	Color      bool
	Summary    bool
	Progress   bool
	PlotDir    string
	PlotFormat string

	Overlap       bool
	IncludeFailed bool

	Prometheus string

	LogRequests     bool
	LogRequestsPath string
}

func init() {
	pApp.Flag("json", "Report results of each suite as JSON.").BoolVar(&config.JSON)

	pApp.Flag("silent", "Disable stdout.").Default("false").BoolVar(&config.Silent)

	pApp.Flag("color", "ANSI Color output. Enabled by default.").
		Default("true").BoolVar(&config.Color)

	pApp.Flag("summary", "Print summary table and top errors after each suite.").
		Default("false").BoolVar(&config.Summary)

	pApp.Flag("progress", "Display progress of each suite on stderr.").
		Default("false").BoolVar(&config.Progress)

	pApp.Flag("plot", "Plot suite results and export them to the directory.").
		Default("").PlaceHolder("/path/to/folder").StringVar(&config.PlotDir)

	pApp.Flag("plotf", "Format of graphs. Supported formats: svg, png, jpg.").
		Default(reporter.DefaultPlotFormat).EnumVar(&config.PlotFormat, "svg", "png", "jpg")

	pApp.Flag("overlap", "Report also benchmarks whose throughput margin of error overlaps with the fastest one as fastest.").
		Default("false").BoolVar(&config.Overlap)

	pApp.Flag("include-failed", "Let benchmarks without any successful sample compete for the fastest with zero throughput.").
		Default("false").BoolVar(&config.IncludeFailed)

	pApp.Flag("prometheus", "Enables Prometheus metrics endpoint on the specified address. For example :8080 or localhost:8080. "+
		"The endpoint is available at /metrics path.").
		PlaceHolder(":8080").StringVar(&config.Prometheus)

	pApp.Flag("log-requests", "Controls whether each measured resolution is logged.").
		Default("false").BoolVar(&config.LogRequests)

	pApp.Flag("log-requests-path", "Specifies path to the file, where the resolutions will be logged. "+
		"If the file exists, the logs will be appended to the file.").
		Default(dnsbench.DefaultRequestLogPath).StringVar(&config.LogRequestsPath)

	pApp.Arg("suites", "Suites to run in the given order. Supported suites: lookup, reverse. All suites are run by default.").
		EnumsVar(&config.Suites, suiteNames...)
}

// Execute starts main logic of command.
func Execute() {
	pApp.Version(Version)
	kingpin.MustParse(pApp.Parse(os.Args[1:]))

	printutils.SetColor(config.Color)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !config.Color})

	sigsInt := make(chan os.Signal, 8)
	signal.Notify(sigsInt, syscall.SIGINT)

	defer close(sigsInt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_, ok := <-sigsInt
		if !ok {
			// standard exit based on channel close
			return
		}
		fmt.Fprintf(os.Stderr, "\nCancelling benchmark ^C, again to terminate now.\n")
		cancel()
		<-sigsInt
		os.Exit(1)
	}()

	if len(config.Prometheus) != 0 {
		srv := serveMetrics(config.Prometheus)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	opts := dnsbench.DefaultOptions()
	if config.LogRequests {
		logger, closer, err := dnsbench.NewRequestLogger(config.LogRequestsPath)
		if err != nil {
			printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
			return
		}
		defer closer.Close()
		opts.RequestLog = logger
	}

	b, err := newBackends()
	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
		return
	}
	defer b.Close()
	log.Debug().Strs("nameservers", resolver.SystemNameServers()).Msg("system resolver configured")

	suites, err := newSuites(b, config.Suites, opts)
	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
		return
	}

	if err := config.run(ctx, suites, os.Stdout, os.Stderr); err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while running benchmark: %s\n", err.Error())
	}
}

// run runs the suites one after another, reporting each of them to stdout. Reporting errors are printed to stderr
// and do not stop the remaining suites, an aborted suite does.
func (c *Config) run(ctx context.Context, suites []*dnsbench.Suite, stdout, stderr io.Writer) error {
	for _, s := range suites {
		var p *progress
		if c.Progress {
			p = newProgress(stderr)
			p.Attach(s)
		}
		rep := reporter.New(c.reporterConfig(stdout))
		rep.Attach(s)

		log.Debug().Str("suite", s.Name()).Int("benchmarks", len(s.Benchmarks())).Msg("running suite")
		_, err := s.Run(ctx)
		if p != nil {
			p.onComplete(dnsbench.Event{})
		}
		if err != nil {
			return err
		}
		if err := rep.Err(); err != nil {
			printutils.ErrFprintf(stderr, "There was an error while reporting suite %s: %s\n", s.Name(), err.Error())
		}
	}
	return nil
}

func (c *Config) reporterConfig(w io.Writer) reporter.Config {
	compare := reporter.DefaultCompareOptions()
	compare.Overlap = c.Overlap
	if c.IncludeFailed {
		compare.FailurePolicy = reporter.IncludeFailed
	}
	return reporter.Config{
		Writer:     w,
		JSON:       c.JSON,
		Silent:     c.Silent,
		Summary:    c.Summary,
		PlotDir:    c.PlotDir,
		PlotFormat: c.PlotFormat,
		Compare:    compare,
	}
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("address", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("address", addr).Msg("metrics server failed")
		}
	}()
	return srv
}
