package cmd

import (
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
)

// progress renders a progress bar of settled benchmarks of a suite.
type progress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) Attach(s *dnsbench.Suite) {
	s.On(dnsbench.EventStart, p.onStart)
	s.On(dnsbench.EventCycle, p.onCycle)
	s.On(dnsbench.EventComplete, p.onComplete)
}

func (p *progress) onStart(e dnsbench.Event) {
	benchmarks := e.Suite.Benchmarks()
	description := e.Suite.Name()
	if len(benchmarks) > 0 {
		description = benchmarks[0].Name
	}
	p.bar = progressbar.NewOptions(len(benchmarks),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) onCycle(e dnsbench.Event) {
	if p.bar == nil {
		return
	}
	if next := e.Index + 1; next < len(e.Suite.Benchmarks()) {
		p.bar.Describe(e.Suite.Benchmarks()[next].Name)
	}
	_ = p.bar.Add(1)
}

func (p *progress) onComplete(dnsbench.Event) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
