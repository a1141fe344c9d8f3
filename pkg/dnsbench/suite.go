package dnsbench

import (
	"context"
	"errors"
	"fmt"
)

// ErrSuiteAlreadyRun is returned when a Suite is run more than once.
var ErrSuiteAlreadyRun = errors.New("suite has already been run")

// EventType is a type of Suite lifecycle notification.
type EventType int

const (
	// EventStart is emitted before the first benchmark starts.
	EventStart EventType = iota
	// EventCycle is emitted after each benchmark settles, carrying its Result.
	EventCycle
	// EventComplete is emitted after the last benchmark settles, carrying all Results.
	EventComplete
)

func (e EventType) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventCycle:
		return "cycle"
	case EventComplete:
		return "complete"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}

// Event is a Suite lifecycle notification.
type Event struct {
	Type  EventType
	Suite *Suite
	// Index is the position of the settled benchmark, set for EventCycle.
	Index int
	// Result is the Result of the settled benchmark, set for EventCycle.
	Result *Result
	// Results are all Results in registration order, set for EventComplete.
	Results []*Result
}

// Handler receives Suite lifecycle notifications. Handlers are called synchronously in the order they were registered.
type Handler func(Event)

// Suite is a named ordered collection of benchmarks run strictly one after another.
type Suite struct {
	name       string
	opts       Options
	benchmarks []*Benchmark
	handlers   map[EventType][]Handler

	ran     bool
	results []*Result
}

// SuiteOption configures Suite.
type SuiteOption func(*Suite)

// WithOptions sets Options used by trials of all benchmarks of the suite.
func WithOptions(opts Options) SuiteOption {
	return func(s *Suite) {
		s.opts = opts
	}
}

// NewSuite creates empty Suite.
func NewSuite(name string, opts ...SuiteOption) *Suite {
	s := &Suite{
		name:     name,
		handlers: make(map[EventType][]Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns name of the suite.
func (s *Suite) Name() string {
	return s.name
}

// Add registers a copy of the benchmark, benchmarks run in the order they were added.
func (s *Suite) Add(b Benchmark) *Suite {
	s.benchmarks = append(s.benchmarks, cloneBenchmark(b))
	return s
}

// Benchmarks returns registered benchmarks in registration order.
func (s *Suite) Benchmarks() []Benchmark {
	res := make([]Benchmark, 0, len(s.benchmarks))
	for _, b := range s.benchmarks {
		res = append(res, *cloneBenchmark(*b))
	}
	return res
}

// On registers handler for the event type.
func (s *Suite) On(eventType EventType, handler Handler) *Suite {
	s.handlers[eventType] = append(s.handlers[eventType], handler)
	return s
}

// Results returns Results of settled benchmarks in registration order.
func (s *Suite) Results() []*Result {
	return append([]*Result(nil), s.results...)
}

// Run runs all benchmarks sequentially and returns their Results in registration order.
// A benchmark starts only after the Result of the previous one is published. Failing invocations never abort the run,
// only ctx being done does, in which case Results of already settled benchmarks are returned together with the error
// and EventComplete is not emitted.
func (s *Suite) Run(ctx context.Context) ([]*Result, error) {
	if s.ran {
		return nil, ErrSuiteAlreadyRun
	}
	s.ran = true

	s.emit(Event{Type: EventStart, Suite: s})
	for i, b := range s.benchmarks {
		if err := ctx.Err(); err != nil {
			return s.Results(), fmt.Errorf("suite %s aborted: %w", s.name, err)
		}
		res, err := newTrial(s.name, b, s.opts).Run(ctx)
		if err != nil {
			return s.Results(), err
		}
		s.results = append(s.results, res)
		s.emit(Event{Type: EventCycle, Suite: s, Index: i, Result: res})
	}
	s.emit(Event{Type: EventComplete, Suite: s, Results: s.Results()})
	return s.Results(), nil
}

func (s *Suite) emit(e Event) {
	for _, h := range s.handlers[e.Type] {
		h(e)
	}
}
