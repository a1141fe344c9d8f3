package dnsbench

import (
	"context"
	"slices"
	"strings"
)

const (
	// TagWithCaching marks benchmarks measuring a backend with a cache in front of it.
	TagWithCaching = "with caching"
	// TagWithoutCaching marks benchmarks measuring a backend without any cache.
	TagWithoutCaching = "without caching"
)

// Benchmark is a single named operation measured by a Trial.
type Benchmark struct {
	// Name identifies the benchmark in the reports.
	Name string
	// Fn is the measured operation, an invocation is failed when Fn returns error or panics.
	Fn func(ctx context.Context) error
	// Tags are explicit tags of the benchmark, see HasTag.
	Tags []string
}

// HasTag reports whether the benchmark is tagged by tag, either explicitly or by containing it in its name.
func (b *Benchmark) HasTag(tag string) bool {
	return hasTag(b.Name, b.Tags, tag)
}

func cloneBenchmark(b Benchmark) *Benchmark {
	b.Tags = slices.Clone(b.Tags)
	return &b
}

func hasTag(name string, tags []string, tag string) bool {
	return slices.Contains(tags, tag) || strings.Contains(name, tag)
}
