package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/tantalor93/resolvebench/pkg/dnsbench"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

const (
	lookupSuite  = "lookup"
	reverseSuite = "reverse"

	lookupHost  = "netflix.com"
	reverseAddr = "1.1.1.1"

	resolveTimeout = 5 * time.Second
	resolveTries   = 1
)

var (
	suiteNames = []string{lookupSuite, reverseSuite}

	upstreamServers = []string{"1.1.1.1", "1.0.0.1"}
)

// backends are the resolvers benchmarked by the suites.
type backends struct {
	dohPost        resolver.Resolver
	dohPostNoCache resolver.Resolver
	dohGet         resolver.Resolver
	dohGetNoCache  resolver.Resolver
	upstream       resolver.Resolver
	system         resolver.Resolver

	closers []func()
}

func (b *backends) Close() {
	for _, c := range b.closers {
		c()
	}
}

// newBackends creates resolvers with the fixed configuration: 5s timeout, no retries,
// Cloudflare upstream servers and Cloudflare DoH endpoint.
func newBackends() (*backends, error) {
	b := backends{
		upstream: resolver.NewUpstreamResolver(
			resolver.WithServers(upstreamServers...),
			resolver.WithUpstreamTimeout(resolveTimeout),
			resolver.WithTries(resolveTries),
		),
		system: resolver.NewSystemResolver(resolver.WithSystemTimeout(resolveTimeout)),
	}

	doh := func(method string, cache bool) (resolver.Resolver, error) {
		r, err := resolver.NewDoHResolver(resolver.DefaultDoHServer,
			resolver.WithMethod(method),
			resolver.WithDoHCache(cache),
			resolver.WithDoHTimeout(resolveTimeout),
			resolver.WithDoHTries(resolveTries),
		)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, r.Close)
		return r, nil
	}

	var err error
	if b.dohPost, err = doh(resolver.PostHTTPMethod, true); err != nil {
		return nil, err
	}
	if b.dohPostNoCache, err = doh(resolver.PostHTTPMethod, false); err != nil {
		b.Close()
		return nil, err
	}
	if b.dohGet, err = doh(resolver.GetHTTPMethod, true); err != nil {
		b.Close()
		return nil, err
	}
	if b.dohGetNoCache, err = doh(resolver.GetHTTPMethod, false); err != nil {
		b.Close()
		return nil, err
	}
	return &b, nil
}

func lookup(r resolver.Resolver, host string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := r.Lookup(ctx, host)
		return err
	}
}

func reverse(r resolver.Resolver, addr string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := r.Reverse(ctx, addr)
		return err
	}
}

// newLookupSuite measures forward lookups of a single host.
func newLookupSuite(b *backends, host string, opts dnsbench.Options) *dnsbench.Suite {
	s := dnsbench.NewSuite(lookupSuite, dnsbench.WithOptions(opts))
	s.Add(dnsbench.Benchmark{Name: "doh.lookup POST with caching using Cloudflare", Fn: lookup(b.dohPost, host)})
	s.Add(dnsbench.Benchmark{Name: "doh.lookup POST without caching using Cloudflare", Fn: lookup(b.dohPostNoCache, host)})
	s.Add(dnsbench.Benchmark{Name: "doh.lookup GET with caching using Cloudflare", Fn: lookup(b.dohGet, host)})
	s.Add(dnsbench.Benchmark{Name: "doh.lookup GET without caching using Cloudflare", Fn: lookup(b.dohGetNoCache, host)})
	s.Add(dnsbench.Benchmark{Name: "system.lookup with caching", Fn: lookup(resolver.NewCached(b.system), host)})
	s.Add(dnsbench.Benchmark{Name: "system.lookup without caching", Fn: lookup(b.system, host)})
	return s
}

// newReverseSuite measures reverse lookups of a single address. Cached upstream and system benchmarks share one cache.
func newReverseSuite(b *backends, addr string, opts dnsbench.Options) *dnsbench.Suite {
	cache := resolver.NewCache()
	s := dnsbench.NewSuite(reverseSuite, dnsbench.WithOptions(opts))
	s.Add(dnsbench.Benchmark{Name: "doh.reverse POST with caching", Fn: reverse(b.dohPost, addr)})
	s.Add(dnsbench.Benchmark{Name: "doh.reverse POST without caching", Fn: reverse(b.dohPostNoCache, addr)})
	s.Add(dnsbench.Benchmark{Name: "upstream.reverse with caching", Fn: reverse(resolver.NewCachedWith(b.upstream, cache), addr)})
	s.Add(dnsbench.Benchmark{Name: "upstream.reverse without caching", Fn: reverse(b.upstream, addr)})
	s.Add(dnsbench.Benchmark{Name: "system.reverse with caching", Fn: reverse(resolver.NewCachedWith(b.system, cache), addr)})
	s.Add(dnsbench.Benchmark{Name: "system.reverse without caching", Fn: reverse(b.system, addr)})
	return s
}

// newSuites creates suites by name in the given order, all suites are created when names are empty.
func newSuites(b *backends, names []string, opts dnsbench.Options) ([]*dnsbench.Suite, error) {
	if len(names) == 0 {
		names = suiteNames
	}
	suites := make([]*dnsbench.Suite, 0, len(names))
	for _, name := range names {
		switch name {
		case lookupSuite:
			suites = append(suites, newLookupSuite(b, lookupHost, opts))
		case reverseSuite:
			suites = append(suites, newReverseSuite(b, reverseAddr, opts))
		default:
			return nil, fmt.Errorf("unknown suite '%s'", name)
		}
	}
	return suites, nil
}
