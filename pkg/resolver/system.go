package resolver

import (
	"context"
	"net"
	"strings"
	"time"
)

// HostResolver is the subset of *net.Resolver used by SystemResolver.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// SystemResolver is a stub resolver using name servers configured on the host.
type SystemResolver struct {
	backend HostResolver
	timeout time.Duration
}

var _ Resolver = &SystemResolver{}

// SystemOption configures SystemResolver.
type SystemOption func(*SystemResolver)

// WithSystemTimeout sets deadline of a single resolution.
func WithSystemTimeout(timeout time.Duration) SystemOption {
	return func(r *SystemResolver) {
		r.timeout = timeout
	}
}

// WithHostResolver replaces the default net.DefaultResolver backend.
func WithHostResolver(backend HostResolver) SystemOption {
	return func(r *SystemResolver) {
		r.backend = backend
	}
}

// NewSystemResolver creates SystemResolver, by default using net.DefaultResolver and DefaultTimeout.
func NewSystemResolver(opts ...SystemOption) *SystemResolver {
	r := &SystemResolver{
		backend: net.DefaultResolver,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup implements Resolver.Lookup.
func (r *SystemResolver) Lookup(ctx context.Context, host string) ([]string, error) {
	return runWithTimeout(ctx, r.timeout, OpLookup, host, func(ctx context.Context) ([]string, error) {
		return r.backend.LookupHost(ctx, host)
	})
}

// Reverse implements Resolver.Reverse.
func (r *SystemResolver) Reverse(ctx context.Context, addr string) ([]string, error) {
	return runWithTimeout(ctx, r.timeout, OpReverse, addr, func(ctx context.Context) ([]string, error) {
		names, err := r.backend.LookupAddr(ctx, addr)
		if err != nil {
			return nil, err
		}
		for i := range names {
			names[i] = strings.TrimSuffix(names[i], ".")
		}
		return names, nil
	})
}

type resolveResult struct {
	values []string
	err    error
}

// runWithTimeout runs fn in a separate goroutine and stops waiting for it once the timeout elapses,
// getaddrinfo based lookups do not always respect context cancellation.
func runWithTimeout(ctx context.Context, timeout time.Duration, op, query string,
	fn func(context.Context) ([]string, error)) ([]string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resch := make(chan resolveResult, 1)
	go func() {
		values, err := fn(ctx)
		resch <- resolveResult{values: values, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, wrapError(op, query, ctx.Err())
	case res := <-resch:
		if res.err != nil {
			return nil, wrapError(op, query, res.err)
		}
		if len(res.values) == 0 {
			return nil, newError(KindNotFound, op, query, nil)
		}
		return res.values, nil
	}
}
