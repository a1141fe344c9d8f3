package resolver_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

type fakeHostResolver struct {
	hosts map[string][]string
	addrs map[string][]string
	err   error
	block chan struct{}
}

func (f *fakeHostResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.hosts[host], nil
}

func (f *fakeHostResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.addrs[addr], nil
}

func TestSystemResolver_Lookup(t *testing.T) {
	backend := &fakeHostResolver{
		hosts: map[string][]string{"example.org": {"127.0.0.1", "::1"}},
		addrs: map[string][]string{"1.1.1.1": {"one.one.one.one."}},
	}
	r := resolver.NewSystemResolver(resolver.WithHostResolver(backend))

	addrs, err := r.Lookup(context.Background(), "example.org")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, addrs)

	names, err := r.Reverse(context.Background(), "1.1.1.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.one.one.one"}, names)
}

func TestSystemResolver_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind resolver.Kind
	}{
		{
			name:     "not found",
			err:      &net.DNSError{Err: "no such host", Name: "example.org", IsNotFound: true},
			wantKind: resolver.KindNotFound,
		},
		{
			name:     "timeout",
			err:      &net.DNSError{Err: "i/o timeout", Name: "example.org", IsTimeout: true},
			wantKind: resolver.KindTimeout,
		},
		{
			name:     "temporary",
			err:      &net.DNSError{Err: "server misbehaving", Name: "example.org", IsTemporary: true},
			wantKind: resolver.KindNetwork,
		},
		{
			name:     "network",
			err:      &net.OpError{Op: "dial", Net: "udp", Err: errors.New("connection refused")},
			wantKind: resolver.KindNetwork,
		},
		{
			name:     "unknown",
			err:      errors.New("malformed"),
			wantKind: resolver.KindProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolver.NewSystemResolver(resolver.WithHostResolver(&fakeHostResolver{err: tt.err}))

			_, err := r.Lookup(context.Background(), "example.org")

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, resolver.KindOf(err))
			assert.ErrorIs(t, err, tt.err)

			var resErr *resolver.ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, resolver.OpLookup, resErr.Op)
			assert.Equal(t, "example.org", resErr.Query)
		})
	}
}

func TestSystemResolver_EmptyAnswer(t *testing.T) {
	r := resolver.NewSystemResolver(resolver.WithHostResolver(&fakeHostResolver{}))

	_, err := r.Reverse(context.Background(), "192.0.2.1")

	assert.True(t, resolver.IsKind(err, resolver.KindNotFound))
}

func TestSystemResolver_Timeout(t *testing.T) {
	backend := &fakeHostResolver{block: make(chan struct{})}
	defer close(backend.block)
	r := resolver.NewSystemResolver(resolver.WithHostResolver(backend), resolver.WithSystemTimeout(5*time.Millisecond))

	start := time.Now()
	_, err := r.Lookup(context.Background(), "example.org")

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, resolver.IsKind(err, resolver.KindTimeout))
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestSystemResolver_Canceled(t *testing.T) {
	backend := &fakeHostResolver{block: make(chan struct{})}
	defer close(backend.block)
	r := resolver.NewSystemResolver(resolver.WithHostResolver(backend))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Lookup(ctx, "example.org")

	require.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, resolver.KindOf(err))
}
