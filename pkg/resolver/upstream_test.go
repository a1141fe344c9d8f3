package resolver_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

func TestUpstreamResolver(t *testing.T) {
	tests := []struct {
		name      string
		transport string
	}{
		{name: "udp", transport: resolver.UDPTransport},
		{name: "tcp", transport: resolver.TCPTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(tt.transport, func(w dns.ResponseWriter, r *dns.Msg) {
				_ = w.WriteMsg(answer(r))
			})
			defer server.Close()

			r := resolver.NewUpstreamResolver(resolver.WithServers(server.Addr), resolver.WithTransport(tt.transport))

			addrs, err := r.Lookup(context.Background(), "example.org")
			require.NoError(t, err)
			assert.Equal(t, []string{"127.0.0.1", "::1"}, addrs)

			addrs, err = r.Lookup(context.Background(), "v4only.example.org")
			require.NoError(t, err)
			assert.Equal(t, []string{"127.0.0.2"}, addrs)

			names, err := r.Reverse(context.Background(), "1.1.1.1")
			require.NoError(t, err)
			assert.Equal(t, []string{"one.one.one.one"}, names)
		})
	}
}

func TestUpstreamResolver_Errors(t *testing.T) {
	server := NewServer(resolver.UDPTransport, func(w dns.ResponseWriter, r *dns.Msg) {
		_ = w.WriteMsg(answer(r))
	})
	defer server.Close()

	r := resolver.NewUpstreamResolver(resolver.WithServers(server.Addr))

	_, err := r.Lookup(context.Background(), "unknown.example.org")
	assert.True(t, resolver.IsKind(err, resolver.KindNotFound))

	_, err = r.Lookup(context.Background(), "servfail.example.org")
	assert.True(t, resolver.IsKind(err, resolver.KindProtocol))
	assert.ErrorContains(t, err, "SERVFAIL")

	_, err = r.Reverse(context.Background(), "not-an-address")
	assert.True(t, resolver.IsKind(err, resolver.KindProtocol))
}

func TestUpstreamResolver_FallbackToNextServer(t *testing.T) {
	var failingCalls atomic.Int64
	failing := NewServer(resolver.UDPTransport, func(w dns.ResponseWriter, r *dns.Msg) {
		failingCalls.Add(1)
		ret := new(dns.Msg)
		ret.SetRcode(r, dns.RcodeServerFailure)
		_ = w.WriteMsg(ret)
	})
	defer failing.Close()
	working := NewServer(resolver.UDPTransport, func(w dns.ResponseWriter, r *dns.Msg) {
		_ = w.WriteMsg(answer(r))
	})
	defer working.Close()

	r := resolver.NewUpstreamResolver(resolver.WithServers(failing.Addr, working.Addr))

	names, err := r.Reverse(context.Background(), "1.1.1.1")

	require.NoError(t, err)
	assert.Equal(t, []string{"one.one.one.one"}, names)
	assert.Equal(t, int64(1), failingCalls.Load())
}

func TestUpstreamResolver_Tries(t *testing.T) {
	tests := []struct {
		name      string
		tries     int
		wantErr   bool
		wantCalls int64
	}{
		{name: "single try", tries: 1, wantErr: true, wantCalls: 1},
		{name: "retry", tries: 2, wantErr: false, wantCalls: 2},
		{name: "tries below one", tries: 0, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			server := NewServer(resolver.UDPTransport, func(w dns.ResponseWriter, r *dns.Msg) {
				if calls.Add(1) == 1 {
					ret := new(dns.Msg)
					ret.SetRcode(r, dns.RcodeServerFailure)
					_ = w.WriteMsg(ret)
					return
				}
				_ = w.WriteMsg(answer(r))
			})
			defer server.Close()

			r := resolver.NewUpstreamResolver(resolver.WithServers(server.Addr), resolver.WithTries(tt.tries))

			_, err := r.Reverse(context.Background(), "1.1.1.1")

			if tt.wantErr {
				assert.True(t, resolver.IsKind(err, resolver.KindProtocol))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestUpstreamResolver_Timeout(t *testing.T) {
	server := NewServer(resolver.UDPTransport, func(w dns.ResponseWriter, r *dns.Msg) {
		time.Sleep(300 * time.Millisecond)
		_ = w.WriteMsg(answer(r))
	})
	defer server.Close()

	r := resolver.NewUpstreamResolver(resolver.WithServers(server.Addr), resolver.WithUpstreamTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := r.Lookup(context.Background(), "example.org")

	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.True(t, resolver.IsKind(err, resolver.KindTimeout))
}

func TestUpstreamResolver_NoServers(t *testing.T) {
	r := resolver.NewUpstreamResolver(resolver.WithServers())

	_, err := r.Lookup(context.Background(), "example.org")

	require.ErrorIs(t, err, resolver.ErrNoServers)
	assert.True(t, resolver.IsKind(err, resolver.KindNetwork))
}

func TestNewUpstreamResolver_Defaults(t *testing.T) {
	r := resolver.NewUpstreamResolver()

	assert.Equal(t, []string{"1.1.1.1:53", "1.0.0.1:53"}, r.Servers())
}
