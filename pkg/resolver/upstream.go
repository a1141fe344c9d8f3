package resolver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
)

// ErrNoServers is returned by UpstreamResolver when no upstream servers are configured.
var ErrNoServers = errors.New("no upstream servers configured")

// UpstreamResolver sends plain DNS queries to an explicit list of upstream servers.
type UpstreamResolver struct {
	servers   []string
	timeout   time.Duration
	tries     int
	transport string

	client    *dns.Client
	tcpClient *dns.Client
}

var _ Resolver = &UpstreamResolver{}

// UpstreamOption configures UpstreamResolver.
type UpstreamOption func(*UpstreamResolver)

// WithServers sets upstream servers, port 53 is used for servers without port.
func WithServers(servers ...string) UpstreamOption {
	return func(r *UpstreamResolver) {
		r.servers = append([]string(nil), servers...)
	}
}

// WithUpstreamTimeout sets deadline of a single resolution, including all tries.
func WithUpstreamTimeout(timeout time.Duration) UpstreamOption {
	return func(r *UpstreamResolver) {
		r.timeout = timeout
	}
}

// WithTries sets how many times each server is tried, 1 means no retry.
func WithTries(tries int) UpstreamOption {
	return func(r *UpstreamResolver) {
		r.tries = tries
	}
}

// WithTransport sets the network used for queries, UDPTransport or TCPTransport.
func WithTransport(transport string) UpstreamOption {
	return func(r *UpstreamResolver) {
		r.transport = transport
	}
}

// NewUpstreamResolver creates UpstreamResolver, by default querying DefaultServers over UDP.
func NewUpstreamResolver(opts ...UpstreamOption) *UpstreamResolver {
	r := &UpstreamResolver{
		servers:   DefaultServers,
		timeout:   DefaultTimeout,
		tries:     DefaultTries,
		transport: UDPTransport,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tries < 1 {
		r.tries = 1
	}

	servers := make([]string, 0, len(r.servers))
	for _, s := range r.servers {
		servers = append(servers, addPortIfMissing(s))
	}
	r.servers = servers

	r.client = &dns.Client{Net: r.transport, Timeout: r.timeout}
	r.tcpClient = &dns.Client{Net: TCPTransport, Timeout: r.timeout}
	return r
}

// Servers returns upstream servers in the order they are queried.
func (r *UpstreamResolver) Servers() []string {
	return append([]string(nil), r.servers...)
}

// Lookup implements Resolver.Lookup.
func (r *UpstreamResolver) Lookup(ctx context.Context, host string) ([]string, error) {
	return runWithTimeout(ctx, r.timeout, OpLookup, host, func(ctx context.Context) ([]string, error) {
		return lookupBoth(ctx, host, func(ctx context.Context, name string, qtype uint16) ([]string, uint32, error) {
			return r.exchange(ctx, OpLookup, host, name, qtype)
		})
	})
}

// Reverse implements Resolver.Reverse.
func (r *UpstreamResolver) Reverse(ctx context.Context, addr string) ([]string, error) {
	name, err := reverseName(addr)
	if err != nil {
		return nil, err
	}
	return runWithTimeout(ctx, r.timeout, OpReverse, addr, func(ctx context.Context) ([]string, error) {
		values, _, err := r.exchange(ctx, OpReverse, addr, name, dns.TypePTR)
		return values, err
	})
}

func (r *UpstreamResolver) exchange(ctx context.Context, op, query, name string, qtype uint16) ([]string, uint32, error) {
	if len(r.servers) == 0 {
		return nil, 0, newError(KindNetwork, op, query, ErrNoServers)
	}

	var lastErr error
	for try := 0; try < r.tries; try++ {
		for _, server := range r.servers {
			if err := ctx.Err(); err != nil {
				return nil, 0, wrapError(op, query, err)
			}
			values, ttl, err := r.exchangeWithServer(ctx, op, query, server, name, qtype)
			if err == nil {
				return values, ttl, nil
			}
			if IsKind(err, KindNotFound) {
				// negative answers are authoritative, asking another server would not change it
				return nil, 0, err
			}
			lastErr = err
		}
	}
	return nil, 0, lastErr
}

func (r *UpstreamResolver) exchangeWithServer(ctx context.Context, op, query, server, name string, qtype uint16) ([]string, uint32, error) {
	msg := newQuery(name, qtype)
	resp, _, err := r.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, 0, wrapError(op, query, err)
	}
	if resp.Truncated && r.transport == UDPTransport {
		resp, _, err = r.tcpClient.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, 0, wrapError(op, query, err)
		}
	}
	if resp.Id != msg.Id {
		return nil, 0, newError(KindProtocol, op, query, dns.ErrId)
	}
	return parseAnswer(op, query, resp, qtype)
}

func addPortIfMissing(server string) string {
	if _, _, err := net.SplitHostPort(server); err != nil {
		return net.JoinHostPort(server, "53")
	}
	return server
}
