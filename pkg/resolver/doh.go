package resolver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/miekg/dns"
	"github.com/quic-go/quic-go/http3"
	"github.com/tantalor93/doh-go/doh"
	"golang.org/x/net/http2"
)

// DoHResolver resolves names using DNS over HTTPS. Unless disabled, answers are kept in a native
// cache honoring record TTLs, this cache is independent of the Cached wrapper.
type DoHResolver struct {
	server   string
	timeout  time.Duration
	tries    int
	method   string
	protocol string
	insecure bool
	useCache bool

	send  func(context.Context, *dns.Msg) (*dns.Msg, error)
	cache *ristretto.Cache[string, []string]
}

var _ Resolver = &DoHResolver{}

// DoHOption configures DoHResolver.
type DoHOption func(*DoHResolver)

// WithDoHTimeout sets deadline of a single resolution, including all tries.
func WithDoHTimeout(timeout time.Duration) DoHOption {
	return func(r *DoHResolver) {
		r.timeout = timeout
	}
}

// WithDoHTries sets how many times a failed request is attempted, 1 means no retry.
func WithDoHTries(tries int) DoHOption {
	return func(r *DoHResolver) {
		r.tries = tries
	}
}

// WithMethod sets HTTP method used for DoH requests, GetHTTPMethod or PostHTTPMethod.
func WithMethod(method string) DoHOption {
	return func(r *DoHResolver) {
		r.method = strings.ToUpper(method)
	}
}

// WithProtocol sets HTTP protocol used for DoH requests, HTTP1Proto, HTTP2Proto or HTTP3Proto.
func WithProtocol(protocol string) DoHOption {
	return func(r *DoHResolver) {
		r.protocol = protocol
	}
}

// WithDoHCache toggles the native TTL based cache.
func WithDoHCache(enabled bool) DoHOption {
	return func(r *DoHResolver) {
		r.useCache = enabled
	}
}

// WithInsecure disables server TLS certificate validation.
func WithInsecure(insecure bool) DoHOption {
	return func(r *DoHResolver) {
		r.insecure = insecure
	}
}

// NewDoHResolver creates DoHResolver sending requests to the given server URL. If the URL has no path,
// the standard /dns-query path is used. By default GET over HTTP/1.1 with native cache enabled is used.
func NewDoHResolver(server string, opts ...DoHOption) (*DoHResolver, error) {
	r := &DoHResolver{
		server:   server,
		timeout:  DefaultTimeout,
		tries:    DefaultTries,
		method:   GetHTTPMethod,
		protocol: HTTP1Proto,
		useCache: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tries < 1 {
		r.tries = 1
	}

	parsedURL, err := url.ParseRequestURI(r.server)
	if err != nil {
		return nil, fmt.Errorf("invalid DoH server URL '%s': %w", r.server, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid DoH server URL '%s': unsupported scheme '%s'", r.server, parsedURL.Scheme)
	}
	if parsedURL.Path == "" || parsedURL.Path == "/" {
		parsedURL.Path = "/dns-query"
		r.server = parsedURL.String()
	}

	tr, err := r.transport()
	if err != nil {
		return nil, err
	}
	c := http.Client{Transport: tr, Timeout: r.timeout}
	dohClient := doh.NewClient(r.server, doh.WithHTTPClient(&c))

	switch r.method {
	case PostHTTPMethod:
		r.send = dohClient.SendViaPost
	case GetHTTPMethod:
		r.send = dohClient.SendViaGet
	default:
		return nil, fmt.Errorf("unsupported DoH method '%s'", r.method)
	}

	if r.useCache {
		r.cache, err = ristretto.NewCache(&ristretto.Config[string, []string]{
			NumCounters: 1e5,
			MaxCost:     1e4,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DoH cache: %w", err)
		}
	}
	return r, nil
}

func (r *DoHResolver) transport() (http.RoundTripper, error) {
	// nolint:gosec
	tlsConfig := &tls.Config{InsecureSkipVerify: r.insecure}
	switch r.protocol {
	case HTTP3Proto:
		return &http3.RoundTripper{TLSClientConfig: tlsConfig}, nil
	case HTTP2Proto:
		return &http2.Transport{TLSClientConfig: tlsConfig}, nil
	case HTTP1Proto, "":
		return &http.Transport{TLSClientConfig: tlsConfig}, nil
	default:
		return nil, fmt.Errorf("unsupported DoH protocol '%s'", r.protocol)
	}
}

// Server returns URL the requests are sent to.
func (r *DoHResolver) Server() string {
	return r.server
}

// Method returns HTTP method used for requests.
func (r *DoHResolver) Method() string {
	return r.method
}

// CacheEnabled reports whether the native cache is used.
func (r *DoHResolver) CacheEnabled() bool {
	return r.useCache
}

// Lookup implements Resolver.Lookup.
func (r *DoHResolver) Lookup(ctx context.Context, host string) ([]string, error) {
	return runWithTimeout(ctx, r.timeout, OpLookup, host, func(ctx context.Context) ([]string, error) {
		return lookupBoth(ctx, host, func(ctx context.Context, name string, qtype uint16) ([]string, uint32, error) {
			return r.exchange(ctx, OpLookup, host, name, qtype)
		})
	})
}

// Reverse implements Resolver.Reverse.
func (r *DoHResolver) Reverse(ctx context.Context, addr string) ([]string, error) {
	name, err := reverseName(addr)
	if err != nil {
		return nil, err
	}
	return runWithTimeout(ctx, r.timeout, OpReverse, addr, func(ctx context.Context) ([]string, error) {
		values, _, err := r.exchange(ctx, OpReverse, addr, name, dns.TypePTR)
		return values, err
	})
}

// Close releases resources held by the native cache.
func (r *DoHResolver) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

func (r *DoHResolver) exchange(ctx context.Context, op, query, name string, qtype uint16) ([]string, uint32, error) {
	key := cacheKey(name, qtype)
	if r.cache != nil {
		if values, ok := r.cache.Get(key); ok {
			return slices.Clone(values), 0, nil
		}
	}

	var lastErr error
	for try := 0; try < r.tries; try++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, wrapError(op, query, err)
		}
		values, ttl, err := r.exchangeOnce(ctx, op, query, name, qtype)
		if err == nil {
			if r.cache != nil && ttl > 0 {
				r.cache.SetWithTTL(key, slices.Clone(values), 1, time.Duration(ttl)*time.Second)
				r.cache.Wait()
			}
			return values, ttl, nil
		}
		if IsKind(err, KindNotFound) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func (r *DoHResolver) exchangeOnce(ctx context.Context, op, query, name string, qtype uint16) ([]string, uint32, error) {
	msg := newQuery(name, qtype)
	// RFC 8484 recommends ID 0 for cache friendliness
	msg.Id = 0
	resp, err := r.send(ctx, msg)
	if err != nil {
		return nil, 0, wrapError(op, query, err)
	}
	return parseAnswer(op, query, resp, qtype)
}

func cacheKey(name string, qtype uint16) string {
	return dns.TypeToString[qtype] + " " + dns.Fqdn(name)
}
