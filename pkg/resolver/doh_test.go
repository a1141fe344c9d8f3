package resolver_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

type DoHTestSuite struct {
	suite.Suite
}

func TestDoHTestSuite(t *testing.T) {
	suite.Run(t, new(DoHTestSuite))
}

// dohServer answers DoH queries sent both via GET and POST and counts requests per HTTP method.
type dohServer struct {
	*httptest.Server
	gets  atomic.Int64
	posts atomic.Int64
	delay time.Duration
}

func newDoHServer(delay time.Duration) *dohServer {
	s := &dohServer{delay: delay}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var bd []byte
		var err error
		if r.Method == http.MethodGet {
			s.gets.Add(1)
			bd, err = base64.RawURLEncoding.DecodeString(r.URL.Query().Get("dns"))
		} else {
			s.posts.Add(1)
			bd, err = io.ReadAll(r.Body)
		}
		if err != nil {
			panic(err)
		}

		msg := dns.Msg{}
		if err := msg.Unpack(bd); err != nil {
			panic(err)
		}

		pack, err := answer(&msg).Pack()
		if err != nil {
			panic(err)
		}

		time.Sleep(s.delay)

		w.Header().Set("Content-Type", "application/dns-message")
		if _, err := w.Write(pack); err != nil {
			panic(err)
		}
	}))
	return s
}

func (suite *DoHTestSuite) TestLookup() {
	tests := []struct {
		method string
	}{
		{method: resolver.PostHTTPMethod},
		{method: resolver.GetHTTPMethod},
	}

	for _, tt := range tests {
		suite.Run(tt.method, func() {
			ts := newDoHServer(0)
			defer ts.Close()

			r, err := resolver.NewDoHResolver(ts.URL, resolver.WithMethod(tt.method), resolver.WithDoHCache(false))
			suite.Require().NoError(err)
			defer r.Close()

			addrs, err := r.Lookup(context.Background(), "example.org")

			suite.Require().NoError(err)
			suite.Equal([]string{"127.0.0.1", "::1"}, addrs)
			if tt.method == resolver.GetHTTPMethod {
				suite.Equal(int64(2), ts.gets.Load())
				suite.Equal(int64(0), ts.posts.Load())
			} else {
				suite.Equal(int64(0), ts.gets.Load())
				suite.Equal(int64(2), ts.posts.Load())
			}
		})
	}
}

func (suite *DoHTestSuite) TestReverse() {
	ts := newDoHServer(0)
	defer ts.Close()

	r, err := resolver.NewDoHResolver(ts.URL)
	suite.Require().NoError(err)
	defer r.Close()

	names, err := r.Reverse(context.Background(), "1.1.1.1")

	suite.Require().NoError(err)
	suite.Equal([]string{"one.one.one.one"}, names)
	suite.Equal(resolver.GetHTTPMethod, r.Method())
	suite.Equal(ts.URL+"/dns-query", r.Server())
}

func (suite *DoHTestSuite) TestNativeCache() {
	tests := []struct {
		name         string
		cache        bool
		wantRequests int64
	}{
		{name: "enabled", cache: true, wantRequests: 1},
		{name: "disabled", cache: false, wantRequests: 3},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			ts := newDoHServer(0)
			defer ts.Close()

			r, err := resolver.NewDoHResolver(ts.URL, resolver.WithDoHCache(tt.cache))
			suite.Require().NoError(err)
			defer r.Close()

			for range 3 {
				names, err := r.Reverse(context.Background(), "1.1.1.1")
				suite.Require().NoError(err)
				suite.Equal([]string{"one.one.one.one"}, names)
			}

			suite.Equal(tt.cache, r.CacheEnabled())
			suite.Equal(tt.wantRequests, ts.gets.Load())
		})
	}
}

func (suite *DoHTestSuite) TestNativeCacheReturnsCopies() {
	ts := newDoHServer(0)
	defer ts.Close()

	r, err := resolver.NewDoHResolver(ts.URL)
	suite.Require().NoError(err)
	defer r.Close()

	// AAAA question fails, the answer consists of the cached A records only
	first, err := r.Lookup(context.Background(), "v4only.example.org")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"127.0.0.2"}, first)
	first[0] = "192.0.2.1"

	second, err := r.Lookup(context.Background(), "v4only.example.org")
	suite.Require().NoError(err)
	suite.Equal([]string{"127.0.0.2"}, second)

	names, err := r.Reverse(context.Background(), "1.1.1.1")
	suite.Require().NoError(err)
	names[0] = "evil.example"

	names, err = r.Reverse(context.Background(), "1.1.1.1")
	suite.Require().NoError(err)
	suite.Equal([]string{"one.one.one.one"}, names)
}

func (suite *DoHTestSuite) TestNotFound() {
	ts := newDoHServer(0)
	defer ts.Close()

	r, err := resolver.NewDoHResolver(ts.URL, resolver.WithDoHTries(3))
	suite.Require().NoError(err)
	defer r.Close()

	_, err = r.Reverse(context.Background(), "192.0.2.1")

	suite.True(resolver.IsKind(err, resolver.KindNotFound))
	// negative answers are not retried
	suite.Equal(int64(1), ts.gets.Load())
}

func (suite *DoHTestSuite) TestServerErrors() {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "internal server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("garbage"))
			},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			var calls atomic.Int64
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}))
			defer ts.Close()

			r, err := resolver.NewDoHResolver(ts.URL, resolver.WithDoHTries(2))
			suite.Require().NoError(err)
			defer r.Close()

			_, err = r.Reverse(context.Background(), "1.1.1.1")

			suite.Require().Error(err)
			suite.NotEmpty(resolver.KindOf(err))
			suite.Equal(int64(2), calls.Load())
		})
	}
}

func (suite *DoHTestSuite) TestTimeout() {
	ts := newDoHServer(300 * time.Millisecond)
	defer ts.Close()

	r, err := resolver.NewDoHResolver(ts.URL, resolver.WithDoHTimeout(50*time.Millisecond))
	suite.Require().NoError(err)
	defer r.Close()

	start := time.Now()
	_, err = r.Reverse(context.Background(), "1.1.1.1")

	suite.Less(time.Since(start), 250*time.Millisecond)
	suite.True(resolver.IsKind(err, resolver.KindTimeout))
}

func TestNewDoHResolver_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		server string
		opts   []resolver.DoHOption
	}{
		{name: "not an URL", server: "1.1.1.1"},
		{name: "unsupported scheme", server: "ftp://1.1.1.1/dns-query"},
		{name: "unsupported method", server: resolver.DefaultDoHServer, opts: []resolver.DoHOption{resolver.WithMethod("PUT")}},
		{name: "unsupported protocol", server: resolver.DefaultDoHServer, opts: []resolver.DoHOption{resolver.WithProtocol("3.5")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.NewDoHResolver(tt.server, tt.opts...)

			require.Error(t, err)
		})
	}
}
