package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// exchangeFunc sends a single question and returns the answer converted to strings.
type exchangeFunc func(ctx context.Context, name string, qtype uint16) ([]string, uint32, error)

func newQuery(name string, qtype uint16) *dns.Msg {
	m := dns.Msg{}
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true
	m.SetEdns0(DefaultEdns0BufferSize, false)
	return &m
}

// parseAnswer extracts records of qtype from the response together with the lowest TTL among them.
func parseAnswer(op, query string, resp *dns.Msg, qtype uint16) ([]string, uint32, error) {
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, 0, newError(KindNotFound, op, query, errors.New(dns.RcodeToString[resp.Rcode]))
	default:
		return nil, 0, newError(KindProtocol, op, query,
			fmt.Errorf("server responded with %s", dns.RcodeToString[resp.Rcode]))
	}

	var values []string
	var ttl uint32
	for _, rr := range resp.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		switch v := rr.(type) {
		case *dns.A:
			values = append(values, v.A.String())
		case *dns.AAAA:
			values = append(values, v.AAAA.String())
		case *dns.PTR:
			values = append(values, strings.TrimSuffix(v.Ptr, "."))
		default:
			continue
		}
		if ttl == 0 || rr.Header().Ttl < ttl {
			ttl = rr.Header().Ttl
		}
	}
	if len(values) == 0 {
		return nil, 0, newError(KindNotFound, op, query, errors.New("no records in answer"))
	}
	return values, ttl, nil
}

// lookupBoth asks for A and AAAA records concurrently and merges them, IPv4 first. The lookup fails
// only when both questions fail, in that case the error of the A question is returned.
func lookupBoth(ctx context.Context, host string, exchange exchangeFunc) ([]string, error) {
	var (
		g          errgroup.Group
		v4, v6     []string
		err4, err6 error
	)
	g.Go(func() error {
		v4, _, err4 = exchange(ctx, host, dns.TypeA)
		return nil
	})
	g.Go(func() error {
		v6, _, err6 = exchange(ctx, host, dns.TypeAAAA)
		return nil
	})
	_ = g.Wait()

	if err4 != nil && err6 != nil {
		return nil, err4
	}
	return append(slices.Clone(v4), v6...), nil
}

func reverseName(addr string) (string, error) {
	name, err := dns.ReverseAddr(addr)
	if err != nil {
		return "", newError(KindProtocol, OpReverse, addr, err)
	}
	return name, nil
}
