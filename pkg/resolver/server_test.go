package resolver_test

import (
	"github.com/miekg/dns"
)

// Server represents simple DNS server.
type Server struct {
	Addr  string
	inner *dns.Server
}

// Close shuts down running DNS server instance.
func (s *Server) Close() {
	s.inner.Shutdown()
}

// NewServer creates and starts new DNS server instance.
func NewServer(network string, f dns.HandlerFunc) *Server {
	ch := make(chan bool)
	s := &dns.Server{Net: network, Addr: "127.0.0.1:0", NotifyStartedFunc: func() { close(ch) }, Handler: f}

	go func() {
		if err := s.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	<-ch
	server := Server{inner: s}
	if network == "udp" {
		server.Addr = s.PacketConn.LocalAddr().String()
	} else {
		server.Addr = s.Listener.Addr().String()
	}
	return &server
}

// answer builds a reply for the well known names used by the tests.
func answer(r *dns.Msg) *dns.Msg {
	ret := new(dns.Msg)
	ret.SetReply(r)
	q := r.Question[0]
	switch q.Name {
	case "example.org.":
		switch q.Qtype {
		case dns.TypeA:
			ret.Answer = append(ret.Answer, A("example.org. 60 IN A 127.0.0.1"))
		case dns.TypeAAAA:
			ret.Answer = append(ret.Answer, AAAA("example.org. 30 IN AAAA ::1"))
		}
	case "v4only.example.org.":
		if q.Qtype == dns.TypeA {
			ret.Answer = append(ret.Answer, A("v4only.example.org. 60 IN A 127.0.0.2"))
		}
	case "1.1.1.1.in-addr.arpa.":
		if q.Qtype == dns.TypePTR {
			ret.Answer = append(ret.Answer, PTR("1.1.1.1.in-addr.arpa. 60 IN PTR one.one.one.one."))
		}
	case "servfail.example.org.":
		ret.Rcode = dns.RcodeServerFailure
	default:
		ret.Rcode = dns.RcodeNameError
	}
	return ret
}

// A creates an A RR from string.
func A(rr string) *dns.A { r, _ := dns.NewRR(rr); return r.(*dns.A) }

// AAAA creates an AAAA RR from string.
func AAAA(rr string) *dns.AAAA { r, _ := dns.NewRR(rr); return r.(*dns.AAAA) }

// PTR creates a PTR RR from string.
func PTR(rr string) *dns.PTR { r, _ := dns.NewRR(rr); return r.(*dns.PTR) }
