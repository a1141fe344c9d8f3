package resolver

import (
	"time"
)

const (
	// DefaultTimeout is a default timeout of a single resolution.
	DefaultTimeout = 5 * time.Second

	// DefaultTries is a default number of tries, 1 means no retry.
	DefaultTries = 1

	// DefaultDoHServer is a default DoH endpoint.
	DefaultDoHServer = "https://1.1.1.1/dns-query"

	// DefaultEdns0BufferSize default EDNS0 buffer size according to the http://www.dnsflagday.net/2020/
	DefaultEdns0BufferSize = 1232

	// GetHTTPMethod represents GET HTTP Method for DoH.
	GetHTTPMethod = "GET"

	// PostHTTPMethod represents POST HTTP Method for DoH.
	PostHTTPMethod = "POST"

	// HTTP1Proto represents HTTP/1.1 protocol for DoH.
	HTTP1Proto = "1.1"

	// HTTP2Proto represents HTTP/2 protocol for DoH.
	HTTP2Proto = "2"

	// HTTP3Proto represents HTTP/3 protocol for DoH.
	HTTP3Proto = "3"

	// UDPTransport represents plain DNS over UDP.
	UDPTransport = "udp"

	// TCPTransport represents plain DNS over TCP.
	TCPTransport = "tcp"
)

// DefaultServers are the upstream servers used when none are configured.
var DefaultServers = []string{"1.1.1.1", "1.0.0.1"}
