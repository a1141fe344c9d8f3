package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Resolver is the capability every benchmarked resolution backend provides.
type Resolver interface {
	// Lookup resolves hostname to the set of its addresses.
	Lookup(ctx context.Context, host string) ([]string, error)
	// Reverse resolves address to the set of hostnames pointing to it.
	Reverse(ctx context.Context, addr string) ([]string, error)
}

// Kind classifies resolution failures.
type Kind string

const (
	// KindTimeout means the operation exceeded the configured deadline.
	KindTimeout Kind = "timeout"
	// KindNotFound means the resolver gave an authoritative negative answer.
	KindNotFound Kind = "notFound"
	// KindNetwork means the transport failed.
	KindNetwork Kind = "network"
	// KindProtocol means the response was malformed or unusable.
	KindProtocol Kind = "protocol"
)

const (
	// OpLookup is the forward lookup operation.
	OpLookup = "lookup"
	// OpReverse is the reverse lookup operation.
	OpReverse = "reverse"
)

// ResolutionError is returned by all Resolver implementations in this package.
type ResolutionError struct {
	Kind  Kind
	Op    string
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Query, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Query, e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error is of KindTimeout, so ResolutionError satisfies net.Error style checks.
func (e *ResolutionError) Timeout() bool {
	return e.Kind == KindTimeout
}

// Temporary reports whether retrying the operation may succeed.
func (e *ResolutionError) Temporary() bool {
	return e.Kind == KindTimeout || e.Kind == KindNetwork
}

// KindOf returns the Kind of the first ResolutionError in err's chain, or empty string if there is none.
func KindOf(err error) Kind {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Kind
	}
	return ""
}

// IsKind reports whether err carries a ResolutionError of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func newError(kind Kind, op, query string, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, Op: op, Query: query, Err: err}
}

// wrapError converts an arbitrary error from a backend into a ResolutionError,
// errors that already are ResolutionError are returned untouched.
func wrapError(op, query string, err error) error {
	if err == nil {
		return nil
	}
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return err
	}
	return newError(classify(err), op, query, err)
}

func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsTimeout:
			return KindTimeout
		case dnsErr.IsNotFound:
			return KindNotFound
		case dnsErr.IsTemporary:
			return KindNetwork
		default:
			return KindProtocol
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	return KindProtocol
}
