package source

import (
	"context"
	"net"
)

// DefaultPreflightHost is the hostname resolved before scraping when the
// request does not name one.
const DefaultPreflightHost = "www.linkedin.com"

// LookupFunc resolves a hostname. Production uses the system resolver;
// tests swap in a stub.
type LookupFunc func(ctx context.Context, host string) error

// DefaultLookup asks the system resolver for host.
func DefaultLookup(ctx context.Context, host string) error {
	_, err := net.DefaultResolver.LookupHost(ctx, host)
	return err
}
