package transport

import (
	"context"

	"github.com/redleaf-labs/hopper/internal/payload"
)

// Transport defines the interface for notice payload destinations.
type Transport interface {
	Send(ctx context.Context, p payload.Payload) error
	Close() error
}
