package multi

import (
	"context"
	"errors"

	"github.com/redleaf-labs/hopper/internal/payload"
	"github.com/redleaf-labs/hopper/internal/transport"
)

// Multi fans one payload out to several transports sequentially. A failing
// transport does not stop the rest from receiving the notice.
type Multi struct {
	transports []transport.Transport
}

// New creates a Multi over the given transports.
func New(transports ...transport.Transport) *Multi {
	return &Multi{transports: transports}
}

// Send delivers to every transport, collecting errors.
func (m *Multi) Send(ctx context.Context, p payload.Payload) error {
	var errs []error
	for _, t := range m.transports {
		if err := t.Send(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, t := range m.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
