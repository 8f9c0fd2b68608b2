// Package writer sends notice payloads to an io.Writer as JSON. It backs
// the CLI's --dry-run mode and is the zero-configuration default, so an
// unconfigured notifier is observable instead of silent.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/redleaf-labs/hopper/internal/payload"
)

// Transport writes JSON-encoded payloads to a writer.
type Transport struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// New creates a writer transport. With pretty set, output is indented.
func New(w io.Writer, pretty bool) *Transport {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Transport{enc: enc}
}

func (t *Transport) Send(_ context.Context, p payload.Payload) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enc.Encode(p); err != nil {
		return fmt.Errorf("writer transport: %w", err)
	}
	return nil
}

func (t *Transport) Close() error {
	return nil
}
