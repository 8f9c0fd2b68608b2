// Package async decouples Notify from delivery latency with a buffered
// channel and a background drain goroutine.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/redleaf-labs/hopper/internal/payload"
	"github.com/redleaf-labs/hopper/internal/transport"
)

const (
	defaultBufferSize   = 64
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 64.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithLogger sets the diagnostic logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(a *Async) { a.logger = l }
}

// WithBlockOnFull makes Send block when the buffer is full instead of
// dropping the notice. Dropping is the default: a reporting client must
// not stall its host application because the collector is slow.
func WithBlockOnFull() Option {
	return func(a *Async) { a.blockOnFull = true }
}

// Async wraps a transport in a channel-based sender. Send enqueues and
// returns immediately; a background goroutine performs the deliveries.
// Delivery errors are logged, never propagated to the notifying caller.
type Async struct {
	inner       transport.Transport
	logger      *zap.Logger
	ch          chan payload.Payload
	done        chan struct{}
	bufSize     int
	blockOnFull bool
	closeOnce   sync.Once

	mu     sync.RWMutex
	closed bool
}

// New wraps a transport; the drain goroutine starts immediately.
func New(inner transport.Transport, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		logger:  zap.NewNop(),
		bufSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan payload.Payload, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Send enqueues the payload. When the buffer is full the payload is
// dropped (unless WithBlockOnFull), and the drop is logged. Send after
// Close is an error, never a panic.
func (a *Async) Send(_ context.Context, p payload.Payload) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errors.New("async: transport closed")
	}
	if a.blockOnFull {
		a.ch <- p
		return nil
	}
	select {
	case a.ch <- p:
	default:
		a.logger.Warn("notice buffer full, dropping notice",
			zap.String("class", p.Error.Class))
	}
	return nil
}

// Close stops accepting payloads, waits for the drain goroutine (with a
// timeout), then closes the inner transport.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			a.logger.Warn("notice drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for p := range a.ch {
		if err := a.inner.Send(context.Background(), p); err != nil {
			a.logger.Warn("notice delivery failed", zap.Error(err))
		}
	}
}
