// Package file appends notice payloads to a local NDJSON file. Paired
// with the collector transport it gives an on-host audit trail of every
// notice that left the process; on its own it is an offline spool.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/redleaf-labs/hopper/internal/payload"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Transport.
type Option func(*Transport)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(t *Transport) { t.maxSize = bytes }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(t *Transport) { t.bufSize = bytes }
}

// Transport writes NDJSON to a file with buffered I/O and optional
// size-based rotation.
type Transport struct {
	w       *bufio.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	maxSize int64 // 0 = no rotation
	written int64
	bufSize int
}

// New creates a file transport appending NDJSON to the given path.
func New(path string, opts ...Option) (*Transport, error) {
	t := &Transport{
		path:    path,
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.openFile(); err != nil {
		return nil, err
	}
	return t, nil
}

// Send JSON-encodes the payload and appends it as a line to the file.
func (t *Transport) Send(_ context.Context, p payload.Payload) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("file transport: marshal: %w", err)
	}
	data = append(data, '\n')

	if t.maxSize > 0 && t.written+int64(len(data)) > t.maxSize {
		if err := t.rotate(); err != nil {
			return fmt.Errorf("file transport: rotate: %w", err)
		}
	}

	n, err := t.w.Write(data)
	t.written += int64(n)
	if err != nil {
		return fmt.Errorf("file transport: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		return fmt.Errorf("file transport: flush: %w", err)
	}
	return t.f.Close()
}

// openFile opens (or creates) the file and wraps it in a bufio.Writer.
func (t *Transport) openFile() error {
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("file transport: open %s: %w", t.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file transport: stat %s: %w", t.path, err)
	}
	t.f = f
	t.w = bufio.NewWriterSize(f, t.bufSize)
	t.written = info.Size()
	return nil
}

// rotate flushes, closes the current file, renames it to {path}.1
// (shifting existing rotated files), and opens a new file.
func (t *Transport) rotate() error {
	if err := t.w.Flush(); err != nil {
		return err
	}
	if err := t.f.Close(); err != nil {
		return err
	}

	// Shift existing rotated files: .2 → .3, .1 → .2, current → .1
	for i := 9; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", t.path, i)
		to := fmt.Sprintf("%s.%d", t.path, i+1)
		os.Rename(from, to) // ignore errors — file may not exist
	}
	if err := os.Rename(t.path, t.path+".1"); err != nil {
		return err
	}

	t.written = 0
	return t.openFile()
}
