package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redleaf-labs/hopper/internal/payload"
)

type capture struct {
	sent   int
	closed bool
	err    error
}

func (c *capture) Send(context.Context, payload.Payload) error {
	c.sent++
	return c.err
}

func (c *capture) Close() error {
	c.closed = true
	return c.err
}

func TestSendFansOutToAll(t *testing.T) {
	a, b := &capture{}, &capture{}
	m := New(a, b)

	require.NoError(t, m.Send(context.Background(), payload.Payload{}))

	assert.Equal(t, 1, a.sent)
	assert.Equal(t, 1, b.sent)
}

func TestFailingTransportDoesNotBlockOthers(t *testing.T) {
	a := &capture{err: errors.New("down")}
	b := &capture{}
	m := New(a, b)

	err := m.Send(context.Background(), payload.Payload{})

	assert.Error(t, err)
	assert.Equal(t, 1, b.sent)
}

func TestCloseClosesAll(t *testing.T) {
	a, b := &capture{}, &capture{}
	m := New(a, b)

	require.NoError(t, m.Close())

	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
