package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redleaf-labs/hopper/internal/payload"
)

func testPayload() payload.Payload {
	var p payload.Payload
	p.Error.Class = "RuntimeError"
	p.Error.Message = "RuntimeError: boom"
	p.Request.Params = map[string]any{"id": "1"}
	return p
}

func TestNewValidatesEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		apiKey   string
	}{
		{"bad scheme", "ftp://example.com", "k"},
		{"no host", "https://", "k"},
		{"no api key", "https://example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.endpoint, tt.apiKey)
			assert.Error(t, err)
		})
	}
}

func TestSendPostsNoticeWithAuth(t *testing.T) {
	var gotPath, gotKey, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr, err := New(srv.URL, "secret-key")
	require.NoError(t, err)

	require.NoError(t, tr.Send(context.Background(), testPayload()))

	assert.Equal(t, "/v3/notices", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotType)
	require.Contains(t, gotBody, "error")
}

func TestSendRetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr, err := New(srv.URL, "k")
	require.NoError(t, err)

	require.NoError(t, tr.Send(context.Background(), testPayload()))
	assert.Equal(t, 2, attempts)
}

func TestSendDoesNotRetryOn4xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	tr, err := New(srv.URL, "k")
	require.NoError(t, err)

	err = tr.Send(context.Background(), testPayload())

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSendHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr, err := New(srv.URL, "k")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = tr.Send(ctx, testPayload())

	assert.ErrorIs(t, err, context.Canceled)
}
