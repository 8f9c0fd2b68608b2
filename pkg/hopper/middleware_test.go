package hopper

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redleaf-labs/hopper/internal/model"
)

func TestMiddlewareReportsPanicWithRequestContext(t *testing.T) {
	n, tr := newTestNotifier(t)

	handler := n.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))

	form := url.Values{"password": {"hunter2"}, "user": {"ada"}}
	req := httptest.NewRequest(http.MethodPost, "https://app.example.com/login?next=%2Fhome",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "test-agent")

	assert.PanicsWithValue(t, "handler exploded", func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	require.Len(t, tr.payloads(), 1)
	p := tr.payloads()[0]

	assert.Equal(t, "panic: handler exploded", p.Error.Message)
	assert.Contains(t, p.Request.URL, "/login")

	assert.Equal(t, model.Filtered, p.Request.Params["password"])
	assert.Equal(t, "ada", p.Request.Params["user"])
	assert.Equal(t, "/home", p.Request.Params["next"])

	require.NotNil(t, p.Request.CGIData)
	assert.Equal(t, "POST", p.Request.CGIData["REQUEST_METHOD"])
	assert.Equal(t, "test-agent", p.Request.CGIData["HTTP_USER_AGENT"])
}

func TestMiddlewareWithholdsCredentialHeaders(t *testing.T) {
	n, tr := newTestNotifier(t)

	handler := n.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("x")
	}))

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	req.Header.Set("Cookie", "session=abc123")
	req.Header.Set("X-Api-Key", "k-42")
	req.Header.Set("User-Agent", "test-agent")

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	require.Len(t, tr.payloads(), 1)
	cgi := tr.payloads()[0].Request.CGIData
	assert.NotContains(t, cgi, "HTTP_AUTHORIZATION")
	assert.NotContains(t, cgi, "HTTP_COOKIE")
	assert.NotContains(t, cgi, "HTTP_X_API_KEY")
	assert.Equal(t, "test-agent", cgi["HTTP_USER_AGENT"])
}

func TestMiddlewarePassesThroughWithoutPanic(t *testing.T) {
	n, tr := newTestNotifier(t)

	handler := n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, tr.payloads())
}

func TestMiddlewareRepeatedQueryKeysKeepAllValues(t *testing.T) {
	n, tr := newTestNotifier(t)

	handler := n.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("x")
	}))

	req := httptest.NewRequest(http.MethodGet, "/search?tag=a&tag=b", nil)
	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	require.Len(t, tr.payloads(), 1)
	assert.Equal(t, []any{"a", "b"}, tr.payloads()[0].Request.Params["tag"])
}
