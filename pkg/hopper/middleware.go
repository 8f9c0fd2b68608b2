package hopper

import (
	"net/http"
	"strings"
)

// Middleware reports panics escaping the wrapped handler, attaching the
// request's parameters and CGI-style environment to the notice, then
// re-raises so the server's own panic handling still runs. Form values go
// through the same sanitize/redact pass as any other params, so
// passwords posted in a login form never leave the process.
func (n *Notifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				n.NotifyPanic(v,
					WithURL(requestURL(r)),
					WithParams(requestParams(r)),
					WithCGIData(requestCGIData(r)),
				)
				panic(v)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// requestParams flattens query and form values. Single-valued entries
// (the overwhelmingly common case) become plain strings; repeated keys
// keep all values.
func requestParams(r *http.Request) map[string]any {
	r.ParseForm()
	if len(r.Form) == 0 {
		return map[string]any{}
	}
	params := make(map[string]any, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) == 1 {
			params[k] = vs[0]
			continue
		}
		many := make([]any, len(vs))
		for i, v := range vs {
			many[i] = v
		}
		params[k] = many
	}
	return params
}

// sensitiveHeaders never leave the process. Their values are credentials
// rather than request metadata, and keeping them out of a notice must not
// depend on filter configuration.
var sensitiveHeaders = map[string]struct{}{
	"Authorization":       {},
	"Proxy-Authorization": {},
	"Cookie":              {},
	"X-Api-Key":           {},
	"X-Csrf-Token":        {},
}

// requestCGIData renders request metadata in CGI variable style, the
// shape the collector's cgi_data section expects. Credential headers are
// withheld entirely.
func requestCGIData(r *http.Request) map[string]any {
	data := map[string]any{
		"REQUEST_METHOD": r.Method,
		"REMOTE_ADDR":    r.RemoteAddr,
		"SERVER_NAME":    r.Host,
	}
	for name, vs := range r.Header {
		if len(vs) == 0 {
			continue
		}
		if _, skip := sensitiveHeaders[name]; skip {
			continue
		}
		data[cgiHeaderName(name)] = strings.Join(vs, ", ")
	}
	return data
}

func cgiHeaderName(name string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
