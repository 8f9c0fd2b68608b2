package hopper

import "github.com/redleaf-labs/hopper/internal/notice"

// NoticeOption attaches per-report context to a notice.
type NoticeOption func(*notice.Args)

// WithURL sets the request URL.
func WithURL(url string) NoticeOption {
	return func(a *notice.Args) { a.URL = url }
}

// WithComponent sets the component (controller) name. Without it, the
// "controller" params key is used when present.
func WithComponent(name string) NoticeOption {
	return func(a *notice.Args) { a.Component = name }
}

// WithAction sets the action name. Without it, the "action" params key is
// used when present.
func WithAction(name string) NoticeOption {
	return func(a *notice.Args) { a.Action = name }
}

// WithParams attaches request parameters. Values may be arbitrarily
// nested, cyclic or opaque; sanitization handles them all.
func WithParams(params map[string]any) NoticeOption {
	return func(a *notice.Args) { a.Params = params }
}

// WithSession attaches session data.
func WithSession(session map[string]any) NoticeOption {
	return func(a *notice.Args) { a.Session = session }
}

// WithSessionData attaches session data, taking precedence over
// WithSession.
func WithSessionData(data map[string]any) NoticeOption {
	return func(a *notice.Args) { a.SessionData = data }
}

// WithCGIData attaches environment data (headers, server variables).
func WithCGIData(data map[string]any) NoticeOption {
	return func(a *notice.Args) { a.CGIData = data }
}

// WithUser attaches an opaque user descriptor, passed through to the
// payload unmodified.
func WithUser(user any) NoticeOption {
	return func(a *notice.Args) { a.User = user }
}

// WithBacktrace supplies an explicit backtrace, used when the error does
// not carry its own stack.
func WithBacktrace(lines ...string) NoticeOption {
	return func(a *notice.Args) { a.Backtrace = lines }
}

// WithErrorClass overrides the derived class name when reporting without
// an error value.
func WithErrorClass(class string) NoticeOption {
	return func(a *notice.Args) { a.ErrorClass = class }
}

// WithErrorMessage overrides the message when reporting without an error
// value.
func WithErrorMessage(message string) NoticeOption {
	return func(a *notice.Args) { a.ErrorMessage = message }
}
