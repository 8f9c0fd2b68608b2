package hopper

import (
	"io"

	"go.uber.org/zap"

	"github.com/redleaf-labs/hopper/internal/config"
	"github.com/redleaf-labs/hopper/internal/model"
	"github.com/redleaf-labs/hopper/internal/notice"
	"github.com/redleaf-labs/hopper/internal/transport/writer"
)

type options struct {
	apiKey      string
	endpoint    string
	environment string
	projectRoot string
	hostname    string

	paramsFilters    []string
	ignoreClasses    []string
	ignorePredicates []notice.Predicate

	notifier     model.NotifierInfo
	logger       *zap.Logger
	transport    Transport
	synchronous  bool
	localLogPath string
}

// Option configures a Notifier.
type Option func(*options)

func defaultOptions() options {
	return options{
		endpoint:      config.DefaultEndpoint,
		environment:   "development",
		paramsFilters: config.DefaultParamsFilters(),
		notifier: model.NotifierInfo{
			Name:    "hopper",
			Version: Version,
			URL:     "https://github.com/redleaf-labs/hopper",
		},
		logger: zap.NewNop(),
	}
}

// apply overlays resolved file/env configuration onto the defaults.
// Backtrace filters depend on the project root and are finalized here.
func (o *options) apply(cfg config.Config) {
	if cfg.APIKey != "" {
		o.apiKey = cfg.APIKey
	}
	if cfg.Endpoint != "" {
		o.endpoint = cfg.Endpoint
	}
	if cfg.Environment != "" {
		o.environment = cfg.Environment
	}
	if cfg.ProjectRoot != "" {
		o.projectRoot = cfg.ProjectRoot
	}
	if cfg.Hostname != "" {
		o.hostname = cfg.Hostname
	}
	if cfg.ParamsFilters != nil {
		o.paramsFilters = cfg.ParamsFilters
	}
	o.ignoreClasses = append(o.ignoreClasses, cfg.IgnoreClasses...)
}

// WithAPIKey sets the project API key. Without one (and without an
// explicit transport) notices are written to stderr.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithEndpoint sets the collector base URL.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithEnvironment sets the reported environment name. Default:
// "development".
func WithEnvironment(name string) Option {
	return func(o *options) { o.environment = name }
}

// WithProjectRoot sets the application root. It is reported in the server
// section and substituted in backtrace frame paths.
func WithProjectRoot(root string) Option {
	return func(o *options) { o.projectRoot = root }
}

// WithHostname overrides the reported hostname. Default: os.Hostname.
func WithHostname(name string) Option {
	return func(o *options) { o.hostname = name }
}

// WithParamsFilters adds key names whose values are redacted from params,
// session and CGI data. "password" and "password_confirmation" are always
// filtered.
func WithParamsFilters(keys ...string) Option {
	return func(o *options) { o.paramsFilters = append(o.paramsFilters, keys...) }
}

// WithIgnore adds error class names whose notices are suppressed.
func WithIgnore(classes ...string) Option {
	return func(o *options) { o.ignoreClasses = append(o.ignoreClasses, classes...) }
}

// WithIgnoreFunc adds a predicate over the assembled notice; returning
// true suppresses delivery. Predicates run after class-name checks, in
// the order added, and short-circuit.
func WithIgnoreFunc(pred func(*Notice) bool) Option {
	return func(o *options) {
		o.ignorePredicates = append(o.ignorePredicates, notice.Predicate(pred))
	}
}

// WithNotifierInfo overrides the identity reported in the notifier
// section. All three fields are required.
func WithNotifierInfo(name, version, url string) Option {
	return func(o *options) {
		o.notifier = model.NotifierInfo{Name: name, Version: version, URL: url}
	}
}

// WithLogger sets the diagnostic logger. Default: no-op; the notifier
// never writes to the host's output unless asked to.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport replaces delivery entirely. API key and endpoint are
// ignored when set.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithWriter sends payloads to w as JSON instead of the collector.
// Useful for development and dry runs.
func WithWriter(w io.Writer, pretty bool) Option {
	return func(o *options) { o.transport = writer.New(w, pretty) }
}

// WithLocalLog additionally appends every delivered payload to an NDJSON
// file, giving an on-host audit trail alongside collector delivery.
func WithLocalLog(path string) Option {
	return func(o *options) { o.localLogPath = path }
}

// WithSynchronous delivers during Notify instead of via the background
// buffer. Slower for the caller, but nothing is in flight after Notify
// returns — the right trade for short-lived processes.
func WithSynchronous() Option {
	return func(o *options) { o.synchronous = true }
}
