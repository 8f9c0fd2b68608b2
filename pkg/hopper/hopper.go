package hopper

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"go.uber.org/zap"

	"github.com/redleaf-labs/hopper/internal/backtrace"
	"github.com/redleaf-labs/hopper/internal/config"
	"github.com/redleaf-labs/hopper/internal/metrics"
	"github.com/redleaf-labs/hopper/internal/model"
	"github.com/redleaf-labs/hopper/internal/notice"
	"github.com/redleaf-labs/hopper/internal/payload"
	"github.com/redleaf-labs/hopper/internal/transport"
	"github.com/redleaf-labs/hopper/internal/transport/async"
	"github.com/redleaf-labs/hopper/internal/transport/collector"
	"github.com/redleaf-labs/hopper/internal/transport/file"
	"github.com/redleaf-labs/hopper/internal/transport/multi"
	"github.com/redleaf-labs/hopper/internal/transport/writer"
)

// Version is reported to the collector in the notifier section.
const Version = "1.2.0"

// Notice is the assembled, sanitized error report record. Use Get for
// symbolic field access; "request" returns the notice itself.
type Notice = model.Notice

// Frame is one backtrace entry.
type Frame = model.Frame

// Payload is the four-section wire representation of a Notice.
type Payload = payload.Payload

// Transport delivers payloads. Implement it to route notices somewhere
// custom; the built-ins cover the collector, io.Writers, fan-out and
// async buffering.
type Transport = transport.Transport

// Notifier assembles, sanitizes and delivers error notices. Safe for
// concurrent use: every Notify builds an independent notice with its own
// traversal state.
type Notifier struct {
	assembler *notice.Assembler
	transport transport.Transport
	logger    *zap.Logger
}

// New creates a Notifier from options alone. Without an API key or an
// explicit transport, payloads are written to stderr so an unconfigured
// notifier stays observable instead of silently dropping errors.
func New(opts ...Option) (*Notifier, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return build(o)
}

// NewFromEnvironment creates a Notifier from hopper.yml and HOPPER_*
// environment variables, with options applied on top.
func NewFromEnvironment(opts ...Option) (*Notifier, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("hopper: %w", err)
	}

	o := defaultOptions()
	o.apply(cfg)
	for _, opt := range opts {
		opt(&o)
	}
	return build(o)
}

func build(o options) (*Notifier, error) {
	hostname := o.hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	assembler, err := notice.New(notice.Config{
		Notifier:         o.notifier,
		ProjectRoot:      o.projectRoot,
		EnvironmentName:  o.environment,
		Hostname:         hostname,
		ParamsFilters:    o.paramsFilters,
		IgnoreClasses:    o.ignoreClasses,
		IgnorePredicates: o.ignorePredicates,
		BacktraceFilters: backtrace.DefaultFilters(o.projectRoot),
	})
	if err != nil {
		return nil, fmt.Errorf("hopper: %w", err)
	}

	tr, err := resolveTransport(o)
	if err != nil {
		return nil, fmt.Errorf("hopper: %w", err)
	}

	return &Notifier{
		assembler: assembler,
		transport: tr,
		logger:    o.logger,
	}, nil
}

func resolveTransport(o options) (transport.Transport, error) {
	main, err := mainTransport(o)
	if err != nil {
		return nil, err
	}
	if o.localLogPath == "" {
		return main, nil
	}

	spool, err := file.New(o.localLogPath)
	if err != nil {
		return nil, err
	}
	return multi.New(main, spool), nil
}

func mainTransport(o options) (transport.Transport, error) {
	if o.transport != nil {
		return o.transport, nil
	}
	if o.apiKey == "" {
		o.logger.Warn("no api key configured, writing notices to stderr")
		return writer.New(os.Stderr, false), nil
	}

	c, err := collector.New(o.endpoint, o.apiKey, collector.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	if o.synchronous {
		return c, nil
	}
	return async.New(c, async.WithLogger(o.logger)), nil
}

// Notify reports an error. The returned token identifies the notice in
// logs and can be empty when an ignore rule suppressed it.
func (n *Notifier) Notify(err error, opts ...NoticeOption) (string, error) {
	if err == nil {
		return "", nil
	}
	return n.report(notice.Args{Err: err}, opts)
}

// NotifyMessage reports a notice with no underlying error value, e.g. a
// failed assertion or a cron job result.
func (n *Notifier) NotifyMessage(class, message string, opts ...NoticeOption) (string, error) {
	return n.report(notice.Args{ErrorClass: class, ErrorMessage: message}, opts)
}

// NotifyPanic reports a recovered panic value. Errors pass through the
// usual class derivation; other values are named by their runtime type.
func (n *Notifier) NotifyPanic(v any, opts ...NoticeOption) (string, error) {
	if err, ok := v.(error); ok {
		return n.report(notice.Args{Err: err}, opts)
	}
	args := notice.Args{
		ErrorClass:   panicClass(v),
		ErrorMessage: fmt.Sprintf("panic: %v", v),
	}
	return n.report(args, opts)
}

// Recover reports a panic and re-raises it. Use in a defer:
//
//	defer notifier.Recover()
func (n *Notifier) Recover(opts ...NoticeOption) {
	if v := recover(); v != nil {
		n.NotifyPanic(v, opts...)
		panic(v)
	}
}

// BuildNotice assembles a notice without delivering it.
func (n *Notifier) BuildNotice(err error, opts ...NoticeOption) *Notice {
	args := notice.Args{Err: err}
	for _, opt := range opts {
		opt(&args)
	}
	return n.assembler.Build(args)
}

// BuildPayload assembles a notice and projects it to the wire shape
// without delivering it.
func (n *Notifier) BuildPayload(err error, opts ...NoticeOption) Payload {
	return payload.Build(n.BuildNotice(err, opts...))
}

// Close flushes buffered notices and releases the transport.
func (n *Notifier) Close() error {
	return n.transport.Close()
}

func (n *Notifier) report(args notice.Args, opts []NoticeOption) (string, error) {
	for _, opt := range opts {
		opt(&args)
	}

	built := n.assembler.Build(args)
	if n.assembler.Ignored(built) {
		metrics.NoticeIgnored()
		n.logger.Debug("notice suppressed by ignore rule",
			zap.String("class", built.ErrorClass))
		return "", nil
	}
	metrics.NoticeAssembled()

	p := payload.Build(built)
	if err := n.transport.Send(context.Background(), p); err != nil {
		return built.Token, fmt.Errorf("hopper: %w", err)
	}
	n.logger.Debug("notice delivered",
		zap.String("token", built.Token),
		zap.String("class", built.ErrorClass))
	return built.Token, nil
}

func panicClass(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "panic"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
