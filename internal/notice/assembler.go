// Package notice assembles raw error and request data into a sanitized,
// immutable Notice record.
package notice

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"slices"

	"github.com/google/uuid"

	"github.com/redleaf-labs/hopper/internal/backtrace"
	"github.com/redleaf-labs/hopper/internal/model"
	"github.com/redleaf-labs/hopper/internal/sanitize"
)

// defaultMessage is reported when neither an error nor an explicit message
// was supplied.
const defaultMessage = "Notification"

// paramsFiltersKey is the CGI-data key under which a host application may
// declare additional params filters for this one request.
const paramsFiltersKey = "params_filters"

// formVarsKey is deleted from CGI data outright: its value is a framework
// internal that is neither meaningful to report nor safely serializable.
const formVarsKey = "rack.request.form_vars"

// Predicate decides whether an assembled notice should be suppressed.
type Predicate func(*model.Notice) bool

// stackCarrier is the capability an error may expose to contribute the
// program counters captured where it originated.
type stackCarrier interface {
	Callers() []uintptr
}

// Config is process-wide, read-only assembly configuration. It is supplied
// once and never mutated by the assembler.
type Config struct {
	Notifier model.NotifierInfo

	ProjectRoot     string
	EnvironmentName string
	Hostname        string

	ParamsFilters    []string
	IgnoreClasses    []string
	IgnorePredicates []Predicate
	BacktraceFilters []backtrace.Filter
}

// Args is the per-notice input bundle. Every field has a safe default;
// maps are read but never mutated.
type Args struct {
	Err          error
	ErrorClass   string
	ErrorMessage string
	Backtrace    []string

	URL       string
	Component string
	Action    string

	Params      map[string]any
	Session     map[string]any
	SessionData map[string]any
	CGIData     map[string]any
	User        any
}

// Assembler builds Notices from input bundles.
type Assembler struct {
	cfg Config
}

// New validates the notifier identity and returns an Assembler. Identity
// is the only input that can fail assembly; everything else defaults.
func New(cfg Config) (*Assembler, error) {
	if cfg.Notifier.Name == "" || cfg.Notifier.Version == "" || cfg.Notifier.URL == "" {
		return nil, errors.New("notice: notifier identity requires name, version and url")
	}
	return &Assembler{cfg: cfg}, nil
}

// Build assembles, sanitizes and redacts a Notice. It never fails: any
// value the caller hands it is either normalized or stringified.
func (a *Assembler) Build(args Args) *model.Notice {
	n := &model.Notice{
		Token:           uuid.NewString(),
		URL:             args.URL,
		User:            args.User,
		ProjectRoot:     a.cfg.ProjectRoot,
		EnvironmentName: a.cfg.EnvironmentName,
		Hostname:        a.cfg.Hostname,
		Notifier:        a.cfg.Notifier,
	}

	n.ErrorClass, n.ErrorMessage = errorIdentity(args)
	n.Backtrace = a.resolveBacktrace(args)
	n.Component, n.Action = resolveComponentAction(args)

	filters := a.augmentedFilters(args.CGIData)

	n.Params = sanitize.CleanMap(args.Params)
	if n.Params == nil {
		n.Params = map[string]any{}
	}
	sanitize.Redact(n.Params, filters)

	n.CGIData = sanitize.CleanMap(args.CGIData)
	if n.CGIData != nil {
		sanitize.Redact(n.CGIData, filters)
		delete(n.CGIData, formVarsKey)
	}

	if session := resolveSession(args); session != nil {
		n.Session = sanitize.CleanMap(session)
		sanitize.Redact(n.Session, filters)
	}

	return n
}

// Ignored reports whether the notice should be dropped before delivery:
// first by exact error-class match, then by the configured predicates in
// order, short-circuiting on the first hit. Advisory only — the notice is
// already fully built.
func (a *Assembler) Ignored(n *model.Notice) bool {
	for _, class := range a.cfg.IgnoreClasses {
		if n.ErrorClass == class {
			return true
		}
	}
	for _, pred := range a.cfg.IgnorePredicates {
		if pred(n) {
			return true
		}
	}
	return false
}

// errorIdentity derives class and message. A live error wins over explicit
// fields; the message always carries the class prefix when an error is
// present, matching what the collector groups on.
func errorIdentity(args Args) (class, message string) {
	if args.Err != nil {
		class = errorClass(args.Err)
		return class, fmt.Sprintf("%s: %s", class, args.Err.Error())
	}

	class = args.ErrorClass
	message = args.ErrorMessage
	if message == "" {
		message = defaultMessage
	}
	return class, message
}

// errorClass names an error's runtime type, package-qualified, without the
// pointer marker. An error may override this via an ErrorClass() method.
func errorClass(err error) string {
	if c, ok := err.(interface{ ErrorClass() string }); ok {
		return c.ErrorClass()
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// resolveBacktrace picks, in order: the error's own captured stack, the
// explicitly supplied trace, the current stack. The result then passes
// through the configured frame filters.
func (a *Assembler) resolveBacktrace(args Args) []model.Frame {
	var frames []model.Frame
	switch {
	case args.Err != nil && carriesStack(args.Err):
		frames = framesFromCallers(stackOf(args.Err))
	case len(args.Backtrace) > 0:
		frames = backtrace.Parse(args.Backtrace)
	default:
		// Skip Build and the facade's Notify wrapper; DropSelf cleans up
		// whatever this misses.
		frames = backtrace.Capture(2)
	}
	return backtrace.Apply(frames, a.cfg.BacktraceFilters)
}

func carriesStack(err error) bool {
	var sc stackCarrier
	return errors.As(err, &sc)
}

func stackOf(err error) []uintptr {
	var sc stackCarrier
	if errors.As(err, &sc) {
		return sc.Callers()
	}
	return nil
}

func framesFromCallers(pcs []uintptr) []model.Frame {
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	var out []model.Frame
	for {
		fr, more := frames.Next()
		out = append(out, model.Frame{File: fr.File, Line: fr.Line, Function: fr.Function})
		if !more {
			break
		}
	}
	return out
}

// resolveComponentAction prefers explicit arguments, falling back to the
// conventional controller/action keys in the raw params.
func resolveComponentAction(args Args) (component, action string) {
	component = args.Component
	action = args.Action
	if component == "" {
		if v, ok := args.Params["controller"]; ok {
			component = fmt.Sprint(v)
		}
	}
	if action == "" {
		if v, ok := args.Params["action"]; ok {
			action = fmt.Sprint(v)
		}
	}
	return component, action
}

// resolveSession picks SessionData over Session, then unwraps a nested
// "data" mapping one level. The unwrap is a legacy compatibility rule:
// some session stores hand over {"data" => {...}} envelopes and consumers
// expect the inner mapping.
func resolveSession(args Args) map[string]any {
	session := args.SessionData
	if session == nil {
		session = args.Session
	}
	if session == nil {
		return nil
	}
	if data, ok := session["data"].(map[string]any); ok {
		return data
	}
	return session
}

// augmentedFilters unions the configured params filters with any the CGI
// data declares for this request. The configured slice is never mutated.
func (a *Assembler) augmentedFilters(cgiData map[string]any) []string {
	declared := declaredFilters(cgiData)
	if len(declared) == 0 {
		return a.cfg.ParamsFilters
	}
	out := make([]string, 0, len(a.cfg.ParamsFilters)+len(declared))
	out = append(out, a.cfg.ParamsFilters...)
	for _, d := range declared {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

func declaredFilters(cgiData map[string]any) []string {
	raw, ok := cgiData[paramsFiltersKey]
	if !ok {
		return nil
	}
	switch vv := raw.(type) {
	case []string:
		return vv
	case []any:
		return sanitize.NormalizeFilters(vv)
	default:
		return nil
	}
}
