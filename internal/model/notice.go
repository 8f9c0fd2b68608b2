package model

// Sentinel values written into sanitized data in place of values that
// cannot be reported as-is. These strings are part of the wire contract
// with the collector and must not change.
const (
	Filtered        = "[FILTERED]"
	RecursionHalted = "[possible infinite recursion halted]"
)

// NotifierInfo identifies the reporting client to the collector.
type NotifierInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Notice is an assembled, sanitized error report. Once built it is
// immutable: params, session and CGI data hold only JSON-safe primitives,
// maps and slices — no cycles, no opaque values.
type Notice struct {
	Token string // assembly-time UUID, for log/delivery correlation

	ErrorClass   string
	ErrorMessage string
	Backtrace    []Frame

	URL       string
	Component string
	Action    string

	// Params is never nil after assembly; Session and CGIData stay nil
	// when the request had none, so the payload can tell absent from empty.
	Params  map[string]any
	Session map[string]any
	CGIData map[string]any
	User    any // opaque, passed through unmodified

	ProjectRoot     string
	EnvironmentName string
	Hostname        string

	Notifier NotifierInfo
}

// Get returns a Notice field by its payload name. The special name
// "request" returns the Notice itself so consumers expecting nested
// structure can chain lookups. Unknown names return nil.
func (n *Notice) Get(name string) any {
	switch name {
	case "request":
		return n
	case "class", "error_class":
		return n.ErrorClass
	case "message", "error_message":
		return n.ErrorMessage
	case "backtrace":
		return n.Backtrace
	case "url":
		return n.URL
	case "component", "controller":
		return n.Component
	case "action":
		return n.Action
	case "params":
		return n.Params
	case "session":
		return n.Session
	case "cgi_data":
		return n.CGIData
	case "user":
		return n.User
	case "project_root":
		return n.ProjectRoot
	case "environment_name":
		return n.EnvironmentName
	case "hostname":
		return n.Hostname
	default:
		return nil
	}
}
