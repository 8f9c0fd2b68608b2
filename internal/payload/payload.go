// Package payload projects an assembled Notice into the collector's wire
// shape. The projection is pure: it never mutates the Notice and building
// twice from an unchanged Notice yields identical output.
package payload

import (
	"encoding/json"

	"github.com/redleaf-labs/hopper/internal/model"
)

// Payload is the four-section wire representation. Field names are the
// external contract with the collector and must not be renamed.
type Payload struct {
	Notifier Notifier `json:"notifier"`
	Error    Error    `json:"error"`
	Request  Request  `json:"request"`
	Server   Server   `json:"server"`
}

type Notifier struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Version string `json:"version"`
}

type Error struct {
	Class     string        `json:"class"`
	Message   string        `json:"message"`
	Backtrace []model.Frame `json:"backtrace"`
}

type Request struct {
	URL       string         `json:"url"`
	Component string         `json:"component"`
	Action    string         `json:"action"`
	Params    map[string]any `json:"params"`
	Session   map[string]any `json:"session"`
	CGIData   map[string]any `json:"cgi_data"`
	User      any            `json:"user"`
}

// MarshalJSON omits session, cgi_data and user only when they are absent.
// An empty-but-present session must still appear as {} on the wire, which
// `omitempty` cannot express for maps.
func (r Request) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"url":       r.URL,
		"component": r.Component,
		"action":    r.Action,
		"params":    r.Params,
	}
	if r.Session != nil {
		m["session"] = r.Session
	}
	if r.CGIData != nil {
		m["cgi_data"] = r.CGIData
	}
	if r.User != nil {
		m["user"] = r.User
	}
	return json.Marshal(m)
}

type Server struct {
	ProjectRoot     string `json:"project_root"`
	EnvironmentName string `json:"environment_name"`
	Hostname        string `json:"hostname"`
}

// Build projects the notice. Session and CGI data that were absent on the
// notice stay nil here and are omitted from the JSON encoding, preserving
// the absent/empty distinction all the way to the wire.
func Build(n *model.Notice) Payload {
	return Payload{
		Notifier: Notifier{
			Name:    n.Notifier.Name,
			URL:     n.Notifier.URL,
			Version: n.Notifier.Version,
		},
		Error: Error{
			Class:     n.ErrorClass,
			Message:   n.ErrorMessage,
			Backtrace: n.Backtrace,
		},
		Request: Request{
			URL:       n.URL,
			Component: n.Component,
			Action:    n.Action,
			Params:    n.Params,
			Session:   n.Session,
			CGIData:   n.CGIData,
			User:      n.User,
		},
		Server: Server{
			ProjectRoot:     n.ProjectRoot,
			EnvironmentName: n.EnvironmentName,
			Hostname:        n.Hostname,
		},
	}
}

// Get looks a section up by name for consumers that address the payload
// symbolically. Unknown names return nil.
func (p Payload) Get(name string) any {
	switch name {
	case "notifier":
		return p.Notifier
	case "error":
		return p.Error
	case "request":
		return p.Request
	case "server":
		return p.Server
	default:
		return nil
	}
}
