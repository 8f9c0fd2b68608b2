// Package backtrace captures and parses stack traces into notice frames.
package backtrace

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/redleaf-labs/hopper/internal/model"
)

const maxDepth = 64

// Capture returns the current goroutine's stack as frames, skipping the
// given number of callers on top of Capture itself.
func Capture(skip int) []model.Frame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]model.Frame, 0, n)
	for {
		fr, more := frames.Next()
		out = append(out, model.Frame{
			File:     fr.File,
			Line:     fr.Line,
			Function: fr.Function,
		})
		if !more {
			break
		}
	}
	return out
}

// locationLine matches "file:123 in function" and "file:123" forms.
var locationLine = regexp.MustCompile(`^(.+?):(\d+)(?: in (.+))?$`)

// Parse converts an explicitly supplied backtrace into frames. Two shapes
// are recognized: the notice form "file:line in function", and the Go
// runtime dump where a function line is followed by a tab-indented
// "file:line +0xoffset" line. Lines that match neither become file-only
// frames rather than being dropped — a degraded frame beats a missing one.
func Parse(lines []string) []model.Frame {
	out := make([]model.Frame, 0, len(lines))
	pendingFunc := ""
	for _, line := range lines {
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "\t") {
			loc := strings.TrimPrefix(line, "\t")
			if i := strings.LastIndex(loc, " +0x"); i >= 0 {
				loc = loc[:i]
			}
			if m := locationLine.FindStringSubmatch(loc); m != nil {
				n, _ := strconv.Atoi(m[2])
				out = append(out, model.Frame{File: m[1], Line: n, Function: pendingFunc})
				pendingFunc = ""
				continue
			}
		}

		if m := locationLine.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			out = append(out, model.Frame{File: m[1], Line: n, Function: m[3]})
			pendingFunc = ""
			continue
		}

		if looksLikeCall(line) {
			// Remember a runtime-dump function line; consumed by the
			// following tab-indented location line.
			if pendingFunc != "" {
				out = append(out, model.Frame{Function: pendingFunc})
			}
			pendingFunc = trimCallSuffix(line)
			continue
		}

		out = append(out, model.Frame{File: line})
	}
	if pendingFunc != "" {
		out = append(out, model.Frame{Function: pendingFunc})
	}
	return out
}

func looksLikeCall(line string) bool {
	return strings.HasSuffix(line, ")") && strings.Contains(line, "(")
}

func trimCallSuffix(line string) string {
	if i := strings.LastIndex(line, "("); i >= 0 {
		return line[:i]
	}
	return line
}
