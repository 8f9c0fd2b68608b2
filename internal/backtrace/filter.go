package backtrace

import (
	"strings"

	"github.com/redleaf-labs/hopper/internal/model"
)

// ProjectRootToken replaces the configured project root in frame paths so
// reports from different checkouts of the same app group together.
const ProjectRootToken = "[PROJECT_ROOT]"

// Filter rewrites a frame or, by returning false, removes it.
type Filter func(model.Frame) (model.Frame, bool)

// Apply runs filters over frames in order. A frame removed by one filter is
// not seen by later ones.
func Apply(frames []model.Frame, filters []Filter) []model.Frame {
	if len(filters) == 0 {
		return frames
	}
	out := make([]model.Frame, 0, len(frames))
	for _, f := range frames {
		keep := true
		for _, filter := range filters {
			f, keep = filter(f)
			if !keep {
				break
			}
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}

// DefaultFilters returns the standard chain: substitute the project root,
// drop the notifier's own frames, drop runtime plumbing.
func DefaultFilters(projectRoot string) []Filter {
	return []Filter{
		SubstituteProjectRoot(projectRoot),
		DropSelf,
		DropRuntime,
	}
}

// SubstituteProjectRoot replaces a leading projectRoot in frame files with
// ProjectRootToken. With an empty root it passes frames through untouched.
func SubstituteProjectRoot(projectRoot string) Filter {
	return func(f model.Frame) (model.Frame, bool) {
		if projectRoot != "" && strings.HasPrefix(f.File, projectRoot) {
			f.File = ProjectRootToken + strings.TrimPrefix(f.File, projectRoot)
		}
		return f, true
	}
}

// DropSelf removes frames from the notifier's own packages, so a captured
// stack starts at the caller rather than inside Notify.
func DropSelf(f model.Frame) (model.Frame, bool) {
	return f, !strings.Contains(f.Function, "github.com/redleaf-labs/hopper/")
}

// DropRuntime removes Go runtime frames (panic plumbing, goexit).
func DropRuntime(f model.Frame) (model.Frame, bool) {
	return f, !strings.HasPrefix(f.Function, "runtime.")
}
