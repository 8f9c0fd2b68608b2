package model

import "fmt"

// Frame is one backtrace entry.
type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// String renders the frame in "file:line in function" form.
func (f Frame) String() string {
	if f.Function == "" {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return fmt.Sprintf("%s:%d in %s", f.File, f.Line, f.Function)
}
