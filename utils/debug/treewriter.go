// Package debug formats diagnostic dumps.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines of a tree dump.
type TreeWriter struct {
	sb    strings.Builder
	lines int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

// Lines returns number of lines written so far.
func (tw *TreeWriter) Lines() int {
	return tw.lines
}

func (tw *TreeWriter) pad(depth int) {
	tw.sb.WriteString(strings.Repeat(indent, max(depth, 0)))
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
	tw.lines++
}

// Field writes "label: value" with value quoted, so whitespace and empty
// values stay visible.
func (tw *TreeWriter) Field(depth int, label, value string) {
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	tw.sb.WriteString(strconv.Quote(value))
	tw.sb.WriteByte('\n')
	tw.lines++
}
