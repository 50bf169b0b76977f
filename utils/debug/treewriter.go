// Package debug renders human readable dumps of internal structures for debug
// reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	sb     strings.Builder
	indent string
}

// NewTreeWriter creates writer using indent for every level of depth.
func NewTreeWriter(indent string) *TreeWriter {
	return &TreeWriter{indent: indent}
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

// Text writes labeled value quoted so that whitespace and line breaks are
// visible. Empty value is written as empty quotes.
func (tw *TreeWriter) Text(depth int, label, value string) {
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	tw.sb.WriteString(strconv.Quote(value))
	tw.sb.WriteByte('\n')
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.sb.WriteString(tw.indent)
	}
}
