// Package diff produces unified diff text for transformed files.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// context lines around each change
const context = 3

const noNewline = "\\ No newline at end of file\n"

// Differ renders unified diffs. Zero value is ready to use.
type Differ struct{}

// Diff implements task.Differ.
func (Differ) Diff(label, before, after string) string {
	return Unified(label, before, after)
}

// Unified returns patch which turns before into after. Both sides are labeled
// with label, "Index:" header is added, missing trailing newlines are marked
// the same way as git and patch do. Identical inputs produce header only.
func Unified(label, before, after string) string {
	a, b := splitLines(before), splitLines(after)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Index: %s\n%s\n", label, strings.Repeat("=", 67))
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", label, label)

	m := difflib.NewMatcher(a, b)
	for _, group := range m.GetGroupedOpCodes(context) {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n", formatRange(first.I1, last.I2), formatRange(first.J1, last.J2))
		for _, op := range group {
			switch op.Tag {
			case 'e':
				writeLines(&sb, ' ', a[op.I1:op.I2])
			case 'r':
				writeLines(&sb, '-', a[op.I1:op.I2])
				writeLines(&sb, '+', b[op.J1:op.J2])
			case 'd':
				writeLines(&sb, '-', a[op.I1:op.I2])
			case 'i':
				writeLines(&sb, '+', b[op.J1:op.J2])
			}
		}
	}
	return sb.String()
}

// splitLines keeps line terminators so that last line without newline differs
// from the same line with one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(sb *strings.Builder, prefix byte, lines []string) {
	for _, l := range lines {
		sb.WriteByte(prefix)
		sb.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			sb.WriteString("\n")
			sb.WriteString(noNewline)
		}
	}
}

// formatRange formats hunk range the way unified diff expects it: single line
// ranges have no length, empty ranges point at the line before.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf("%d", beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}
