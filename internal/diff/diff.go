// Package diff renders line-level unified diffs using the sergi/go-diff
// library. It backs `reverendo preview --diff`, which shows what an install
// would change in an existing CLAUDE.md.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines around each change.
const DefaultContext = 3

// LineType classifies one diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is one line of a hunk, without its trailing newline.
type Line struct {
	Type    LineType
	Content string
}

// Hunk is a run of changes with surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// operation is a line with its position in both files.
type operation struct {
	Line
	oldPos int // old lines before this one
	newPos int
}

// Hunks computes the line diff between oldContent and newContent.
func Hunks(oldContent, newContent string, context int) []Hunk {
	if context < 0 {
		context = 0
	}
	ops := lineOps(oldContent, newContent)

	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].Type == LineContext {
			i++
			continue
		}
		start := max(0, i-context)
		// Extend while the unchanged gap to the next change fits in two
		// context windows.
		end := i
		for j := i; j < len(ops); j++ {
			if ops[j].Type == LineContext {
				continue
			}
			if j-end-1 > 2*context {
				break
			}
			end = j
		}
		stop := min(len(ops), end+context+1)
		hunks = append(hunks, makeHunk(ops[start:stop]))
		i = stop
	}
	return hunks
}

// Unified renders a unified diff, or "" when the contents are equal.
func Unified(oldPath, newPath, oldContent, newContent string, context int) string {
	hunks := Hunks(oldContent, newContent, context)
	if len(hunks) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldPath, newPath)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			b.WriteString(l.Type.prefix())
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (t LineType) prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

func makeHunk(ops []operation) Hunk {
	h := Hunk{Lines: make([]Line, 0, len(ops))}
	for _, op := range ops {
		h.Lines = append(h.Lines, op.Line)
		switch op.Type {
		case LineContext:
			h.OldCount++
			h.NewCount++
		case LineRemoved:
			h.OldCount++
		case LineAdded:
			h.NewCount++
		}
	}
	// An empty side points at the line before the hunk.
	h.OldStart, h.NewStart = ops[0].oldPos, ops[0].newPos
	if h.OldCount > 0 {
		h.OldStart++
	}
	if h.NewCount > 0 {
		h.NewStart++
	}
	return h
}

// lineOps diffs at line granularity to avoid splitting lines.
func lineOps(oldContent, newContent string) []operation {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, lines := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []operation
	oldPos, newPos := 0, 0
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			op := operation{Line: Line{Content: text}, oldPos: oldPos, newPos: newPos}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				op.Type = LineContext
				oldPos++
				newPos++
			case diffmatchpatch.DiffDelete:
				op.Type = LineRemoved
				oldPos++
			case diffmatchpatch.DiffInsert:
				op.Type = LineAdded
				newPos++
			}
			ops = append(ops, op)
		}
	}
	return ops
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\n")
	}
	return parts
}
