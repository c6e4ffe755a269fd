// Package source provides byte-offset positions and spans over a single
// source buffer, plus the line/column lookups diagnostics render against.
package source

import "strings"

// Position is a 1-based line/column location within a File.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is a half-open byte range [Start, End) within a File.
type Span struct {
	Start int
	End   int
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// File wraps a named source buffer and caches the byte offset of every
// line start so Position lookups are O(log n).
type File struct {
	Name    string
	Text    string
	lineOff []int
}

// NewFile indexes text's line starts.
func NewFile(name, text string) *File {
	f := &File{Name: name, Text: text, lineOff: []int{0}}
	for i, r := range text {
		if r == '\n' {
			f.lineOff = append(f.lineOff, i+1)
		}
	}
	return f
}

// Position converts a byte offset into a 1-based line/column.
func (f *File) Position(offset int) Position {
	lo, hi := 0, len(f.lineOff)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineOff[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo
	col := offset - f.lineOff[line]
	return Position{Line: line + 1, Column: col + 1, Offset: offset}
}

// Line returns the raw text of the given 1-based line number, without its
// trailing newline.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lineOff) {
		return ""
	}
	start := f.lineOff[n-1]
	end := len(f.Text)
	if n < len(f.lineOff) {
		end = f.lineOff[n] - 1
	}
	if end < start {
		end = start
	}
	return strings.TrimRight(f.Text[start:end], "\r")
}

// Slice returns the substring covered by span.
func (f *File) Slice(span Span) string {
	if span.Start < 0 {
		span.Start = 0
	}
	if span.End > len(f.Text) {
		span.End = len(f.Text)
	}
	if span.End < span.Start {
		return ""
	}
	return f.Text[span.Start:span.End]
}
