// Package diagnostics renders AGUDA's errors and warnings with
// span-accurate caret highlights, hints, color, and caps (spec §4.7).
//
// The rendering shape is ported from original_source/src/diagnostics/
// formatting.rs (the Rust implementation this spec was distilled from),
// since spec.md describes the layout but not the exact wording; the
// teacher's CompilerError.Format(color bool) (internal/errors/errors.go in
// the reference DWScript compiler) grounds the Go-idiomatic split between a
// plain-text Format and a color-aware one.
package diagnostics

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agu-lang/aguda-go/internal/source"
)

// Severity distinguishes errors from warnings for rendering and caps.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic bundles everything needed to render one finding.
type Diagnostic struct {
	Severity    Severity
	Label       string
	Description string
	Span        source.Span
	Hints       []string
	Suppressed  bool
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// UseColor decides whether stderr output should be colored: honors
// NO_COLOR (https://no-color.org) and falls back to TTY detection via
// go-isatty, per spec §7.
func UseColor(w *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
}

// Format renders one diagnostic as:
//
//	<path>:<line>:<col>
//	<label> <description> at line L, column C
//		<source-line>
//		    ^^^
//	Hint: ...
func Format(path string, file *source.File, d Diagnostic, color bool) string {
	pos := file.Position(d.Span.Start)
	var b strings.Builder
	label := d.Label
	colorCode := ansiRed
	if d.Severity == SeverityWarning {
		colorCode = ansiYellow
	}
	if color {
		fmt.Fprintf(&b, "%s%s:%d:%d%s\n", ansiBold, path, pos.Line, pos.Column, ansiReset)
		fmt.Fprintf(&b, "%s%s%s %s at line %d, column %d\n", colorCode, label, ansiReset, d.Description, pos.Line, pos.Column)
	} else {
		fmt.Fprintf(&b, "%s:%d:%d\n", path, pos.Line, pos.Column)
		fmt.Fprintf(&b, "%s %s at line %d, column %d\n", label, d.Description, pos.Line, pos.Column)
	}
	line := file.Line(pos.Line)
	b.WriteString("\t" + line + "\n")
	width := d.Span.End - d.Span.Start
	if width < 1 {
		width = 1
	}
	if pos.Column-1+width > len(line) {
		width = len(line) - (pos.Column - 1)
		if width < 1 {
			width = 1
		}
	}
	caret := strings.Repeat(" ", pos.Column-1) + strings.Repeat("^", width)
	b.WriteString("\t" + caret + "\n")
	switch len(d.Hints) {
	case 0:
	case 1:
		b.WriteString("Hint: " + d.Hints[0] + "\n")
	default:
		b.WriteString("Hints:\n")
		for _, h := range d.Hints {
			b.WriteString("  - " + h + "\n")
		}
	}
	return b.String()
}

// Cap truncates diagnostics to max entries and returns how many were
// dropped; FormatAll turns that count into the "(+N more)" marker. max <= 0
// means unlimited.
func Cap(diags []Diagnostic, max int) ([]Diagnostic, int) {
	if max <= 0 || len(diags) <= max {
		return diags, 0
	}
	dropped := len(diags) - max
	return diags[:max], dropped
}

// FormatAll renders a full list of diagnostics against file, honoring caps
// and the suppression flags; suppressHints strips hints from every
// rendered entry rather than hiding whole diagnostics.
func FormatAll(path string, file *source.File, diags []Diagnostic, maxCount int, suppress, suppressHints, color bool) string {
	if suppress {
		return ""
	}
	shown, dropped := Cap(diags, maxCount)
	var b strings.Builder
	for _, d := range shown {
		if suppressHints {
			d.Hints = nil
		}
		b.WriteString(Format(path, file, d, color))
	}
	if dropped > 0 {
		fmt.Fprintf(&b, "(+%d more)\n", dropped)
	}
	return b.String()
}
