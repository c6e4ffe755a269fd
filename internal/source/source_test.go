package source

import "testing"

func TestPositionFindsLineAndColumn(t *testing.T) {
	f := NewFile("main.agu", "let x = 1\nlet y = 2\n")
	p := f.Position(10) // first byte of line 2
	if p.Line != 2 || p.Column != 1 {
		t.Fatalf("got line=%d col=%d, want line=2 col=1", p.Line, p.Column)
	}
	p = f.Position(0)
	if p.Line != 1 || p.Column != 1 {
		t.Fatalf("got line=%d col=%d, want line=1 col=1", p.Line, p.Column)
	}
}

func TestLineReturnsTrimmedText(t *testing.T) {
	f := NewFile("main.agu", "let x = 1\r\nlet y = 2\n")
	if got := f.Line(1); got != "let x = 1" {
		t.Errorf("got %q", got)
	}
	if got := f.Line(2); got != "let y = 2" {
		t.Errorf("got %q", got)
	}
}

func TestSliceReturnsSpanContent(t *testing.T) {
	f := NewFile("main.agu", "let x = 1")
	if got := f.Slice(Span{Start: 4, End: 5}); got != "x" {
		t.Errorf("got %q", got)
	}
}

func TestSpanMerge(t *testing.T) {
	a := Span{Start: 2, End: 5}
	b := Span{Start: 0, End: 3}
	got := a.Merge(b)
	if got.Start != 0 || got.End != 5 {
		t.Errorf("got %+v, want {0 5}", got)
	}
}
