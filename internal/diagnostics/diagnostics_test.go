package diagnostics

import (
	"os"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/agu-lang/aguda-go/internal/source"
)

// TestMain prunes obsolete snapshot entries after this package's tests
// finish, matching the teacher's fixture_test.go usage of go-snaps.
func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func TestFormatRendersPathLineColumnAndCaret(t *testing.T) {
	file := source.NewFile("main.agu", "let x : Int = y\n")
	d := Diagnostic{
		Severity:    SeverityError,
		Label:       "error:",
		Description: "undeclared identifier `y`",
		Span:        source.Span{Start: 14, End: 15},
	}
	got := Format("main.agu", file, d, false)
	if !strings.HasPrefix(got, "main.agu:1:15\n") {
		t.Fatalf("expected path:line:col header, got %q", got)
	}
	if !strings.Contains(got, "error: undeclared identifier `y` at line 1, column 15") {
		t.Fatalf("expected label+description line, got %q", got)
	}
	if !strings.Contains(got, "\tlet x : Int = y\n") {
		t.Fatalf("expected source line, got %q", got)
	}
	if !strings.Contains(got, "\t"+strings.Repeat(" ", 14)+"^\n") {
		t.Fatalf("expected caret aligned under the offending token, got %q", got)
	}
}

func TestFormatSingleHintUsesSingularLabel(t *testing.T) {
	file := source.NewFile("main.agu", "x\n")
	d := Diagnostic{Span: source.Span{Start: 0, End: 1}, Hints: []string{"did you mean `y`?"}}
	got := Format("main.agu", file, d, false)
	if !strings.Contains(got, "Hint: did you mean `y`?\n") {
		t.Fatalf("expected singular Hint: line, got %q", got)
	}
}

func TestFormatMultipleHintsUsesPluralBlock(t *testing.T) {
	file := source.NewFile("main.agu", "x\n")
	d := Diagnostic{Span: source.Span{Start: 0, End: 1}, Hints: []string{"a", "b"}}
	got := Format("main.agu", file, d, false)
	if !strings.Contains(got, "Hints:\n  - a\n  - b\n") {
		t.Fatalf("expected a Hints: block listing each hint, got %q", got)
	}
}

func TestCapTruncatesAndReportsDropped(t *testing.T) {
	diags := make([]Diagnostic, 5)
	shown, dropped := Cap(diags, 3)
	if len(shown) != 3 || dropped != 2 {
		t.Fatalf("got shown=%d dropped=%d, want 3,2", len(shown), dropped)
	}
}

func TestCapUnlimitedWhenMaxIsZero(t *testing.T) {
	diags := make([]Diagnostic, 5)
	shown, dropped := Cap(diags, 0)
	if len(shown) != 5 || dropped != 0 {
		t.Fatalf("got shown=%d dropped=%d, want 5,0", len(shown), dropped)
	}
}

func TestFormatAllSuppressesEverything(t *testing.T) {
	file := source.NewFile("main.agu", "x\n")
	diags := []Diagnostic{{Span: source.Span{Start: 0, End: 1}}}
	if got := FormatAll("main.agu", file, diags, 5, true, false, false); got != "" {
		t.Fatalf("expected empty output when suppressed, got %q", got)
	}
}

func TestFormatAllAppendsMoreSuffixWhenCapped(t *testing.T) {
	file := source.NewFile("main.agu", "x\n")
	diags := []Diagnostic{
		{Span: source.Span{Start: 0, End: 1}},
		{Span: source.Span{Start: 0, End: 1}},
		{Span: source.Span{Start: 0, End: 1}},
	}
	got := FormatAll("main.agu", file, diags, 1, false, false, false)
	if !strings.Contains(got, "(+2 more)\n") {
		t.Fatalf("expected '(+2 more)' suffix, got %q", got)
	}
}

func TestFormatAllStripsHintsWhenSuppressed(t *testing.T) {
	file := source.NewFile("main.agu", "x\n")
	diags := []Diagnostic{{Span: source.Span{Start: 0, End: 1}, Hints: []string{"a hint"}}}
	got := FormatAll("main.agu", file, diags, 5, false, true, false)
	if strings.Contains(got, "Hint") {
		t.Fatalf("expected hints stripped from output, got %q", got)
	}
}

// Golden tests pinning the exact rendered text of two representative
// diagnostics, an undeclared identifier and a type mismatch, using go-snaps
// the way the teacher's fixture_test.go pins interpreter output.
func TestFormatGoldenUndeclaredIdentifier(t *testing.T) {
	file := source.NewFile("main.agu", "let main (_) : (Unit) -> Unit = print(x)\n")
	d := Diagnostic{
		Severity:    SeverityError,
		Label:       "declaration error:",
		Description: "undeclared identifier `x`",
		Span:        source.Span{Start: 38, End: 39},
		Hints:       []string{"did you mean `length`?"},
	}
	snaps.MatchSnapshot(t, Format("main.agu", file, d, false))
}

func TestFormatGoldenTypeMismatch(t *testing.T) {
	file := source.NewFile("main.agu", "let main (_) : (Unit) -> Unit = print(true + 1)\n")
	d := Diagnostic{
		Severity:    SeverityError,
		Label:       "type error:",
		Description: "type mismatch, found `Bool`, expected `Int`",
		Span:        source.Span{Start: 38, End: 42},
	}
	snaps.MatchSnapshot(t, Format("main.agu", file, d, false))
}

func TestSyntaxHintsOperatorConfusions(t *testing.T) {
	cases := []struct {
		expected []string
		found    string
		want     string
	}{
		{[]string{"=="}, "=", "use '==' for comparison, '=' is only used in 'let'/'set'"},
		{[]string{"="}, "==", "use '=' to bind or assign, '==' is only for comparison"},
		{[]string{"||"}, "|", "did you mean '||'?"},
		{[]string{"Unit"}, "unit", "type names are capitalized: did you mean 'Unit'?"},
		{[]string{"unit"}, "Unit", "the unit value is lowercase: did you mean 'unit'?"},
	}
	for _, c := range cases {
		got := SyntaxHints(c.expected, c.found)
		if len(got) != 1 || got[0] != c.want {
			t.Errorf("SyntaxHints(%v, %q) = %v, want [%q]", c.expected, c.found, got, c.want)
		}
	}
}

func TestSyntaxHintsElseThenDoAndBrackets(t *testing.T) {
	cases := map[string]string{
		"else": "did you forget a matching 'then' before this 'else'?",
		"then": "did you forget an 'if' before this 'then'?",
		"do":   "did you forget a 'while' before this 'do'?",
		")":    "unexpected closing ')' — is there a missing operand?",
		"]":    "unexpected closing ']' — is there a missing expression?",
	}
	for found, want := range cases {
		got := SyntaxHints(nil, found)
		if len(got) != 1 || got[0] != want {
			t.Errorf("SyntaxHints(nil, %q) = %v, want [%q]", found, got, want)
		}
	}
}

func TestSyntaxHintsClassHintExpression(t *testing.T) {
	got := SyntaxHints([]string{"let", "set", "if", "while", "new", "identifier"}, "@")
	if len(got) != 1 || got[0] != "did you forget an expression?" {
		t.Fatalf("expected expression class hint, got %v", got)
	}
}

func TestSyntaxHintsClassHintType(t *testing.T) {
	got := SyntaxHints([]string{"Int", "Bool", "String", "Unit"}, "@")
	if len(got) != 1 || got[0] != "did you forget a type (Int, Bool, String, or Unit)?" {
		t.Fatalf("expected type class hint, got %v", got)
	}
}

func TestSyntaxHintsSingleExpectedFallback(t *testing.T) {
	got := SyntaxHints([]string{"->"}, "@")
	if len(got) != 1 || got[0] != "function declarations need '->' before the return type" {
		t.Fatalf("expected -> hint, got %v", got)
	}
}

func TestSyntaxHintsGenericFallbackIsSortedAndJoined(t *testing.T) {
	got := SyntaxHints([]string{"b", "a", "c"}, "@")
	if len(got) != 1 || got[0] != "expected a, b, c" {
		t.Fatalf("expected sorted fallback list, got %v", got)
	}
}

func TestSyntaxHintsNoExpectedReturnsNil(t *testing.T) {
	if got := SyntaxHints(nil, "@"); got != nil {
		t.Fatalf("expected nil hints when nothing is expected, got %v", got)
	}
}
