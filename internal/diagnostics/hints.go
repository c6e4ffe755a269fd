package diagnostics

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// expression/type/literal opener classes used for class-based hints
// (spec §4.7), ported from original_source/src/diagnostics/hints.rs.
var (
	expressionOpeners = []string{"let", "set", "if", "while", "new"}
	typeOpeners       = []string{"Int", "Bool", "String", "Unit"}
	literalOpeners    = []string{"int", "string", "true", "false", "unit"}
)

// SyntaxHints computes the hint list for a syntax error given the set of
// expected token spellings and the spelling of the token actually found.
func SyntaxHints(expected []string, found string) []string {
	if h := perFoundHint(expected, found); h != "" {
		return []string{h}
	}
	if h := classHint(expected); h != "" {
		return []string{h}
	}
	if h := perExpectedHint(expected); h != "" {
		return []string{h}
	}
	if len(expected) == 0 {
		return nil
	}
	sorted := append([]string(nil), expected...)
	sort.Strings(sorted)
	return []string{"expected " + strings.Join(sorted, ", ")}
}

func perFoundHint(expected []string, found string) string {
	switch found {
	case "else":
		return "did you forget a matching 'then' before this 'else'?"
	case "then":
		return "did you forget an 'if' before this 'then'?"
	case "do":
		return "did you forget a 'while' before this 'do'?"
	case ")":
		return "unexpected closing ')' — is there a missing operand?"
	case "]":
		return "unexpected closing ']' — is there a missing expression?"
	case "=":
		if lo.Contains(expected, "==") {
			return "use '==' for comparison, '=' is only used in 'let'/'set'"
		}
	case "==":
		if lo.Contains(expected, "=") {
			return "use '=' to bind or assign, '==' is only for comparison"
		}
	case "|":
		if lo.Contains(expected, "||") {
			return "did you mean '||'?"
		}
	case "unit":
		if lo.Contains(expected, "Unit") {
			return "type names are capitalized: did you mean 'Unit'?"
		}
	case "Unit":
		if lo.Contains(expected, "unit") {
			return "the unit value is lowercase: did you mean 'unit'?"
		}
	}
	return ""
}

func classHint(expected []string) string {
	containsAll := func(class []string) bool {
		return lo.EveryBy(class, func(tok string) bool { return lo.Contains(expected, tok) })
	}
	switch {
	case containsAll(expressionOpeners):
		return "did you forget an expression?"
	case containsAll(typeOpeners):
		return "did you forget a type (Int, Bool, String, or Unit)?"
	case containsAll(literalOpeners):
		return "did you forget a value?"
	default:
		return ""
	}
}

func perExpectedHint(expected []string) string {
	single := func(tok, hint string) string {
		if len(expected) == 1 && expected[0] == tok {
			return hint
		}
		return ""
	}
	for _, p := range []struct{ tok, hint string }{
		{"->", "function declarations need '->' before the return type"},
		{")", "missing closing ')'"},
		{"]", "missing closing ']'"},
		{"then", "missing 'then' after the 'if' condition"},
		{"do", "missing 'do' after the 'while' condition"},
		{"identifier", "expected an identifier here"},
		{"|", "array literals separate size and initial value with '|', e.g. new Int[3|0]"},
		{":", "missing ':' before the type annotation"},
		{",", "missing ',' between items"},
		{";", "missing ';' between statements"},
		{"eof", "unexpected trailing input after the program"},
	} {
		if h := single(p.tok, p.hint); h != "" {
			return h
		}
	}
	return ""
}
