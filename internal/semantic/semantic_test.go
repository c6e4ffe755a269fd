package semantic

import (
	"testing"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/lexer"
	"github.com/agu-lang/aguda-go/internal/parser"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexErr := lexer.New(src).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	prog, parseErr := parser.New(toks).Parse()
	if parseErr != nil {
		t.Fatalf("parse error: %+v", parseErr)
	}
	return prog
}

// scenario 4 (spec §8): undeclared identifier.
func TestUndeclaredIdentifier(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = print(x)`)
	_, errs, _ := NewDeclarationChecker().Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == UndeclaredIdentifier && e.Id == "x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UndeclaredIdentifier(x), got %+v", errs)
	}
}

// scenario 6 (spec §8): root-scope duplicate declaration.
func TestDuplicateDeclarationAtRoot(t *testing.T) {
	prog := parseSrc(t, `let x : Int = 1
let x : Bool = true
let main (_) : (Unit) -> Unit = unit`)
	_, errs, _ := NewDeclarationChecker().Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == DuplicateDeclaration && e.Id == "x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DuplicateDeclaration(x), got %+v", errs)
	}
}

// scenario 7 (spec §8): missing main.
func TestMissingMain(t *testing.T) {
	prog := parseSrc(t, `let x : Int = 1`)
	_, errs, _ := NewDeclarationChecker().Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == MissingMain {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MissingMain, got %+v", errs)
	}
}

func TestDuplicateMain(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = unit
let main (_) : (Unit) -> Unit = unit`)
	_, errs, _ := NewDeclarationChecker().Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == DuplicateMain {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DuplicateMain, got %+v", errs)
	}
}

func TestInnerScopeShadowIsNotAnError(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = let x:Int=1; let x:Int=2; x`)
	_, errs, _ := NewDeclarationChecker().Check(prog)
	for _, e := range errs {
		if e.Kind == DuplicateDeclaration {
			t.Fatalf("inner-scope shadowing must not be a DuplicateDeclaration, got %+v", e)
		}
	}
}

func TestWildcardNeverUnusedOrUndeclared(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = let _ : Int = 1; unit`)
	_, errs, warnings := NewDeclarationChecker().Check(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	for _, w := range warnings {
		if w.Kind == UnusedIdentifier && w.Id == "_" {
			t.Fatalf("wildcard must never be reported unused")
		}
	}
}

func TestUnusedIdentifierWarning(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = let y:Int=1; unit`)
	_, _, warnings := NewDeclarationChecker().Check(prog)
	found := false
	for _, w := range warnings {
		if w.Kind == UnusedIdentifier && w.Id == "y" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UnusedIdentifier(y), got %+v", warnings)
	}
}

func TestLetRHSCannotSeeLHS(t *testing.T) {
	// A top-level `let x = ... x ...` must not resolve the inner `x`.
	prog := parseSrc(t, `let x : Int = x
let main (_) : (Unit) -> Unit = unit`)
	_, errs, _ := NewDeclarationChecker().Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == UndeclaredIdentifier && e.Id == "x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UndeclaredIdentifier(x) since RHS cannot see LHS, got %+v", errs)
	}
}

// scenario 5 (spec §8): type mismatch.
func TestTypeMismatch(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = print(true + 1)`)
	table, _, _ := NewDeclarationChecker().Check(prog)
	errs := NewTypeChecker(table).Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatch, got %+v", errs)
	}
}

func TestMainSignatureMismatch(t *testing.T) {
	prog := parseSrc(t, `let main (x) : (Int) -> Unit = unit`)
	table, _, _ := NewDeclarationChecker().Check(prog)
	errs := NewTypeChecker(table).Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == MainSignatureMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MainSignatureMismatch, got %+v", errs)
	}
}

func TestWellTypedProgramsHaveNoErrors(t *testing.T) {
	srcs := []string{
		`let main (_) : (Unit) -> Unit = print(1+2*3)`,
		`let main (_) : (Unit) -> Unit = let x:Int=0; while x<3 do (print(x); set x = x+1)`,
		`let f (n) : (Int) -> Int = if n<=1 then n else f(n-1)+f(n-2)
let main (_) : (Unit) -> Unit = print(f(10))`,
	}
	for _, src := range srcs {
		prog := parseSrc(t, src)
		table, declErrs, _ := NewDeclarationChecker().Check(prog)
		if len(declErrs) != 0 {
			t.Fatalf("%q: unexpected decl errors: %+v", src, declErrs)
		}
		typeErrs := NewTypeChecker(table).Check(prog)
		if len(typeErrs) != 0 {
			t.Fatalf("%q: unexpected type errors: %+v", src, typeErrs)
		}
	}
}

// Regression test for a bug where the type checker, sharing the declaration
// checker's table after all its inner scopes were already closed, could not
// see function parameters or chain-local lets and silently fell back to Any
// — masking real type errors inside function bodies and let-bound locals.
func TestTypeCheckerSeesFunctionParameters(t *testing.T) {
	prog := parseSrc(t, `let f (n) : (Int) -> Int = n + true
let main (_) : (Unit) -> Unit = unit`)
	table, declErrs, _ := NewDeclarationChecker().Check(prog)
	if len(declErrs) != 0 {
		t.Fatalf("unexpected decl errors: %+v", declErrs)
	}
	errs := NewTypeChecker(table).Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatch from n + true (n must resolve to Int, not Any), got %+v", errs)
	}
}

func TestTypeCheckerSeesChainLocalLet(t *testing.T) {
	prog := parseSrc(t, `let main (_) : (Unit) -> Unit = let y:Int=1; print(y + true)`)
	table, declErrs, _ := NewDeclarationChecker().Check(prog)
	if len(declErrs) != 0 {
		t.Fatalf("unexpected decl errors: %+v", declErrs)
	}
	errs := NewTypeChecker(table).Check(prog)
	found := false
	for _, e := range errs {
		if e.Kind == TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatch from y + true (y must resolve to Int, not Any), got %+v", errs)
	}
}

func TestLevenshteinSuggestion(t *testing.T) {
	if got := suggest("pint", []string{"print", "length"}); got != "print" {
		t.Errorf("got %q, want print", got)
	}
	if got := suggest("zzz", []string{"print", "length"}); got != "" {
		t.Errorf("expected no suggestion, got %q", got)
	}
}
