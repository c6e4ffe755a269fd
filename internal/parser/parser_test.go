package parser

import (
	"testing"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/lexer"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexErr := lexer.New(src).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	prog, err := New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %+v", err)
	}
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseSource(t, `let x : Int = 1`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(prog.Decls))
	}
	v, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *VarDecl, got %T", prog.Decls[0])
	}
	if v.Id != "x" || v.Type.Name != "Int" {
		t.Errorf("got id=%s type=%s", v.Id, v.Type.Name)
	}
}

func TestParseFunDecl(t *testing.T) {
	prog := parseSource(t, `let f (n) : (Int) -> Int = n`)
	fn := prog.Decls[0].(*ast.FunDecl)
	if fn.Id != "f" || len(fn.Params) != 1 || fn.Params[0] != "n" {
		t.Errorf("unexpected fun decl: %+v", fn)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog := parseSource(t, `let x : Int = 1 + 2 * 3 ^ 2`)
	v := prog.Decls[0].(*ast.VarDecl)
	got := v.Value.String()
	want := "(1 + (2 * (3 ** 2)))"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParsePowIsRightAssociative(t *testing.T) {
	prog := parseSource(t, `let x : Int = 2 ^ 3 ^ 2`)
	v := prog.Decls[0].(*ast.VarDecl)
	want := "(2 ** (3 ** 2))"
	if got := v.Value.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseChainAndLet(t *testing.T) {
	prog := parseSource(t, `let main (x) : (Unit) -> Unit = let y:Int=0; y`)
	fn := prog.Decls[0].(*ast.FunDecl)
	chain, ok := fn.Body.(*ast.Chain)
	if !ok {
		t.Fatalf("expected *Chain, got %T", fn.Body)
	}
	if _, ok := chain.Lhs.(*ast.Let); !ok {
		t.Fatalf("expected Chain.Lhs to be *Let, got %T", chain.Lhs)
	}
}

func TestParseUnaryMinusDesugarsToZeroMinus(t *testing.T) {
	prog := parseSource(t, `let x : Int = -5`)
	v := prog.Decls[0].(*ast.VarDecl)
	bin, ok := v.Value.(*ast.BinOp)
	if !ok || bin.Op != ast.Sub {
		t.Fatalf("expected BinOp(Sub), got %T", v.Value)
	}
	lit, ok := bin.Lhs.(*ast.IntLit)
	if !ok || lit.Value != 0 {
		t.Fatalf("expected zero lhs, got %+v", bin.Lhs)
	}
}

func TestParseArrayTypeAndNewArray(t *testing.T) {
	prog := parseSource(t, `let x : Int[] = new Int[3|0]`)
	v := prog.Decls[0].(*ast.VarDecl)
	if v.Type.Elem == nil || v.Type.Elem.Name != "Int" {
		t.Fatalf("expected Int[], got %+v", v.Type)
	}
	if _, ok := v.Value.(*ast.NewArray); !ok {
		t.Fatalf("expected *NewArray, got %T", v.Value)
	}
}

func TestParseComparisonIsNonAssociative(t *testing.T) {
	toks, lexErr := lexer.New(`let x:Bool = 1 < 2 < 3`).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	_, err := New(toks).Parse()
	if err == nil {
		t.Fatalf("expected a syntax error for chained comparisons, got none")
	}
}
