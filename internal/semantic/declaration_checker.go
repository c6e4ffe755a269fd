package semantic

import (
	"sort"

	"github.com/samber/lo"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/types"
)

// builtinNames are callable but reserved (spec §4.1), so they never go
// through Declare; New() places them in the root scope directly, and a
// misspelling of one of them gets a "did you mean?" suggestion.
var builtinNames = []string{"print", "length"}

// DeclarationChecker performs AGUDA's two-pass name resolution (spec
// §4.4), grounded in original_source/src/semantic/declaration_checker.rs's
// recursive-walk structure, extended with "did you mean?" suggestions and
// the RedefinedVariable shadow warning.
type DeclarationChecker struct {
	table    *SymbolTable
	errors   []DeclError
	warnings []Warning
	sawMain  bool
}

// NewDeclarationChecker builds a checker with a fresh symbol table.
func NewDeclarationChecker() *DeclarationChecker {
	return &DeclarationChecker{table: New()}
}

// Check runs both passes over prog and returns accumulated errors and
// warnings. The returned SymbolTable is reused by the type checker so
// visibility rules stay identical across both phases.
func (c *DeclarationChecker) Check(prog *ast.Program) (*SymbolTable, []DeclError, []Warning) {
	c.hoistFunctions(prog)
	c.walkBodies(prog)
	c.collectUnused()
	return c.table, c.errors, c.warnings
}

func (c *DeclarationChecker) addError(e DeclError) { c.errors = append(c.errors, e) }

// hoistFunctions is pass 1: pure accumulation, no body errors surface here
// (spec §9 "treat pass 1 as pure accumulation").
func (c *DeclarationChecker) hoistFunctions(prog *ast.Program) {
	for _, decl := range prog.Decls {
		fn, ok := decl.(*ast.FunDecl)
		if !ok {
			continue
		}
		if isReserved(fn.Id) {
			c.addError(DeclError{Kind: ReservedIdentifier, Id: fn.Id, Span: fn.Span()})
		}
		if fn.Id == "main" {
			if c.sawMain {
				c.addError(DeclError{Kind: DuplicateMain, Id: "main", Span: fn.Span()})
			}
			c.sawMain = true
		}
		for _, p := range fn.Params {
			if isReserved(p) {
				c.addError(DeclError{Kind: ReservedIdentifier, Id: p, Span: fn.Span()})
			}
		}
		if len(fn.Params) != len(fn.ParamTypes) {
			c.addError(DeclError{Kind: FunctionSignatureMismatch, Id: fn.Id, Span: fn.Span()})
		}
		paramTypes := make([]types.Type, len(fn.ParamTypes))
		for i, pt := range fn.ParamTypes {
			paramTypes[i] = typeExprToType(pt)
		}
		retTy := typeExprToType(fn.RetType)
		ok2 := c.table.Declare(fn.Id, types.NewFun(paramTypes, retTy), fn.Span())
		if !ok2 {
			c.addError(DeclError{Kind: DuplicateDeclaration, Id: fn.Id, Span: fn.Span()})
		}
	}
	if !c.sawMain {
		c.addError(DeclError{Kind: MissingMain, Id: "main"})
	}
}

func isReserved(id string) bool {
	switch id {
	case "print", "length":
		return true
	default:
		return false
	}
}

func typeExprToType(t ast.TypeExpr) types.Type {
	if t.Elem != nil {
		return types.NewArray(typeExprToType(*t.Elem))
	}
	ty, ok := types.FromName(t.Name)
	if !ok {
		return types.TAny
	}
	return ty
}

// walkBodies is pass 2.
func (c *DeclarationChecker) walkBodies(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			c.table.Enter()
			c.checkExpr(d.Value)
			c.table.Exit()
			if isReserved(d.Id) {
				c.addError(DeclError{Kind: ReservedIdentifier, Id: d.Id, Span: d.Span()})
			}
			if !c.table.Declare(d.Id, typeExprToType(d.Type), d.Span()) {
				c.addError(DeclError{Kind: DuplicateDeclaration, Id: d.Id, Span: d.Span()})
			}
		case *ast.FunDecl:
			c.table.Enter()
			for i, p := range d.Params {
				ty := types.TAny
				if i < len(d.ParamTypes) {
					ty = typeExprToType(d.ParamTypes[i])
				}
				c.table.Declare(p, ty, d.Span())
			}
			c.checkExpr(d.Body)
			c.table.Exit()
		}
	}
}

// checkExpr walks an expression resolving identifier uses and managing the
// Let-inside-Chain scope extension (spec §4.4).
func (c *DeclarationChecker) checkExpr(e ast.Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.IntLit, *ast.BoolLit, *ast.StringLit, *ast.UnitLit:
		return
	case *ast.Ident:
		c.resolve(n.Name, n)
	case *ast.BinOp:
		c.checkExpr(n.Lhs)
		c.checkExpr(n.Rhs)
	case *ast.Not:
		c.checkExpr(n.Expr)
	case *ast.IfElse:
		c.checkExpr(n.Cond)
		c.checkExpr(n.Then)
		c.checkExpr(n.Else)
	case *ast.While:
		c.checkExpr(n.Cond)
		c.checkExpr(n.Body)
	case *ast.Set:
		c.checkExpr(n.Target)
		c.checkExpr(n.Value)
	case *ast.FunCall:
		if _, ok := c.table.Lookup(n.Id); !ok {
			c.addError(DeclError{Kind: UndeclaredIdentifier, Id: n.Id, Suggestion: suggest(n.Id, c.candidateNames()), Span: n.Span()})
		}
		for _, a := range n.Args {
			c.checkExpr(a)
		}
	case *ast.NewArray:
		c.checkExpr(n.Size)
		c.checkExpr(n.Init)
	case *ast.ArrayIndex:
		c.checkExpr(n.Target)
		c.checkExpr(n.Index)
	case *ast.Chain:
		if let, ok := n.Lhs.(*ast.Let); ok {
			c.table.Enter()
			c.checkExpr(let.Value)
			c.declareLet(let)
			c.checkExpr(n.Rhs)
			c.table.Exit()
			return
		}
		c.checkExpr(n.Lhs)
		c.checkExpr(n.Rhs)
	case *ast.Let:
		// A Let not inside a Chain (tail position of a declaration body):
		// its scope would extend past the enclosing body, but there is
		// nothing after it, so declare for completeness and move on.
		c.checkExpr(n.Value)
		c.declareLet(n)
	}
}

func (c *DeclarationChecker) declareLet(let *ast.Let) {
	if isReserved(let.Id) {
		c.addError(DeclError{Kind: ReservedIdentifier, Id: let.Id, Span: let.Span()})
	}
	if !isWildcard(let.Id) {
		if _, shadowed := c.table.Lookup(let.Id); shadowed {
			c.warnings = append(c.warnings, Warning{Kind: RedefinedVariable, Id: let.Id, Span: let.Span()})
		}
	}
	c.table.Declare(let.Id, typeExprToType(let.Type), let.Span())
}

func (c *DeclarationChecker) resolve(id string, node ast.Node) {
	if _, ok := c.table.Lookup(id); !ok {
		c.addError(DeclError{
			Kind:       UndeclaredIdentifier,
			Id:         id,
			Suggestion: suggest(id, c.candidateNames()),
			Span:       node.Span(),
		})
	}
}

// candidateNames is the "did you mean?" search pool: the table's visible
// names, deduped with lo.Uniq, plus any builtinName not already among them
// (lo.Contains guards against listing one twice).
func (c *DeclarationChecker) candidateNames() []string {
	names := lo.Uniq(c.table.AllNames())
	for _, b := range builtinNames {
		if !lo.Contains(names, b) {
			names = append(names, b)
		}
	}
	return names
}

func (c *DeclarationChecker) collectUnused() {
	relevant := lo.Filter(c.table.Unused(), func(sym Symbol, _ int) bool { return !isWildcard(sym.Name) })
	for _, sym := range relevant {
		c.warnings = append(c.warnings, Warning{Kind: UnusedIdentifier, Id: sym.Name, Span: sym.Span})
	}
}

// suggest finds the closest name to id within Levenshtein distance <= 2
// among candidates, per spec §4.4.
func suggest(id string, candidates []string) string {
	best := ""
	bestDist := 3
	sort.Strings(candidates) // deterministic tie-break
	for _, c := range candidates {
		d := levenshtein(id, c)
		if d <= 2 && d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
