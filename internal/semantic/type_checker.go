package semantic

import (
	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/types"
)

// TypeErrorKind enumerates spec §7's TypeError variants.
type TypeErrorKind int

const (
	TypeMismatch TypeErrorKind = iota
	IncompatibleTypes
	ArgumentCountMismatch
	NotCallable
	NotIndexable
	MainSignatureMismatch
)

// TypeError is a single type-checking failure. Found/Expected hold types
// for TypeMismatch/IncompatibleTypes/NotCallable/NotIndexable;
// FoundCount/ExpectedCount hold argument counts for
// ArgumentCountMismatch.
type TypeError struct {
	Kind          TypeErrorKind
	Found         types.Type
	Expected      types.Type
	FoundCount    int
	ExpectedCount int
	Span          ast.Node
}

// TypeChecker implements AGUDA's bidirectional checker (spec §4.5),
// grounded in original_source/src/semantic/type_checker.rs's type_of/
// check_against split, enriched with spec.md's IfElse checking-mode and
// main-signature validation that the older Rust snapshot lacked.
type TypeChecker struct {
	table  *SymbolTable
	errors []TypeError
}

// NewTypeChecker builds a checker that shares table with the declaration
// checker, so identifier visibility is identical across both phases.
func NewTypeChecker(table *SymbolTable) *TypeChecker {
	return &TypeChecker{table: table}
}

// Check type-checks every declaration and returns accumulated errors.
//
// The declaration checker's table arrives with every inner scope already
// closed (Enter/Exit balanced by the time Check returned), so this walk
// re-opens the same scopes the declaration checker did, in the same order,
// redeclaring parameters and chain-local Lets as it goes — the "re-build
// in the same order" option spec §5 allows explicitly.
func (c *TypeChecker) Check(prog *ast.Program) []TypeError {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			c.table.Enter()
			c.checkAgainst(d.Value, typeExprToType(d.Type), d)
			c.table.Exit()
		case *ast.FunDecl:
			c.table.Enter()
			for i, p := range d.Params {
				ty := types.TAny
				if i < len(d.ParamTypes) {
					ty = typeExprToType(d.ParamTypes[i])
				}
				c.table.Declare(p, ty, d.Span())
			}
			retTy := typeExprToType(d.RetType)
			c.checkAgainst(d.Body, retTy, d)
			c.table.Exit()
			if d.Id == "main" {
				c.checkMainSignature(d)
			}
		}
	}
	return c.errors
}

func (c *TypeChecker) checkMainSignature(d *ast.FunDecl) {
	ok := len(d.Params) == 1 && len(d.ParamTypes) == 1 &&
		typeExprToType(d.ParamTypes[0]).Kind == types.Unit &&
		typeExprToType(d.RetType).Kind == types.Unit
	if !ok {
		c.errors = append(c.errors, TypeError{Kind: MainSignatureMismatch, Span: d})
	}
}

func (c *TypeChecker) addError(e TypeError) { c.errors = append(c.errors, e) }

// checkAgainst checks e against expected, per spec §4.5: Any is accepted
// everywhere, Array(Any) accepts any concrete Array(T); IfElse checks both
// branches against expected instead of inferring the then-branch.
func (c *TypeChecker) checkAgainst(e ast.Expr, expected types.Type, node ast.Node) {
	if expected.Kind == types.Any {
		c.typeOf(e)
		return
	}
	if ifE, ok := e.(*ast.IfElse); ok {
		c.checkAgainst(ifE.Cond, types.TBool, ifE)
		c.checkAgainst(ifE.Then, expected, ifE)
		c.checkAgainst(ifE.Else, expected, ifE)
		return
	}
	found := c.typeOf(e)
	if !found.Equals(expected) {
		c.addError(TypeError{Kind: TypeMismatch, Found: found, Expected: expected, Span: node})
	}
}

// typeOf infers e's type (synthesis mode).
func (c *TypeChecker) typeOf(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return types.TInt
	case *ast.BoolLit:
		return types.TBool
	case *ast.StringLit:
		return types.TString
	case *ast.UnitLit:
		return types.TUnit
	case *ast.Ident:
		if sym, ok := c.table.Lookup(n.Name); ok {
			return sym.Type
		}
		return types.TAny // already reported by the declaration checker
	case *ast.BinOp:
		return c.typeOfBinOp(n)
	case *ast.Not:
		c.checkAgainst(n.Expr, types.TBool, n)
		return types.TBool
	case *ast.IfElse:
		c.checkAgainst(n.Cond, types.TBool, n)
		thenTy := c.typeOf(n.Then)
		c.checkAgainst(n.Else, thenTy, n)
		return thenTy
	case *ast.While:
		c.checkAgainst(n.Cond, types.TBool, n)
		c.typeOf(n.Body)
		return types.TUnit
	case *ast.Let:
		c.checkAgainst(n.Value, typeExprToType(n.Type), n)
		return types.TUnit
	case *ast.Set:
		lhsTy := c.typeOf(n.Target)
		c.checkAgainst(n.Value, lhsTy, n)
		return types.TUnit
	case *ast.Chain:
		if let, ok := n.Lhs.(*ast.Let); ok {
			c.table.Enter()
			c.checkAgainst(let.Value, typeExprToType(let.Type), let)
			c.table.Declare(let.Id, typeExprToType(let.Type), let.Span())
			result := c.typeOf(n.Rhs)
			c.table.Exit()
			return result
		}
		c.typeOf(n.Lhs)
		return c.typeOf(n.Rhs)
	case *ast.FunCall:
		return c.typeOfCall(n)
	case *ast.NewArray:
		c.checkAgainst(n.Size, types.TInt, n)
		elemTy := typeExprToType(n.Elem)
		c.checkAgainst(n.Init, elemTy, n)
		return types.NewArray(elemTy)
	case *ast.ArrayIndex:
		return c.typeOfIndex(n)
	default:
		return types.TAny
	}
}

func (c *TypeChecker) typeOfBinOp(n *ast.BinOp) types.Type {
	switch n.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod, ast.Pow:
		c.checkAgainst(n.Lhs, types.TInt, n)
		c.checkAgainst(n.Rhs, types.TInt, n)
		return types.TInt
	case ast.And, ast.Or:
		c.checkAgainst(n.Lhs, types.TBool, n)
		c.checkAgainst(n.Rhs, types.TBool, n)
		return types.TBool
	case ast.Eq, ast.Neq:
		lhsTy := c.typeOf(n.Lhs)
		c.checkAgainst(n.Rhs, lhsTy, n)
		return types.TBool
	default: // Lt, Leq, Gt, Geq
		lhsTy := c.typeOf(n.Lhs)
		c.checkAgainst(n.Rhs, lhsTy, n)
		return types.TBool
	}
}

func (c *TypeChecker) typeOfCall(n *ast.FunCall) types.Type {
	sym, ok := c.table.Lookup(n.Id)
	if !ok || sym.Type.Kind != types.Fun {
		found := types.TAny
		if ok {
			found = sym.Type
		}
		c.addError(TypeError{Kind: NotCallable, Found: found, Span: n})
		for _, a := range n.Args {
			c.typeOf(a)
		}
		return types.TAny
	}
	if len(n.Args) != len(sym.Type.Params) {
		c.addError(TypeError{
			Kind:          ArgumentCountMismatch,
			FoundCount:    len(n.Args),
			ExpectedCount: len(sym.Type.Params),
			Span:          n,
		})
	}
	for i, a := range n.Args {
		if i < len(sym.Type.Params) {
			c.checkAgainst(a, sym.Type.Params[i], n)
		} else {
			c.typeOf(a)
		}
	}
	return *sym.Type.Ret
}

func (c *TypeChecker) typeOfIndex(n *ast.ArrayIndex) types.Type {
	c.checkAgainst(n.Index, types.TInt, n)
	targetTy := c.typeOf(n.Target)
	if targetTy.Kind == types.Any {
		return types.TAny
	}
	if targetTy.Kind != types.Array {
		c.addError(TypeError{Kind: NotIndexable, Found: targetTy, Span: n})
		return types.TAny
	}
	return *targetTy.Elem
}
