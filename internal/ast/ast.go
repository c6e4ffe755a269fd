// Package ast defines AGUDA's abstract syntax tree.
//
// Node shapes follow spec §3 directly; the teacher's Node/Expression/
// Statement interface split (internal/ast/ast.go in the reference DWScript
// compiler) is reused here, narrowed to AGUDA's smaller grammar.
package ast

import "github.com/agu-lang/aguda-go/internal/source"

// Node is implemented by every AST type.
type Node interface {
	Span() source.Span
	String() string
}

// Decl is a top-level declaration: Var or Fun.
type Decl interface {
	Node
	declNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Lhs is the addressable subset of Expr usable on the left of `set`.
type Lhs interface {
	Expr
	lhsNode()
}

// Program is the root node: an ordered list of top-level declarations.
type Program struct {
	Decls []Decl
}

func (p *Program) Span() source.Span {
	if len(p.Decls) == 0 {
		return source.Span{}
	}
	return p.Decls[0].Span().Merge(p.Decls[len(p.Decls)-1].Span())
}

// VarDecl is a top-level `let id : T = expr`.
type VarDecl struct {
	SpanVal source.Span
	Id      string
	Type    TypeExpr
	Value   Expr
}

func (d *VarDecl) Span() source.Span { return d.SpanVal }
func (d *VarDecl) declNode()         {}

// FunDecl is a top-level `let id (params) : (T...) -> T = expr`.
type FunDecl struct {
	SpanVal    source.Span
	Id         string
	Params     []string
	ParamTypes []TypeExpr
	RetType    TypeExpr
	Body       Expr
}

func (d *FunDecl) Span() source.Span { return d.SpanVal }
func (d *FunDecl) declNode()         {}

// TypeExpr is a surface type annotation: Int, Bool, String, Unit, or T[].
type TypeExpr struct {
	SpanVal source.Span
	Name    string // "Int" | "Bool" | "String" | "Unit"; empty if Elem != nil
	Elem    *TypeExpr
}

func (t TypeExpr) Span() source.Span { return t.SpanVal }

// Op enumerates AGUDA's binary operators.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Pow
	And
	Or
	Eq
	Neq
	Lt
	Leq
	Gt
	Geq
)

var opSymbols = map[Op]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%", Pow: "**",
	And: "&&", Or: "||", Eq: "==", Neq: "!=",
	Lt: "<", Leq: "<=", Gt: ">", Geq: ">=",
}

func (o Op) String() string { return opSymbols[o] }

// --- literals ---

type IntLit struct {
	SpanVal source.Span
	Value   int64
}

type BoolLit struct {
	SpanVal source.Span
	Value   bool
}

type StringLit struct {
	SpanVal source.Span
	Value   string
}

type UnitLit struct{ SpanVal source.Span }

type Ident struct {
	SpanVal source.Span
	Name    string
}

// --- compound expressions ---

type BinOp struct {
	SpanVal  source.Span
	Lhs, Rhs Expr
	Op       Op
}

type Not struct {
	SpanVal source.Span
	Expr    Expr
}

type IfElse struct {
	SpanVal          source.Span
	Cond, Then, Else Expr
}

type While struct {
	SpanVal    source.Span
	Cond, Body Expr
}

// Let is valid only as the left operand of a Chain, or as the final
// expression of a declaration body; its scope extends across the chain.
type Let struct {
	SpanVal source.Span
	Id      string
	Type    TypeExpr
	Value   Expr
}

type Set struct {
	SpanVal source.Span
	Target  Lhs
	Value   Expr
}

type FunCall struct {
	SpanVal source.Span
	Id      string
	Args    []Expr
}

type NewArray struct {
	SpanVal  source.Span
	Elem     TypeExpr
	Size     Expr
	Init     Expr
}

type ArrayIndex struct {
	SpanVal source.Span
	Target  Expr
	Index   Expr
}

// Chain is `lhs ; rhs`, right-associative sequencing.
type Chain struct {
	SpanVal  source.Span
	Lhs, Rhs Expr
}

func (n *IntLit) Span() source.Span     { return n.SpanVal }
func (n *BoolLit) Span() source.Span    { return n.SpanVal }
func (n *StringLit) Span() source.Span  { return n.SpanVal }
func (n *UnitLit) Span() source.Span    { return n.SpanVal }
func (n *Ident) Span() source.Span      { return n.SpanVal }
func (n *BinOp) Span() source.Span      { return n.SpanVal }
func (n *Not) Span() source.Span        { return n.SpanVal }
func (n *IfElse) Span() source.Span     { return n.SpanVal }
func (n *While) Span() source.Span      { return n.SpanVal }
func (n *Let) Span() source.Span        { return n.SpanVal }
func (n *Set) Span() source.Span        { return n.SpanVal }
func (n *FunCall) Span() source.Span    { return n.SpanVal }
func (n *NewArray) Span() source.Span   { return n.SpanVal }
func (n *ArrayIndex) Span() source.Span { return n.SpanVal }
func (n *Chain) Span() source.Span      { return n.SpanVal }

func (*IntLit) exprNode()     {}
func (*BoolLit) exprNode()    {}
func (*StringLit) exprNode()  {}
func (*UnitLit) exprNode()    {}
func (*Ident) exprNode()      {}
func (*BinOp) exprNode()      {}
func (*Not) exprNode()        {}
func (*IfElse) exprNode()     {}
func (*While) exprNode()      {}
func (*Let) exprNode()        {}
func (*Set) exprNode()        {}
func (*FunCall) exprNode()    {}
func (*NewArray) exprNode()   {}
func (*ArrayIndex) exprNode() {}
func (*Chain) exprNode()      {}

func (*Ident) lhsNode()      {}
func (*ArrayIndex) lhsNode() {}
