package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the deterministic AST text form described in spec §6,
// used both for `--ast` output and for golden round-trip tests.
func (p *Program) String() string {
	parts := make([]string, len(p.Decls))
	for i, d := range p.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n\n")
}

func (t TypeExpr) String() string {
	if t.Elem != nil {
		return t.Elem.String() + "[]"
	}
	return t.Name
}

func indentBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}

func (d *VarDecl) String() string {
	return fmt.Sprintf("let %s : %s =\n%s", d.Id, d.Type.String(), indentBlock(d.Value.String()))
}

func (d *FunDecl) String() string {
	types := make([]string, len(d.ParamTypes))
	for i, t := range d.ParamTypes {
		types[i] = t.String()
	}
	return fmt.Sprintf("let %s (%s) : (%s) -> %s =\n%s",
		d.Id, strings.Join(d.Params, ","), strings.Join(types, ","), d.RetType.String(),
		indentBlock(d.Body.String()))
}

func (n *IntLit) String() string    { return strconv.FormatInt(n.Value, 10) }
func (n *BoolLit) String() string   { return strconv.FormatBool(n.Value) }
func (n *StringLit) String() string { return strconv.Quote(n.Value) }
func (n *UnitLit) String() string   { return "unit" }
func (n *Ident) String() string     { return n.Name }

func (n *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Lhs.String(), n.Op.String(), n.Rhs.String())
}

func (n *Not) String() string { return fmt.Sprintf("(!%s)", n.Expr.String()) }

func (n *IfElse) String() string {
	return fmt.Sprintf("if %s then\n%s\nelse\n%s",
		n.Cond.String(), indentBlock(n.Then.String()), indentBlock(n.Else.String()))
}

func (n *While) String() string {
	return fmt.Sprintf("while %s do\n%s", n.Cond.String(), indentBlock(n.Body.String()))
}

func (n *Let) String() string {
	return fmt.Sprintf("let %s : %s = %s", n.Id, n.Type.String(), n.Value.String())
}

func (n *Set) String() string {
	return fmt.Sprintf("set %s = %s", n.Target.String(), n.Value.String())
}

func (n *FunCall) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Id, strings.Join(args, ","))
}

func (n *NewArray) String() string {
	return fmt.Sprintf("new %s[%s|%s]", n.Elem.String(), n.Size.String(), n.Init.String())
}

func (n *ArrayIndex) String() string {
	return fmt.Sprintf("%s[%s]", n.Target.String(), n.Index.String())
}

func (n *Chain) String() string {
	return fmt.Sprintf("%s;\n%s", n.Lhs.String(), n.Rhs.String())
}
