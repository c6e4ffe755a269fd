// Package parser implements AGUDA's recursive-descent/precedence-climbing
// parser (spec §4.2), grounded in the teacher's Pratt-parser precedence
// table design (internal/parser/parser.go in the reference DWScript
// compiler) but rebuilt around AGUDA's 10-level grammar.
package parser

import (
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/token"
)

// ErrorKind classifies a syntax error.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	UnexpectedEof
	InvalidToken
	ExtraToken
)

// Error is a single fatal parser failure (spec: "a syntax error is fatal").
type Error struct {
	Kind     ErrorKind
	Expected []string
	Found    token.Token
}

func (e *Error) Error() string { return "syntax error" }

// Parser consumes a token stream produced by the lexer.
type Parser struct {
	toks []token.Token
	pos  int
}

// New constructs a Parser over toks (as returned by lexer.Tokenize).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// errExpected builds a sorted, deduplicated expected-token set: call sites
// sometimes list the same spelling from more than one grammar branch, and a
// stable order keeps diagnostic output (and its golden tests) deterministic.
func (p *Parser) errExpected(expected ...string) *Error {
	found := p.cur()
	sorted := lo.Uniq(expected)
	sort.Strings(sorted)
	if found.Type == token.EOF {
		return &Error{Kind: UnexpectedEof, Expected: sorted, Found: found}
	}
	return &Error{Kind: UnexpectedToken, Expected: sorted, Found: found}
}

func (p *Parser) expect(t token.Type) (token.Token, *Error) {
	if p.cur().Type != t {
		return token.Token{}, p.errExpected(t.String())
	}
	return p.advance(), nil
}

// Parse parses the full token stream into a Program. A syntax error halts
// parsing immediately; no partial AST is returned.
func (p *Parser) Parse() (*ast.Program, *Error) {
	prog := &ast.Program{}
	for p.cur().Type != token.EOF {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog, nil
}

func (p *Parser) parseDecl() (ast.Decl, *Error) {
	letTok, err := p.expect(token.LET)
	if err != nil {
		return nil, err
	}
	id, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if p.cur().Type == token.LPAREN {
		return p.parseFunDecl(letTok, id)
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{
		SpanVal: letTok.Span.Merge(val.Span()),
		Id:      id.Literal,
		Type:    ty,
		Value:   val,
	}, nil
}

func (p *Parser) parseFunDecl(letTok, id token.Token) (ast.Decl, *Error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	if p.cur().Type != token.RPAREN {
		for {
			pid, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			params = append(params, pid.Literal)
			if p.cur().Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var paramTypes []ast.TypeExpr
	if p.cur().Type != token.RPAREN {
		for {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			paramTypes = append(paramTypes, t)
			if p.cur().Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.FunDecl{
		SpanVal:    letTok.Span.Merge(body.Span()),
		Id:         id.Literal,
		Params:     params,
		ParamTypes: paramTypes,
		RetType:    retType,
		Body:       body,
	}, nil
}

func (p *Parser) parseType() (ast.TypeExpr, *Error) {
	tok := p.cur()
	if !tok.Type.IsTypeName() {
		return ast.TypeExpr{}, p.errExpected("Int", "Bool", "String", "Unit")
	}
	p.advance()
	ty := ast.TypeExpr{SpanVal: tok.Span, Name: tok.Literal}
	for p.cur().Type == token.LBRACKET && p.peek().Type == token.RBRACKET {
		p.advance()
		close := p.advance()
		ty = ast.TypeExpr{SpanVal: ty.SpanVal.Merge(close.Span), Elem: &ty}
	}
	return ty, nil
}

// parseExpr parses a full expression, handling Chain (`;`, right-assoc,
// lowest precedence) and the fact that Let is only valid as a chain's left
// operand.
func (p *Parser) parseExpr() (ast.Expr, *Error) {
	left, err := p.parseExprNoChain()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == token.SEMI {
		p.advance()
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Chain{SpanVal: left.Span().Merge(right.Span()), Lhs: left, Rhs: right}, nil
	}
	return left, nil
}

func (p *Parser) parseExprNoChain() (ast.Expr, *Error) {
	switch p.cur().Type {
	case token.LET:
		return p.parseLet()
	case token.SET:
		return p.parseSet()
	case token.IF:
		return p.parseIfElse()
	case token.WHILE:
		return p.parseWhile()
	case token.NEW:
		return p.parseNewArray()
	default:
		return p.parseBinary(0)
	}
}

func (p *Parser) parseLet() (ast.Expr, *Error) {
	letTok := p.advance()
	id, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExprNoChain()
	if err != nil {
		return nil, err
	}
	return &ast.Let{SpanVal: letTok.Span.Merge(val.Span()), Id: id.Literal, Type: ty, Value: val}, nil
}

func (p *Parser) parseSet() (ast.Expr, *Error) {
	setTok := p.advance()
	lhs, err := p.parseLhs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExprNoChain()
	if err != nil {
		return nil, err
	}
	return &ast.Set{SpanVal: setTok.Span.Merge(val.Span()), Target: lhs, Value: val}, nil
}

func (p *Parser) parseLhs() (ast.Lhs, *Error) {
	idTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var lhs ast.Lhs = &ast.Ident{SpanVal: idTok.Span, Name: idTok.Literal}
	for p.cur().Type == token.LBRACKET {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		close, err := p.expect(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		lhs = &ast.ArrayIndex{SpanVal: lhs.Span().Merge(close.Span), Target: lhs, Index: idx}
	}
	return lhs, nil
}

func (p *Parser) parseIfElse() (ast.Expr, *Error) {
	ifTok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenE, err := p.parseExprNoChain()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	elseE, err := p.parseExprNoChain()
	if err != nil {
		return nil, err
	}
	return &ast.IfElse{SpanVal: ifTok.Span.Merge(elseE.Span()), Cond: cond, Then: thenE, Else: elseE}, nil
}

func (p *Parser) parseWhile() (ast.Expr, *Error) {
	whileTok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseExprNoChain()
	if err != nil {
		return nil, err
	}
	return &ast.While{SpanVal: whileTok.Span.Merge(body.Span()), Cond: cond, Body: body}, nil
}

func (p *Parser) parseNewArray() (ast.Expr, *Error) {
	newTok := p.advance()
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	size, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.PIPE); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	return &ast.NewArray{SpanVal: newTok.Span.Merge(close.Span), Elem: elem, Size: size, Init: init}, nil
}

// precedence table, spec §4.2 levels 2-8 (Chain is handled by parseExpr,
// unary/call/index by parseUnary/parsePrimary).
const (
	precNone = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precPow
)

type opInfo struct {
	prec     int
	op       ast.Op
	rightAssoc bool
	nonAssoc bool
}

var binOps = map[token.Type]opInfo{
	token.OR:      {precOr, ast.Or, false, false},
	token.AND:     {precAnd, ast.And, false, false},
	token.EQ:      {precEquality, ast.Eq, false, true},
	token.NEQ:     {precEquality, ast.Neq, false, true},
	token.LT:      {precRelational, ast.Lt, false, true},
	token.LE:      {precRelational, ast.Leq, false, true},
	token.GT:      {precRelational, ast.Gt, false, true},
	token.GE:      {precRelational, ast.Geq, false, true},
	token.PLUS:    {precAdditive, ast.Add, false, false},
	token.MINUS:   {precAdditive, ast.Sub, false, false},
	token.STAR:    {precMultiplicative, ast.Mul, false, false},
	token.SLASH:   {precMultiplicative, ast.Div, false, false},
	token.PERCENT: {precMultiplicative, ast.Mod, false, false},
	token.POW:     {precPow, ast.Pow, true, false},
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, *Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		info, ok := binOps[p.cur().Type]
		if !ok || info.prec < minPrec || info.prec == precNone {
			return left, nil
		}
		p.advance()
		nextMin := info.prec + 1
		if info.rightAssoc {
			nextMin = info.prec
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{SpanVal: left.Span().Merge(right.Span()), Lhs: left, Op: info.op, Rhs: right}
		if info.nonAssoc {
			// A second operator of the same non-associative level is an
			// error; looser operators (&&, ||) may still follow.
			if next, ok := binOps[p.cur().Type]; ok && next.prec == info.prec {
				return nil, p.errExpected()
			}
		}
	}
}

func (p *Parser) parseUnary() (ast.Expr, *Error) {
	switch p.cur().Type {
	case token.NOT:
		notTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Not{SpanVal: notTok.Span.Merge(operand.Span()), Expr: operand}, nil
	case token.MINUS:
		minusTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &ast.IntLit{SpanVal: minusTok.Span, Value: 0}
		return &ast.BinOp{SpanVal: minusTok.Span.Merge(operand.Span()), Lhs: zero, Op: ast.Sub, Rhs: operand}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, *Error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.LBRACKET {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		close, err := p.expect(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		prim = &ast.ArrayIndex{SpanVal: prim.Span().Merge(close.Span), Target: prim, Index: idx}
	}
	return prim, nil
}

func (p *Parser) parsePrimary() (ast.Expr, *Error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		v, convErr := strconv.ParseInt(tok.Literal, 10, 64)
		if convErr != nil {
			return nil, &Error{Kind: InvalidToken, Found: tok}
		}
		return &ast.IntLit{SpanVal: tok.Span, Value: v}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLit{SpanVal: tok.Span, Value: tok.Literal}, nil
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{SpanVal: tok.Span, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{SpanVal: tok.Span, Value: false}, nil
	case token.UNIT:
		p.advance()
		return &ast.UnitLit{SpanVal: tok.Span}, nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.IDENT:
		p.advance()
		if p.cur().Type == token.LPAREN {
			return p.parseCall(tok)
		}
		return &ast.Ident{SpanVal: tok.Span, Name: tok.Literal}, nil
	case token.EOF:
		return nil, p.errExpected("expression")
	default:
		return nil, p.errExpected("expression")
	}
}

func (p *Parser) parseCall(id token.Token) (ast.Expr, *Error) {
	p.advance() // (
	var args []ast.Expr
	if p.cur().Type != token.RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	close, err := p.expect(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.FunCall{SpanVal: id.Span.Merge(close.Span), Id: id.Literal, Args: args}, nil
}
