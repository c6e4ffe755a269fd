package codegen

import (
	"fmt"
	"strings"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/types"
)

// genExpr lowers e and returns the SSA register (or literal constant)
// holding its value. Unit-typed expressions return the literal "zeroinitializer"
// of type {}, which callers discard.
func (g *CodeGen) genExpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", n.Value)
	case *ast.BoolLit:
		if n.Value {
			return "1"
		}
		return "0"
	case *ast.UnitLit:
		return "zeroinitializer"
	case *ast.StringLit:
		return g.genStringLiteral(n.Value)
	case *ast.Ident:
		return g.genIdentLoad(n.Name)
	case *ast.BinOp:
		return g.genBinOp(n)
	case *ast.Not:
		v := g.genExpr(n.Expr)
		r := g.freshReg()
		g.emit("%s = xor i1 %s, 1", r, v)
		return r
	case *ast.IfElse:
		return g.genIfElse(n)
	case *ast.While:
		return g.genWhile(n)
	case *ast.Let:
		return g.genLet(n)
	case *ast.Set:
		return g.genSet(n)
	case *ast.Chain:
		return g.genChain(n)
	case *ast.FunCall:
		return g.genCall(n)
	case *ast.NewArray:
		return g.genNewArray(n)
	case *ast.ArrayIndex:
		return g.genArrayLoad(n)
	default:
		return "zeroinitializer"
	}
}

func (g *CodeGen) genStringLiteral(s string) string {
	g.strCount++
	name := fmt.Sprintf("@.str.%d", g.strCount)
	n := len(s)
	fmt.Fprintf(&g.decls, "%s.bytes = private constant [%d x i8] c\"%s\"\n", name, n, escapeLLVMString(s))
	fmt.Fprintf(&g.decls, "%s = private constant %%str { i64 %d, i8* getelementptr ([%d x i8], [%d x i8]* %s.bytes, i32 0, i32 0) }\n",
		name, n, n, n, name)
	r := g.freshReg()
	g.emit("%s = bitcast %%str* %s to %%str*", r, name)
	return r
}

func (g *CodeGen) genIdentLoad(name string) string {
	l, ok := g.lookupLocal(name)
	if !ok {
		// Globals: a bare top-level `let` binding.
		r := g.freshReg()
		g.emit("%s = load %s, %s* @%s", r, "i32", "i32", name)
		return r
	}
	r := g.freshReg()
	g.emit("%s = load %s, %s* %s", r, l.llvmTy, l.llvmTy, l.reg)
	return r
}

var intBinOp = map[ast.Op]string{
	ast.Add: "add", ast.Sub: "sub", ast.Mul: "mul", ast.Mod: "srem",
}
var cmpOp = map[ast.Op]string{
	ast.Eq: "eq", ast.Neq: "ne", ast.Lt: "slt", ast.Leq: "sle", ast.Gt: "sgt", ast.Geq: "sge",
}

func (g *CodeGen) genBinOp(n *ast.BinOp) string {
	switch n.Op {
	case ast.And:
		return g.genShortCircuit(n, true)
	case ast.Or:
		return g.genShortCircuit(n, false)
	case ast.Div:
		lhs, rhs := g.genExpr(n.Lhs), g.genExpr(n.Rhs)
		r := g.freshReg()
		g.emit("%s = call i32 @__div__(i32 %s, i32 %s)", r, lhs, rhs)
		return r
	case ast.Pow:
		lhs, rhs := g.genExpr(n.Lhs), g.genExpr(n.Rhs)
		r := g.freshReg()
		g.emit("%s = call i32 @__pow__(i32 %s, i32 %s)", r, lhs, rhs)
		return r
	case ast.Add, ast.Sub, ast.Mul, ast.Mod:
		lhs, rhs := g.genExpr(n.Lhs), g.genExpr(n.Rhs)
		r := g.freshReg()
		g.emit("%s = %s i32 %s, %s", r, intBinOp[n.Op], lhs, rhs)
		return r
	default: // comparisons, incl. equality on Bool/String (icmp over i32/i1)
		lhs, rhs := g.genExpr(n.Lhs), g.genExpr(n.Rhs)
		r := g.freshReg()
		ty := "i32"
		g.emit("%s = icmp %s %s %s, %s", r, cmpOp[n.Op], ty, lhs, rhs)
		return r
	}
}

// genShortCircuit lowers && / || with real short-circuit control flow
// (spec §4.6/§8): the RHS block is only reached when its evaluation can
// affect the result.
func (g *CodeGen) genShortCircuit(n *ast.BinOp, isAnd bool) string {
	lhs := g.genExpr(n.Lhs)
	rhsLabel := g.freshLabel("sc.rhs")
	mergeLabel := g.freshLabel("sc.merge")
	startLabel := g.freshLabel("sc.start")
	g.emit("br label %%%s", startLabel)
	g.emitLabel(startLabel)
	if isAnd {
		g.emit("br i1 %s, label %%%s, label %%%s", lhs, rhsLabel, mergeLabel)
	} else {
		g.emit("br i1 %s, label %%%s, label %%%s", lhs, mergeLabel, rhsLabel)
	}
	g.emitLabel(rhsLabel)
	rhs := g.genExpr(n.Rhs)
	g.emit("br label %%%s", mergeLabel)
	g.emitLabel(mergeLabel)
	r := g.freshReg()
	g.emit("%s = phi i1 [ %s, %%%s ], [ %s, %%%s ]", r, lhs, startLabel, rhs, rhsLabel)
	return r
}

func (g *CodeGen) genIfElse(n *ast.IfElse) string {
	cond := g.genExpr(n.Cond)
	thenLabel := g.freshLabel("if.then")
	elseLabel := g.freshLabel("if.else")
	mergeLabel := g.freshLabel("if.merge")
	g.emit("br i1 %s, label %%%s, label %%%s", cond, thenLabel, elseLabel)

	g.emitLabel(thenLabel)
	thenVal := g.genExpr(n.Then)
	thenEnd := g.currentLabel(thenLabel)
	g.emit("br label %%%s", mergeLabel)

	g.emitLabel(elseLabel)
	elseVal := g.genExpr(n.Else)
	elseEnd := g.currentLabel(elseLabel)
	g.emit("br label %%%s", mergeLabel)

	g.emitLabel(mergeLabel)
	r := g.freshReg()
	g.emit("%s = phi i32 [ %s, %%%s ], [ %s, %%%s ]", r, thenVal, thenEnd, elseVal, elseEnd)
	return r
}

// currentLabel is the block that falls through to the branch just emitted:
// the last label written to the current function body, which is later than
// entry when the arm contains its own branching (nested if, while, &&/||,
// new array).
func (g *CodeGen) currentLabel(entry string) string {
	lines := strings.Split(g.buf.String(), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := lines[i]; strings.HasSuffix(l, ":") && !strings.HasPrefix(l, " ") {
			return strings.TrimSuffix(l, ":")
		}
	}
	return entry
}

func (g *CodeGen) genWhile(n *ast.While) string {
	condLabel := g.freshLabel("while.cond")
	bodyLabel := g.freshLabel("while.body")
	afterLabel := g.freshLabel("while.after")
	g.emit("br label %%%s", condLabel)

	g.emitLabel(condLabel)
	cond := g.genExpr(n.Cond)
	g.emit("br i1 %s, label %%%s, label %%%s", cond, bodyLabel, afterLabel)

	g.emitLabel(bodyLabel)
	g.genExpr(n.Body)
	g.emit("br label %%%s", condLabel)

	g.emitLabel(afterLabel)
	return "zeroinitializer"
}

func (g *CodeGen) genLet(n *ast.Let) string {
	val := g.genExpr(n.Value)
	ty := llvmType(paramType(n.Type))
	if n.Id == "" || n.Id[0] == '_' {
		return "zeroinitializer"
	}
	slot := g.freshReg()
	g.emit("%s = alloca %s", slot, ty)
	g.emit("store %s %s, %s* %s", ty, val, ty, slot)
	g.declareLocal(n.Id, local{reg: slot, llvmTy: ty, aguType: paramType(n.Type)})
	return "zeroinitializer"
}

func (g *CodeGen) genSet(n *ast.Set) string {
	val := g.genExpr(n.Value)
	switch target := n.Target.(type) {
	case *ast.Ident:
		l, ok := g.lookupLocal(target.Name)
		if ok {
			g.emit("store %s %s, %s* %s", l.llvmTy, val, l.llvmTy, l.reg)
		}
	case *ast.ArrayIndex:
		g.genArrayStore(target, val)
	}
	return "zeroinitializer"
}

func (g *CodeGen) genChain(n *ast.Chain) string {
	if let, ok := n.Lhs.(*ast.Let); ok {
		g.pushScope()
		g.genLet(let)
		r := g.genExpr(n.Rhs)
		g.popScope()
		return r
	}
	g.genExpr(n.Lhs)
	return g.genExpr(n.Rhs)
}

func (g *CodeGen) genCall(n *ast.FunCall) string {
	if n.Id == "print" {
		return g.genPrint(n)
	}
	if n.Id == "length" && len(n.Args) == 1 {
		// The i64 length is the first field of every %arr.<elem> struct.
		arr := g.genExpr(n.Args[0])
		lenPtr := g.freshReg()
		g.emit("%s = bitcast %%arr* %s to i64*", lenPtr, arr)
		length := g.freshReg()
		g.emit("%s = load i64, i64* %s", length, lenPtr)
		r := g.freshReg()
		g.emit("%s = trunc i64 %s to i32", r, length)
		return r
	}
	sig, ok := g.sigs[n.Id]
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		val := g.genExpr(a)
		ty := "i32"
		if ok && i < len(sig.params) {
			ty = llvmType(sig.params[i])
		}
		args[i] = fmt.Sprintf("%s %s", ty, val)
	}
	retLLVM := "i32"
	if ok {
		retLLVM = llvmType(sig.ret)
	}
	if ok && sig.ret.Kind == types.Unit {
		g.emit("call void @%s(%s)", n.Id, joinArgs(args))
		return "zeroinitializer"
	}
	r := g.freshReg()
	g.emit("%s = call %s @%s(%s)", r, retLLVM, n.Id, joinArgs(args))
	return r
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// genPrint dispatches print by the static type of its single argument
// (spec §4.6): the type checker already guarantees exactly one argument.
func (g *CodeGen) genPrint(n *ast.FunCall) string {
	if len(n.Args) != 1 {
		return "zeroinitializer"
	}
	val := g.genExpr(n.Args[0])
	switch argKind(n.Args[0]) {
	case types.Bool:
		g.emit("call void @__print_bool__(i1 %s)", val)
	case types.Unit:
		g.emit("call void @__print_unit__()")
	case types.String:
		lenReg := g.freshReg()
		dataReg := g.freshReg()
		g.emit("%s = getelementptr %%str, %%str* %s, i32 0, i32 0", lenReg, val)
		g.emit("%s = getelementptr %%str, %%str* %s, i32 0, i32 1", dataReg, val)
		lenVal := g.freshReg()
		dataVal := g.freshReg()
		g.emit("%s = load i64, i64* %s", lenVal, lenReg)
		g.emit("%s = load i8*, i8** %s", dataVal, dataReg)
		g.emit("call void @__print_string__(i8* %s, i64 %s)", dataVal, lenVal)
	default:
		g.emit("call void @__print_int__(i32 %s)", val)
	}
	return "zeroinitializer"
}

// argKind best-effort reclassifies an argument expression's static kind
// for print dispatch, mirroring the type checker's typeOf without needing
// a second full type-checking pass.
func argKind(e ast.Expr) types.Kind {
	switch n := e.(type) {
	case *ast.BoolLit:
		return types.Bool
	case *ast.StringLit:
		return types.String
	case *ast.UnitLit:
		return types.Unit
	case *ast.Not:
		return types.Bool
	case *ast.BinOp:
		switch n.Op {
		case ast.And, ast.Or, ast.Eq, ast.Neq, ast.Lt, ast.Leq, ast.Gt, ast.Geq:
			return types.Bool
		default:
			return types.Int
		}
	default:
		return types.Int
	}
}

// arrayElemType best-effort recovers the static element type of an array
// expression, the same non-exhaustive pattern-match argKind uses for print
// dispatch rather than threading a second type-checking pass through
// codegen: the type checker already proved this expression is an array, so
// this only needs to recover which one.
func (g *CodeGen) arrayElemType(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Ident:
		if l, ok := g.lookupLocal(n.Name); ok && l.aguType.Kind == types.Array {
			return *l.aguType.Elem
		}
	case *ast.NewArray:
		return paramType(n.Elem)
	case *ast.ArrayIndex:
		if t := g.arrayElemType(n.Target); t.Kind == types.Array {
			return *t.Elem
		}
	case *ast.IfElse:
		return g.arrayElemType(n.Then)
	case *ast.Let:
		return g.arrayElemType(n.Value)
	case *ast.Chain:
		return g.arrayElemType(n.Rhs)
	case *ast.FunCall:
		if sig, ok := g.sigs[n.Id]; ok {
			return sig.ret
		}
	}
	return types.TInt
}

// genNewArray allocates a `{i64 length, [0 x T] data}` heap buffer (spec
// §4.6/SPEC_FULL §4.6) sized for n.Size elements of n.Elem's LLVM type, then
// fills every slot with init via an explicit counted loop.
func (g *CodeGen) genNewArray(n *ast.NewArray) string {
	elemLLVM := llvmType(paramType(n.Elem))
	structTy := g.arrStructType(elemLLVM)

	size := g.genExpr(n.Size)
	init := g.genExpr(n.Init)

	count := g.freshReg()
	g.emit("%s = sext i32 %s to i64", count, size)
	dataBytes := g.freshReg()
	g.emit("%s = mul i64 %s, %d", dataBytes, count, arrElemSizeBytes(elemLLVM))
	totalBytes := g.freshReg()
	g.emit("%s = add i64 %s, 8", totalBytes, dataBytes)

	raw := g.freshReg()
	g.emit("%s = call i8* @__alloc__(i64 %s)", raw, totalBytes)
	typed := g.freshReg()
	g.emit("%s = bitcast i8* %s to %s*", typed, raw, structTy)

	lenPtr := g.freshReg()
	g.emit("%s = getelementptr %s, %s* %s, i32 0, i32 0", lenPtr, structTy, structTy, typed)
	g.emit("store i64 %s, i64* %s", count, lenPtr)

	idxSlot := g.freshReg()
	g.emit("%s = alloca i32", idxSlot)
	g.emit("store i32 0, i32* %s", idxSlot)

	condLabel := g.freshLabel("arr.init.cond")
	bodyLabel := g.freshLabel("arr.init.body")
	afterLabel := g.freshLabel("arr.init.after")
	g.emit("br label %%%s", condLabel)

	g.emitLabel(condLabel)
	idxVal := g.freshReg()
	g.emit("%s = load i32, i32* %s", idxVal, idxSlot)
	cond := g.freshReg()
	g.emit("%s = icmp slt i32 %s, %s", cond, idxVal, size)
	g.emit("br i1 %s, label %%%s, label %%%s", cond, bodyLabel, afterLabel)

	g.emitLabel(bodyLabel)
	elemPtr := g.freshReg()
	g.emit("%s = getelementptr %s, %s* %s, i32 0, i32 1, i32 %s", elemPtr, structTy, structTy, typed, idxVal)
	g.emit("store %s %s, %s* %s", elemLLVM, init, elemLLVM, elemPtr)
	nextIdx := g.freshReg()
	g.emit("%s = add i32 %s, 1", nextIdx, idxVal)
	g.emit("store i32 %s, i32* %s", nextIdx, idxSlot)
	g.emit("br label %%%s", condLabel)

	g.emitLabel(afterLabel)
	result := g.freshReg()
	g.emit("%s = bitcast %s* %s to %%arr*", result, structTy, typed)
	return result
}

// arrayAddr bitcasts the opaque %arr* value back to its concrete element
// struct, GEPs the length field, bounds-checks idx against the real stored
// length, and returns a pointer to the indexed element — shared by
// genArrayLoad and genArrayStore so both honor the same layout.
func (g *CodeGen) arrayAddr(target ast.Expr, arr, idx string) (elemLLVM, elemPtr string) {
	elemLLVM = llvmType(g.arrayElemType(target))
	structTy := g.arrStructType(elemLLVM)

	typed := g.freshReg()
	g.emit("%s = bitcast %%arr* %s to %s*", typed, arr, structTy)
	lenPtr := g.freshReg()
	g.emit("%s = getelementptr %s, %s* %s, i32 0, i32 0", lenPtr, structTy, structTy, typed)
	length := g.freshReg()
	g.emit("%s = load i64, i64* %s", length, lenPtr)
	g.emit("call void @__array_bounds_check__(i32 %s, i64 %s)", idx, length)

	elemPtr = g.freshReg()
	g.emit("%s = getelementptr %s, %s* %s, i32 0, i32 1, i32 %s", elemPtr, structTy, structTy, typed, idx)
	return elemLLVM, elemPtr
}

func (g *CodeGen) genArrayLoad(n *ast.ArrayIndex) string {
	arr := g.genExpr(n.Target)
	idx := g.genExpr(n.Index)
	elemLLVM, elemPtr := g.arrayAddr(n.Target, arr, idx)
	r := g.freshReg()
	g.emit("%s = load %s, %s* %s", r, elemLLVM, elemLLVM, elemPtr)
	return r
}

func (g *CodeGen) genArrayStore(n *ast.ArrayIndex, val string) {
	arr := g.genExpr(n.Target)
	idx := g.genExpr(n.Index)
	elemLLVM, elemPtr := g.arrayAddr(n.Target, arr, idx)
	g.emit("store %s %s, %s* %s", elemLLVM, val, elemLLVM, elemPtr)
}
