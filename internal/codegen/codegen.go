// Package codegen lowers a type-checked AST to textual LLVM IR (spec
// §4.6), linking against the runtime compiled from runtime/lib.c.
//
// There is no practical pure-Go LLVM binding in the example pack (the only
// LLVM-adjacent reference, hhramberg-go-vslc, uses cgo bindings requiring a
// system LLVM install and the forbidden Go toolchain), so this package
// follows the teacher's own text-based code-emission style (its bytecode
// disassembler/serializer in internal/bytecode) applied to LLVM's textual
// IR instead of a binary format: build up `.ll` source as a string, one
// instruction per emitted line.
package codegen

import (
	"fmt"
	"strings"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/types"
)

// local tracks a stack slot's LLVM pointer register and pointee type.
type local struct {
	reg     string
	llvmTy  string
	aguType types.Type
}

// CodeGen accumulates the textual IR for one AGUDA module.
type CodeGen struct {
	moduleName string
	typeDecls  strings.Builder // %arr.<elem> struct definitions, one per element type seen
	decls      strings.Builder // global constants (string literals)
	funcs      strings.Builder // function bodies, signatures-first
	sigs       map[string]funSig
	arrTypes   map[string]string // elemLLVM -> concrete %arr.<elem> struct name
	strCount   int
	regCount   int
	lblCount   int

	scopes []map[string]local // stack of lexical scopes, codegen-owned (spec §4.6)
	buf    *strings.Builder   // current function body being built
}

type funSig struct {
	params  []types.Type
	ret     types.Type
	isMain  bool
}

// New creates a CodeGen for the named module (matches the source file's
// basename, as lib.ll's sibling per spec §6).
func New(moduleName string) *CodeGen {
	return &CodeGen{moduleName: moduleName, sigs: map[string]funSig{}, arrTypes: map[string]string{}}
}

// arrStructType returns the concrete `{i64, [0 x elemLLVM]}` struct name for
// elemLLVM, declaring it in typeDecls the first time it's seen. %arr itself
// stays an opaque pointer type (see Emit) so locals, params, and return
// values can all share one LLVM type regardless of element type; every
// array access bitcasts %arr* to this concrete struct pointer to reach the
// length field and the flexible array member (spec §4.6/SPEC_FULL §4.6).
func (g *CodeGen) arrStructType(elemLLVM string) string {
	if name, ok := g.arrTypes[elemLLVM]; ok {
		return name
	}
	name := arrStructName(elemLLVM)
	g.arrTypes[elemLLVM] = name
	fmt.Fprintf(&g.typeDecls, "%s = type { i64, [0 x %s] }\n", name, elemLLVM)
	return name
}

func arrStructName(elemLLVM string) string {
	slug := strings.NewReplacer("%", "", "*", "p", "{", "", "}", "", " ", "", ",", "_").Replace(elemLLVM)
	return "%arr." + slug
}

// arrElemSizeBytes gives the per-element byte stride used to size a new
// array's heap allocation. Textual IR only, never linked against a real
// target layout, so these are the obvious sizes for the handful of LLVM
// types llvmType ever produces.
func arrElemSizeBytes(elemLLVM string) int {
	switch elemLLVM {
	case "i1":
		return 1
	case "i32":
		return 4
	default: // %str*, %arr*: pointer-sized
		return 8
	}
}

func (g *CodeGen) pushScope() { g.scopes = append(g.scopes, map[string]local{}) }
func (g *CodeGen) popScope()  { g.scopes = g.scopes[:len(g.scopes)-1] }

func (g *CodeGen) declareLocal(name string, l local) {
	if name == "" || name[0] == '_' {
		return
	}
	g.scopes[len(g.scopes)-1][name] = l
}

func (g *CodeGen) lookupLocal(name string) (local, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if l, ok := g.scopes[i][name]; ok {
			return l, true
		}
	}
	return local{}, false
}

func (g *CodeGen) freshReg() string {
	g.regCount++
	return fmt.Sprintf("%%t%d", g.regCount)
}

func (g *CodeGen) freshLabel(prefix string) string {
	g.lblCount++
	return fmt.Sprintf("%s%d", prefix, g.lblCount)
}

func (g *CodeGen) emit(format string, args ...any) {
	fmt.Fprintf(g.buf, "  "+format+"\n", args...)
}

func (g *CodeGen) emitLabel(name string) {
	fmt.Fprintf(g.buf, "%s:\n", name)
}

// llvmType maps an AGUDA Type to its LLVM spelling (spec §4.6).
func llvmType(t types.Type) string {
	switch t.Kind {
	case types.Int:
		return "i32"
	case types.Bool:
		return "i1"
	case types.Unit:
		return "{}"
	case types.Array:
		return "%arr*"
	case types.String:
		return "%str*"
	default:
		return "i32"
	}
}

// Program lowers a whole program: signatures are declared before any body
// is generated so mutually recursive calls resolve, per spec §4.6.
func (g *CodeGen) Program(prog *ast.Program) {
	g.pushScope()
	for _, decl := range prog.Decls {
		if fn, ok := decl.(*ast.FunDecl); ok {
			g.registerSignature(fn)
		}
	}
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			g.genGlobalVar(d)
		case *ast.FunDecl:
			g.genFunction(d)
		}
	}
	g.popScope()
}

func (g *CodeGen) registerSignature(fn *ast.FunDecl) {
	params := make([]types.Type, len(fn.ParamTypes))
	for i, pt := range fn.ParamTypes {
		params[i] = paramType(pt)
	}
	ret := paramType(fn.RetType)
	g.sigs[fn.Id] = funSig{params: params, ret: ret, isMain: fn.Id == "main"}
}

func paramType(t ast.TypeExpr) types.Type {
	if t.Elem != nil {
		return types.NewArray(paramType(*t.Elem))
	}
	ty, ok := types.FromName(t.Name)
	if !ok {
		return types.TAny
	}
	return ty
}

// genGlobalVar lowers a top-level `let` binding with a literal initializer
// to an LLVM global constant; non-literal initializers are out of scope
// for this tier (spec §4.6 only requires literal globals to work).
func (g *CodeGen) genGlobalVar(d *ast.VarDecl) {
	switch v := d.Value.(type) {
	case *ast.IntLit:
		fmt.Fprintf(&g.decls, "@%s = global i32 %d\n", d.Id, v.Value)
	case *ast.BoolLit:
		b := 0
		if v.Value {
			b = 1
		}
		fmt.Fprintf(&g.decls, "@%s = global i1 %d\n", d.Id, b)
	case *ast.StringLit:
		g.genStringGlobal(d.Id, v.Value)
	default:
		fmt.Fprintf(&g.decls, "; unsupported non-literal global %s omitted\n", d.Id)
	}
}

func (g *CodeGen) genStringGlobal(name, value string) {
	n := len(value)
	fmt.Fprintf(&g.decls, "@%s.bytes = private constant [%d x i8] c\"%s\"\n", name, n, escapeLLVMString(value))
	fmt.Fprintf(&g.decls, "@%s = global %%str { i64 %d, i8* getelementptr ([%d x i8], [%d x i8]* @%s.bytes, i32 0, i32 0) }\n",
		name, n, n, n, name)
}

func escapeLLVMString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 32 && c < 127 && c != '"' && c != '\\' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "\\%02X", c)
		}
	}
	return b.String()
}

// genFunction lowers signature + body. main is special-cased to return
// i32 0; every other Unit-returning function lowers to void (spec §4.6).
func (g *CodeGen) genFunction(fn *ast.FunDecl) {
	sig := g.sigs[fn.Id]
	retLLVM := llvmType(sig.ret)
	if sig.isMain {
		retLLVM = "i32"
	} else if sig.ret.Kind == types.Unit {
		retLLVM = "void"
	}

	params := make([]string, len(fn.Params))
	paramRegs := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		paramRegs[i] = fmt.Sprintf("%%arg.%s", sanitize(p))
		params[i] = fmt.Sprintf("%s %s", llvmType(sig.params[i]), paramRegs[i])
	}

	var body strings.Builder
	g.buf = &body
	g.pushScope()
	for i, p := range fn.Params {
		slot := g.freshReg()
		ty := llvmType(sig.params[i])
		g.emit("%s = alloca %s", slot, ty)
		g.emit("store %s %s, %s* %s", ty, paramRegs[i], ty, slot)
		g.declareLocal(p, local{reg: slot, llvmTy: ty, aguType: sig.params[i]})
	}

	result := g.genExpr(fn.Body)
	switch {
	case sig.isMain:
		g.emit("ret i32 0")
	case sig.ret.Kind == types.Unit:
		g.emit("ret void")
	default:
		g.emit("ret %s %s", llvmType(sig.ret), result)
	}
	g.popScope()

	fmt.Fprintf(&g.funcs, "define %s @%s(%s) {\nentry:\n%s}\n\n", retLLVM, fn.Id, strings.Join(params, ", "), body.String())
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, "'", "_q_")
}

// Emit renders the full module as LLVM textual IR, declaring the runtime
// ABI (spec §4.6/§6, extended by SPEC_FULL §4.6 with __alloc__,
// __array_bounds_check__, and __print_string__) before any definitions.
func (g *CodeGen) Emit() string {
	var out strings.Builder
	out.WriteString("; ModuleID = '" + g.moduleName + "'\n\n")
	out.WriteString("%str = type { i64, i8* }\n")
	out.WriteString("%arr = type opaque\n")
	out.WriteString(g.typeDecls.String())
	out.WriteString("\n")
	out.WriteString("declare void @__print_int__(i32)\n")
	out.WriteString("declare void @__print_bool__(i1)\n")
	out.WriteString("declare void @__print_unit__()\n")
	out.WriteString("declare void @__print_string__(i8*, i64)\n")
	out.WriteString("declare i32 @__div__(i32, i32)\n")
	out.WriteString("declare i32 @__pow__(i32, i32)\n")
	out.WriteString("declare i8* @__alloc__(i64)\n")
	out.WriteString("declare void @__array_bounds_check__(i32, i64)\n\n")
	out.WriteString(g.decls.String())
	out.WriteString("\n")
	out.WriteString(g.funcs.String())
	return out.String()
}
