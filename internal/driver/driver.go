// Package driver orchestrates the full compile pipeline and the optional
// external opt/lli invocations (spec §4 overview, §9 driver).
//
// Grounded in original_source/src/lib.rs's compile_aguda_program/
// run_aguda_program split: a library entry point the CLI (cmd/aguda) calls
// into, rather than inlining the pipeline in main(), matching the
// teacher's own cmd/<tool>/cmd (thin CLI) vs internal/* (reusable library)
// separation.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/agu-lang/aguda-go/internal/ast"
	"github.com/agu-lang/aguda-go/internal/codegen"
	"github.com/agu-lang/aguda-go/internal/diagnostics"
	"github.com/agu-lang/aguda-go/internal/lexer"
	"github.com/agu-lang/aguda-go/internal/parser"
	"github.com/agu-lang/aguda-go/internal/semantic"
	"github.com/agu-lang/aguda-go/internal/source"
)

// Options configures a single compile, matching the CLI flags of spec §6.
type Options struct {
	Path             string
	MaxErrors        int
	MaxWarnings      int
	SuppressErrors   bool
	SuppressWarnings bool
	SuppressHints    bool
	PrintAST         bool
	OptLevel         int
	Color            bool
}

// Result is what a successful (or partially successful, for --ast) compile
// produces.
type Result struct {
	AST      *ast.Program
	Warnings []semantic.Warning
	LLPath   string
	File     *source.File
}

// Compile runs the full pipeline over the file named by opts.Path.
//
// Lexical and syntax errors are fatal to their phase (spec §2). Declaration
// and type errors are collected in parallel and reported together; any
// error from either phase stops the compile before IR is emitted.
func Compile(opts Options) (*Result, []diagnostics.Diagnostic, *source.File, error) {
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, fmt.Errorf("the source file %q does not exist", opts.Path)
		}
		return nil, nil, nil, fmt.Errorf("reading %q: %w", opts.Path, err)
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return nil, nil, nil, fmt.Errorf("the source file %q is empty", opts.Path)
	}
	file := source.NewFile(opts.Path, text)

	toks, lexErr := lexer.New(text).Tokenize()
	if lexErr != nil {
		return nil, []diagnostics.Diagnostic{lexDiagnostic(lexErr)}, file, nil
	}

	prog, parseErr := parser.New(toks).Parse()
	if parseErr != nil {
		return nil, []diagnostics.Diagnostic{parseDiagnostic(parseErr)}, file, nil
	}

	if opts.PrintAST {
		return &Result{AST: prog, File: file}, nil, file, nil
	}

	declChecker := semantic.NewDeclarationChecker()
	table, declErrors, warnings := declChecker.Check(prog)

	typeChecker := semantic.NewTypeChecker(table)
	typeErrors := typeChecker.Check(prog)

	var diags []diagnostics.Diagnostic
	for _, e := range declErrors {
		diags = append(diags, declDiagnostic(e))
	}
	for _, e := range typeErrors {
		diags = append(diags, typeDiagnostic(e))
	}
	if len(diags) > 0 {
		return nil, diags, file, nil
	}

	gen := codegen.New(moduleBaseName(opts.Path))
	gen.Program(prog)
	ir := gen.Emit()

	llPath := strings.TrimSuffix(opts.Path, filepath.Ext(opts.Path)) + ".ll"
	if err := os.WriteFile(llPath, []byte(ir), 0o644); err != nil {
		return nil, nil, file, fmt.Errorf("writing %q: %w", llPath, err)
	}

	if opts.OptLevel > 0 {
		cmd := exec.Command("opt", fmt.Sprintf("-O%d", opts.OptLevel), llPath, "-o", llPath)
		if out, err := cmd.CombinedOutput(); err != nil {
			return nil, nil, file, fmt.Errorf("opt failed: %w: %s", err, out)
		}
	}

	return &Result{AST: prog, Warnings: warnings, LLPath: llPath, File: file}, nil, file, nil
}

func moduleBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RuntimeError carries the captured stderr of a failed `lli` invocation
// (spec §7).
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Run invokes `lli` on the compiled module, loading the runtime lib.ll
// from the same directory as an extra module, and returns its stdout on
// success.
func Run(llPath string) (string, *RuntimeError) {
	libPath := filepath.Join(filepath.Dir(llPath), "lib.ll")
	cmd := exec.Command("lli", "-extra-module="+libPath, llPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &RuntimeError{Message: stderr.String()}
	}
	return stdout.String(), nil
}
