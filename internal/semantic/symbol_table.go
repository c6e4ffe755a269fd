// Package semantic implements AGUDA's declaration/scope analysis and
// bidirectional type checking (spec §4.3-§4.5).
//
// The scope-stack design follows the teacher's SymbolTable (internal/
// semantic/symbol_table.go in the reference DWScript compiler) stripped of
// overload resolution and case-insensitivity, which AGUDA does not have,
// and extended with AGUDA's wildcard-identifier and root-vs-inner shadowing
// rules (spec §3, §4.3).
package semantic

import (
	"github.com/agu-lang/aguda-go/internal/source"
	"github.com/agu-lang/aguda-go/internal/types"
)

// Symbol is a single scope entry.
type Symbol struct {
	Name string
	Type types.Type
	Span source.Span
	Used bool
}

// SymbolTable is a stack of scopes with parent links, the core API being
// enter/exit/declare/lookup (spec §9), plus Unused, InCurrentScope and
// AllNames for warnings and suggestions.
type SymbolTable struct {
	root    *scope
	current *scope
	unused  []Symbol // unused bindings from scopes already closed
}

type scope struct {
	symbols map[string]*Symbol
	outer   *scope
	root    bool
}

func newScope(outer *scope) *scope {
	return &scope{symbols: make(map[string]*Symbol), outer: outer, root: outer == nil}
}

// New builds a symbol table with an empty root scope preloaded with
// AGUDA's reserved built-ins.
func New() *SymbolTable {
	root := newScope(nil)
	st := &SymbolTable{root: root, current: root}
	st.declareBuiltin("print", types.NewFun([]types.Type{types.TAny}, types.TUnit))
	st.declareBuiltin("length", types.NewFun([]types.Type{types.NewArray(types.TAny)}, types.TInt))
	return st
}

func (st *SymbolTable) declareBuiltin(name string, ty types.Type) {
	st.root.symbols[name] = &Symbol{Name: name, Type: ty, Used: true}
}

// Enter pushes a new child scope.
func (st *SymbolTable) Enter() { st.current = newScope(st.current) }

// Exit pops back to the parent scope, recording any unused bindings from
// the scope being closed. Exiting the root scope is a programmer error.
func (st *SymbolTable) Exit() {
	if st.current.outer == nil {
		panic("semantic: cannot exit root scope")
	}
	for _, sym := range st.current.symbols {
		if !sym.Used && !isWildcard(sym.Name) {
			st.unused = append(st.unused, *sym)
		}
	}
	st.current = st.current.outer
}

// Unused returns every binding, across all scopes closed so far, that was
// never looked up and is not a wildcard.
func (st *SymbolTable) Unused() []Symbol { return st.unused }

func isWildcard(name string) bool { return len(name) > 0 && name[0] == '_' }

// Declare adds name to the current scope. Wildcards are accepted but
// dropped (unbindable). In the root scope a duplicate is rejected; in any
// inner scope a duplicate shadows and is accepted.
func (st *SymbolTable) Declare(name string, ty types.Type, span source.Span) bool {
	if isWildcard(name) {
		return true
	}
	if st.current.root {
		if _, exists := st.current.symbols[name]; exists {
			return false
		}
	}
	st.current.symbols[name] = &Symbol{Name: name, Type: ty, Span: span}
	return true
}

// Lookup walks the scope chain outward, marking the found entry used.
// Wildcards never resolve.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	if isWildcard(name) {
		return nil, false
	}
	for s := st.current; s != nil; s = s.outer {
		if sym, ok := s.symbols[name]; ok {
			sym.Used = true
			return sym, true
		}
	}
	return nil, false
}

// InCurrentScope reports whether name is declared directly in the
// innermost scope (not an outer one).
func (st *SymbolTable) InCurrentScope(name string) bool {
	_, ok := st.current.symbols[name]
	return ok
}

// AllNames returns every name visible from the current scope, child
// entries shadowing parents, for use in "did you mean?" suggestions.
func (st *SymbolTable) AllNames() []string {
	seen := map[string]bool{}
	var names []string
	for s := st.current; s != nil; s = s.outer {
		for name := range s.symbols {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
