package semantic

import "github.com/agu-lang/aguda-go/internal/source"

// DeclErrorKind enumerates spec §7's DeclarationError variants.
type DeclErrorKind int

const (
	UndeclaredIdentifier DeclErrorKind = iota
	DuplicateDeclaration
	ReservedIdentifier
	FunctionSignatureMismatch
	DuplicateMain
	MissingMain
)

// DeclError is a single declaration/scope-analysis failure.
type DeclError struct {
	Kind       DeclErrorKind
	Id         string
	Suggestion string // UndeclaredIdentifier only; empty if none found
	Span       source.Span
}

// WarningKind classifies a non-fatal declaration-analysis finding.
type WarningKind int

const (
	UnusedIdentifier WarningKind = iota
	RedefinedVariable
)

// Warning is emitted for findings that never block compilation. AGUDA
// supplements spec.md's UnusedIdentifier with RedefinedVariable, present in
// the original implementation's diagnostics/warnings.rs but dropped from
// the distilled spec (see DESIGN.md, internal/semantic).
type Warning struct {
	Kind WarningKind
	Id   string
	Span source.Span
}
