package driver

import (
	"fmt"

	"github.com/agu-lang/aguda-go/internal/diagnostics"
	"github.com/agu-lang/aguda-go/internal/lexer"
	"github.com/agu-lang/aguda-go/internal/parser"
	"github.com/agu-lang/aguda-go/internal/semantic"
)

func lexDiagnostic(e *lexer.Error) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Severity:    diagnostics.SeverityError,
		Label:       "lexical error:",
		Description: e.Kind.String(),
		Span:        e.Span,
	}
}

func parseDiagnostic(e *parser.Error) diagnostics.Diagnostic {
	found := e.Found.Type.String()
	return diagnostics.Diagnostic{
		Severity:    diagnostics.SeverityError,
		Label:       "syntax error:",
		Description: fmt.Sprintf("unexpected %s", found),
		Span:        e.Found.Span,
		Hints:       diagnostics.SyntaxHints(e.Expected, found),
	}
}

func declDiagnostic(e semantic.DeclError) diagnostics.Diagnostic {
	var desc string
	var hints []string
	switch e.Kind {
	case semantic.UndeclaredIdentifier:
		desc = fmt.Sprintf("undeclared identifier `%s`", e.Id)
		if e.Suggestion != "" {
			hints = []string{fmt.Sprintf("did you mean `%s`?", e.Suggestion)}
		}
	case semantic.DuplicateDeclaration:
		desc = fmt.Sprintf("duplicate declaration of `%s`", e.Id)
	case semantic.ReservedIdentifier:
		desc = fmt.Sprintf("`%s` is a reserved identifier", e.Id)
	case semantic.FunctionSignatureMismatch:
		desc = fmt.Sprintf("function `%s` has a mismatched parameter/type count", e.Id)
	case semantic.DuplicateMain:
		desc = "a second `main` was declared"
	case semantic.MissingMain:
		desc = "program does not define `main`"
	}
	return diagnostics.Diagnostic{
		Severity:    diagnostics.SeverityError,
		Label:       "declaration error:",
		Description: desc,
		Span:        e.Span,
		Hints:       hints,
	}
}

// WarningDiagnostic converts a semantic.Warning into a renderable
// diagnostics.Diagnostic; exported for cmd/aguda to render Result.Warnings.
func WarningDiagnostic(w semantic.Warning) diagnostics.Diagnostic {
	var desc string
	var hints []string
	switch w.Kind {
	case semantic.UnusedIdentifier:
		desc = fmt.Sprintf("unused identifier `%s`", w.Id)
		hints = []string{"prefix with `_` to silence this warning"}
	case semantic.RedefinedVariable:
		desc = fmt.Sprintf("`%s` redefines a binding from an outer scope", w.Id)
	}
	return diagnostics.Diagnostic{
		Severity:    diagnostics.SeverityWarning,
		Label:       "warning:",
		Description: desc,
		Span:        w.Span,
		Hints:       hints,
	}
}

func typeDiagnostic(e semantic.TypeError) diagnostics.Diagnostic {
	var desc string
	switch e.Kind {
	case semantic.TypeMismatch:
		desc = fmt.Sprintf("type mismatch, found `%s`, expected `%s`", e.Found, e.Expected)
	case semantic.IncompatibleTypes:
		desc = fmt.Sprintf("incompatible types `%s` and `%s`", e.Found, e.Expected)
	case semantic.ArgumentCountMismatch:
		desc = fmt.Sprintf("found %d argument(s), expected %d", e.FoundCount, e.ExpectedCount)
	case semantic.NotCallable:
		desc = fmt.Sprintf("`%s` is not callable", e.Found)
	case semantic.NotIndexable:
		desc = fmt.Sprintf("`%s` is not indexable", e.Found)
	case semantic.MainSignatureMismatch:
		desc = "`main` must have type `(Unit) -> Unit`"
	}
	return diagnostics.Diagnostic{
		Severity:    diagnostics.SeverityError,
		Label:       "type error:",
		Description: desc,
		Span:        e.Span.Span(),
	}
}
