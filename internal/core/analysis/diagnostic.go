// Package analysis runs the semantic analysis pipeline over a parsed FPP
// AST: include resolution, symbol entry, use checking, use-def cycle
// detection, type finalization, constant folding, and expression type
// checking. It follows the same best-effort strategy as the teacher's own
// analysis package: always return as complete an Analysis as possible, even
// when diagnostics were raised along the way.
package analysis

import (
	"fmt"

	"github.com/fpp-community/fppsema/internal/core/ast"
)

// Error codes, grouped by the pass that raises them.

// Resolution errors (E00x).
const (
	CodeFileNotFound    = "E001"
	CodeCircularInclude = "E002"
	CodeFileReadError   = "E003"
	CodeParseError      = "E004"
	CodeBadIncludeUse   = "E005"
)

// Name resolution errors (E10x).
const (
	CodeRedefinedSymbol = "E101"
	CodeUndefinedName   = "E102"
	CodeWrongNameGroup  = "E103"
	CodeUseDefCycle     = "E104"
	CodeNotATypeName    = "E105"
	CodeNotAComponent   = "E106"
	CodeNotAnInterface  = "E107"
)

// Type/value errors (E20x).
const (
	CodeTypeMismatch                 = "E201"
	CodeArraySizeMismatch            = "E202"
	CodeConstantFoldFailed           = "E203"
	CodeOverflow                     = "E204"
	CodeEnumConstantShouldBeExplicit = "E205"
	CodeEnumConstantImplied          = "E206"
	CodeDuplicateEnumValue           = "E207"
	CodeInvalidType                  = "E208"
	CodeDuplicateStructMember        = "E209"
	CodeInvalidIntValue              = "E210"
	CodeDivByZero                    = "E211"
	CodeTypeConversion               = "E212"
)

// Format-string errors (E30x).
const (
	CodeFormatSyntaxError        = "E301"
	CodeFormatLengthMismatch     = "E302"
	CodeFormatInvalidReplacement = "E303"
	CodeFormatInvalidPrecision   = "E304"
)

// Severity is the level of a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Diagnostic is a structured analysis finding: a primary (level, message,
// span) plus optional children giving the chain of reasons behind it (used
// for cascading type-conversion failures and format-string field errors).
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Pos      ast.Position
	EndPos   ast.Position
	Children []Diagnostic
}

// String renders the diagnostic the way the CLI prints it:
// "file:line:column: severity[CODE]: message", one child per indented line.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s:%d:%d: %s[%s]: %s", d.Pos.Filename, d.Pos.Line, d.Pos.Column, d.Severity, d.Code, d.Message)
	for _, child := range d.Children {
		s += fmt.Sprintf("\n    note: %s", child.Message)
	}
	return s
}

// Error implements the error interface.
func (d Diagnostic) Error() string { return d.String() }

func newDiagnostic(positions ast.Positions, code, message string, children ...Diagnostic) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  message,
		Pos:      positions.Pos,
		EndPos:   positions.EndPos,
		Children: children,
	}
}

func newNote(positions ast.Positions, message string) Diagnostic {
	return Diagnostic{Severity: Note, Message: message, Pos: positions.Pos, EndPos: positions.EndPos}
}

// notesToChildren turns a list of plain-text notes (e.g. from a
// types.ConversionError chain) into Diagnostic children anchored at
// positions.
func notesToChildren(positions ast.Positions, notes []string) []Diagnostic {
	children := make([]Diagnostic, len(notes))
	for i, n := range notes {
		children[i] = newNote(positions, n)
	}
	return children
}
