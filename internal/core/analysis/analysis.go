// Package analysis runs the semantic-analysis pipeline over one or more
// parsed FPP translation units: include resolution, symbol entry, use
// checking, use-def cycle detection, type materialization, constant
// folding, and expression type checking (spec.md §2, §4).
//
// # Usage
//
//	fs := vfs.New()
//	a := analysis.New(fs)
//	schema, err := parser.ParseString(entryPath, source, a.Alloc)
//	if err != nil {
//	    // syntax error: no analysis to run
//	}
//	ctrl := analysis.ResolveIncludesEntry(a, entryPath, schema)
//	ctrl = analysis.CheckSemantics(a, []*ast.Schema{schema})
//	for _, d := range a.Diagnostics {
//	    fmt.Println(d)
//	}
//
// Analysis follows a best-effort strategy: every pass keeps going after a
// diagnostic so a single run surfaces as many issues as possible (spec.md
// §7), except the use-def cycle pass, which must break the current
// traversal subtree to protect the passes that follow it from infinite
// recursion over a cyclic definition graph (spec.md §4.4, §5).
package analysis

import (
	"context"
	"strconv"

	"github.com/fpp-community/fppsema/internal/core/ast"
)

// ControlFlow is the result of a pipeline entry point: whether every pass
// ran to completion (Continue) or the use-def cycle pass broke the current
// subtree (Break). Break is not a fatal error — diagnostics were already
// reported — it only tells the caller that a cyclic definition kept later
// passes from fully exploring the graph reachable from it.
type ControlFlow int

const (
	Continue ControlFlow = iota
	Break
)

// ResolveIncludesEntry is the `resolve_includes` entry point of spec.md §6:
// it expands every include directive in root, recursively, with cycle
// protection, and records every file pulled in in a.IncludedFiles. It must
// run before CheckSemantics; it is the sole pass that mutates the AST.
func ResolveIncludesEntry(a *Analysis, entryPath string, root *ast.Schema) ControlFlow {
	ResolveIncludes(a, entryPath, root)
	return Continue
}

// CheckSemantics is the `check_semantics` entry point of spec.md §6. It
// runs every semantic pass, in the order of spec.md §2, over the given
// translation units (already include-resolved). Diagnostics are appended to
// a.Diagnostics as a side effect of each pass; the returned ControlFlow is
// Break if the use-def cycle pass found and broke a cycle anywhere in the
// input, matching spec.md's "Break is not fatal, but downstream passes may
// see an incompletely-explored graph" policy.
func CheckSemantics(a *Analysis, units []*ast.Schema) ControlFlow {
	return CheckSemanticsWithContext(context.Background(), a, units)
}

// CheckSemanticsWithContext is CheckSemantics with cancellation support.
// Per spec.md §5, there are no cancellation points within a single pass;
// the context is only checked between passes, preserving "the general
// shape of incrementality" the embedder (a language server) needs without
// this package taking on any LSP-specific behavior.
func CheckSemanticsWithContext(ctx context.Context, a *Analysis, units []*ast.Schema) ControlFlow {
	registerUnits(a, units)

	if ctx.Err() != nil {
		return Continue
	}

	EnterSymbols(a)
	if ctx.Err() != nil {
		return Continue
	}

	CheckUses(a)
	if ctx.Err() != nil {
		return Continue
	}

	diagsBefore := len(a.Diagnostics)
	CheckUseDefCycles(a)
	cf := Continue
	if len(a.Diagnostics) > diagsBefore {
		cf = Break
	}

	if ctx.Err() != nil {
		return cf
	}

	CheckTypeUses(a)
	if ctx.Err() != nil {
		return cf
	}

	EvalConstantExprs(a)
	if ctx.Err() != nil {
		return cf
	}

	FinalizeTypeDefs(a)
	if ctx.Err() != nil {
		return cf
	}

	CheckExprTypes(a)
	if ctx.Err() != nil {
		return cf
	}

	EvalImpliedEnumConsts(a)

	return cf
}

// registerUnits makes sure every unit the caller passed is tracked in
// a.Files/a.FileOrder, for the case where CheckSemantics is driven directly
// against pre-parsed schemas that never went through ResolveIncludesEntry
// (e.g. single-file analysis with no includes to expand).
func registerUnits(a *Analysis, units []*ast.Schema) {
	tracked := make(map[*ast.Schema]bool, len(a.Files))
	for _, s := range a.Files {
		tracked[s] = true
	}
	for i, u := range units {
		if tracked[u] {
			continue
		}
		path := a.EntryPath
		if len(units) > 1 || path == "" {
			path = syntheticUnitPath(i)
		}
		if _, exists := a.Files[path]; exists {
			path = syntheticUnitPath(i)
		}
		a.Files[path] = u
		a.FileOrder = append(a.FileOrder, path)
	}
}

func syntheticUnitPath(i int) string {
	return "<unit " + strconv.Itoa(i) + ">"
}
