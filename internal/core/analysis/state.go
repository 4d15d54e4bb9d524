package analysis

import (
	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
	"github.com/fpp-community/fppsema/internal/core/semantics/types"
	"github.com/fpp-community/fppsema/internal/core/semantics/value"
	"github.com/fpp-community/fppsema/internal/core/vfs"
)

// Analysis is the mutable state threaded through every pass. It is built
// once per run by ResolveIncludes/CheckSemantics and grows monotonically:
// later passes only add entries, never invalidate what an earlier pass
// produced, so a pass may be safely re-entered (see visitedTypeUse /
// visitedConstExpr) without redoing work.
type Analysis struct {
	FS    *vfs.FileSystem
	Alloc *ast.IDAllocator

	// EntryPath is the absolute path of the root file the run started from.
	EntryPath string
	// Files holds every file pulled into the run, root units and included
	// files alike, keyed by absolute path. FileOrder lists only the root
	// translation units, in the order they were resolved (EntryPath
	// first): an included file's members are inlined into its includer,
	// so the passes reach them through that includer.
	Files     map[string]*ast.Schema
	FileOrder []string

	Global *symbol.Scope
	Scopes *symbol.NestedScope

	// SymbolOf maps a declaration node's ID to the Symbol entered for it.
	SymbolOf map[ast.NodeID]symbol.Symbol
	// ScopeOf maps a scope-introducing declaration's node ID (module,
	// component, interface, state machine, topology, enum) to the Scope entered
	// while traversing its members.
	ScopeOf map[ast.NodeID]*symbol.Scope
	// ParentSymbolOf maps a symbol's node ID to its lexically enclosing
	// symbol's node ID, for building fully qualified names in diagnostics.
	ParentSymbolOf map[ast.NodeID]ast.NodeID

	// UseDefMap maps a name-use node's ID (a *ast.QualIdent appearing as a
	// reference, not a declaration) to the declaration NodeID it resolved
	// to.
	UseDefMap map[ast.NodeID]ast.NodeID

	// TypeMap maps a type-introducing node's ID to its finalized Type.
	TypeMap map[ast.NodeID]*types.Type
	// ValueMap maps a constant-expression node's ID to its folded Value.
	ValueMap map[ast.NodeID]*value.Value

	// IncludedFiles records every absolute path pulled in. A file included
	// more than once is read and parsed again at each include.
	IncludedFiles map[string]bool
	// IncludeContextOf records the member-list context (module, component
	// or topology) of the include directive that last pulled in a file.
	// Every file is parsed with the same schema grammar whatever its
	// context; the context does not select a different production.
	IncludeContextOf map[string]ast.IncludeContext

	// visitedTypeUse / visitedConstExpr / visitedFinalize make CheckTypeUses,
	// EvalConstantExprs, and FinalizeTypeDefs idempotent: a type or constant
	// reachable from two different declarations is only finalized/folded
	// once.
	visitedTypeUse   map[ast.NodeID]bool
	visitedConstExpr map[ast.NodeID]bool
	visitedFinalize  map[ast.NodeID]bool

	// useDefStack is the current DFS path through the use-def graph;
	// useDefVisited is the set of symbols whose use-def edges have been
	// fully explored. Together they implement the cycle check's "break on
	// revisit" rule (spec.md §4.4).
	useDefStack   map[ast.NodeID]bool
	useDefVisited map[ast.NodeID]bool

	Diagnostics []Diagnostic
}

// New builds an empty Analysis ready to run ResolveIncludes against.
func New(fs *vfs.FileSystem) *Analysis {
	global := symbol.NewScope()
	return &Analysis{
		FS:               fs,
		Alloc:            ast.NewIDAllocator(),
		Files:            make(map[string]*ast.Schema),
		Global:           global,
		Scopes:           symbol.NewNestedScope(global),
		SymbolOf:         make(map[ast.NodeID]symbol.Symbol),
		ScopeOf:          make(map[ast.NodeID]*symbol.Scope),
		ParentSymbolOf:   make(map[ast.NodeID]ast.NodeID),
		UseDefMap:        make(map[ast.NodeID]ast.NodeID),
		TypeMap:          make(map[ast.NodeID]*types.Type),
		ValueMap:         make(map[ast.NodeID]*value.Value),
		IncludedFiles:    make(map[string]bool),
		IncludeContextOf: make(map[string]ast.IncludeContext),
		visitedTypeUse:   make(map[ast.NodeID]bool),
		visitedConstExpr: make(map[ast.NodeID]bool),
		visitedFinalize:  make(map[ast.NodeID]bool),
		useDefStack:      make(map[ast.NodeID]bool),
		useDefVisited:    make(map[ast.NodeID]bool),
	}
}

// Report appends a diagnostic to a.Diagnostics.
func (a *Analysis) Report(d Diagnostic) {
	a.Diagnostics = append(a.Diagnostics, d)
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (a *Analysis) HasErrors() bool {
	for _, d := range a.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
