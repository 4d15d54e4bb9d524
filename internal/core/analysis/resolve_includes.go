package analysis

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/parser"
	"github.com/fpp-community/fppsema/internal/core/vfs"
)

// ResolveIncludes walks root's member tree and replaces every include
// directive with the members parsed from the referenced file, recursively,
// with cycle protection (spec.md §4.1). It is the sole pass that mutates the
// AST; every later pass treats the result as read-only.
//
// entryPath is the absolute path root was parsed from (used as the base for
// relative include paths and as the root of the include-cycle chain).
func ResolveIncludes(a *Analysis, entryPath string, root *ast.Schema) {
	if a.EntryPath == "" {
		a.EntryPath = entryPath
	}
	a.Files[entryPath] = root
	a.FileOrder = append(a.FileOrder, entryPath)
	a.IncludedFiles[entryPath] = true

	r := &includeResolver{a: a}
	root.Members = r.resolveMembers(entryPath, ast.IncludeContextModule, root.Members, []string{entryPath})
}

// includeResolver carries no state of its own beyond the shared Analysis;
// it exists only to group the recursive methods below under one receiver.
type includeResolver struct {
	a *Analysis
}

// resolveMembers expands every include directive appearing directly in
// members (which all live in file curFile), then recurses into every
// member that owns its own nested member list. chain is the list of
// absolute file paths on the current include path, root file first, used to
// detect a file including itself transitively.
func (r *includeResolver) resolveMembers(curFile string, ctx ast.IncludeContext, members []*ast.Member, chain []string) []*ast.Member {
	out := make([]*ast.Member, 0, len(members))
	for _, m := range members {
		if m.Include != nil {
			out = append(out, r.expandInclude(curFile, ctx, m, chain)...)
			continue
		}
		r.resolveNested(curFile, m, chain)
		out = append(out, m)
	}
	return out
}

// resolveNested recurses into a member's own nested member list, if it has
// one, selecting the include context its body implies.
func (r *includeResolver) resolveNested(curFile string, m *ast.Member, chain []string) {
	switch {
	case m.Module != nil:
		m.Module.Members = r.resolveMembers(curFile, ast.IncludeContextModule, m.Module.Members, chain)
	case m.Component != nil:
		m.Component.Members = r.resolveMembers(curFile, ast.IncludeContextComponent, m.Component.Members, chain)
	case m.Interface != nil:
		m.Interface.Members = r.resolveMembers(curFile, ast.IncludeContextComponent, m.Interface.Members, chain)
	case m.StateMachine != nil:
		m.StateMachine.Members = r.resolveMembers(curFile, ast.IncludeContextComponent, m.StateMachine.Members, chain)
	case m.State != nil:
		m.State.Members = r.resolveMembers(curFile, ast.IncludeContextComponent, m.State.Members, chain)
	case m.Topology != nil:
		m.Topology.Members = r.resolveMembers(curFile, ast.IncludeContextTopology, m.Topology.Members, chain)
	}
}

// expandInclude resolves one include directive to the member list parsed
// from its target file, or to no members at all if the file could not be
// read, parsed, or would close a cycle.
func (r *includeResolver) expandInclude(curFile string, ctx ast.IncludeContext, m *ast.Member, chain []string) []*ast.Member {
	decl := m.Include
	includePath := unquoteString(decl.Path)
	if vfs.IsDirectoryWildcard(includePath) {
		msg := fmt.Sprintf("include path %q names a directory wildcard, not a file", includePath)
		r.a.Report(newDiagnostic(decl.Positions, CodeBadIncludeUse, msg))
		return nil
	}
	absPath := r.a.FS.Resolve(curFile, includePath)

	for i, visited := range chain {
		if visited == absPath {
			cycle := append(append([]string{}, chain[i:]...), absPath)
			msg := fmt.Sprintf("circular include: %s", strings.Join(cycle, " -> "))
			r.a.Report(newDiagnostic(decl.Positions, CodeCircularInclude, msg))
			return nil
		}
	}

	content, err := r.a.FS.ReadFile(absPath)
	if err != nil {
		code := CodeFileReadError
		msg := fmt.Sprintf("could not read included file %q: %v", decl.Path, err)
		if errors.Is(err, os.ErrNotExist) {
			code = CodeFileNotFound
			msg = fmt.Sprintf("included file not found: %s", absPath)
		}
		r.a.Report(newDiagnostic(decl.Positions, code, msg))
		return nil
	}

	schema, err := parser.ParseString(absPath, string(content), r.a.Alloc)
	if err != nil {
		r.a.Report(newDiagnostic(decl.Positions, CodeParseError, fmt.Sprintf("parse error in %s: %v", absPath, err)))
		return nil
	}

	r.a.Files[absPath] = schema
	r.a.IncludedFiles[absPath] = true
	r.a.IncludeContextOf[absPath] = ctx

	nextChain := append(append([]string{}, chain...), absPath)
	return r.resolveMembers(absPath, ctx, schema.Members, nextChain)
}
