package analysis

import (
	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/namegroup"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
)

// CheckUses resolves every qualified-name use (spec.md §4.3): type names,
// component-instance target names, constant references inside expressions,
// and port references inside connection blocks. Each resolution is recorded
// in Analysis.UseDefMap, keyed by the QualIdent node's id; a failed
// resolution is simply left unmapped so later passes can detect it (via a
// missing UseDefMap entry) and skip the dependent work quietly, per spec.md
// §7's "continue after errors" policy.
//
// Note on qualifier granularity: this grammar's QualIdent is a single flat
// node (ast.go's Parts []string), not a recursive Qualified/Unqualified
// pair as in the original Rust AST, so intermediate qualifiers within one
// dotted path do not get their own UseDefMap entry — only the whole
// QualIdent node does. Each segment is still resolved and checked against
// its owning scope in turn; only the node-identity granularity differs.
func CheckUses(a *Analysis) {
	c := &useChecker{a: a}
	for _, path := range a.FileOrder {
		c.checkMembers(a.Files[path].Members)
	}
}

type useChecker struct{ a *Analysis }

func (c *useChecker) checkMembers(members []*ast.Member) {
	for _, m := range members {
		c.checkMember(m)
	}
}

func (c *useChecker) checkMember(m *ast.Member) {
	switch {
	case m.AliasType != nil:
		c.checkTypeName(m.AliasType.Target)

	case m.Array != nil:
		c.checkTypeName(m.Array.Elt)
		c.checkExpr(m.Array.Size)
		c.checkExpr(m.Array.Default)

	case m.Struct != nil:
		for _, sm := range m.Struct.Members {
			c.checkTypeName(sm.Type)
			c.checkExpr(sm.Size)
		}
		c.checkExpr(m.Struct.Default)

	case m.Enum != nil:
		if m.Enum.RepType != nil {
			c.checkTypeName(m.Enum.RepType)
		}
		for _, ec := range m.Enum.Members {
			c.checkExpr(ec.Value)
		}

	case m.Constant != nil:
		c.checkExpr(m.Constant.Value)

	case m.Port != nil:
		c.checkTypeName(m.Port.Type)

	case m.ComponentInstance != nil:
		c.resolve(namegroup.Component, m.ComponentInstance.ComponentName)

	case m.Connections != nil:
		for _, conn := range m.Connections.Connections {
			c.checkPortRef(conn.From)
			c.checkPortRef(conn.To)
		}

	case m.Module != nil:
		c.scoped(m.Module.GetNodeID(), func() { c.checkMembers(m.Module.Members) })
	case m.Component != nil:
		c.scoped(m.Component.GetNodeID(), func() { c.checkMembers(m.Component.Members) })
	case m.Interface != nil:
		c.scoped(m.Interface.GetNodeID(), func() { c.checkMembers(m.Interface.Members) })
	case m.StateMachine != nil:
		c.scoped(m.StateMachine.GetNodeID(), func() { c.checkMembers(m.StateMachine.Members) })
	case m.State != nil:
		c.checkMembers(m.State.Members)
	case m.Topology != nil:
		c.scoped(m.Topology.GetNodeID(), func() { c.checkMembers(m.Topology.Members) })
	}
}

// scoped pushes the Scope entered for the declaration at nodeID (by
// EnterSymbols), runs body, and pops it, mirroring the push/pop bracketing
// spec.md §4.2 describes for scope-owning declarations.
func (c *useChecker) scoped(nodeID ast.NodeID, body func()) {
	scope, ok := c.a.ScopeOf[nodeID]
	if !ok {
		body()
		return
	}
	c.a.Scopes.Push(scope)
	body()
	c.a.Scopes.Pop()
}

// checkPortRef resolves a connection endpoint's instance name (searched in
// PortInterfaceInstance), then checks that its target component actually
// declares a port with the given tail name.
func (c *useChecker) checkPortRef(ref *ast.PortRef) {
	instSym, ok := c.a.Scopes.Get(namegroup.PortInterfaceInstance, ref.Instance)
	if !ok {
		c.a.Report(undefinedSymbolDiagnostic(ref.Positions, ref.Instance))
		return
	}
	instDecl, ok := instSym.Node.(*ast.ComponentInstanceDecl)
	if !ok {
		c.a.Report(invalidSymbolDiagnostic(ref.Positions, instSym, "not a qualifier"))
		return
	}
	compSym, ok := c.resolve(namegroup.Component, instDecl.ComponentName)
	if !ok {
		return
	}
	compScope, ok := c.a.ScopeOf[compSym.ID]
	if !ok {
		return
	}
	if _, ok := compScope.Get(namegroup.Port, ref.Port); !ok {
		c.a.Report(undefinedSymbolDiagnostic(ref.Positions, ref.Port))
	}
}

func (c *useChecker) checkTypeName(tn *ast.TypeName) {
	if tn == nil {
		return
	}
	if tn.Ref != nil {
		c.resolve(namegroup.Type, tn.Ref)
	}
	c.checkExpr(tn.StringSz)
}

func (c *useChecker) checkExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	c.checkTerm(e.Left)
	for _, t := range e.Rest {
		c.checkTerm(t)
	}
}

func (c *useChecker) checkTerm(t *ast.Term) {
	if t == nil {
		return
	}
	c.checkUnary(t.Left)
	for _, u := range t.Rest {
		c.checkUnary(u)
	}
}

func (c *useChecker) checkUnary(u *ast.Unary) {
	if u == nil {
		return
	}
	c.checkPostfix(u.Value)
}

func (c *useChecker) checkPostfix(p *ast.Postfix) {
	if p == nil {
		return
	}
	c.checkPrimary(p.Base)
}

func (c *useChecker) checkPrimary(p *ast.Primary) {
	if p == nil {
		return
	}
	switch {
	case p.Ref != nil:
		c.resolve(namegroup.Value, p.Ref)
	case p.Array != nil:
		for _, el := range p.Array.Elements {
			c.checkExpr(el)
		}
	case p.Struct != nil:
		for _, mem := range p.Struct.Members {
			c.checkExpr(mem.Value)
		}
	case p.Paren != nil:
		c.checkExpr(p.Paren)
	}
}

// resolve looks up q under group ng, walking one qualifier segment at a
// time through each resolved symbol's owned scope (spec.md §4.3 steps 1-3),
// and records the final resolution in UseDefMap. Idempotent: a node already
// present in UseDefMap is returned without re-resolving.
func (c *useChecker) resolve(ng namegroup.NameGroup, q *ast.QualIdent) (symbol.Symbol, bool) {
	if defID, ok := c.a.UseDefMap[q.GetNodeID()]; ok {
		return c.a.SymbolOf[defID], true
	}

	parts := q.Parts
	if len(parts) == 0 {
		return symbol.Symbol{}, false
	}

	sym, ok := c.a.Scopes.Get(ng, parts[0])
	if !ok {
		c.a.Report(undefinedSymbolDiagnostic(q.Positions, parts[0]))
		return symbol.Symbol{}, false
	}

	for _, part := range parts[1:] {
		scope, ok := c.a.ScopeOf[sym.ID]
		if !ok {
			c.a.Report(invalidSymbolDiagnostic(q.Positions, sym, "not a qualifier"))
			return symbol.Symbol{}, false
		}
		next, ok := scope.Get(ng, part)
		if !ok {
			c.a.Report(undefinedSymbolDiagnostic(q.Positions, part))
			return symbol.Symbol{}, false
		}
		sym = next
	}

	c.a.UseDefMap[q.GetNodeID()] = sym.ID
	return sym, true
}

func undefinedSymbolDiagnostic(pos ast.Positions, name string) Diagnostic {
	return newDiagnostic(pos, CodeUndefinedName, "undefined name `"+name+"`")
}

func invalidSymbolDiagnostic(pos ast.Positions, sym symbol.Symbol, msg string) Diagnostic {
	var children []Diagnostic
	if defPos, ok := positionsOf(sym.Node); ok {
		children = []Diagnostic{newNote(defPos, "`"+sym.Name+"` defined here")}
	}
	return newDiagnostic(pos, CodeWrongNameGroup, "`"+sym.Name+"` "+msg, children...)
}
