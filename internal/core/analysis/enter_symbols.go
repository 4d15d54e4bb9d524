package analysis

import (
	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/namegroup"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
)

// EnterSymbols traverses every declaration in root (after include
// resolution) in source order, constructing a Symbol for each and entering
// it into the innermost scope under every NameGroup the table in spec.md
// §4.2 names. Declarations that own a scope (Module, Component, Enum,
// Interface, StateMachine, Topology) get a fresh Scope pushed before their
// members are visited and popped afterward.
func EnterSymbols(a *Analysis) {
	p := &symbolEnterer{a: a}
	for _, path := range a.FileOrder {
		p.enterMembers(nil, a.Files[path].Members)
	}
}

type symbolEnterer struct {
	a *Analysis
}

// enterMembers enters every declaration directly in members into the
// current scope, recursing into scope-owning members' own bodies. parent is
// the enclosing declaration's symbol, nil at the schema root.
func (p *symbolEnterer) enterMembers(parent *symbol.Symbol, members []*ast.Member) {
	for _, m := range members {
		p.enterMember(parent, m)
	}
}

func (p *symbolEnterer) enterMember(parent *symbol.Symbol, m *ast.Member) {
	switch {
	case m.AbsType != nil:
		p.enterOne(parent, symbol.New(m.AbsType.Name, m.AbsType, m.AbsType.GetNodeID()), namegroup.Type)
	case m.AliasType != nil:
		p.enterOne(parent, symbol.New(m.AliasType.Name, m.AliasType, m.AliasType.GetNodeID()), namegroup.Type)
	case m.Array != nil:
		p.enterOne(parent, symbol.New(m.Array.Name, m.Array, m.Array.GetNodeID()), namegroup.Type)
	case m.Struct != nil:
		p.enterOne(parent, symbol.New(m.Struct.Name, m.Struct, m.Struct.GetNodeID()), namegroup.Type)
	case m.Constant != nil:
		p.enterOne(parent, symbol.New(m.Constant.Name, m.Constant, m.Constant.GetNodeID()), namegroup.Value)
	case m.ComponentInstance != nil:
		p.enterOne(parent, symbol.New(m.ComponentInstance.Name, m.ComponentInstance, m.ComponentInstance.GetNodeID()), namegroup.PortInterfaceInstance)
	case m.Port != nil:
		p.enterOne(parent, symbol.New(m.Port.Name, m.Port, m.Port.GetNodeID()), namegroup.Port)

	case m.Interface != nil:
		sym := symbol.New(m.Interface.Name, m.Interface, m.Interface.GetNodeID())
		p.enterOne(parent, sym, namegroup.PortInterface)
		p.enterScoped(&sym, m.Interface.Members)

	case m.StateMachine != nil:
		sym := symbol.New(m.StateMachine.Name, m.StateMachine, m.StateMachine.GetNodeID())
		p.enterOne(parent, sym, namegroup.StateMachine)
		p.enterScoped(&sym, m.StateMachine.Members)

	case m.State != nil:
		// States do not own a Symbol/Scope of their own (spec.md §3 Symbol
		// variants omit State); nested declarations, if any, are entered
		// directly into the enclosing state machine's scope.
		p.enterMembers(parent, m.State.Members)

	case m.Topology != nil:
		sym := symbol.New(m.Topology.Name, m.Topology, m.Topology.GetNodeID())
		p.enterOne(parent, sym, namegroup.PortInterfaceInstance)
		p.enterScoped(&sym, m.Topology.Members)

	case m.Enum != nil:
		sym := symbol.New(m.Enum.Name, m.Enum, m.Enum.GetNodeID())
		p.enterOne(parent, sym, namegroup.Type, namegroup.Value)
		p.enterEnumConstants(&sym, m.Enum.Members)

	case m.Component != nil:
		sym := symbol.New(m.Component.Name, m.Component, m.Component.GetNodeID())
		p.enterOne(parent, sym, namegroup.Component, namegroup.StateMachine, namegroup.Type, namegroup.Value)
		p.enterScoped(&sym, m.Component.Members)

	case m.Module != nil:
		sym := symbol.New(m.Module.Name, m.Module, m.Module.GetNodeID())
		p.enterOne(parent, sym, namegroup.All...)
		p.enterScoped(&sym, m.Module.Members)

	case m.Connections != nil, m.Include != nil:
		// Connections blocks are not named declarations in any NameGroup;
		// include directives were already expanded by ResolveIncludes.
	}
}

// enterEnumConstants pushes a fresh Value-only scope for an enum and enters
// each of its constants into it, matching spec.md §4.2's "EnumConstant:
// Value (inside enum's scope)" row. EnumConstantDecl is not itself wrapped
// in an *ast.Member (it only ever appears inside an EnumDecl), so it is
// entered directly rather than through enterMember.
func (p *symbolEnterer) enterEnumConstants(enumSym *symbol.Symbol, consts []*ast.EnumConstantDecl) {
	scope := symbol.NewScope()
	p.a.ScopeOf[enumSym.ID] = scope
	p.a.Scopes.Push(scope)
	for _, c := range consts {
		sym := symbol.New(c.Name, c, c.GetNodeID())
		p.a.SymbolOf[sym.ID] = sym
		p.a.ParentSymbolOf[sym.ID] = enumSym.ID
		if prior, redefined := scope.PutIn(namegroup.Value, sym); redefined {
			p.a.Report(redefinedSymbolDiagnostic(sym, prior))
		}
	}
	p.a.Scopes.Pop()
}

// enterOne constructs no new symbol; it inserts sym into the current scope
// under every group listed, reports RedefinedSymbol on any collision, and
// records SymbolOf / ParentSymbolOf.
func (p *symbolEnterer) enterOne(parent *symbol.Symbol, sym symbol.Symbol, groups ...namegroup.NameGroup) {
	p.a.SymbolOf[sym.ID] = sym
	if parent != nil {
		p.a.ParentSymbolOf[sym.ID] = parent.ID
	}
	scope := p.a.Scopes.Current()
	for _, g := range groups {
		if prior, redefined := scope.PutIn(g, sym); redefined {
			p.a.Report(redefinedSymbolDiagnostic(sym, prior))
		}
	}
}

// enterScoped pushes a fresh Scope for sym, recurses into members under it,
// and pops. The scope is recorded in ScopeOf for later lookups (qualified
// name resolution, cycle-pass body traversal).
func (p *symbolEnterer) enterScoped(sym *symbol.Symbol, members []*ast.Member) {
	scope := symbol.NewScope()
	p.a.ScopeOf[sym.ID] = scope
	p.a.Scopes.Push(scope)
	p.enterMembers(sym, members)
	p.a.Scopes.Pop()
}

func redefinedSymbolDiagnostic(sym, prior symbol.Symbol) Diagnostic {
	priorPos, ok := positionsOf(prior.Node)
	var children []Diagnostic
	if ok {
		children = []Diagnostic{newNote(priorPos, "previous definition here")}
	}
	pos, _ := positionsOf(sym.Node)
	return newDiagnostic(pos, CodeRedefinedSymbol, "redefined symbol `"+sym.Name+"`", children...)
}

// positionsOf extracts a declaration node's Positions via the
// ast.WithPositions interface every declaration node implements.
func positionsOf(node any) (ast.Positions, bool) {
	wp, ok := node.(ast.WithPositions)
	if !ok {
		return ast.Positions{}, false
	}
	return wp.GetPositions(), true
}
