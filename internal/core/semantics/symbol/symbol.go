// Package symbol defines the Symbol sum type entered into a Scope during
// the enter-symbols pass, and the Scope/NestedScope lookup structures.
// Grounded on fpp_analysis's semantics::{symbol, generic_scope,
// generic_nested_scope} modules, translated from Rust's generic
// GenericScope<NG, S, M> into a plain, non-generic Go scope specialized to
// this AST — the teacher repo never reaches for Go generics either.
package symbol

import (
	"fmt"

	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/namegroup"
)

// Kind identifies which declaration variant a Symbol wraps.
type Kind string

const (
	AbsType           Kind = "AbsType"
	AliasType         Kind = "AliasType"
	Array             Kind = "Array"
	Component         Kind = "Component"
	ComponentInstance Kind = "ComponentInstance"
	Constant          Kind = "Constant"
	Enum              Kind = "Enum"
	EnumConstant      Kind = "EnumConstant"
	Interface         Kind = "Interface"
	Module            Kind = "Module"
	Port              Kind = "Port"
	StateMachine      Kind = "StateMachine"
	Struct            Kind = "Struct"
	Topology          Kind = "Topology"
)

// Symbol is a reference to exactly one declaration node, tagged with the
// variant it wraps. Node is always the concrete declaration pointer
// (e.g. *ast.ComponentDecl); Kind disambiguates it without a type switch at
// every call site.
type Symbol struct {
	Kind Kind
	Name string
	Node any
	ID   ast.NodeID
}

// New builds a Symbol, deriving its Kind from the concrete node type.
func New(name string, node any, id ast.NodeID) Symbol {
	return Symbol{Kind: kindOf(node), Name: name, Node: node, ID: id}
}

func kindOf(node any) Kind {
	switch node.(type) {
	case *ast.AbsTypeDecl:
		return AbsType
	case *ast.AliasTypeDecl:
		return AliasType
	case *ast.ArrayDecl:
		return Array
	case *ast.ComponentDecl:
		return Component
	case *ast.ComponentInstanceDecl:
		return ComponentInstance
	case *ast.ConstantDecl:
		return Constant
	case *ast.EnumDecl:
		return Enum
	case *ast.EnumConstantDecl:
		return EnumConstant
	case *ast.InterfaceDecl:
		return Interface
	case *ast.ModuleDecl:
		return Module
	case *ast.PortDecl:
		return Port
	case *ast.StateMachineDecl:
		return StateMachine
	case *ast.StructDecl:
		return Struct
	case *ast.TopologyDecl:
		return Topology
	default:
		panic(fmt.Sprintf("symbol: unhandled declaration type %T", node))
	}
}

// GroupOf returns the primary NameGroup a symbol of this kind is entered
// into. It is a convenience for kinds entered into exactly one group;
// Module, Component, and Enum are entered into several groups at once (see
// the table in spec.md §4.2) and the enter-symbols pass inserts those
// directly rather than going through this method.
func (k Kind) GroupOf() namegroup.NameGroup {
	switch k {
	case Component:
		return namegroup.Component
	case ComponentInstance, Topology:
		return namegroup.PortInterfaceInstance
	case Interface:
		return namegroup.PortInterface
	case Port:
		return namegroup.Port
	case StateMachine:
		return namegroup.StateMachine
	case AbsType, AliasType, Array, Struct, Enum:
		return namegroup.Type
	case Constant, EnumConstant:
		return namegroup.Value
	case Module:
		return namegroup.Component
	default:
		panic(fmt.Sprintf("symbol: kind %s has no name group", k))
	}
}

// PutIn enters sym into this scope under an explicit group, bypassing the
// single-group default Put uses — needed for kinds the enter-symbols pass
// inserts into more than one NameGroup (Module, Component, Enum).
func (s *Scope) PutIn(group namegroup.NameGroup, sym Symbol) (prior Symbol, redefined bool) {
	return s.groups[group].Put(sym)
}

// nameMap holds every symbol entered for one NameGroup within one Scope,
// keyed by name; the first declaration of a name wins.
type nameMap struct {
	byName map[string]Symbol
}

func newNameMap() *nameMap {
	return &nameMap{byName: make(map[string]Symbol)}
}

// Get looks up name, reporting whether it is present.
func (m *nameMap) Get(name string) (Symbol, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// Put enters sym under its name, reporting the prior symbol if name was
// already bound — the caller turns that into a RedefinedSymbol diagnostic.
func (m *nameMap) Put(sym Symbol) (prior Symbol, redefined bool) {
	if existing, ok := m.byName[sym.Name]; ok {
		return existing, true
	}
	m.byName[sym.Name] = sym
	return Symbol{}, false
}

// Scope is one flat namespace level: one nameMap per NameGroup.
type Scope struct {
	groups map[namegroup.NameGroup]*nameMap
}

// NewScope builds an empty Scope with every NameGroup initialized.
func NewScope() *Scope {
	s := &Scope{groups: make(map[namegroup.NameGroup]*nameMap, len(namegroup.All))}
	for _, g := range namegroup.All {
		s.groups[g] = newNameMap()
	}
	return s
}

// Get looks up name within group in this scope only (no outward fallback).
func (s *Scope) Get(group namegroup.NameGroup, name string) (Symbol, bool) {
	return s.groups[group].Get(name)
}

// Put enters sym into its symbol kind's NameGroup.
func (s *Scope) Put(sym Symbol) (prior Symbol, redefined bool) {
	return s.groups[sym.Kind.GroupOf()].Put(sym)
}

// NestedScope is a stack of Scopes, innermost last. Lookups search from the
// innermost scope outward to the root (global) scope, matching lexical
// scoping for modules/components/interfaces/state machines.
type NestedScope struct {
	stack []*Scope
}

// NewNestedScope seeds the stack with the single global scope.
func NewNestedScope(global *Scope) *NestedScope {
	return &NestedScope{stack: []*Scope{global}}
}

// Push enters a new, nested scope.
func (n *NestedScope) Push(s *Scope) {
	n.stack = append(n.stack, s)
}

// Pop leaves the innermost scope.
func (n *NestedScope) Pop() {
	n.stack = n.stack[:len(n.stack)-1]
}

// Get searches every scope on the stack, innermost first.
func (n *NestedScope) Get(group namegroup.NameGroup, name string) (Symbol, bool) {
	for i := len(n.stack) - 1; i >= 0; i-- {
		if sym, ok := n.stack[i].Get(group, name); ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Current returns the innermost scope, the one new symbols are entered
// into.
func (n *NestedScope) Current() *Scope {
	return n.stack[len(n.stack)-1]
}
