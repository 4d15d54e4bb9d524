package ast

import "strings"

// PrimitiveIntKind enumerates the fixed-width integer primitives.
type PrimitiveIntKind string

const (
	I8  PrimitiveIntKind = "I8"
	U8  PrimitiveIntKind = "U8"
	I16 PrimitiveIntKind = "I16"
	U16 PrimitiveIntKind = "U16"
	I32 PrimitiveIntKind = "I32"
	U32 PrimitiveIntKind = "U32"
	I64 PrimitiveIntKind = "I64"
	U64 PrimitiveIntKind = "U64"
)

var PrimitiveIntKinds = []PrimitiveIntKind{I8, U8, I16, U16, I32, U32, I64, U64}

// IsPrimitiveIntKind reports whether name names a fixed-width integer kind.
func IsPrimitiveIntKind(name string) bool {
	for _, k := range PrimitiveIntKinds {
		if string(k) == name {
			return true
		}
	}
	return false
}

// PrimitiveFloatKind enumerates the floating-point primitives.
type PrimitiveFloatKind string

const (
	F32 PrimitiveFloatKind = "F32"
	F64 PrimitiveFloatKind = "F64"
)

// IsPrimitiveFloatKind reports whether name names a float kind.
func IsPrimitiveFloatKind(name string) bool {
	return name == string(F32) || name == string(F64)
}

// Schema is the root of a single parsed file. Includes are resolved in
// place by the include resolver, which replaces each Include member with
// the members parsed from the referenced file (spec.md §4.1).
type Schema struct {
	Positions
	Members []*Member `parser:"@@*"`
}

// MemberKind classifies a Member.
type MemberKind string

const (
	MemberInclude           MemberKind = "Include"
	MemberModule            MemberKind = "Module"
	MemberComponent         MemberKind = "Component"
	MemberComponentInstance MemberKind = "ComponentInstance"
	MemberPort              MemberKind = "Port"
	MemberInterface         MemberKind = "Interface"
	MemberStateMachine      MemberKind = "StateMachine"
	MemberTopology          MemberKind = "Topology"
	MemberAbsType           MemberKind = "AbsType"
	MemberAliasType         MemberKind = "AliasType"
	MemberArray             MemberKind = "Array"
	MemberStruct            MemberKind = "Struct"
	MemberEnum              MemberKind = "Enum"
	MemberConstant          MemberKind = "Constant"
	MemberConnections       MemberKind = "Connections"
	MemberState             MemberKind = "State"
)

// Member is a single declaration inside a module, component, topology, or
// schema-root member list. One Member type is reused across every nesting
// context; neither the grammar nor any analysis pass restricts which
// variants may appear in which context.
type Member struct {
	Positions
	Include           *IncludeDecl           `parser:"  @@"`
	Module            *ModuleDecl            `parser:"| @@"`
	Component         *ComponentDecl         `parser:"| @@"`
	ComponentInstance *ComponentInstanceDecl `parser:"| @@"`
	Port              *PortDecl              `parser:"| @@"`
	Interface         *InterfaceDecl         `parser:"| @@"`
	StateMachine      *StateMachineDecl      `parser:"| @@"`
	State             *StateDecl             `parser:"| @@"`
	Topology          *TopologyDecl          `parser:"| @@"`
	Connections       *ConnectionsDecl       `parser:"| @@"`
	AbsType           *AbsTypeDecl           `parser:"| @@"`
	AliasType         *AliasTypeDecl         `parser:"| @@"`
	Array             *ArrayDecl             `parser:"| @@"`
	Struct            *StructDecl            `parser:"| @@"`
	Enum              *EnumDecl              `parser:"| @@"`
	Constant          *ConstantDecl          `parser:"| @@"`
}

// Kind returns the variant held by this member.
func (m *Member) Kind() MemberKind {
	switch {
	case m.Include != nil:
		return MemberInclude
	case m.Module != nil:
		return MemberModule
	case m.Component != nil:
		return MemberComponent
	case m.ComponentInstance != nil:
		return MemberComponentInstance
	case m.Port != nil:
		return MemberPort
	case m.Interface != nil:
		return MemberInterface
	case m.StateMachine != nil:
		return MemberStateMachine
	case m.State != nil:
		return MemberState
	case m.Topology != nil:
		return MemberTopology
	case m.Connections != nil:
		return MemberConnections
	case m.AbsType != nil:
		return MemberAbsType
	case m.AliasType != nil:
		return MemberAliasType
	case m.Array != nil:
		return MemberArray
	case m.Struct != nil:
		return MemberStruct
	case m.Enum != nil:
		return MemberEnum
	case m.Constant != nil:
		return MemberConstant
	}
	return ""
}

// IncludeDecl is an `include "path"` directive.
type IncludeDecl struct {
	Positions
	Node
	Path string `parser:"Include @String"`
}

// ModuleDecl declares a namespace that owns a scope spanning every
// NameGroup (spec.md §3).
type ModuleDecl struct {
	Positions
	Node
	Name    string    `parser:"Module @Ident"`
	Members []*Member `parser:"LBrace @@* RBrace"`
}

// ComponentDecl aggregates ports, a type/value namespace, and state
// machines (spec.md glossary "Component").
type ComponentDecl struct {
	Positions
	Node
	Name    string    `parser:"Component @Ident"`
	Members []*Member `parser:"LBrace @@* RBrace"`
}

// ComponentInstanceDecl instantiates a component within a topology.
type ComponentInstanceDecl struct {
	Positions
	Node
	Name          string       `parser:"Instance @Ident Colon"`
	ComponentName *QualIdent   `parser:"@@"`
}

// PortDirection is the data-flow direction of a port.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// PortKind is the invocation discipline of a port.
type PortKind string

const (
	PortSync    PortKind = "sync"
	PortAsync   PortKind = "async"
	PortGuarded PortKind = "guarded"
)

// PortDecl is a typed communication endpoint (spec.md glossary "Port").
type PortDecl struct {
	Positions
	Node
	Direction string     `parser:"Port @(\"in\"|\"out\")"`
	Kind      *string    `parser:"@(\"sync\"|\"async\"|\"guarded\")?"`
	Name      string     `parser:"@Ident Colon"`
	Type      *TypeName  `parser:"@@"`
}

// InterfaceDecl is a named bundle of port declarations and imports thereof.
type InterfaceDecl struct {
	Positions
	Node
	Name    string    `parser:"Interface @Ident"`
	Members []*Member `parser:"LBrace @@* RBrace"`
}

// StateMachineDecl declares a state machine made of named states.
type StateMachineDecl struct {
	Positions
	Node
	Name    string    `parser:"State Machine @Ident"`
	Members []*Member `parser:"LBrace @@* RBrace"`
}

// StateDecl is a single named state within a state machine.
type StateDecl struct {
	Positions
	Node
	Name    string    `parser:"State @Ident"`
	Members []*Member `parser:"(LBrace @@* RBrace)?"`
}

// TopologyDecl describes component instances and their connection graph.
type TopologyDecl struct {
	Positions
	Node
	Name    string    `parser:"Topology @Ident"`
	Members []*Member `parser:"LBrace @@* RBrace"`
}

// ConnectionsDecl is a named block of direct port connections.
type ConnectionsDecl struct {
	Positions
	Node
	Name        string            `parser:"Connections @Ident"`
	Connections []*ConnectionDecl `parser:"LBrace @@* RBrace"`
}

// ConnectionDecl connects one instance's output port to another's input port.
type ConnectionDecl struct {
	Positions
	From *PortRef `parser:"@@ Arrow"`
	To   *PortRef `parser:"@@"`
}

// PortRef is `instance.port` used inside a connection.
type PortRef struct {
	Positions
	Instance string `parser:"@Ident Dot"`
	Port     string `parser:"@Ident"`
}

// AbsTypeDecl declares an abstract type with no visible representation.
type AbsTypeDecl struct {
	Positions
	Node
	Name string `parser:"Type @Ident"`
}

// AliasTypeDecl declares `type Name = Target`.
type AliasTypeDecl struct {
	Positions
	Node
	Name   string    `parser:"Type @Ident Equals"`
	Target *TypeName `parser:"@@"`
}

// ArrayDecl declares a fixed-size array type with an optional default value
// and format string.
type ArrayDecl struct {
	Positions
	Node
	Name       string    `parser:"Array @Ident Equals LBracket"`
	Size       *Expr     `parser:"@@ RBracket"`
	Elt        *TypeName `parser:"@@"`
	Default    *Expr     `parser:"(Default @@)?"`
	FormatStr  *string   `parser:"(Format @String)?"`
}

// StructDecl declares a named struct type.
type StructDecl struct {
	Positions
	Node
	Name    string               `parser:"Struct @Ident LBrace"`
	Members []*StructMemberDecl  `parser:"@@* RBrace"`
	Default *Expr                `parser:"(Default @@)?"`
}

// StructMemberDecl is a single member of a struct declaration.
type StructMemberDecl struct {
	Positions
	Name      string    `parser:"@Ident Colon"`
	Type      *TypeName `parser:"@@"`
	Size      *Expr     `parser:"(LBracket @@ RBracket)?"`
	FormatStr *string   `parser:"(Format @String)?"`
	Comma     bool      `parser:"Comma?"`
}

// EnumDecl declares an enumeration. RepType, when absent, defaults to I32
// (spec.md §4.5).
type EnumDecl struct {
	Positions
	Node
	Name    string              `parser:"Enum @Ident"`
	RepType *TypeName           `parser:"(Colon @@)?"`
	Members []*EnumConstantDecl `parser:"LBrace @@* RBrace"`
}

// EnumConstantDecl is a single member of an enum declaration.
type EnumConstantDecl struct {
	Positions
	Node
	Name  string `parser:"@Ident"`
	Value *Expr  `parser:"(Equals @@)?"`
	Comma bool   `parser:"Comma?"`
}

// ConstantDecl declares a named constant value.
type ConstantDecl struct {
	Positions
	Node
	Name  string `parser:"Constant @Ident Equals"`
	Value *Expr  `parser:"@@"`
}

// QualIdent is a dot-separated identifier path, e.g. `A.B.C`.
type QualIdent struct {
	Positions
	Node
	Parts []string `parser:"@Ident (Dot @Ident)*"`
}

// String renders the qualified identifier in dotted form.
func (q *QualIdent) String() string {
	return strings.Join(q.Parts, ".")
}

// Qualifiers returns every part but the last (the leading path).
func (q *QualIdent) Qualifiers() []string {
	if len(q.Parts) <= 1 {
		return nil
	}
	return q.Parts[:len(q.Parts)-1]
}

// Tail returns the final identifier in the path — the name actually being
// looked up once every qualifier has been resolved.
func (q *QualIdent) Tail() string {
	if len(q.Parts) == 0 {
		return ""
	}
	return q.Parts[len(q.Parts)-1]
}

// TypeName is a type-expression node: a primitive keyword, `string` with an
// optional bracketed size, or a qualified reference to a named type.
type TypeName struct {
	Positions
	Node
	Bool      bool       `parser:"(  @\"bool\""`
	Int       *string    `parser:" | @(\"I8\"|\"U8\"|\"I16\"|\"U16\"|\"I32\"|\"U32\"|\"I64\"|\"U64\")"`
	Float     *string    `parser:" | @(\"F32\"|\"F64\")"`
	String    bool       `parser:" | @\"string\""`
	StringSz  *Expr      `parser:"   (LBracket @@ RBracket)?"`
	Ref       *QualIdent `parser:" | @@ )"`
}

// Expr is a constant-foldable expression: additive terms joined by + / -.
type Expr struct {
	Positions
	Node
	Left *Term    `parser:"@@"`
	Ops  []string `parser:"(@(\"+\"|\"-\")"`
	Rest []*Term  `parser:"  @@)*"`
}

// Term is a sequence of Unary factors joined by * / /.
type Term struct {
	Positions
	Left  *Unary  `parser:"@@"`
	Ops   []string `parser:"(@(\"*\"|\"/\")"`
	Rest  []*Unary `parser:"  @@)*"`
}

// Unary is an optionally negated postfix expression.
type Unary struct {
	Positions
	Neg   bool     `parser:"@\"-\"?"`
	Value *Postfix `parser:"@@"`
}

// Postfix is a primary expression followed by zero or more `.member`
// selections.
type Postfix struct {
	Positions
	Base    *Primary `parser:"@@"`
	Members []string `parser:"(Dot @Ident)*"`
}

// Primary is a literal, an array/struct literal, a parenthesized
// expression, or a reference to a named constant or enum constant.
type Primary struct {
	Positions
	Node
	Int    *string      `parser:"(  @Int"`
	Float  *string      `parser:" | @Float"`
	Str    *string      `parser:" | @String"`
	True   bool         `parser:" | @\"true\""`
	False  bool         `parser:" | @\"false\""`
	Array  *ArrayLit    `parser:" | @@"`
	Struct *StructLit   `parser:" | @@"`
	Paren  *Expr        `parser:" | LParen @@ RParen"`
	Ref    *QualIdent   `parser:" | @@ )"`
}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	Positions
	Elements []*Expr `parser:"LBracket (@@ (Comma @@)*)? RBracket"`
}

// StructLit is `{ name = e1, ... }`.
type StructLit struct {
	Positions
	Members []*StructLitMember `parser:"LBrace (@@ (Comma @@)*)? RBrace"`
}

// StructLitMember is one `name = expr` entry in a struct literal.
type StructLitMember struct {
	Positions
	Name  string `parser:"@Ident Equals"`
	Value *Expr  `parser:"@@"`
}
