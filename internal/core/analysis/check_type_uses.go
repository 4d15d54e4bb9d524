package analysis

import (
	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
	"github.com/fpp-community/fppsema/internal/core/semantics/types"
)

// CheckTypeUses assigns an initial types.Type to every type-introducing
// node reachable from a declaration (spec.md §4.5): the type-defining
// declarations themselves (AbsType, AliasType, Array, Enum, Struct) and
// every TypeName/QualIdent that names one. Array element sizes, defaults,
// and format strings are deliberately left unset here — those depend on
// constant folding and are filled in later by FinalizeTypeDefs.
//
// Demand-driven and idempotent: resolving a type use recurses into the
// declaration it names on first encounter only (visitedTypeUse), so a type
// referenced from many places is built once no matter which reference is
// visited first.
func CheckTypeUses(a *Analysis) {
	c := &typeChecker{a: a}
	for _, path := range a.FileOrder {
		c.checkMembers(a.Files[path].Members)
	}
}

type typeChecker struct{ a *Analysis }

func (c *typeChecker) checkMembers(members []*ast.Member) {
	for _, m := range members {
		c.checkMember(m)
	}
}

func (c *typeChecker) checkMember(m *ast.Member) {
	switch {
	case m.AbsType != nil:
		c.typeOfDecl(c.a.SymbolOf[m.AbsType.GetNodeID()])
	case m.AliasType != nil:
		c.typeOfDecl(c.a.SymbolOf[m.AliasType.GetNodeID()])
	case m.Array != nil:
		c.typeOfDecl(c.a.SymbolOf[m.Array.GetNodeID()])
	case m.Struct != nil:
		c.typeOfDecl(c.a.SymbolOf[m.Struct.GetNodeID()])
	case m.Enum != nil:
		c.typeOfDecl(c.a.SymbolOf[m.Enum.GetNodeID()])
	case m.Port != nil:
		c.typeOf(m.Port.Type)

	case m.Interface != nil:
		c.checkMembers(m.Interface.Members)
	case m.Module != nil:
		c.checkMembers(m.Module.Members)
	case m.Component != nil:
		c.checkMembers(m.Component.Members)
	case m.StateMachine != nil:
		c.checkMembers(m.StateMachine.Members)
	case m.State != nil:
		c.checkMembers(m.State.Members)
	case m.Topology != nil:
		c.checkMembers(m.Topology.Members)
	}
}

// typeOf builds (or fetches the cached) Type named by a TypeName node,
// recording it in TypeMap under the TypeName's own node id.
func (c *typeChecker) typeOf(tn *ast.TypeName) *types.Type {
	if tn == nil {
		return nil
	}
	if ty, ok := c.a.TypeMap[tn.GetNodeID()]; ok {
		return ty
	}

	var ty *types.Type
	switch {
	case tn.Bool:
		ty = &types.Type{Kind: types.KindBoolean}
	case tn.Int != nil:
		ty = &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.IntKind(*tn.Int)}
	case tn.Float != nil:
		ty = &types.Type{Kind: types.KindFloat, FloatKind: types.FloatKind(*tn.Float)}
	case tn.String:
		// The declared bracketed size is a constant expression folded by a
		// later pass; at this point every string type is unsized.
		ty = &types.Type{Kind: types.KindString}
	case tn.Ref != nil:
		ty = c.resolveTypeUse(tn.Ref)
	}

	if ty == nil {
		return nil
	}
	c.a.TypeMap[tn.GetNodeID()] = ty
	return ty
}

// resolveTypeUse follows a type-name reference through UseDefMap to the
// symbol CheckUses resolved it to, verifies the symbol names a type, and
// recurses into that declaration's own type construction.
func (c *typeChecker) resolveTypeUse(ref *ast.QualIdent) *types.Type {
	if ty, ok := c.a.TypeMap[ref.GetNodeID()]; ok {
		return ty
	}
	defID, ok := c.a.UseDefMap[ref.GetNodeID()]
	if !ok {
		return nil
	}
	sym := c.a.SymbolOf[defID]
	switch sym.Kind {
	case symbol.AbsType, symbol.AliasType, symbol.Array, symbol.Enum, symbol.Struct:
	default:
		c.a.Report(newDiagnostic(ref.Positions, CodeNotATypeName, "`"+sym.Name+"` is not a type"))
		return nil
	}

	ty := c.typeOfDecl(sym)
	if ty == nil {
		return nil
	}
	c.a.TypeMap[ref.GetNodeID()] = ty
	return ty
}

// typeOfDecl builds the Type for a type-defining declaration's symbol,
// caching the result (success or permanent failure) under the
// declaration's own node id so it is computed at most once.
func (c *typeChecker) typeOfDecl(sym symbol.Symbol) *types.Type {
	if ty, ok := c.a.TypeMap[sym.ID]; ok {
		return ty
	}
	if c.a.visitedTypeUse[sym.ID] {
		return nil
	}
	c.a.visitedTypeUse[sym.ID] = true

	switch node := sym.Node.(type) {
	case *ast.AbsTypeDecl:
		ty := &types.Type{Kind: types.KindAbsType, AbsType: &types.AbsType{NodeID: sym.ID, Name: node.Name}}
		c.a.TypeMap[sym.ID] = ty
		return ty

	case *ast.AliasTypeDecl:
		target := c.typeOf(node.Target)
		if target == nil {
			return nil
		}
		ty := &types.Type{Kind: types.KindAliasType, AliasType: &types.AliasType{NodeID: sym.ID, Name: node.Name, AliasType: target}}
		c.a.TypeMap[sym.ID] = ty
		return ty

	case *ast.ArrayDecl:
		elt := c.typeOf(node.Elt)
		if elt == nil {
			return nil
		}
		ty := &types.Type{Kind: types.KindArray, Array: &types.ArrayType{
			NodeID: sym.ID,
			Name:   node.Name,
			Anon:   types.AnonArrayType{Elt: elt},
		}}
		c.a.TypeMap[sym.ID] = ty
		return ty

	case *ast.EnumDecl:
		return c.enumType(sym, node)

	case *ast.StructDecl:
		return c.structType(sym, node)
	}
	return nil
}

func (c *typeChecker) enumType(sym symbol.Symbol, node *ast.EnumDecl) *types.Type {
	if len(node.Members) == 0 {
		c.a.Report(newDiagnostic(node.Positions, CodeInvalidType, "enum must define at least one constant"))
	}

	repKind := types.I32
	if node.RepType != nil {
		repTy := c.typeOf(node.RepType)
		if repTy == nil {
			return nil
		}
		underlying := types.UnderlyingType(repTy)
		if underlying.Kind != types.KindPrimitiveInt {
			c.a.Report(newDiagnostic(node.RepType.Positions, CodeTypeMismatch, "enum representation type must be a primitive integer type"))
		} else {
			repKind = underlying.IntKind
		}
	}

	ty := &types.Type{Kind: types.KindEnum, Enum: &types.EnumType{NodeID: sym.ID, Name: node.Name, RepType: repKind}}
	c.a.TypeMap[sym.ID] = ty
	for _, member := range node.Members {
		c.a.TypeMap[member.GetNodeID()] = ty
	}
	return ty
}

func (c *typeChecker) structType(sym symbol.Symbol, node *ast.StructDecl) *types.Type {
	members := make(map[string]*types.Type, len(node.Members))
	seen := make(map[string]ast.Positions, len(node.Members))

	for _, m := range node.Members {
		memberTy := c.typeOf(m.Type)
		if prevPos, dup := seen[m.Name]; dup {
			c.a.Report(newDiagnostic(m.Positions, CodeDuplicateStructMember,
				"duplicate struct member `"+m.Name+"`", newNote(prevPos, "previous member here")))
			continue
		}
		seen[m.Name] = m.Positions
		if memberTy != nil {
			members[m.Name] = memberTy
		}
	}

	ty := &types.Type{Kind: types.KindStruct, Struct: &types.StructType{
		NodeID: sym.ID,
		Name:   node.Name,
		Anon:   types.AnonStructType{Members: members},
	}}
	c.a.TypeMap[sym.ID] = ty
	return ty
}
