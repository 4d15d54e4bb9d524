package analysis

import (
	"fmt"

	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
	"github.com/fpp-community/fppsema/internal/core/semantics/types"
)

// CheckExprTypes validates every expression context against its expected
// type (spec.md §4.9): an array's size must be numeric, array and struct
// defaults must convert to their own declared type, and a named constant's
// type is recorded as the type of the expression that defines it. Enum
// constant values, enum defaults, struct member sizes and string sizes are
// not checked by this pass.
//
// Only a "bare" expression — one that reduces to a single reference to a
// named constant or enum constant, with no arithmetic and no member
// selection — ever acquires a recorded type; an expression built from
// literals or arithmetic has nothing upstream to check its operand types
// against, so it is left untyped and any convertibility check against it
// is skipped rather than forced. This mirrors how type information flows
// through this pipeline: a Value only carries a shape, never a type, until
// something downstream names the type it must satisfy.
func CheckExprTypes(a *Analysis) {
	c := &exprTypeChecker{a: a}
	for _, path := range a.FileOrder {
		c.checkMembers(a.Files[path].Members)
	}
}

type exprTypeChecker struct{ a *Analysis }

func (c *exprTypeChecker) checkMembers(members []*ast.Member) {
	for _, m := range members {
		c.checkMember(m)
	}
}

func (c *exprTypeChecker) checkMember(m *ast.Member) {
	switch {
	case m.Array != nil:
		c.checkArray(m.Array)
	case m.Struct != nil:
		c.checkStruct(m.Struct)
	case m.Constant != nil:
		c.constantType(c.a.SymbolOf[m.Constant.GetNodeID()])

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

// checkArray validates a `array` declaration's size and default expressions
// (spec.md §4.9). AliasType, Enum, and Port type names need no action here:
// CheckTypeUses already recorded their own type directly (an alias simply
// wraps its target's Type; a bare TypeName carries no value expression to
// check).
func (c *exprTypeChecker) checkArray(node *ast.ArrayDecl) {
	c.checkIsNumeric(node.Size)

	if node.Default == nil {
		return
	}
	arrTy, ok := c.a.TypeMap[node.GetNodeID()]
	if !ok {
		return
	}
	c.checkConvertible(node.Default, arrTy, "array")
}

// checkStruct validates a struct declaration's default expression. The
// original implementation this is grounded on never finalizes a struct's
// per-member sizes or its own default value, so there is no struct default
// to check there either; this completes the same hole FinalizeTypeDefs
// already closed for structs.
func (c *exprTypeChecker) checkStruct(node *ast.StructDecl) {
	if node.Default == nil {
		return
	}
	structTy, ok := c.a.TypeMap[node.GetNodeID()]
	if !ok {
		return
	}
	c.checkConvertible(node.Default, structTy, "struct")
}

// constantType records a constant declaration's own type as the type of its
// value expression, idempotently.
func (c *exprTypeChecker) constantType(sym symbol.Symbol) *types.Type {
	if ty, ok := c.a.TypeMap[sym.ID]; ok {
		return ty
	}
	decl, ok := sym.Node.(*ast.ConstantDecl)
	if !ok {
		return nil
	}
	v, ok := c.a.ValueMap[sym.ID]
	if !ok {
		return nil
	}
	ty := v.TypeOf()
	c.a.TypeMap[decl.GetNodeID()] = ty
	return ty
}

// checkIsNumeric reports TypeConversion if expr has a recorded type that
// does not convert to Integer. An expr with no recorded type (a literal, an
// arithmetic combination) is left unchecked: the grammar already guarantees
// every operand of a constant expression is itself numeric or foldable to a
// number, so nothing here can actually be non-numeric except a reference to
// the wrong kind of constant, and that is exactly the case typeOfExpr can
// see.
func (c *exprTypeChecker) checkIsNumeric(expr *ast.Expr) {
	ty := c.typeOfExpr(expr)
	if ty == nil {
		return
	}
	if err := types.Convert(ty, &types.Type{Kind: types.KindInteger}); err != nil {
		c.a.Report(newDiagnostic(expr.Positions, CodeTypeConversion,
			"cannot convert expression to integer", notesToChildren(expr.Positions, err.Notes())...))
	}
}

// checkConvertible reports TypeConversion if expr has a recorded type that
// does not convert to target.
func (c *exprTypeChecker) checkConvertible(expr *ast.Expr, target *types.Type, what string) {
	ty := c.typeOfExpr(expr)
	if ty == nil {
		return
	}
	if err := types.Convert(ty, target); err != nil {
		msg := fmt.Sprintf("default value cannot be converted to %s type %s", what, target)
		c.a.Report(newDiagnostic(expr.Positions, CodeTypeConversion, msg, notesToChildren(expr.Positions, err.Notes())...))
	}
}

// typeOfExpr returns expr's recorded type, resolving and caching it first
// if expr is a bare reference to a named constant or enum constant.
func (c *exprTypeChecker) typeOfExpr(expr *ast.Expr) *types.Type {
	if expr == nil {
		return nil
	}
	if ty, ok := c.a.TypeMap[expr.GetNodeID()]; ok {
		return ty
	}

	ref := bareRef(expr)
	if ref == nil {
		return nil
	}
	defID, ok := c.a.UseDefMap[ref.GetNodeID()]
	if !ok {
		return nil
	}
	sym := c.a.SymbolOf[defID]

	var ty *types.Type
	switch sym.Kind {
	case symbol.Constant:
		ty = c.constantType(sym)
	case symbol.EnumConstant:
		ty = c.a.TypeMap[sym.ID]
	default:
		c.a.Report(invalidSymbolDiagnostic(ref.Positions, sym, "not a constant symbol"))
		return nil
	}
	if ty == nil {
		return nil
	}
	c.a.TypeMap[expr.GetNodeID()] = ty
	return ty
}

// bareRef returns the QualIdent expr reduces to if it is nothing but a
// reference — no arithmetic, no negation, no member selection — or nil if
// it is any richer expression.
func bareRef(expr *ast.Expr) *ast.QualIdent {
	if expr == nil || len(expr.Ops) != 0 {
		return nil
	}
	t := expr.Left
	if t == nil || len(t.Ops) != 0 {
		return nil
	}
	u := t.Left
	if u == nil || u.Neg {
		return nil
	}
	p := u.Value
	if p == nil || len(p.Members) != 0 {
		return nil
	}
	return p.Base.Ref
}
