package analysis

import (
	"fmt"
	"strconv"

	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
	"github.com/fpp-community/fppsema/internal/core/semantics/types"
	"github.com/fpp-community/fppsema/internal/core/semantics/value"
)

// EvalConstantExprs folds every constant expression reachable from a
// declaration (spec.md §4.6): named constants, explicitly-valued enum
// constants, and the size/default expressions of array and struct types.
// A constant use (a QualIdent naming a Constant or EnumConstant symbol) is
// resolved on demand through UseDefMap and the referenced declaration's own
// value is folded first if it has not been already, so a constant may
// freely reference another constant declared earlier in any included file.
//
// Demand-driven and idempotent via visitedConstExpr, for the same reason
// CheckTypeUses needs visitedTypeUse: a constant referenced from several
// places is folded once.
func EvalConstantExprs(a *Analysis) {
	e := &constEvaluator{a: a}
	for _, path := range a.FileOrder {
		e.evalMembers(a.Files[path].Members)
	}
}

// FoldExpr folds a single constant expression outside the normal pass
// ordering, reusing the same Ref-resolution rules. FinalizeTypeDefs calls
// this directly to fold array/struct defaults and size expressions while
// it finalizes a declaration.
func FoldExpr(a *Analysis, expr *ast.Expr) *value.Value {
	e := &constEvaluator{a: a}
	return e.evalExpr(expr)
}

type constEvaluator struct {
	a *Analysis
}

func (e *constEvaluator) evalMembers(members []*ast.Member) {
	for _, m := range members {
		e.evalMember(m)
	}
}

func (e *constEvaluator) evalMember(m *ast.Member) {
	switch {
	case m.Constant != nil:
		e.constantValue(e.a.SymbolOf[m.Constant.GetNodeID()])

	case m.Enum != nil:
		for _, c := range m.Enum.Members {
			if c.Value != nil {
				e.enumConstantValue(e.a.SymbolOf[c.GetNodeID()])
			}
		}
		e.checkDuplicateEnumValues(m.Enum)

	case m.Array != nil:
		e.evalExpr(m.Array.Size)
		e.evalExpr(m.Array.Default)

	case m.Struct != nil:
		for _, sm := range m.Struct.Members {
			e.evalExpr(sm.Size)
		}
		e.evalExpr(m.Struct.Default)

	case m.Module != nil:
		e.evalMembers(m.Module.Members)
	case m.Component != nil:
		e.evalMembers(m.Component.Members)
	case m.Interface != nil:
		e.evalMembers(m.Interface.Members)
	case m.StateMachine != nil:
		e.evalMembers(m.StateMachine.Members)
	case m.State != nil:
		e.evalMembers(m.State.Members)
	case m.Topology != nil:
		e.evalMembers(m.Topology.Members)
	}
}

// constantValue folds sym's declared value, caching the result under its
// own node id so a constant referenced from many expressions is folded
// exactly once.
func (e *constEvaluator) constantValue(sym symbol.Symbol) *value.Value {
	if v, ok := e.a.ValueMap[sym.ID]; ok {
		return v
	}
	if e.a.visitedConstExpr[sym.ID] {
		return nil
	}
	e.a.visitedConstExpr[sym.ID] = true

	decl, ok := sym.Node.(*ast.ConstantDecl)
	if !ok {
		return nil
	}
	v := e.evalExpr(decl.Value)
	if v == nil {
		return nil
	}
	e.a.ValueMap[sym.ID] = v
	return v
}

// enumConstantValue folds the explicit value of an enum constant, tagging
// the result with its enum's type. Constants without an explicit value are
// left for EvalImpliedEnumConsts to assign.
func (e *constEvaluator) enumConstantValue(sym symbol.Symbol) *value.Value {
	if v, ok := e.a.ValueMap[sym.ID]; ok {
		return v
	}
	if e.a.visitedConstExpr[sym.ID] {
		return nil
	}
	e.a.visitedConstExpr[sym.ID] = true

	decl, ok := sym.Node.(*ast.EnumConstantDecl)
	if !ok || decl.Value == nil {
		return nil
	}

	raw := e.evalExpr(decl.Value)
	if raw == nil {
		return nil
	}
	n, ok := asConstInt(raw)
	if !ok {
		e.a.Report(newDiagnostic(decl.Positions, CodeConstantFoldFailed, "enum constant value must be an integer"))
		return nil
	}

	enumTy, ok := e.a.TypeMap[sym.ID]
	if !ok {
		return nil
	}
	v := &value.Value{Kind: value.KindEnumConstant, EnumConstantName: decl.Name, Int: n, EnumType: enumTy.Enum}
	e.a.ValueMap[sym.ID] = v
	return v
}

func (e *constEvaluator) checkDuplicateEnumValues(enum *ast.EnumDecl) {
	seen := make(map[int64]ast.Positions, len(enum.Members))
	for _, c := range enum.Members {
		v, ok := e.a.ValueMap[c.GetNodeID()]
		if !ok || v.Kind != value.KindEnumConstant {
			continue
		}
		if prevPos, dup := seen[v.Int]; dup {
			msg := fmt.Sprintf("duplicate enum value %d", v.Int)
			e.a.Report(newDiagnostic(c.Positions, CodeDuplicateEnumValue, msg, newNote(prevPos, "previous constant with this value here")))
			continue
		}
		seen[v.Int] = c.Positions
	}
}

func (e *constEvaluator) evalExpr(expr *ast.Expr) *value.Value {
	if expr == nil {
		return nil
	}
	result := e.evalTerm(expr.Left)
	if result == nil {
		return nil
	}
	for i, op := range expr.Ops {
		rhs := e.evalTerm(expr.Rest[i])
		if rhs == nil {
			return nil
		}
		next, divByZero, ok := foldArith(op, result, rhs)
		if !ok {
			e.reportFoldFailure(expr.Positions, divByZero)
			return nil
		}
		result = next
	}
	return result
}

func (e *constEvaluator) evalTerm(t *ast.Term) *value.Value {
	if t == nil {
		return nil
	}
	result := e.evalUnary(t.Left)
	if result == nil {
		return nil
	}
	for i, op := range t.Ops {
		rhs := e.evalUnary(t.Rest[i])
		if rhs == nil {
			return nil
		}
		next, divByZero, ok := foldArith(op, result, rhs)
		if !ok {
			e.reportFoldFailure(t.Positions, divByZero)
			return nil
		}
		result = next
	}
	return result
}

// reportFoldFailure emits DivByZero for a division that folded to a
// zero divisor and ConstantFoldFailed for every other fold failure.
func (e *constEvaluator) reportFoldFailure(pos ast.Positions, divByZero bool) {
	if divByZero {
		e.a.Report(newDiagnostic(pos, CodeDivByZero, "division by zero in constant expression"))
		return
	}
	e.a.Report(newDiagnostic(pos, CodeConstantFoldFailed, "cannot evaluate constant expression"))
}

func (e *constEvaluator) evalUnary(u *ast.Unary) *value.Value {
	if u == nil {
		return nil
	}
	v := e.evalPostfix(u.Value)
	if v == nil {
		return nil
	}
	if !u.Neg {
		return v
	}
	switch v.Kind {
	case value.KindInteger, value.KindPrimitiveInteger:
		return &value.Value{Kind: value.KindInteger, Int: -v.Int}
	case value.KindFloat:
		return &value.Value{Kind: value.KindFloat, Float: -v.Float, FloatKind: v.FloatKind}
	default:
		e.a.Report(newDiagnostic(u.Positions, CodeConstantFoldFailed, "cannot negate a non-numeric constant"))
		return nil
	}
}

func (e *constEvaluator) evalPostfix(p *ast.Postfix) *value.Value {
	if p == nil {
		return nil
	}
	v := e.evalPrimary(p.Base)
	for _, member := range p.Members {
		if v == nil {
			return nil
		}
		if v.Kind != value.KindStruct && v.Kind != value.KindAnonStruct {
			e.a.Report(newDiagnostic(p.Positions, CodeConstantFoldFailed, "cannot select member `"+member+"` of a non-struct constant"))
			return nil
		}
		next, ok := v.Members[member]
		if !ok {
			e.a.Report(newDiagnostic(p.Positions, CodeConstantFoldFailed, "struct constant has no member `"+member+"`"))
			return nil
		}
		v = next
	}
	return v
}

func (e *constEvaluator) evalPrimary(p *ast.Primary) *value.Value {
	if p == nil {
		return nil
	}
	if v, ok := e.a.ValueMap[p.GetNodeID()]; ok {
		return v
	}

	var v *value.Value
	switch {
	case p.Int != nil:
		n, err := strconv.ParseInt(*p.Int, 0, 64)
		if err != nil {
			e.a.Report(newDiagnostic(p.Positions, CodeConstantFoldFailed, "invalid integer literal"))
			return nil
		}
		v = &value.Value{Kind: value.KindInteger, Int: n}

	case p.Float != nil:
		f, err := strconv.ParseFloat(*p.Float, 64)
		if err != nil {
			e.a.Report(newDiagnostic(p.Positions, CodeConstantFoldFailed, "invalid float literal"))
			return nil
		}
		v = &value.Value{Kind: value.KindFloat, Float: f, FloatKind: types.F64}

	case p.Str != nil:
		v = &value.Value{Kind: value.KindString, Str: unquoteString(*p.Str)}

	case p.True:
		v = &value.Value{Kind: value.KindBoolean, Bool: true}

	case p.False:
		v = &value.Value{Kind: value.KindBoolean, Bool: false}

	case p.Array != nil:
		elements := make([]*value.Value, 0, len(p.Array.Elements))
		for _, el := range p.Array.Elements {
			ev := e.evalExpr(el)
			if ev == nil {
				return nil
			}
			elements = append(elements, ev)
		}
		v = &value.Value{Kind: value.KindAnonArray, Elements: elements}

	case p.Struct != nil:
		members := make(map[string]*value.Value, len(p.Struct.Members))
		for _, m := range p.Struct.Members {
			mv := e.evalExpr(m.Value)
			if mv == nil {
				return nil
			}
			members[m.Name] = mv
		}
		v = &value.Value{Kind: value.KindAnonStruct, Members: members}

	case p.Paren != nil:
		return e.evalExpr(p.Paren)

	case p.Ref != nil:
		return e.evalRef(p.Ref)

	default:
		return nil
	}

	e.a.ValueMap[p.GetNodeID()] = v
	return v
}

// evalRef resolves a constant reference through UseDefMap, folding the
// target declaration first if needed.
func (e *constEvaluator) evalRef(ref *ast.QualIdent) *value.Value {
	defID, ok := e.a.UseDefMap[ref.GetNodeID()]
	if !ok {
		return nil
	}
	sym := e.a.SymbolOf[defID]
	switch sym.Kind {
	case symbol.Constant:
		return e.constantValue(sym)
	case symbol.EnumConstant:
		return e.enumConstantValue(sym)
	default:
		return nil
	}
}

func asConstInt(v *value.Value) (int64, bool) {
	switch v.Kind {
	case value.KindInteger, value.KindPrimitiveInteger, value.KindEnumConstant:
		return v.Int, true
	}
	return 0, false
}

// foldArith folds a binary arithmetic operation. The middle return value is
// true only when folding failed specifically because of a zero divisor, so
// the caller can choose between DivByZero and the generic fold-failure
// diagnostic.
func foldArith(op string, l, r *value.Value) (result *value.Value, divByZero bool, ok bool) {
	lf, lIsFloat, lok := numericOf(l)
	rf, rIsFloat, rok := numericOf(r)
	if !lok || !rok {
		return nil, false, false
	}

	if lIsFloat || rIsFloat {
		var out float64
		switch op {
		case "+":
			out = lf + rf
		case "-":
			out = lf - rf
		case "*":
			out = lf * rf
		case "/":
			if rf == 0 {
				return nil, true, false
			}
			out = lf / rf
		default:
			return nil, false, false
		}
		return &value.Value{Kind: value.KindFloat, Float: out, FloatKind: types.F64}, false, true
	}

	li, ri := int64(lf), int64(rf)
	var out int64
	switch op {
	case "+":
		out = li + ri
	case "-":
		out = li - ri
	case "*":
		out = li * ri
	case "/":
		if ri == 0 {
			return nil, true, false
		}
		out = li / ri
	default:
		return nil, false, false
	}
	return &value.Value{Kind: value.KindInteger, Int: out}, false, true
}

func numericOf(v *value.Value) (f float64, isFloat bool, ok bool) {
	switch v.Kind {
	case value.KindInteger, value.KindPrimitiveInteger, value.KindEnumConstant:
		return float64(v.Int), false, true
	case value.KindFloat:
		return v.Float, true, true
	}
	return 0, false, false
}

func unquoteString(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
