package analysis

import (
	"fmt"

	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/format"
	"github.com/fpp-community/fppsema/internal/core/semantics/types"
	"github.com/fpp-community/fppsema/internal/core/semantics/value"
)

// FinalizeTypeDefs resolves the holes CheckTypeUses deliberately left open
// (spec.md §4.8), using the values EvalConstantExprs folded: string sizes,
// array sizes/defaults/format strings, and struct per-member sizes/formats
// plus the struct's own default.
//
// Declarations are finalized in member order; visitedFinalize makes the
// pass idempotent, so an array or struct declaration is finalized at most
// once.
func FinalizeTypeDefs(a *Analysis) {
	f := &finalizer{a: a}
	for _, path := range a.FileOrder {
		f.finalizeMembers(a.Files[path].Members)
	}
}

type finalizer struct{ a *Analysis }

func (f *finalizer) finalizeMembers(members []*ast.Member) {
	for _, m := range members {
		f.finalizeMember(m)
	}
}

func (f *finalizer) finalizeMember(m *ast.Member) {
	switch {
	case m.AliasType != nil:
		f.finalizeTypeName(m.AliasType.Target)
	case m.Array != nil:
		f.finalizeArray(m.Array)
	case m.Struct != nil:
		f.finalizeStruct(m.Struct)
	case m.Enum != nil:
		f.finalizeTypeName(m.Enum.RepType)
	case m.Port != nil:
		f.finalizeTypeName(m.Port.Type)

	case m.Interface != nil:
		f.finalizeMembers(m.Interface.Members)
	case m.Module != nil:
		f.finalizeMembers(m.Module.Members)
	case m.Component != nil:
		f.finalizeMembers(m.Component.Members)
	case m.StateMachine != nil:
		f.finalizeMembers(m.StateMachine.Members)
	case m.State != nil:
		f.finalizeMembers(m.State.Members)
	case m.Topology != nil:
		f.finalizeMembers(m.Topology.Members)
	}
}

// finalizeTypeName completes the one hole a bare TypeName can carry: a
// `string[n]` bracketed size. Every other TypeName variant was already
// fully built by CheckTypeUses.
func (f *finalizer) finalizeTypeName(tn *ast.TypeName) *types.Type {
	if tn == nil {
		return nil
	}
	ty, ok := f.a.TypeMap[tn.GetNodeID()]
	if !ok {
		return nil
	}
	if ty.Kind == types.KindString && tn.StringSz != nil && ty.StringSize == nil {
		if n, ok := f.foldRangedInt(tn.StringSz, 0, 1<<31, "string size must be in range [0, 2^31)"); ok {
			ty.StringSize = &n
		}
	}
	return ty
}

// finalizeArray completes an array type's size, default value, and format
// string (spec.md §4.8).
func (f *finalizer) finalizeArray(node *ast.ArrayDecl) {
	sym := f.a.SymbolOf[node.GetNodeID()]
	if f.a.visitedFinalize[sym.ID] {
		return
	}
	f.a.visitedFinalize[sym.ID] = true

	ty, ok := f.a.TypeMap[sym.ID]
	if !ok || ty.Kind != types.KindArray {
		return
	}
	arr := ty.Array

	eltTy := f.finalizeTypeName(node.Elt)
	if eltTy == nil {
		return
	}

	size, ok := f.foldPositiveInt(node.Size, "array size must be greater than zero")
	if !ok {
		return
	}
	arr.Anon.Size = &size

	anonArrayTy := &types.Type{Kind: types.KindAnonArray, AnonArray: &arr.Anon}
	arr.Default = f.finalizeDefault(node.Default, anonArrayTy)

	if node.FormatStr != nil {
		arr.FormatStr = node.FormatStr
		f.validateFormat(*node.FormatStr, node.Elt.Positions, []*types.Type{eltTy})
	}
}

// finalizeStruct completes a struct type's per-member array sizes and
// format strings, and its own default value. A member declared with a
// bracketed size (`name: T[n]`) becomes an anonymous array of T, matching
// the array-shorthand member syntax the grammar carries.
func (f *finalizer) finalizeStruct(node *ast.StructDecl) {
	sym := f.a.SymbolOf[node.GetNodeID()]
	if f.a.visitedFinalize[sym.ID] {
		return
	}
	f.a.visitedFinalize[sym.ID] = true

	ty, ok := f.a.TypeMap[sym.ID]
	if !ok || ty.Kind != types.KindStruct {
		return
	}
	st := ty.Struct
	st.Sizes = make(map[string]int)
	st.Formats = make(map[string]*string)

	for _, m := range node.Members {
		memberTy, ok := st.Anon.Members[m.Name]
		if !ok {
			continue
		}

		effectiveTy := memberTy
		if m.Size != nil {
			if n, ok := f.foldPositiveInt(m.Size, "struct member size must be greater than zero"); ok {
				effectiveTy = &types.Type{Kind: types.KindAnonArray, AnonArray: &types.AnonArrayType{Size: &n, Elt: memberTy}}
				st.Anon.Members[m.Name] = effectiveTy
				st.Sizes[m.Name] = n
			}
		}

		if m.FormatStr != nil {
			st.Formats[m.Name] = m.FormatStr
			f.validateFormat(*m.FormatStr, m.Positions, []*types.Type{effectiveTy})
		}
	}

	st.Default = f.finalizeDefault(node.Default, ty)
}

// finalizeDefault computes a type's default value the way spec.md §4.8
// describes: convert an explicit default expression if one is supplied,
// else synthesize one from the type's own shape. Either step can fail
// (an unconvertible default, a type with no default to synthesize); both
// fail silently here, since CheckExprTypes (§4.9) is the pass responsible
// for diagnosing an inconvertible default expression.
func (f *finalizer) finalizeDefault(defaultExpr *ast.Expr, target *types.Type) any {
	if defaultExpr != nil {
		defVal := FoldExpr(f.a, defaultExpr)
		if defVal == nil {
			return nil
		}
		converted, err := value.Convert(defVal, target)
		if err != nil {
			return nil
		}
		return converted
	}
	if def, ok := value.DefaultOf(target); ok {
		return def
	}
	return nil
}

// validateFormat parses and validates a format string against the types it
// will format, reporting each problem found at pos.
func (f *finalizer) validateFormat(raw string, pos ast.Positions, argTypes []*types.Type) {
	parsed, parseErrs := format.Parse(unquoteString(raw))
	for _, e := range parseErrs {
		msg := e.Message
		if e.Note != "" {
			f.a.Report(newDiagnostic(pos, CodeFormatSyntaxError, msg, newNote(pos, e.Note)))
		} else {
			f.a.Report(newDiagnostic(pos, CodeFormatSyntaxError, msg))
		}
	}

	for _, err := range format.Validate(parsed, argTypes) {
		switch e := err.(type) {
		case *format.MismatchError:
			f.a.Report(newDiagnostic(pos, CodeFormatLengthMismatch, e.Error()))
		case *format.PrecisionTooLargeError:
			f.a.Report(newDiagnostic(pos, CodeFormatInvalidPrecision, e.Error()))
		default:
			f.a.Report(newDiagnostic(pos, CodeFormatInvalidReplacement, err.Error()))
		}
	}
}

// foldRangedInt folds expr and requires the result lie in [low, high),
// reporting InvalidIntValue (with msg) otherwise. A nil fold result is not
// separately diagnosed here: EvalConstantExprs/FoldExpr already reported
// why folding failed.
func (f *finalizer) foldRangedInt(expr *ast.Expr, low, high int64, msg string) (int, bool) {
	v := FoldExpr(f.a, expr)
	if v == nil {
		return 0, false
	}
	n, ok := asConstInt(v)
	if !ok {
		f.a.Report(newDiagnostic(expr.Positions, CodeInvalidIntValue, msg))
		return 0, false
	}
	if n < low || n >= high {
		f.a.Report(newDiagnostic(expr.Positions, CodeInvalidIntValue, fmt.Sprintf("%s (got %d)", msg, n)))
		return 0, false
	}
	return int(n), true
}

// foldPositiveInt folds expr and requires a strictly positive integer
// result, reporting InvalidIntValue (with msg) otherwise.
func (f *finalizer) foldPositiveInt(expr *ast.Expr, msg string) (int, bool) {
	v := FoldExpr(f.a, expr)
	if v == nil {
		return 0, false
	}
	n, ok := asConstInt(v)
	if !ok || n <= 0 {
		f.a.Report(newDiagnostic(expr.Positions, CodeInvalidIntValue, msg))
		return 0, false
	}
	return int(n), true
}
