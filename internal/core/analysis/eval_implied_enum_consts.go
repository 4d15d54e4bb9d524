package analysis

import (
	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/value"
)

// EvalImpliedEnumConsts assigns a value to every enum constant that was
// declared without one (spec.md §4.7), running last in the pipeline so the
// preceding passes have already typed the enum and folded every constant
// that did supply its own value.
//
// An enum is either fully explicit (every constant gives its own value) or
// implies its values from the first constant that omits one, counting up
// by one from there. A constant without a value once the enum has already
// committed to explicit mode is EnumConstantShouldBeExplicit; a constant
// with a value after the enum has started implying them is
// EnumConstantShouldBeImplied.
func EvalImpliedEnumConsts(a *Analysis) {
	f := &impliedEnumFiller{a: a}
	for _, path := range a.FileOrder {
		f.fillMembers(a.Files[path].Members)
	}
}

type impliedEnumFiller struct{ a *Analysis }

func (f *impliedEnumFiller) fillMembers(members []*ast.Member) {
	for _, m := range members {
		f.fillMember(m)
	}
}

func (f *impliedEnumFiller) fillMember(m *ast.Member) {
	switch {
	case m.Enum != nil:
		f.fillEnum(m.Enum)

	case m.Interface != nil:
		f.fillMembers(m.Interface.Members)
	case m.Module != nil:
		f.fillMembers(m.Module.Members)
	case m.Component != nil:
		f.fillMembers(m.Component.Members)
	case m.StateMachine != nil:
		f.fillMembers(m.StateMachine.Members)
	case m.State != nil:
		f.fillMembers(m.State.Members)
	case m.Topology != nil:
		f.fillMembers(m.Topology.Members)
	}
}

func (f *impliedEnumFiller) fillEnum(node *ast.EnumDecl) {
	ty, ok := f.a.TypeMap[node.GetNodeID()]
	if !ok || ty.Enum == nil {
		return
	}

	implying, next := true, int64(0)
	for _, member := range node.Members {
		hasValue := member.Value != nil

		switch {
		case implying && hasValue:
			if next != 0 {
				f.a.Report(newDiagnostic(member.Positions, CodeEnumConstantImplied,
					"enum constant `"+member.Name+"` should not have an explicit value; earlier constants in this enum rely on implied values"))
				return
			}
			implying = false

		case !implying && hasValue:
			// Already in explicit mode; nothing to do, EvalConstantExprs
			// already folded this constant's value.

		case implying && !hasValue:
			f.a.ValueMap[member.GetNodeID()] = &value.Value{
				Kind:             value.KindEnumConstant,
				EnumConstantName: member.Name,
				Int:              next,
				EnumType:         ty.Enum,
			}
			next++

		case !implying && !hasValue:
			f.a.Report(newDiagnostic(member.Positions, CodeEnumConstantShouldBeExplicit,
				"enum constant `"+member.Name+"` must have an explicit value; earlier constants in this enum are explicit"))
			return
		}
	}
}
