// Package value implements the Value sum type produced by constant
// folding, mirroring package types' Type sum type. Grounded on
// fpp_analysis's semantics::value module.
package value

import (
	"fmt"
	"math"

	"github.com/fpp-community/fppsema/internal/core/semantics/types"
)

// Kind discriminates the Value sum type's variants.
type Kind int

const (
	KindPrimitiveInteger Kind = iota
	KindAbsType
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindEnumConstant
	KindAnonArray
	KindArray
	KindAnonStruct
	KindStruct
)

// Value is a folded constant expression's result.
type Value struct {
	Kind Kind

	// PrimitiveInteger / Integer
	Int     int64
	IntKind types.IntKind // valid when Kind == KindPrimitiveInteger

	// Float
	Float     float64
	FloatKind types.FloatKind

	// Boolean
	Bool bool

	// String
	Str string

	// EnumConstant
	EnumConstantName string
	EnumType         *types.EnumType

	// AnonArray / Array
	Elements []*Value
	ArrayTy  *types.ArrayType // set only for Array, nil for AnonArray

	// AnonStruct / Struct
	Members  map[string]*Value
	StructTy *types.StructType // set only for Struct, nil for AnonStruct

	// AbsType
	AbsTy *types.AbsType
}

// TypeOf returns the static type of v.
func (v *Value) TypeOf() *types.Type {
	switch v.Kind {
	case KindPrimitiveInteger:
		return &types.Type{Kind: types.KindPrimitiveInt, IntKind: v.IntKind}
	case KindInteger:
		return &types.Type{Kind: types.KindInteger}
	case KindFloat:
		return &types.Type{Kind: types.KindFloat, FloatKind: v.FloatKind}
	case KindBoolean:
		return &types.Type{Kind: types.KindBoolean}
	case KindString:
		return &types.Type{Kind: types.KindString}
	case KindEnumConstant:
		return &types.Type{Kind: types.KindEnum, Enum: v.EnumType}
	case KindAnonArray:
		elt := (*types.Type)(nil)
		if len(v.Elements) > 0 {
			elt = v.Elements[0].TypeOf()
		}
		size := len(v.Elements)
		return &types.Type{Kind: types.KindAnonArray, AnonArray: &types.AnonArrayType{Size: &size, Elt: elt}}
	case KindArray:
		return &types.Type{Kind: types.KindArray, Array: v.ArrayTy}
	case KindAnonStruct:
		members := make(map[string]*types.Type, len(v.Members))
		for name, m := range v.Members {
			members[name] = m.TypeOf()
		}
		return &types.Type{Kind: types.KindAnonStruct, AnonStruct: &types.AnonStructType{Members: members}}
	case KindStruct:
		return &types.Type{Kind: types.KindStruct, Struct: v.StructTy}
	case KindAbsType:
		return &types.Type{Kind: types.KindAbsType, AbsType: v.AbsTy}
	}
	panic(fmt.Sprintf("value: unhandled kind %d", v.Kind))
}

// Convert folds v, known to be assignable to target per types.Convert, into
// a Value actually carrying target's representation — widening a literal
// Integer to a sized PrimitiveInteger, promoting a scalar into an array or
// struct's repeated/filled shape, and so on. The caller must already have
// checked types.Convert(v.TypeOf(), target) == nil.
func Convert(v *Value, target *types.Type) (*Value, error) {
	u := types.UnderlyingType(target)

	switch u.Kind {
	case types.KindPrimitiveInt:
		n, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("value: cannot convert %v to %s", v.Kind, u)
		}
		return &Value{Kind: KindPrimitiveInteger, Int: n, IntKind: u.IntKind}, nil
	case types.KindInteger:
		n, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("value: cannot convert %v to Integer", v.Kind)
		}
		return &Value{Kind: KindInteger, Int: n}, nil
	case types.KindFloat:
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("value: cannot convert %v to %s", v.Kind, u)
		}
		return &Value{Kind: KindFloat, Float: f, FloatKind: u.FloatKind}, nil
	case types.KindString:
		if v.Kind != KindString {
			return nil, fmt.Errorf("value: cannot convert %v to string", v.Kind)
		}
		return v, nil
	case types.KindBoolean:
		if v.Kind != KindBoolean {
			return nil, fmt.Errorf("value: cannot convert %v to boolean", v.Kind)
		}
		return v, nil
	case types.KindAnonArray, types.KindArray:
		return convertToArray(v, target, u)
	case types.KindStruct, types.KindAnonStruct:
		return convertToStruct(v, target, u)
	case types.KindEnum:
		if v.Kind == KindEnumConstant {
			return v, nil
		}
	}
	return nil, fmt.Errorf("value: cannot convert %v to %s", v.Kind, u)
}

func asInt(v *Value) (int64, bool) {
	switch v.Kind {
	case KindPrimitiveInteger, KindInteger:
		return v.Int, true
	case KindEnumConstant:
		return v.Int, true
	}
	return 0, false
}

func asFloat(v *Value) (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindPrimitiveInteger, KindInteger:
		return float64(v.Int), true
	}
	return 0, false
}

func convertToArray(v *Value, target, underlying *types.Type) (*Value, error) {
	anon := underlying.AnonArray
	if underlying.Kind == types.KindArray {
		anon = &underlying.Array.Anon
	}

	var elements []*Value
	if v.Kind == KindAnonArray || v.Kind == KindArray {
		elements = make([]*Value, len(v.Elements))
		for i, e := range v.Elements {
			converted, err := Convert(e, anon.Elt)
			if err != nil {
				return nil, err
			}
			elements[i] = converted
		}
	} else {
		// Promote a single scalar into a repeated-element array.
		size := 1
		if anon.Size != nil {
			size = *anon.Size
		}
		converted, err := Convert(v, anon.Elt)
		if err != nil {
			return nil, err
		}
		elements = make([]*Value, size)
		for i := range elements {
			elements[i] = converted
		}
	}

	if target.Kind == types.KindArray {
		return &Value{Kind: KindArray, Elements: elements, ArrayTy: target.Array}, nil
	}
	return &Value{Kind: KindAnonArray, Elements: elements}, nil
}

func convertToStruct(v *Value, target, underlying *types.Type) (*Value, error) {
	anon := underlying.AnonStruct
	if underlying.Kind == types.KindStruct {
		anon = &underlying.Struct.Anon
	}

	out := make(map[string]*Value, len(anon.Members))
	if v.Kind == KindAnonStruct || v.Kind == KindStruct {
		for name, memberTy := range anon.Members {
			source, ok := v.Members[name]
			if !ok {
				return nil, fmt.Errorf("value: missing struct member %q", name)
			}
			converted, err := Convert(source, memberTy)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
	} else {
		for name, memberTy := range anon.Members {
			converted, err := Convert(v, memberTy)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
	}

	if target.Kind == types.KindStruct {
		return &Value{Kind: KindStruct, Members: out, StructTy: target.Struct}, nil
	}
	return &Value{Kind: KindAnonStruct, Members: out}, nil
}

// DefaultOf computes t's default value: the zero value for primitives, the
// stored Default for named types that declare one, and a synthesized
// default for anonymous arrays/structs built from each element/member's own
// default. Returns false if any leaf of t has no default to synthesize
// from (e.g. an abstract type with none declared).
func DefaultOf(t *types.Type) (*Value, bool) {
	switch t.Kind {
	case types.KindPrimitiveInt:
		return &Value{Kind: KindPrimitiveInteger, IntKind: t.IntKind}, true
	case types.KindFloat:
		return &Value{Kind: KindFloat, FloatKind: t.FloatKind}, true
	case types.KindString:
		return &Value{Kind: KindString}, true
	case types.KindBoolean:
		return &Value{Kind: KindBoolean}, true
	case types.KindInteger:
		return &Value{Kind: KindInteger}, true
	case types.KindAliasType:
		return DefaultOf(t.AliasType.AliasType)
	case types.KindAbsType:
		return defaultFromAny(t.AbsType.Default)
	case types.KindArray:
		return defaultFromAny(t.Array.Default)
	case types.KindEnum:
		return defaultFromAny(t.Enum.Default)
	case types.KindStruct:
		return defaultFromAny(t.Struct.Default)
	case types.KindAnonArray:
		if t.AnonArray.Size == nil {
			return nil, false
		}
		eltDefault, ok := DefaultOf(t.AnonArray.Elt)
		if !ok {
			return nil, false
		}
		elements := make([]*Value, *t.AnonArray.Size)
		for i := range elements {
			elements[i] = eltDefault
		}
		return &Value{Kind: KindAnonArray, Elements: elements}, true
	case types.KindAnonStruct:
		members := make(map[string]*Value, len(t.AnonStruct.Members))
		for name, memberTy := range t.AnonStruct.Members {
			memberDefault, ok := DefaultOf(memberTy)
			if !ok {
				return nil, false
			}
			members[name] = memberDefault
		}
		return &Value{Kind: KindAnonStruct, Members: members}, true
	}
	return nil, false
}

func defaultFromAny(stored any) (*Value, bool) {
	v, ok := stored.(*Value)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// FitsInIntKind reports whether integer n is representable in kind without
// truncation.
func FitsInIntKind(n int64, kind types.IntKind) bool {
	bits := kind.BitWidth()
	if types.SignednessOf(kind) == types.Unsigned {
		if n < 0 {
			return false
		}
		if bits == 64 {
			return true
		}
		return uint64(n) < uint64(1)<<uint(bits)
	}
	if bits == 64 {
		return true
	}
	max := int64(1)<<uint(bits-1) - 1
	min := -(int64(1) << uint(bits-1))
	return n >= min && n <= max
}

// FitsInFloatKind reports whether f is finite and representable as the
// given float kind (F32 truncation is lossy but legal; only non-finite
// values are rejected).
func FitsInFloatKind(f float64, _ types.FloatKind) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
