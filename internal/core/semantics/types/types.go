// Package types implements the Type sum type and its algebra: identity,
// underlying-type stripping, convertibility, and least-upper-bound
// ("common type"). Grounded on fpp_analysis's semantics::types module,
// translated from Rust's Arc<Type>-based enum into a tagged Go struct.
//
// Default values are stored as `any` rather than a concrete Value type:
// the original Rust crate compiles types.rs and value.rs as mutually
// recursive modules of one crate, which Go's package-level import graph
// does not allow without one package depending on the other. Package value
// imports this package (for Value.Convert's target Type) and stores actual
// *value.Value instances in these fields; this package never needs to
// inspect them itself.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fpp-community/fppsema/internal/core/ast"
)

// IntKind is a fixed-width integer representation.
type IntKind string

const (
	I8  IntKind = "I8"
	U8  IntKind = "U8"
	I16 IntKind = "I16"
	U16 IntKind = "U16"
	I32 IntKind = "I32"
	U32 IntKind = "U32"
	I64 IntKind = "I64"
	U64 IntKind = "U64"
)

// BitWidth returns the width of the integer representation in bits.
func (k IntKind) BitWidth() int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	case I64, U64:
		return 64
	}
	panic("types: unknown int kind " + string(k))
}

// Signedness classifies an IntKind as signed or unsigned.
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

// SignednessOf returns whether kind is signed or unsigned.
func SignednessOf(kind IntKind) Signedness {
	switch kind {
	case I8, I16, I32, I64:
		return Signed
	default:
		return Unsigned
	}
}

// FloatKind is a floating-point representation.
type FloatKind string

const (
	F32 FloatKind = "F32"
	F64 FloatKind = "F64"
)

// Kind discriminates the Type sum type's variants.
type Kind int

const (
	KindPrimitiveInt Kind = iota
	KindFloat
	KindString
	KindBoolean
	KindInteger // arbitrary-width integer, the type of an unsuffixed int literal
	KindAbsType
	KindAliasType
	KindArray
	KindAnonArray
	KindEnum
	KindStruct
	KindAnonStruct
)

// Type is the FPP type system's tagged union. Only the fields matching Kind
// are populated.
type Type struct {
	Kind Kind

	IntKind   IntKind
	FloatKind FloatKind
	// StringSize is the declared max length of a `string` type, nil if
	// unbounded.
	StringSize *int

	AbsType    *AbsType
	AliasType  *AliasType
	Array      *ArrayType
	AnonArray  *AnonArrayType
	Enum       *EnumType
	Struct     *StructType
	AnonStruct *AnonStructType
}

// AbsType is an abstract type: a name with no visible representation.
type AbsType struct {
	NodeID  ast.NodeID
	Name    string
	Default any // *value.Value
}

// AliasType is a `type Name = Target` declaration.
type AliasType struct {
	NodeID    ast.NodeID
	Name      string
	AliasType *Type
}

// ArrayType is a named, fixed-size array type.
type ArrayType struct {
	NodeID    ast.NodeID
	Name      string
	Anon      AnonArrayType
	Default   any // *value.Value
	FormatStr *string
}

// AnonArrayType is the structural shape shared by every array of the same
// size and element type, named or not.
type AnonArrayType struct {
	Size *int
	Elt  *Type
}

// EnumType is a named enumeration with an integer representation type.
type EnumType struct {
	NodeID  ast.NodeID
	Name    string
	RepType IntKind
	Default any // *value.Value
}

// StructType is a named struct type.
type StructType struct {
	NodeID  ast.NodeID
	Name    string
	Anon    AnonStructType
	Default any // *value.Value
	Sizes   map[string]int
	Formats map[string]*string
}

// AnonStructType is the structural shape shared by every struct with the
// same member names and types, named or not.
type AnonStructType struct {
	Members map[string]*Type
}

// UnderlyingType strips away alias-type wrappers, returning the first
// non-alias ancestor.
func UnderlyingType(t *Type) *Type {
	if t.Kind == KindAliasType {
		return UnderlyingType(t.AliasType.AliasType)
	}
	return t
}

// DefNodeID returns the declaration node identifying this type, if any.
// Structural types (AnonArray, AnonStruct) and primitives have none.
func (t *Type) DefNodeID() (ast.NodeID, bool) {
	switch t.Kind {
	case KindAbsType:
		return t.AbsType.NodeID, true
	case KindAliasType:
		return t.AliasType.NodeID, true
	case KindArray:
		return t.Array.NodeID, true
	case KindEnum:
		return t.Enum.NodeID, true
	case KindStruct:
		return t.Struct.NodeID, true
	}
	return 0, false
}

// ArraySize returns the declared array size, looking through alias types.
func (t *Type) ArraySize() (int, bool) {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.ArraySize()
	case KindAnonArray:
		if t.AnonArray.Size != nil {
			return *t.AnonArray.Size, true
		}
	case KindArray:
		if t.Array.Anon.Size != nil {
			return *t.Array.Anon.Size, true
		}
	}
	return 0, false
}

// IsCanonical reports whether t is not an alias-type wrapper.
func (t *Type) IsCanonical() bool { return t.Kind != KindAliasType }

// IsInt reports whether t is an integer type, looking through aliases.
func (t *Type) IsInt() bool {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.IsInt()
	case KindPrimitiveInt, KindInteger:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating-point type, looking through
// aliases.
func (t *Type) IsFloat() bool {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.IsFloat()
	case KindFloat:
		return true
	}
	return false
}

// IsNumeric reports whether t is an integer or float type.
func (t *Type) IsNumeric() bool {
	if t.Kind == KindAliasType {
		return t.AliasType.AliasType.IsNumeric()
	}
	return t.IsInt() || t.IsFloat()
}

// IsPrimitive reports whether t is a primitive int, float, or bool type.
func (t *Type) IsPrimitive() bool {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.IsPrimitive()
	case KindPrimitiveInt, KindFloat, KindBoolean:
		return true
	}
	return false
}

// IsConvertibleToNumeric reports whether t can appear where a numeric type
// is expected (a plain numeric type, or an enum via its representation
// type).
func (t *Type) IsConvertibleToNumeric() bool {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.IsConvertibleToNumeric()
	case KindEnum:
		return true
	}
	return t.IsNumeric()
}

// IsPromotableToArray reports whether a single value of type t may stand in
// for an array literal's repeated element.
func (t *Type) IsPromotableToArray() bool {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.IsPromotableToArray()
	case KindString, KindBoolean, KindEnum:
		return true
	}
	return t.IsNumeric()
}

// IsPromotableToStruct mirrors IsPromotableToArray: the same types that can
// fill an array slot can fill every member slot of a struct.
func (t *Type) IsPromotableToStruct() bool { return t.IsPromotableToArray() }

// HasNumericMembers reports whether every leaf of t (through arrays and
// struct members) is a numeric type.
func (t *Type) HasNumericMembers() bool {
	switch t.Kind {
	case KindAliasType:
		return t.AliasType.AliasType.HasNumericMembers()
	case KindArray:
		return t.Array.Anon.Elt.HasNumericMembers()
	case KindAnonArray:
		return t.AnonArray.Elt.HasNumericMembers()
	case KindStruct:
		return allMembersNumeric(t.Struct.Anon.Members)
	case KindAnonStruct:
		return allMembersNumeric(t.AnonStruct.Members)
	}
	return t.IsNumeric()
}

func allMembersNumeric(members map[string]*Type) bool {
	for _, m := range members {
		if !m.HasNumericMembers() {
			return false
		}
	}
	return true
}

// IsDisplayable reports whether a value of type t can be rendered by the
// format-string engine.
func (t *Type) IsDisplayable() bool {
	switch t.Kind {
	case KindPrimitiveInt, KindFloat, KindString, KindBoolean, KindEnum:
		return true
	case KindInteger, KindAbsType:
		return false
	case KindAliasType:
		return t.AliasType.AliasType.IsDisplayable()
	case KindArray:
		return t.Array.Anon.Elt.IsDisplayable()
	case KindAnonArray:
		return t.AnonArray.Elt.IsDisplayable()
	case KindStruct:
		return allMembersDisplayable(t.Struct.Anon.Members)
	case KindAnonStruct:
		return allMembersDisplayable(t.AnonStruct.Members)
	}
	return false
}

func allMembersDisplayable(members map[string]*Type) bool {
	for _, m := range members {
		if !m.IsDisplayable() {
			return false
		}
	}
	return true
}

// Identical reports strict type identity: same primitive kind, or the same
// defining declaration for named types. Identity never looks through alias
// wrappers — two distinct alias types around the same target are not
// identical.
func Identical(t1, t2 *Type) bool {
	switch {
	case t1.Kind == KindPrimitiveInt && t2.Kind == KindPrimitiveInt:
		return t1.IntKind == t2.IntKind
	case t1.Kind == KindFloat && t2.Kind == KindFloat:
		return t1.FloatKind == t2.FloatKind
	case t1.Kind == KindInteger && t2.Kind == KindInteger:
		return true
	case t1.Kind == KindBoolean && t2.Kind == KindBoolean:
		return true
	case t1.Kind == KindString && t2.Kind == KindString:
		if t1.StringSize == nil && t2.StringSize == nil {
			return true
		}
		if t1.StringSize != nil && t2.StringSize != nil {
			return *t1.StringSize == *t2.StringSize
		}
		return false
	default:
		id1, ok1 := t1.DefNodeID()
		id2, ok2 := t2.DefNodeID()
		return ok1 && ok2 && id1 == id2
	}
}

// ConversionError explains why Convert refused to convert one type to
// another. It is a recursive sum so nested failures (an array element, a
// struct member) carry the chain down to the primitive mismatch that
// actually failed (spec.md §7's cascading TypeConversionError notes).
type ConversionError struct {
	Kind ConversionErrorKind

	ArraySizeFrom, ArraySizeTo int
	Inner                      *ConversionError
	Type                       *Type
	MemberName                 string
	MismatchFrom, MismatchTo   *Type
}

// ConversionErrorKind discriminates ConversionError's variants.
type ConversionErrorKind int

const (
	ErrArraySizeMismatch ConversionErrorKind = iota
	ErrArrayElementDuringPromotion
	ErrArrayElement
	ErrNotPromotableToArray
	ErrNotPromotableToStruct
	ErrMissingStructMember
	ErrStructMember
	ErrMismatch
)

// Notes renders the error chain as a list of human-readable notes, the
// outermost failure first, suitable as Diagnostic children.
func (e *ConversionError) Notes() []string {
	switch e.Kind {
	case ErrArraySizeMismatch:
		return []string{fmt.Sprintf("array sizes do not match %d != %d", e.ArraySizeFrom, e.ArraySizeTo)}
	case ErrArrayElement:
		return append([]string{"array element type cannot be converted"}, e.Inner.Notes()...)
	case ErrArrayElementDuringPromotion:
		return append([]string{"single element could not be promoted to array"}, e.Inner.Notes()...)
	case ErrNotPromotableToArray:
		return []string{fmt.Sprintf("%s cannot be promoted to an array", e.Type)}
	case ErrNotPromotableToStruct:
		return []string{fmt.Sprintf("%s cannot be promoted to a struct", e.Type)}
	case ErrMissingStructMember:
		return []string{fmt.Sprintf("struct missing member `%s`", e.MemberName)}
	case ErrStructMember:
		return append([]string{fmt.Sprintf("struct member `%s` type cannot be converted", e.MemberName)}, e.Inner.Notes()...)
	case ErrMismatch:
		return []string{fmt.Sprintf("%s cannot be converted to %s", e.MismatchFrom, e.MismatchTo)}
	}
	return nil
}

// Convert reports whether a value of type from can be used where a value
// of type to is expected, following aliases to their underlying types
// first. A nil return means the conversion is legal.
func Convert(from, to *Type) *ConversionError {
	return convertImpl(UnderlyingType(from), UnderlyingType(to))
}

func convertImpl(from, to *Type) *ConversionError {
	if Identical(from, to) {
		return nil
	}

	if from.IsConvertibleToNumeric() && to.IsNumeric() {
		return nil
	}

	fromArr, fromIsArr := asAnonArray(from)
	toArr, toIsArr := asAnonArray(to)
	if fromIsArr && toIsArr {
		if fromArr.Size != nil && toArr.Size != nil && *fromArr.Size != *toArr.Size {
			return &ConversionError{Kind: ErrArraySizeMismatch, ArraySizeFrom: *fromArr.Size, ArraySizeTo: *toArr.Size}
		}
		if err := Convert(fromArr.Elt, toArr.Elt); err != nil {
			return &ConversionError{Kind: ErrArrayElement, Inner: err}
		}
		return nil
	}

	if from.Kind == KindString && to.Kind == KindString {
		return nil
	}

	if toIsArr {
		if !from.IsPromotableToArray() {
			return &ConversionError{Kind: ErrNotPromotableToArray, Type: from}
		}
		if err := convertImpl(from, UnderlyingType(toArr.Elt)); err != nil {
			return &ConversionError{Kind: ErrArrayElementDuringPromotion, Inner: err}
		}
		return nil
	}

	fromStruct, fromIsStruct := asAnonStruct(from)
	toStruct, toIsStruct := asAnonStruct(to)
	if fromIsStruct && toIsStruct {
		for name, fromMemberTy := range fromStruct.Members {
			toMemberTy, ok := toStruct.Members[name]
			if !ok {
				return &ConversionError{Kind: ErrMissingStructMember, MemberName: name}
			}
			if err := Convert(fromMemberTy, toMemberTy); err != nil {
				return &ConversionError{Kind: ErrStructMember, MemberName: name, Inner: err}
			}
		}
		return nil
	}

	if toIsStruct {
		if !from.IsPromotableToStruct() {
			return &ConversionError{Kind: ErrNotPromotableToStruct, Type: from}
		}
		for name, toMemberTy := range toStruct.Members {
			if err := convertImpl(from, UnderlyingType(toMemberTy)); err != nil {
				return &ConversionError{Kind: ErrStructMember, MemberName: name, Inner: err}
			}
		}
		return nil
	}

	return &ConversionError{Kind: ErrMismatch, MismatchFrom: from, MismatchTo: to}
}

func asAnonArray(t *Type) (*AnonArrayType, bool) {
	switch t.Kind {
	case KindArray:
		return &t.Array.Anon, true
	case KindAnonArray:
		return t.AnonArray, true
	}
	return nil, false
}

func asAnonStruct(t *Type) (*AnonStructType, bool) {
	switch t.Kind {
	case KindStruct:
		return &t.Struct.Anon, true
	case KindAnonStruct:
		return t.AnonStruct, true
	}
	return nil, false
}

// CommonType computes the least upper bound of two types: the narrowest
// type both can convert to, or nil if none exists.
func CommonType(t1, t2 *Type) *Type {
	if Identical(t1, t2) {
		return t1
	}

	if !t1.IsCanonical() || !t2.IsCanonical() {
		if lca := findCommonAncestor(t1, t2); lca != nil {
			return lca
		}
	}

	u1, u2 := UnderlyingType(t1), UnderlyingType(t2)

	if u1.IsFloat() && u2.IsNumeric() {
		return &Type{Kind: KindFloat, FloatKind: F64}
	}
	if u1.IsNumeric() && u2.IsFloat() {
		return &Type{Kind: KindFloat, FloatKind: F64}
	}
	if u1.IsNumeric() && u2.IsNumeric() {
		return &Type{Kind: KindInteger}
	}

	if u1.Kind == KindString && u2.Kind == KindString {
		return &Type{Kind: KindString}
	}

	if u1.Kind == KindEnum {
		return CommonType(&Type{Kind: KindPrimitiveInt, IntKind: u1.Enum.RepType}, u1)
	}
	if u2.Kind == KindEnum {
		return CommonType(u1, &Type{Kind: KindPrimitiveInt, IntKind: u2.Enum.RepType})
	}

	if arr1, ok1 := asAnonArray(u1); ok1 {
		if arr2, ok2 := asAnonArray(u2); ok2 {
			var size *int
			if arr1.Size != nil && arr2.Size != nil {
				if *arr1.Size != *arr2.Size {
					return nil
				}
				size = arr1.Size
			}
			elt := CommonType(arr1.Elt, arr2.Elt)
			if elt == nil {
				return nil
			}
			return &Type{Kind: KindAnonArray, AnonArray: &AnonArrayType{Size: size, Elt: elt}}
		}
		return commonWithArray(u2, arr1)
	}
	if arr2, ok2 := asAnonArray(u2); ok2 {
		return commonWithArray(u1, arr2)
	}

	if s1, ok1 := asAnonStruct(u1); ok1 {
		if s2, ok2 := asAnonStruct(u2); ok2 {
			return commonStruct(s1, s2)
		}
		return commonWithStruct(u2, s1)
	}
	if s2, ok2 := asAnonStruct(u2); ok2 {
		return commonWithStruct(u1, s2)
	}

	return nil
}

func commonWithArray(other *Type, arr *AnonArrayType) *Type {
	if !other.IsPromotableToArray() {
		return nil
	}
	elt := CommonType(other, arr.Elt)
	if elt == nil {
		return nil
	}
	return &Type{Kind: KindAnonArray, AnonArray: &AnonArrayType{Size: arr.Size, Elt: elt}}
}

func commonStruct(s1, s2 *AnonStructType) *Type {
	out := make(map[string]*Type)
	for name, t1 := range s1.Members {
		if t2, ok := s2.Members[name]; ok {
			common := CommonType(t1, t2)
			if common == nil {
				return nil
			}
			out[name] = common
		} else {
			out[name] = t1
		}
	}
	for name, t2 := range s2.Members {
		if _, ok := s1.Members[name]; !ok {
			out[name] = t2
		}
	}
	return &Type{Kind: KindAnonStruct, AnonStruct: &AnonStructType{Members: out}}
}

func commonWithStruct(other *Type, str *AnonStructType) *Type {
	if !other.IsPromotableToStruct() {
		return nil
	}
	out := make(map[string]*Type)
	for name, memberTy := range str.Members {
		common := CommonType(other, memberTy)
		if common == nil {
			return nil
		}
		out[name] = common
	}
	return &Type{Kind: KindAnonStruct, AnonStruct: &AnonStructType{Members: out}}
}

func findCommonAncestor(a, b *Type) *Type {
	ancestorsA := ancestors(a)
	ancestorsB := ancestors(b)
	for _, candidate := range ancestorsB {
		for _, other := range ancestorsA {
			if Identical(candidate, other) {
				return candidate
			}
		}
	}
	return nil
}

// ancestors returns t and every alias-type target above it, oldest first.
func ancestors(t *Type) []*Type {
	var out []*Type
	cur := t
	for {
		out = append(out, cur)
		if cur.Kind != KindAliasType {
			break
		}
		cur = cur.AliasType.AliasType
	}
	// Reverse so the non-alias root comes first and t itself last, which
	// makes findCommonAncestor return the oldest common ancestor.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// String renders t the way diagnostics refer to it.
func (t *Type) String() string {
	switch t.Kind {
	case KindPrimitiveInt:
		return string(t.IntKind)
	case KindFloat:
		return string(t.FloatKind)
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "Integer"
	case KindAbsType:
		return t.AbsType.Name
	case KindAliasType:
		return t.AliasType.Name
	case KindArray:
		return t.Array.Name
	case KindAnonArray:
		if t.AnonArray.Size != nil {
			return fmt.Sprintf("[%d] %s", *t.AnonArray.Size, t.AnonArray.Elt)
		}
		return fmt.Sprintf("[] %s", t.AnonArray.Elt)
	case KindEnum:
		return t.Enum.Name
	case KindStruct:
		return t.Struct.Name
	case KindAnonStruct:
		names := make([]string, 0, len(t.AnonStruct.Members))
		for name := range t.AnonStruct.Members {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s: %s", name, t.AnonStruct.Members[name])
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return "?"
}
