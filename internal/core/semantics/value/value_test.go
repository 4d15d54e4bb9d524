package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpp-community/fppsema/internal/core/semantics/types"
	"github.com/fpp-community/fppsema/internal/util/testutil"
)

func TestValue_TypeOf(t *testing.T) {
	t.Run("primitive integer carries its width", func(t *testing.T) {
		v := &Value{Kind: KindPrimitiveInteger, Int: 3, IntKind: types.I16}
		ty := v.TypeOf()
		assert.Equal(t, types.KindPrimitiveInt, ty.Kind)
		assert.Equal(t, types.I16, ty.IntKind)
	})

	t.Run("bare integer literal has the unsized Integer type", func(t *testing.T) {
		v := &Value{Kind: KindInteger, Int: 3}
		assert.Equal(t, types.KindInteger, v.TypeOf().Kind)
	})

	t.Run("enum constant carries its enum type", func(t *testing.T) {
		enum := &types.EnumType{NodeID: 1, Name: "Color", RepType: types.I32}
		v := &Value{Kind: KindEnumConstant, EnumConstantName: "RED", EnumType: enum}
		ty := v.TypeOf()
		require.Equal(t, types.KindEnum, ty.Kind)
		assert.Same(t, enum, ty.Enum)
	})

	t.Run("anon array infers element type and size from its elements", func(t *testing.T) {
		elt := &Value{Kind: KindPrimitiveInteger, Int: 1, IntKind: types.I8}
		v := &Value{Kind: KindAnonArray, Elements: []*Value{elt, elt, elt}}
		ty := v.TypeOf()
		require.Equal(t, types.KindAnonArray, ty.Kind)
		require.NotNil(t, ty.AnonArray.Size)
		assert.Equal(t, 3, *ty.AnonArray.Size)
		assert.Equal(t, types.I8, ty.AnonArray.Elt.IntKind)
	})

	t.Run("empty anon array has a nil element type", func(t *testing.T) {
		v := &Value{Kind: KindAnonArray}
		ty := v.TypeOf()
		assert.Equal(t, 0, *ty.AnonArray.Size)
		assert.Nil(t, ty.AnonArray.Elt)
	})

	t.Run("anon struct derives member types from its members", func(t *testing.T) {
		v := &Value{Kind: KindAnonStruct, Members: map[string]*Value{
			"x": {Kind: KindBoolean, Bool: true},
		}}
		ty := v.TypeOf()
		require.Equal(t, types.KindAnonStruct, ty.Kind)
		assert.Equal(t, types.KindBoolean, ty.AnonStruct.Members["x"].Kind)
	})
}

func TestConvert(t *testing.T) {
	t.Run("an integer literal widens into a sized primitive", func(t *testing.T) {
		v := &Value{Kind: KindInteger, Int: 42}
		out, err := Convert(v, &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.U8})
		require.NoError(t, err)
		assert.Equal(t, KindPrimitiveInteger, out.Kind)
		assert.Equal(t, int64(42), out.Int)
		assert.Equal(t, types.U8, out.IntKind)
	})

	t.Run("an integer widens into a float", func(t *testing.T) {
		v := &Value{Kind: KindInteger, Int: 7}
		out, err := Convert(v, &types.Type{Kind: types.KindFloat, FloatKind: types.F32})
		require.NoError(t, err)
		assert.Equal(t, KindFloat, out.Kind)
		assert.Equal(t, 7.0, out.Float)
	})

	t.Run("a boolean cannot convert to an integer", func(t *testing.T) {
		v := &Value{Kind: KindBoolean, Bool: true}
		_, err := Convert(v, &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I32})
		require.Error(t, err)
	})

	t.Run("a string value passes through a string target unchanged", func(t *testing.T) {
		v := &Value{Kind: KindString, Str: "hi"}
		out, err := Convert(v, &types.Type{Kind: types.KindString})
		require.NoError(t, err)
		assert.Same(t, v, out)
	})

	t.Run("conversion follows an alias target to its underlying type", func(t *testing.T) {
		alias := &types.Type{Kind: types.KindAliasType, AliasType: &types.AliasType{
			NodeID: 1, Name: "Byte", AliasType: &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.U8},
		}}
		v := &Value{Kind: KindInteger, Int: 9}
		out, err := Convert(v, alias)
		require.NoError(t, err)
		assert.Equal(t, KindPrimitiveInteger, out.Kind)
		assert.Equal(t, types.U8, out.IntKind)
	})

	t.Run("a scalar promotes into every slot of an anonymous array", func(t *testing.T) {
		target := &types.Type{Kind: types.KindAnonArray, AnonArray: &types.AnonArrayType{
			Size: testutil.Pointer(3), Elt: &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I32},
		}}
		v := &Value{Kind: KindInteger, Int: 5}
		out, err := Convert(v, target)
		require.NoError(t, err)
		require.Equal(t, KindAnonArray, out.Kind)
		require.Len(t, out.Elements, 3)
		for _, e := range out.Elements {
			assert.Equal(t, int64(5), e.Int)
		}
	})

	t.Run("an array value converts element by element into a named array type", func(t *testing.T) {
		arrayTy := &types.ArrayType{NodeID: 1, Name: "Triple", Anon: types.AnonArrayType{
			Size: testutil.Pointer(2), Elt: &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I16},
		}}
		target := &types.Type{Kind: types.KindArray, Array: arrayTy}
		v := &Value{Kind: KindAnonArray, Elements: []*Value{
			{Kind: KindInteger, Int: 1},
			{Kind: KindInteger, Int: 2},
		}}
		out, err := Convert(v, target)
		require.NoError(t, err)
		require.Equal(t, KindArray, out.Kind)
		assert.Same(t, arrayTy, out.ArrayTy)
		require.Len(t, out.Elements, 2)
		assert.Equal(t, types.I16, out.Elements[0].IntKind)
	})

	t.Run("a scalar promotes into every member of an anonymous struct", func(t *testing.T) {
		target := &types.Type{Kind: types.KindAnonStruct, AnonStruct: &types.AnonStructType{
			Members: map[string]*types.Type{
				"x": {Kind: types.KindPrimitiveInt, IntKind: types.I8},
				"y": {Kind: types.KindPrimitiveInt, IntKind: types.I8},
			},
		}}
		v := &Value{Kind: KindInteger, Int: 1}
		out, err := Convert(v, target)
		require.NoError(t, err)
		require.Equal(t, KindAnonStruct, out.Kind)
		assert.Len(t, out.Members, 2)
	})

	t.Run("a struct value missing a required member fails to convert", func(t *testing.T) {
		target := &types.Type{Kind: types.KindAnonStruct, AnonStruct: &types.AnonStructType{
			Members: map[string]*types.Type{"x": {Kind: types.KindPrimitiveInt, IntKind: types.I8}},
		}}
		v := &Value{Kind: KindAnonStruct, Members: map[string]*Value{}}
		_, err := Convert(v, target)
		require.Error(t, err)
	})

	t.Run("an enum constant value passes through an enum target unchanged", func(t *testing.T) {
		enum := &types.EnumType{NodeID: 1, Name: "Color", RepType: types.I32}
		v := &Value{Kind: KindEnumConstant, EnumConstantName: "RED", EnumType: enum, Int: 0}
		out, err := Convert(v, &types.Type{Kind: types.KindEnum, Enum: enum})
		require.NoError(t, err)
		assert.Same(t, v, out)
	})
}

func TestDefaultOf(t *testing.T) {
	t.Run("primitives default to their zero value", func(t *testing.T) {
		v, ok := DefaultOf(&types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I32})
		require.True(t, ok)
		assert.Equal(t, int64(0), v.Int)

		v, ok = DefaultOf(&types.Type{Kind: types.KindBoolean})
		require.True(t, ok)
		assert.False(t, v.Bool)

		v, ok = DefaultOf(&types.Type{Kind: types.KindString})
		require.True(t, ok)
		assert.Equal(t, "", v.Str)
	})

	t.Run("an alias defers to its aliased type's default", func(t *testing.T) {
		alias := &types.Type{Kind: types.KindAliasType, AliasType: &types.AliasType{
			NodeID: 1, Name: "Flag", AliasType: &types.Type{Kind: types.KindBoolean},
		}}
		v, ok := DefaultOf(alias)
		require.True(t, ok)
		assert.Equal(t, KindBoolean, v.Kind)
	})

	t.Run("an abstract type with no declared default has none", func(t *testing.T) {
		_, ok := DefaultOf(&types.Type{Kind: types.KindAbsType, AbsType: &types.AbsType{NodeID: 1, Name: "Opaque"}})
		assert.False(t, ok)
	})

	t.Run("a named type with a declared default returns it", func(t *testing.T) {
		declared := &Value{Kind: KindPrimitiveInteger, Int: 99, IntKind: types.I32}
		absTy := &types.AbsType{NodeID: 1, Name: "Opaque", Default: declared}
		v, ok := DefaultOf(&types.Type{Kind: types.KindAbsType, AbsType: absTy})
		require.True(t, ok)
		assert.Same(t, declared, v)
	})

	t.Run("an anonymous array synthesizes a default from its element's default", func(t *testing.T) {
		ty := &types.Type{Kind: types.KindAnonArray, AnonArray: &types.AnonArrayType{
			Size: testutil.Pointer(3), Elt: &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I8},
		}}
		v, ok := DefaultOf(ty)
		require.True(t, ok)
		require.Len(t, v.Elements, 3)
	})

	t.Run("an unsized anonymous array has no default", func(t *testing.T) {
		ty := &types.Type{Kind: types.KindAnonArray, AnonArray: &types.AnonArrayType{
			Elt: &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I8},
		}}
		_, ok := DefaultOf(ty)
		assert.False(t, ok)
	})

	t.Run("an anonymous struct fails if any member has no default", func(t *testing.T) {
		ty := &types.Type{Kind: types.KindAnonStruct, AnonStruct: &types.AnonStructType{
			Members: map[string]*types.Type{
				"x": {Kind: types.KindBoolean},
				"y": {Kind: types.KindAbsType, AbsType: &types.AbsType{NodeID: 1, Name: "Opaque"}},
			},
		}}
		_, ok := DefaultOf(ty)
		assert.False(t, ok)
	})
}

func TestFitsInIntKind(t *testing.T) {
	t.Run("signed bounds are inclusive", func(t *testing.T) {
		assert.True(t, FitsInIntKind(127, types.I8))
		assert.True(t, FitsInIntKind(-128, types.I8))
		assert.False(t, FitsInIntKind(128, types.I8))
		assert.False(t, FitsInIntKind(-129, types.I8))
	})

	t.Run("unsigned kinds reject negative values", func(t *testing.T) {
		assert.False(t, FitsInIntKind(-1, types.U8))
		assert.True(t, FitsInIntKind(255, types.U8))
		assert.False(t, FitsInIntKind(256, types.U8))
	})

	t.Run("64-bit kinds always fit a native int64", func(t *testing.T) {
		assert.True(t, FitsInIntKind(9223372036854775807, types.I64))
		assert.True(t, FitsInIntKind(0, types.U64))
	})
}

func TestFitsInFloatKind(t *testing.T) {
	t.Run("finite values always fit", func(t *testing.T) {
		assert.True(t, FitsInFloatKind(3.14, types.F32))
		assert.True(t, FitsInFloatKind(-1e300, types.F64))
	})

	t.Run("non-finite values never fit", func(t *testing.T) {
		assert.False(t, FitsInFloatKind(math.Inf(1), types.F64))
		assert.False(t, FitsInFloatKind(math.NaN(), types.F64))
	})
}
