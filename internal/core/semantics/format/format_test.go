package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpp-community/fppsema/internal/core/semantics/types"
)

func TestParse(t *testing.T) {
	t.Run("a default field parses with no arguments", func(t *testing.T) {
		f, errs := Parse("value: {}")
		require.Empty(t, errs)
		require.Equal(t, 1, f.Len())
		assert.True(t, f.Fields[0].Kind.IsDefault)
	})

	t.Run("escaped braces are not replacement fields", func(t *testing.T) {
		f, errs := Parse("{{literal}}")
		require.Empty(t, errs)
		assert.Equal(t, 0, f.Len())
	})

	t.Run("integer kind letters parse to their respective kinds", func(t *testing.T) {
		for input, want := range map[string]IntegerFormatKind{
			"{c}": IntCharacter,
			"{d}": IntDecimal,
			"{x}": IntHexadecimal,
			"{o}": IntOctal,
		} {
			f, errs := Parse(input)
			require.Empty(t, errs, input)
			require.Equal(t, 1, f.Len(), input)
			assert.True(t, f.Fields[0].Kind.IsInteger, input)
			assert.Equal(t, want, f.Fields[0].Kind.IntKind, input)
		}
	})

	t.Run("rational kind letters parse without precision", func(t *testing.T) {
		for input, want := range map[string]RationalFormatKind{
			"{e}": RationalExponent,
			"{f}": RationalFixed,
			"{g}": RationalGeneral,
		} {
			f, errs := Parse(input)
			require.Empty(t, errs, input)
			require.Equal(t, 1, f.Len(), input)
			assert.True(t, f.Fields[0].Kind.IsRational, input)
			assert.Equal(t, want, f.Fields[0].Kind.RatKind, input)
			assert.Nil(t, f.Fields[0].Kind.Precision, input)
		}
	})

	t.Run("a dotted precision applies to a rational field", func(t *testing.T) {
		f, errs := Parse("{.3f}")
		require.Empty(t, errs)
		require.Equal(t, 1, f.Len())
		require.NotNil(t, f.Fields[0].Kind.Precision)
		assert.Equal(t, 3, *f.Fields[0].Kind.Precision)
		assert.Equal(t, RationalFixed, f.Fields[0].Kind.RatKind)
	})

	t.Run("a precision without a rational letter is an error", func(t *testing.T) {
		_, errs := Parse("{.3}")
		require.NotEmpty(t, errs)
	})

	t.Run("a precision modifier followed by an integer letter is an error", func(t *testing.T) {
		_, errs := Parse("{.3d}")
		require.NotEmpty(t, errs)
	})

	t.Run("an unknown field letter is an error", func(t *testing.T) {
		_, errs := Parse("{z}")
		require.NotEmpty(t, errs)
	})

	t.Run("an unclosed brace is an error", func(t *testing.T) {
		_, errs := Parse("{d")
		require.NotEmpty(t, errs)
	})

	t.Run("a dangling close brace is an error", func(t *testing.T) {
		_, errs := Parse("value}")
		require.NotEmpty(t, errs)
	})

	t.Run("multiple fields are parsed in source order", func(t *testing.T) {
		f, errs := Parse("{d} and {x}")
		require.Empty(t, errs)
		require.Equal(t, 2, f.Len())
		assert.Equal(t, IntDecimal, f.Fields[0].Kind.IntKind)
		assert.Equal(t, IntHexadecimal, f.Fields[1].Kind.IntKind)
	})
}

func TestValidate(t *testing.T) {
	intTy := &types.Type{Kind: types.KindPrimitiveInt, IntKind: types.I32}
	floatTy := &types.Type{Kind: types.KindFloat, FloatKind: types.F32}
	boolTy := &types.Type{Kind: types.KindBoolean}

	t.Run("a field count mismatch is reported once", func(t *testing.T) {
		f, _ := Parse("{d} {d}")
		errs := Validate(f, []*types.Type{intTy})
		require.Len(t, errs, 1)
		_, ok := errs[0].(*MismatchError)
		assert.True(t, ok)
	})

	t.Run("an integer field accepts integer types", func(t *testing.T) {
		f, _ := Parse("{d}")
		errs := Validate(f, []*types.Type{intTy})
		assert.Empty(t, errs)
	})

	t.Run("an integer field rejects a non-integer type", func(t *testing.T) {
		f, _ := Parse("{d}")
		errs := Validate(f, []*types.Type{boolTy})
		require.Len(t, errs, 1)
		_, ok := errs[0].(*ReplacementTypeError)
		assert.True(t, ok)
	})

	t.Run("a rational field accepts float types", func(t *testing.T) {
		f, _ := Parse("{f}")
		errs := Validate(f, []*types.Type{floatTy})
		assert.Empty(t, errs)
	})

	t.Run("a rational field rejects a non-float type", func(t *testing.T) {
		f, _ := Parse("{f}")
		errs := Validate(f, []*types.Type{intTy})
		require.Len(t, errs, 1)
		_, ok := errs[0].(*ReplacementTypeError)
		assert.True(t, ok)
	})

	t.Run("a default field accepts anything", func(t *testing.T) {
		f, _ := Parse("{}")
		errs := Validate(f, []*types.Type{boolTy})
		assert.Empty(t, errs)
	})

	t.Run("precision over the maximum is reported", func(t *testing.T) {
		f, _ := Parse("{.101f}")
		errs := Validate(f, []*types.Type{floatTy})
		require.Len(t, errs, 1)
		perr, ok := errs[0].(*PrecisionTooLargeError)
		require.True(t, ok)
		assert.Equal(t, 101, perr.Value)
		assert.Equal(t, 100, perr.Max)
	})

	t.Run("a format string validates against an alias's underlying type", func(t *testing.T) {
		alias := &types.Type{Kind: types.KindAliasType, AliasType: &types.AliasType{
			NodeID: 1, Name: "Celsius", AliasType: floatTy,
		}}
		f, _ := Parse("{f}")
		errs := Validate(f, []*types.Type{alias})
		assert.Empty(t, errs)
	})
}

func TestRender(t *testing.T) {
	t.Run("substitutes arguments into default and typed fields in order", func(t *testing.T) {
		out := Render(nil, "x = {}, y = {d}", []string{"1", "2"})
		assert.Equal(t, "x = 1, y = 2", out)
	})

	t.Run("unescapes doubled braces", func(t *testing.T) {
		out := Render(nil, "{{literal}}", nil)
		assert.Equal(t, "{literal}", out)
	})
}
