// Package format implements the format-string parser and validator used to
// check `format` strings attached to array/struct members against the
// types they will format. Grounded on fpp_analysis's semantics::format
// module.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fpp-community/fppsema/internal/core/semantics/types"
)

// IntegerFormatKind selects how an integer replacement field is rendered.
type IntegerFormatKind int

const (
	IntCharacter IntegerFormatKind = iota
	IntDecimal
	IntHexadecimal
	IntOctal
)

// RationalFormatKind selects how a float replacement field is rendered.
type RationalFormatKind int

const (
	RationalExponent RationalFormatKind = iota
	RationalFixed
	RationalGeneral
)

// ReplacementKind is one `{...}` field's requested rendering.
type ReplacementKind struct {
	IsDefault  bool
	IsInteger  bool
	IntKind    IntegerFormatKind
	IsRational bool
	Precision  *int
	RatKind    RationalFormatKind
}

// ReplacementField is one parsed `{...}` field, with its rune offsets
// within the owning string literal's content.
type ReplacementField struct {
	Offset int
	Length int
	Kind   ReplacementKind
}

// Format is a parsed format string: its replacement fields in source
// order. The literal text between the fields is not kept.
type Format struct {
	Fields []ReplacementField
}

// Len reports the number of replacement fields.
func (f *Format) Len() int { return len(f.Fields) }

// ParseError is a single diagnosable problem found while lexing the format
// string itself (unmatched braces, invalid field characters).
type ParseError struct {
	Offset  int
	Length  int
	Message string
	Note    string
}

// Parse lexes content (the literal text between the string literal's
// quotes) into a Format, reporting any malformed replacement syntax.
func Parse(content string) (*Format, []ParseError) {
	p := &parser{runes: []rune(content)}
	return p.run()
}

type parser struct {
	runes  []rune
	pos    int
	fields []ReplacementField
	errs   []ParseError
}

func (p *parser) run() (*Format, []ParseError) {
	for p.pos < len(p.runes) {
		start := p.pos
		c := p.runes[p.pos]
		switch c {
		case '{':
			if p.peek(1) == '{' {
				p.pos += 2
				continue
			}
			if p.peek(1) == '}' {
				p.pos += 2
				p.fields = append(p.fields, ReplacementField{Offset: start, Length: p.pos - start, Kind: ReplacementKind{IsDefault: true}})
				continue
			}
			p.pos++ // consume '{'
			kind, ok := p.field()
			if !ok {
				continue
			}
			if p.pos < len(p.runes) && p.runes[p.pos] == '}' {
				p.pos++
			} else {
				p.errs = append(p.errs, ParseError{Offset: p.pos, Length: 1, Message: "expected '}' to close format replacement"})
			}
			p.fields = append(p.fields, ReplacementField{Offset: start, Length: p.pos - start, Kind: kind})
		case '}':
			if p.peek(1) == '}' {
				p.pos += 2
			} else {
				p.errs = append(p.errs, ParseError{
					Offset: p.pos, Length: 1,
					Message: "unmatched `}` in format string",
					Note:    "consider escaping curly brace with `}}`",
				})
				p.pos++
			}
		default:
			p.pos++
		}
	}
	return &Format{Fields: p.fields}, p.errs
}

func (p *parser) peek(offset int) rune {
	i := p.pos + offset
	if i < 0 || i >= len(p.runes) {
		return 0
	}
	return p.runes[i]
}

func (p *parser) field() (ReplacementKind, bool) {
	if p.pos >= len(p.runes) {
		p.errs = append(p.errs, ParseError{
			Offset: p.pos, Length: 1,
			Message: "unmatched `{` in format string",
			Note:    "consider escaping curly brace with `{{`",
		})
		return ReplacementKind{}, false
	}
	c := p.runes[p.pos]
	p.pos++

	switch c {
	case '.':
		start := p.pos
		for p.pos < len(p.runes) && p.runes[p.pos] >= '0' && p.runes[p.pos] <= '9' {
			p.pos++
		}
		if p.pos == start {
			p.errs = append(p.errs, ParseError{Offset: p.pos, Length: 1, Message: "expected precision field in format"})
			return ReplacementKind{}, false
		}
		precision, err := strconv.Atoi(string(p.runes[start:p.pos]))
		if err != nil {
			p.errs = append(p.errs, ParseError{Offset: start, Length: p.pos - start, Message: "invalid floating precision: " + err.Error()})
			return ReplacementKind{}, false
		}
		if p.pos >= len(p.runes) {
			p.errs = append(p.errs, ParseError{
				Offset: p.pos, Length: 1,
				Message: "unexpected end of string",
				Note:    "consider escaping curly brace with `{{`",
			})
			return ReplacementKind{}, false
		}
		n := p.runes[p.pos]
		p.pos++
		switch n {
		case 'e':
			return ReplacementKind{IsRational: true, Precision: &precision, RatKind: RationalExponent}, true
		case 'f':
			return ReplacementKind{IsRational: true, Precision: &precision, RatKind: RationalFixed}, true
		case 'g':
			return ReplacementKind{IsRational: true, Precision: &precision, RatKind: RationalGeneral}, true
		default:
			p.errs = append(p.errs, ParseError{
				Offset: p.pos - 1, Length: 1,
				Message: "expected rational format replacement field ('e', 'f', 'g')",
				Note:    "precision modifiers only support rational replacement fields",
			})
			return ReplacementKind{}, false
		}
	case 'c':
		return ReplacementKind{IsInteger: true, IntKind: IntCharacter}, true
	case 'd':
		return ReplacementKind{IsInteger: true, IntKind: IntDecimal}, true
	case 'x':
		return ReplacementKind{IsInteger: true, IntKind: IntHexadecimal}, true
	case 'o':
		return ReplacementKind{IsInteger: true, IntKind: IntOctal}, true
	case 'e':
		return ReplacementKind{IsRational: true, RatKind: RationalExponent}, true
	case 'f':
		return ReplacementKind{IsRational: true, RatKind: RationalFixed}, true
	case 'g':
		return ReplacementKind{IsRational: true, RatKind: RationalGeneral}, true
	default:
		p.errs = append(p.errs, ParseError{Offset: p.pos - 1, Length: 1, Message: "invalid format replacement field"})
		return ReplacementKind{}, false
	}
}

// MismatchError reports the format string and the formatted-type list
// having different field counts.
type MismatchError struct {
	FormatFieldCount int
	TypeCount        int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("format string has %d replacement field(s) but %d value(s) were supplied", e.FormatFieldCount, e.TypeCount)
}

// ReplacementTypeError reports one field whose requested rendering cannot
// apply to the type supplied for it.
type ReplacementTypeError struct {
	FieldIndex int
	Message    string
}

func (e *ReplacementTypeError) Error() string { return e.Message }

// PrecisionTooLargeError reports a `.NNNf`-style precision over the
// allowed maximum.
type PrecisionTooLargeError struct {
	FieldIndex int
	Value, Max int
}

func (e *PrecisionTooLargeError) Error() string {
	return fmt.Sprintf("precision %d exceeds maximum of %d", e.Value, e.Max)
}

const maxPrecision = 100

// Validate checks f's replacement fields against the static types of the
// values it will format, in order, the way a struct/array member's
// `format` clause is checked against its element type.
func Validate(f *Format, argTypes []*types.Type) []error {
	if len(f.Fields) != len(argTypes) {
		return []error{&MismatchError{FormatFieldCount: len(f.Fields), TypeCount: len(argTypes)}}
	}

	var errs []error
	for i, field := range f.Fields {
		ty := types.UnderlyingType(argTypes[i])
		kind := field.Kind
		switch {
		case kind.IsDefault:
			// formats anything
		case kind.IsInteger:
			if ty.Kind != types.KindPrimitiveInt && ty.Kind != types.KindInteger {
				errs = append(errs, &ReplacementTypeError{
					FieldIndex: i,
					Message:    fmt.Sprintf("integer format replacement cannot be used for type `%s`", ty),
				})
			}
		case kind.IsRational:
			if kind.Precision != nil && *kind.Precision > maxPrecision {
				errs = append(errs, &PrecisionTooLargeError{FieldIndex: i, Value: *kind.Precision, Max: maxPrecision})
			}
			if ty.Kind != types.KindFloat {
				errs = append(errs, &ReplacementTypeError{
					FieldIndex: i,
					Message:    fmt.Sprintf("rational format replacement cannot be used for type `%s`", ty),
				})
			}
		}
	}
	return errs
}

// Render is a best-effort, non-diagnostic renderer that substitutes args
// into raw's replacement fields in order; it is not part of the semantic
// analysis contract.
func Render(f *Format, raw string, args []string) string {
	var b strings.Builder
	argIdx := 0
	i := 0
	for i < len(raw) {
		if raw[i] == '{' && i+1 < len(raw) && raw[i+1] == '{' {
			b.WriteByte('{')
			i += 2
			continue
		}
		if raw[i] == '}' && i+1 < len(raw) && raw[i+1] == '}' {
			b.WriteByte('}')
			i += 2
			continue
		}
		if raw[i] == '{' {
			end := strings.IndexByte(raw[i:], '}')
			if end < 0 {
				break
			}
			if argIdx < len(args) {
				b.WriteString(args[argIdx])
				argIdx++
			}
			i += end + 1
			continue
		}
		b.WriteByte(raw[i])
		i++
	}
	return b.String()
}
