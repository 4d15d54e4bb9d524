// Package ast defines the abstract syntax tree consumed by the semantic
// analysis core: source files, spans, node identity, and the declaration
// and expression node types for the schema language.
package ast

import "github.com/alecthomas/participle/v2/lexer"

// Any node in the AST containing a field Pos lexer.Position will be
// automatically populated from the nearest matching token by participle.
//
// Any node containing a field EndPos lexer.Position will be automatically
// populated from the token at the end of the node.
//
// https://github.com/alecthomas/participle/blob/master/README.md#error-reporting

// Position is an alias for the participle lexer position type.
type Position = lexer.Position

// Positions is embedded in every AST node to carry its start and end
// source positions.
type Positions struct {
	Pos    Position
	EndPos Position
}

// GetPositions returns the start and end positions of the node.
func (p Positions) GetPositions() Positions {
	return p
}

// WithPositions is implemented by any node that carries Positions.
type WithPositions interface {
	GetPositions() Positions
}
