// Package parser builds the FPP source text lexed by internal/core/lexer
// into an internal/core/ast.Schema. It is the "external collaborator" that
// the semantic analysis core is built against (spec.md §1): nothing here is
// incremental or recovers from syntax errors beyond failing the current
// file's parse.
package parser

import (
	"github.com/alecthomas/participle/v2"

	"github.com/fpp-community/fppsema/internal/core/ast"
	fpplexer "github.com/fpp-community/fppsema/internal/core/lexer"
)

// Error is an alias for participle.Error.
type Error = participle.Error

// Parser is an alias for participle.Parser with ast.Schema as the root node.
type Parser = participle.Parser[ast.Schema]

// Instance is a pre-built parser instance for FPP schema files.
var Instance = participle.MustBuild[ast.Schema](
	participle.Lexer(fpplexer.FPPLexer),
	participle.Elide("Newline", "Whitespace", "Comment", "CommentBlock"),
	participle.UseLookahead(8),
)

// IDAllocator hands out stable NodeIDs across every file parsed within one
// analysis run, so that identity survives include expansion.
type IDAllocator = ast.IDAllocator

// NewIDAllocator constructs an allocator shared across a whole run.
func NewIDAllocator() *IDAllocator {
	return ast.NewIDAllocator()
}

// ParseString parses source text attributed to filename into a Schema and
// assigns it fresh NodeIDs from alloc.
func ParseString(filename, source string, alloc *IDAllocator) (*ast.Schema, error) {
	schema, err := Instance.ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	ast.AssignNodeIDs(schema, alloc)
	return schema, nil
}
