// Package lexer defines the token set for the FPP surface syntax consumed
// by internal/core/parser. Token order matters: more specific patterns and
// keywords must come before the generic Ident rule.
package lexer

import "github.com/alecthomas/participle/v2/lexer"

// FPPLexer is the participle regex-based lexer for FPP source files.
var FPPLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "CommentBlock", Pattern: `/\*([^*]|\*[^/])*\*/`},
	{Name: "Comment", Pattern: `//[^\n]*`},

	// Keywords (must come before Ident).
	{Name: "Include", Pattern: `\binclude\b`},
	{Name: "Module", Pattern: `\bmodule\b`},
	{Name: "Component", Pattern: `\bcomponent\b`},
	{Name: "Instance", Pattern: `\binstance\b`},
	{Name: "Port", Pattern: `\bport\b`},
	{Name: "Interface", Pattern: `\binterface\b`},
	{Name: "Machine", Pattern: `\bmachine\b`},
	{Name: "State", Pattern: `\bstate\b`},
	{Name: "Topology", Pattern: `\btopology\b`},
	{Name: "Connections", Pattern: `\bconnections\b`},
	{Name: "Array", Pattern: `\barray\b`},
	{Name: "Struct", Pattern: `\bstruct\b`},
	{Name: "Enum", Pattern: `\benum\b`},
	{Name: "Constant", Pattern: `\bconstant\b`},
	{Name: "Type", Pattern: `\btype\b`},
	{Name: "Default", Pattern: `\bdefault\b`},
	{Name: "Format", Pattern: `\bformat\b`},
	{Name: "In", Pattern: `\bin\b`},
	{Name: "Out", Pattern: `\bout\b`},
	{Name: "Sync", Pattern: `\bsync\b`},
	{Name: "Async", Pattern: `\basync\b`},
	{Name: "Guarded", Pattern: `\bguarded\b`},
	{Name: "Bool", Pattern: `\bbool\b`},
	{Name: "StringKw", Pattern: `\bstring\b`},
	{Name: "I8", Pattern: `\bI8\b`},
	{Name: "U8", Pattern: `\bU8\b`},
	{Name: "I16", Pattern: `\bI16\b`},
	{Name: "U16", Pattern: `\bU16\b`},
	{Name: "I32", Pattern: `\bI32\b`},
	{Name: "U32", Pattern: `\bU32\b`},
	{Name: "I64", Pattern: `\bI64\b`},
	{Name: "U64", Pattern: `\bU64\b`},
	{Name: "F32", Pattern: `\bF32\b`},
	{Name: "F64", Pattern: `\bF64\b`},
	{Name: "True", Pattern: `\btrue\b`},
	{Name: "False", Pattern: `\bfalse\b`},

	// Literals.
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+([eE][-+]?[0-9]+)?`},
	{Name: "Int", Pattern: `0[xX][0-9a-fA-F]+|[0-9]+`},
	{Name: "String", Pattern: `"(?:\\"|\\\\|[^"])*"`},

	// Identifiers.
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	// Delimiters and operators.
	{Name: "Arrow", Pattern: `->`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Minus", Pattern: `-`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Slash", Pattern: `/`},

	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})
