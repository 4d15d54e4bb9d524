package ast

import (
	"strings"
)

// NodeID is an opaque, globally stable identifier for an AST node. Identity
// is by value of this counter, not by source span or syntactic form — two
// distinct declarations that parse to textually identical output still get
// distinct NodeIDs.
type NodeID int64

// idAllocator hands out increasing NodeIDs. A single allocator is shared by
// every file parsed within one analysis run, so NodeIDs stay unique across
// the whole translation unit graph.
type idAllocator struct {
	next NodeID
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: 1}
}

func (a *idAllocator) alloc() NodeID {
	id := a.next
	a.next++
	return id
}

// Node is embedded in every declaration and use node. It carries the node's
// identity and fields for annotation text (comment blocks immediately
// preceding or following the declaration); the parser does not fill the
// annotation fields, so they are always empty.
type Node struct {
	ID             NodeID
	PreAnnotation  []string
	PostAnnotation *string
}

// GetNodeID returns the node's stable identifier.
func (n Node) GetNodeID() NodeID {
	return n.ID
}

// WithNodeID is implemented by any node carrying a Node.
type WithNodeID interface {
	GetNodeID() NodeID
}

// Span is a (file, byte-offset, length) tuple plus an optional pointer to
// the span of the include directive that brought the file in. Chain walks
// the IncludedFrom spans; the include resolver detects cycles from its own
// list of included paths, not from these spans.
type Span struct {
	File         string
	Offset       int
	Length       int
	IncludedFrom *Span
}

// Chain returns the span and every span it was included from, starting with
// this span and ending at the root (non-included) file.
func (s *Span) Chain() []*Span {
	var chain []*Span
	for cur := s; cur != nil; cur = cur.IncludedFrom {
		chain = append(chain, cur)
	}
	return chain
}

// SourceFile is an immutable (uri, content) pair with a derived line index
// used to turn byte offsets into line/column positions. A file brought in by
// an include directive tracks the span of that directive as its Parent.
type SourceFile struct {
	URI     string
	Content string
	Parent  *Span

	lineOffsets []int
}

// NewSourceFile builds a SourceFile and derives its line index.
func NewSourceFile(uri, content string, parent *Span) *SourceFile {
	f := &SourceFile{URI: uri, Content: content, Parent: parent}
	f.lineOffsets = computeLineOffsets(content)
	return f
}

// LineCol converts a byte offset into a 1-indexed (line, column) pair.
func (f *SourceFile) LineCol(offset int) (line, col int) {
	// Binary search over lineOffsets would be more efficient for huge files,
	// but schema files are small and this keeps the code simple.
	line = 1
	lineStart := 0
	for i, lo := range f.lineOffsets {
		if lo > offset {
			break
		}
		line = i + 2
		lineStart = lo
	}
	return line, offset - lineStart + 1
}

func computeLineOffsets(content string) []int {
	var offsets []int
	for i, c := range content {
		if c == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// IncludeContext selects which parser production applies to the members
// parsed from an included file (spec.md §4.1 step 4).
type IncludeContext string

const (
	IncludeContextModule        IncludeContext = "module"
	IncludeContextComponent     IncludeContext = "component"
	IncludeContextTopology      IncludeContext = "topology"
	IncludeContextTlmPacket     IncludeContext = "tlm-packet"
	IncludeContextTlmPacketSet  IncludeContext = "tlm-packet-set"
)

// joinQualifiers renders a dotted qualified name from its parts.
func joinQualifiers(qualifiers []string, name string) string {
	if len(qualifiers) == 0 {
		return name
	}
	return strings.Join(qualifiers, ".") + "." + name
}
