package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFile_LineCol(t *testing.T) {
	t.Run("resolves offsets across multiple lines", func(t *testing.T) {
		f := NewSourceFile("test.fpp", "abc\ndef\nghi", nil)

		line, col := f.LineCol(0)
		assert.Equal(t, 1, line)
		assert.Equal(t, 1, col)

		line, col = f.LineCol(4)
		assert.Equal(t, 2, line)
		assert.Equal(t, 1, col)

		line, col = f.LineCol(9)
		assert.Equal(t, 3, line)
		assert.Equal(t, 2, col)
	})

	t.Run("a file with no newlines is entirely line 1", func(t *testing.T) {
		f := NewSourceFile("test.fpp", "abcdef", nil)
		line, col := f.LineCol(3)
		assert.Equal(t, 1, line)
		assert.Equal(t, 4, col)
	})
}

func TestSpan_Chain(t *testing.T) {
	t.Run("a root span chains to itself alone", func(t *testing.T) {
		root := &Span{File: "root.fpp"}
		chain := root.Chain()
		require.Len(t, chain, 1)
		assert.Same(t, root, chain[0])
	})

	t.Run("an included span chains back through every including file", func(t *testing.T) {
		root := &Span{File: "root.fpp"}
		mid := &Span{File: "mid.fpp", IncludedFrom: root}
		leaf := &Span{File: "leaf.fpp", IncludedFrom: mid}

		chain := leaf.Chain()
		require.Len(t, chain, 3)
		assert.Equal(t, "leaf.fpp", chain[0].File)
		assert.Equal(t, "mid.fpp", chain[1].File)
		assert.Equal(t, "root.fpp", chain[2].File)
	})
}

func TestJoinQualifiers(t *testing.T) {
	t.Run("a bare name needs no qualifier prefix", func(t *testing.T) {
		assert.Equal(t, "Name", joinQualifiers(nil, "Name"))
	})

	t.Run("qualifiers are dotted in order before the name", func(t *testing.T) {
		assert.Equal(t, "A.B.Name", joinQualifiers([]string{"A", "B"}, "Name"))
	})
}
