package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignNodeIDs(t *testing.T) {
	t.Run("assigns a distinct, non-zero ID to every embedded Node", func(t *testing.T) {
		schema := &Schema{
			Members: []*Member{
				{
					Module: &ModuleDecl{
						Name: "M",
						Members: []*Member{
							{AbsType: &AbsTypeDecl{Name: "A"}},
							{AbsType: &AbsTypeDecl{Name: "B"}},
						},
					},
				},
			},
		}

		AssignNodeIDs(schema, newIDAllocator())

		module := schema.Members[0].Module
		a := schema.Members[0].Module.Members[0].AbsType
		b := schema.Members[0].Module.Members[1].AbsType

		require.NotZero(t, module.GetNodeID())
		require.NotZero(t, a.GetNodeID())
		require.NotZero(t, b.GetNodeID())

		ids := map[NodeID]bool{module.GetNodeID(): true, a.GetNodeID(): true, b.GetNodeID(): true}
		assert.Len(t, ids, 3, "every node gets its own identity even when structurally identical")
	})

	t.Run("structurally identical declarations still get distinct IDs", func(t *testing.T) {
		schema := &Schema{
			Members: []*Member{
				{AbsType: &AbsTypeDecl{Name: "Same"}},
				{AbsType: &AbsTypeDecl{Name: "Same"}},
			},
		}

		AssignNodeIDs(schema, newIDAllocator())

		first := schema.Members[0].AbsType.GetNodeID()
		second := schema.Members[1].AbsType.GetNodeID()
		assert.NotEqual(t, first, second)
	})

	t.Run("IDs stay unique across multiple files sharing one allocator", func(t *testing.T) {
		alloc := newIDAllocator()

		schema1 := &Schema{Members: []*Member{{AbsType: &AbsTypeDecl{Name: "A"}}}}
		schema2 := &Schema{Members: []*Member{{AbsType: &AbsTypeDecl{Name: "B"}}}}

		AssignNodeIDs(schema1, alloc)
		AssignNodeIDs(schema2, alloc)

		assert.NotEqual(t, schema1.Members[0].AbsType.GetNodeID(), schema2.Members[0].AbsType.GetNodeID())
	})

	t.Run("a nil pointer field is left untouched", func(t *testing.T) {
		schema := &Schema{Members: []*Member{{AbsType: &AbsTypeDecl{Name: "A"}}}}
		assert.NotPanics(t, func() { AssignNodeIDs(schema, newIDAllocator()) })
		assert.Nil(t, schema.Members[0].Module)
	})
}

func TestNewIDAllocator(t *testing.T) {
	t.Run("hands out increasing IDs starting from 1", func(t *testing.T) {
		alloc := newIDAllocator()
		assert.Equal(t, NodeID(1), alloc.alloc())
		assert.Equal(t, NodeID(2), alloc.alloc())
	})
}
