package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeArena(t *testing.T) {
	arena := newNodeArena[int, int32](4)
	require.Equal(t, 0, arena.live())

	a := arena.allocate(1, 1)
	b := arena.allocate(2, 1)
	c := arena.allocate(3, 1)
	require.Equal(t, []nodeIdx{1, 2, 3}, []nodeIdx{a, b, c})
	require.Equal(t, 3, arena.live())

	arena.recycle(b)
	require.Equal(t, 2, arena.live())
	require.Equal(t, node[int, int32]{}, *arena.at(b))

	d := arena.allocate(4, 1)
	require.Equal(t, b, d)
	require.Equal(t, 4, arena.at(d).key)
	require.Equal(t, nilIdx, arena.at(d).parent)
	require.Equal(t, 4, len(arena.nodes))

	arena.reset()
	require.Equal(t, 0, arena.live())
	require.Equal(t, 1, len(arena.nodes))
	require.Equal(t, nodeIdx(1), arena.allocate(5, 1))
}

func TestNodeArena_NilSlot(t *testing.T) {
	arena := newNodeArena[string, RBColor](-1)
	require.Equal(t, Black, arena.at(nilIdx).tag)
	require.Panics(t, func() {
		arena.ref(nilIdx).tag = Red
	})
	require.Panics(t, func() {
		arena.recycle(nilIdx)
	})

	// Absent children never get a parent link.
	arena.setParent(nilIdx, 7)
	require.Equal(t, node[string, RBColor]{}, *arena.at(nilIdx))
}

func TestNodeArena_ReplaceChild(t *testing.T) {
	arena := newNodeArena[int, int32](4)
	root := arena.allocate(2, 2)
	l := arena.allocate(1, 1)
	r := arena.allocate(3, 1)
	arena.ref(root).left, arena.ref(root).right = l, r
	arena.setParent(l, root)
	arena.setParent(r, root)

	x := arena.allocate(4, 1)
	arena.replaceChild(root, r, x, &root)
	require.Equal(t, x, arena.at(root).right)
	require.Equal(t, root, arena.at(x).parent)

	arena.replaceChild(root, l, nilIdx, &root)
	require.Equal(t, nilIdx, arena.at(root).left)

	newRoot := root
	arena.replaceChild(nilIdx, root, x, &newRoot)
	require.Equal(t, x, newRoot)
	require.Equal(t, nilIdx, arena.at(x).parent)

	require.Panics(t, func() {
		arena.replaceChild(root, l, x, &newRoot)
	})

	require.Equal(t, root, arena.minimum(root))
	require.Equal(t, nilIdx, arena.minimum(nilIdx))
}
