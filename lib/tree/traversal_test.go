package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTraversal(t *testing.T) {
	type testcase struct {
		name      string
		tree      BalancedTree[int]
		keys      []int
		inOrder   []int
		preOrder  []int
		postOrder []int
		height    int
		leaves    int
	}
	testcases := []testcase{
		{
			name:      "avl",
			tree:      NewAVLTree[int](),
			keys:      []int{1, 2, 3, 4, 5, 6, 7},
			inOrder:   []int{1, 2, 3, 4, 5, 6, 7},
			preOrder:  []int{4, 2, 1, 3, 6, 5, 7},
			postOrder: []int{1, 3, 2, 5, 7, 6, 4},
			height:    3,
			leaves:    4,
		},
		{
			name:      "rb",
			tree:      NewRBTree[int](),
			keys:      []int{5, 3, 8, 1},
			inOrder:   []int{1, 3, 5, 8},
			preOrder:  []int{5, 3, 1, 8},
			postOrder: []int{1, 3, 8, 5},
			height:    3,
			leaves:    2,
		},
		{
			name:      "empty",
			tree:      NewRBTree[int](),
			inOrder:   nil,
			preOrder:  nil,
			postOrder: nil,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			for _, key := range tc.keys {
				require.True(tt, tc.tree.Insert(key))
			}
			require.Equal(tt, tc.inOrder, slices.Collect(tc.tree.InOrder()))
			require.Equal(tt, tc.preOrder, slices.Collect(tc.tree.PreOrder()))
			require.Equal(tt, tc.postOrder, slices.Collect(tc.tree.PostOrder()))
			require.Equal(tt, tc.height, tc.tree.Height())
			require.Equal(tt, tc.leaves, tc.tree.LeafCount())
		})
	}
}

func TestTraversal_Break(t *testing.T) {
	tree := NewAVLTree[int]()
	for i := 0; i < 100; i++ {
		tree.Insert(i)
	}

	seqs := map[string]func() []int{
		"in": func() []int {
			res := make([]int, 0, 3)
			for key := range tree.InOrder() {
				if len(res) == 3 {
					break
				}
				res = append(res, key)
			}
			return res
		},
		"pre": func() []int {
			res := make([]int, 0, 3)
			for key := range tree.PreOrder() {
				if len(res) == 3 {
					break
				}
				res = append(res, key)
			}
			return res
		},
		"post": func() []int {
			res := make([]int, 0, 3)
			for key := range tree.PostOrder() {
				if len(res) == 3 {
					break
				}
				res = append(res, key)
			}
			return res
		},
	}
	for name, fn := range seqs {
		t.Run(name, func(tt *testing.T) {
			require.Len(tt, fn(), 3)
		})
	}
	require.Equal(t, []int{0, 1, 2}, seqs["in"]())

	// Each range restarts from the root.
	first := slices.Collect(tree.InOrder())
	second := slices.Collect(tree.InOrder())
	require.Equal(t, first, second)
	require.Len(t, first, 100)
}

func TestLevelHeight(t *testing.T) {
	tree := newTestAVLTree[int]()
	for i := 0; i < 1000; i++ {
		tree.Insert(i)
		require.Equal(t, tree.Height(), levelHeight(tree.arena, tree.root))
	}
}
