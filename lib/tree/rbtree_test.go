package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/workload"
)

type rbCheckData struct {
	color RBColor
	key   uint64
}

func rbtreeExpect(t *testing.T, tree RBTree[uint64], expected []rbCheckData) {
	t.Helper()
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
		require.Equal(t, expected[idx].color, color)
		require.Equal(t, expected[idx].key, key)
		return true
	})
	require.NoError(t, RBTreeValidate[uint64](tree))
}

func newTestRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) *rbTree[K] {
	return NewRBTree[K](opts...).(*rbTree[K])
}

func TestNilNode(t *testing.T) {
	tree := NewRBTree[uint64]()
	var nilNode RBNode[uint64] = tree.Root()
	require.True(t, nilNode == nil)
	require.Nil(t, tree.Search(1))

	tree.Insert(1)
	root := tree.Root()
	require.NotNil(t, root)
	require.Nil(t, root.Left())
	require.Nil(t, root.Right())
	require.Nil(t, root.Parent())
	require.Equal(t, root, tree.Search(1))
}

func TestRbtreeLeftAndRightRotate_Succ(t *testing.T) {
	tree := newTestRBTree[uint64]()

	require.True(t, tree.Insert(52))
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 52},
	})

	require.True(t, tree.Insert(47))
	rbtreeExpect(t, tree, []rbCheckData{
		{Red, 47}, {Black, 52},
	})

	// Outer case, single rotation.
	require.True(t, tree.Insert(3))
	rbtreeExpect(t, tree, []rbCheckData{
		{Red, 3}, {Black, 47}, {Red, 52},
	})

	// Red uncle, recolor.
	require.True(t, tree.Insert(35))
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// Inner case, atomic double rotation.
	require.True(t, tree.Insert(24))
	rbtreeExpect(t, tree, []rbCheckData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})
	require.Equal(t, uint64(24), tree.Root().Left().Key())

	// remove

	// Two children, the successor 35 takes its place.
	require.True(t, tree.Delete(24))
	rbtreeExpect(t, tree, []rbCheckData{
		{Red, 3},
		{Black, 35},
		{Black, 47},
		{Black, 52},
	})

	// Root with two children, the black leaf successor is rebalanced.
	require.True(t, tree.Delete(47))
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 3},
		{Black, 35},
		{Black, 52},
	})
	require.Equal(t, uint64(35), tree.Root().Key())

	require.True(t, tree.Delete(52))
	rbtreeExpect(t, tree, []rbCheckData{
		{Red, 3}, {Black, 35},
	})

	require.True(t, tree.Delete(3))
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 35},
	})

	require.True(t, tree.Delete(35))
	require.Equal(t, int64(0), tree.Len())
	require.True(t, tree.IsEmpty())
	require.Zero(t, tree.arena.live())
	require.False(t, tree.Delete(35))
}

func TestRbtree_RemoveMin(t *testing.T) {
	tree := newTestRBTree[uint64]()

	for _, key := range []uint64{52, 47, 3, 35, 24} {
		require.True(t, tree.Insert(key))
	}
	rbtreeExpect(t, tree, []rbCheckData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	removeMin := func() uint64 {
		_min := tree.arena.at(tree.arena.minimum(tree.root)).key
		require.True(t, tree.Delete(_min))
		return _min
	}

	require.Equal(t, uint64(3), removeMin())
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// Single red child spliced and painted black.
	require.Equal(t, uint64(24), removeMin())
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 35},
		{Black, 47},
		{Black, 52},
	})

	require.Equal(t, uint64(35), removeMin())
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 47}, {Red, 52},
	})

	require.Equal(t, uint64(47), removeMin())
	rbtreeExpect(t, tree, []rbCheckData{
		{Black, 52},
	})

	require.Equal(t, uint64(52), removeMin())
	require.Equal(t, int64(0), tree.Len())
}

func TestRBTree_Scenarios(t *testing.T) {
	t.Run("ascending triple", func(tt *testing.T) {
		tree := NewRBTree[int]()
		for _, key := range []int{10, 20, 30} {
			require.True(tt, tree.Insert(key))
		}
		require.True(tt, tree.Validate())
		root := tree.Root()
		require.Equal(tt, 20, root.Key())
		require.Equal(tt, Black, root.Color())
		require.Equal(tt, 10, root.Left().Key())
		require.Equal(tt, Red, root.Left().Color())
		require.Equal(tt, 30, root.Right().Key())
		require.Equal(tt, Red, root.Right().Color())
		require.Equal(tt, 2, tree.Height())
		require.Equal(tt, 2, tree.LeafCount())
	})
	t.Run("delete inner nodes", func(tt *testing.T) {
		tree := NewRBTree[int]()
		for _, key := range []int{5, 3, 8, 1, 4, 7, 9} {
			require.True(tt, tree.Insert(key))
		}
		require.True(tt, tree.Delete(3))
		require.True(tt, tree.Validate())
		require.True(tt, tree.Delete(8))
		require.True(tt, tree.Validate())
		require.Equal(tt, []int{1, 4, 5, 7, 9}, slices.Collect(tree.InOrder()))
		require.False(tt, tree.Contains(3))
		require.False(tt, tree.Contains(8))
	})
	t.Run("empty lookup", func(tt *testing.T) {
		tree := NewRBTree[int]()
		require.False(tt, tree.Contains(42))
		require.Nil(tt, tree.Search(42))
		require.False(tt, tree.Delete(42))
		require.True(tt, tree.IsEmpty())
		require.Equal(tt, 0, tree.Height())
		require.Equal(tt, 0, tree.LeafCount())
		require.True(tt, tree.Validate())
	})
}

func TestRBTree_DeleteAbsent(t *testing.T) {
	tree := newTestRBTree[uint64]()
	for _, key := range []uint64{5, 3, 8, 1, 4, 7, 9} {
		require.True(t, tree.Insert(key))
	}
	snapshot := func() ([]uint64, []uint64, []rbCheckData, int, int, int64) {
		tags := make([]rbCheckData, 0, tree.Len())
		tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
			tags = append(tags, rbCheckData{color, key})
			return true
		})
		return slices.Collect(tree.PreOrder()), slices.Collect(tree.InOrder()), tags,
			tree.Height(), tree.LeafCount(), tree.Len()
	}
	pre, in, tags, height, leaves, size := snapshot()

	for _, key := range []uint64{0, 2, 6, 10} {
		require.False(t, tree.Delete(key))
		gotPre, gotIn, gotTags, gotHeight, gotLeaves, gotSize := snapshot()
		require.Equal(t, pre, gotPre)
		require.Equal(t, in, gotIn)
		require.Equal(t, tags, gotTags)
		require.Equal(t, height, gotHeight)
		require.Equal(t, leaves, gotLeaves)
		require.Equal(t, size, gotSize)
		require.NoError(t, RBTreeValidate[uint64](tree))
	}
	require.Equal(t, []uint64{1, 3, 4, 5, 7, 8, 9}, in)
	require.Equal(t, 7, tree.arena.live())
}

func TestRBTree_DuplicateInsert(t *testing.T) {
	tree := NewRBTree[int]()
	for _, key := range []int{8, 4, 12, 2, 6} {
		require.True(t, tree.Insert(key))
	}
	before := slices.Collect(tree.InOrder())
	height, leaves := tree.Height(), tree.LeafCount()

	require.False(t, tree.Insert(6))
	require.Equal(t, before, slices.Collect(tree.InOrder()))
	require.Equal(t, height, tree.Height())
	require.Equal(t, leaves, tree.LeafCount())
	require.Equal(t, int64(5), tree.Len())
}

func TestRBTree_Update(t *testing.T) {
	tree := NewRBTree[string]()
	for _, key := range []string{"m", "c", "x", "a"} {
		require.True(t, tree.Insert(key))
	}

	require.True(t, tree.Update("c", "d"))
	require.Equal(t, []string{"a", "d", "m", "x"}, slices.Collect(tree.InOrder()))

	// absent old key
	require.False(t, tree.Update("q", "r"))
	// present new key, nothing removed
	require.False(t, tree.Update("a", "x"))
	require.Equal(t, []string{"a", "d", "m", "x"}, slices.Collect(tree.InOrder()))

	require.True(t, tree.Update("m", "m"))
	require.True(t, tree.Validate())
}

func TestRBTree_ArenaReuse(t *testing.T) {
	tree := newTestRBTree[int](WithRBTreeCapacity[int](64))
	for i := 0; i < 64; i++ {
		require.True(t, tree.Insert(i))
	}
	slots := len(tree.arena.nodes)
	for i := 0; i < 64; i += 2 {
		require.True(t, tree.Delete(i))
	}
	require.Equal(t, 32, tree.arena.live())
	for i := 100; i < 132; i++ {
		require.True(t, tree.Insert(i))
	}
	require.Equal(t, slots, len(tree.arena.nodes))
	require.Equal(t, 64, tree.arena.live())
	require.Equal(t, node[int, RBColor]{}, tree.arena.nodes[nilIdx])
	require.True(t, tree.Validate())
}

func TestRBTree_RemoveRebalanceAssertion(t *testing.T) {
	tree := newTestRBTree[int]()
	for _, key := range []int{20, 10, 30} {
		require.True(t, tree.Insert(key))
	}
	// Forge a red parent with a red sibling.
	x := tree.arena.search(tree.root, 10, tree.kcmp)
	tree.arena.ref(tree.root).tag = Red
	require.Panics(t, func() {
		tree.removeRebalance(x)
	})
}

func TestRBTree_RotateAssertion(t *testing.T) {
	tree := newTestRBTree[int]()
	require.True(t, tree.Insert(1))
	require.Panics(t, func() {
		tree.leftRotate(tree.root)
	})
	require.Panics(t, func() {
		tree.rightRotate(nilIdx)
	})
	require.Panics(t, func() {
		tree.rotateLeftRight(tree.root)
	})
}

func rbtreeRandomInsertAndRemoveSequentialNumberRunCore(t *testing.T, isDesc bool) {
	total := uint64(1000)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	opts := make([]RBTreeOpt[uint64], 0, 1)
	if isDesc {
		opts = append(opts, WithRBTreeDesc[uint64]())
	}
	tree := NewRBTree[uint64](opts...)

	at := func(idx int64, total uint64) uint64 {
		if isDesc {
			return total - 1 - uint64(idx)
		}
		return uint64(idx)
	}

	for i := uint64(0); i < insertTotal; i++ {
		require.True(t, tree.Insert(i))
		require.NoError(t, RBTreeValidate[uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
		require.Equal(t, at(idx, insertTotal), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		require.True(t, tree.Insert(i))
		require.NoError(t, RBTreeValidate[uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
		require.Equal(t, at(idx, insertTotal+removeTotal), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		if i == 892 {
			x := tree.Search(i)
			require.Equal(t, uint64(892), x.Key())
		}
		require.True(t, tree.Delete(i))
		require.NoError(t, RBTreeValidate[uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
		require.Equal(t, at(idx, insertTotal), key)
		return true
	})
}

func TestRbtreeRandomInsertAndRemove_SequentialNumber(t *testing.T) {
	type testcase struct {
		name   string
		isDesc bool
	}
	testcases := []testcase{
		{
			name: "asc",
		},
		{
			name:   "desc",
			isDesc: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveSequentialNumberRunCore(tt, tc.isDesc)
		})
	}
}

func TestRBTreeRandomInsertAndRemove_SequentialNumber_Release(t *testing.T) {
	insertTotal := uint64(100_000)

	tree := NewRBTree[uint64]()

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		tree.Insert(i)
		if i%10000 == rand {
			require.NoError(t, RBTreeValidate[uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.True(t, tree.Insert(7))
	require.Equal(t, int64(1), tree.Len())
}

func rbtreeRandomInsertAndRemove_WorkloadRunCore(t *testing.T, kind workload.Kind, total int, violationCheck bool) {
	insertTotal := int(float64(total) * 0.8)

	keys := workload.Keys(kind, total)
	insertElements, removeElements := keys[:insertTotal], keys[insertTotal:]

	tree := NewRBTree[int](WithRBTreeCapacity[int](total))
	for _, key := range keys {
		require.True(t, tree.Insert(key))
		if violationCheck {
			require.NoError(t, RBTreeValidate[int](tree))
		}
	}
	require.NoError(t, RBTreeValidate[int](tree))

	for _, key := range removeElements {
		require.True(t, tree.Delete(key))
		if violationCheck {
			require.NoError(t, RBTreeValidate[int](tree))
		}
	}

	sorted := slices.Clone(insertElements)
	sort.Ints(sorted)
	tree.Foreach(func(idx int64, color RBColor, key int) bool {
		require.Equal(t, sorted[idx], key)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
	require.NoError(t, RBTreeValidate[int](tree))
}

func TestRbtreeRandomInsertAndRemove_Workloads(t *testing.T) {
	type testcase struct {
		name           string
		kind           workload.Kind
		total          int
		violationCheck bool
	}
	testcases := make([]testcase, 0, 2*len(workload.Kinds()))
	for _, kind := range workload.Kinds() {
		testcases = append(testcases,
			testcase{
				name:  kind.String() + " 200000",
				kind:  kind,
				total: 200000,
			},
			testcase{
				name:           "violation check " + kind.String() + " 2000",
				kind:           kind,
				total:          2000,
				violationCheck: true,
			},
		)
	}
	t.Parallel()
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemove_WorkloadRunCore(tt, tc.kind, tc.total, tc.violationCheck)
		})
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(i)
	}
}

func BenchmarkRBTree_SearchLowest(b *testing.B) {
	b.StopTimer()
	size := 130000
	tree := NewRBTree[int](WithRBTreeCapacity[int](size))
	for i := 0; i < size; i++ {
		tree.Insert(i)
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Contains(i % (size / 10))
	}
}
