package tree

import (
	"io"
	"iter"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

type avlNodeRef[K infra.OrderedKey] struct {
	tree *avlTree[K]
	idx  nodeIdx
}

func (ref avlNodeRef[K]) Key() K {
	return ref.tree.arena.at(ref.idx).key
}

func (ref avlNodeRef[K]) Height() int {
	return int(ref.tree.height(ref.idx))
}

func (ref avlNodeRef[K]) BalanceFactor() int {
	return int(ref.tree.balanceFactor(ref.idx))
}

func (ref avlNodeRef[K]) Left() AVLNode[K] {
	return ref.tree.view(ref.tree.arena.at(ref.idx).left)
}

func (ref avlNodeRef[K]) Right() AVLNode[K] {
	return ref.tree.view(ref.tree.arena.at(ref.idx).right)
}

func (ref avlNodeRef[K]) Parent() AVLNode[K] {
	return ref.tree.view(ref.tree.arena.at(ref.idx).parent)
}

// avlTree keeps |height(left) - height(right)| <= 1 at every node.
// A node's tag is its height, a leaf is 1 and the nil slot is 0.
type avlTree[K infra.OrderedKey] struct {
	arena    *nodeArena[K, int32]
	root     nodeIdx
	count    int64
	capacity int
	kcmp     infra.OrderedKeyComparator[K]
	isDesc   bool
	allowDup bool
}

var _ AVLTree[int] = (*avlTree[int])(nil)

func (tree *avlTree[K]) view(idx nodeIdx) AVLNode[K] {
	if idx == nilIdx {
		return nil
	}
	return avlNodeRef[K]{tree: tree, idx: idx}
}

func (tree *avlTree[K]) height(x nodeIdx) int32 {
	return tree.arena.at(x).tag
}

func (tree *avlTree[K]) updateHeight(x nodeIdx) {
	n := tree.arena.ref(x)
	n.tag = 1 + max(tree.height(n.left), tree.height(n.right))
}

func (tree *avlTree[K]) balanceFactor(x nodeIdx) int32 {
	n := tree.arena.at(x)
	return tree.height(n.left) - tree.height(n.right)
}

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   L   Y    ============>    X   Yr
		  / \                   / \
		Yl   Yr                L   Yl
*/
func (tree *avlTree[K]) leftRotate(x nodeIdx) nodeIdx {
	if x == nilIdx || tree.arena.at(x).right == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[avltree] left rotate node x is nil or x.right is nil"))
	}

	xn := tree.arena.at(x)
	p, y := xn.parent, xn.right
	yn := tree.arena.at(y)
	xn.right, yn.left = yn.left, x
	tree.arena.setParent(xn.right, x)
	xn.parent = y
	tree.arena.replaceChild(p, x, y, &tree.root)

	tree.updateHeight(x)
	tree.updateHeight(y)
	return y
}

/*
		   |                         |
		   X                         Y
		  / \   rightRotate(X)      / \
		 Y   R  ============>     Yl   X
		/ \                           / \
	  Yl   Yr                       Yr   R
*/
func (tree *avlTree[K]) rightRotate(x nodeIdx) nodeIdx {
	if x == nilIdx || tree.arena.at(x).left == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[avltree] right rotate node x is nil or x.left is nil"))
	}

	xn := tree.arena.at(x)
	p, y := xn.parent, xn.left
	yn := tree.arena.at(y)
	xn.left, yn.right = yn.right, x
	tree.arena.setParent(xn.left, x)
	xn.parent = y
	tree.arena.replaceChild(p, x, y, &tree.root)

	tree.updateHeight(x)
	tree.updateHeight(y)
	return y
}

/*
rebalance walks from x up to the root. Each ancestor refreshes its
height and is rotated back into balance if its factor left [-1, 1].

LL: bf(X) > 1 and bf(X.left) >= 0, rightRotate(X).
LR: bf(X) > 1 and bf(X.left) < 0, leftRotate(X.left) then rightRotate(X).
RR: bf(X) < -1 and bf(X.right) <= 0, leftRotate(X).
RL: bf(X) < -1 and bf(X.right) > 0, rightRotate(X.right) then leftRotate(X).
*/
func (tree *avlTree[K]) rebalance(x nodeIdx) {
	for x != nilIdx {
		tree.updateHeight(x)
		if bf := tree.balanceFactor(x); bf > 1 {
			if l := tree.arena.at(x).left; /* LR */ tree.balanceFactor(l) < 0 {
				tree.leftRotate(l)
			}
			x = tree.rightRotate(x)
		} else if bf < -1 {
			if r := tree.arena.at(x).right; /* RL */ tree.balanceFactor(r) > 0 {
				tree.rightRotate(r)
			}
			x = tree.leftRotate(x)
		}
		x = tree.arena.at(x).parent
	}
}

func (tree *avlTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *avlTree[K]) IsEmpty() bool {
	return tree.root == nilIdx
}

func (tree *avlTree[K]) Root() AVLNode[K] {
	return tree.view(tree.root)
}

// Height is read from the root tag, O(1).
func (tree *avlTree[K]) Height() int {
	return int(tree.height(tree.root))
}

func (tree *avlTree[K]) LeafCount() int {
	return leafCount(tree.arena, tree.root)
}

func (tree *avlTree[K]) Insert(key K) bool {
	if tree.root == nilIdx {
		tree.root = tree.arena.allocate(key, 1)
		atomic.AddInt64(&tree.count, 1)
		return true
	}

	var (
		x, y = tree.root, nilIdx
		res  int64
	)
	for x != nilIdx {
		y = x
		res = tree.kcmp(key, tree.arena.at(x).key)
		if /* equal */ res == 0 && !tree.allowDup {
			return false
		} else /* less */ if res < 0 {
			x = tree.arena.at(x).left
		} else /* greater or duplicate */ {
			x = tree.arena.at(x).right
		}
	}

	z := tree.arena.allocate(key, 1)
	tree.arena.ref(z).parent = y
	if yn := tree.arena.ref(y); res < 0 {
		yn.left = z
	} else {
		yn.right = z
	}
	atomic.AddInt64(&tree.count, 1)
	tree.rebalance(y)
	return true
}

// Delete removes one element matching key. A node with two children
// takes its in-order successor key and the successor is removed instead.
func (tree *avlTree[K]) Delete(key K) bool {
	z := tree.arena.search(tree.root, key, tree.kcmp)
	if z == nilIdx {
		return false
	}

	if zn := tree.arena.at(z); zn.left != nilIdx && zn.right != nilIdx {
		y := tree.arena.minimum(zn.right)
		zn.key = tree.arena.at(y).key
		z = y
	}

	zn := tree.arena.at(z)
	child := zn.left
	if child == nilIdx {
		child = zn.right
	}
	p := zn.parent
	tree.arena.replaceChild(p, z, child, &tree.root)
	tree.arena.recycle(z)
	atomic.AddInt64(&tree.count, -1)
	tree.rebalance(p)
	return true
}

func (tree *avlTree[K]) Search(key K) AVLNode[K] {
	return tree.view(tree.arena.search(tree.root, key, tree.kcmp))
}

func (tree *avlTree[K]) Contains(key K) bool {
	return tree.arena.search(tree.root, key, tree.kcmp) != nilIdx
}

// Update replaces oldKey by newKey. Nothing changes if oldKey is
// absent or newKey is present while duplicates are rejected.
func (tree *avlTree[K]) Update(oldKey, newKey K) bool {
	if !tree.Contains(oldKey) {
		return false
	}
	if tree.kcmp(oldKey, newKey) == 0 {
		return true
	}
	if !tree.allowDup && tree.Contains(newKey) {
		return false
	}
	tree.Delete(oldKey)
	return tree.Insert(newKey)
}

func (tree *avlTree[K]) InOrder() iter.Seq[K] {
	return inOrderSeq(tree.arena, tree.root)
}

func (tree *avlTree[K]) PreOrder() iter.Seq[K] {
	return preOrderSeq(tree.arena, tree.root)
}

func (tree *avlTree[K]) PostOrder() iter.Seq[K] {
	return postOrderSeq(tree.arena, tree.root)
}

func (tree *avlTree[K]) Foreach(action func(idx int64, height int, key K) bool) {
	foreachInOrder(tree.arena, tree.root, tree.Len(), func(idx int64, n *node[K, int32]) bool {
		return action(idx, int(n.tag), n.key)
	})
}

func (tree *avlTree[K]) Dump(w io.Writer) error {
	return dumpAVL(w, tree.arena, tree.root)
}

func (tree *avlTree[K]) Release() {
	tree.arena.reset()
	tree.root = nilIdx
	atomic.StoreInt64(&tree.count, 0)
}

type AVLTreeOpt[K infra.OrderedKey] func(*avlTree[K])

func WithAVLTreeDesc[K infra.OrderedKey]() AVLTreeOpt[K] {
	return func(tree *avlTree[K]) {
		tree.isDesc = true
	}
}

// WithAVLTreeDuplicateKeys stores equal keys as distinct elements.
// An equal key descends to the right on insertion.
func WithAVLTreeDuplicateKeys[K infra.OrderedKey]() AVLTreeOpt[K] {
	return func(tree *avlTree[K]) {
		tree.allowDup = true
	}
}

func WithAVLTreeCapacity[K infra.OrderedKey](capacity int) AVLTreeOpt[K] {
	return func(tree *avlTree[K]) {
		tree.capacity = capacity
	}
}

func NewAVLTree[K infra.OrderedKey](opts ...AVLTreeOpt[K]) AVLTree[K] {
	tree := &avlTree[K]{
		root:     nilIdx,
		count:    0,
		isDesc:   false,
		allowDup: false,
	}

	for _, o := range opts {
		o(tree)
	}
	tree.kcmp = infra.NewOrderedKeyComparator[K](tree.isDesc)
	tree.arena = newNodeArena[K, int32](tree.capacity)
	return tree
}
