package tree

import (
	"io"
	"iter"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNodeRef[K infra.OrderedKey] struct {
	tree *rbTree[K]
	idx  nodeIdx
}

func (ref rbNodeRef[K]) Key() K {
	return ref.tree.arena.at(ref.idx).key
}

func (ref rbNodeRef[K]) Color() RBColor {
	return ref.tree.arena.at(ref.idx).tag
}

func (ref rbNodeRef[K]) Left() RBNode[K] {
	return ref.tree.view(ref.tree.arena.at(ref.idx).left)
}

func (ref rbNodeRef[K]) Right() RBNode[K] {
	return ref.tree.view(ref.tree.arena.at(ref.idx).right)
}

func (ref rbNodeRef[K]) Parent() RBNode[K] {
	return ref.tree.view(ref.tree.arena.at(ref.idx).parent)
}

// rbRotation names the rotation a remove fixup step applies, seen from
// the double black node X. Outer rotates the parent P toward X,
// inner rotates the sibling S away from X.
type rbRotation uint8

const (
	rbLeftInner  rbRotation = iota // X is left, rightRotate(S)
	rbLeftOuter                    // X is left, leftRotate(P)
	rbRightInner                   // X is right, leftRotate(S)
	rbRightOuter                   // X is right, rightRotate(P)
)

func fixupRotations(dir RBDirection) (outer, inner rbRotation) {
	switch dir {
	case Left:
		return rbLeftOuter, rbLeftInner
	case Right:
		return rbRightOuter, rbRightInner
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ infra.NewErrorStack("[rbtree] root has no fixup rotation"))
}

type rbTree[K infra.OrderedKey] struct {
	arena    *nodeArena[K, RBColor]
	root     nodeIdx
	count    int64
	capacity int
	kcmp     infra.OrderedKeyComparator[K]
	isDesc   bool
}

var _ RBTree[int] = (*rbTree[int])(nil)

func (tree *rbTree[K]) view(idx nodeIdx) RBNode[K] {
	if idx == nilIdx {
		return nil
	}
	return rbNodeRef[K]{tree: tree, idx: idx}
}

// The nil slot reads as Black.
func (tree *rbTree[K]) isRed(x nodeIdx) bool {
	return tree.arena.at(x).tag == Red
}

func (tree *rbTree[K]) isBlack(x nodeIdx) bool {
	return tree.arena.at(x).tag == Black
}

func (tree *rbTree[K]) color(x nodeIdx) RBColor {
	return tree.arena.at(x).tag
}

func (tree *rbTree[K]) paint(x nodeIdx, color RBColor) {
	tree.arena.ref(x).tag = color
}

func (tree *rbTree[K]) parent(x nodeIdx) nodeIdx {
	return tree.arena.at(x).parent
}

func (tree *rbTree[K]) direction(x nodeIdx) RBDirection {
	if x == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[rbtree] nil leaf node without direction"))
	}

	p := tree.parent(x)
	if p == nilIdx {
		return Root
	}
	if tree.arena.at(p).left == x {
		return Left
	}
	return Right
}

func (tree *rbTree[K]) sibling(x nodeIdx) nodeIdx {
	switch dir := tree.direction(x); dir {
	case Left:
		return tree.arena.at(tree.parent(x)).right
	case Right:
		return tree.arena.at(tree.parent(x)).left
	default:
	}
	return nilIdx
}

// nephews returns the child of S on the same side as X (near) and
// the child on the opposite side (far).
func (tree *rbTree[K]) nephews(s nodeIdx, dir RBDirection) (near, far nodeIdx) {
	sn := tree.arena.at(s)
	if dir == Left {
		return sn.left, sn.right
	}
	return sn.right, sn.left
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// A node with exactly one child has a red child, which is a leaf.
// Hence the height stays within 2*log2(n+1).

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

The rotated-up node S is painted black when it becomes the root.
*/
func (tree *rbTree[K]) leftRotate(x nodeIdx) nodeIdx {
	if x == nilIdx || tree.arena.at(x).right == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[rbtree] left rotate node x is nil or x.right is nil"))
	}

	xn := tree.arena.at(x)
	p, y := xn.parent, xn.right
	yn := tree.arena.at(y)
	xn.right, yn.left = yn.left, x
	tree.arena.setParent(xn.right, x)
	xn.parent = y
	tree.arena.replaceChild(p, x, y, &tree.root)
	if p == nilIdx {
		tree.paint(y, Black)
	}
	return y
}

/*
		   |                         |
		   X                         L
		  / \   rightRotate(X)      / \
		 L   R  ============>     Ld   X
		/ \                           / \
	  Ld   Lc                       Lc   R
*/
func (tree *rbTree[K]) rightRotate(x nodeIdx) nodeIdx {
	if x == nilIdx || tree.arena.at(x).left == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[rbtree] right rotate node x is nil or x.left is nil"))
	}

	xn := tree.arena.at(x)
	p, y := xn.parent, xn.left
	yn := tree.arena.at(y)
	xn.left, yn.right = yn.right, x
	tree.arena.setParent(xn.left, x)
	xn.parent = y
	tree.arena.replaceChild(p, x, y, &tree.root)
	if p == nilIdx {
		tree.paint(y, Black)
	}
	return y
}

/*
rotateLeftRight restructures G, its left child P and P's right child X
in one step. X takes G's place, P and G become its children and the
inner subtrees of X are handed over to P and G.

	      [G]                  [X]
	      / \                  / \
	    <P>  U      ====>    <P> <G>
	    / \                  / \ / \
	   A  <X>               A  B C  U
	      / \
	     B   C
*/
func (tree *rbTree[K]) rotateLeftRight(g nodeIdx) nodeIdx {
	gn := tree.arena.at(g)
	p := gn.left
	if g == nilIdx || p == nilIdx || tree.arena.at(p).right == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[rbtree] left-right rotate without the inner grandchild"))
	}

	pn := tree.arena.at(p)
	x := pn.right
	xn := tree.arena.at(x)
	top := gn.parent

	pn.right = xn.left
	tree.arena.setParent(pn.right, p)
	gn.left = xn.right
	tree.arena.setParent(gn.left, g)

	xn.left, xn.right = p, g
	tree.arena.replaceChild(top, g, x, &tree.root)
	pn.parent, gn.parent = x, x

	xn.tag, pn.tag, gn.tag = Black, Red, Red
	return x
}

/*
rotateRightLeft mirrors rotateLeftRight for P being the right child
of G and X being P's left child.

	    [G]                    [X]
	    / \                    / \
	   U  <P>      ====>     <G> <P>
	      / \                / \ / \
	    <X>  A              U  B C  A
	    / \
	   B   C
*/
func (tree *rbTree[K]) rotateRightLeft(g nodeIdx) nodeIdx {
	gn := tree.arena.at(g)
	p := gn.right
	if g == nilIdx || p == nilIdx || tree.arena.at(p).left == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[rbtree] right-left rotate without the inner grandchild"))
	}

	pn := tree.arena.at(p)
	x := pn.left
	xn := tree.arena.at(x)
	top := gn.parent

	pn.left = xn.right
	tree.arena.setParent(pn.left, p)
	gn.right = xn.left
	tree.arena.setParent(gn.right, g)

	xn.left, xn.right = g, p
	tree.arena.replaceChild(top, g, x, &tree.root)
	pn.parent, gn.parent = x, x

	xn.tag, pn.tag, gn.tag = Black, Red, Red
	return x
}

func (tree *rbTree[K]) rotate(op rbRotation, x nodeIdx) {
	switch op {
	case rbLeftOuter:
		tree.leftRotate(tree.parent(x))
	case rbLeftInner:
		tree.rightRotate(tree.sibling(x))
	case rbRightOuter:
		tree.rightRotate(tree.parent(x))
	case rbRightInner:
		tree.leftRotate(tree.sibling(x))
	default:
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[rbtree] unknown rotation"))
	}
}

func (tree *rbTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K]) IsEmpty() bool {
	return tree.root == nilIdx
}

func (tree *rbTree[K]) Root() RBNode[K] {
	return tree.view(tree.root)
}

// Height counts the BFS levels.
func (tree *rbTree[K]) Height() int {
	return levelHeight(tree.arena, tree.root)
}

func (tree *rbTree[K]) LeafCount() int {
	return leafCount(tree.arena, tree.root)
}

// i1: Empty rbtree, the new node becomes the black root.
// i2: Equal key found, rejected without any change.
func (tree *rbTree[K]) Insert(key K) bool {
	if /* i1 */ tree.root == nilIdx {
		tree.root = tree.arena.allocate(key, Black)
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
		if /* i2 */ res == 0 {
			return false
		} else /* less */ if res < 0 {
			x = tree.arena.at(x).left
		} else /* greater */ {
			x = tree.arena.at(x).right
		}
	}

	z := tree.arena.allocate(key, Red)
	tree.arena.ref(z).parent = y
	if yn := tree.arena.ref(y); res < 0 {
		yn.left = z
	} else {
		yn.right = z
	}
	atomic.AddInt64(&tree.count, 1)
	tree.insertRebalance(z)
	return true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: X is the root. Paint it black.

im2: X's parent P is black. Nothing is violated.

im3: Both the parent P and the uncle U are red, so grandpa G is black.
Push the blackness of G down to P and U. G turns red and may now
violate p3 with its own parent, continue with G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: P is red and U is black, X is on the same side as P.
Rotate G toward U, P becomes the black top and G turns red.

	    [G]                 [P]
	    / \    rotate(G)    / \
	  <P> [U]  ========>  <X> <G>
	  /                         \
	<X>                         [U]

im5: P is red and U is black, X is on the opposite side of P.
X is lifted above both P and G in one restructure. It becomes the
black top with P and G as red children.

	  [G]                  [X]
	  / \                  / \
	<P> [U]   ====>      <P> <G>
	  \                        \
	  <X>                      [U]

After im4 or im5 the subtree top is black, no violation is left.
*/
func (tree *rbTree[K]) insertRebalance(x nodeIdx) {
	for x != nilIdx && tree.isRed(x) {
		if /* im1 */ x == tree.root {
			tree.paint(x, Black)
			return
		}

		p := tree.parent(x)
		if /* im2 */ tree.isBlack(p) {
			return
		}

		g := tree.parent(p)
		if g == nilIdx {
			// impossible run to here
			panic( /* debug assertion */ infra.NewErrorStack("[rbtree] red parent without grandpa"))
		}

		if u := tree.sibling(p); /* im3 */ tree.isRed(u) {
			tree.paint(p, Black)
			tree.paint(u, Black)
			tree.paint(g, Red)
			x = g
			continue
		}

		switch pd, xd := tree.direction(p), tree.direction(x); {
		case /* im4 */ pd == Left && xd == Left:
			x = tree.rightRotate(g)
			tree.paint(x, Black)
			tree.paint(g, Red)
		case /* im4 */ pd == Right && xd == Right:
			x = tree.leftRotate(g)
			tree.paint(x, Black)
			tree.paint(g, Red)
		case /* im5 */ pd == Left && xd == Right:
			x = tree.rotateLeftRight(g)
		case /* im5 */ pd == Right && xd == Left:
			x = tree.rotateRightLeft(g)
		default:
			// impossible run to here
			panic( /* debug assertion */ infra.NewErrorStack("[rbtree] insert violate (im4/im5)"))
		}
	}
}

/*
r1: The only node is the root, the tree becomes empty.

r2: X has left and right children.
The in-order successor S has no left child. Its key is copied into X
and S is removed in X's place (enter r3-r4).

	  |                    |
	  X                    S
	 / \                  / \
	L  ..   copy(S, X)   L  ..
	    |   =========>       |
	    P                    P
	   / \                  / \
	  S  ..                S  ..

r3: X has a single child C. By p4 X is black and C is a red leaf.
Splice C into X's place and paint it black.

r4: (1) X is a red leaf, unlink directly.

r4: (2) X is a black leaf. Removing it shortens its paths by one black
node, so it is rebalanced as a double black node while still linked.
Then it is unlinked.
*/
func (tree *rbTree[K]) removeNode(z nodeIdx) {
	zn := tree.arena.at(z)
	if /* r2 */ zn.left != nilIdx && zn.right != nilIdx {
		y := tree.arena.minimum(zn.right)
		zn.key = tree.arena.at(y).key
		z = y
		zn = tree.arena.at(z)
	}

	child := zn.left
	if child == nilIdx {
		child = zn.right
	}
	if /* r3 */ child != nilIdx {
		tree.arena.replaceChild(zn.parent, z, child, &tree.root)
		tree.paint(child, Black)
		tree.arena.recycle(z)
		return
	}

	if /* r1 */ z == tree.root {
		tree.root = nilIdx
		tree.arena.recycle(z)
		return
	}

	if /* r4 (2) */ tree.isBlack(z) {
		tree.removeRebalance(z)
	}
	tree.arena.replaceChild(tree.parent(z), z, nilIdx, &tree.root)
	tree.arena.recycle(z)
}

func (tree *rbTree[K]) Delete(key K) bool {
	z := tree.arena.search(tree.root, key, tree.kcmp)
	if z == nilIdx {
		return false
	}
	tree.removeNode(z)
	atomic.AddInt64(&tree.count, -1)
	return true
}

/*
X carries an extra black. Its paths are one black node short.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the near nephew, the child of S on the same side as X.
Sd is the far nephew, the child of S on the opposite side.

rm1: The sibling S is red, so P, Sc and Sd are black.
Outer rotation at P, paint S black and P red. X gets the black Sc
as its new sibling, continue.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd] ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are black. Paint S red so P's two sides agree.
If P is red, paint it black and stop. Otherwise P now carries the
extra black, continue with P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black.
Inner rotation at S, paint Sc black and S red. Sc becomes the
sibling with a red far nephew (enter rm4).

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: S is black and Sd is red.
Outer rotation at P. S takes P's color, P and Sd are painted black.
The extra black is absorbed, stop.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K]) removeRebalance(x nodeIdx) {
	for x != tree.root {
		dir := tree.direction(x)
		outer, inner := fixupRotations(dir)
		p, s := tree.parent(x), tree.sibling(x)
		if s == nilIdx {
			// impossible run to here
			panic( /* debug assertion */ infra.NewErrorStack("[rbtree] double black node without sibling"))
		}

		if /* rm1 */ tree.isRed(s) {
			if tree.isRed(p) {
				// impossible run to here
				panic( /* debug assertion */ infra.NewErrorStack("[rbtree] remove violate (rm1), red parent with red sibling"))
			}
			tree.rotate(outer, x)
			tree.paint(s, Black)
			tree.paint(p, Red)
			continue
		}

		sc, sd := tree.nephews(s, dir)
		if /* rm2 */ tree.isBlack(sc) && tree.isBlack(sd) {
			tree.paint(s, Red)
			if tree.isRed(p) {
				tree.paint(p, Black)
				return
			}
			x = p
			continue
		}

		if /* rm3 */ tree.isBlack(sd) {
			tree.rotate(inner, x)
			tree.paint(sc, Black)
			tree.paint(s, Red)
			s, sd = sc, s
		}

		/* rm4 */
		tree.rotate(outer, x)
		tree.paint(s, tree.color(p))
		tree.paint(p, Black)
		tree.paint(sd, Black)
		return
	}
}

func (tree *rbTree[K]) Search(key K) RBNode[K] {
	return tree.view(tree.arena.search(tree.root, key, tree.kcmp))
}

func (tree *rbTree[K]) Contains(key K) bool {
	return tree.arena.search(tree.root, key, tree.kcmp) != nilIdx
}

// Update replaces oldKey by newKey. Nothing changes if oldKey is
// absent or newKey is already present.
func (tree *rbTree[K]) Update(oldKey, newKey K) bool {
	if !tree.Contains(oldKey) {
		return false
	}
	if tree.kcmp(oldKey, newKey) == 0 {
		return true
	}
	if tree.Contains(newKey) {
		return false
	}
	tree.Delete(oldKey)
	return tree.Insert(newKey)
}

func (tree *rbTree[K]) InOrder() iter.Seq[K] {
	return inOrderSeq(tree.arena, tree.root)
}

func (tree *rbTree[K]) PreOrder() iter.Seq[K] {
	return preOrderSeq(tree.arena, tree.root)
}

func (tree *rbTree[K]) PostOrder() iter.Seq[K] {
	return postOrderSeq(tree.arena, tree.root)
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	foreachInOrder(tree.arena, tree.root, tree.Len(), func(idx int64, n *node[K, RBColor]) bool {
		return action(idx, n.tag, n.key)
	})
}

func (tree *rbTree[K]) Validate() bool {
	return RBTreeValidate[K](tree) == nil
}

func (tree *rbTree[K]) Dump(w io.Writer) error {
	return dumpRB(w, tree.arena, tree.root)
}

func (tree *rbTree[K]) Release() {
	tree.arena.reset()
	tree.root = nilIdx
	atomic.StoreInt64(&tree.count, 0)
}

type RBTreeOpt[K infra.OrderedKey] func(*rbTree[K])

func WithRBTreeDesc[K infra.OrderedKey]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isDesc = true
	}
}

func WithRBTreeCapacity[K infra.OrderedKey](capacity int) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.capacity = capacity
	}
}

func NewRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	tree := &rbTree[K]{
		root:   nilIdx,
		count:  0,
		isDesc: false,
	}

	for _, o := range opts {
		o(tree)
	}
	tree.kcmp = infra.NewOrderedKeyComparator[K](tree.isDesc)
	tree.arena = newNodeArena[K, RBColor](tree.capacity)
	return tree
}
