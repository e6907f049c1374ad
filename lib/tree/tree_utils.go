package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func isBlack[K infra.OrderedKey](node RBNode[K]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K infra.OrderedKey](node RBNode[K]) bool {
	return node != nil && node.Color() == Red
}

func isRoot[K infra.OrderedKey](node RBNode[K]) bool {
	return node != nil && node.Parent() == nil
}

func blackDepthTo[K infra.OrderedKey](target, to RBNode[K]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

func RootViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return errors.New("rbtree root violation, root has a parent")
	}
	if isRed[K](root) {
		return errors.New("rbtree root violation, root is red")
	}
	return nil
}

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	size := tree.Len()
	aux := tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}

	stack := make([]RBNode[K], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; isRed[K](aux) {
			if (!isRoot[K](aux) && isRed[K](aux.Parent())) ||
				(isRed[K](aux.Left()) || isRed[K](aux.Right())) {
				return fmt.Errorf("rbtree red violation at key %v", aux.Key())
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes owning a nil child.
func bfsLeaves[K infra.OrderedKey](tree RBTree[K]) []RBNode[K] {
	size := tree.Len()
	aux := tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}

	leaves := make([]RBNode[K], 0, size>>1+1)
	queue := make([]RBNode[K], 0, size>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

2-3-4 tree like:

	       <8> --- [13]
		  /  \          \
		 /    \          \
	  <1>-[6] [11]  [14] [15] <16>-[17]

Each nil leaf to root black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	leaves := bfsLeaves[K](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K](leaves[0], tree.Root())
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K](leaves[i], tree.Root()); depth != blackDepth {
			return fmt.Errorf("rbtree black violation at key %v, black depth %d, expected %d",
				leaves[i].Key(), depth, blackDepth)
		}
	}
	return nil
}

// RBTreeValidate combines every red-black rule violation found.
func RBTreeValidate[K infra.OrderedKey](tree RBTree[K]) error {
	return multierr.Combine(
		RootViolationValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
		ParentLinkValidate[K](tree),
	)
}

// AVLBalanceValidate checks every stored height against the children
// and every balance factor against [-1, 1].
func AVLBalanceValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	root := tree.Root()
	if root == nil {
		if tree.Height() != 0 {
			return errors.New("avltree empty tree with a height")
		}
		return nil
	}

	var (
		merr   error
		height = func(node AVLNode[K]) int {
			if node == nil {
				return 0
			}
			return node.Height()
		}
	)
	stack := []AVLNode[K]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		l, r := aux.Left(), aux.Right()
		if expected := 1 + max(height(l), height(r)); aux.Height() != expected {
			merr = multierr.Append(merr, fmt.Errorf("avltree height violation at key %v, height %d, expected %d",
				aux.Key(), aux.Height(), expected))
		}
		if bf := aux.BalanceFactor(); bf < -1 || bf > 1 {
			merr = multierr.Append(merr, fmt.Errorf("avltree balance violation at key %v, balance factor %d",
				aux.Key(), bf))
		}
		if l != nil {
			stack = append(stack, l)
		}
		if r != nil {
			stack = append(stack, r)
		}
	}
	return merr
}

// ParentLinkValidate checks that each child points back to its parent
// and that the root has none.
func ParentLinkValidate[K infra.OrderedKey](tree BalancedTree[K]) error {
	switch t := tree.(type) {
	case AVLTree[K]:
		return parentLinkValidate[AVLNode[K]](t.Root(),
			func(n AVLNode[K]) bool { return n == nil },
			func(n AVLNode[K]) AVLNode[K] { return n.Left() },
			func(n AVLNode[K]) AVLNode[K] { return n.Right() },
			func(n AVLNode[K]) AVLNode[K] { return n.Parent() },
		)
	case RBTree[K]:
		return parentLinkValidate[RBNode[K]](t.Root(),
			func(n RBNode[K]) bool { return n == nil },
			func(n RBNode[K]) RBNode[K] { return n.Left() },
			func(n RBNode[K]) RBNode[K] { return n.Right() },
			func(n RBNode[K]) RBNode[K] { return n.Parent() },
		)
	default:
	}
	return fmt.Errorf("unsupported tree type %T", tree)
}

func parentLinkValidate[N comparable](root N, isNil func(N) bool, left, right, parent func(N) N) error {
	if isNil(root) {
		return nil
	}
	if !isNil(parent(root)) {
		return errors.New("parent link violation, root has a parent")
	}

	stack := []N{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range [2]N{left(aux), right(aux)} {
			if isNil(child) {
				continue
			}
			if parent(child) != aux {
				return errors.New("parent link violation, child does not point back to its parent")
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// TreeValidate runs the engine specific checks and the parent links.
func TreeValidate[K infra.OrderedKey](tree BalancedTree[K]) error {
	switch t := tree.(type) {
	case RBTree[K]:
		return RBTreeValidate[K](t)
	case AVLTree[K]:
		return multierr.Append(AVLBalanceValidate[K](t), ParentLinkValidate[K](t))
	default:
	}
	return fmt.Errorf("unsupported tree type %T", tree)
}
