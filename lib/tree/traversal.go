package tree

import (
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

// The traversals are iterative with explicit stacks. The recursion
// depth would otherwise follow the tree height.

// Inorder traversal to implement the DFS.
func foreachInOrder[K infra.OrderedKey, T any](
	arena *nodeArena[K, T],
	root nodeIdx,
	sizeHint int64,
	action func(idx int64, n *node[K, T]) bool,
) {
	if root == nilIdx {
		return
	}
	stack := make([]nodeIdx, 0, max(sizeHint>>1, 8))
	defer func() {
		clear(stack)
	}()

	aux := root
	for ; aux != nilIdx; aux = arena.at(aux).left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		if !action(idx, arena.at(aux)) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = arena.at(aux).right; aux != nilIdx; aux = arena.at(aux).left {
			stack = append(stack, aux)
		}
	}
}

func inOrderSeq[K infra.OrderedKey, T any](arena *nodeArena[K, T], root nodeIdx) iter.Seq[K] {
	return func(yield func(K) bool) {
		foreachInOrder(arena, root, 0, func(_ int64, n *node[K, T]) bool {
			return yield(n.key)
		})
	}
}

func preOrderSeq[K infra.OrderedKey, T any](arena *nodeArena[K, T], root nodeIdx) iter.Seq[K] {
	return func(yield func(K) bool) {
		if root == nilIdx {
			return
		}
		stack := []nodeIdx{root}
		for size := len(stack); size > 0; size = len(stack) {
			n := arena.at(stack[size-1])
			stack = stack[:size-1]
			if !yield(n.key) {
				return
			}
			if n.right != nilIdx {
				stack = append(stack, n.right)
			}
			if n.left != nilIdx {
				stack = append(stack, n.left)
			}
		}
	}
}

func postOrderSeq[K infra.OrderedKey, T any](arena *nodeArena[K, T], root nodeIdx) iter.Seq[K] {
	return func(yield func(K) bool) {
		var (
			stack = make([]nodeIdx, 0, 8)
			last  = nilIdx
			aux   = root
		)
		for aux != nilIdx || len(stack) > 0 {
			if aux != nilIdx {
				stack = append(stack, aux)
				aux = arena.at(aux).left
				continue
			}
			peek := stack[len(stack)-1]
			if r := arena.at(peek).right; r != nilIdx && r != last {
				aux = r
				continue
			}
			if !yield(arena.at(peek).key) {
				return
			}
			last = peek
			stack = stack[:len(stack)-1]
		}
	}
}

// levelHeight counts the BFS levels, 0 for an empty tree.
func levelHeight[K infra.OrderedKey, T any](arena *nodeArena[K, T], root nodeIdx) int {
	if root == nilIdx {
		return 0
	}
	height := 0
	level := []nodeIdx{root}
	next := make([]nodeIdx, 0, 2)
	for len(level) > 0 {
		height++
		next = next[:0]
		for _, idx := range level {
			n := arena.at(idx)
			if n.left != nilIdx {
				next = append(next, n.left)
			}
			if n.right != nilIdx {
				next = append(next, n.right)
			}
		}
		level, next = next, level
	}
	return height
}

// leafCount counts the nodes having no children at all.
func leafCount[K infra.OrderedKey, T any](arena *nodeArena[K, T], root nodeIdx) int {
	count := 0
	foreachInOrder(arena, root, 0, func(_ int64, n *node[K, T]) bool {
		if n.left == nilIdx && n.right == nilIdx {
			count++
		}
		return true
	})
	return count
}
