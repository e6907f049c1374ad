package tree

import (
	"math"

	"github.com/benz9527/xtree/lib/infra"
)

// nodeIdx addresses a node inside its tree's arena.
// Index equality replaces pointer identity.
type nodeIdx uint32

// nilIdx is the reserved arena slot standing for an absent node.
// Its zero tag reads as height 0 (AVL) and Black (RB), so absent
// children need no special casing. Nothing may ever be written to it.
const nilIdx nodeIdx = 0

const maxArenaNodes = math.MaxUint32 - 1

// node is the shared shape of the AVL and the red-black elements.
// T is the balance tag: the height for AVL, the color for RB.
// parent is navigational only, the arena owns every node.
type node[K infra.OrderedKey, T any] struct {
	key    K
	parent nodeIdx
	left   nodeIdx
	right  nodeIdx
	tag    T
}

// References:
// https://github.com/ortuman/nuke
// The recycled indices are reused before the arena grows.
type nodeArena[K infra.OrderedKey, T any] struct {
	nodes    []node[K, T]
	recycled []nodeIdx
}

func newNodeArena[K infra.OrderedKey, T any](capacity int) *nodeArena[K, T] {
	if capacity < 0 {
		capacity = 0
	}
	return &nodeArena[K, T]{
		nodes:    make([]node[K, T], 1, capacity+1),
		recycled: make([]nodeIdx, 0, 16),
	}
}

// at returns the node for reading. The nil slot is readable.
// The pointer is invalidated by the next allocate.
func (arena *nodeArena[K, T]) at(idx nodeIdx) *node[K, T] {
	return &arena.nodes[idx]
}

// ref returns the node for writing.
func (arena *nodeArena[K, T]) ref(idx nodeIdx) *node[K, T] {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[tree] write to the nil node slot"))
	}
	return &arena.nodes[idx]
}

func (arena *nodeArena[K, T]) allocate(key K, tag T) nodeIdx {
	if rl := len(arena.recycled); rl > 0 {
		idx := arena.recycled[rl-1]
		arena.recycled = arena.recycled[:rl-1]
		arena.nodes[idx] = node[K, T]{key: key, tag: tag}
		return idx
	}
	if len(arena.nodes) > maxArenaNodes {
		panic(infra.NewErrorStack("[tree] node arena is full"))
	}
	arena.nodes = append(arena.nodes, node[K, T]{key: key, tag: tag})
	return nodeIdx(len(arena.nodes) - 1)
}

func (arena *nodeArena[K, T]) recycle(idx nodeIdx) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[tree] recycle the nil node slot"))
	}
	arena.nodes[idx] = node[K, T]{}
	arena.recycled = append(arena.recycled, idx)
}

// live is the number of allocated and not recycled nodes.
func (arena *nodeArena[K, T]) live() int {
	return len(arena.nodes) - 1 - len(arena.recycled)
}

func (arena *nodeArena[K, T]) reset() {
	clear(arena.nodes)
	arena.nodes = arena.nodes[:1]
	arena.recycled = arena.recycled[:0]
}

func (arena *nodeArena[K, T]) setParent(idx, parent nodeIdx) {
	if idx != nilIdx {
		arena.nodes[idx].parent = parent
	}
}

// replaceChild puts child into the position old holds under parent,
// or into *root if parent is absent. The child's parent link follows.
func (arena *nodeArena[K, T]) replaceChild(parent, old, child nodeIdx, root *nodeIdx) {
	switch {
	case parent == nilIdx:
		*root = child
	case arena.nodes[parent].left == old:
		arena.nodes[parent].left = child
	case arena.nodes[parent].right == old:
		arena.nodes[parent].right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack("[tree] node is not a child of its parent"))
	}
	arena.setParent(child, parent)
}

func (arena *nodeArena[K, T]) minimum(idx nodeIdx) nodeIdx {
	for idx != nilIdx && arena.nodes[idx].left != nilIdx {
		idx = arena.nodes[idx].left
	}
	return idx
}

// search descends from root by kcmp and stops at the first match.
func (arena *nodeArena[K, T]) search(root nodeIdx, key K, kcmp infra.OrderedKeyComparator[K]) nodeIdx {
	for aux := root; aux != nilIdx; {
		n := &arena.nodes[aux]
		if res := kcmp(key, n.key); res == 0 {
			return aux
		} else if res < 0 {
			aux = n.left
		} else {
			aux = n.right
		}
	}
	return nilIdx
}
