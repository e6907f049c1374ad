package tree

import (
	"io"
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

// BalancedTree is the operation surface shared by the AVL and the
// red-black engines. A tree has exactly one mutator at a time.
type BalancedTree[K infra.OrderedKey] interface {
	Len() int64
	IsEmpty() bool
	Height() int
	LeafCount() int
	Insert(key K) bool
	Delete(key K) bool
	Contains(key K) bool
	Update(oldKey, newKey K) bool
	InOrder() iter.Seq[K]
	PreOrder() iter.Seq[K]
	PostOrder() iter.Seq[K]
	Dump(w io.Writer) error
	Release()
}

// AVLNode is a read-only view of an AVL tree element.
// A view is valid until the next mutation of its tree.
type AVLNode[K infra.OrderedKey] interface {
	Key() K
	Height() int
	BalanceFactor() int
	Left() AVLNode[K]
	Right() AVLNode[K]
	Parent() AVLNode[K]
}

type AVLTree[K infra.OrderedKey] interface {
	BalancedTree[K]
	Root() AVLNode[K]
	Search(key K) AVLNode[K]
	Foreach(action func(idx int64, height int, key K) bool)
}

// RBNode is a read-only view of a red-black tree element.
// A view is valid until the next mutation of its tree.
type RBNode[K infra.OrderedKey] interface {
	Key() K
	Color() RBColor
	Left() RBNode[K]
	Right() RBNode[K]
	Parent() RBNode[K]
}

type RBTree[K infra.OrderedKey] interface {
	BalancedTree[K]
	Root() RBNode[K]
	Search(key K) RBNode[K]
	Foreach(action func(idx int64, color RBColor, key K) bool)
	Validate() bool
}
