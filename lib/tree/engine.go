package tree

import (
	"strings"

	"github.com/benz9527/xtree/lib/infra"
)

// Engine names a balancing strategy.
type Engine string

const (
	EngineAVL Engine = "avl"
	EngineRB  Engine = "rb"
)

func Engines() []Engine {
	return []Engine{EngineAVL, EngineRB}
}

func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case EngineAVL, EngineRB:
		return e, nil
	case "redblack", "red-black":
		return EngineRB, nil
	default:
	}
	return "", infra.NewErrorStack("[tree] unknown engine " + name)
}

// New builds an empty ascending tree of the engine. capacity
// presizes the node arena.
func New[K infra.OrderedKey](engine Engine, capacity int) (BalancedTree[K], error) {
	switch engine {
	case EngineAVL:
		return NewAVLTree[K](WithAVLTreeCapacity[K](capacity)), nil
	case EngineRB:
		return NewRBTree[K](WithRBTreeCapacity[K](capacity)), nil
	default:
	}
	return nil, infra.NewErrorStack("[tree] unknown engine " + string(engine))
}
