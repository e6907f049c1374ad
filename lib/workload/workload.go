package workload

import (
	"fmt"
	randv2 "math/rand/v2"
	"strings"

	"github.com/samber/lo"

	"github.com/benz9527/xtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=Kind -linecomment
type Kind uint8

const (
	Sequential      Kind = iota // sequential
	Reverse                     // reverse
	Shuffled                    // shuffled
	Random                      // random
	RandomMonotonic             // random-monotonic
)

func Kinds() []Kind {
	return []Kind{Sequential, Reverse, Shuffled, Random, RandomMonotonic}
}

func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, infra.NewErrorStack(fmt.Sprintf("[workload] unknown kind %q", name))
}

// Keys generates n distinct keys in the kind's insertion order.
func Keys(kind Kind, n int) []int {
	if n <= 0 {
		return []int{}
	}
	switch kind {
	case Sequential:
		return sequential(n)
	case Reverse:
		return lo.Reverse(sequential(n))
	case Shuffled:
		return lo.Shuffle(sequential(n))
	case Random:
		return random(n)
	case RandomMonotonic:
		return randomMonotonic(n)
	default:
	}
	panic(fmt.Sprintf("[workload] unknown kind %d", kind))
}

func sequential(n int) []int {
	keys := make([]int, n)
	for i := range keys {
		keys[i] = i
	}
	return keys
}

func random(n int) []int {
	keys := make([]int, 0, n)
	for len(keys) < n {
		for i := len(keys); i < n; i++ {
			keys = append(keys, randv2.IntN(n<<3))
		}
		keys = lo.Uniq(keys)
	}
	return keys
}

// randomMonotonic picks numbers from a monotonic id stream with random
// gaps between them, then swaps keys around the first quarter only.
// The stream stays mostly ascending, which stresses the rebalancing
// along the right spine.
func randomMonotonic(n int) []int {
	gen := MonotonicNonZeroID()
	keys := make([]int, 0, n)
	ignore := uint32(0)
	for len(keys) < n {
		num := gen()
		if ignore > 0 {
			ignore--
			continue
		}
		ignore = randv2.Uint32() % 100
		keys = append(keys, int(num))
	}

	count := uint32(len(keys) >> 2)
	for i := uint32(0); i < count; i++ {
		j := randv2.Uint32() % (i + 1)
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}
