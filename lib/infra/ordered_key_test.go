package infra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedKeyComparator(t *testing.T) {
	type testcase struct {
		name     string
		desc     bool
		i, j     float64
		expected int64
	}
	testcases := []testcase{
		{name: "asc less", i: 1.0, j: 2.5, expected: -1},
		{name: "asc equal", i: 2.5, j: 2.5, expected: 0},
		{name: "asc greater", i: 3.0, j: 2.5, expected: 1},
		{name: "desc less", desc: true, i: 1.0, j: 2.5, expected: 1},
		{name: "desc equal", desc: true, i: 2.5, j: 2.5, expected: 0},
		{name: "desc greater", desc: true, i: 3.0, j: 2.5, expected: -1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			cmp := NewOrderedKeyComparator[float64](tc.desc)
			require.Equal(tt, tc.expected, cmp(tc.i, tc.j))
		})
	}
}

func TestOrderedKeyComparator_String(t *testing.T) {
	cmp := NewOrderedKeyComparator[string](false)
	require.Equal(t, int64(-1), cmp("apple", "banana"))
	require.Equal(t, int64(1), cmp("cherry", "banana"))
	require.Equal(t, int64(0), cmp("kiwi", "kiwi"))
}
