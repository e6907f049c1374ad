package tree

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/benz9527/xtree/lib/infra"
)

// dumpAVL writes the pre-order structure, two spaces per depth.
//
//	AVL Tree Structure:
//	Root: 20 (Height: 2)
//	  L: 10 (Height: 1)
//	  R: 30 (Height: 1)
func dumpAVL[K infra.OrderedKey](w io.Writer, arena *nodeArena[K, int32], root nodeIdx) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintln(bw, "AVL Tree Structure:")
	dumpAVLRec(bw, arena, root, 0, "Root")
	return bw.Flush()
}

func dumpAVLRec[K infra.OrderedKey](w io.Writer, arena *nodeArena[K, int32], idx nodeIdx, depth int, pos string) {
	if idx == nilIdx {
		return
	}
	n := arena.at(idx)
	_, _ = fmt.Fprintf(w, "%s%s: %v (Height: %d)\n", strings.Repeat(" ", depth*2), pos, n.key, n.tag)
	dumpAVLRec(w, arena, n.left, depth+1, "L")
	dumpAVLRec(w, arena, n.right, depth+1, "R")
}

// dumpRB writes the colored structure with box drawing connectors.
// Absent children are printed as null.
//
//	└───Root 20:Black
//	    ├───L 10:Red
//	    |   ├───null
//	    |   └───null
//	    └───R 30:Red
//	        ├───null
//	        └───null
func dumpRB[K infra.OrderedKey](w io.Writer, arena *nodeArena[K, RBColor], root nodeIdx) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintln(bw, "TREE PRINT <Node:Color>")
	dumpRBRec(bw, arena, root, "", false, "Root")
	return bw.Flush()
}

func dumpRBRec[K infra.OrderedKey](w io.Writer, arena *nodeArena[K, RBColor], idx nodeIdx, prefix string, isLeft bool, pos string) {
	connector, indent := "└───", "    "
	if isLeft {
		connector, indent = "├───", "|   "
	}
	if idx == nilIdx {
		_, _ = fmt.Fprintf(w, "%s%snull\n", prefix, connector)
		return
	}
	n := arena.at(idx)
	_, _ = fmt.Fprintf(w, "%s%s%s %v:%s\n", prefix, connector, pos, n.key, n.tag)
	dumpRBRec(w, arena, n.left, prefix+indent, true, "L")
	dumpRBRec(w, arena, n.right, prefix+indent, false, "R")
}
