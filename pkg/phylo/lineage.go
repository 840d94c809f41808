package phylo

import (
	"fmt"
	"strings"
)

// Lineage renders the sub-populations of one sample as indented text.
//
// The report starts with the sample name and GERMLINE, then walks the tree
// depth-first from the root's children. Every visited node occurring in the
// sample prints its label, AAF and std-dev at one tab per depth:
//
//	primary:
//	GERMLINE
//		110: 0.45 [0.02]
//			100: 0.20 [0.01]
func (t *Tree) Lineage(sample int, name string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(":\nGERMLINE\n")
	root := t.Root()
	if root == nil {
		return b.String()
	}
	for _, c := range t.children[root.ID] {
		t.writeLineage(&b, c, sample, 1)
	}
	return b.String()
}

func (t *Tree) writeLineage(b *strings.Builder, n *Node, sample, depth int) {
	if n.Contains(sample) {
		fmt.Fprintf(b, "%s%s: %.2f [%.2f]\n", strings.Repeat("\t", depth), n.Label(), n.AAF(sample), n.StdDev(sample))
	}
	for _, c := range t.children[n.ID] {
		t.writeLineage(b, c, sample, depth+1)
	}
}
