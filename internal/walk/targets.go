// Package implementing the enumeration of clade hypotheses: choosing the
// starting leaves and walking from each of them towards the root
package walk

import (
	"errors"
	"fmt"

	gr "github.com/jsdoublel/f4clades/internal/graphs"
)

var ErrStructure = errors.New("malformed tree")

// Returns one representative leaf for every terminal cascade, i.e., for
// every node whose children are all leaves. The representative is the first
// child of that node encountered in preorder, so the result is reproducible
// for any number of children (including polytomies). Leaves are returned in
// the order their groups are first encountered.
func Targets(tre gr.TreeModel) ([]int, error) {
	targets := make([]int, 0)
	seen := make(map[int]bool) // parents whose representative has been chosen
	for _, n := range tre.PreOrder() {
		if !tre.IsLeaf(n) || tre.IsRoot(n) {
			continue
		}
		p, err := tre.Parent(n)
		if err != nil {
			return nil, fmt.Errorf("%w, cannot find parent of leaf %s: %w", ErrStructure, tre.Name(n), err)
		}
		if seen[p] || !allLeaves(tre, tre.Siblings(n)) {
			continue
		}
		seen[p] = true
		targets = append(targets, n)
	}
	return targets, nil
}

func allLeaves(tre gr.TreeModel, nodes []int) bool {
	for _, n := range nodes {
		if !tre.IsLeaf(n) {
			return false
		}
	}
	return true
}
