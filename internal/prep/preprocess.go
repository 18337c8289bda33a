// Package handling the input and output of f4clades: reading and validating
// the tree and f4 table files, and writing reports
package prep

import (
	"errors"
	"fmt"
	"log"

	"github.com/evolbioinfo/gotree/tree"

	gr "github.com/jsdoublel/f4clades/internal/graphs"
)

var (
	ErrMulTree      = errors.New("contains duplicate labels")
	ErrUnifurcation = errors.New("contains a node with a single child")
)

// Validates the tree and builds its TreeData. Returns an error if the tree
// has duplicate leaf labels or a node (root included) with exactly one
// child. Polytomies are allowed anywhere, including at the root; the split
// at the root is never tested.
func Preprocess(tre *tree.Tree) (*gr.TreeData, error) {
	if err := tre.UpdateTipIndex(); err != nil {
		return nil, fmt.Errorf("tree %w", ErrMulTree)
	}
	if n := findUnifurcation(tre); n != nil {
		return nil, fmt.Errorf("tree %w (%s)", ErrUnifurcation, nodeLabel(n))
	}
	td := gr.MakeTreeData(tre)
	log.Printf("tree has %d leaves and %d nodes", td.NLeaves, len(td.IdToNodes))
	return td, nil
}

// Returns the first node with exactly one child, nil if there is none
func findUnifurcation(tre *tree.Tree) *tree.Node {
	var found *tree.Node
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		nChildren := cur.Nneigh()
		if prev != nil {
			nChildren--
		}
		if nChildren == 1 && found == nil {
			found = cur
		}
		return found == nil
	})
	return found
}

func nodeLabel(n *tree.Node) string {
	if n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("node %d", n.Id())
}
