// Package containing the tree structures used to enumerate clades, i.e., the
// TreeModel interface, its gotree backed implementation, and leafsets
package graphs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/evolbioinfo/gotree/tree"
)

// Expanded tree struct containing necessary preprocessed data
type TreeData struct {
	tree.Tree
	IdToNodes []*tree.Node     // Mapping between id and node pointer
	Depths    []int            // Distance from all nodes to the root
	NLeaves   int              // Number of leaves
	Taxa      *Taxa            // Leaf name <-> bit position
	children  [][]int          // Children (node ids) for each node
	parents   []int            // Parent id for each node (-1 for root)
	leafsets  []*bitset.BitSet // Leaves under each node
	preorder  []int            // Node ids in preorder
}

var _ TreeModel = (*TreeData)(nil)

// Preprocess tree data and makes TreeData struct. Tree must be rooted; node
// ids are assumed to be in [0, len(tre.Nodes())).
func MakeTreeData(tre *tree.Tree) *TreeData {
	idMap := mapIdToNodes(tre)
	parents, preorder := calcParents(tre, len(idMap))
	children := children(tre, len(idMap))
	taxa := NewTaxa(tre.AllTipNames())
	return &TreeData{
		Tree:      *tre,
		IdToNodes: idMap,
		Depths:    calcDepths(tre, len(idMap)),
		NLeaves:   taxa.Len(),
		Taxa:      taxa,
		children:  children,
		parents:   parents,
		leafsets:  calcLeafset(tre, children, taxa),
		preorder:  preorder,
	}
}

// Create mapping from id to node pointer
func mapIdToNodes(tre *tree.Tree) []*tree.Node {
	idMap := make([]*tree.Node, len(tre.Nodes()))
	tre.PostOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		idMap[cur.Id()] = cur
		return true
	})
	return idMap
}

func calcParents(tre *tree.Tree, nNodes int) ([]int, []int) {
	parents := make([]int, nNodes)
	preorder := make([]int, 0, nNodes)
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		if prev == nil {
			parents[cur.Id()] = -1
		} else {
			parents[cur.Id()] = prev.Id()
		}
		preorder = append(preorder, cur.Id())
		return true
	})
	return parents, preorder
}

// Calculate children for each node for quick access (as gotree's Tree only
// stores neighbors)
func children(tre *tree.Tree, nNodes int) [][]int {
	children := make([][]int, nNodes)
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		children[cur.Id()] = make([]int, 0, cur.Nneigh())
		for _, n := range cur.Neigh() {
			if n != prev {
				children[cur.Id()] = append(children[cur.Id()], n.Id())
			}
		}
		return true
	})
	return children
}

// Calculates the leafset for every node
func calcLeafset(tre *tree.Tree, children [][]int, taxa *Taxa) []*bitset.BitSet {
	leafset := make([]*bitset.BitSet, len(children))
	tre.PostOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		leafset[cur.Id()] = bitset.New(uint(taxa.Len()))
		if cur.Tip() {
			leafset[cur.Id()].Set(taxa.index[cur.Name()])
		} else {
			for _, c := range children[cur.Id()] {
				leafset[cur.Id()].InPlaceUnion(leafset[c])
			}
		}
		return true
	})
	return leafset
}

// Calculate depths for all nodes in tree (slice index = node id)
func calcDepths(tre *tree.Tree, nNodes int) []int {
	depths := make([]int, nNodes)
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		if prev != nil {
			depths[cur.Id()] = depths[prev.Id()] + 1
		}
		return true
	})
	return depths
}

func (td *TreeData) Root() int {
	return td.Tree.Root().Id()
}

func (td *TreeData) IsLeaf(n int) bool {
	return len(td.children[n]) == 0
}

func (td *TreeData) IsRoot(n int) bool {
	return td.parents[n] == -1
}

func (td *TreeData) Parent(n int) (int, error) {
	if n < 0 || n >= len(td.parents) {
		return -1, fmt.Errorf("%w, node id %d out of range", ErrNoParent, n)
	}
	if td.parents[n] == -1 {
		return -1, fmt.Errorf("%w, node %s is the root", ErrNoParent, td.Label(n))
	}
	return td.parents[n], nil
}

func (td *TreeData) Children(n int) []int {
	return slices.Clone(td.children[n])
}

// Finds node's siblings (works for polytomies)
func (td *TreeData) Siblings(n int) []int {
	p := td.parents[n]
	if p == -1 {
		return nil
	}
	sibs := make([]int, 0, len(td.children[p])-1)
	for _, c := range td.children[p] {
		if c != n {
			sibs = append(sibs, c)
		}
	}
	return sibs
}

func (td *TreeData) LeafNames(n int) []string {
	return td.Taxa.Names(td.leafsets[n])
}

func (td *TreeData) Name(n int) string {
	return td.IdToNodes[n].Name()
}

func (td *TreeData) PreOrder() []int {
	return slices.Clone(td.preorder)
}

// Name of node if it has one; otherwise its leafset, e.g., {A,B,C}
func (td *TreeData) Label(n int) string {
	if name := td.Name(n); name != "" {
		return name
	}
	return td.LeafsetAsString(n)
}

// Returns leafset as string for printing/testing
func (td *TreeData) LeafsetAsString(n int) string {
	return "{" + strings.Join(td.LeafNames(n), ",") + "}"
}

// Newick string of the subtree rooted at n
func (td *TreeData) Newick(n int) string {
	var sb strings.Builder
	td.writeNewick(n, &sb)
	sb.WriteByte(';')
	return sb.String()
}

func (td *TreeData) writeNewick(n int, sb *strings.Builder) {
	if !td.IsLeaf(n) {
		sb.WriteByte('(')
		for i, c := range td.children[n] {
			if i > 0 {
				sb.WriteByte(',')
			}
			td.writeNewick(c, sb)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(td.Name(n))
}
