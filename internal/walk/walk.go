package walk

import (
	"errors"
	"fmt"
	"iter"

	"github.com/bits-and-blooms/bitset"

	gr "github.com/jsdoublel/f4clades/internal/graphs"
)

var ErrOutgroupInTree = errors.New("outgroup is a leaf of the tree")

// Hypothesis that V (leaves below Clade) and U (the rest of the leaves below
// Parent) form a clade with respect to T (all other leaves). T, U, and V are
// sorted, pairwise disjoint, and their union is every leaf in the tree.
type Hypothesis struct {
	Level  int // number of steps taken from the starting leaf
	Clade  int // node id whose leafset is V
	Parent int // node id whose leafset is U ∪ V
	T      []string
	U      []string
	V      []string
}

type Walker struct {
	tre      gr.TreeModel
	taxa     *gr.Taxa
	universe *bitset.BitSet
	outgroup string
}

func NewWalker(tre gr.TreeModel, outgroup string) *Walker {
	taxa := gr.NewTaxa(tre.LeafNames(tre.Root()))
	return &Walker{
		tre:      tre,
		taxa:     taxa,
		universe: taxa.Universe(),
		outgroup: outgroup,
	}
}

// Hypotheses produced while walking from leaf up to (but not including) the
// root: the first tests the leaf against its siblings, each following one
// tests the previous parent against its own siblings. A leaf at depth d
// produces d - 1 hypotheses. If an error is yielded the walk stops.
func (w *Walker) Hypotheses(leaf int) iter.Seq2[Hypothesis, error] {
	return func(yield func(Hypothesis, error) bool) {
		if w.taxa.Contains(w.outgroup) {
			yield(Hypothesis{}, fmt.Errorf("%w (%s)", ErrOutgroupInTree, w.outgroup))
			return
		}
		if !w.tre.IsLeaf(leaf) {
			yield(Hypothesis{}, fmt.Errorf("%w, walk must start at a leaf but %s is an internal node",
				ErrStructure, w.label(leaf)))
			return
		}
		if w.tre.IsRoot(leaf) {
			return
		}
		c := leaf
		p, err := w.tre.Parent(c)
		if err != nil {
			yield(Hypothesis{}, w.structureErr(c, err))
			return
		}
		for level := 0; !w.tre.IsRoot(p); level++ {
			h, err := w.hypothesis(level, c, p)
			if !yield(h, err) || err != nil {
				return
			}
			c = p
			if p, err = w.tre.Parent(c); err != nil {
				yield(Hypothesis{}, w.structureErr(c, err))
				return
			}
		}
	}
}

// Makes hypothesis with v = leafset(c), u = leafset(p) - v, and
// t = universe - leafset(p)
func (w *Walker) hypothesis(level, c, p int) (Hypothesis, error) {
	v, err := w.taxa.Leafset(w.tre.LeafNames(c))
	if err != nil {
		return Hypothesis{}, fmt.Errorf("%w, leaves of %s: %w", ErrStructure, w.label(c), err)
	}
	above, err := w.taxa.Leafset(w.tre.LeafNames(p))
	if err != nil {
		return Hypothesis{}, fmt.Errorf("%w, leaves of %s: %w", ErrStructure, w.label(p), err)
	}
	if !above.IsSuperSet(v) {
		return Hypothesis{}, fmt.Errorf("%w, leaves of %s are not below its parent %s",
			ErrStructure, w.label(c), w.label(p))
	}
	u := above.Difference(v)
	if u.None() {
		return Hypothesis{}, fmt.Errorf("%w, %s has fewer than two children", ErrStructure, w.label(p))
	}
	if v.None() {
		return Hypothesis{}, fmt.Errorf("%w, %s has no leaves below it", ErrStructure, w.label(c))
	}
	t := w.universe.Difference(above)
	return Hypothesis{
		Level:  level,
		Clade:  c,
		Parent: p,
		T:      w.taxa.Names(t),
		U:      w.taxa.Names(u),
		V:      w.taxa.Names(v),
	}, nil
}

func (w *Walker) structureErr(n int, err error) error {
	return fmt.Errorf("%w, cannot find parent of %s: %w", ErrStructure, w.label(n), err)
}

// Name of node if it has one; otherwise its leaves
func (w *Walker) label(n int) string {
	if name := w.tre.Name(n); name != "" {
		return name
	}
	return fmt.Sprintf("%v", w.tre.LeafNames(n))
}
