package graphs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

var ErrUnknownTaxon = errors.New("unknown taxon")

// Taxa maps leaf names to bit positions so that leafsets can be stored as
// bitsets. Names are indexed in lexicographic order, so iterating over the
// set bits of a leafset yields names in sorted order.
type Taxa struct {
	names []string        // bit position -> name
	index map[string]uint // name -> bit position
}

// Make Taxa from a list of names (duplicates are collapsed)
func NewTaxa(names []string) *Taxa {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	index := make(map[string]uint, len(sorted))
	for i, name := range sorted {
		index[name] = uint(i)
	}
	return &Taxa{names: sorted, index: index}
}

func (tx *Taxa) Len() int {
	return len(tx.names)
}

func (tx *Taxa) Contains(name string) bool {
	_, ok := tx.index[name]
	return ok
}

// Bitset containing every taxon
func (tx *Taxa) Universe() *bitset.BitSet {
	bs := bitset.New(uint(len(tx.names)))
	for i := range tx.names {
		bs.Set(uint(i))
	}
	return bs
}

// Converts a list of names to a leafset. Returns an error if any name is not
// in the taxa set.
func (tx *Taxa) Leafset(names []string) (*bitset.BitSet, error) {
	bs := bitset.New(uint(len(tx.names)))
	for _, name := range names {
		i, ok := tx.index[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownTaxon, name)
		}
		bs.Set(i)
	}
	return bs, nil
}

// Names in leafset (sorted)
func (tx *Taxa) Names(bs *bitset.BitSet) []string {
	names := make([]string, 0, bs.Count())
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		names = append(names, tx.names[i])
	}
	return names
}
