package graphs

import "errors"

var ErrNoParent = errors.New("node has no parent")

// TreeModel is the read-only view of a rooted tree that clade enumeration
// works against. Nodes are identified by integer ids.
type TreeModel interface {
	Root() int
	IsLeaf(n int) bool
	IsRoot(n int) bool
	Parent(n int) (int, error) // ErrNoParent for the root
	Children(n int) []int
	Siblings(n int) []int
	LeafNames(n int) []string // sorted names of the leaves below n
	Name(n int) string
	PreOrder() []int
}
