package graphs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
	"github.com/google/go-cmp/cmp"
)

func TestMakeTreeData(t *testing.T) {
	testCases := []struct {
		name     string
		tre      string
		leafset  map[string][]string
		depths   map[string]int
		siblings map[string][]string
		leaves   []string
	}{
		{
			name: "basic",
			tre:  "((((A,B)a,C)b,D)c,F)r;",
			leafset: map[string][]string{
				"a": {"A", "B"},
				"b": {"A", "B", "C"},
				"c": {"A", "B", "C", "D"},
				"r": {"A", "B", "C", "D", "F"},
				"C": {"C"},
			},
			depths: map[string]int{
				"r": 0,
				"c": 1,
				"A": 4,
				"F": 1,
			},
			siblings: map[string][]string{
				"A": {"B"},
				"a": {"C"},
				"r": {},
			},
			leaves: []string{"A", "B", "C", "D", "F"},
		},
		{
			name: "polytomy",
			tre:  "((B,A,C)a,(E,D)b)r;",
			leafset: map[string][]string{
				"a": {"A", "B", "C"},
				"b": {"D", "E"},
			},
			depths: map[string]int{
				"a": 1,
				"C": 2,
			},
			siblings: map[string][]string{
				"A": {"B", "C"},
				"D": {"E"},
			},
			leaves: []string{"A", "B", "C", "D", "E"},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			td := makeTreeData(t, test.tre)
			if td.NLeaves != len(test.leaves) {
				t.Errorf("NLeaves %d != %d", td.NLeaves, len(test.leaves))
			}
			if diff := cmp.Diff(test.leaves, td.LeafNames(td.Root())); diff != "" {
				t.Errorf("root leafset mismatch (-want +got):\n%s", diff)
			}
			for k, v := range test.leafset {
				n := getNodeID(t, k, td)
				if diff := cmp.Diff(v, td.LeafNames(n)); diff != "" {
					t.Errorf("leafset of %s mismatch (-want +got):\n%s", k, diff)
				}
			}
			for k, v := range test.depths {
				if d := td.Depths[getNodeID(t, k, td)]; d != v {
					t.Errorf("depth of %s %d != %d", k, d, v)
				}
			}
			for k, v := range test.siblings {
				sibs := make([]string, 0)
				for _, s := range td.Siblings(getNodeID(t, k, td)) {
					sibs = append(sibs, td.Name(s))
				}
				slices.Sort(sibs)
				if diff := cmp.Diff(v, sibs); diff != "" {
					t.Errorf("siblings of %s mismatch (-want +got):\n%s", k, diff)
				}
			}
		})
	}
}

func TestParent(t *testing.T) {
	td := makeTreeData(t, "((A,B)a,(C,D)b)r;")
	root := td.Root()
	if !td.IsRoot(root) {
		t.Errorf("root %d is not root", root)
	}
	if _, err := td.Parent(root); !errors.Is(err, ErrNoParent) {
		t.Errorf("parent of root returned %v, expected %v", err, ErrNoParent)
	}
	if _, err := td.Parent(len(td.IdToNodes)); !errors.Is(err, ErrNoParent) {
		t.Errorf("parent of out of range node returned %v, expected %v", err, ErrNoParent)
	}
	for _, leaf := range []string{"A", "B"} {
		p, err := td.Parent(getNodeID(t, leaf, td))
		if err != nil {
			t.Fatalf("unexpected error %s", err)
		}
		if td.Name(p) != "a" {
			t.Errorf("parent of %s is %s, expected a", leaf, td.Name(p))
		}
		if !td.IsLeaf(getNodeID(t, leaf, td)) {
			t.Errorf("%s should be a leaf", leaf)
		}
	}
	if td.IsLeaf(getNodeID(t, "a", td)) {
		t.Error("a should not be a leaf")
	}
}

func TestPreOrder(t *testing.T) {
	td := makeTreeData(t, "((A,B)a,(C,D)b)r;")
	order := td.PreOrder()
	if len(order) != len(td.IdToNodes) {
		t.Fatalf("preorder visits %d nodes, expected %d", len(order), len(td.IdToNodes))
	}
	if order[0] != td.Root() {
		t.Errorf("preorder does not start at root")
	}
	seen := make(map[int]bool)
	for _, n := range order {
		if !td.IsRoot(n) {
			p, err := td.Parent(n)
			if err != nil {
				t.Fatal(err)
			}
			if !seen[p] {
				t.Errorf("%s visited before its parent %s", td.Label(n), td.Label(p))
			}
		}
		seen[n] = true
	}
}

func TestNewick(t *testing.T) {
	testCases := []struct {
		name     string
		tre      string
		node     string
		expected string
	}{
		{
			name:     "whole tree",
			tre:      "(((A,B),C),(D,(E,F)));",
			node:     "",
			expected: "(((A,B),C),(D,(E,F)));",
		},
		{
			name:     "named subtree",
			tre:      "(((A,B)x,C)y,(D,(E,F)z)w)r;",
			node:     "y",
			expected: "((A,B)x,C)y;",
		},
		{
			name:     "leaf",
			tre:      "(((A,B)x,C)y,(D,(E,F)z)w)r;",
			node:     "E",
			expected: "E;",
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			td := makeTreeData(t, test.tre)
			n := td.Root()
			if test.node != "" {
				n = getNodeID(t, test.node, td)
			}
			if result := td.Newick(n); result != test.expected {
				t.Errorf("%s != %s", result, test.expected)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	td := makeTreeData(t, "(((A,B),C)y,D);")
	if l := td.Label(getNodeID(t, "y", td)); l != "y" {
		t.Errorf("label %s != y", l)
	}
	if l := td.Label(td.Root()); l != "{A,B,C,D}" {
		t.Errorf("label %s != {A,B,C,D}", l)
	}
}

func makeTreeData(t *testing.T, nwk string) *TreeData {
	t.Helper()
	tre, err := newick.NewParser(strings.NewReader(nwk)).Parse()
	if err != nil {
		t.Fatalf("invalid newick tree %s; test is written wrong", nwk)
	}
	return MakeTreeData(tre)
}

func getNodeID(t *testing.T, label string, td *TreeData) int {
	t.Helper()
	n, err := getNode(label, &td.Tree)
	if err != nil {
		t.Fatal(err)
	}
	return n.Id()
}

func getNode(label string, tre *tree.Tree) (*tree.Node, error) {
	var found *tree.Node
	count := 0
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		if cur.Name() == label {
			found = cur
			count++
		}
		return true
	})
	if count != 1 {
		return nil, fmt.Errorf("%d nodes with the label %s; test is written wrong", count, label)
	}
	return found, nil
}
