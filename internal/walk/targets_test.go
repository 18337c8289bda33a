package walk

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	gr "github.com/jsdoublel/f4clades/internal/graphs"
)

func TestTargets(t *testing.T) {
	testCases := []struct {
		name     string
		tre      string
		expected []string
	}{
		{
			name:     "basic",
			tre:      "(((A,B),C),(D,(E,F)));",
			expected: []string{"A", "E"},
		},
		{
			name:     "caterpillar",
			tre:      "((((A,B),C),D),E);",
			expected: []string{"A"},
		},
		{
			name:     "balanced",
			tre:      "(((A,B),(C,D)),((E,F),(G,H)));",
			expected: []string{"A", "C", "E", "G"},
		},
		{
			name:     "polytomy",
			tre:      "((C,B,A),(D,(E,F,G,H)));",
			expected: []string{"C", "E"},
		},
		{
			name:     "cherry at root",
			tre:      "(A,B);",
			expected: []string{"A"},
		},
		{
			name:     "leaf beside cherry",
			tre:      "(A,(B,C));",
			expected: []string{"B"},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			td := makeTreeData(t, test.tre)
			targets, err := Targets(td)
			if err != nil {
				t.Fatalf("unexpected error %s", err)
			}
			names := make([]string, len(targets))
			for i, n := range targets {
				names[i] = td.Name(n)
			}
			if diff := cmp.Diff(test.expected, names); diff != "" {
				t.Errorf("targets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTargetsOnePerCherry(t *testing.T) {
	td := makeTreeData(t, "((((A,B),(C,D)),(E,F)),(((G,H),I),((J,K),(L,M))));")
	targets, err := Targets(td)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if len(targets) != 6 {
		t.Errorf("%d targets, expected 6", len(targets))
	}
	parents := make(map[int]bool)
	for _, n := range targets {
		p, err := td.Parent(n)
		if err != nil {
			t.Fatal(err)
		}
		if parents[p] {
			t.Errorf("two targets share parent %s", td.Label(p))
		}
		parents[p] = true
	}
}

func TestTargetsDeterministic(t *testing.T) {
	nwk := "(((A,B),(C,D,E)),((F,G),H));"
	first, err := Targets(makeTreeData(t, nwk))
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := Targets(makeTreeData(t, nwk))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("targets changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestTargetsBrokenParent(t *testing.T) {
	_, err := Targets(newFakeTree().withBrokenParent(3))
	if !errors.Is(err, ErrStructure) {
		t.Errorf("expected %v, got %v", ErrStructure, err)
	}
	if !errors.Is(err, gr.ErrNoParent) {
		t.Errorf("error %v does not wrap %v", err, gr.ErrNoParent)
	}
}
