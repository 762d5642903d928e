package presentation

import (
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

func inbredTree() *pedigree.Node {
	born := animal.NewDate(2015, time.June, 1)
	grand := func(depth int) *pedigree.Node {
		return &pedigree.Node{ID: "g", Identifier: "G1", Name: "Granny", Gender: animal.Female, BirthDate: &born, Depth: depth}
	}
	return &pedigree.Node{
		ID: "c", Identifier: "C1", Name: "Bessie", Gender: animal.Female,
		Mother: &pedigree.Node{ID: "d", Identifier: "D1", Gender: animal.Female, Depth: 1, Mother: grand(2)},
		Father: &pedigree.Node{ID: "s", Identifier: "S1", Name: "Bull", Gender: animal.Male, Depth: 1, Mother: grand(2)},
	}
}

// sameShape reports whether p mirrors n: one presentation node per pedigree
// node, children in mother-then-father order.
func sameShape(n *pedigree.Node, p *Node) bool {
	if n == nil || p == nil {
		return n == nil && p == nil
	}
	parents := n.Parents()
	if len(parents) != len(p.Children) || n.ID != p.ID || n.Depth != p.Depth {
		return false
	}
	for i := range parents {
		if !sameShape(parents[i], p.Children[i]) {
			return false
		}
	}
	return true
}

func TestBuildPreservesShape(t *testing.T) {
	tests := []struct {
		name string
		tree *pedigree.Node
	}{
		{"single", &pedigree.Node{ID: "x", Identifier: "X"}},
		{"father only", &pedigree.Node{ID: "x", Father: &pedigree.Node{ID: "f", Depth: 1}}},
		{"inbred", inbredTree()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Build(tt.tree, "")
			if !sameShape(tt.tree, view) {
				t.Error("presentation tree does not mirror pedigree")
			}
			if view.Count() != tt.tree.Count() {
				t.Errorf("Count() = %d, want %d", view.Count(), tt.tree.Count())
			}
		})
	}
	if Build(nil, "x") != nil {
		t.Error("Build(nil) != nil")
	}
}

func TestBuildDeterministic(t *testing.T) {
	tree := inbredTree()
	if !reflect.DeepEqual(Build(tree, "C1"), Build(tree, "C1")) {
		t.Error("Build is not deterministic")
	}
}

func TestBuildContent(t *testing.T) {
	view := Build(inbredTree(), "C1")

	if got := view.Content.Label(); got != "Bessie ♀\nC1" {
		t.Errorf("root label = %q", got)
	}
	dam := view.Children[0]
	if dam.Content.Name != Unnamed {
		t.Errorf("unnamed dam shows %q", dam.Content.Name)
	}
	granny := dam.Children[0]
	if granny.Content.BirthYear != "2015" || granny.Content.Label() != "Granny ♀\nG1\nb. 2015" {
		t.Errorf("granny content = %+v", granny.Content)
	}
	if sire := view.Children[1]; sire.Style.Gender != animal.Male || sire.Content.GenderGlyph != "♂" {
		t.Errorf("sire style = %+v", sire.Style)
	}
}

func TestBuildSelectsRootOnly(t *testing.T) {
	tree := inbredTree()

	view := Build(tree, "C1")
	if !view.Style.Selected {
		t.Error("root not selected")
	}

	// G1 appears twice deeper in the tree; neither copy is highlighted.
	view = Build(tree, "G1")
	count := 0
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Style.Selected {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(view)
	if count != 0 {
		t.Errorf("%d non-root nodes selected", count)
	}
}
