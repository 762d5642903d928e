package presentation

import (
	"strconv"
	"strings"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// Content is the text shown for one animal.
type Content struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	GenderGlyph string `json:"gender_glyph"`
	// BirthYear is empty when the birth date is unknown.
	BirthYear string `json:"birth_year,omitempty"`
}

// Lines returns the content as display lines: name with gender glyph,
// identifier, and birth year when known.
func (c Content) Lines() []string {
	lines := []string{c.Name + " " + c.GenderGlyph, c.Identifier}
	if c.BirthYear != "" {
		lines = append(lines, "b. "+c.BirthYear)
	}
	return lines
}

// Label joins Lines with newlines.
func (c Content) Label() string {
	return strings.Join(c.Lines(), "\n")
}

// Style carries the tags a renderer uses to pick colors and emphasis.
type Style struct {
	Gender   animal.Gender `json:"gender"`
	Selected bool          `json:"selected"`
}

// Node is one box in the rendered tree.
type Node struct {
	ID       string  `json:"id"`
	Depth    int     `json:"depth"`
	Content  Content `json:"content"`
	Style    Style   `json:"style"`
	Children []*Node `json:"children,omitempty"`
}

// Unnamed is shown in place of a missing name.
const Unnamed = "Unnamed"

// Build maps tree into a presentation tree. The root is marked selected when
// its identifier equals selectedID; repeated ancestors deeper in the tree are
// never marked. A nil tree maps to nil.
func Build(tree *pedigree.Node, selectedID string) *Node {
	if tree == nil {
		return nil
	}
	root := build(tree)
	root.Style.Selected = selectedID != "" && tree.Identifier == selectedID
	return root
}

func build(n *pedigree.Node) *Node {
	p := &Node{
		ID:      n.ID,
		Depth:   n.Depth,
		Content: content(n),
		Style:   Style{Gender: n.Gender},
	}
	for _, parent := range n.Parents() {
		p.Children = append(p.Children, build(parent))
	}
	return p
}

func content(n *pedigree.Node) Content {
	c := Content{
		Name:        n.Name,
		Identifier:  n.Identifier,
		GenderGlyph: n.Gender.Glyph(),
	}
	if c.Name == "" {
		c.Name = Unnamed
	}
	if n.BirthDate != nil {
		c.BirthYear = strconv.Itoa(n.BirthDate.Year)
	}
	return c
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
