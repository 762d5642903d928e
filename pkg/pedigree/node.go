package pedigree

import "github.com/matzehuels/pedigree/pkg/animal"

// Node is one animal in a resolved pedigree.
//
// Mother and Father are nil when the parent is absent: not recorded, record
// missing, or cut by the cycle guard.
type Node struct {
	ID         string        `json:"id"`
	Identifier string        `json:"identifier"`
	Name       string        `json:"name,omitempty"`
	Gender     animal.Gender `json:"gender"`
	BirthDate  *animal.Date  `json:"birth_date"`
	Type       string        `json:"type,omitempty"`
	Depth      int           `json:"depth"`
	Mother     *Node         `json:"mother"`
	Father     *Node         `json:"father"`
}

func newNode(r *animal.Record, depth int) *Node {
	n := &Node{
		ID:         r.ID,
		Identifier: r.Identifier,
		Name:       r.Name,
		Gender:     r.Gender,
		Type:       r.TypeName,
		Depth:      depth,
	}
	if r.BirthDate != nil {
		d := *r.BirthDate
		n.BirthDate = &d
	}
	return n
}

// Parents returns the non-nil parents, mother first.
func (n *Node) Parents() []*Node {
	out := make([]*Node, 0, 2)
	if n.Mother != nil {
		out = append(out, n.Mother)
	}
	if n.Father != nil {
		out = append(out, n.Father)
	}
	return out
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.BirthDate != nil {
		d := *n.BirthDate
		c.BirthDate = &d
	}
	c.Mother = n.Mother.Clone()
	c.Father = n.Father.Clone()
	return &c
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	return 1 + n.Mother.Count() + n.Father.Count()
}

// MaxDepth returns the largest Depth in the subtree, or -1 for a nil tree.
func (n *Node) MaxDepth() int {
	if n == nil {
		return -1
	}
	return max(n.Depth, n.Mother.MaxDepth(), n.Father.MaxDepth())
}

// Walk calls fn for every node in pre-order, mother before father.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	n.Mother.Walk(fn)
	n.Father.Walk(fn)
}

// DisplayName returns the name, falling back to the identifier.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Identifier
}
