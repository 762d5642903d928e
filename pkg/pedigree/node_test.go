package pedigree

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/pedigree/pkg/animal"
)

func sampleTree() *Node {
	born := animal.NewDate(2019, time.March, 2)
	return &Node{
		ID: "1", Identifier: "UK1", Name: "Bessie", Gender: animal.Female, BirthDate: &born, Type: "Cattle",
		Mother: &Node{ID: "2", Identifier: "UK2", Gender: animal.Female, Depth: 1},
	}
}

func TestNodeClone(t *testing.T) {
	orig := sampleTree()
	c := orig.Clone()
	if !reflect.DeepEqual(orig, c) {
		t.Fatal("clone differs from original")
	}
	c.Mother.Name = "changed"
	c.BirthDate.Year = 1900
	if orig.Mother.Name != "" || orig.BirthDate.Year != 2019 {
		t.Error("clone shares memory with original")
	}
	if (*Node)(nil).Clone() != nil {
		t.Error("nil.Clone() != nil")
	}
}

func TestNodeJSONShape(t *testing.T) {
	b, err := json.Marshal(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{`"birth_date":"2019-03-02"`, `"father":null`, `"type":"Cattle"`, `"depth":1`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}

func TestNodeHelpers(t *testing.T) {
	n := sampleTree()
	if n.Count() != 2 || n.MaxDepth() != 1 {
		t.Errorf("Count=%d MaxDepth=%d", n.Count(), n.MaxDepth())
	}
	if got := n.Mother.DisplayName(); got != "UK2" {
		t.Errorf("DisplayName fallback = %q", got)
	}
	var ids []string
	n.Walk(func(x *Node) { ids = append(ids, x.ID) })
	if !reflect.DeepEqual(ids, []string{"1", "2"}) {
		t.Errorf("Walk order = %v", ids)
	}
}

func TestParseGenerations(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", DefaultGenerations, false},
		{"4", 4, false},
		{"0", 1, false},
		{"12", 5, false},
		{"-2", 1, false},
		{"three", 0, true},
		{"2.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGenerations(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGenerations(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseGenerations(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
