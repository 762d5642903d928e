package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

func sampleView() *presentation.Node {
	granny := func() *presentation.Node {
		return &presentation.Node{ID: "g", Depth: 2, Content: presentation.Content{Name: "Granny", Identifier: "G1", GenderGlyph: "♀"}, Style: presentation.Style{Gender: animal.Female}}
	}
	return &presentation.Node{
		ID:      "c",
		Content: presentation.Content{Name: "Bessie", Identifier: "C1", GenderGlyph: "♀", BirthYear: "2020"},
		Style:   presentation.Style{Gender: animal.Female, Selected: true},
		Children: []*presentation.Node{
			{ID: "d", Depth: 1, Content: presentation.Content{Name: "Dam", Identifier: "D1", GenderGlyph: "♀"}, Style: presentation.Style{Gender: animal.Female}, Children: []*presentation.Node{granny()}},
			{ID: "s", Depth: 1, Content: presentation.Content{Name: "Sire", Identifier: "S1", GenderGlyph: "♂"}, Style: presentation.Style{Gender: animal.Male}, Children: []*presentation.Node{granny()}},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleView(), Options{})

	for _, want := range []string{
		"rankdir=LR;",
		"ranksep=0.6;",
		`n0 [label="Bessie ♀\nC1\nb. 2020", fillcolor="#f9d9e6", penwidth=3`,
		"n0 -> n1;",
		"n1 -> n2;",
		"n0 -> n3;",
		"n3 -> n4;",
		`fillcolor="#d5e5f7"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dpi=") {
		t.Error("dpi written without Options.DPI")
	}
	if got := strings.Count(dot, `label="Granny`); got != 2 {
		t.Errorf("shared ancestor drawn %d times, want 2", got)
	}
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(nil, Options{Orientation: render.Vertical, RankSep: 1.5, DPI: 192})
	for _, want := range []string{"rankdir=BT;", "ranksep=1.5;", "dpi=192;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("empty view produced edges")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleView(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `viewBox="0 0 `) || !strings.Contains(s, "Bessie") {
		t.Errorf("unexpected SVG output: %.200s", s)
	}
}

func TestCapturePaginatedWithoutConverter(t *testing.T) {
	r := NewRenderer(Options{}, nil)
	if r.CanPaginate() {
		t.Fatal("CanPaginate() with nil converter")
	}
	_, err := r.CapturePaginated(context.Background(), sampleView(), render.PageOptions{})
	if !errors.Is(err, errors.ErrCodeCapabilityUnavailable) {
		t.Errorf("error = %v, want CAPABILITY_UNAVAILABLE", err)
	}
}

func TestCaptureRaster(t *testing.T) {
	png, err := NewRenderer(Options{}, nil).CaptureRaster(context.Background(), sampleView(), render.RasterOptions{Scale: 1})
	if err != nil {
		t.Fatalf("CaptureRaster: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG")
	}
}

func TestRendererFingerprint(t *testing.T) {
	h := NewRenderer(Options{Orientation: render.Horizontal}, nil)
	v := NewRenderer(Options{Orientation: render.Vertical}, nil)
	if h.Fingerprint() == v.Fingerprint() {
		t.Errorf("fingerprints equal for different orientations: %q", h.Fingerprint())
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bessie", `"Bessie"`},
		{"line breaks", "Bessie ♀\nC1", `"Bessie ♀\nC1"`},
		{"quote", `Old "Red"`, `"Old \"Red\""`},
		{"backslash", `Barn\7`, `"Barn\\7"`},
		{"dot escape stays literal", `a\lb`, `"a\\lb"`},
		{"no-break space kept", "Blüm\u00a0chen", "\"Blüm\u00a0chen\""},
		{"control dropped", "Bes\x01sie\r", `"Bessie"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dotQuote(tt.in); got != tt.want {
				t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
