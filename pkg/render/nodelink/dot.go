package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// Options configures diagram layout.
type Options struct {
	// Orientation defaults to render.Horizontal.
	Orientation render.Orientation
	// RankSep is the gap between generations in inches. Defaults to 0.6.
	RankSep float64
	// NodeSep is the gap between boxes of one generation. Defaults to 0.25.
	NodeSep float64
	// DPI is written into the graph when set. Only raster output uses it.
	DPI float64
}

const (
	defaultRankSep = 0.6
	defaultNodeSep = 0.25
)

var fillColors = map[animal.Gender]string{
	animal.Female:  "#f9d9e6",
	animal.Male:    "#d5e5f7",
	animal.Unknown: "#eeeeee",
}

// ToDOT converts a presentation tree to Graphviz DOT source.
//
// Node names are assigned in pre-order (n0 is the root) so an ancestor that
// appears on several paths becomes several boxes.
func ToDOT(view *presentation.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pedigree {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(opts.Orientation))
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#777777\"];\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", num(opts.RankSep, defaultRankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", num(opts.NodeSep, defaultNodeSep))
	if opts.DPI > 0 {
		fmt.Fprintf(&buf, "  dpi=%s;\n", num(opts.DPI, 0))
	}
	buf.WriteString("\n")

	if view != nil {
		var edges []string
		next := 0
		var walk func(n *presentation.Node) string
		walk = func(n *presentation.Node) string {
			name := "n" + strconv.Itoa(next)
			next++
			fmt.Fprintf(&buf, "  %s [%s];\n", name, strings.Join(fmtAttrs(n), ", "))
			for _, c := range n.Children {
				edges = append(edges, fmt.Sprintf("  %s -> %s;\n", name, walk(c)))
			}
			return name
		}
		walk(view)

		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rankdir(o render.Orientation) string {
	if o == render.Vertical {
		return "BT"
	}
	return "LR"
}

func num(v, def float64) string {
	if v <= 0 {
		v = def
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtAttrs(n *presentation.Node) []string {
	fill, ok := fillColors[n.Style.Gender]
	if !ok {
		fill = fillColors[animal.Unknown]
	}
	attrs := []string{
		"label=" + dotQuote(n.Content.Label()),
		fmt.Sprintf("fillcolor=%q", fill),
	}
	if n.Style.Selected {
		attrs = append(attrs, "penwidth=3", "color=\"#333333\"")
	}
	return attrs
}

// dotQuote returns s as a DOT double-quoted string. Only the quote and the
// backslash are escaped; a newline becomes the \n line break and other
// control characters are dropped. Everything else is written as UTF-8.
func dotQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT source to PNG using Graphviz. Resolution follows the
// graph's dpi attribute; see Options.DPI.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing has a zero
// origin and pixel dimensions matching its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
