package cli

import (
	"strings"

	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// Detail levels for terminal rendering, chosen from the view scale.
const (
	detailCompact = iota // identifier only
	detailNormal         // name and identifier
	detailFull           // name, identifier and birth year
)

func detailFor(scale float64) int {
	switch {
	case scale < 0.8:
		return detailCompact
	case scale < 1.3:
		return detailNormal
	default:
		return detailFull
	}
}

// treeText draws view as an indented tree, root first. scale widens the
// indentation and adds detail; plain disables colors for tests and pipes.
func treeText(view *presentation.Node, scale float64, plain bool) string {
	if view == nil {
		return ""
	}
	indent := max(2, int(4*scale+0.5))
	detail := detailFor(scale)

	var b strings.Builder
	b.WriteString(nodeText(view, detail, plain))
	b.WriteString("\n")
	writeChildren(&b, view.Children, "", indent, detail, plain)
	return b.String()
}

func writeChildren(b *strings.Builder, children []*presentation.Node, prefix string, indent, detail int, plain bool) {
	for i, child := range children {
		last := i == len(children)-1
		branch, cont := "├", "│"
		if last {
			branch, cont = "└", " "
		}
		b.WriteString(prefix)
		b.WriteString(branch + strings.Repeat("─", indent-2) + " ")
		b.WriteString(nodeText(child, detail, plain))
		b.WriteString("\n")
		writeChildren(b, child.Children, prefix+cont+strings.Repeat(" ", indent-1), indent, detail, plain)
	}
}

func nodeText(n *presentation.Node, detail int, plain bool) string {
	c := n.Content
	var parts []string
	switch detail {
	case detailCompact:
		parts = []string{c.GenderGlyph + " " + c.Identifier}
	default:
		parts = []string{c.GenderGlyph + " " + c.Name, c.Identifier}
		if detail == detailFull && c.BirthYear != "" {
			parts = append(parts, "b. "+c.BirthYear)
		}
	}
	text := strings.Join(parts, " · ")
	if plain {
		if n.Style.Selected {
			return "[" + text + "]"
		}
		return text
	}
	style := genderStyle(n.Style.Gender)
	if n.Style.Selected {
		style = style.Inherit(styleSelected)
	}
	return style.Render(text)
}
