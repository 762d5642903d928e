// Package render holds the output formats and format conversion shared by
// the pedigree renderers.
//
// # Overview
//
// Pedigrees are drawn as node-link diagrams by the [nodelink] subpackage,
// which produces SVG and PNG in-process through Graphviz. Paginated output
// (PDF) is produced by converting that SVG with the external rsvg-convert
// tool from librsvg:
//
//	conv, err := render.LookupConverter()
//	if err != nil {
//	    // paginated capture unavailable on this host
//	}
//	pdf, err := conv.ToPDF(ctx, svg, render.PageOptions{Size: render.PageA4})
//
// LookupConverter is meant to be called once at startup; its result decides
// whether the paginated capability exists at all.
//
// [nodelink]: github.com/matzehuels/pedigree/pkg/render/nodelink
package render
