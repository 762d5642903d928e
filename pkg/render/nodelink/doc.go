// Package nodelink draws presentation trees as node-link diagrams.
//
// # Overview
//
// Each animal is a rounded box colored by gender, connected to its mother
// and father. Generations form Graphviz ranks, left to right by default or
// bottom to top when vertical orientation is requested.
//
// # Usage
//
// Convert a presentation tree to DOT, then render it:
//
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, nodelink.ToDOT(view, nodelink.Options{DPI: 192}))
//
// [Renderer] bundles layout options with an optional rsvg converter and
// implements the raster and paginated capture interfaces the export
// pipeline consumes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. PDF conversion requires librsvg (rsvg-convert).
package nodelink
