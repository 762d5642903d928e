// Package pkg provides the core libraries for pedigree, a registry of animals
// and their parents that renders multi-generation ancestry trees.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Domain: [animal] records and [pedigree] ancestry resolution
//  2. Persistence: [store] backends behind the animal.Store contract
//  3. Rendering: [render] presentation trees, Graphviz layouts and conversion
//  4. Delivery: [export] pipeline, [cache] and [artifact] sinks
//
// # Architecture
//
// The typical data flow:
//
//	animal.Store (memory, SQLite, Postgres, MongoDB)
//	         ↓
//	    [pedigree] package (breadth-first ancestry, one batch per generation)
//	         ↓
//	    [render/presentation] package (boxes, glyphs, selection)
//	         ↓
//	    [render/nodelink] package (Graphviz layout)
//	         ↓
//	    PNG/PDF/JSON artifact → cache → sink
//
// # Quick Start
//
// Record two animals and export the ancestry of the younger one:
//
//	reg := animal.NewRegistry(memory.New())
//	cattle, _ := reg.CreateType(ctx, &animal.Type{Name: "Cattle"})
//	dam, _ := reg.CreateAnimal(ctx, &animal.Record{
//	    Identifier: "D-1", Gender: animal.Female, TypeID: cattle.ID, Active: true,
//	})
//	calf, _ := reg.CreateAnimal(ctx, &animal.Record{
//	    Identifier: "C-1", TypeID: cattle.ID, MotherID: dam.ID, Active: true,
//	})
//
//	tree, _ := pedigree.NewResolver(reg, pedigree.Options{}).Resolve(ctx, calf.ID, 3)
//
//	r := nodelink.NewRenderer(nodelink.Options{}, nil)
//	p := export.New(export.Options{Capabilities: export.Capabilities{Raster: r}})
//	a, _ := p.Export(ctx, render.FormatPNG, tree)
//
// # Main Packages
//
// [animal] - Records, types and the Registry that validates writes and
// rejects parent assignments that would create a loop.
//
// [pedigree] - Resolver, Node trees and the Loader that keeps only the most
// recent load of a display session.
//
// [store] - memory, sqlstore (SQLite and Postgres) and mongo backends, plus
// the storetest conformance suite every backend passes.
//
// [render] - Formats, page and raster options, and the SVG converter.
// [render/presentation] builds what a viewer shows; [render/nodelink] lays
// it out with Graphviz.
//
// [export] - One-at-a-time export pipeline reporting progress to a Surface.
//
// [cache] - Artifact cache with file, Redis and null backends.
//
// [artifact] - Exported files and the directory and S3 sinks that keep them.
//
// [observability] - Hooks for resolution, rendering, export, cache and HTTP
// events.
//
// [errors] - Coded errors shared by every layer.
//
// [animal]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/animal
// [pedigree]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/pedigree
// [store]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/render
// [render/presentation]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/render/presentation
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/render/nodelink
// [export]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/export
// [cache]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/cache
// [artifact]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/artifact
// [observability]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/errors
package pkg
