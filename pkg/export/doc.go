// Package export snapshots a loaded pedigree into an image (PNG), a
// paginated document (PDF) or structured data (JSON).
//
// # Sequencing
//
// Every export follows the same steps:
//
//  1. Fail with EMPTY_DATASET when no tree is loaded. Nothing else runs.
//  2. Close any overlay on the [Surface] so it cannot appear in a capture.
//  3. Show the loading indicator.
//  4. Name the file pedigree_<name>_<YYYYMMDD_HHMM>.<ext>.
//  5. Capture or serialize, consulting the artifact cache for captures.
//  6. Hand the artifact to the sink, when one is configured.
//  7. Report exactly once, success or failure, then release the loading
//     indicator.
//
// A [Pipeline] runs one export at a time. A call made while another is in
// flight fails immediately with BUSY and is reported like any other failure.
//
// # Capabilities
//
// Raster and paginated capture are injected once through [Capabilities].
// A nil capability is reported as CAPABILITY_UNAVAILABLE when an export
// needs it:
//
//	p := export.New(export.Options{
//	    Capabilities: export.Capabilities{Raster: renderer},
//	    Surface:      spinnerSurface,
//	})
//	a, err := p.ExportImage(ctx, loader.Current())
package export
