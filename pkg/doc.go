// Package pkg provides the libraries behind the stripweave command.
//
// # Overview
//
// Stripweave slices an image into strips of a fixed size, moves every odd
// strip in front of every even strip, and does so first across columns and
// then across rows. The pkg directory is organized by concern:
//
//  1. [strip] - Partitioning and the odd/even interleave along one axis
//  2. [recompose] - The two-stage recomposition and the stacked composite
//  3. [pipeline] - Orchestration (decode → recompose → render) with caching
//  4. [io], [render], [fonts] - Image codecs, panel captions, embedded fonts
//  5. [config], [cache], [observability], [errors] - Supporting infrastructure
//
// # Architecture
//
//	image bytes
//	     ↓
//	[io] decode (png, jpeg, gif, tiff, bmp, webp)
//	     ↓
//	[recompose] Interleave(original, Column) → Interleave(stage A, Row) → Stack
//	     ↓
//	[render] optional captions, then [io] encode
//	     ↓
//	composite (W × 3H), optionally the two stages
//
// # Quick Start
//
//	img, _ := io.ImportImage("photo.png")
//	res, err := recompose.Recompose(img, recompose.Params{Step: 8})
//	if err != nil {
//	    return err
//	}
//	return io.ExportImage(res.Composite, "photo_recomposed.png", io.FormatPNG)
//
// [strip]: github.com/matzehuels/stripweave/pkg/strip
// [recompose]: github.com/matzehuels/stripweave/pkg/recompose
// [pipeline]: github.com/matzehuels/stripweave/pkg/pipeline
// [io]: github.com/matzehuels/stripweave/pkg/io
// [render]: github.com/matzehuels/stripweave/pkg/render
// [fonts]: github.com/matzehuels/stripweave/pkg/fonts
// [config]: github.com/matzehuels/stripweave/pkg/config
// [cache]: github.com/matzehuels/stripweave/pkg/cache
// [observability]: github.com/matzehuels/stripweave/pkg/observability
// [errors]: github.com/matzehuels/stripweave/pkg/errors
package pkg
