// Package io reads and writes raster images for the recomposition pipeline.
//
// # Formats
//
// Reading supports PNG, JPEG, GIF, TIFF, BMP and WebP. Writing supports every
// format except WebP:
//
//	format   read  write  extensions
//	png      yes   yes    .png
//	jpeg     yes   yes    .jpg .jpeg
//	gif      yes   yes    .gif
//	tiff     yes   yes    .tif .tiff
//	bmp      yes   yes    .bmp
//	webp     yes   no     .webp
//
// Decoding and encoding are delegated to github.com/disintegration/imaging;
// WebP decoding is registered from golang.org/x/image/webp. JPEG inputs with
// an EXIF orientation tag are rotated upright on import.
//
// # Import
//
// Use [ImportImage] to read an image from a file path, or [ReadImage] to read
// from any io.Reader:
//
//	img, err := io.ImportImage("cat.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A missing file yields an error with code FILE_NOT_FOUND; unreadable data,
// unknown formats and images with zero width or height yield INVALID_IMAGE.
//
// # Export
//
// Use [ExportImage] to write an image to a file, or [WriteImage] to write to
// any io.Writer. [FormatFromPath] picks the format from a file extension:
//
//	format, err := io.FormatFromPath("out.jpg")
//	err = io.ExportImage(img, "out.jpg", format)
package io
