package io

import (
	"bytes"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/stripweave/pkg/errors"
)

// JPEGQuality is the quality used when writing JPEG output.
const JPEGQuality = 95

// WriteImage encodes img in the given format and writes it to w.
func WriteImage(img image.Image, w io.Writer, format Format) error {
	f, ok := imagingFormats[format]
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported output format: %q", format)
	}
	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return nil
}

// EncodeBytes encodes img in the given format and returns the bytes.
func EncodeBytes(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteImage(img, &buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportImage writes img to a file at path in the given format.
// This is a convenience wrapper around [WriteImage] for file-based output.
func ExportImage(img image.Image, path string, format Format) error {
	data, err := EncodeBytes(img, format)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes already encoded image data to path.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
