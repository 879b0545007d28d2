package io

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/matzehuels/stripweave/pkg/errors"
)

// ReadImage decodes an image from r.
//
// The format is detected from the data. ReadImage returns an INVALID_IMAGE
// error if the data cannot be decoded or the image has zero width or height.
// ReadImage does not close r.
func ReadImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	if img.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image has zero width or height")
	}
	return img, nil
}

// DecodeBytes decodes an in-memory image. See [ReadImage].
func DecodeBytes(data []byte) (image.Image, error) {
	return ReadImage(bytes.NewReader(data))
}

// ImportImage reads and decodes the image file at path.
func ImportImage(path string) (image.Image, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ReadFile returns the raw bytes of the image file at path, mapping a
// missing file to FILE_NOT_FOUND and other read failures to INVALID_IMAGE.
func ReadFile(path string) ([]byte, error) {
	if err := errors.ValidateImagePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image file not found at path: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "read %s", path)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image file is empty: %s", path)
	}
	return data, nil
}

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Width  int
	Height int
	Format string // decoder name, e.g. "png"
}

// Probe reads the dimensions and format of encoded image data.
func Probe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeInvalidImage, err, "read image header")
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
