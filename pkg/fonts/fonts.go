// Package fonts provides the font used for panel captions.
//
// The font is Go Regular from golang.org/x/image/font/gofont, compiled into
// the binary, so captions render identically on every system.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the family name of the caption font.
const FontFamily = "Go"

// Cache for the parsed font (parsed once on first access).
var (
	parsed     *opentype.Font
	parsedErr  error
	parsedOnce sync.Once
)

// GoRegularTTF returns the TTF font data.
func GoRegularTTF() []byte {
	return goregular.TTF
}

// GoRegular returns the parsed caption font.
func GoRegular() (*opentype.Font, error) {
	parsedOnce.Do(func() {
		parsed, parsedErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parsedErr
}

// Face returns a caption face at the given size in pixels.
// Callers must Close the face when done.
func Face(size float64) (font.Face, error) {
	f, err := GoRegular()
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", FontFamily, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("fonts: face %.1fpx: %w", size, err)
	}
	return face, nil
}
