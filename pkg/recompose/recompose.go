// Package recompose runs the three-stage strip recomposition of one image.
//
// Stage A interleaves vertical strips of the original, Stage B interleaves
// horizontal strips of Stage A, and the composite stacks the original,
// Stage A and Stage B from top to bottom:
//
//	+----------+
//	| original |
//	+----------+
//	| stage A  |  Interleave(original, Column, step)
//	+----------+
//	| stage B  |  Interleave(stage A, Row, step)
//	+----------+
//
// Both stages keep the dimensions of their input, so the composite is as
// wide as the original and three times as tall.
package recompose

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/stripweave/pkg/errors"
	"github.com/matzehuels/stripweave/pkg/strip"
)

// Remainder policies for images whose sides are not multiples of the step.
const (
	// RemainderKeep keeps the trailing narrow strip at its true size.
	RemainderKeep = "keep"
	// RemainderCrop crops the image to a multiple of the step before any stage.
	RemainderCrop = "crop"
)

// DefaultRemainder is the remainder policy applied when none is set.
const DefaultRemainder = RemainderKeep

// ValidRemainders is the set of supported remainder policies.
var ValidRemainders = map[string]bool{
	RemainderKeep: true,
	RemainderCrop: true,
}

// ValidateRemainder checks that a remainder policy is valid.
func ValidateRemainder(policy string) error {
	if !ValidRemainders[policy] {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"invalid remainder: %q (must be one of: keep, crop)", policy)
	}
	return nil
}

// Params holds everything a recomposition needs. It is passed explicitly;
// nothing is read from global state.
type Params struct {
	// Step is the strip width and height in pixels. Must be >= 1.
	Step int

	// Remainder selects the remainder policy (default keep).
	Remainder string

	// MaxStepRatio caps Step at int(max(W, H) * MaxStepRatio). Zero disables the cap.
	MaxStepRatio float64

	// Workers bounds concurrent row copies inside a stage. Zero or one runs serially.
	Workers int
}

// Validate checks parameters that do not depend on the image.
func (p Params) Validate() error {
	if err := errors.ValidateStep(p.Step); err != nil {
		return err
	}
	if p.Remainder != "" {
		if err := ValidateRemainder(p.Remainder); err != nil {
			return err
		}
	}
	if p.MaxStepRatio < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "max_step_ratio must be >= 0, got %g", p.MaxStepRatio)
	}
	if p.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "workers must be >= 0, got %d", p.Workers)
	}
	return nil
}

// Result holds the three panels and their composite.
type Result struct {
	Original   *image.NRGBA // input after normalization (and cropping, if requested)
	Vertical   *image.NRGBA // stage A
	Horizontal *image.NRGBA // stage B
	Composite  *image.NRGBA
}

// Panels returns the three panels in composite order.
func (r *Result) Panels() []*image.NRGBA {
	return []*image.NRGBA{r.Original, r.Vertical, r.Horizontal}
}

// Recompose runs both strip stages on img and stacks the results.
func Recompose(img image.Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image has zero width or height")
	}

	b := img.Bounds()
	if err := errors.ValidateStepRange(p.Step, b.Dx(), b.Dy(), p.MaxStepRatio); err != nil {
		return nil, err
	}

	original, err := prepareOriginal(img, p)
	if err != nil {
		return nil, err
	}

	opts := []strip.Option{strip.WithWorkers(p.Workers)}

	vertical, err := strip.Interleave(original, strip.Column, p.Step, opts...)
	if err != nil {
		return nil, fmt.Errorf("vertical stage: %w", err)
	}
	horizontal, err := strip.Interleave(vertical, strip.Row, p.Step, opts...)
	if err != nil {
		return nil, fmt.Errorf("horizontal stage: %w", err)
	}

	return &Result{
		Original:   original,
		Vertical:   vertical,
		Horizontal: horizontal,
		Composite:  Stack(original, vertical, horizontal),
	}, nil
}

// prepareOriginal normalizes img to NRGBA at origin (0, 0) and applies the
// crop policy.
func prepareOriginal(img image.Image, p Params) (*image.NRGBA, error) {
	if p.Remainder != RemainderCrop {
		return imaging.Clone(img), nil
	}
	b := img.Bounds()
	w := b.Dx() / p.Step * p.Step
	h := b.Dy() / p.Step * p.Step
	if w == 0 || h == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration,
			"step %d leaves nothing after cropping a %dx%d image", p.Step, b.Dx(), b.Dy())
	}
	return imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+h)), nil
}

// Stack places images top to bottom, left aligned. The result is as wide as
// the widest image and as tall as all images together; uncovered area is
// transparent.
func Stack(imgs ...image.Image) *image.NRGBA {
	width, height := 0, 0
	for _, img := range imgs {
		s := img.Bounds().Size()
		width = max(width, s.X)
		height += s.Y
	}

	dst := imaging.New(width, height, color.Transparent)
	y := 0
	for _, img := range imgs {
		dst = imaging.Paste(dst, img, image.Pt(0, y))
		y += img.Bounds().Dy()
	}
	return dst
}
