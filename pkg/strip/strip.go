package strip

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/stripweave/pkg/errors"
)

// Axis selects the direction strips are cut along.
type Axis int

const (
	// Column cuts vertical strips of width step, left to right.
	Column Axis = iota
	// Row cuts horizontal strips of height step, top to bottom.
	Row
)

// String returns the axis name used in logs and cache keys.
func (a Axis) String() string {
	switch a {
	case Column:
		return "column"
	case Row:
		return "row"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Length returns the extent of r along the axis.
func (a Axis) Length(r image.Rectangle) int {
	if a == Row {
		return r.Dy()
	}
	return r.Dx()
}

// Strip is a contiguous range along an axis, measured from the image origin.
type Strip struct {
	Index  int // position in the set, 0-based
	Offset int // first pixel column (or row)
	Size   int // width (or height) in pixels
}

// End returns the offset one past the last pixel of the strip.
func (s Strip) End() int { return s.Offset + s.Size }

// Rect returns the strip's rectangle within bounds.
func (s Strip) Rect(bounds image.Rectangle, axis Axis) image.Rectangle {
	if axis == Row {
		return image.Rect(bounds.Min.X, bounds.Min.Y+s.Offset, bounds.Max.X, bounds.Min.Y+s.End())
	}
	return image.Rect(bounds.Min.X+s.Offset, bounds.Min.Y, bounds.Min.X+s.End(), bounds.Max.Y)
}

// Set is an ordered sequence of strips.
type Set []Strip

// Partition splits length into strips of size step in ascending order.
// The last strip holds the remainder when length is not a multiple of step.
func Partition(length, step int) (Set, error) {
	if err := errors.ValidateStep(step); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "negative length %d", length)
	}
	set := make(Set, 0, (length+step-1)/step)
	for off := 0; off < length; off += step {
		set = append(set, Strip{Index: len(set), Offset: off, Size: min(step, length-off)})
	}
	return set, nil
}

// Odd returns the 1st, 3rd, 5th, ... strips in original order.
func (s Set) Odd() Set { return s.every(0) }

// Even returns the 2nd, 4th, 6th, ... strips in original order.
func (s Set) Even() Set { return s.every(1) }

func (s Set) every(start int) Set {
	out := make(Set, 0, (len(s)+1-start)/2)
	for i := start; i < len(s); i += 2 {
		out = append(out, s[i])
	}
	return out
}

// Len returns the summed size of all strips.
func (s Set) Len() int {
	n := 0
	for _, st := range s {
		n += st.Size
	}
	return n
}

// Extract copies a single strip out of img.
func Extract(img image.Image, s Strip, axis Axis) *image.NRGBA {
	return imaging.Crop(img, s.Rect(img.Bounds(), axis))
}
