package strip

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stripweave/pkg/errors"
)

// Option configures a strip pass.
type Option func(*passOptions)

type passOptions struct {
	workers int
}

// WithWorkers copies output rows in up to n concurrent bands.
// Values below 2 keep the pass on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *passOptions) { o.workers = n }
}

// Interleave partitions img along axis and returns the odd group followed by
// the even group, joined along the same axis. The result has the input's
// dimensions and its origin at (0, 0).
func Interleave(img *image.NRGBA, axis Axis, step int, opts ...Option) (*image.NRGBA, error) {
	set, o, err := prepare(img, axis, step, opts)
	if err != nil {
		return nil, err
	}
	order := make(Set, 0, len(set))
	order = append(order, set.Odd()...)
	order = append(order, set.Even()...)
	return assemble(img, axis, order, o.workers), nil
}

// Groups returns the odd and even groups of img as separate images.
// The even image has zero size along axis when img yields a single strip.
func Groups(img *image.NRGBA, axis Axis, step int, opts ...Option) (odd, even *image.NRGBA, err error) {
	set, o, err := prepare(img, axis, step, opts)
	if err != nil {
		return nil, nil, err
	}
	return assemble(img, axis, set.Odd(), o.workers), assemble(img, axis, set.Even(), o.workers), nil
}

// Join places b after a along axis: to the right of a for Column, below a
// for Row. An empty b leaves a unchanged.
func Join(a, b image.Image, axis Axis) *image.NRGBA {
	as, bs := a.Bounds().Size(), b.Bounds().Size()
	var w, h int
	var at image.Point
	if axis == Row {
		w, h = max(as.X, bs.X), as.Y+bs.Y
		at = image.Pt(0, as.Y)
	} else {
		w, h = as.X+bs.X, max(as.Y, bs.Y)
		at = image.Pt(as.X, 0)
	}
	dst := imaging.New(w, h, color.Transparent)
	dst = imaging.Paste(dst, a, image.Pt(0, 0))
	if bs.X > 0 && bs.Y > 0 {
		dst = imaging.Paste(dst, b, at)
	}
	return dst
}

func prepare(img *image.NRGBA, axis Axis, step int, opts []Option) (Set, passOptions, error) {
	var o passOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := errors.ValidateStep(step); err != nil {
		return nil, o, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, o, errors.New(errors.ErrCodeInvalidImage, "image has zero width or height")
	}
	set, err := Partition(axis.Length(img.Bounds()), step)
	return set, o, err
}

// assemble copies the strips of order, in sequence, into a new image that is
// order.Len() long along axis and as wide as src across it.
func assemble(src *image.NRGBA, axis Axis, order Set, workers int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if axis == Row {
		h = order.Len()
	} else {
		w = order.Len()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	// For rows, each destination row maps to exactly one source row.
	var rows []int
	if axis == Row {
		rows = make([]int, 0, h)
		for _, s := range order {
			for i := s.Offset; i < s.End(); i++ {
				rows = append(rows, i)
			}
		}
	}

	rowBytes := w * 4
	copyRows := func(lo, hi int) {
		for dy := lo; dy < hi; dy++ {
			d := dst.Pix[dy*dst.Stride : dy*dst.Stride+rowBytes]
			if axis == Row {
				off := src.PixOffset(b.Min.X, b.Min.Y+rows[dy])
				copy(d, src.Pix[off:off+rowBytes])
				continue
			}
			srow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+dy):]
			x := 0
			for _, s := range order {
				n := s.Size * 4
				copy(d[x:x+n], srow[s.Offset*4:s.Offset*4+n])
				x += n
			}
		}
	}
	forEachBand(h, workers, copyRows)
	return dst
}

// forEachBand calls fn over [0, n) split into at most workers bands.
func forEachBand(n, workers int, fn func(lo, hi int)) {
	if workers < 2 || n < 2 {
		fn(0, n)
		return
	}
	workers = min(workers, n)
	band := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += band {
		hi := min(lo+band, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
