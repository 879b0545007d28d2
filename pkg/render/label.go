package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/stripweave/pkg/fonts"
)

// DefaultPanelLabels are the captions for original, stage A and stage B.
var DefaultPanelLabels = []string{"original", "vertical", "horizontal"}

const (
	minTextSize = 10.0
	maxTextSize = 32.0
)

var (
	captionBackground = color.NRGBA{A: 160}
	captionForeground = image.White
)

// LabelOption configures caption rendering.
type LabelOption func(*labeler)

type labeler struct {
	size float64
}

// WithTextSize sets the caption size in pixels. Zero selects a size from the
// panel height.
func WithTextSize(px float64) LabelOption {
	return func(l *labeler) { l.size = px }
}

// LabelPanels returns copies of panels with labels[i] drawn onto panels[i].
// Inputs are not modified. Panels without a matching label are copied as-is.
func LabelPanels(panels []*image.NRGBA, labels []string, opts ...LabelOption) ([]*image.NRGBA, error) {
	var l labeler
	for _, opt := range opts {
		opt(&l)
	}

	out := make([]*image.NRGBA, len(panels))
	for i, p := range panels {
		dst := imaging.Clone(p)
		if i < len(labels) && labels[i] != "" {
			if err := l.draw(dst, labels[i]); err != nil {
				return nil, fmt.Errorf("label panel %d: %w", i, err)
			}
		}
		out[i] = dst
	}
	return out, nil
}

// draw writes text on a translucent box in the top-left corner of dst.
func (l labeler) draw(dst *image.NRGBA, text string) error {
	size := l.size
	if size <= 0 {
		size = min(max(float64(dst.Bounds().Dy())/12, minTextSize), maxTextSize)
	}
	face, err := fonts.Face(size)
	if err != nil {
		return err
	}
	defer face.Close()

	m := face.Metrics()
	pad := int(size / 4)
	textW := font.MeasureString(face, text).Ceil()
	textH := (m.Ascent + m.Descent).Ceil()

	box := image.Rect(0, 0, textW+2*pad, textH+2*pad).Add(dst.Bounds().Min)
	draw.Draw(dst, box, image.NewUniform(captionBackground), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  captionForeground,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(box.Min.X + pad),
			Y: fixed.I(box.Min.Y+pad) + m.Ascent,
		},
	}
	d.DrawString(text)
	return nil
}
