package pipeline

import (
	"fmt"
	"image"

	imageio "github.com/matzehuels/stripweave/pkg/io"
	"github.com/matzehuels/stripweave/pkg/recompose"
	"github.com/matzehuels/stripweave/pkg/render"
)

// Render turns a recomposition into encoded artifacts. Options must already
// be validated.
//
// With Labels set, each panel is captioned before stacking, and the stage
// artifacts carry the same caption as their composite panel.
func Render(res *recompose.Result, opts Options) (map[string][]byte, error) {
	panels := res.Panels()
	composite := res.Composite

	if opts.Labels {
		labeled, err := render.LabelPanels(panels, render.DefaultPanelLabels)
		if err != nil {
			return nil, err
		}
		panels = labeled
		composite = recompose.Stack(panels[0], panels[1], panels[2])
	}

	images := map[string]image.Image{
		ArtifactComposite:  composite,
		ArtifactVertical:   panels[1],
		ArtifactHorizontal: panels[2],
	}

	format := imageio.Format(opts.Format)
	artifacts := make(map[string][]byte)
	for _, name := range opts.Artifacts() {
		data, err := imageio.EncodeBytes(images[name], format)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		artifacts[name] = data
	}
	return artifacts, nil
}
