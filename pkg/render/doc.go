// Package render draws annotations onto recomposed images.
//
// # Panel Captions
//
// [LabelPanels] writes a short caption ("original", "vertical",
// "horizontal") into the top-left corner of each panel before the panels are
// stacked into the composite. Captions are drawn over the pixels, so panel
// dimensions never change:
//
//	panels, err := render.LabelPanels(res.Panels(), render.DefaultPanelLabels)
//	composite := recompose.Stack(panels[0], panels[1], panels[2])
//
// Text uses the embedded Go Regular font from [fonts], scaled to the panel
// height unless [WithTextSize] is given.
//
// [fonts]: github.com/matzehuels/stripweave/pkg/fonts
package render
