// Package visualization renders diffraction images and radially averaged
// curves to files for inspection. It sits outside the numeric core: nothing
// here feeds back into the analysis.
package visualization

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/trbritt/iris-ued/pkg/radial"
)

// SaveCurvePlot draws the given curves into one labeled plot and saves it
// to path. The image format follows the file extension (png, pdf, svg).
func SaveCurvePlot(path, title string, curves ...*radial.Curve) error {
	if len(curves) == 0 {
		return fmt.Errorf("no curves to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "radius (px)"
	p.Y.Label.Text = "Intensity"
	p.Legend.Top = true

	for _, c := range curves {
		xys := make(plotter.XYs, c.Len())
		for i := range xys {
			xys[i].X = c.X[i]
			xys[i].Y = c.Y[i]
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("building line for %q: %w", c.Label, err)
		}
		p.Add(line)
		p.Legend.Add(c.Label, line)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
