// Package center locates the center of a diffraction pattern by maximizing
// the mean intensity on a candidate ring with a derivative-free simplex
// search.
package center

import (
	"math"

	"github.com/trbritt/iris-ued/internal/models"
)

// Default presets for the historical detector geometry. The scale factor
// separates the optimizer's working units from pixel units to condition the
// simplex step size; the row cutoff excludes the detector region occupied
// by the beam block.
const (
	DefaultScaleFactor = 20.0
	DefaultTolerance   = 10.0
	DefaultRowCutoff   = 550.0
)

// DegenerateCost is returned when a candidate ring selects no pixels, or
// only pixels of zero mean intensity. A huge finite cost keeps the simplex
// search away from degenerate candidates without feeding it NaN or Inf.
const DegenerateCost = math.MaxFloat64

// Metric scores a candidate ring on an image. Candidates are given in
// scaled coordinates: pixel position and radius divided by ScaleFactor.
// The score is the reciprocal of the mean intensity over the pixels lying
// on the ring, so that maximizing ring intensity becomes a minimization.
type Metric struct {
	// ScaleFactor converts scaled candidate coordinates back to pixels.
	ScaleFactor float64

	// Tolerance bounds the absolute circle residual
	// (px-x)^2 + (py-y)^2 - r^2 for a pixel to count as on the ring.
	Tolerance float64

	// RowCutoff excludes pixels whose row index does not exceed it.
	RowCutoff float64
}

// NewMetric returns a Metric with the historical presets.
func NewMetric() *Metric {
	return &Metric{
		ScaleFactor: DefaultScaleFactor,
		Tolerance:   DefaultTolerance,
		RowCutoff:   DefaultRowCutoff,
	}
}

// Evaluate scores the scaled candidate (x, y, r) against the image.
func (m *Metric) Evaluate(img *models.Image, x, y, r float64) float64 {
	sx := x * m.ScaleFactor
	sy := y * m.ScaleFactor
	sr := r * m.ScaleFactor

	var sum float64
	var count int
	for row := 0; row < img.Height; row++ {
		if float64(row) <= m.RowCutoff {
			continue
		}
		dy := float64(row) - sy
		for col := 0; col < img.Width; col++ {
			dx := float64(col) - sx
			residual := dx*dx + dy*dy - sr*sr
			if math.Abs(residual) < m.Tolerance {
				sum += img.At(row, col)
				count++
			}
		}
	}

	if count == 0 || sum <= 0 {
		return DegenerateCost
	}
	mean := sum / float64(count)
	return 1 / mean
}
