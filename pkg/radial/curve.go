// Package radial collapses 2D diffraction images into 1D radially averaged
// intensity curves and provides the curve arithmetic shared by every stage
// of the analysis pipeline.
package radial

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// ErrMalformedCurve indicates curve data that cannot be interpreted:
// mismatched x/y lengths, an empty curve, or a decreasing abscissa where
// interpolation assumes monotonicity.
var ErrMalformedCurve = errors.New("malformed curve data")

// Curve is a radially averaged diffraction pattern or a fit to one. X holds
// the abscissa (radius in pixels, or scattering-vector magnitude after
// calibration) in non-decreasing order, Y the positionally aligned
// intensities. Label is display metadata only.
//
// Operations never mutate their operands; each returns a fresh Curve.
type Curve struct {
	X, Y  []float64
	Label string
}

// NewCurve builds a Curve from aligned x and y samples.
func NewCurve(x, y []float64, label string) (*Curve, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x samples vs %d y samples", ErrMalformedCurve, len(x), len(y))
	}
	return &Curve{X: x, Y: y, Label: label}, nil
}

// Len returns the number of samples in the curve.
func (c *Curve) Len() int { return len(c.X) }

// Subtract interpolates the other curve onto this curve's x grid and
// returns a new curve with the pointwise difference. Outside the other
// curve's domain the interpolation clamps to its edge values. The label of
// the receiver is preserved.
func (c *Curve) Subtract(other *Curve) (*Curve, error) {
	interpolated, err := Interpolate(other.X, other.Y, c.X)
	if err != nil {
		return nil, err
	}

	y := make([]float64, len(c.Y))
	for i := range y {
		y[i] = c.Y[i] - interpolated[i]
	}
	return &Curve{X: append([]float64(nil), c.X...), Y: y, Label: c.Label}, nil
}

// Cutoff truncates the low end of the curve at the sample nearest the given
// threshold and returns the remainder as a new curve.
func (c *Curve) Cutoff(threshold float64) *Curve {
	idx := NearestIndex(c.X, threshold)
	return &Curve{
		X:     append([]float64(nil), c.X[idx:]...),
		Y:     append([]float64(nil), c.Y[idx:]...),
		Label: "Cutoff " + c.Label,
	}
}

// Calibrate rescales the pixel-radius abscissa by a camera constant,
// converting it to scattering-vector magnitude. The intensities are
// unchanged.
func (c *Curve) Calibrate(pixelToQ float64, label string) *Curve {
	x := make([]float64, len(c.X))
	for i, v := range c.X {
		x[i] = v * pixelToQ
	}
	return &Curve{X: x, Y: append([]float64(nil), c.Y...), Label: label}
}

// NearestIndex returns the index of the sample in xs closest to v.
func NearestIndex(xs []float64, v float64) int {
	best := 0
	bestDist := math.Abs(xs[0] - v)
	for i, x := range xs[1:] {
		if d := math.Abs(x - v); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}

// Interpolate evaluates the piecewise-linear interpolant through (xs, ys)
// at every point of at. Points outside the data domain are clamped to the
// edge values. xs must be non-decreasing; duplicate abscissae are collapsed
// onto their first occurrence.
func Interpolate(xs, ys, at []float64) ([]float64, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x samples vs %d y samples", ErrMalformedCurve, len(xs), len(ys))
	}

	ux := make([]float64, 0, len(xs))
	uy := make([]float64, 0, len(ys))
	for i := range xs {
		if i > 0 {
			if xs[i] < xs[i-1] {
				return nil, fmt.Errorf("%w: x decreases at index %d", ErrMalformedCurve, i)
			}
			if xs[i] == xs[i-1] {
				continue
			}
		}
		ux = append(ux, xs[i])
		uy = append(uy, ys[i])
	}

	out := make([]float64, len(at))
	if len(ux) == 1 {
		for i := range out {
			out[i] = uy[0]
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(ux, uy); err != nil {
		return nil, fmt.Errorf("fitting interpolant: %w", err)
	}

	lo, hi := ux[0], ux[len(ux)-1]
	for i, x := range at {
		if x < lo {
			x = lo
		} else if x > hi {
			x = hi
		}
		out[i] = pl.Predict(x)
	}
	return out, nil
}
