// Package background estimates the inelastic scattering background of a
// radially averaged diffraction curve, either by stitching local
// pseudo-Voigt fits at caller-chosen diffraction features or by fitting one
// global biexponential or bi-Lorentzian through caller-chosen anchor
// points. Fitting failures never abort the pipeline: the initial guess is
// substituted and the result is flagged as unconverged.
package background

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/trbritt/iris-ued/internal/models"
	"github.com/trbritt/iris-ued/pkg/profiles"
	"github.com/trbritt/iris-ued/pkg/radial"
)

// ErrWindowOutOfRange indicates a feature anchor whose chunk window falls
// outside the curve's sample domain.
var ErrWindowOutOfRange = errors.New("feature window outside curve domain")

// ErrNoAnchors indicates an empty anchor list.
var ErrNoAnchors = errors.New("no anchor points supplied")

// Family selects the functional form of the global background fit.
type Family int

const (
	BiExponential Family = iota
	BiLorentzian
)

// String returns the short family name used in configuration and the CLI.
func (f Family) String() string {
	switch f {
	case BiExponential:
		return "biexp"
	case BiLorentzian:
		return "bilor"
	default:
		return "unknown"
	}
}

// ParseFamily converts a short family name to a Family.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "biexp":
		return BiExponential, nil
	case "bilor":
		return BiLorentzian, nil
	default:
		return 0, fmt.Errorf("unknown fit family %q (want biexp or bilor)", s)
	}
}

// FitDefaults holds the fixed constants entering the per-family initial
// guesses. The remaining guess components are derived from the curve's own
// extrema at fit time.
type FitDefaults struct {
	// BiexpRate1 and BiexpRate2 seed the two decay rates of the
	// biexponential family.
	BiexpRate1, BiexpRate2 float64

	// BilorWidth1 and BilorWidth2 seed the two widths of the
	// bi-Lorentzian family.
	BilorWidth1, BilorWidth2 float64
}

// NewFitDefaults returns the historical guess constants.
func NewFitDefaults() FitDefaults {
	return FitDefaults{
		BiexpRate1:  1.0 / 50.0,
		BiexpRate2:  1.0 / 150.0,
		BilorWidth1: 50.0,
		BilorWidth2: 150.0,
	}
}

// Smoothing configures the optional moving-average smoothing of the
// stitched background. Off by default; the un-smoothed stair-step is the
// baseline behavior.
type Smoothing struct {
	Enabled bool
	Window  int
}

// FitResult carries the optimized (or fallen-back) parameters of a global
// background fit. Converged is false when the solver failed and Params is
// the unmodified initial guess.
type FitResult struct {
	Family    Family
	Params    []float64
	Converged bool
}

// VoigtFit carries the fitted pseudo-Voigt parameters of one feature
// window of the stitched strategy.
type VoigtFit struct {
	Height, Center, WidthG, WidthL, Offset float64
	Converged                              bool
}

// Stitched is the outcome of the stitched pseudo-Voigt strategy: the
// interpolated background curve, one diagnostic profile per feature window
// evaluated over the full domain, and the per-window fit parameters.
type Stitched struct {
	Background *radial.Curve
	Profiles   []*radial.Curve
	Fits       []VoigtFit
}

// Estimator fits inelastic scattering backgrounds to radial curves.
type Estimator struct {
	// ChunkSize is the half-width, in samples, of the window extracted
	// around each feature anchor of the stitched strategy.
	ChunkSize int

	// Defaults are the fixed constants of the global-fit initial guesses.
	Defaults FitDefaults

	// Smoothing optionally smooths the stitched background.
	Smoothing Smoothing
}

// NewEstimator returns an Estimator with the historical presets: chunk
// half-width 5, no smoothing.
func NewEstimator() *Estimator {
	return &Estimator{
		ChunkSize: 5,
		Defaults:  NewFitDefaults(),
	}
}

// FitGlobal fits the chosen family through the curve's values at the
// anchor x-positions and evaluates the result over the curve's full
// domain. If the solver fails, or fewer anchors than parameters are
// supplied, the initial guess is used as-is and the result is flagged as
// unconverged; an error is returned only for unusable input.
func (e *Estimator) FitGlobal(c *radial.Curve, anchors []models.Anchor, family Family) (*radial.Curve, FitResult, error) {
	if len(anchors) == 0 {
		return nil, FitResult{}, ErrNoAnchors
	}

	xs := make([]float64, len(anchors))
	for i, a := range anchors {
		xs[i] = a.X
	}
	ys, err := radial.Interpolate(c.X, c.Y, xs)
	if err != nil {
		return nil, FitResult{}, err
	}

	guess := e.globalGuess(c, family)
	model := globalModel(family)

	params, fitErr := curveFit(model, xs, ys, guess)
	result := FitResult{Family: family, Params: params, Converged: fitErr == nil}
	if fitErr != nil {
		result.Params = guess
	}

	bg := profiles.Eval(c.X, func(x float64) float64 {
		return model(x, result.Params)
	})
	curve, err := radial.NewCurve(append([]float64(nil), c.X...), bg, "IBG "+c.Label)
	if err != nil {
		return nil, FitResult{}, err
	}
	return curve, result, nil
}

// FitStitched fits a pseudo-Voigt plus constant in a window around each
// feature anchor, takes each window's fitted offset plus its
// pre-normalization minimum as the local background level, and
// interpolates the levels across the curve's full domain.
func (e *Estimator) FitStitched(c *radial.Curve, anchors []models.Anchor) (*Stitched, error) {
	if len(anchors) == 0 {
		return nil, ErrNoAnchors
	}

	var bgX, bgY []float64
	result := &Stitched{}

	for i, a := range anchors {
		idx := radial.NearestIndex(c.X, a.X)
		lo := idx - e.ChunkSize
		hi := idx + e.ChunkSize
		if lo < 0 || hi >= c.Len() {
			return nil, fmt.Errorf("%w: anchor %d at x=%g needs samples [%d, %d] of %d",
				ErrWindowOutOfRange, i, a.X, lo, hi, c.Len())
		}

		xw := c.X[lo : hi+1]
		yw := c.Y[lo : hi+1]

		// Remove most of the offset before fitting; it improves the
		// conditioning of the solve and is added back below.
		min := floats.Min(yw)
		norm := make([]float64, len(yw))
		for j, v := range yw {
			norm[j] = v - min
		}

		guess := []float64{
			floats.Max(norm),
			(xw[len(xw)-1]-xw[0])/2 + xw[0],
			0.1,
			0.1,
			0,
		}

		params, fitErr := curveFit(voigtModel, xw, norm, guess)
		if fitErr != nil {
			params = guess
		}

		fit := VoigtFit{
			Height:    params[0],
			Center:    params[1],
			WidthG:    params[2],
			WidthL:    params[3],
			Offset:    params[4],
			Converged: fitErr == nil,
		}
		result.Fits = append(result.Fits, fit)

		level := fit.Offset + min
		for _, x := range xw {
			bgX = append(bgX, x)
			bgY = append(bgY, level)
		}

		profile := profiles.Eval(c.X, func(x float64) float64 {
			return voigtModel(x, params) + min
		})
		pc, err := radial.NewCurve(append([]float64(nil), c.X...), profile, "peak"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		result.Profiles = append(result.Profiles, pc)
	}

	// Anchors arrive in caller order; the interpolant needs ascending x.
	sort.Sort(&pairSort{bgX, bgY})

	levels, err := radial.Interpolate(bgX, bgY, c.X)
	if err != nil {
		return nil, err
	}
	if e.Smoothing.Enabled {
		levels = movingAverage(levels, e.Smoothing.Window)
	}

	result.Background, err = radial.NewCurve(append([]float64(nil), c.X...), levels, "background")
	if err != nil {
		return nil, err
	}
	return result, nil
}

// globalGuess derives the initial guess of a global fit from the curve's
// extrema and the configured constants.
func (e *Estimator) globalGuess(c *radial.Curve, family Family) []float64 {
	yMax := floats.Max(c.Y)
	yMin := floats.Min(c.Y)
	xMin := c.X[0]

	switch family {
	case BiLorentzian:
		return []float64{xMin, yMax / 1.5, yMax / 2.0, e.Defaults.BilorWidth1, e.Defaults.BilorWidth2, yMin}
	default:
		return []float64{yMax / 2, e.Defaults.BiexpRate1, yMax / 2, e.Defaults.BiexpRate2, yMin, xMin}
	}
}

// globalModel returns the closed form of the chosen family. Width
// parameters enter through their absolute value so the solver's trial
// steps cannot drive the Lorentzian terms through zero width.
func globalModel(family Family) func(x float64, p []float64) float64 {
	if family == BiLorentzian {
		return func(x float64, p []float64) float64 {
			return profiles.BiLorentzian(x, p[0], p[1], p[2], math.Abs(p[3]), math.Abs(p[4]), p[5])
		}
	}
	return func(x float64, p []float64) float64 {
		return profiles.BiExponential(x, p[0], p[1], p[2], p[3], p[4], p[5])
	}
}

// voigtModel is the pseudo-Voigt plus constant fit by the stitched
// strategy, with the same width guard as the global models.
func voigtModel(x float64, p []float64) float64 {
	return profiles.PseudoVoigt(x, p[0], p[1], math.Abs(p[2]), math.Abs(p[3]), p[4])
}

// pairSort sorts two aligned slices by the first one.
type pairSort struct {
	x, y []float64
}

func (p *pairSort) Len() int           { return len(p.x) }
func (p *pairSort) Less(i, j int) bool { return p.x[i] < p.x[j] }
func (p *pairSort) Swap(i, j int) {
	p.x[i], p.x[j] = p.x[j], p.x[i]
	p.y[i], p.y[j] = p.y[j], p.y[i]
}
