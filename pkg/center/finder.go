package center

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/trbritt/iris-ued/internal/models"
)

// Finder optimizes a center guess with a Nelder-Mead simplex search over
// the scaled (x, y, r) parameters of the ring-intensity metric.
type Finder struct {
	// ScaleFactor, Tolerance and RowCutoff configure the underlying
	// metric; see Metric.
	ScaleFactor float64
	Tolerance   float64
	RowCutoff   float64

	// MaxIterations bounds the simplex search. Zero uses the optimizer's
	// default budget.
	MaxIterations int
}

// NewFinder returns a Finder with the historical metric presets.
func NewFinder() *Finder {
	return &Finder{
		ScaleFactor: DefaultScaleFactor,
		Tolerance:   DefaultTolerance,
		RowCutoff:   DefaultRowCutoff,
	}
}

// Find searches for the pattern center starting from the given pixel-space
// guess and returns the optimized center together with the radius.
//
// The returned radius is the caller's guessed radius, not the optimized
// one: only the center position is trusted from the search, the radius is
// taken on faith from the caller. Results carry no convergence guarantee;
// the search runs its iteration budget and the best point found is
// returned, for the caller to accept or reject.
func (f *Finder) Find(img *models.Image, guess models.Guess) (models.Center, float64, error) {
	if f.ScaleFactor == 0 {
		return models.Center{}, 0, fmt.Errorf("scale factor must be non-zero")
	}
	if guess.R <= 0 {
		return models.Center{}, 0, fmt.Errorf("guessed radius must be positive, got %g", guess.R)
	}

	metric := &Metric{
		ScaleFactor: f.ScaleFactor,
		Tolerance:   f.Tolerance,
		RowCutoff:   f.RowCutoff,
	}

	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			return metric.Evaluate(img, v[0], v[1], v[2])
		},
	}

	start := []float64{
		guess.X / f.ScaleFactor,
		guess.Y / f.ScaleFactor,
		guess.R / f.ScaleFactor,
	}

	var settings *optimize.Settings
	if f.MaxIterations > 0 {
		settings = &optimize.Settings{MajorIterations: f.MaxIterations}
	}

	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if result == nil {
		return models.Center{}, 0, fmt.Errorf("center search failed: %w", err)
	}

	c := models.Center{
		X: result.X[0] * f.ScaleFactor,
		Y: result.X[1] * f.ScaleFactor,
	}
	if math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return models.Center{}, 0, fmt.Errorf("center search produced NaN coordinates")
	}

	return c, guess.R, nil
}
