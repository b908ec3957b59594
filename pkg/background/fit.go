package background

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
)

// curveFit runs a Levenberg-Marquardt least-squares fit of model to the
// (xs, ys) samples starting from guess, and returns the optimized
// parameters. The guess slice is not modified.
func curveFit(model func(x float64, p []float64) float64, xs, ys, guess []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("mismatched fit data: %d x vs %d y", len(xs), len(ys))
	}
	if len(xs) < len(guess) {
		return nil, fmt.Errorf("underdetermined fit: %d samples for %d parameters", len(xs), len(guess))
	}

	residuals := func(dst, p []float64) {
		for i := range xs {
			dst[i] = model(xs[i], p) - ys[i]
		}
	}

	jacobian := lm.NumJac{Func: residuals}
	problem := lm.LMProblem{
		Dim:        len(guess),
		Size:       len(xs),
		Func:       residuals,
		Jac:        jacobian.Jac,
		InitParams: append([]float64(nil), guess...),
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(problem, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	if err != nil {
		return nil, fmt.Errorf("least-squares solve: %w", err)
	}

	for i, v := range results.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("least-squares solve produced non-finite parameter %d", i)
		}
	}
	return results.X, nil
}

// movingAverage smooths ys with a centered window, shrinking the window at
// the edges. A window of 1 or less returns a copy of the input.
func movingAverage(ys []float64, window int) []float64 {
	out := make([]float64, len(ys))
	if window <= 1 {
		copy(out, ys)
		return out
	}

	half := window / 2
	for i := range ys {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(ys) {
			hi = len(ys) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += ys[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
