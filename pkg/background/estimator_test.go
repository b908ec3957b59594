package background

import (
	"errors"
	"math"
	"testing"

	"github.com/trbritt/iris-ued/internal/models"
	"github.com/trbritt/iris-ued/pkg/profiles"
	"github.com/trbritt/iris-ued/pkg/radial"
)

// sampledCurve evaluates f at n integer-spaced points starting at x0.
func sampledCurve(t *testing.T, n int, x0 float64, f func(x float64) float64) *radial.Curve {
	t.Helper()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = x0 + float64(i)
	}
	c, err := radial.NewCurve(xs, profiles.Eval(xs, f), "synthetic")
	if err != nil {
		t.Fatalf("building curve: %v", err)
	}
	return c
}

// TestFitGlobalBiexpRecovery fits a sampled biexponential through six
// anchors taken from the curve and checks parameter recovery within 1%.
func TestFitGlobalBiexpRecovery(t *testing.T) {
	truth := []float64{5.0, 0.02, 2.0, 0.01, 1.0, 0.0}
	c := sampledCurve(t, 200, 0, func(x float64) float64 {
		return profiles.BiExponential(x, truth[0], truth[1], truth[2], truth[3], truth[4], truth[5])
	})

	anchors := []models.Anchor{
		{X: 5}, {X: 40}, {X: 80}, {X: 120}, {X: 160}, {X: 195},
	}

	bg, result, err := NewEstimator().FitGlobal(c, anchors, BiExponential)
	if err != nil {
		t.Fatalf("FitGlobal failed: %v", err)
	}
	if !result.Converged {
		t.Fatalf("Expected converged fit, got fallback %v", result.Params)
	}

	// Rates and amplitudes within 1% of the originals; the x-shift is
	// compared absolutely since its true value is zero.
	for i, want := range truth[:5] {
		tol := math.Abs(want) * 0.01
		if math.Abs(result.Params[i]-want) > tol {
			t.Errorf("Parameter %d: expected %g within 1%%, got %g", i, want, result.Params[i])
		}
	}
	if math.Abs(result.Params[5]) > 0.5 {
		t.Errorf("Expected x-shift near 0, got %g", result.Params[5])
	}

	// The background curve spans the full domain and tracks the data.
	if bg.Len() != c.Len() {
		t.Fatalf("Expected background over full domain, got %d samples", bg.Len())
	}
	for i := range c.X {
		if math.Abs(bg.Y[i]-c.Y[i]) > 0.01*c.Y[i] {
			t.Errorf("Background deviates at x=%g: %g vs %g", c.X[i], bg.Y[i], c.Y[i])
			break
		}
	}
	if bg.Label != "IBG synthetic" {
		t.Errorf("Expected label prefix, got %q", bg.Label)
	}
}

// TestFitGlobalBilor fits a sampled bi-Lorentzian and checks the
// reconstructed background against the data.
func TestFitGlobalBilor(t *testing.T) {
	c := sampledCurve(t, 200, 0, func(x float64) float64 {
		return profiles.BiLorentzian(x, 0, 60, 40, 55, 140, 2)
	})

	anchors := []models.Anchor{
		{X: 2}, {X: 20}, {X: 50}, {X: 90}, {X: 130}, {X: 170}, {X: 198},
	}

	bg, result, err := NewEstimator().FitGlobal(c, anchors, BiLorentzian)
	if err != nil {
		t.Fatalf("FitGlobal failed: %v", err)
	}
	if !result.Converged {
		t.Fatalf("Expected converged fit, got fallback %v", result.Params)
	}

	for i := range c.X {
		if math.Abs(bg.Y[i]-c.Y[i]) > 0.02*c.Y[i]+0.05 {
			t.Errorf("Background deviates at x=%g: %g vs %g", c.X[i], bg.Y[i], c.Y[i])
			break
		}
	}
}

// TestFitGlobalAnchorOrderInvariance verifies the fit does not depend on
// the order anchors are supplied in.
func TestFitGlobalAnchorOrderInvariance(t *testing.T) {
	c := sampledCurve(t, 200, 0, func(x float64) float64 {
		return profiles.BiExponential(x, 5, 0.02, 2, 0.01, 1, 0)
	})

	ordered := []models.Anchor{{X: 5}, {X: 40}, {X: 80}, {X: 120}, {X: 160}, {X: 195}}
	shuffled := []models.Anchor{{X: 120}, {X: 5}, {X: 195}, {X: 40}, {X: 160}, {X: 80}}

	_, a, err := NewEstimator().FitGlobal(c, ordered, BiExponential)
	if err != nil {
		t.Fatalf("FitGlobal failed: %v", err)
	}
	_, b, err := NewEstimator().FitGlobal(c, shuffled, BiExponential)
	if err != nil {
		t.Fatalf("FitGlobal failed: %v", err)
	}

	for i := range a.Params {
		if math.Abs(a.Params[i]-b.Params[i]) > 1e-6 {
			t.Errorf("Parameter %d differs across anchor orders: %g vs %g", i, a.Params[i], b.Params[i])
		}
	}
}

// TestFitGlobalFallback verifies the failure policy: with fewer anchors
// than parameters the initial guess is returned unmodified, flagged as
// unconverged, and the pipeline continues.
func TestFitGlobalFallback(t *testing.T) {
	c := sampledCurve(t, 100, 0, func(x float64) float64 {
		return profiles.BiExponential(x, 5, 0.02, 2, 0.01, 1, 0)
	})

	anchors := []models.Anchor{{X: 10}, {X: 50}}

	e := NewEstimator()
	bg, result, err := e.FitGlobal(c, anchors, BiExponential)
	if err != nil {
		t.Fatalf("Expected graceful fallback, got error: %v", err)
	}
	if result.Converged {
		t.Errorf("Expected unconverged result")
	}

	guess := e.globalGuess(c, BiExponential)
	for i := range guess {
		if result.Params[i] != guess[i] {
			t.Errorf("Expected guess parameter %d=%g, got %g", i, guess[i], result.Params[i])
		}
	}
	if bg == nil || bg.Len() != c.Len() {
		t.Errorf("Expected best-effort background over the full domain")
	}
}

// TestFitGlobalNoAnchors verifies empty anchor lists are rejected.
func TestFitGlobalNoAnchors(t *testing.T) {
	c := sampledCurve(t, 10, 0, func(x float64) float64 { return x })
	if _, _, err := NewEstimator().FitGlobal(c, nil, BiExponential); !errors.Is(err, ErrNoAnchors) {
		t.Errorf("Expected ErrNoAnchors, got %v", err)
	}
}

// TestFitStitchedFlatOffset verifies the stitched strategy recovers a flat
// background under two well-separated Gaussian peaks.
func TestFitStitchedFlatOffset(t *testing.T) {
	const offset = 3.0
	c := sampledCurve(t, 200, 0, func(x float64) float64 {
		return offset +
			10*profiles.Gaussian(x, 60, 1.0) +
			8*profiles.Gaussian(x, 140, 1.0)
	})

	anchors := []models.Anchor{{X: 60}, {X: 140}}

	result, err := NewEstimator().FitStitched(c, anchors)
	if err != nil {
		t.Fatalf("FitStitched failed: %v", err)
	}

	for i, y := range result.Background.Y {
		if math.Abs(y-offset) > 0.05*offset {
			t.Errorf("Background off at x=%g: expected %g within 5%%, got %g",
				result.Background.X[i], offset, y)
			break
		}
	}

	if len(result.Profiles) != len(anchors) {
		t.Errorf("Expected %d diagnostic profiles, got %d", len(anchors), len(result.Profiles))
	}
	if len(result.Fits) != len(anchors) {
		t.Fatalf("Expected %d fits, got %d", len(anchors), len(result.Fits))
	}

	// The fitted peak centers sit at the true feature positions.
	if math.Abs(result.Fits[0].Center-60) > 1 || math.Abs(result.Fits[1].Center-140) > 1 {
		t.Errorf("Expected fitted centers near 60 and 140, got %g and %g",
			result.Fits[0].Center, result.Fits[1].Center)
	}
}

// TestFitStitchedAnchorOutOfRange verifies windows reaching past the curve
// edge are rejected rather than clamped.
func TestFitStitchedAnchorOutOfRange(t *testing.T) {
	c := sampledCurve(t, 50, 0, func(x float64) float64 { return 1 })

	if _, err := NewEstimator().FitStitched(c, []models.Anchor{{X: 2}}); !errors.Is(err, ErrWindowOutOfRange) {
		t.Errorf("Expected ErrWindowOutOfRange near low edge, got %v", err)
	}
	if _, err := NewEstimator().FitStitched(c, []models.Anchor{{X: 49}}); !errors.Is(err, ErrWindowOutOfRange) {
		t.Errorf("Expected ErrWindowOutOfRange near high edge, got %v", err)
	}
}

// TestFitStitchedSmoothing verifies the optional smoothing stage leaves a
// flat background unchanged.
func TestFitStitchedSmoothing(t *testing.T) {
	c := sampledCurve(t, 200, 0, func(x float64) float64 {
		return 3 + 10*profiles.Gaussian(x, 100, 1.0)
	})

	e := NewEstimator()
	e.Smoothing = Smoothing{Enabled: true, Window: 5}

	result, err := e.FitStitched(c, []models.Anchor{{X: 100}})
	if err != nil {
		t.Fatalf("FitStitched failed: %v", err)
	}
	for _, y := range result.Background.Y {
		if math.Abs(y-3) > 0.2 {
			t.Errorf("Expected near-flat smoothed background, got %g", y)
			break
		}
	}
}

// TestParseFamily covers the round trip between names and families.
func TestParseFamily(t *testing.T) {
	for _, name := range []string{"biexp", "bilor"} {
		f, err := ParseFamily(name)
		if err != nil {
			t.Fatalf("ParseFamily(%q) failed: %v", name, err)
		}
		if f.String() != name {
			t.Errorf("Expected round trip for %q, got %q", name, f.String())
		}
	}
	if _, err := ParseFamily("voigt"); err == nil {
		t.Errorf("Expected error for unknown family")
	}
}

// TestMovingAverage checks window handling at the edges.
func TestMovingAverage(t *testing.T) {
	ys := []float64{0, 0, 6, 0, 0}
	got := movingAverage(ys, 3)

	want := []float64{0, 2, 2, 2, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Expected %g at index %d, got %g", want[i], i, got[i])
		}
	}

	same := movingAverage(ys, 1)
	for i := range ys {
		if same[i] != ys[i] {
			t.Errorf("Expected window 1 to copy input")
			break
		}
	}
}
