package profiles

import (
	"math"
	"testing"
)

// TestGaussianPeakHeight verifies the Gaussian has height 1 at its center
// and decays symmetrically.
func TestGaussianPeakHeight(t *testing.T) {
	if got := Gaussian(3.5, 3.5, 0.2); got != 1.0 {
		t.Errorf("Expected Gaussian height 1 at center, got %f", got)
	}

	left := Gaussian(2.5, 3.5, 0.2)
	right := Gaussian(4.5, 3.5, 0.2)
	if math.Abs(left-right) > 1e-12 {
		t.Errorf("Expected symmetric Gaussian, got %f vs %f", left, right)
	}

	if left >= 1.0 {
		t.Errorf("Expected Gaussian to decay away from center, got %f", left)
	}
}

// TestLorentzianPeakHeight verifies the Lorentzian has height 1 at its
// center and its half-maximum at half the width.
func TestLorentzianPeakHeight(t *testing.T) {
	if got := Lorentzian(-1.0, -1.0, 4.0); got != 1.0 {
		t.Errorf("Expected Lorentzian height 1 at center, got %f", got)
	}

	// At x = center + width/2 the Lorentzian equals 1/2.
	if got := Lorentzian(1.0, -1.0, 4.0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected half maximum at half width, got %f", got)
	}
}

// TestPseudoVoigtAtCenter verifies that at the shared center the profile
// evaluates to height + offset, since both components equal 1 there.
func TestPseudoVoigtAtCenter(t *testing.T) {
	got := PseudoVoigt(12.0, 7.5, 12.0, 0.3, 0.4, 2.25)
	want := 7.5 + 2.25
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Expected pseudo-Voigt %f at center, got %f", want, got)
	}
}

// TestBiExponentialValues checks the closed form at a few points.
func TestBiExponentialValues(t *testing.T) {
	// At x = f both exponentials are 1.
	got := BiExponential(2.0, 5.0, 0.02, 2.0, 0.01, 1.0, 2.0)
	if math.Abs(got-8.0) > 1e-12 {
		t.Errorf("Expected 8.0 at x-shift, got %f", got)
	}

	x := 100.0
	want := 5.0*math.Exp(-0.02*x) + 2.0*math.Exp(-0.01*x) + 1.0
	got = BiExponential(x, 5.0, 0.02, 2.0, 0.01, 1.0, 0.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Expected %f, got %f", want, got)
	}
}

// TestBiLorentzianAtCenter verifies both amplitudes contribute fully at the
// shared center.
func TestBiLorentzianAtCenter(t *testing.T) {
	got := BiLorentzian(0.0, 0.0, 3.0, 1.5, 50.0, 150.0, 0.25)
	want := 3.0 + 1.5 + 0.25
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Expected %f at center, got %f", want, got)
	}
}

// TestEval verifies the slice evaluator applies the function pointwise.
func TestEval(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := Eval(xs, func(x float64) float64 { return 2 * x })

	if len(ys) != len(xs) {
		t.Fatalf("Expected %d samples, got %d", len(xs), len(ys))
	}
	for i, x := range xs {
		if ys[i] != 2*x {
			t.Errorf("Expected ys[%d]=%f, got %f", i, 2*x, ys[i])
		}
	}
}
