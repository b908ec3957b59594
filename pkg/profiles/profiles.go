// Package profiles provides the closed-form peak and background shapes used
// to fit radially averaged diffraction curves: Gaussian, Lorentzian, their
// 50/50 pseudo-Voigt blend, and the biexponential and bi-Lorentzian
// inelastic background families.
//
// All functions are pure. Width parameters must be non-zero; the Lorentzian
// term divides by the squared half-width and the fitting code is responsible
// for keeping widths away from zero.
package profiles

import (
	"math"
)

// Gaussian returns a Gaussian with maximal height 1 (not unit area),
// centered at center with the given width.
func Gaussian(x, center, width float64) float64 {
	d := x - center
	w := 2 * width
	return math.Exp(-(d * d) / (w * w))
}

// Lorentzian returns a Lorentzian with maximal height 1 (not unit area),
// centered at center with the given width.
func Lorentzian(x, center, width float64) float64 {
	d := x - center
	h := width / 2
	return (h * h) / (d*d + h*h)
}

// PseudoVoigt returns a pseudo-Voigt profile: an equally weighted blend of a
// Gaussian and a Lorentzian sharing the same center, scaled to the given
// height and shifted by a constant offset. The 50/50 mixing ratio is fixed.
func PseudoVoigt(x, height, center, widthG, widthL, offset float64) float64 {
	return height*(0.5*Gaussian(x, center, widthG)+0.5*Lorentzian(x, center, widthL)) + offset
}

// BiExponential returns a*exp(-b*(x-f)) + c*exp(-d*(x-f)) + e.
func BiExponential(x, a, b, c, d, e, f float64) float64 {
	return a*math.Exp(-b*(x-f)) + c*math.Exp(-d*(x-f)) + e
}

// BiLorentzian returns the sum of two Lorentzians sharing a center, with
// independent amplitudes and widths, plus a constant offset.
func BiLorentzian(x, center, amp1, amp2, width1, width2, offset float64) float64 {
	return amp1*Lorentzian(x, center, width1) + amp2*Lorentzian(x, center, width2) + offset
}

// Eval evaluates f at every point of xs and returns the resulting samples.
func Eval(xs []float64, f func(x float64) float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}
