package radial

import (
	"fmt"
	"math"

	"github.com/trbritt/iris-ued/internal/models"
)

// BinCountBias is the initial pixel count of every radius bin. Starting the
// counts at 1 instead of 0 damps the average for bins with few contributing
// pixels, most visibly at very small radii. Kept for numerical parity with
// the historical behavior.
const BinCountBias = 1

// MinRowFromCenter selects the historical row-exclusion preset: pixels with
// a row index below the first center coordinate are skipped, excluding the
// image half that contains the beam block.
const MinRowFromCenter = -1

// Averager bins pixel intensities by integer-rounded distance from a center
// and averages each bin into one sample of a 1D curve.
type Averager struct {
	// MinRow excludes pixels with row index below it from the average.
	// The preset MinRowFromCenter resolves to the first center coordinate,
	// matching the historical beam-block geometry. Bins whose every pixel
	// is excluded keep their bias-only count and report an average of 0,
	// which downstream consumers must not mistake for a measured low
	// intensity.
	MinRow int
}

// NewAverager returns an Averager with the historical row-exclusion preset.
func NewAverager() *Averager {
	return &Averager{MinRow: MinRowFromCenter}
}

// Average computes the radially averaged intensity curve of the image
// around the given center. The returned curve has one sample per integer
// radius present in the image, in ascending order, labeled after name.
func (a *Averager) Average(img *models.Image, center models.Center, name string) (*Curve, error) {
	if !img.Contains(center.X, center.Y) {
		return nil, fmt.Errorf("center (%g, %g) outside %dx%d image", center.X, center.Y, img.Width, img.Height)
	}

	minRow := a.MinRow
	if minRow == MinRowFromCenter {
		minRow = int(center.X)
	}

	// Integer radius of every pixel; the bin domain covers the whole image
	// regardless of the row exclusion below.
	radii := make([]int, len(img.Data))
	maxRadius := 0
	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			dx := float64(col) - center.X
			dy := float64(row) - center.Y
			r := int(math.Round(math.Sqrt(dx*dx + dy*dy)))
			radii[row*img.Width+col] = r
			if r > maxRadius {
				maxRadius = r
			}
		}
	}

	present := make([]bool, maxRadius+1)
	for _, r := range radii {
		present[r] = true
	}

	sums := make([]float64, maxRadius+1)
	counts := make([]float64, maxRadius+1)
	for r := range counts {
		counts[r] = BinCountBias
	}

	for row := minRow; row < img.Height; row++ {
		if row < 0 {
			continue
		}
		for col := 0; col < img.Width; col++ {
			idx := row*img.Width + col
			sums[radii[idx]] += img.Data[idx]
			counts[radii[idx]]++
		}
	}

	var x, y []float64
	for r := 0; r <= maxRadius; r++ {
		if !present[r] {
			continue
		}
		x = append(x, float64(r))
		y = append(y, sums[r]/counts[r])
	}

	return NewCurve(x, y, name+" radial average")
}
