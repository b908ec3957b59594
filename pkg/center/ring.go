package center

import (
	"math"

	"github.com/trbritt/iris-ued/internal/models"
)

// RingPoints samples n points on the circle of the given center and radius,
// returning the x and y pixel coordinates. Intended for display overlays on
// top of the diffraction image.
func RingPoints(c models.Center, radius float64, n int) (xs, ys []float64) {
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		xs[i] = c.X + radius*math.Cos(theta)
		ys[i] = c.Y + radius*math.Sin(theta)
	}
	return xs, ys
}
