package visualization

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/trbritt/iris-ued/internal/models"
	"github.com/trbritt/iris-ued/pkg/center"
)

// RenderImage writes the diffraction image as a 16-bit grayscale PNG with
// intensities scaled to the image maximum. If radius is positive, the found
// ring is overlaid in full white for visual acceptance of the center search.
func RenderImage(img *models.Image, c models.Center, radius float64, path string) error {
	maxVal := 0.0
	for _, v := range img.Data {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	out := image.NewGray16(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			value := uint16(math.Max(0, math.Min(65535, img.At(y, x)/maxVal*65535)))
			out.SetGray16(x, y, color.Gray16{Y: value})
		}
	}

	if radius > 0 {
		n := int(2 * math.Pi * radius)
		if n < 64 {
			n = 64
		}
		xs, ys := center.RingPoints(c, radius, n)
		for i := range xs {
			col := int(math.Round(xs[i]))
			row := int(math.Round(ys[i]))
			if col >= 0 && row >= 0 && col < img.Width && row < img.Height {
				out.SetGray16(col, row, color.Gray16{Y: 65535})
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, out)
}
