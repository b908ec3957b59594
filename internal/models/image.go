package models

import (
	"fmt"
)

// Image is a decoded 2D diffraction image with non-negative intensities.
// Pixels are stored row-major with the origin at the top-left corner, row
// index increasing downward. The analysis packages only ever read it.
type Image struct {
	// Data holds the pixel intensities as a 1D array in row-major order
	Data []float64

	// Width is the number of columns in the image
	Width int

	// Height is the number of rows in the image
	Height int
}

// NewImage wraps raw row-major intensity data as an Image, validating that
// the dimensions match the data length.
func NewImage(data []float64, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image dimensions must be positive, got %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("data length %d does not match dimensions %dx%d", len(data), width, height)
	}
	return &Image{Data: data, Width: width, Height: height}, nil
}

// At returns the intensity at the given row and column.
func (im *Image) At(row, col int) float64 {
	return im.Data[row*im.Width+col]
}

// Contains reports whether the given (column, row) coordinate lies within
// the image bounds.
func (im *Image) Contains(col, row float64) bool {
	return col >= 0 && row >= 0 && col < float64(im.Width) && row < float64(im.Height)
}

// Center is the position of a diffraction-pattern center in pixel
// coordinates. X is the column coordinate and Y the row coordinate.
type Center struct {
	X, Y float64
}

// Guess is an initial estimate of the pattern center and the radius of a
// bright diffraction ring, used to seed the center search.
type Guess struct {
	// X, Y is the estimated center position in pixels
	X, Y float64

	// R is the estimated ring radius in pixels
	R float64
}

// Anchor is a caller-chosen point on a radially averaged curve, used to
// seed or constrain a background fit.
type Anchor struct {
	X, Y float64
}
