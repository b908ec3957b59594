package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/trbritt/iris-ued/internal/models"
	"github.com/trbritt/iris-ued/pkg/background"
	"github.com/trbritt/iris-ued/pkg/center"
	"github.com/trbritt/iris-ued/pkg/config"
	"github.com/trbritt/iris-ued/pkg/radial"
	"github.com/trbritt/iris-ued/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Diffraction image (TIFF or PNG)")
	configPath := flag.String("config", "iris.yaml", "Pipeline configuration file")
	centerGuess := flag.String("center", "", "Center and ring radius guess as x,y,r")
	anchorList := flag.String("anchors", "", "Background anchor points as x,y;x,y;...")
	method := flag.String("method", "global", "Background strategy: global or stitched")
	fitFamily := flag.String("fit", "biexp", "Global fit family: biexp or bilor")
	outputPath := flag.String("output", "corrected.csv", "Output CSV for the corrected curve")
	plotPath := flag.String("plot", "", "Optional plot of raw/background/corrected curves")
	renderPath := flag.String("render", "", "Optional grayscale render with the found ring overlaid")
	flag.Parse()

	// Validate inputs
	if *inputPath == "" || *centerGuess == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	guess, err := parseGuess(*centerGuess)
	if err != nil {
		log.Fatalf("Invalid center guess: %v", err)
	}

	img, err := loadImage(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("ELECTRON DIFFRACTION RADIAL ANALYSIS")
		fmt.Println("center search, radial averaging and inelastic background removal")
		fmt.Println("================================")
		fmt.Printf("Image: %s (%dx%d)\n", *inputPath, img.Width, img.Height)
	}

	startTime := time.Now()

	// Locate the pattern center from the guess
	finder := &center.Finder{
		ScaleFactor:   cfg.Center.ScaleFactor,
		Tolerance:     cfg.Center.ResidualTolerance,
		RowCutoff:     cfg.Center.RowCutoff,
		MaxIterations: cfg.Center.MaxIterations,
	}
	c, radius, err := finder.Find(img, guess)
	if err != nil {
		log.Fatalf("Center search failed: %v", err)
	}
	if cfg.Output.Verbose {
		fmt.Printf("Center: (%.2f, %.2f), ring radius %.1f (radius taken from guess)\n", c.X, c.Y, radius)
	}

	// Collapse the image to a radially averaged curve
	name := strings.TrimSuffix(filepath.Base(*inputPath), filepath.Ext(*inputPath))
	averager := &radial.Averager{MinRow: cfg.Radial.MinRow}
	curve, err := averager.Average(img, c, name)
	if err != nil {
		log.Fatalf("Radial averaging failed: %v", err)
	}
	if cfg.Radial.CutoffRadius > 0 {
		curve = curve.Cutoff(cfg.Radial.CutoffRadius)
	}

	anchors, err := parseAnchors(*anchorList)
	if err != nil {
		log.Fatalf("Invalid anchor list: %v", err)
	}

	// Estimate and subtract the inelastic background
	estimator := &background.Estimator{
		ChunkSize: cfg.Background.ChunkSize,
		Defaults: background.FitDefaults{
			BiexpRate1:  cfg.Background.Biexp.Rate1,
			BiexpRate2:  cfg.Background.Biexp.Rate2,
			BilorWidth1: cfg.Background.Bilor.Width1,
			BilorWidth2: cfg.Background.Bilor.Width2,
		},
		Smoothing: background.Smoothing{
			Enabled: cfg.Background.Smoothing.Enabled,
			Window:  cfg.Background.Smoothing.Window,
		},
	}

	var bg *radial.Curve
	switch *method {
	case "stitched":
		stitched, err := estimator.FitStitched(curve, anchors)
		if err != nil {
			log.Fatalf("Stitched background fit failed: %v", err)
		}
		bg = stitched.Background
		if cfg.Output.Verbose {
			for i, fit := range stitched.Fits {
				status := "converged"
				if !fit.Converged {
					status = "UNCONVERGED (guess used)"
				}
				fmt.Printf("Feature %d: center %.2f, height %.2f, offset %.3f [%s]\n",
					i, fit.Center, fit.Height, fit.Offset, status)
			}
		}
	case "global":
		family, err := background.ParseFamily(*fitFamily)
		if err != nil {
			log.Fatalf("Invalid fit family: %v", err)
		}
		fitted, result, err := estimator.FitGlobal(curve, anchors, family)
		if err != nil {
			log.Fatalf("Global background fit failed: %v", err)
		}
		bg = fitted
		if cfg.Output.Verbose {
			if result.Converged {
				fmt.Printf("Fit (%s) converged: %v\n", result.Family, result.Params)
			} else {
				fmt.Printf("Fit (%s) DID NOT CONVERGE; using initial guess: %v\n", result.Family, result.Params)
			}
		}
	default:
		log.Fatalf("Unknown background method %q (want global or stitched)", *method)
	}

	corrected, err := curve.Subtract(bg)
	if err != nil {
		log.Fatalf("Background subtraction failed: %v", err)
	}
	if cfg.Radial.PixelToQ > 0 {
		corrected = corrected.Calibrate(cfg.Radial.PixelToQ, corrected.Label)
	}

	if err := writeCSV(*outputPath, corrected); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Printf("\nAnalysis completed in %.2f seconds\n", time.Since(startTime).Seconds())
		fmt.Printf("Corrected curve saved to: %s\n", *outputPath)
	}

	if *plotPath != "" {
		if err := visualization.SaveCurvePlot(*plotPath, "Diffraction pattern", curve, bg, corrected); err != nil {
			log.Printf("Warning: failed to save plot: %v", err)
		} else if cfg.Output.Verbose {
			fmt.Printf("Plot saved to: %s\n", *plotPath)
		}
	}

	if *renderPath != "" {
		if err := visualization.RenderImage(img, c, radius, *renderPath); err != nil {
			log.Printf("Warning: failed to save render: %v", err)
		} else if cfg.Output.Verbose {
			fmt.Printf("Render saved to: %s\n", *renderPath)
		}
	}
}

// loadImage decodes a TIFF or PNG detector image into intensity values.
func loadImage(path string) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	bounds := decoded.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := decoded.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			data[y*width+x] = float64(r+g+b) / 3
		}
	}
	return models.NewImage(data, width, height)
}

// parseGuess parses an x,y,r triple.
func parseGuess(s string) (models.Guess, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return models.Guess{}, fmt.Errorf("want x,y,r, got %q", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.Guess{}, err
		}
		vals[i] = v
	}
	return models.Guess{X: vals[0], Y: vals[1], R: vals[2]}, nil
}

// parseAnchors parses a semicolon-separated list of x,y pairs.
func parseAnchors(s string) ([]models.Anchor, error) {
	if s == "" {
		return nil, fmt.Errorf("at least one anchor point is required")
	}
	var anchors []models.Anchor
	for _, pair := range strings.Split(s, ";") {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("want x,y pairs, got %q", pair)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, models.Anchor{X: x, Y: y})
	}
	return anchors, nil
}

// writeCSV saves a curve as x,y rows with a header.
func writeCSV(path string, c *radial.Curve) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"x", "intensity"}); err != nil {
		return err
	}
	for i := range c.X {
		record := []string{
			strconv.FormatFloat(c.X[i], 'g', -1, 64),
			strconv.FormatFloat(c.Y[i], 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
