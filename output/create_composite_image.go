package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cloudfree/cloudfree-cli/internal/raster"
	"github.com/fogleman/gg"
)

// CreateTrueColorImage renders a composite's red/green/blue bands to a PNG.
// No-data pixels are painted black. An optional label (e.g. the composite
// month) is drawn in the top-left corner.
func CreateTrueColorImage(composite *raster.Composite, red, green, blue string, gamma float64, label, outputPath string) (string, error) {
	r, g, b, err := composite.TrueColor(red, green, blue, gamma)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output folder: %v", err)
	}

	width, height := composite.Width, composite.Height
	dc := gg.NewContext(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			rv, gv, bv := r[idx], g[idx], b[idx]
			if math.IsNaN(rv) || math.IsNaN(gv) || math.IsNaN(bv) {
				dc.SetRGB(0, 0, 0)
			} else {
				dc.SetRGB(rv, gv, bv)
			}
			dc.SetPixel(x, y)
		}
	}

	if label != "" {
		dc.SetRGB(1, 1, 1)
		dc.DrawString(label, 8, 16)
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return "", fmt.Errorf("failed to save image: %v", err)
	}

	return outputPath, nil
}
