package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/cloudfree/cloudfree-cli/internal/raster"
	"github.com/cloudfree/cloudfree-cli/internal/utils"
)

// geotiffNoData replaces NaN in exported rasters. GIS tools expect a concrete
// sentinel rather than NaN.
const geotiffNoData = -9999.0

// CreateCompositeGeoTIFF writes all composite bands to a GeoTIFF with the
// stack's geotransform and spatial reference, one band per composite band in
// sorted name order.
func CreateCompositeGeoTIFF(composite *raster.Composite, outputPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output folder: %v", err)
	}

	var err error
	utils.WithGDALLock(func() {
		err = writeGeoTIFF(composite, outputPath)
	})
	if err != nil {
		return "", err
	}
	return outputPath, nil
}

func writeGeoTIFF(composite *raster.Composite, outputPath string) error {
	bandNames := composite.BandNames()

	godal.RegisterInternalDrivers()
	ds, err := godal.Create(godal.GTiff, outputPath, len(bandNames), godal.Float64, composite.Width, composite.Height)
	if err != nil {
		return fmt.Errorf("failed to create GeoTIFF: %w", err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(composite.GeoTransform); err != nil {
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}
	if composite.EPSG != 0 {
		sr, err := godal.NewSpatialRefFromEPSG(composite.EPSG)
		if err != nil {
			return fmt.Errorf("failed to create spatial ref for EPSG %d: %w", composite.EPSG, err)
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("failed to set spatial ref: %w", err)
		}
	}

	bands := ds.Bands()
	for i, name := range bandNames {
		data := composite.Band(name)
		buffer := make([]float64, len(data))
		for j, v := range data {
			if math.IsNaN(v) {
				buffer[j] = geotiffNoData
			} else {
				buffer[j] = v
			}
		}
		if err := bands[i].SetNoData(geotiffNoData); err != nil {
			return fmt.Errorf("failed to set no-data for band %s: %w", name, err)
		}
		if err := bands[i].Write(0, 0, buffer, composite.Width, composite.Height); err != nil {
			return fmt.Errorf("failed to write band %s: %w", name, err)
		}
	}

	return nil
}
