package delivery

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cloudfree/cloudfree-cli/internal/catalog"
	"github.com/cloudfree/cloudfree-cli/internal/imagery"
	"github.com/cloudfree/cloudfree-cli/internal/properties"
	"github.com/cloudfree/cloudfree-cli/internal/raster"
	"github.com/cloudfree/cloudfree-cli/internal/utils"
	"github.com/cloudfree/cloudfree-cli/output"
)

// BuildTimelapse produces one cloud-free composite per calendar month of the
// range, renders each to a labeled true-color PNG and assembles them into an
// AVI. Months without any usable scene are skipped rather than failing the
// whole run.
func BuildTimelapse(aoi, feature string, startDate, endDate time.Time, maxCloud float64, policy raster.NoDataPolicy, fps int) (string, error) {
	geometry, err := imagery.GetGeometryFromGeoJSON(aoi, feature)
	if err != nil {
		return "", err
	}

	bbox, err := imagery.BBoxFromGeometry(geometry)
	if err != nil {
		return "", err
	}

	client := catalog.NewClient(properties.StacAPIURL())
	scenes, err := client.Search(catalog.SearchRequest{
		Collection: properties.StacCollection(),
		BBox:       bbox,
		Start:      startDate,
		End:        endDate,
		MaxCloud:   maxCloud,
	})
	if err != nil {
		return "", err
	}
	if len(scenes) == 0 {
		return "", fmt.Errorf("no scenes found for AOI %s feature %s between %s and %s",
			aoi, feature, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}

	frames, err := imagery.FetchFrames(geometry, aoi, scenes)
	if err != nil {
		return "", err
	}

	resultDir := filepath.Join(properties.RootPath(), "data", "result", aoi, feature, "timelapse")

	var framePaths []string
	for _, interval := range utils.MonthlyIntervals(startDate, endDate) {
		monthFrames := make(map[time.Time]*raster.Frame)
		for date, frame := range frames {
			if !date.Before(interval.Start) && date.Before(interval.End) {
				monthFrames[date] = frame
			}
		}
		if len(monthFrames) == 0 {
			fmt.Printf("No scenes for %s, skipping\n", interval.Start.Format("2006-01"))
			continue
		}

		composite, err := composeFrames(monthFrames, policy)
		if err != nil {
			return "", fmt.Errorf("failed to compose %s: %w", interval.Start.Format("2006-01"), err)
		}

		label := interval.Start.Format("2006-01")
		framePath := filepath.Join(resultDir, label+".png")
		if _, err := output.CreateTrueColorImage(composite, "B04", "B03", "B02", raster.DefaultGamma, label, framePath); err != nil {
			return "", err
		}
		framePaths = append(framePaths, framePath)
	}

	if len(framePaths) == 0 {
		return "", fmt.Errorf("no composites could be built for the requested range")
	}

	videoPath := filepath.Join(resultDir, fmt.Sprintf("%s_%s_%s.avi", feature, startDate.Format("2006-01"), endDate.Format("2006-01")))
	if err := output.CreateTimelapseVideo(framePaths, videoPath, fps); err != nil {
		return "", err
	}

	return videoPath, nil
}
