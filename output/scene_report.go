package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudfree/cloudfree-cli/internal/catalog"
	"github.com/gocarina/gocsv"
)

// SceneReportRow is one catalog scene that contributed to a composite.
type SceneReportRow struct {
	SceneID     string  `csv:"scene_id"`
	Date        string  `csv:"date"`
	CloudCover  float64 `csv:"cloud_cover"`
	Platform    string  `csv:"platform"`
	EPSG        int     `csv:"epsg"`
	CentroidLat float64 `csv:"centroid_lat"`
	CentroidLon float64 `csv:"centroid_lon"`
}

// CreateSceneReport writes the scenes behind a composite to a CSV so a run can
// be audited without re-querying the catalog.
func CreateSceneReport(scenes []catalog.SceneRef, centroidLat, centroidLon float64, outputPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output folder: %v", err)
	}

	rows := make([]SceneReportRow, 0, len(scenes))
	for _, scene := range scenes {
		rows = append(rows, SceneReportRow{
			SceneID:     scene.ID,
			Date:        scene.Timestamp.Format("2006-01-02"),
			CloudCover:  scene.CloudCover,
			Platform:    scene.Platform,
			EPSG:        scene.EPSG,
			CentroidLat: centroidLat,
			CentroidLon: centroidLon,
		})
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return outputPath, nil
}
