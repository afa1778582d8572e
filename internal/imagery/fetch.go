package imagery

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/cloudfree/cloudfree-cli/internal/catalog"
	"github.com/cloudfree/cloudfree-cli/internal/properties"
	"github.com/cloudfree/cloudfree-cli/internal/raster"
	"github.com/cloudfree/cloudfree-cli/internal/utils"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentDownloads = 4

// FetchFrames downloads the given scenes for an AOI and returns them as
// co-registered frames keyed by acquisition time. Downloaded GeoTIFFs are kept
// under data/images/<aoi>/ and reused on the next run. Fetch errors are
// surfaced to the caller; retry policy lives in requestSceneImage.
func FetchFrames(geometry *godal.Geometry, aoi string, scenes []catalog.SceneRef) (map[time.Time]*raster.Frame, error) {
	imageDir := filepath.Join(properties.RootPath(), "data", "images", aoi)
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %v", err)
	}

	progressBar := progressbar.Default(int64(len(scenes)), "Fetching scenes")

	var group errgroup.Group
	group.SetLimit(maxConcurrentDownloads)
	for _, scene := range scenes {
		scene := scene
		group.Go(func() error {
			path := scenePath(imageDir, scene)
			if _, err := os.Stat(path); err == nil {
				progressBar.Add(1)
				return nil
			}

			// One scene per request: a tight window around the
			// acquisition so mostRecent mosaicking picks exactly it.
			from := scene.Timestamp.Add(-time.Hour)
			to := scene.Timestamp.Add(time.Hour)
			content, err := requestSceneImage(from, to, geometry)
			if err != nil {
				return fmt.Errorf("failed to fetch scene %s: %w", scene.ID, err)
			}
			if err := os.WriteFile(path, content, 0644); err != nil {
				return fmt.Errorf("failed to write scene %s: %v", scene.ID, err)
			}
			progressBar.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	progressBar.Finish()

	frames := make(map[time.Time]*raster.Frame, len(scenes))
	for _, scene := range scenes {
		frame, err := openFrame(scenePath(imageDir, scene), scene)
		if err != nil {
			return nil, err
		}
		frames[scene.Timestamp] = frame
	}

	return frames, nil
}

func scenePath(imageDir string, scene catalog.SceneRef) string {
	return filepath.Join(imageDir, fmt.Sprintf("%s_%s.tiff", scene.Timestamp.Format("2006-01-02"), scene.ID))
}

// openFrame reads a downloaded GeoTIFF into a Frame. Band order follows
// SceneBands, matching the process API evalscript output.
func openFrame(path string, scene catalog.SceneRef) (*raster.Frame, error) {
	var frame *raster.Frame
	var err error
	utils.WithGDALLock(func() {
		frame, err = readFrame(path, scene)
	})
	return frame, err
}

func readFrame(path string, scene catalog.SceneRef) (*raster.Frame, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene %s: %w", scene.ID, err)
	}
	defer ds.Close()

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY

	bands := ds.Bands()
	if len(bands) < len(SceneBands) {
		return nil, fmt.Errorf("scene %s has %d bands, expected %d", scene.ID, len(bands), len(SceneBands))
	}

	geoTransform, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform for scene %s: %w", scene.ID, err)
	}

	frame := &raster.Frame{
		ID:        scene.ID,
		Timestamp: scene.Timestamp,
		Width:     width,
		Height:    height,
		Bands:     make(map[string][]float64, len(SceneBands)),
		// The process API renders in the request CRS, WGS84 here.
		EPSG:         4326,
		GeoTransform: geoTransform,
	}

	for i, name := range SceneBands {
		data := make([]float64, width*height)
		if err := bands[i].Read(0, 0, data, width, height); err != nil {
			return nil, fmt.Errorf("failed to read band %s of scene %s: %w", name, scene.ID, err)
		}
		frame.Bands[name] = data
	}

	return frame, nil
}

// ListCachedScenes returns the cached GeoTIFF file names for an AOI.
func ListCachedScenes(aoi string) ([]string, error) {
	imageDir := filepath.Join(properties.RootPath(), "data", "images", aoi)
	files, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, file := range files {
		names = append(names, file.Name())
	}
	return names, nil
}
