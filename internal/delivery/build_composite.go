package delivery

import (
	"fmt"
	"time"

	"github.com/cloudfree/cloudfree-cli/internal/catalog"
	"github.com/cloudfree/cloudfree-cli/internal/imagery"
	"github.com/cloudfree/cloudfree-cli/internal/properties"
	"github.com/cloudfree/cloudfree-cli/internal/raster"
	"github.com/cloudfree/cloudfree-cli/internal/utils"
)

// CompositeResult bundles a finished composite with the scenes that fed it.
type CompositeResult struct {
	Composite   *raster.Composite
	Scenes      []catalog.SceneRef
	CentroidLat float64
	CentroidLon float64
}

// BuildComposite runs the whole pipeline for one AOI feature: catalog search,
// scene fetch, stacking and median compositing.
func BuildComposite(aoi, feature string, startDate, endDate time.Time, maxCloud float64, policy raster.NoDataPolicy) (*CompositeResult, error) {
	start := time.Now()

	geometry, err := imagery.GetGeometryFromGeoJSON(aoi, feature)
	if err != nil {
		return nil, err
	}

	bbox, err := imagery.BBoxFromGeometry(geometry)
	if err != nil {
		return nil, err
	}

	centroidLat, centroidLon, err := imagery.GetCentroidLatitudeLongitudeFromGeometry(geometry)
	if err != nil {
		return nil, err
	}

	stepStart := time.Now()
	client := catalog.NewClient(properties.StacAPIURL())
	scenes, err := client.Search(catalog.SearchRequest{
		Collection: properties.StacCollection(),
		BBox:       bbox,
		Start:      startDate,
		End:        endDate,
		MaxCloud:   maxCloud,
	})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Catalog search took %v, found %d scenes\n", time.Since(stepStart), len(scenes))
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes found for AOI %s feature %s between %s and %s with cloud cover below %.0f%%",
			aoi, feature, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), maxCloud)
	}

	stepStart = time.Now()
	frames, err := imagery.FetchFrames(geometry, aoi, scenes)
	if err != nil {
		return nil, err
	}
	fmt.Printf("FetchFrames took %v\n", time.Since(stepStart))

	stepStart = time.Now()
	composite, err := composeFrames(frames, policy)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Compose took %v\n", time.Since(stepStart))

	fmt.Printf("Total BuildComposite execution time: %v\n", time.Since(start))
	return &CompositeResult{
		Composite:   composite,
		Scenes:      scenes,
		CentroidLat: centroidLat,
		CentroidLon: centroidLon,
	}, nil
}

func composeFrames(frames map[time.Time]*raster.Frame, policy raster.NoDataPolicy) (*raster.Composite, error) {
	stack, err := raster.NewStack()
	if err != nil {
		return nil, err
	}
	for _, date := range utils.GetSortedKeys(frames, true) {
		if err := stack.AddFrame(frames[date]); err != nil {
			return nil, err
		}
	}
	return raster.Compose(stack, policy)
}
