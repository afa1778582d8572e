package imagery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/cloudfree/cloudfree-cli/internal/properties"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// GetGeometryFromGeoJSON loads the geometry of one feature from
// data/geojsons/<aoi>.geojson, identified by its feature_id property. The
// geometry is expected in EPSG:4326.
func GetGeometryFromGeoJSON(aoi, feature string) (*godal.Geometry, error) {
	filePath := fmt.Sprintf("%s/data/geojsons/%s.geojson", properties.RootPath(), aoi)

	godal.RegisterInternalDrivers()
	ds, err := godal.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	layer := ds.Layers()[0]
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}
		defer feat.Close()

		val, ok := feat.Fields()["feature_id"]
		if !ok {
			continue
		}

		if val.String() == feature {
			geom := feat.Geometry()
			wkb, _ := geom.WKB()
			return godal.NewGeometryFromWKB(wkb, geom.SpatialRef())
		}
	}

	return nil, fmt.Errorf("geometry not found for AOI %s and feature %s", aoi, feature)
}

// GetCentroidLatitudeLongitudeFromGeometry returns the geometry's centroid,
// used to label reports and notifications.
func GetCentroidLatitudeLongitudeFromGeometry(g *godal.Geometry) (float64, float64, error) {
	gj, err := g.GeoJSON()
	if err != nil {
		return 0, 0, err
	}
	geomT, err := geojson.UnmarshalGeometry([]byte(gj))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to unmarshal geometry GeoJSON: %w", err)
	}

	centroid, area := planar.CentroidArea(geomT.Coordinates)
	if area <= 0 {
		return 0, 0, errors.New("error getting centroid")
	}
	return centroid.Y(), centroid.X(), nil
}

// BBoxFromGeometry returns the geometry's bounding box as
// west, south, east, north for catalog searches.
func BBoxFromGeometry(g *godal.Geometry) ([4]float64, error) {
	bounds, err := g.Bounds()
	if err != nil {
		return [4]float64{}, fmt.Errorf("failed to get geometry bounds: %v", err)
	}
	return [4]float64{bounds[0], bounds[1], bounds[2], bounds[3]}, nil
}

// ListAOIs returns the AOI names with a GeoJSON file under data/geojsons.
func ListAOIs() ([]string, error) {
	files, err := os.ReadDir(filepath.Join(properties.RootPath(), "data", "geojsons"))
	if err != nil {
		return nil, err
	}

	var aois []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".geojson") {
			aois = append(aois, strings.TrimSuffix(file.Name(), ".geojson"))
		}
	}
	return aois, nil
}

// ListFeatureIDs returns the feature_id values present in an AOI file.
func ListFeatureIDs(aoi string) ([]string, error) {
	filePath := filepath.Join(properties.RootPath(), "data", "geojsons", aoi+".geojson")
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var fc struct {
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(file).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON: %w", err)
	}

	var ids []string
	for _, feature := range fc.Features {
		if id, ok := feature.Properties["feature_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
