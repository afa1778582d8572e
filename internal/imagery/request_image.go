package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/cloudfree/cloudfree-cli/internal/properties"
	"golang.org/x/oauth2/clientcredentials"
)

// SceneBands are the bands requested from the process API, in output order.
// SCL is the Sentinel-2 scene classification used for cloud masking.
var SceneBands = []string{"B04", "B03", "B02", "B08", "SCL"}

const sceneResolutionMeters = 10

func calculatePixels(distance float64, resolution float64) int {
	pixels := distance * (111_000.0 / resolution)
	if pixels < 1 {
		return 1
	}
	return int(pixels)
}

// requestSceneImage asks the process API to render the AOI for one time range
// as a multiband FLOAT32 GeoTIFF. Every scene of an AOI is requested with the
// same geometry and pixel grid, so the returned frames are co-registered by
// construction.
func requestSceneImage(startDate, endDate time.Time, geometry *godal.Geometry) ([]byte, error) {
	startDateStr := startDate.Format(time.RFC3339)
	endDateStr := endDate.Format(time.RFC3339)

	bbox, err := geometry.Bounds()
	if err != nil {
		return nil, fmt.Errorf("failed to get geometry bounds: %v", err)
	}

	widthPixels := calculatePixels(bbox[2]-bbox[0], sceneResolutionMeters)
	heightPixels := calculatePixels(bbox[3]-bbox[1], sceneResolutionMeters)
	// Clamp to allowed range (1-2500)
	if widthPixels > 2500 {
		widthPixels = 2500
	}
	if heightPixels > 2500 {
		heightPixels = 2500
	}

	evalscript := `
    //VERSION=3
    function setup() {
      return {
        input: ["B04", "B03", "B02", "B08", "SCL"],
        output: {
          id: "default",
          bands: 5,
          sampleType: SampleType.FLOAT32,
        },
      }
    }

    function evaluatePixel(sample) {
      return [sample.B04, sample.B03, sample.B02, sample.B08, sample.SCL];
    }
  `

	geometryGeojson, err := geometry.GeoJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export geometry to GeoJSON: %w", err)
	}
	var geojsonMap map[string]interface{}
	if err := json.Unmarshal([]byte(geometryGeojson), &geojsonMap); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	requestPayload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": geojsonMap,
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": startDateStr,
							"to":   endDateStr,
						},
					},
					"type": "sentinel-2-l2a",
				},
			},
		},
		"output": map[string]interface{}{
			"width":  widthPixels,
			"height": heightPixels,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format": map[string]string{
						"type": "image/tiff",
					},
				},
			},
		},
		"evalscript": evalscript,
		"mosaicking": "mostRecent",
	}

	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %v", err)
	}

	clientID := properties.CopernicusClientID()
	clientSecret := properties.CopernicusClientSecret()
	tokenURL := properties.CopernicusTokenURL()
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := config.Client(context.Background())

	url := properties.ProcessAPIURL()

	retries := 10
	var response *http.Response
	for attempt := 1; attempt <= retries; attempt++ {
		response, err = httpClient.Post(url, "application/json", bytes.NewBuffer(requestBody))
		if err == nil && response.StatusCode == http.StatusOK {
			break
		}

		if response != nil {
			body, _ := io.ReadAll(response.Body)
			response.Body.Close()
			if response.StatusCode == http.StatusForbidden || response.StatusCode == http.StatusUnauthorized {
				return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
			}
			fmt.Printf("Attempt %d failed: %s\n", attempt, string(body))
		} else {
			fmt.Printf("Attempt %d failed: %v\n", attempt, err)
		}

		time.Sleep(5 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to request image after %d attempts: %v", retries, err)
	}
	if response == nil || response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to request image after %d attempts", retries)
	}
	defer response.Body.Close()

	responseContent, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	return responseContent, nil
}
