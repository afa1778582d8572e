package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func stacItemJSON(id, datetime string, cloud float64) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"type": "Feature",
		"properties": map[string]interface{}{
			"datetime":       datetime,
			"eo:cloud_cover": cloud,
			"proj:epsg":      32633,
			"platform":       "sentinel-2a",
		},
		"assets": map[string]interface{}{
			"red": map[string]interface{}{
				"href": "https://example.com/" + id + "/B04.tif",
				"type": "image/tiff; application=geotiff",
			},
			"scl": map[string]interface{}{
				"href": "https://example.com/" + id + "/SCL.tif",
			},
		},
	}
}

func TestSearchParsesScenes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []interface{}{"sentinel-2-l2a"}, body["collections"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"type": "FeatureCollection",
			"features": []interface{}{
				stacItemJSON("S2A_B", "2023-06-15T10:30:00Z", 12.5),
				stacItemJSON("S2A_A", "2023-06-05T10:30:00Z", 3.0),
			},
		})
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	scenes, err := client.Search(SearchRequest{
		Collection: "sentinel-2-l2a",
		BBox:       [4]float64{10, 50, 11, 51},
		Start:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		MaxCloud:   20,
	})
	assert.NoError(t, err)
	assert.Len(t, scenes, 2)

	// Ordered by timestamp ascending regardless of response order.
	assert.Equal(t, "S2A_A", scenes[0].ID)
	assert.Equal(t, "S2A_B", scenes[1].ID)
	assert.Equal(t, 3.0, scenes[0].CloudCover)
	assert.Equal(t, 32633, scenes[0].EPSG)
	assert.Equal(t, "https://example.com/S2A_A/B04.tif", scenes[0].Assets["red"])
}

func TestSearchFiltersCloudCoverClientSide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A catalog that ignores the query extension.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type": "FeatureCollection",
			"features": []interface{}{
				stacItemJSON("clear", "2023-06-05T10:30:00Z", 4.0),
				stacItemJSON("cloudy", "2023-06-15T10:30:00Z", 88.0),
			},
		})
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	scenes, err := client.Search(SearchRequest{
		Collection: "sentinel-2-l2a",
		Start:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		MaxCloud:   20,
	})
	assert.NoError(t, err)
	assert.Len(t, scenes, 1)
	assert.Equal(t, "clear", scenes[0].ID)
}

func TestSearchFollowsPagination(t *testing.T) {
	var server *httptest.Server
	page := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		resp := map[string]interface{}{
			"type": "FeatureCollection",
			"features": []interface{}{
				stacItemJSON(fmt.Sprintf("scene-%d", page), fmt.Sprintf("2023-06-%02dT10:30:00Z", page), 1.0),
			},
		}
		if page == 1 {
			resp["links"] = []interface{}{
				map[string]interface{}{"rel": "next", "href": server.URL + "/search"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	scenes, err := client.Search(SearchRequest{
		Collection: "sentinel-2-l2a",
		Start:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		MaxCloud:   20,
	})
	assert.NoError(t, err)
	assert.Len(t, scenes, 2)
	assert.Equal(t, 2, page)
}

func TestSearchSurfacesClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":400,"description":"invalid bbox"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	_, err := client.Search(SearchRequest{
		Collection: "sentinel-2-l2a",
		Start:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		MaxCloud:   20,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSearchRejectsInvertedDateRange(t *testing.T) {
	client := NewClientWithHTTP("http://unused", http.DefaultClient)
	_, err := client.Search(SearchRequest{
		Collection: "sentinel-2-l2a",
		Start:      time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestSceneFromItemMissingCloudCoverDefaultsHigh(t *testing.T) {
	item := stacItem{
		ID: "no-cloud-metadata",
		Properties: stacProperties{
			Datetime: "2023-06-05T10:30:00Z",
		},
	}
	scene, err := sceneFromItem(item)
	assert.NoError(t, err)
	// Missing cloud metadata must not sneak a scene past the filter.
	assert.Equal(t, 100.0, scene.CloudCover)
	assert.Equal(t, time.Date(2023, 6, 5, 10, 30, 0, 0, time.UTC), scene.Timestamp)
}
