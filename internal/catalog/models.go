package catalog

import "time"

// searchResponse is a STAC API ItemCollection.
type searchResponse struct {
	Type     string       `json:"type"` // "FeatureCollection"
	Features []stacItem   `json:"features"`
	Links    []searchLink `json:"links"`
}

type searchLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type stacItem struct {
	ID         string               `json:"id"`
	Properties stacProperties       `json:"properties"`
	Assets     map[string]stacAsset `json:"assets"`
	BBox       []float64            `json:"bbox"`
}

type stacProperties struct {
	Datetime   string   `json:"datetime"`
	CloudCover *float64 `json:"eo:cloud_cover"`
	EPSG       int      `json:"proj:epsg"`
	Platform   string   `json:"platform"`
}

type stacAsset struct {
	Href  string   `json:"href"`
	Type  string   `json:"type"`
	Roles []string `json:"roles"`
}

// SceneRef points at one catalog scene: when it was captured, how cloudy it
// is, and where each band asset lives. The catalog itself stays a black box;
// this is everything downstream fetching needs.
type SceneRef struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	CloudCover float64           `json:"cloud_cover"`
	EPSG       int               `json:"epsg"`
	Platform   string            `json:"platform"`
	Assets     map[string]string `json:"assets"`
}
