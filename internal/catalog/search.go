package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/cloudfree/cloudfree-cli/internal/cache"
)

// SearchRequest describes one catalog query: a spatial extent, a time range
// and a maximum acceptable cloud-cover percentage.
type SearchRequest struct {
	Collection string
	BBox       [4]float64 // west, south, east, north (EPSG:4326)
	Start      time.Time
	End        time.Time
	MaxCloud   float64 // percent, 0-100
	Limit      int
}

// Client queries a STAC search endpoint. Retries live here, never in the
// composite engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	cache      *cache.FileCache[[]SceneRef]
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retries:    5,
		cache:      cache.NewFileCache[[]SceneRef]("catalog", 24*time.Hour),
	}
}

// NewClientWithHTTP is used by tests to point at a mock server without disk
// caching.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		retries:    1,
	}
}

// Search returns the scenes matching the request, ordered by timestamp
// ascending. Pagination is followed through `next` links until exhausted.
func (c *Client) Search(req SearchRequest) ([]SceneRef, error) {
	if req.End.Before(req.Start) {
		return nil, fmt.Errorf("search end date %s is before start date %s", req.End.Format("2006-01-02"), req.Start.Format("2006-01-02"))
	}

	var cacheKey string
	if c.cache != nil {
		cacheKey = c.cache.GenerateKey(req.Collection, req.BBox, req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"), req.MaxCloud)
		if scenes, ok := c.cache.Get(cacheKey); ok {
			return scenes, nil
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}

	body := map[string]interface{}{
		"collections": []string{req.Collection},
		"bbox":        req.BBox[:],
		"datetime":    fmt.Sprintf("%s/%s", req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339)),
		"limit":       limit,
		"query": map[string]interface{}{
			"eo:cloud_cover": map[string]float64{"lt": req.MaxCloud},
		},
	}

	var scenes []SceneRef
	url := c.baseURL + "/search"
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %v", err)
	}

	for url != "" {
		page, next, err := c.postSearch(url, payload)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, page...)
		url = next
	}

	// Defensive client-side filter: some catalogs ignore the query extension.
	filtered := scenes[:0]
	for _, s := range scenes {
		if s.CloudCover <= req.MaxCloud {
			filtered = append(filtered, s)
		}
	}
	scenes = filtered

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Timestamp.Before(scenes[j].Timestamp)
	})

	if c.cache != nil {
		c.cache.Set(cacheKey, scenes)
	}

	return scenes, nil
}

func (c *Client) postSearch(url string, payload []byte) ([]SceneRef, string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(payload))
		if err != nil {
			lastErr = err
			fmt.Printf("Catalog search attempt %d failed: %v\n", attempt, err)
			time.Sleep(2 * time.Second)
			continue
		}

		responseBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read search response: %v", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("catalog search returned status %d: %s", resp.StatusCode, string(responseBody))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, "", lastErr
			}
			time.Sleep(2 * time.Second)
			continue
		}

		var parsed searchResponse
		if err := json.Unmarshal(responseBody, &parsed); err != nil {
			return nil, "", fmt.Errorf("failed to parse search response: %w", err)
		}

		scenes := make([]SceneRef, 0, len(parsed.Features))
		for _, item := range parsed.Features {
			scene, err := sceneFromItem(item)
			if err != nil {
				return nil, "", err
			}
			scenes = append(scenes, scene)
		}

		next := ""
		for _, link := range parsed.Links {
			if link.Rel == "next" {
				next = link.Href
				break
			}
		}
		return scenes, next, nil
	}
	return nil, "", fmt.Errorf("catalog search failed after %d attempts: %w", c.retries, lastErr)
}

func sceneFromItem(item stacItem) (SceneRef, error) {
	ts, err := time.Parse(time.RFC3339, item.Properties.Datetime)
	if err != nil {
		return SceneRef{}, fmt.Errorf("scene %s has unparseable datetime %q: %v", item.ID, item.Properties.Datetime, err)
	}

	cloud := 100.0
	if item.Properties.CloudCover != nil {
		cloud = *item.Properties.CloudCover
	}

	assets := make(map[string]string, len(item.Assets))
	for name, asset := range item.Assets {
		assets[name] = asset.Href
	}

	return SceneRef{
		ID:         item.ID,
		Timestamp:  ts,
		CloudCover: cloud,
		EPSG:       item.Properties.EPSG,
		Platform:   item.Properties.Platform,
		Assets:     assets,
	}, nil
}
