package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"reelpick/models"
)

const (
	anilistDefaultBaseURL = "https://graphql.anilist.co"
	anilistTimeout        = 4 * time.Second
)

// anilistStaffQuery finds the best-matching staff entry for a name. Covers
// voice actors and animation staff the western sources usually miss.
const anilistStaffQuery = `query ($search: String) {
  Staff(search: $search) {
    image { large medium }
  }
}`

// AniListProvider looks the subject up in AniList's staff directory via
// its GraphQL API.
type AniListProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewAniListProvider(baseURL string, client *http.Client) *AniListProvider {
	if client == nil {
		client = &http.Client{Timeout: anilistTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = anilistDefaultBaseURL
	}
	return &AniListProvider{baseURL: baseURL, httpClient: client}
}

func (p *AniListProvider) Name() string { return "anilist" }

func (p *AniListProvider) Resolve(ctx context.Context, subject string) (models.Image, bool) {
	reqBody, err := json.Marshal(map[string]any{
		"query":     anilistStaffQuery,
		"variables": map[string]string{"search": subject},
	})
	if err != nil {
		return models.Image{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return models.Image{}, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Image{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Image{}, false
	}

	var payload struct {
		Data struct {
			Staff struct {
				Image struct {
					Large  string `json:"large"`
					Medium string `json:"medium"`
				} `json:"image"`
			} `json:"Staff"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Image{}, false
	}

	if img := payload.Data.Staff.Image.Large; img != "" {
		return models.Image{URL: img}, true
	}
	if img := payload.Data.Staff.Image.Medium; img != "" {
		return models.Image{URL: img}, true
	}
	return models.Image{}, false
}
