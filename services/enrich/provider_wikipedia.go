package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelpick/models"
)

const (
	wikipediaDefaultBaseURL = "https://en.wikipedia.org"
	wikipediaTimeout        = 2 * time.Second
	wikipediaThumbSize      = "200"
)

// WikipediaProvider queries the MediaWiki pageimages API for the subject's
// infobox image. Structured and free, but only covers people with an
// article under exactly their credited name.
type WikipediaProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewWikipediaProvider(baseURL string, client *http.Client) *WikipediaProvider {
	if client == nil {
		client = &http.Client{Timeout: wikipediaTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = wikipediaDefaultBaseURL
	}
	return &WikipediaProvider{baseURL: baseURL, httpClient: client}
}

func (p *WikipediaProvider) Name() string { return "wikipedia" }

func (p *WikipediaProvider) Resolve(ctx context.Context, subject string) (models.Image, bool) {
	params := url.Values{
		"action":      []string{"query"},
		"titles":      []string{subject},
		"prop":        []string{"pageimages"},
		"format":      []string{"json"},
		"pithumbsize": []string{wikipediaThumbSize},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return models.Image{}, false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Image{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Image{}, false
	}

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Image{}, false
	}

	for _, page := range payload.Query.Pages {
		if page.Thumbnail.Source != "" {
			return models.Image{URL: page.Thumbnail.Source}, true
		}
	}
	return models.Image{}, false
}
