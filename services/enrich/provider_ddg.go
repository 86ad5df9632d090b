package enrich

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"reelpick/models"
	"reelpick/utils"
)

const (
	ddgDefaultBaseURL = "https://duckduckgo.com"
	ddgTimeout        = 3 * time.Second

	// Result pages are large; the first image link shows up well within
	// this window.
	ddgMaxBodyBytes = 1 << 20
)

// ddgImagePattern pulls the first embedded image URL out of the result
// page. Best-effort regex over HTML: the page layout is not a contract and
// this provider is expected to silently degrade when it changes.
var ddgImagePattern = regexp.MustCompile(`"image":"(https://[^"]+?)"`)

// DDGProvider scrapes a DuckDuckGo image search for a headshot. Noisier
// than the structured sources but covers subjects the catalog has no
// thumbnail for.
type DDGProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewDDGProvider constructs the scraper. baseURL is overridable for tests;
// empty falls back to the public endpoint.
func NewDDGProvider(baseURL string, client *http.Client) *DDGProvider {
	if client == nil {
		client = &http.Client{Timeout: ddgTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = ddgDefaultBaseURL
	}
	return &DDGProvider{baseURL: baseURL, httpClient: client}
}

func (p *DDGProvider) Name() string { return "ddg" }

func (p *DDGProvider) Resolve(ctx context.Context, subject string) (models.Image, bool) {
	query := url.QueryEscape(subject + " imdb")
	endpoint := p.baseURL + "/?q=" + query + "&iax=images&ia=images"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Image{}, false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Image{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Image{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, ddgMaxBodyBytes))
	if err != nil {
		return models.Image{}, false
	}

	match := ddgImagePattern.FindSubmatch(body)
	if match == nil {
		return models.Image{}, false
	}

	imageURL := strings.ReplaceAll(string(match[1]), `\/`, "/")
	if encoded, err := utils.EncodeURLWithSpaces(imageURL); err == nil {
		imageURL = encoded
	}
	return models.Image{URL: imageURL}, true
}
