package enrich

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	youtubeDefaultBaseURL = "https://www.youtube.com"
	youtubeTimeout        = 5 * time.Second
	youtubeMaxBodyBytes   = 2 << 20
)

var (
	// First video ID embedded in the results page. Scrape-grade: when the
	// page layout shifts, Resolve degrades to the search URL fallback.
	youtubeVideoIDPattern = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)

	trailerQueryPunctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// TrailerResolver finds an external trailer link for a title. Two tiers:
// scrape the video platform's search results for a direct watch link, and
// when that fails fall back to the search-results URL itself, which always
// resolves even though it is not directly playable. The caller therefore
// always gets something clickable.
type TrailerResolver struct {
	baseURL    string
	httpClient *http.Client
}

func NewTrailerResolver(baseURL string, client *http.Client) *TrailerResolver {
	if client == nil {
		client = &http.Client{Timeout: youtubeTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = youtubeDefaultBaseURL
	}
	return &TrailerResolver{baseURL: baseURL, httpClient: client}
}

// searchQuery builds the query string: title with punctuation stripped,
// plus the year when known.
func searchQuery(title string, year int) string {
	q := trailerQueryPunctuation.ReplaceAllString(title, "")
	q = strings.Join(strings.Fields(q), " ")
	if year > 0 {
		q = fmt.Sprintf("%s %d", q, year)
	}
	return q
}

// SearchURL returns the always-resolvable results page for the title.
func (t *TrailerResolver) SearchURL(title string, year int) string {
	return t.baseURL + "/results?search_query=" + url.QueryEscape(searchQuery(title, year))
}

// Resolve returns a direct watch URL when the scrape succeeds, the search
// URL otherwise. Never empty, never an error.
func (t *TrailerResolver) Resolve(ctx context.Context, title string, year int) string {
	fallback := t.SearchURL(title, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fallback, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Printf("[enrich] trailer scrape failed title=%q err=%v; using search url", title, err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[enrich] trailer scrape status=%s title=%q; using search url", resp.Status, title)
		return fallback
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, youtubeMaxBodyBytes))
	if err != nil {
		return fallback
	}

	match := youtubeVideoIDPattern.FindSubmatch(body)
	if match == nil {
		return fallback
	}
	return t.baseURL + "/watch?v=" + string(match[1])
}
