package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrSectionNotFound is returned when a library filter names a section the
// server does not have.
var ErrSectionNotFound = errors.New("library section not found")

// Client talks to a Plex Media Server. All media paths it hands out are
// server-relative; the base URL and token are only combined for the
// client's own requests, so the token never reaches end clients.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given server.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// setHeaders adds the headers every PMS request needs.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Product", "reelpick")
}

// doGET performs a GET against a server-relative path and decodes the JSON
// response into v.
func (c *Client) doGET(ctx context.Context, path string, params url.Values, v any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("plex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("plex %s failed: %s - %s", path, resp.Status, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// NormalizeKind converts a Plex media type to the reelpick kind.
func NormalizeKind(plexType string) string {
	switch strings.ToLower(plexType) {
	case "movie":
		return "movie"
	case "show":
		return "series"
	default:
		return "other"
	}
}

// WatchURL builds the deeplink into the Plex web app for an item key.
func (c *Client) WatchURL(machineID, key string) string {
	return fmt.Sprintf("%s/web/index.html#!/server/%s/details?key=%s", c.baseURL, machineID, url.QueryEscape(key))
}

// MachineID fetches the server's stable machine identifier.
func (c *Client) MachineID(ctx context.Context) (string, error) {
	var resp struct {
		MediaContainer struct {
			MachineIdentifier string `json:"machineIdentifier"`
		} `json:"MediaContainer"`
	}
	if err := c.doGET(ctx, "/", nil, &resp); err != nil {
		return "", err
	}
	return resp.MediaContainer.MachineIdentifier, nil
}
