package plex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"reelpick/models"
)

// plexRole is a credited role entry in a PMS metadata response.
type plexRole struct {
	Tag   string `json:"tag"`
	Role  string `json:"role"`
	Thumb string `json:"thumb"`
}

// plexMetadata is the subset of a PMS metadata entry reelpick cares about.
type plexMetadata struct {
	RatingKey string     `json:"ratingKey"`
	Key       string     `json:"key"`
	Title     string     `json:"title"`
	Year      int        `json:"year"`
	Summary   string     `json:"summary"`
	Type      string     `json:"type"`
	Thumb     string     `json:"thumb"`
	Roles     []plexRole `json:"Role"`
	Extras    struct {
		Metadata []struct {
			Key     string `json:"key"`
			Type    string `json:"type"`
			Subtype string `json:"subtype"`
		} `json:"Metadata"`
	} `json:"Extras"`
}

type metadataResponse struct {
	MediaContainer struct {
		Metadata []plexMetadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

// Sections lists the server's library sections.
func (c *Client) Sections(ctx context.Context) ([]models.Section, error) {
	var resp struct {
		MediaContainer struct {
			Directory []struct {
				Key   string `json:"key"`
				Title string `json:"title"`
				Type  string `json:"type"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := c.doGET(ctx, "/library/sections", nil, &resp); err != nil {
		return nil, err
	}

	sections := make([]models.Section, 0, len(resp.MediaContainer.Directory))
	for _, dir := range resp.MediaContainer.Directory {
		sections = append(sections, models.Section{Title: dir.Title, Kind: dir.Type})
	}
	return sections, nil
}

// sectionKeyByTitle resolves a library name to its section key and type.
func (c *Client) sectionKeyByTitle(ctx context.Context, library string) (key, sectionType string, err error) {
	var resp struct {
		MediaContainer struct {
			Directory []struct {
				Key   string `json:"key"`
				Title string `json:"title"`
				Type  string `json:"type"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := c.doGET(ctx, "/library/sections", nil, &resp); err != nil {
		return "", "", err
	}
	for _, dir := range resp.MediaContainer.Directory {
		if strings.EqualFold(dir.Title, library) {
			return dir.Key, dir.Type, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrSectionNotFound, library)
}

// ListUnwatched returns the library's current unwatched set. For show
// sections the filter matches shows with any unwatched episode, mirroring
// how a viewer thinks about "something left to watch".
func (c *Client) ListUnwatched(ctx context.Context, library string) ([]models.MediaItem, error) {
	key, sectionType, err := c.sectionKeyByTitle(ctx, library)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if NormalizeKind(sectionType) == "series" {
		params.Set("unwatchedLeaves", "1")
	} else {
		params.Set("unwatched", "1")
	}

	var resp metadataResponse
	if err := c.doGET(ctx, "/library/sections/"+key+"/all", params, &resp); err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, 0, len(resp.MediaContainer.Metadata))
	for _, md := range resp.MediaContainer.Metadata {
		items = append(items, c.toMediaItem(md))
	}
	return items, nil
}

// ItemDetails fetches the full metadata for one item, including credited
// roles and extras. ratingKey is the item's stable server-scoped ID.
func (c *Client) ItemDetails(ctx context.Context, ratingKey string) (models.MediaItem, error) {
	params := url.Values{"includeExtras": []string{"1"}}

	var resp metadataResponse
	if err := c.doGET(ctx, "/library/metadata/"+ratingKey, params, &resp); err != nil {
		return models.MediaItem{}, err
	}
	if len(resp.MediaContainer.Metadata) == 0 {
		return models.MediaItem{}, fmt.Errorf("item %s not found", ratingKey)
	}
	return c.toMediaItem(resp.MediaContainer.Metadata[0]), nil
}

// toMediaItem converts a PMS metadata entry. Missing title/summary get the
// same fallbacks the UI used to hardcode.
func (c *Client) toMediaItem(md plexMetadata) models.MediaItem {
	item := models.MediaItem{
		ID:      md.RatingKey,
		Key:     md.Key,
		Title:   md.Title,
		Year:    md.Year,
		Summary: md.Summary,
		Kind:    NormalizeKind(md.Type),
		Thumb:   md.Thumb,
	}
	if item.Title == "" {
		item.Title = "Untitled"
	}
	if item.Summary == "" {
		item.Summary = "No summary available."
	}
	for _, role := range md.Roles {
		item.Roles = append(item.Roles, models.Role{Name: role.Tag, Thumb: role.Thumb})
	}
	for _, extra := range md.Extras.Metadata {
		if strings.Contains(strings.ToLower(extra.Subtype), "trailer") ||
			strings.Contains(strings.ToLower(extra.Type), "trailer") {
			item.Extras = append(item.Extras, extra.Key)
		}
	}
	return item
}

// FetchAsset streams a binary asset (poster, thumb) by server-relative
// path. The caller owns the returned body.
func (c *Client) FetchAsset(ctx context.Context, path string) (io.ReadCloser, string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, "", fmt.Errorf("asset path must be server-relative: %q", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("plex asset request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("plex asset %s failed: %s", path, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}
