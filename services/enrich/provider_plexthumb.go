package enrich

import (
	"context"

	"reelpick/models"
)

// RoleThumbProvider resolves cast images from the thumbnails the catalog
// item itself carries. It is built per enrichment call from the item's
// credited roles, which is what makes the provider chain injectable per
// call instead of global state.
type RoleThumbProvider struct {
	thumbs   map[string]string
	assetURL func(path string) string
}

// NewRoleThumbProvider indexes the item's credited roles by name. assetURL
// turns a server-relative thumb path into a reference clients can fetch.
func NewRoleThumbProvider(roles []models.Role, assetURL func(string) string) *RoleThumbProvider {
	thumbs := make(map[string]string, len(roles))
	for _, role := range roles {
		if role.Thumb != "" {
			thumbs[role.Name] = role.Thumb
		}
	}
	return &RoleThumbProvider{thumbs: thumbs, assetURL: assetURL}
}

func (p *RoleThumbProvider) Name() string { return "plex" }

// Resolve is purely local: the cheapest and most authoritative source in
// the cascade, so it always goes first.
func (p *RoleThumbProvider) Resolve(ctx context.Context, subject string) (models.Image, bool) {
	path, ok := p.thumbs[subject]
	if !ok {
		return models.Image{}, false
	}
	return models.Image{URL: p.assetURL(path), ContentType: "image/jpeg"}, true
}
