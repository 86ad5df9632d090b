package enrich

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"reelpick/models"
)

// MaxCast bounds enrichment fan-out: only the first 5 credited roles are
// resolved, whatever the catalog reports.
const MaxCast = 5

// maxConcurrentResolutions bounds parallel provider traffic per request.
const maxConcurrentResolutions = 3

// catalogLinker is the slice of the catalog client enrichment needs:
// composing the watch deeplink. Binary assets are never linked directly;
// they go through the asset proxy so the catalog address and token stay
// server-side.
type catalogLinker interface {
	WatchURL(machineID, key string) string
}

// defaultAssetProxyPath is where the asset proxy handler is mounted.
const defaultAssetProxyPath = "/api/image"

// Options configures a Service.
type Options struct {
	// Placeholder is the always-valid fallback image.
	Placeholder models.Image
	// FallbackChain is the provider cascade consulted after the item's
	// own thumbnails, in priority order. Nil means no fallbacks.
	FallbackChain []Provider
	// CacheDir enables the on-disk resolution cache when non-empty.
	CacheDir      string
	CacheTTLHours int
	// AssetProxyPath overrides where catalog asset references point.
	// Empty means the default proxy mount.
	AssetProxyPath string
	// TrailerBaseURL overrides the video platform endpoint (tests).
	TrailerBaseURL string
	// HTTPClient is shared by the trailer resolver; nil gets a default.
	HTTPClient *http.Client
}

// Service is the enrichment orchestrator. Given a sampled item it resolves
// the poster, up to MaxCast cast images, and a trailer link, and assembles
// an immutable EnrichedItem. It absorbs every per-field failure: Enrich
// has no error return by design.
type Service struct {
	catalog   catalogLinker
	fallbacks []Provider
	trailer   *TrailerResolver
	cache     *imageCache

	placeholder models.Image
	machineID   string
	proxyPath   string
}

// NewService builds the orchestrator. machineID is the catalog server's
// identifier used for watch deeplinks; it may be empty when the server was
// unreachable at startup.
func NewService(catalog catalogLinker, machineID string, opts Options) *Service {
	svc := &Service{
		catalog:     catalog,
		fallbacks:   opts.FallbackChain,
		trailer:     NewTrailerResolver(opts.TrailerBaseURL, opts.HTTPClient),
		placeholder: opts.Placeholder,
		machineID:   machineID,
	}
	if opts.CacheDir != "" {
		svc.cache = newImageCache(opts.CacheDir, opts.CacheTTLHours)
	}
	svc.proxyPath = opts.AssetProxyPath
	if svc.proxyPath == "" {
		svc.proxyPath = defaultAssetProxyPath
	}
	return svc
}

// SetMachineID records the catalog server identifier once known.
func (s *Service) SetMachineID(id string) { s.machineID = id }

// DefaultFallbackChain wires the production provider order: web image
// scrape, then staff directory, then encyclopedia infobox. The catalog
// thumbnail provider is built per item and always precedes these. All
// three share client, so one configured timeout governs the whole
// cascade; nil gets each provider's own default.
func DefaultFallbackChain(client *http.Client) []Provider {
	return []Provider{
		NewDDGProvider("", client),
		NewAniListProvider("", client),
		NewWikipediaProvider("", client),
	}
}

// Enrich resolves all presentation fields for the item. It never fails:
// at worst every field degrades to its placeholder.
func (s *Service) Enrich(ctx context.Context, item models.MediaItem) models.EnrichedItem {
	enriched := models.EnrichedItem{
		MediaItem: item,
		Poster:    s.resolvePoster(item),
		Cast:      s.resolveCast(ctx, item),
		WatchURL:  s.catalog.WatchURL(s.machineID, item.Key),
	}

	enriched.TrailerURL = s.trailer.Resolve(ctx, item.Title, item.Year)

	// The catalog's own trailer extra is kept alongside the external
	// link, never merged into it.
	if len(item.Extras) > 0 {
		enriched.InternalTrailerURL = s.assetURL(item.Extras[0])
	}

	return enriched
}

// resolvePoster uses the item's own thumbnail or the placeholder. The
// cascade is reserved for cast; the primary subject never goes through it.
func (s *Service) resolvePoster(item models.MediaItem) models.Image {
	if item.Thumb == "" {
		return s.placeholderImage()
	}
	return models.Image{
		URL:         s.assetURL(item.Thumb),
		ContentType: "image/jpeg",
		Source:      "plex",
	}
}

// assetURL turns a server-relative catalog path into a proxy reference.
// Clients fetch the bytes through the proxy; the catalog address and its
// credential never appear in a response. Absolute URLs pass through.
func (s *Service) assetURL(path string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		return path
	}
	return s.proxyPath + "?path=" + url.QueryEscape(path)
}

// resolveCast runs the cascade for the first MaxCast credited roles.
// Resolutions run concurrently but the credited order is preserved.
func (s *Service) resolveCast(ctx context.Context, item models.MediaItem) []models.CastMember {
	roles := item.Roles
	if len(roles) > MaxCast {
		roles = roles[:MaxCast]
	}
	if len(roles) == 0 {
		return []models.CastMember{}
	}

	thumbs := NewRoleThumbProvider(roles, s.assetURL)
	chain := append([]Provider{thumbs}, s.fallbacks...)
	resolver := NewResolver(s.placeholder, chain...)

	cast := make([]models.CastMember, len(roles))
	p := pool.New().WithMaxGoroutines(maxConcurrentResolutions)
	for i, role := range roles {
		i, role := i, role
		p.Go(func() {
			cast[i] = models.CastMember{
				Name:  role.Name,
				Image: s.resolveCastImage(ctx, resolver, role),
			}
		})
	}
	p.Wait()
	return cast
}

// resolveCastImage consults the disk cache before the cascade. Catalog
// thumbnails and placeholders are not cached: the former are free, the
// latter would pin a miss for the whole TTL.
func (s *Service) resolveCastImage(ctx context.Context, resolver *Resolver, role models.Role) models.Image {
	cacheable := role.Thumb == ""
	if cacheable && s.cache != nil {
		if img, ok := s.cache.get(role.Name); ok {
			return img
		}
	}

	img := resolver.ResolveImage(ctx, role.Name)
	if img.Source == "placeholder" {
		log.Printf("[enrich] cast image exhausted cascade subject=%q", role.Name)
		return img
	}

	if cacheable && s.cache != nil && img.Source != "plex" {
		if err := s.cache.set(role.Name, img); err != nil {
			log.Printf("[enrich] cache write failed subject=%q err=%v", role.Name, err)
		}
	}
	return img
}

func (s *Service) placeholderImage() models.Image {
	img := s.placeholder
	img.Source = "placeholder"
	return img
}
