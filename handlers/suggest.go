package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"reelpick/models"
	"reelpick/services/plex"
	"reelpick/services/sampler"
)

// SuggestMaxAttempts is the sampling budget for the suggestion path. It is
// higher than the sampler default because a suggestion request already pays
// for full enrichment.
const SuggestMaxAttempts = 5

type suggestSampler interface {
	Sample(ctx context.Context, library string, rejected map[string]struct{}, maxAttempts int) (models.MediaItem, error)
}

type suggestCatalog interface {
	ItemDetails(ctx context.Context, ratingKey string) (models.MediaItem, error)
}

type enrichService interface {
	Enrich(ctx context.Context, item models.MediaItem) models.EnrichedItem
}

type SuggestHandler struct {
	Sampler        suggestSampler
	Catalog        suggestCatalog
	Enrich         enrichService
	DefaultLibrary string
	// MaxAttempts overrides the sampling budget; zero means
	// SuggestMaxAttempts.
	MaxAttempts int
}

func NewSuggestHandler(s suggestSampler, catalog suggestCatalog, enrich enrichService, defaultLibrary string) *SuggestHandler {
	return &SuggestHandler{
		Sampler:        s,
		Catalog:        catalog,
		Enrich:         enrich,
		DefaultLibrary: defaultLibrary,
	}
}

// Suggest returns one random enriched unwatched item from the requested
// library. An exhausted catalog is a 200 with a distinct empty payload, not
// an error.
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	library := r.URL.Query().Get("library")
	if library == "" {
		library = h.DefaultLibrary
	}

	attempts := h.MaxAttempts
	if attempts < 1 {
		attempts = SuggestMaxAttempts
	}
	item, err := h.Sampler.Sample(r.Context(), library, nil, attempts)
	if errors.Is(err, sampler.ErrNoCandidates) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "empty"})
		return
	}
	if errors.Is(err, plex.ErrSectionNotFound) {
		writeError(w, http.StatusNotFound, "unknown library")
		return
	}
	if err != nil {
		log.Printf("[suggest] sample failed library=%s err=%v", library, err)
		writeError(w, http.StatusBadGateway, "media server unavailable, try again")
		return
	}

	// The listing entry lacks roles and extras; fetch the full record but
	// fall back to what we have if that call fails.
	details, err := h.Catalog.ItemDetails(r.Context(), item.ID)
	if err != nil {
		log.Printf("[suggest] details fetch failed id=%s err=%v", item.ID, err)
		details = item
	}

	enriched := h.Enrich.Enrich(r.Context(), details)
	writeJSON(w, http.StatusOK, enriched)
}
