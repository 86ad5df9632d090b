package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelpick/models"
	"reelpick/services/sampler"
)

type fakeSampler struct {
	item    models.MediaItem
	err     error
	gotLib  string
	gotMax  int
	gotRejs map[string]struct{}
}

func (s *fakeSampler) Sample(ctx context.Context, library string, rejected map[string]struct{}, maxAttempts int) (models.MediaItem, error) {
	s.gotLib = library
	s.gotMax = maxAttempts
	s.gotRejs = rejected
	return s.item, s.err
}

type fakeDetailsCatalog struct {
	details models.MediaItem
	err     error
}

func (c *fakeDetailsCatalog) ItemDetails(ctx context.Context, key string) (models.MediaItem, error) {
	return c.details, c.err
}

type fakeEnrich struct{}

func (fakeEnrich) Enrich(ctx context.Context, item models.MediaItem) models.EnrichedItem {
	return models.EnrichedItem{MediaItem: item, TrailerURL: "https://yt/watch?v=x"}
}

func TestSuggest_ReturnsEnrichedItem(t *testing.T) {
	samp := &fakeSampler{item: models.MediaItem{ID: "1", Key: "/library/metadata/1", Title: "Heat"}}
	catalog := &fakeDetailsCatalog{details: models.MediaItem{ID: "1", Title: "Heat", Roles: []models.Role{{Name: "Al"}}}}
	h := NewSuggestHandler(samp, catalog, fakeEnrich{}, "Movies")

	req := httptest.NewRequest(http.MethodGet, "/api/suggest", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body models.EnrichedItem
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Title != "Heat" || body.TrailerURL == "" {
		t.Errorf("expected enriched item, got %+v", body)
	}
	if samp.gotLib != "Movies" {
		t.Errorf("expected default library, got %q", samp.gotLib)
	}
	if samp.gotMax != SuggestMaxAttempts {
		t.Errorf("expected suggestion attempt budget, got %d", samp.gotMax)
	}
}

func TestSuggest_LibraryQueryOverridesDefault(t *testing.T) {
	samp := &fakeSampler{item: models.MediaItem{ID: "1"}}
	h := NewSuggestHandler(samp, &fakeDetailsCatalog{}, fakeEnrich{}, "Movies")

	req := httptest.NewRequest(http.MethodGet, "/api/suggest?library=Anime", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if samp.gotLib != "Anime" {
		t.Errorf("expected query library, got %q", samp.gotLib)
	}
}

func TestSuggest_ExhaustionIsEmptyPayloadNotError(t *testing.T) {
	samp := &fakeSampler{err: sampler.ErrNoCandidates}
	h := NewSuggestHandler(samp, &fakeDetailsCatalog{}, fakeEnrich{}, "Movies")

	req := httptest.NewRequest(http.MethodGet, "/api/suggest", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "empty" {
		t.Errorf("expected empty status payload, got %v", body)
	}
}

func TestSuggest_UpstreamFailureIsCoarse502(t *testing.T) {
	samp := &fakeSampler{err: errors.New("dial tcp: connection refused")}
	h := NewSuggestHandler(samp, &fakeDetailsCatalog{}, fakeEnrich{}, "Movies")

	req := httptest.NewRequest(http.MethodGet, "/api/suggest", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected coarse error message")
	}
	// The upstream detail must not leak to the client.
	if body["error"] == samp.err.Error() {
		t.Error("expected coarse message, not the raw upstream error")
	}
}

func TestSuggest_DetailsFailureFallsBackToListingItem(t *testing.T) {
	samp := &fakeSampler{item: models.MediaItem{ID: "1", Title: "Heat"}}
	catalog := &fakeDetailsCatalog{err: errors.New("timeout")}
	h := NewSuggestHandler(samp, catalog, fakeEnrich{}, "Movies")

	req := httptest.NewRequest(http.MethodGet, "/api/suggest", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body models.EnrichedItem
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Title != "Heat" {
		t.Errorf("expected listing item used, got %+v", body)
	}
}

func TestLibraries_ListsSections(t *testing.T) {
	h := NewLibrariesHandler(&fakeSectionsCatalog{sections: []models.Section{{Title: "Movies", Kind: "movie"}}})

	req := httptest.NewRequest(http.MethodGet, "/api/libraries", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body []models.Section
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body[0].Title != "Movies" {
		t.Errorf("unexpected sections %+v", body)
	}
}

func TestLibraries_UpstreamFailureIs502(t *testing.T) {
	h := NewLibrariesHandler(&fakeSectionsCatalog{err: errors.New("refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/libraries", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

type fakeSectionsCatalog struct {
	sections []models.Section
	err      error
}

func (c *fakeSectionsCatalog) Sections(ctx context.Context) ([]models.Section, error) {
	return c.sections, c.err
}
