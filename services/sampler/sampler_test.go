package sampler_test

import (
	"context"
	"errors"
	"testing"

	"reelpick/models"
	"reelpick/services/sampler"
)

type fakeCatalog struct {
	items []models.MediaItem
	err   error
	calls int
}

func (c *fakeCatalog) ListUnwatched(ctx context.Context, library string) ([]models.MediaItem, error) {
	c.calls++
	return c.items, c.err
}

func catalogOf(ids ...string) *fakeCatalog {
	c := &fakeCatalog{}
	for _, id := range ids {
		c.items = append(c.items, models.MediaItem{ID: id, Title: "Item " + id})
	}
	return c
}

func rejection(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestSampleReturnsCandidateWithSingleAttempt(t *testing.T) {
	s := sampler.New(catalogOf("A", "B", "C"))

	item, err := s.Sample(context.Background(), "Movies", nil, 1)
	if err != nil {
		t.Fatalf("expected a candidate, got %v", err)
	}
	if item.ID == "" {
		t.Fatalf("expected a concrete item")
	}
}

func TestSampleEmptyCatalogIsNoCandidates(t *testing.T) {
	s := sampler.New(catalogOf())

	_, err := s.Sample(context.Background(), "Movies", nil, 1)
	if !errors.Is(err, sampler.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestSampleFullyRejectedSetIsNoCandidates(t *testing.T) {
	s := sampler.New(catalogOf("A", "B", "C"))
	rejectedAll := rejection("A", "B", "C")

	for _, attempts := range []int{1, 3, 100} {
		_, err := s.Sample(context.Background(), "Movies", rejectedAll, attempts)
		if !errors.Is(err, sampler.ErrNoCandidates) {
			t.Fatalf("maxAttempts=%d: expected ErrNoCandidates, got %v", attempts, err)
		}
	}
}

func TestSampleSingleRemainingCandidateIsDeterministic(t *testing.T) {
	s := sampler.New(catalogOf("A", "B", "C"))
	rejected := rejection("A", "B")

	for i := 0; i < 25; i++ {
		item, err := s.Sample(context.Background(), "Movies", rejected, 5)
		if err != nil {
			t.Fatalf("call %d: expected C, got error %v", i, err)
		}
		if item.ID != "C" {
			t.Fatalf("call %d: expected C, got %s", i, item.ID)
		}
	}
}

func TestSampleNeverReturnsRejected(t *testing.T) {
	s := sampler.New(catalogOf("A", "B", "C", "D"))
	rejected := rejection("B", "D")

	for i := 0; i < 50; i++ {
		item, err := s.Sample(context.Background(), "Movies", rejected, 4)
		if err != nil {
			continue
		}
		if _, bad := rejected[item.ID]; bad {
			t.Fatalf("returned rejected item %s", item.ID)
		}
	}
}

func TestSampleCatalogErrorPropagates(t *testing.T) {
	s := sampler.New(&fakeCatalog{err: errors.New("connection refused")})

	_, err := s.Sample(context.Background(), "Movies", nil, 3)
	if err == nil || errors.Is(err, sampler.ErrNoCandidates) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
}

func TestSampleDefaultsAttemptBudget(t *testing.T) {
	s := sampler.New(catalogOf("A"))

	item, err := s.Sample(context.Background(), "Movies", nil, 0)
	if err != nil || item.ID != "A" {
		t.Fatalf("expected default budget to yield A, got %v %v", item, err)
	}
}
