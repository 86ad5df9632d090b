package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"reelpick/models"
)

// ErrNoCandidates signals that no unrejected candidate was found within
// the attempt budget. It is "nothing more to show", not a failure: callers
// surface it as a distinct empty result.
var ErrNoCandidates = errors.New("no unrejected candidates")

// DefaultMaxAttempts suits latency-sensitive paths. The suggestion path,
// which pays for full enrichment anyway, uses a higher budget.
const DefaultMaxAttempts = 3

// Catalog is the slice of the catalog client the sampler needs.
type Catalog interface {
	ListUnwatched(ctx context.Context, library string) ([]models.MediaItem, error)
}

// Sampler draws random unwatched items from the catalog.
type Sampler struct {
	catalog Catalog
}

func New(catalog Catalog) *Sampler {
	return &Sampler{catalog: catalog}
}

// Sample draws one item uniformly at random from the library's live
// unwatched set. When a rejection set is supplied, rejected draws are
// discarded and redrawn (without replacement) up to maxAttempts times.
// Exhaustion returns ErrNoCandidates; catalog failures propagate.
func (s *Sampler) Sample(ctx context.Context, library string, rejected map[string]struct{}, maxAttempts int) (models.MediaItem, error) {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	items, err := s.catalog.ListUnwatched(ctx, library)
	if err != nil {
		return models.MediaItem{}, fmt.Errorf("list unwatched: %w", err)
	}
	if len(items) == 0 {
		return models.MediaItem{}, ErrNoCandidates
	}

	// Draw without replacement: a rejected draw shrinks the pool, so a
	// lone remaining candidate is found deterministically as long as the
	// attempt budget covers the rejected portion.
	pool := make([]models.MediaItem, len(items))
	copy(pool, items)

	for attempt := 0; attempt < maxAttempts && len(pool) > 0; attempt++ {
		idx := rand.Intn(len(pool))
		candidate := pool[idx]
		if _, isRejected := rejected[candidate.ID]; !isRejected {
			return candidate, nil
		}
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}

	return models.MediaItem{}, ErrNoCandidates
}
