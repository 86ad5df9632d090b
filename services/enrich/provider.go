package enrich

import (
	"context"
	"log"

	"reelpick/models"
)

// Provider resolves a subject name to an image reference against one
// external source. Implementations own their request timeout and collapse
// every failure mode (transport error, bad body, empty result) to a miss:
// nothing escapes the provider boundary.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, subject string) (models.Image, bool)
}

// Resolver runs a fixed-priority provider cascade. The chain is immutable
// after construction; callers that need a different ordering build their
// own Resolver. First success wins - there is no scoring or best-of.
type Resolver struct {
	chain       []Provider
	placeholder models.Image
}

// NewResolver builds a resolver over the given chain. placeholder must be
// a concrete, always-valid reference; it is returned whenever the chain is
// exhausted so downstream consumers never see an absent image.
func NewResolver(placeholder models.Image, chain ...Provider) *Resolver {
	placeholder.Source = "placeholder"
	return &Resolver{chain: chain, placeholder: placeholder}
}

// ResolveImage tries each provider in priority order and returns the first
// hit, tagged with the provider's name. A total function: when every
// provider misses, or the request deadline expires mid-chain, the result
// is the placeholder.
func (r *Resolver) ResolveImage(ctx context.Context, subject string) models.Image {
	for _, provider := range r.chain {
		if ctx.Err() != nil {
			log.Printf("[enrich] cascade aborted subject=%q provider=%s: %v", subject, provider.Name(), ctx.Err())
			break
		}
		if img, ok := provider.Resolve(ctx, subject); ok && img.URL != "" {
			img.Source = provider.Name()
			return img
		}
	}
	return r.placeholder
}
