package enrich

import (
	"context"
	"testing"

	"reelpick/models"
)

type stubProvider struct {
	name  string
	img   models.Image
	ok    bool
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Resolve(ctx context.Context, subject string) (models.Image, bool) {
	p.calls++
	return p.img, p.ok
}

var testPlaceholder = models.Image{URL: "https://placeholder.example/p.png"}

func TestResolveImageFirstSuccessShortCircuits(t *testing.T) {
	first := &stubProvider{name: "first", img: models.Image{URL: "https://a/1.jpg"}, ok: true}
	second := &stubProvider{name: "second", img: models.Image{URL: "https://b/2.jpg"}, ok: true}

	r := NewResolver(testPlaceholder, first, second)
	img := r.ResolveImage(context.Background(), "Alice")

	if img.URL != "https://a/1.jpg" {
		t.Errorf("expected first provider's result, got %q", img.URL)
	}
	if img.Source != "first" {
		t.Errorf("expected source tag %q, got %q", "first", img.Source)
	}
	if first.calls != 1 {
		t.Errorf("expected 1 call to first provider, got %d", first.calls)
	}
	if second.calls != 0 {
		t.Errorf("expected later provider not invoked, got %d calls", second.calls)
	}
}

func TestResolveImageFallsThroughMisses(t *testing.T) {
	miss := &stubProvider{name: "miss"}
	hit := &stubProvider{name: "hit", img: models.Image{URL: "https://c/3.jpg"}, ok: true}

	r := NewResolver(testPlaceholder, miss, hit)
	img := r.ResolveImage(context.Background(), "Bob")

	if img.Source != "hit" || img.URL != "https://c/3.jpg" {
		t.Errorf("expected fallthrough to second provider, got %+v", img)
	}
	if miss.calls != 1 || hit.calls != 1 {
		t.Errorf("expected each provider called once, got %d and %d", miss.calls, hit.calls)
	}
}

func TestResolveImageExhaustionReturnsPlaceholder(t *testing.T) {
	a := &stubProvider{name: "a"}
	b := &stubProvider{name: "b"}

	r := NewResolver(testPlaceholder, a, b)
	img := r.ResolveImage(context.Background(), "Nobody")

	if img.URL != testPlaceholder.URL {
		t.Errorf("expected placeholder URL %q, got %q", testPlaceholder.URL, img.URL)
	}
	if img.Source != "placeholder" {
		t.Errorf("expected placeholder source tag, got %q", img.Source)
	}
}

// ResolveImage is a total function: whatever the chain does, the result is
// a concrete URL.
func TestResolveImageAlwaysConcrete(t *testing.T) {
	chains := [][]Provider{
		nil,
		{&stubProvider{name: "empty-url", img: models.Image{}, ok: true}},
		{&stubProvider{name: "miss"}},
	}
	for _, chain := range chains {
		r := NewResolver(testPlaceholder, chain...)
		if img := r.ResolveImage(context.Background(), "x"); img.URL == "" {
			t.Errorf("chain %v produced an empty image URL", chain)
		}
	}
}

func TestResolveImageCancelledContextSkipsProviders(t *testing.T) {
	p := &stubProvider{name: "p", img: models.Image{URL: "https://a/1.jpg"}, ok: true}
	r := NewResolver(testPlaceholder, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := r.ResolveImage(ctx, "Alice")
	if img.Source != "placeholder" {
		t.Errorf("expected placeholder under cancelled context, got %+v", img)
	}
	if p.calls != 0 {
		t.Errorf("expected no provider calls after cancellation, got %d", p.calls)
	}
}
