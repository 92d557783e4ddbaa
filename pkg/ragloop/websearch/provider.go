// Package websearch provides web search fallback for the ragloop pipeline.
// It implements the pipeline's SearchProvider contract on top of the Tavily
// Search API with the free DuckDuckGo Instant Answer API as a keyless
// fallback.
package websearch

import (
	"context"

	"github.com/randalmurphal/ragloop/pkg/ragloop"
)

// QueryOptimizer condenses a question into a short search-engine query.
// Satisfied by agents.SearchQueryOptimizer.
type QueryOptimizer interface {
	Optimize(ctx context.Context, question string) (string, error)
}

// Backend is the common surface of the concrete search clients.
type Backend interface {
	Search(ctx context.Context, query string) ([]ragloop.Passage, error)
	Available() bool
}

// Provider chains search backends: Tavily first when a key is configured,
// DuckDuckGo otherwise or when Tavily fails. An optional query optimizer
// condenses the question before searching; optimizer failures fall back to
// the raw question.
type Provider struct {
	primary   Backend
	fallback  Backend
	optimizer QueryOptimizer
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithQueryOptimizer sets the search query optimizer.
func WithQueryOptimizer(o QueryOptimizer) ProviderOption {
	return func(p *Provider) { p.optimizer = o }
}

// WithFallback replaces the default DuckDuckGo fallback. Pass nil to
// disable fallback entirely.
func WithFallback(b Backend) ProviderOption {
	return func(p *Provider) { p.fallback = b }
}

// NewProvider creates a Provider. tavilyAPIKey may be empty, in which case
// every search goes straight to the fallback.
func NewProvider(tavilyAPIKey string, maxResults int, opts ...ProviderOption) *Provider {
	return NewProviderWithBackends(
		NewTavilyClient(tavilyAPIKey, WithTavilyMaxResults(maxResults)),
		NewDuckDuckGoClient(WithDuckDuckGoMaxResults(maxResults)),
		opts...,
	)
}

// NewProviderWithBackends creates a Provider from explicit backends. Either
// backend may be nil.
func NewProviderWithBackends(primary, fallback Backend, opts ...ProviderOption) *Provider {
	p := &Provider{primary: primary, fallback: fallback}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether any backend can serve a search.
func (p *Provider) Available() bool {
	if p.primary != nil && p.primary.Available() {
		return true
	}
	return p.fallback != nil && p.fallback.Available()
}

// Search runs the query through the first available backend, falling back
// on primary failure. The last backend's error is returned when all fail.
func (p *Provider) Search(ctx context.Context, query string) ([]ragloop.Passage, error) {
	if p.optimizer != nil {
		optimized, err := p.optimizer.Optimize(ctx, query)
		if err == nil && optimized != "" {
			query = optimized
		}
	}

	var lastErr error
	if p.primary != nil && p.primary.Available() {
		passages, err := p.primary.Search(ctx, query)
		if err == nil {
			return passages, nil
		}
		lastErr = err
	}

	if p.fallback != nil && p.fallback.Available() {
		passages, err := p.fallback.Search(ctx, query)
		if err == nil {
			return passages, nil
		}
		lastErr = err
	}

	return nil, lastErr
}
