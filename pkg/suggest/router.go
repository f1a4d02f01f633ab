package suggest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/charmbracelet/log"
)

// Router picks providers by the first rune of the query. Several providers
// may share a prefix ('@' for both people and files); their results are
// concatenated in registration order and deduplicated by Key.
type Router struct {
	mu     sync.RWMutex
	routes map[rune][]Provider
}

// NewRouter returns a router with no routes.
func NewRouter() *Router {
	return &Router{routes: make(map[rune][]Provider)}
}

// Handle registers p for queries starting with prefix.
func (r *Router) Handle(prefix rune, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[prefix] = append(r.routes[prefix], p)
}

// Prefixes returns the routed prefix characters in ascending order.
func (r *Router) Prefixes() []rune {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefixes := make([]rune, 0, len(r.routes))
	for p := range r.routes {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool { return prefixes[i] < prefixes[j] })
	return prefixes
}

// Suggest implements Provider. A failing provider is skipped as long as
// another one for the same prefix succeeds.
func (r *Router) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	prefix, _ := splitQuery(query)

	r.mu.RLock()
	providers := r.routes[prefix]
	r.mu.RUnlock()

	switch len(providers) {
	case 0:
		return nil, nil
	case 1:
		return providers[0].Suggest(ctx, query, limit)
	}

	filter := utils.NewKeyFilter()
	var merged []Suggestion
	var errs []error
	for _, p := range providers {
		results, err := p.Suggest(ctx, query, limit)
		if err != nil {
			log.Warnf("Provider for %q failed: %v", string(prefix), err)
			errs = append(errs, err)
			continue
		}
		for _, s := range results {
			if filter.ShouldInclude(s.Key) {
				merged = append(merged, s)
			}
		}
	}
	if len(errs) == len(providers) {
		return nil, errors.Join(errs...)
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
