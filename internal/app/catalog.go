package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"wildtrail/internal/domain"
)

type CatalogService struct {
	repo     domain.CatalogRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(r domain.CatalogRepository, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl}
}

func catalogKey(t domain.Tab) string { return "catalog:" + string(t) }

// Tab returns one tab's full collection, cache first.
func (s *CatalogService) Tab(ctx context.Context, t domain.Tab) ([]domain.CatalogItem, error) {
	key := catalogKey(t)
	var items []domain.CatalogItem
	if ok, _ := s.cache.Get(ctx, key, &items); ok {
		return items, nil
	}
	items, err := s.repo.ListByTab(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t, err)
	}
	// copy to avoid aliasing the repo's backing array
	out := make([]domain.CatalogItem, len(items))
	copy(out, items)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// Collections loads every tab at once; it is what a catalog page needs on mount.
func (s *CatalogService) Collections(ctx context.Context) (map[domain.Tab][]domain.CatalogItem, error) {
	results := make([][]domain.CatalogItem, len(domain.Tabs))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range domain.Tabs {
		i, t := i, t
		g.Go(func() error {
			items, err := s.Tab(gctx, t)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[domain.Tab][]domain.CatalogItem, len(domain.Tabs))
	for i, t := range domain.Tabs {
		out[t] = results[i]
	}
	return out, nil
}

// List is the stateless filtered listing behind GET /v1/catalog/{tab}.
func (s *CatalogService) List(ctx context.Context, t domain.Tab, f domain.FilterState, q string) ([]domain.CatalogItem, error) {
	items, err := s.Tab(ctx, t)
	if err != nil {
		return nil, err
	}
	return domain.Apply(items, f, q), nil
}

func (s *CatalogService) Item(ctx context.Context, t domain.Tab, id string) (domain.CatalogItem, error) {
	items, err := s.Tab(ctx, t)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return s.repo.GetItem(ctx, t, id)
}
