package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"wildtrail/internal/adapters/observability"
	"wildtrail/internal/domain"
)

type IngestionService struct {
	source domain.CatalogSource
	repo   domain.CatalogRepository
	cache  domain.Cache
}

func NewIngestionService(src domain.CatalogSource, r domain.CatalogRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{source: src, repo: r, cache: cache}
}

type IngestResult struct {
	Tab     domain.Tab
	Fetched int
	Stored  int
	Skipped int
}

// IngestTab pulls one tab from the remote catalog and upserts every item that
// maps cleanly. Items that fail mapping are skipped and logged; a failed upsert
// aborts the tab.
func (s *IngestionService) IngestTab(ctx context.Context, tab domain.Tab) (IngestResult, error) {
	res := IngestResult{Tab: tab}
	payloads, err := s.source.FetchCatalog(ctx, tab)
	if err != nil {
		// nothing published for this tab upstream: treat as empty, keep what we have
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("tab", string(tab)).Msg("remote catalog has no such tab")
			return res, nil
		}
		return res, err
	}
	res.Fetched = len(payloads)

	for i, p := range payloads {
		it, raw, err := mapCatalogItem(tab, p)
		if err != nil {
			res.Skipped++
			log.Warn().Err(err).Str("tab", string(tab)).Int("index", i).Msg("skipping catalog item")
			continue
		}
		if err := s.repo.UpsertItem(ctx, it, raw); err != nil {
			return res, fmt.Errorf("upsert %s/%s: %w", tab, it.ID, err)
		}
		res.Stored++
	}
	observability.ObserveIngest(string(tab), "stored", res.Stored)
	observability.ObserveIngest(string(tab), "skipped", res.Skipped)

	if s.cache != nil && res.Stored > 0 {
		_ = s.cache.Del(ctx, catalogKey(tab))
	}
	return res, nil
}
