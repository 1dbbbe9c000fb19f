package app

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"wildtrail/internal/domain"
)

//go:embed samples/catalog.yaml
var sampleCatalog []byte

// SampleCatalog decodes the embedded sample catalog, keyed by tab.
func SampleCatalog() (map[domain.Tab][]domain.CatalogItem, error) {
	var doc map[domain.Tab][]domain.CatalogItem
	if err := yaml.Unmarshal(sampleCatalog, &doc); err != nil {
		return nil, fmt.Errorf("decode sample catalog: %w", err)
	}
	out := make(map[domain.Tab][]domain.CatalogItem, len(domain.Tabs))
	for tab, items := range doc {
		if !tab.Valid() {
			return nil, fmt.Errorf("sample catalog: %w: %q", domain.ErrUnknownTab, tab)
		}
		for i := range items {
			items[i].Tab = tab
			items[i].Kind = tab.Kind()
			items[i].Normalize()
			if err := items[i].Validate(); err != nil {
				return nil, fmt.Errorf("sample catalog: %w", err)
			}
		}
		out[tab] = items
	}
	return out, nil
}

// SeedCatalog upserts the sample catalog and drops the cached tabs.
func SeedCatalog(ctx context.Context, repo domain.CatalogRepository, cache domain.Cache) (int, error) {
	cat, err := SampleCatalog()
	if err != nil {
		return 0, err
	}
	var n int
	for _, tab := range domain.Tabs {
		for _, it := range cat[tab] {
			raw, err := json.Marshal(it)
			if err != nil {
				return n, fmt.Errorf("encode %s/%s: %w", tab, it.ID, err)
			}
			if err := repo.UpsertItem(ctx, it, raw); err != nil {
				return n, fmt.Errorf("seed %s/%s: %w", tab, it.ID, err)
			}
			n++
		}
		if cache != nil {
			_ = cache.Del(ctx, catalogKey(tab))
		}
	}
	log.Info().Int("items", n).Msg("sample catalog seeded")
	return n, nil
}
