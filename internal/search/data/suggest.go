package data

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/search/types"
)

const (
	maxSuggestions   = 8
	maxRecentQueries = 10
	recentKey        = "unisearch:recent"
	tagCacheKey      = "unisearch:tags"
	tagCacheTTL      = 5 * time.Minute
)

// Suggest assembles the entity-scoped autocomplete payload: title
// prefixes from the selected entity tables, matching categories and
// tags, and the recent-search list.
func (s *SearchStore) Suggest(ctx context.Context, query string, entityTypes []types.EntityType) (*types.SuggestionsResponse, error) {
	resp := &types.SuggestionsResponse{
		Suggestions:    []string{},
		Categories:     []string{},
		Tags:           []string{},
		RecentSearches: s.recentSearches(ctx),
	}
	if query == "" {
		return resp, nil
	}
	if len(entityTypes) == 0 {
		entityTypes = types.AllEntityTypes()
	}
	prefix := query + "%"
	contains := "%" + query + "%"

	for _, et := range entityTypes {
		var titles []string
		var err error
		switch et {
		case types.EntityInventory:
			err = s.db.WithContext(ctx).Model(&StockItemPO{}).
				Where("name ILIKE ?", prefix).
				Order("name").Limit(maxSuggestions).
				Pluck("name", &titles).Error
		case types.EntityInvoices:
			err = s.db.WithContext(ctx).Model(&InvoicePO{}).
				Where("number ILIKE ? OR customer_name ILIKE ?", prefix, prefix).
				Order("number").Limit(maxSuggestions).
				Pluck("number", &titles).Error
		case types.EntityCustomers:
			err = s.db.WithContext(ctx).Model(&CustomerPO{}).
				Where("name ILIKE ?", prefix).
				Order("name").Limit(maxSuggestions).
				Pluck("name", &titles).Error
		case types.EntityAccounting:
			err = s.db.WithContext(ctx).Model(&LedgerEntryPO{}).
				Where("description ILIKE ?", contains).
				Order("description").Limit(maxSuggestions).
				Pluck("description", &titles).Error
		}
		if err != nil {
			return nil, err
		}
		resp.Suggestions = append(resp.Suggestions, titles...)
	}
	resp.Suggestions = dedupeCap(resp.Suggestions, maxSuggestions)

	if containsEntity(entityTypes, types.EntityInventory) {
		var categories []string
		if err := s.db.WithContext(ctx).Model(&CategoryPO{}).
			Where("name ILIKE ?", contains).
			Order("name").Limit(maxSuggestions).
			Pluck("name", &categories).Error; err != nil {
			return nil, err
		}
		resp.Categories = categories

		tags, err := s.ListTags(ctx, entityTypes)
		if err != nil {
			return nil, err
		}
		lower := strings.ToLower(query)
		for _, t := range tags {
			if strings.Contains(strings.ToLower(t), lower) {
				resp.Tags = append(resp.Tags, t)
				if len(resp.Tags) == maxSuggestions {
					break
				}
			}
		}
	}
	return resp, nil
}

// ListTags returns the tag vocabulary for the selected entity types.
// Tags only exist on inventory; the vocabulary is cached in redis for
// a few minutes because it changes rarely and is hit on every
// autocomplete keystroke.
func (s *SearchStore) ListTags(ctx context.Context, entityTypes []types.EntityType) ([]string, error) {
	if len(entityTypes) > 0 && !containsEntity(entityTypes, types.EntityInventory) {
		return []string{}, nil
	}

	if s.rdb != nil {
		cached, err := s.rdb.SMembers(ctx, tagCacheKey).Result()
		if err == nil && len(cached) > 0 {
			sort.Strings(cached)
			return cached, nil
		}
	}

	var tags []string
	err := s.db.WithContext(ctx).
		Raw("SELECT DISTINCT jsonb_array_elements_text(tags) FROM stock_items").
		Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	sort.Strings(tags)

	if s.rdb != nil && len(tags) > 0 {
		members := make([]interface{}, 0, len(tags))
		for _, t := range tags {
			members = append(members, t)
		}
		pipe := s.rdb.Pipeline()
		pipe.SAdd(ctx, tagCacheKey, members...)
		pipe.Expire(ctx, tagCacheKey, tagCacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Debug("tag cache write failed", zap.Error(err))
		}
	}
	return tags, nil
}

// RecordRecent pushes a query onto the recent-search list. Callers
// invoke it after a search completes; Search itself stays read-only.
func (s *SearchStore) RecordRecent(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" || s.rdb == nil {
		return
	}
	pipe := s.rdb.Pipeline()
	pipe.LRem(ctx, recentKey, 0, query)
	pipe.LPush(ctx, recentKey, query)
	pipe.LTrim(ctx, recentKey, 0, maxRecentQueries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Debug("recent search write failed", zap.Error(err))
	}
}

func (s *SearchStore) recentSearches(ctx context.Context) []string {
	if s.rdb == nil {
		return []string{}
	}
	recents, err := s.rdb.LRange(ctx, recentKey, 0, maxRecentQueries-1).Result()
	if err != nil {
		return []string{}
	}
	return recents
}

// alternateQueries proposes nearby titles when a query yields nothing,
// by retrying with a shortened prefix.
func (s *SearchStore) alternateQueries(ctx context.Context, query string, entityTypes []types.EntityType) []string {
	runes := []rune(query)
	if len(runes) < 3 {
		return nil
	}
	resp, err := s.Suggest(ctx, string(runes[:len(runes)-2]), entityTypes)
	if err != nil {
		return nil
	}
	return resp.Suggestions
}

func containsEntity(entityTypes []types.EntityType, e types.EntityType) bool {
	for _, et := range entityTypes {
		if et == e {
			return true
		}
	}
	return false
}

func dedupeCap(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
