package biz

import (
	"context"

	"github.com/merchware/unisearch/internal/search/types"
)

// Searcher is the backing store boundary. Search must be read-only and
// idempotent; relevance scoring is the store's business, this module
// only consumes it.
type Searcher interface {
	Search(ctx context.Context, filters types.SearchFilters) (*types.SearchResults, error)
	Suggest(ctx context.Context, query string, entityTypes []types.EntityType) (*types.SuggestionsResponse, error)
	Facets(ctx context.Context, filters types.SearchFilters) ([]types.Facet, error)
	ListTags(ctx context.Context, entityTypes []types.EntityType) ([]string, error)
}

// PresetRepo persists filter presets keyed by id and owner.
type PresetRepo interface {
	List(ctx context.Context, ownerID string, entityTypes []types.EntityType) ([]*types.FilterPreset, error)
	GetByID(ctx context.Context, id, ownerID string) (*types.FilterPreset, error)
	Create(ctx context.Context, preset *types.FilterPreset) error
	Update(ctx context.Context, preset *types.FilterPreset) error
	Delete(ctx context.Context, id, ownerID string) error
	RecordUsage(ctx context.Context, id string) error
}

// ExportDispatcher runs export jobs over a filter snapshot. Submit is
// asynchronous; Status and Download observe the job afterwards.
type ExportDispatcher interface {
	Submit(ctx context.Context, req types.ExportRequest, ownerID string) (*types.ExportJob, error)
	Status(ctx context.Context, exportID, ownerID string) (*types.ExportJob, error)
	Download(ctx context.Context, exportID, ownerID string) ([]byte, string, error)
}

// AttributeSchemaSource supplies the custom-attribute definitions per
// entity type, read-only to this module.
type AttributeSchemaSource interface {
	Definitions(ctx context.Context, entityType types.EntityType) ([]types.AttributeDefinition, error)
}
