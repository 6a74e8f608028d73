package service

import (
	"github.com/merchware/unisearch/internal/search/types"
)

// SearchRequest is the POST /search body. SearchFilters already
// carries pagination and sort, so the body is the canonical filter
// object itself.
type SearchRequest struct {
	types.SearchFilters
}

// FacetsRequest is the POST /search/facets body.
type FacetsRequest struct {
	types.SearchFilters
}

// CreatePresetRequest is the POST /search/presets body.
type CreatePresetRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Filters     types.SearchFilters `json:"filters"`
	EntityTypes []string            `json:"entity_types" binding:"required,min=1"`
	IsPublic    bool                `json:"is_public"`
	IsDefault   bool                `json:"is_default"`
}

// UpdatePresetRequest is the PUT /search/presets/:id body. Pointer
// fields distinguish "leave unchanged" from "set to zero value".
type UpdatePresetRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Filters     *types.SearchFilters `json:"filters"`
	EntityTypes []string             `json:"entity_types"`
	IsPublic    *bool                `json:"is_public"`
	IsDefault   *bool                `json:"is_default"`
}

// ExportRequestBody is the POST /search/export body.
type ExportRequestBody struct {
	Filters     types.SearchFilters `json:"filters"`
	EntityTypes []string            `json:"entity_types" binding:"required,min=1"`
	Format      string              `json:"format" binding:"required,oneof=csv json"`
	MaxResults  int                 `json:"max_results"`
}

// SuggestionsQuery binds GET /search/suggestions parameters.
type SuggestionsQuery struct {
	Query       string   `form:"q"`
	EntityTypes []string `form:"entity_types"`
}

// TagsQuery binds GET /search/tags parameters.
type TagsQuery struct {
	EntityTypes []string `form:"entity_types"`
}

// PresetsQuery binds GET /search/presets parameters.
type PresetsQuery struct {
	EntityTypes []string `form:"entity_types"`
}
