package types

import "time"

// SearchResultItem is one hit returned by the backing store. It is an
// immutable snapshot; the orchestrator replaces its result buffer
// wholesale on every successful fetch and never mutates items.
type SearchResultItem struct {
	ID                string                 `json:"id"`
	EntityType        EntityType             `json:"entity_type"`
	Title             string                 `json:"title"`
	Subtitle          string                 `json:"subtitle,omitempty"`
	Description       string                 `json:"description,omitempty"`
	ImageURL          string                 `json:"image_url,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	RelevanceScore    float64                `json:"relevance_score"`
	HighlightedFields map[string]string      `json:"highlighted_fields,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// SearchResults is the page envelope returned by the backing store.
type SearchResults struct {
	Items        []SearchResultItem `json:"items"`
	Total        int64              `json:"total"`
	Page         int                `json:"page"`
	PerPage      int                `json:"per_page"`
	TotalPages   int                `json:"total_pages"`
	HasNext      bool               `json:"has_next"`
	HasPrev      bool               `json:"has_prev"`
	Facets       []Facet            `json:"facets,omitempty"`
	Suggestions  []string           `json:"suggestions,omitempty"`
	SearchTimeMs int64              `json:"search_time_ms"`
}

// FacetType describes how a facet should be rendered.
type FacetType string

const (
	FacetCheckbox    FacetType = "checkbox"
	FacetRangeType   FacetType = "range"
	FacetDateRange   FacetType = "dateRange"
	FacetSelect      FacetType = "select"
	FacetMultiSelect FacetType = "multiSelect"
)

// FacetOption is one countable value of a facet. Counts are computed
// by the store against the result set before the facet's own selected
// values are applied, and zero-count options stay visible so the user
// keeps deselection context.
type FacetOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
	Selected bool   `json:"selected"`
}

// FacetRange carries the numeric bounds for range facets.
type FacetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Facet is a filterable dimension of the current result set. It is
// descriptive metadata produced by the store; this module consumes it
// and never fabricates counts.
type Facet struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Type    FacetType     `json:"type"`
	Options []FacetOption `json:"options,omitempty"`
	Range   *FacetRange   `json:"range,omitempty"`
}

// SuggestionsResponse is the entity-scoped autocomplete payload.
type SuggestionsResponse struct {
	Suggestions    []string `json:"suggestions"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
	RecentSearches []string `json:"recent_searches"`
}
