package types

import "time"

// FilterPreset is a named, persisted snapshot of a full filter state.
// Applying a preset replaces the current filters wholesale; it never
// merges. Only UsageCount and LastUsedAt mutate implicitly, as a side
// effect of apply.
type FilterPreset struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Filters     SearchFilters `json:"filters"`
	EntityTypes []EntityType  `json:"entity_types"`
	IsDefault   bool          `json:"is_default"`
	IsPublic    bool          `json:"is_public"`
	CreatedBy   string        `json:"created_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	UsageCount  int64         `json:"usage_count"`
	LastUsedAt  *time.Time    `json:"last_used_at,omitempty"`
}

// PresetUpdate is a partial preset edit. Nil fields are untouched.
type PresetUpdate struct {
	Name        *string
	Description *string
	Filters     *SearchFilters
	EntityTypes []EntityType
	IsDefault   *bool
	IsPublic    *bool
}
