package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/search/types"
)

// PresetUseCase holds the business rules around filter presets: id
// assignment, default exclusivity as seen by the client, and usage
// accounting on apply.
type PresetUseCase struct {
	repo PresetRepo
	log  *zap.Logger
}

// NewPresetUseCase creates a preset use case.
func NewPresetUseCase(repo PresetRepo, log *zap.Logger) *PresetUseCase {
	return &PresetUseCase{repo: repo, log: log}
}

// List returns the caller's presets, optionally restricted to ones
// covering the given entity types. The list is normalized so at most
// one preset is rendered as default even if the store disagrees.
func (uc *PresetUseCase) List(ctx context.Context, ownerID string, entityTypes []types.EntityType) ([]*types.FilterPreset, error) {
	presets, err := uc.repo.List(ctx, ownerID, entityTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	seenDefault := false
	for _, p := range presets {
		if p.IsDefault {
			if seenDefault {
				p.IsDefault = false
			}
			seenDefault = true
		}
	}
	return presets, nil
}

// Create persists a new preset. The filter snapshot is validated first
// so a malformed preset can never be saved and replayed later.
func (uc *PresetUseCase) Create(ctx context.Context, ownerID, name, description string, filters types.SearchFilters, entityTypes []types.EntityType, isPublic, isDefault bool) (*types.FilterPreset, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidFilters)
	}
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	now := time.Now()
	preset := &types.FilterPreset{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Filters:     filters.Clone(),
		EntityTypes: append([]types.EntityType(nil), entityTypes...),
		IsDefault:   isDefault,
		IsPublic:    isPublic,
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, preset); err != nil {
		return nil, fmt.Errorf("failed to create preset: %w", err)
	}
	return preset, nil
}

// Update applies a partial edit to an existing preset. The local view
// is never mutated optimistically; on repo failure the stored preset
// is returned unchanged by the next List.
func (uc *PresetUseCase) Update(ctx context.Context, id, ownerID string, update types.PresetUpdate) (*types.FilterPreset, error) {
	preset, err := uc.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidFilters)
		}
		preset.Name = *update.Name
	}
	if update.Description != nil {
		preset.Description = *update.Description
	}
	if update.Filters != nil {
		if err := update.Filters.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
		}
		preset.Filters = update.Filters.Clone()
	}
	if update.EntityTypes != nil {
		preset.EntityTypes = append([]types.EntityType(nil), update.EntityTypes...)
	}
	if update.IsDefault != nil {
		preset.IsDefault = *update.IsDefault
	}
	if update.IsPublic != nil {
		preset.IsPublic = *update.IsPublic
	}
	preset.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, preset); err != nil {
		return nil, fmt.Errorf("failed to update preset: %w", err)
	}
	return preset, nil
}

// Delete removes a preset owned by the caller.
func (uc *PresetUseCase) Delete(ctx context.Context, id, ownerID string) error {
	if err := uc.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}

// Get fetches one preset by id.
func (uc *PresetUseCase) Get(ctx context.Context, id, ownerID string) (*types.FilterPreset, error) {
	return uc.repo.GetByID(ctx, id, ownerID)
}

// RecordUsage bumps the preset's usage counter and last-used stamp.
// Callers fire it asynchronously on apply; a failure is logged and
// never surfaced, and it must not delay the filter replacement.
func (uc *PresetUseCase) RecordUsage(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := uc.repo.RecordUsage(ctx, id); err != nil {
		uc.log.Warn("failed to record preset usage",
			zap.String("preset_id", id), zap.Error(err))
	}
}
