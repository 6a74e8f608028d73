package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/search/types"
)

// fakePresetRepo is an in-memory PresetRepo.
type fakePresetRepo struct {
	presets    map[string]*types.FilterPreset
	updateErr  error
	usageCalls []string
}

func newFakePresetRepo() *fakePresetRepo {
	return &fakePresetRepo{presets: make(map[string]*types.FilterPreset)}
}

func (r *fakePresetRepo) List(ctx context.Context, ownerID string, entityTypes []types.EntityType) ([]*types.FilterPreset, error) {
	var out []*types.FilterPreset
	for _, p := range r.presets {
		if p.CreatedBy == ownerID || p.IsPublic {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePresetRepo) GetByID(ctx context.Context, id, ownerID string) (*types.FilterPreset, error) {
	p, ok := r.presets[id]
	if !ok || (p.CreatedBy != ownerID && !p.IsPublic) {
		return nil, ErrPresetNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePresetRepo) Create(ctx context.Context, preset *types.FilterPreset) error {
	cp := *preset
	r.presets[preset.ID] = &cp
	return nil
}

func (r *fakePresetRepo) Update(ctx context.Context, preset *types.FilterPreset) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.presets[preset.ID]; !ok {
		return ErrPresetNotFound
	}
	cp := *preset
	r.presets[preset.ID] = &cp
	return nil
}

func (r *fakePresetRepo) Delete(ctx context.Context, id, ownerID string) error {
	if _, ok := r.presets[id]; !ok {
		return ErrPresetNotFound
	}
	delete(r.presets, id)
	return nil
}

func (r *fakePresetRepo) RecordUsage(ctx context.Context, id string) error {
	r.usageCalls = append(r.usageCalls, id)
	if p, ok := r.presets[id]; ok {
		p.UsageCount++
	}
	return nil
}

func TestPresetCreateAssignsID(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	filters := types.SearchFilters{Invoices: &types.InvoiceFilter{Statuses: []string{"overdue"}}}
	preset, err := uc.Create(context.Background(), "user-1", "Overdue", "", filters,
		[]types.EntityType{types.EntityInvoices}, false, false)
	require.NoError(t, err)
	assert.NotEmpty(t, preset.ID)
	assert.Equal(t, "user-1", preset.CreatedBy)
	assert.False(t, preset.CreatedAt.IsZero())

	stored, err := uc.Get(context.Background(), preset.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Overdue", stored.Name)
}

func TestPresetCreateRejectsInvalid(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	_, err := uc.Create(context.Background(), "user-1", "", "", types.SearchFilters{}, nil, false, false)
	assert.ErrorIs(t, err, ErrInvalidFilters)

	bad := types.SearchFilters{EntityTypes: []types.EntityType{"payroll"}}
	_, err = uc.Create(context.Background(), "user-1", "Bad", "", bad, nil, false, false)
	assert.ErrorIs(t, err, ErrInvalidFilters)
	assert.Empty(t, repo.presets)
}

func TestPresetUpdatePartial(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	preset, err := uc.Create(context.Background(), "user-1", "Overdue", "old", types.SearchFilters{},
		[]types.EntityType{types.EntityInvoices}, false, false)
	require.NoError(t, err)

	name := "Overdue invoices"
	updated, err := uc.Update(context.Background(), preset.ID, "user-1", types.PresetUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Overdue invoices", updated.Name)
	assert.Equal(t, "old", updated.Description, "unset fields stay untouched")
}

func TestPresetUpdateFailureDoesNotMutateStored(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	preset, err := uc.Create(context.Background(), "user-1", "Overdue", "", types.SearchFilters{}, nil, false, false)
	require.NoError(t, err)

	repo.updateErr = fmt.Errorf("connection reset")
	name := "renamed"
	_, err = uc.Update(context.Background(), preset.ID, "user-1", types.PresetUpdate{Name: &name})
	require.Error(t, err)

	// The stored preset is unchanged; the next read shows the old name.
	stored, err := uc.Get(context.Background(), preset.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Overdue", stored.Name)
}

func TestPresetUpdateNotFound(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	name := "x"
	_, err := uc.Update(context.Background(), "missing", "user-1", types.PresetUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestPresetListNormalizesDefaults(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	// The store disagreeing with itself must not leak to the client.
	repo.presets["a"] = &types.FilterPreset{ID: "a", Name: "A", CreatedBy: "user-1", IsDefault: true}
	repo.presets["b"] = &types.FilterPreset{ID: "b", Name: "B", CreatedBy: "user-1", IsDefault: true}

	presets, err := uc.List(context.Background(), "user-1", nil)
	require.NoError(t, err)
	defaults := 0
	for _, p := range presets {
		if p.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestPresetRecordUsage(t *testing.T) {
	repo := newFakePresetRepo()
	uc := NewPresetUseCase(repo, zap.NewNop())

	preset, err := uc.Create(context.Background(), "user-1", "Overdue", "", types.SearchFilters{}, nil, false, false)
	require.NoError(t, err)

	uc.RecordUsage(preset.ID)
	assert.Equal(t, []string{preset.ID}, repo.usageCalls)
	assert.Equal(t, int64(1), repo.presets[preset.ID].UsageCount)
}
