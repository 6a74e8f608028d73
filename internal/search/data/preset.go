package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/merchware/unisearch/internal/search/biz"
	"github.com/merchware/unisearch/internal/search/types"
)

// FiltersJSON stores a full SearchFilters snapshot as JSONB.
type FiltersJSON types.SearchFilters

func (j *FiltersJSON) Scan(value interface{}) error {
	if value == nil {
		*j = FiltersJSON{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("filters column is not a byte slice")
	}
	return json.Unmarshal(bytes, j)
}

func (j FiltersJSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// StringArrayJSON stores a string slice as JSONB.
type StringArrayJSON []string

func (j *StringArrayJSON) Scan(value interface{}) error {
	if value == nil {
		*j = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j StringArrayJSON) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(j)
}

// PresetPO is the database model for filter presets.
type PresetPO struct {
	ID          string          `gorm:"type:uuid;primarykey"`
	OwnerID     string          `gorm:"type:uuid;not null;index:idx_presets_owner_id"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Filters     FiltersJSON     `gorm:"type:jsonb;not null;default:'{}'"`
	EntityTypes StringArrayJSON `gorm:"type:jsonb;not null;default:'[]'"`
	IsDefault   bool            `gorm:"not null;default:false"`
	IsPublic    bool            `gorm:"not null;default:false;index:idx_presets_is_public"`
	UsageCount  int64           `gorm:"not null;default:0"`
	LastUsedAt  *time.Time
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PresetPO) TableName() string {
	return "search_filter_presets"
}

// PresetRepo is the gorm-backed preset repository.
type PresetRepo struct {
	db *gorm.DB
}

// NewPresetRepo creates the preset repository.
func NewPresetRepo(db *gorm.DB) biz.PresetRepo {
	return &PresetRepo{db: db}
}

// List returns the caller's own presets plus public ones, optionally
// restricted to presets covering all of the given entity types.
// Defaults sort first, then most recently used.
func (r *PresetRepo) List(ctx context.Context, ownerID string, entityTypes []types.EntityType) ([]*types.FilterPreset, error) {
	query := r.db.WithContext(ctx).Model(&PresetPO{}).
		Where("owner_id = ? OR is_public = true", ownerID)

	for _, et := range entityTypes {
		query = query.Where("entity_types @> ?", jsonArray(string(et)))
	}

	var pos []PresetPO
	if err := query.
		Order("is_default DESC, last_used_at DESC NULLS LAST, created_at DESC").
		Find(&pos).Error; err != nil {
		return nil, err
	}

	out := make([]*types.FilterPreset, 0, len(pos))
	for i := range pos {
		out = append(out, toPreset(&pos[i]))
	}
	return out, nil
}

// GetByID fetches one preset visible to the caller.
func (r *PresetRepo) GetByID(ctx context.Context, id, ownerID string) (*types.FilterPreset, error) {
	var po PresetPO
	err := r.db.WithContext(ctx).
		Where("id = ? AND (owner_id = ? OR is_public = true)", id, ownerID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrPresetNotFound
		}
		return nil, err
	}
	return toPreset(&po), nil
}

// Create inserts a preset. Names are unique per owner; when the preset
// is marked default, every other default of the same owner is cleared
// in the same transaction so at most one default can exist per owner.
func (r *PresetRepo) Create(ctx context.Context, preset *types.FilterPreset) error {
	po := toPresetPO(preset)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, po.OwnerID, po.Name, ""); err != nil {
			return err
		}
		if po.IsDefault {
			if err := clearDefaults(tx, po.OwnerID, ""); err != nil {
				return err
			}
		}
		return tx.Create(po).Error
	})
}

// Update rewrites a preset owned by the caller, keeping name
// uniqueness and default exclusivity.
func (r *PresetRepo) Update(ctx context.Context, preset *types.FilterPreset) error {
	po := toPresetPO(preset)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, po.OwnerID, po.Name, po.ID); err != nil {
			return err
		}
		if po.IsDefault {
			if err := clearDefaults(tx, po.OwnerID, po.ID); err != nil {
				return err
			}
		}
		res := tx.Model(&PresetPO{}).
			Where("id = ? AND owner_id = ?", po.ID, po.OwnerID).
			Updates(map[string]interface{}{
				"name":         po.Name,
				"description":  po.Description,
				"filters":      po.Filters,
				"entity_types": po.EntityTypes,
				"is_default":   po.IsDefault,
				"is_public":    po.IsPublic,
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return biz.ErrPresetNotFound
		}
		return nil
	})
}

// Delete removes a preset owned by the caller.
func (r *PresetRepo) Delete(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&PresetPO{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return biz.ErrPresetNotFound
	}
	return nil
}

// RecordUsage bumps the usage counter and last-used timestamp.
func (r *PresetRepo) RecordUsage(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&PresetPO{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": time.Now(),
		}).Error
}

func checkNameFree(tx *gorm.DB, ownerID, name, selfID string) error {
	query := tx.Model(&PresetPO{}).Where("owner_id = ? AND name = ?", ownerID, name)
	if selfID != "" {
		query = query.Where("id <> ?", selfID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return biz.ErrPresetNameTaken
	}
	return nil
}

func clearDefaults(tx *gorm.DB, ownerID, keepID string) error {
	query := tx.Model(&PresetPO{}).Where("owner_id = ? AND is_default = true", ownerID)
	if keepID != "" {
		query = query.Where("id <> ?", keepID)
	}
	return query.Update("is_default", false).Error
}

func jsonArray(values ...string) string {
	b, _ := json.Marshal(values)
	return string(b)
}

func toPreset(po *PresetPO) *types.FilterPreset {
	return &types.FilterPreset{
		ID:          po.ID,
		Name:        po.Name,
		Description: po.Description,
		Filters:     types.SearchFilters(po.Filters),
		EntityTypes: types.ParseEntityTypes(po.EntityTypes),
		IsDefault:   po.IsDefault,
		IsPublic:    po.IsPublic,
		CreatedBy:   po.OwnerID,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
		UsageCount:  po.UsageCount,
		LastUsedAt:  po.LastUsedAt,
	}
}

func toPresetPO(p *types.FilterPreset) *PresetPO {
	ets := make(StringArrayJSON, 0, len(p.EntityTypes))
	for _, et := range p.EntityTypes {
		ets = append(ets, string(et))
	}
	return &PresetPO{
		ID:          p.ID,
		OwnerID:     p.CreatedBy,
		Name:        p.Name,
		Description: p.Description,
		Filters:     FiltersJSON(p.Filters),
		EntityTypes: ets,
		IsDefault:   p.IsDefault,
		IsPublic:    p.IsPublic,
		UsageCount:  p.UsageCount,
		LastUsedAt:  p.LastUsedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
