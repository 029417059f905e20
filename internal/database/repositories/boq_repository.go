package repositories

import (
	"context"
	"fmt"

	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planmark/planmark-go/internal/database/models"
)

// BOQRepository handles final-account items and their take-off mappings.
type BOQRepository struct {
	db *gorm.DB
}

// NewBOQRepository creates a new BOQRepository.
func NewBOQRepository(db *gorm.DB) *BOQRepository {
	return &BOQRepository{db: db}
}

// FindByProject returns a project's BOQ items ordered by code.
func (r *BOQRepository) FindByProject(ctx context.Context, projectID string) ([]models.BOQItem, error) {
	var items []models.BOQItem
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("code ASC").
		Find(&items)
	return items, result.Error
}

// FindByID returns a BOQ item by ID, or nil if it does not exist.
func (r *BOQRepository) FindByID(ctx context.Context, id string) (*models.BOQItem, error) {
	var item models.BOQItem
	result := r.db.WithContext(ctx).First(&item, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &item, nil
}

// Create creates a new BOQ item.
func (r *BOQRepository) Create(ctx context.Context, item *models.BOQItem) error {
	if item.ID == "" {
		item.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// QuantityUpdate sets one item's quantity from a take-off row.
type QuantityUpdate struct {
	BOQItemID  string
	Quantity   decimal.Decimal
	SourceKind string
	SourceKey  string
}

// ApplyQuantities writes every update in one transaction. A missing item
// aborts the whole batch.
func (r *BOQRepository) ApplyQuantities(ctx context.Context, updates []QuantityUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			result := tx.Model(&models.BOQItem{}).
				Where("id = ?", u.BOQItemID).
				Updates(map[string]interface{}{
					"quantity":    u.Quantity,
					"source_kind": u.SourceKind,
					"source_key":  u.SourceKey,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("boq item %s: %w", u.BOQItemID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

// FindMappings returns a project's take-off mappings.
func (r *BOQRepository) FindMappings(ctx context.Context, projectID string) ([]models.CostMapping, error) {
	var mappings []models.CostMapping
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("kind ASC, key ASC").
		Find(&mappings)
	return mappings, result.Error
}

// UpsertMapping creates or repoints the mapping for (project, kind, key).
func (r *BOQRepository) UpsertMapping(ctx context.Context, mapping *models.CostMapping) error {
	if mapping.ID == "" {
		mapping.ID = cuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "kind"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"boq_item_id"}),
		}).
		Create(mapping).Error
}

// DeleteMapping removes the mapping for (project, kind, key).
func (r *BOQRepository) DeleteMapping(ctx context.Context, projectID, kind, key string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND kind = ? AND key = ?", projectID, kind, key).
		Delete(&models.CostMapping{}).Error
}
