package repositories

import (
	"context"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/planmark/planmark-go/internal/database/models"
)

// DesignRepository handles saved design data access.
type DesignRepository struct {
	db *gorm.DB
}

// NewDesignRepository creates a new DesignRepository.
func NewDesignRepository(db *gorm.DB) *DesignRepository {
	return &DesignRepository{db: db}
}

// summaryColumns excludes the document and metadata blobs from list queries.
var summaryColumns = []string{
	"id", "project_id", "name", "scale_ratio", "file_name", "file_mime", "file_size", "created_at", "updated_at",
}

// FindAll returns summaries of every design, most recently updated first.
func (r *DesignRepository) FindAll(ctx context.Context) ([]models.Design, error) {
	var designs []models.Design
	result := r.db.WithContext(ctx).
		Select(summaryColumns).
		Order("updated_at DESC").
		Find(&designs)
	return designs, result.Error
}

// FindByProject returns summaries of a project's designs, most recently
// updated first.
func (r *DesignRepository) FindByProject(ctx context.Context, projectID string) ([]models.Design, error) {
	var designs []models.Design
	result := r.db.WithContext(ctx).
		Select(summaryColumns).
		Where("project_id = ?", projectID).
		Order("updated_at DESC").
		Find(&designs)
	return designs, result.Error
}

// FindByID returns a full design by ID, or nil if it does not exist.
func (r *DesignRepository) FindByID(ctx context.Context, id string) (*models.Design, error) {
	var design models.Design
	result := r.db.WithContext(ctx).First(&design, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &design, nil
}

// FindFile returns the drawing attached to a design, or nil if none.
func (r *DesignRepository) FindFile(ctx context.Context, designID string) (*models.DesignFile, error) {
	var file models.DesignFile
	result := r.db.WithContext(ctx).First(&file, "design_id = ?", designID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &file, nil
}

// Save creates or updates a design. When file is non-nil it replaces any
// previously attached drawing. Both writes share one transaction.
func (r *DesignRepository) Save(ctx context.Context, design *models.Design, file *models.DesignFile) error {
	if design.ID == "" {
		design.ID = cuid.New()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(design).Error; err != nil {
			return err
		}
		if file == nil {
			return nil
		}

		if err := tx.Where("design_id = ?", design.ID).Delete(&models.DesignFile{}).Error; err != nil {
			return err
		}
		file.ID = cuid.New()
		file.DesignID = design.ID
		return tx.Create(file).Error
	})
}

// Delete deletes a design and its attached drawing.
func (r *DesignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("design_id = ?", id).Delete(&models.DesignFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Design{}, "id = ?", id).Error
	})
}
