// Package repositories provides data access layer implementations.
package repositories

import (
	"context"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/planmark/planmark-go/internal/database/models"
)

// ProjectRepository handles project data access.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindAll returns all projects, newest first.
func (r *ProjectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&projects)
	return projects, result.Error
}

// FindByID returns a project by ID, or nil if it does not exist.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &project, nil
}

// Create creates a new project.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(project).Error
}

// Update updates an existing project.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete deletes a project by ID. Its designs are detached, not removed.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Design{}).
			Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
}

// CountDesigns returns the number of designs saved under a project.
func (r *ProjectRepository) CountDesigns(ctx context.Context, projectID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Design{}).
		Where("project_id = ?", projectID).
		Count(&count)
	return count, result.Error
}

// CountBOQItems returns the number of BOQ items in a project.
func (r *ProjectRepository) CountBOQItems(ctx context.Context, projectID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.BOQItem{}).
		Where("project_id = ?", projectID).
		Count(&count)
	return count, result.Error
}
