package repositories

import (
	"context"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// skillRepository implements SkillRepository interface
type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new resource skill repository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

// Create creates a new skill record
func (r *skillRepository) Create(ctx context.Context, skill *models.ResourceSkill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

// GetByID gets one skill of a resource
func (r *skillRepository) GetByID(ctx context.Context, resourceID string, id uint) (*models.ResourceSkill, error) {
	var skill models.ResourceSkill
	err := r.db.WithContext(ctx).
		Where("resource_id = ? AND id = ?", resourceID, id).
		First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// ListByResource lists skills of a resource by name
func (r *skillRepository) ListByResource(ctx context.Context, resourceID string) ([]*models.ResourceSkill, error) {
	var skills []*models.ResourceSkill
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("skill_name ASC").
		Find(&skills).Error
	return skills, err
}

// ExistsByName checks the per-resource skill name uniqueness (case-insensitive)
func (r *skillRepository) ExistsByName(ctx context.Context, resourceID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ResourceSkill{}).
		Where("resource_id = ?", resourceID).
		Where("LOWER(skill_name) = LOWER(?)", name).
		Count(&count).Error
	return count > 0, err
}

// Delete deletes one skill of a resource
func (r *skillRepository) Delete(ctx context.Context, resourceID string, id uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("resource_id = ? AND id = ?", resourceID, id).
		Delete(&models.ResourceSkill{})
	return result.RowsAffected, result.Error
}

// availabilityRepository implements AvailabilityRepository interface
type availabilityRepository struct {
	db *gorm.DB
}

// NewAvailabilityRepository creates a new availability repository
func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

// Create creates a new availability window
func (r *availabilityRepository) Create(ctx context.Context, window *models.ResourceAvailability) error {
	return r.db.WithContext(ctx).Create(window).Error
}

// ListByResource lists all windows of a resource ordered by start
func (r *availabilityRepository) ListByResource(ctx context.Context, resourceID string) ([]*models.ResourceAvailability, error) {
	var windows []*models.ResourceAvailability
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("start_date ASC").
		Find(&windows).Error
	return windows, err
}

// ListAllocatedOverlapping lists allocated windows overlapping [start, end)
func (r *availabilityRepository) ListAllocatedOverlapping(ctx context.Context, resourceID string, start, end time.Time) ([]*models.ResourceAvailability, error) {
	var windows []*models.ResourceAvailability
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Where("is_allocated = ?", true).
		Where("start_date < ? AND end_date > ?", end, start).
		Order("start_date ASC").
		Order("id ASC").
		Find(&windows).Error
	return windows, err
}

// transactor implements Transactor interface
type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a transaction runner over db
func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise
func (t *transactor) WithinTransaction(ctx context.Context, fn func(tx TxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Resources:    NewIdleResourceRepository(tx),
			Skills:       NewSkillRepository(tx),
			Availability: NewAvailabilityRepository(tx),
		})
	})
}
