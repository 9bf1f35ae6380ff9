package repositories

import (
	"context"
	"fmt"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// idleResourceRepository implements IdleResourceRepository interface
type idleResourceRepository struct {
	db *gorm.DB
}

// NewIdleResourceRepository creates a new idle resource repository
func NewIdleResourceRepository(db *gorm.DB) IdleResourceRepository {
	return &idleResourceRepository{db: db}
}

// Create creates a new idle resource
func (r *idleResourceRepository) Create(ctx context.Context, resource *models.IdleResource) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(resource).Error
}

// CreateBatch inserts all resources in one transaction
func (r *idleResourceRepository) CreateBatch(ctx context.Context, resources []*models.IdleResource) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Employee").CreateInBatches(resources, 100).Error
	})
}

// GetByID gets an idle resource by ID with its employee
func (r *idleResourceRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.IdleResource, error) {
	var resource models.IdleResource
	query := r.db.WithContext(ctx).Preload("Employee").Where("id = ?", id)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if err := query.First(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// CurrentVersion reads the stored version of a resource
func (r *idleResourceRepository) CurrentVersion(ctx context.Context, id string) (int, error) {
	var resource models.IdleResource
	err := r.db.WithContext(ctx).Select("version").Where("id = ?", id).First(&resource).Error
	if err != nil {
		return 0, err
	}
	return resource.Version, nil
}

// UpdateWithVersion writes fields only if the stored version still equals
// expectedVersion, and bumps the version by one. Returns rows affected.
func (r *idleResourceRepository) UpdateWithVersion(ctx context.Context, id string, fields map[string]interface{}, expectedVersion int) (int64, error) {
	updates := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = expectedVersion + 1
	updates["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.IdleResource{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// HardDelete removes the resource together with its skills and availability windows
func (r *idleResourceRepository) HardDelete(ctx context.Context, id string) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("resource_id = ?", id).Delete(&models.ResourceSkill{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("resource_id = ?", id).Delete(&models.ResourceAvailability{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id = ?", id).Delete(&models.IdleResource{})
	return result.RowsAffected, result.Error
}

// HasActiveForEmployee reports whether the employee has an available or allocated record
func (r *idleResourceRepository) HasActiveForEmployee(ctx context.Context, employeeID uint, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.IdleResource{}).
		Where("employee_id = ?", employeeID).
		Where("is_deleted = ?", false).
		Where("status IN ?", []string{"available", "allocated"})
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// List materializes the query with ordering and paging
func (r *idleResourceRepository) List(ctx context.Context, q *ResourceQuery) ([]*models.IdleResource, error) {
	var resources []*models.IdleResource
	db := q.where(r.db.WithContext(ctx).Model(&models.IdleResource{})).
		Select("idle_resources.*").
		Preload("Employee").
		Order(q.order()).
		Order("idle_resources.id ASC")
	if q.limit > 0 {
		db = db.Offset(q.offset).Limit(q.limit)
	}
	err := db.Find(&resources).Error
	return resources, err
}

// Count counts the filtered, unpaginated set
func (r *idleResourceRepository) Count(ctx context.Context, q *ResourceQuery) (int64, error) {
	var total int64
	err := q.where(r.db.WithContext(ctx).Model(&models.IdleResource{})).Count(&total).Error
	return total, err
}

type dimensionCount struct {
	DimKey *string
	Count  int64
}

// CountBy groups the filtered set by one dimension
func (r *idleResourceRepository) CountBy(ctx context.Context, q *ResourceQuery, dimension string) (map[string]int64, error) {
	column, ok := dimensionColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown aggregation dimension %q", dimension)
	}

	var rows []dimensionCount
	err := q.where(r.db.WithContext(ctx).Model(&models.IdleResource{})).
		Select(column + " AS dim_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := "unassigned"
		if row.DimKey != nil {
			key = *row.DimKey
		}
		out[key] += row.Count
	}
	return out, nil
}
