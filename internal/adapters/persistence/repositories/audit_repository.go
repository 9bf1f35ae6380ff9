package repositories

import (
	"context"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditRepository implements AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create creates a new audit entry
func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByResource lists the latest audit entries of a resource
func (r *auditRepository) ListByResource(ctx context.Context, resourceID string, limit int) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// transferRepository implements TransferRepository interface
type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new export/import session repository
func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

// CreateExport creates a new export session
func (r *transferRepository) CreateExport(ctx context.Context, export *models.ExportSession) error {
	return r.db.WithContext(ctx).Create(export).Error
}

// UpdateExport saves an export session
func (r *transferRepository) UpdateExport(ctx context.Context, export *models.ExportSession) error {
	return r.db.WithContext(ctx).Save(export).Error
}

// GetExport gets an export session by ID
func (r *transferRepository) GetExport(ctx context.Context, id string) (*models.ExportSession, error) {
	var export models.ExportSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&export).Error; err != nil {
		return nil, err
	}
	return &export, nil
}

// ListExpiredExports lists completed exports whose files have expired
func (r *transferRepository) ListExpiredExports(ctx context.Context, now time.Time) ([]*models.ExportSession, error) {
	var exports []*models.ExportSession
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ExportCompleted).
		Where("expires_at < ?", now).
		Find(&exports).Error
	return exports, err
}

// CreateImport creates a new import session
func (r *transferRepository) CreateImport(ctx context.Context, imp *models.ImportSession) error {
	return r.db.WithContext(ctx).Create(imp).Error
}

// UpdateImport saves an import session
func (r *transferRepository) UpdateImport(ctx context.Context, imp *models.ImportSession) error {
	return r.db.WithContext(ctx).Save(imp).Error
}
