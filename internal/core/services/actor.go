package services

import (
	"context"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/ids"

	"go.uber.org/zap"
)

// Actor is the authenticated caller of a mutating operation
type Actor struct {
	UserID    uint
	Username  string
	Role      domain.Role
	IPAddress string
}

// IsAdmin reports whether the actor holds the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) idPtr() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

// Audit operations
const (
	AuditCreate      = "create"
	AuditUpdate      = "update"
	AuditSoftDelete  = "soft_delete"
	AuditHardDelete  = "hard_delete"
	AuditAllocate    = "allocate"
	AuditSkillAdd    = "skill_add"
	AuditSkillRemove = "skill_remove"
	AuditBulkCreate  = "bulk_create"
	AuditBulkUpdate  = "bulk_update"
	AuditBulkStatus  = "bulk_status_update"
	AuditBulkDelete  = "bulk_delete"
	AuditExport      = "export"
	AuditImport      = "import"
)

// AuditRecorder writes audit entries. Writes never fail the calling operation.
type AuditRecorder struct {
	repo repositories.AuditRepository
	log  *zap.Logger
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(repo repositories.AuditRepository, log *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, log: log}
}

// Record stores one entry and returns its id, or "" when the write failed
func (a *AuditRecorder) Record(ctx context.Context, operation, resourceID string, actor Actor, details map[string]interface{}) string {
	entry := &models.AuditEntry{
		ID:               ids.NewOperationID(),
		Operation:        operation,
		ResourceID:       resourceID,
		OperationDetails: models.JSONMap(details),
		ActorID:          actor.idPtr(),
		IPAddress:        actor.IPAddress,
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		a.log.Warn("audit write failed",
			zap.String("operation", operation),
			zap.String("resourceId", resourceID),
			zap.Error(err),
		)
		return ""
	}
	return entry.ID
}

// History lists the latest audit entries of a resource
func (a *AuditRecorder) History(ctx context.Context, resourceID string, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return a.repo.ListByResource(ctx, resourceID, limit)
}
