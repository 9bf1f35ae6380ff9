package repositories

import (
	"context"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, id uint, at time.Time) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	CreateLoginAttempt(ctx context.Context, attempt *models.LoginAttempt) error
}

// SessionRepository defines user session repository interface
type SessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	GetByID(ctx context.Context, sessionID string) (*models.UserSession, error)
	GetValidByAccessHash(ctx context.Context, hash string) (*models.UserSession, error)
	GetValidByRefreshHash(ctx context.Context, hash string) (*models.UserSession, error)
	UpdateFields(ctx context.Context, sessionID string, fields map[string]interface{}) error
	Invalidate(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
	DeleteInvalidOrCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListValidCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.UserSession, error)
	InvalidateByIDs(ctx context.Context, sessionIDs []string) (int64, error)
}

// DepartmentRepository defines department repository interface
type DepartmentRepository interface {
	Create(ctx context.Context, dept *models.Department) error
	GetByID(ctx context.Context, id uint) (*models.Department, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Department, error)
	Update(ctx context.Context, dept *models.Department) error
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
}

// EmployeeRepository defines employee repository interface
type EmployeeRepository interface {
	Create(ctx context.Context, emp *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Employee, error)
	GetByNumber(ctx context.Context, number string) (*models.Employee, error)
	List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]*models.Employee, int64, error)
	Update(ctx context.Context, emp *models.Employee) error
	ExistsByNumber(ctx context.Context, number string, excludeID uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
}

// EmployeeFilter narrows employee listings
type EmployeeFilter struct {
	DepartmentID *uint
	ActiveOnly   bool
}

// IdleResourceRepository defines idle resource repository interface
type IdleResourceRepository interface {
	Create(ctx context.Context, resource *models.IdleResource) error
	CreateBatch(ctx context.Context, resources []*models.IdleResource) error
	GetByID(ctx context.Context, id string, includeDeleted bool) (*models.IdleResource, error)
	CurrentVersion(ctx context.Context, id string) (int, error)
	UpdateWithVersion(ctx context.Context, id string, fields map[string]interface{}, expectedVersion int) (int64, error)
	HardDelete(ctx context.Context, id string) (int64, error)
	HasActiveForEmployee(ctx context.Context, employeeID uint, excludeID string) (bool, error)
	List(ctx context.Context, q *ResourceQuery) ([]*models.IdleResource, error)
	Count(ctx context.Context, q *ResourceQuery) (int64, error)
	CountBy(ctx context.Context, q *ResourceQuery, dimension string) (map[string]int64, error)
}

// SkillRepository defines resource skill repository interface
type SkillRepository interface {
	Create(ctx context.Context, skill *models.ResourceSkill) error
	GetByID(ctx context.Context, resourceID string, id uint) (*models.ResourceSkill, error)
	ListByResource(ctx context.Context, resourceID string) ([]*models.ResourceSkill, error)
	ExistsByName(ctx context.Context, resourceID, name string) (bool, error)
	Delete(ctx context.Context, resourceID string, id uint) (int64, error)
}

// AvailabilityRepository defines resource availability repository interface
type AvailabilityRepository interface {
	Create(ctx context.Context, window *models.ResourceAvailability) error
	ListByResource(ctx context.Context, resourceID string) ([]*models.ResourceAvailability, error)
	ListAllocatedOverlapping(ctx context.Context, resourceID string, start, end time.Time) ([]*models.ResourceAvailability, error)
}

// AuditRepository defines audit trail repository interface
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListByResource(ctx context.Context, resourceID string, limit int) ([]*models.AuditEntry, error)
}

// TransferRepository defines export and import session repository interface
type TransferRepository interface {
	CreateExport(ctx context.Context, export *models.ExportSession) error
	UpdateExport(ctx context.Context, export *models.ExportSession) error
	GetExport(ctx context.Context, id string) (*models.ExportSession, error)
	ListExpiredExports(ctx context.Context, now time.Time) ([]*models.ExportSession, error)
	CreateImport(ctx context.Context, imp *models.ImportSession) error
	UpdateImport(ctx context.Context, imp *models.ImportSession) error
}

// TxRepositories are the repositories bound to one open transaction
type TxRepositories struct {
	Resources    IdleResourceRepository
	Skills       SkillRepository
	Availability AvailabilityRepository
}

// Transactor runs a function inside a database transaction
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx TxRepositories) error) error
}
