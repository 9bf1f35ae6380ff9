package models

import (
	"time"

	"idle-resource-hub/internal/core/domain"
)

// ============================================================
// Idle resources
// ============================================================

// IdleResource represents idle_resources table
type IdleResource struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID        uint       `gorm:"index;not null" json:"employeeId"`
	ResourceType      string     `gorm:"size:20;index;not null;default:'developer'" json:"resourceType"`
	Status            string     `gorm:"size:20;index;not null;default:'available'" json:"status"`
	AvailabilityStart *time.Time `gorm:"index" json:"availabilityStart"`
	AvailabilityEnd   *time.Time `gorm:"index" json:"availabilityEnd"`
	Skills            StringList `json:"skills"`
	ExperienceYears   int        `gorm:"not null;default:0" json:"experienceYears"`
	HourlyRate        *float64   `gorm:"type:decimal(10,2)" json:"hourlyRate"`
	Version           int        `gorm:"not null;default:1" json:"version"`
	IsDeleted         bool       `gorm:"index;default:false" json:"isDeleted"`
	DeletedAt         *time.Time `json:"deletedAt"`
	DeletedBy         *uint      `json:"deletedBy"`
	CreatedBy         *uint      `json:"createdBy"`
	UpdatedBy         *uint      `json:"updatedBy"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	Employee          *Employee  `gorm:"foreignKey:EmployeeID" json:"-"`
}

func (IdleResource) TableName() string {
	return "idle_resources"
}

// State derives the lifecycle state from the soft-delete flag
func (r *IdleResource) State() domain.ResourceState {
	if r.IsDeleted {
		return domain.StateSoftDeleted
	}
	return domain.StateActive
}

// IdleResourceResponse DTO
type IdleResourceResponse struct {
	ID                string     `json:"id"`
	EmployeeID        uint       `json:"employeeId"`
	EmployeeNumber    string     `json:"employeeNumber,omitempty"`
	EmployeeName      string     `json:"employeeName,omitempty"`
	DepartmentID      *uint      `json:"departmentId,omitempty"`
	ResourceType      string     `json:"resourceType"`
	Status            string     `json:"status"`
	State             string     `json:"state"`
	AvailabilityStart *time.Time `json:"availabilityStart"`
	AvailabilityEnd   *time.Time `json:"availabilityEnd"`
	Skills            []string   `json:"skills"`
	ExperienceYears   int        `json:"experienceYears"`
	HourlyRate        *float64   `json:"hourlyRate"`
	Version           int        `json:"version"`
	CreatedBy         *uint      `json:"createdBy"`
	UpdatedBy         *uint      `json:"updatedBy"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	DeletedAt         *time.Time `json:"deletedAt,omitempty"`
}

func (r *IdleResource) ToResponse() *IdleResourceResponse {
	skills := []string(r.Skills)
	if skills == nil {
		skills = []string{}
	}
	resp := &IdleResourceResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		ResourceType:      r.ResourceType,
		Status:            r.Status,
		State:             string(r.State()),
		AvailabilityStart: r.AvailabilityStart,
		AvailabilityEnd:   r.AvailabilityEnd,
		Skills:            skills,
		ExperienceYears:   r.ExperienceYears,
		HourlyRate:        r.HourlyRate,
		Version:           r.Version,
		CreatedBy:         r.CreatedBy,
		UpdatedBy:         r.UpdatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		DeletedAt:         r.DeletedAt,
	}
	if r.Employee != nil {
		resp.EmployeeNumber = r.Employee.EmployeeNumber
		resp.EmployeeName = r.Employee.FullName()
		resp.DepartmentID = r.Employee.DepartmentID
	}
	return resp
}

// ResourceSkill represents resource_skills table
type ResourceSkill struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ResourceID        string     `gorm:"size:36;not null;uniqueIndex:idx_resource_skill" json:"resourceId"`
	SkillName         string     `gorm:"size:100;not null;uniqueIndex:idx_resource_skill" json:"skillName"`
	SkillCategory     string     `gorm:"size:20;not null;default:'technical'" json:"skillCategory"`
	ProficiencyLevel  string     `gorm:"size:20;not null;default:'intermediate'" json:"proficiencyLevel"`
	YearsExperience   float64    `gorm:"default:0" json:"yearsExperience"`
	CertificationName string     `gorm:"size:150" json:"certificationName,omitempty"`
	CertificationDate *time.Time `json:"certificationDate,omitempty"`
	IsVerified        bool       `gorm:"default:false" json:"isVerified"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ResourceSkill) TableName() string {
	return "resource_skills"
}

// ResourceAvailability represents resource_availability table.
// Rows with IsAllocated set block new bookings over their range.
type ResourceAvailability struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ResourceID          string    `gorm:"size:36;not null;index" json:"resourceId"`
	AvailabilityType    string    `gorm:"size:20;not null;default:'full_time'" json:"availabilityType"`
	StartDate           time.Time `gorm:"not null;index" json:"startDate"`
	EndDate             time.Time `gorm:"not null;index" json:"endDate"`
	CapacityPercentage  int       `gorm:"not null;default:100" json:"capacityPercentage"`
	HourlyCommitment    int       `gorm:"not null;default:40" json:"hourlyCommitment"`
	IsAllocated         bool      `gorm:"index;default:false" json:"isAllocated"`
	AllocationReference string    `gorm:"size:100" json:"allocationReference"`
	Notes               string    `gorm:"type:text" json:"notes"`
	CreatedBy           *uint     `json:"createdBy"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ResourceAvailability) TableName() string {
	return "resource_availability"
}

// ============================================================
// Audit, export and import tracking
// ============================================================

// AuditEntry represents audit_entries table
type AuditEntry struct {
	ID               string    `gorm:"primaryKey;size:27" json:"id"`
	Operation        string    `gorm:"size:50;index;not null" json:"operation"`
	ResourceID       string    `gorm:"size:36;index" json:"resourceId"`
	OperationDetails JSONMap   `json:"operationDetails"`
	ActorID          *uint     `gorm:"index" json:"actorId"`
	IPAddress        string    `gorm:"size:64" json:"ipAddress"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

// Export statuses
const (
	ExportPending    = "pending"
	ExportProcessing = "processing"
	ExportCompleted  = "completed"
	ExportFailed     = "failed"
	ExportExpired    = "expired"
)

// ExportSession represents export_sessions table
type ExportSession struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Format       string     `gorm:"size:10;not null" json:"format"`
	Status       string     `gorm:"size:20;index;not null" json:"status"`
	RecordCount  int        `json:"recordCount"`
	FileName     string     `gorm:"size:255" json:"fileName"`
	FilePath     string     `gorm:"size:500" json:"-"`
	FileSize     int64      `json:"fileSize"`
	Filters      JSONMap    `json:"filters"`
	ErrorMessage string     `gorm:"type:text" json:"errorMessage,omitempty"`
	RequestedBy  *uint      `json:"requestedBy"`
	ExpiresAt    *time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (ExportSession) TableName() string {
	return "export_sessions"
}

// Import statuses
const (
	ImportPending    = "pending"
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
	ImportCancelled  = "cancelled"
)

// ImportSession represents import_sessions table
type ImportSession struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	FileName    string     `gorm:"size:255" json:"fileName"`
	Status      string     `gorm:"size:20;index;not null" json:"status"`
	TotalRows   int        `json:"totalRows"`
	ValidRows   int        `json:"validRows"`
	InvalidRows int        `json:"invalidRows"`
	CreatedRows int        `json:"createdRows"`
	Errors      JSONMap    `json:"errors"`
	RequestedBy *uint      `json:"requestedBy"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
