package domain

// Role represents user role in the system
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// ResourceType is the job family of an idle resource.
type ResourceType string

const (
	ResourceDeveloper  ResourceType = "developer"
	ResourceTester     ResourceType = "tester"
	ResourceAnalyst    ResourceType = "analyst"
	ResourceDesigner   ResourceType = "designer"
	ResourceManager    ResourceType = "manager"
	ResourceDevOps     ResourceType = "devops"
	ResourceArchitect  ResourceType = "architect"
	ResourceConsultant ResourceType = "consultant"
)

// ResourceTypes lists every valid resource type in display order.
var ResourceTypes = []ResourceType{
	ResourceDeveloper, ResourceTester, ResourceAnalyst, ResourceDesigner,
	ResourceManager, ResourceDevOps, ResourceArchitect, ResourceConsultant,
}

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	for _, v := range ResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ResourceStatus is the assignment status of an idle resource.
type ResourceStatus string

const (
	StatusAvailable   ResourceStatus = "available"
	StatusAllocated   ResourceStatus = "allocated"
	StatusUnavailable ResourceStatus = "unavailable"
	StatusDeleted     ResourceStatus = "deleted"
)

// ResourceStatuses lists every valid status.
var ResourceStatuses = []ResourceStatus{StatusAvailable, StatusAllocated, StatusUnavailable, StatusDeleted}

// Valid reports whether s is a known status.
func (s ResourceStatus) Valid() bool {
	for _, v := range ResourceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ResourceState is the lifecycle state of a stored record.
// Purged never exists in storage; it only describes the outcome of a hard delete.
type ResourceState string

const (
	StateActive      ResourceState = "active"
	StateSoftDeleted ResourceState = "soft_deleted"
	StatePurged      ResourceState = "purged"
)

// DeleteType selects the delete path.
type DeleteType string

const (
	DeleteSoft DeleteType = "soft"
	DeleteHard DeleteType = "hard"
)

// Skill categories
var SkillCategories = []string{
	"technical", "programming", "framework", "database",
	"cloud", "soft_skill", "certification", "tool",
}

// Proficiency levels
var ProficiencyLevels = []string{"beginner", "intermediate", "advanced", "expert"}

// Availability types for allocation windows
var AvailabilityTypes = []string{"full_time", "part_time", "on_call", "consulting", "project_based"}

// Export formats
const (
	ExportCSV   = "csv"
	ExportExcel = "excel"
	ExportJSON  = "json"
	ExportPDF   = "pdf"
)

// ExportFormats lists supported export formats.
var ExportFormats = []string{ExportCSV, ExportExcel, ExportJSON, ExportPDF}

// Contains reports whether value is one of choices.
func Contains(choices []string, value string) bool {
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}
