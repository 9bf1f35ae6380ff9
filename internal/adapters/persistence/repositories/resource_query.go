package repositories

import (
	"errors"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ErrUnknownSortField is returned for sort fields outside the whitelist
var ErrUnknownSortField = errors.New("unknown sort field")

// Aggregation dimensions accepted by CountBy
const (
	DimensionStatus       = "status"
	DimensionResourceType = "resourceType"
	DimensionDepartment   = "department"
)

var dimensionColumns = map[string]string{
	DimensionStatus:       "idle_resources.status",
	DimensionResourceType: "idle_resources.resource_type",
	DimensionDepartment:   "employees.department_id",
}

// SortFields maps accepted sort names onto columns.
var SortFields = map[string]string{
	"createdAt":          "idle_resources.created_at",
	"created_at":         "idle_resources.created_at",
	"updatedAt":          "idle_resources.updated_at",
	"updated_at":         "idle_resources.updated_at",
	"availabilityStart":  "idle_resources.availability_start",
	"availability_start": "idle_resources.availability_start",
	"availabilityEnd":    "idle_resources.availability_end",
	"availability_end":   "idle_resources.availability_end",
	"experienceYears":    "idle_resources.experience_years",
	"experience_years":   "idle_resources.experience_years",
	"hourlyRate":         "idle_resources.hourly_rate",
	"hourly_rate":        "idle_resources.hourly_rate",
	"status":             "idle_resources.status",
	"resourceType":       "idle_resources.resource_type",
	"resource_type":      "idle_resources.resource_type",
}

// ResourceQuery composes idle resource predicates. Building a query never
// touches the database; it is materialized only by List, Count or CountBy.
type ResourceQuery struct {
	ids            []string
	status         string
	resourceType   string
	departmentID   *uint
	employeeID     *uint
	skills         []string
	minExperience  *int
	availableFrom  *time.Time
	availableUntil *time.Time
	text           string
	includeDeleted bool

	sortColumn string
	sortDesc   bool
	offset     int
	limit      int
}

// NewResourceQuery returns a query sorted by newest first
func NewResourceQuery() *ResourceQuery {
	return &ResourceQuery{
		sortColumn: "idle_resources.created_at",
		sortDesc:   true,
	}
}

// IDs restricts the query to the given resource ids
func (q *ResourceQuery) IDs(ids ...string) *ResourceQuery {
	q.ids = append(q.ids, ids...)
	return q
}

// Status filters by exact status
func (q *ResourceQuery) Status(status string) *ResourceQuery {
	q.status = status
	return q
}

// ResourceType filters by exact resource type
func (q *ResourceQuery) ResourceType(resourceType string) *ResourceQuery {
	q.resourceType = resourceType
	return q
}

// Department filters by the employee's department
func (q *ResourceQuery) Department(id uint) *ResourceQuery {
	q.departmentID = &id
	return q
}

// Employee filters by employee
func (q *ResourceQuery) Employee(id uint) *ResourceQuery {
	q.employeeID = &id
	return q
}

// Skills requires every given skill to appear, case-insensitively, in the skill list
func (q *ResourceQuery) Skills(skills ...string) *ResourceQuery {
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			q.skills = append(q.skills, s)
		}
	}
	return q
}

// MinExperience requires experience_years >= years
func (q *ResourceQuery) MinExperience(years int) *ResourceQuery {
	q.minExperience = &years
	return q
}

// AvailableFrom keeps resources whose window has started by t or is open-ended
func (q *ResourceQuery) AvailableFrom(t time.Time) *ResourceQuery {
	q.availableFrom = &t
	return q
}

// AvailableUntil keeps resources whose window lasts until t or is open-ended
func (q *ResourceQuery) AvailableUntil(t time.Time) *ResourceQuery {
	q.availableUntil = &t
	return q
}

// Text matches employee names, employee number or skills
func (q *ResourceQuery) Text(text string) *ResourceQuery {
	q.text = strings.TrimSpace(text)
	return q
}

// IncludeDeleted also returns soft-deleted rows
func (q *ResourceQuery) IncludeDeleted(include bool) *ResourceQuery {
	q.includeDeleted = include
	return q
}

// OrderBy sets the sort column from the whitelist
func (q *ResourceQuery) OrderBy(field string, desc bool) error {
	if field == "" {
		return nil
	}
	column, ok := SortFields[field]
	if !ok {
		return ErrUnknownSortField
	}
	q.sortColumn = column
	q.sortDesc = desc
	return nil
}

// Page sets offset and limit for List
func (q *ResourceQuery) Page(offset, limit int) *ResourceQuery {
	q.offset = offset
	q.limit = limit
	return q
}

// where applies every predicate; ordering and paging are left to the caller
func (q *ResourceQuery) where(db *gorm.DB) *gorm.DB {
	db = db.Joins("JOIN employees ON employees.id = idle_resources.employee_id")

	if !q.includeDeleted {
		db = db.Where("idle_resources.is_deleted = ?", false)
	}
	if len(q.ids) > 0 {
		db = db.Where("idle_resources.id IN ?", q.ids)
	}
	if q.status != "" {
		db = db.Where("idle_resources.status = ?", q.status)
	}
	if q.resourceType != "" {
		db = db.Where("idle_resources.resource_type = ?", q.resourceType)
	}
	if q.departmentID != nil {
		db = db.Where("employees.department_id = ?", *q.departmentID)
	}
	if q.employeeID != nil {
		db = db.Where("idle_resources.employee_id = ?", *q.employeeID)
	}
	for _, skill := range q.skills {
		db = db.Where("LOWER(idle_resources.skills) LIKE ? ESCAPE '!'", skillPattern(skill))
	}
	if q.minExperience != nil {
		db = db.Where("idle_resources.experience_years >= ?", *q.minExperience)
	}
	if q.availableFrom != nil {
		db = db.Where("(idle_resources.availability_start IS NULL OR idle_resources.availability_start <= ?)", *q.availableFrom)
	}
	if q.availableUntil != nil {
		db = db.Where("(idle_resources.availability_end IS NULL OR idle_resources.availability_end >= ?)", *q.availableUntil)
	}
	if q.text != "" {
		p := likePattern(q.text)
		db = db.Where(
			"(LOWER(employees.first_name) LIKE ? ESCAPE '!' OR LOWER(employees.last_name) LIKE ? ESCAPE '!' OR LOWER(employees.employee_number) LIKE ? ESCAPE '!' OR LOWER(idle_resources.skills) LIKE ? ESCAPE '!')",
			p, p, p, skillPattern(q.text),
		)
	}
	return db
}

func (q *ResourceQuery) order() string {
	if q.sortDesc {
		return q.sortColumn + " DESC"
	}
	return q.sortColumn + " ASC"
}

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in any supported dialect
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// skillPattern matches s against the JSON text of the skills column
func skillPattern(s string) string {
	return likePattern(models.JSONFragment(s))
}
