package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"

	"gorm.io/gorm"
)

// releaseWindow is how far ahead upcoming allocation ends are reported
const releaseWindow = 30 * 24 * time.Hour

// DashboardService aggregates idle resource statistics
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ============================================================
// Overview
// ============================================================

// DashboardData is the pool overview, optionally scoped to one department
type DashboardData struct {
	DepartmentID *uint `json:"departmentId,omitempty"`

	// Pool statistics
	TotalResources int64 `json:"totalResources"`
	Available      int64 `json:"available"`
	Allocated      int64 `json:"allocated"`
	Unavailable    int64 `json:"unavailable"`
	AddedThisMonth int64 `json:"addedThisMonth"`

	// Allocation statistics
	ActiveAllocations int64               `json:"activeAllocations"`
	UpcomingReleases  []AllocationSummary `json:"upcomingReleases"`

	ByResourceType []GroupCount      `json:"byResourceType"`
	ByDepartment   []DepartmentStats `json:"byDepartment,omitempty"`

	// Transfer activity this month
	ExportsThisMonth int64 `json:"exportsThisMonth"`
	ImportsThisMonth int64 `json:"importsThisMonth"`

	RecentResources []ResourceSummary `json:"recentResources"`
}

// GroupCount is a count per key
type GroupCount struct {
	Key   string `gorm:"column:group_key" json:"key"`
	Count int64  `gorm:"column:group_count" json:"count"`
}

// DepartmentStats counts idle resources of one department
type DepartmentStats struct {
	DepartmentID uint   `json:"departmentId"`
	Name         string `json:"name"`
	Total        int64  `json:"total"`
	Available    int64  `json:"available"`
}

// AllocationSummary is an allocation about to end
type AllocationSummary struct {
	ResourceID          string    `json:"resourceId"`
	EmployeeName        string    `json:"employeeName"`
	AllocationReference string    `json:"allocationReference"`
	EndDate             time.Time `json:"endDate"`
}

// ResourceSummary is a recently created idle resource
type ResourceSummary struct {
	ID           string    `json:"id"`
	EmployeeName string    `json:"employeeName"`
	ResourceType string    `json:"resourceType"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GetOverview returns statistics for the whole pool
func (s *DashboardService) GetOverview(ctx context.Context) (*DashboardData, error) {
	data, err := s.collect(ctx, nil)
	if err != nil {
		return nil, err
	}

	var rows []DepartmentStats
	err = s.db.WithContext(ctx).Table("idle_resources").
		Select(`
			employees.department_id,
			departments.name,
			COUNT(*) as total,
			SUM(CASE WHEN idle_resources.status = ? THEN 1 ELSE 0 END) as available
		`, string(domain.StatusAvailable)).
		Joins("JOIN employees ON employees.id = idle_resources.employee_id").
		Joins("JOIN departments ON departments.id = employees.department_id").
		Where("idle_resources.is_deleted = ?", false).
		Group("employees.department_id, departments.name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("department statistics: %w", err)
	}
	data.ByDepartment = rows

	return data, nil
}

// GetDepartmentDashboard returns statistics scoped to one department
func (s *DashboardService) GetDepartmentDashboard(ctx context.Context, departmentID uint) (*DashboardData, error) {
	var dept models.Department
	if err := s.db.WithContext(ctx).First(&dept, departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: department %d", domain.ErrNotFound, departmentID)
		}
		return nil, err
	}
	return s.collect(ctx, &departmentID)
}

// resources starts a query over live idle resources, joined to employees when scoped
func (s *DashboardService) resources(ctx context.Context, departmentID *uint) *gorm.DB {
	q := s.db.WithContext(ctx).Table("idle_resources").Where("idle_resources.is_deleted = ?", false)
	if departmentID != nil {
		q = q.Joins("JOIN employees ON employees.id = idle_resources.employee_id").
			Where("employees.department_id = ?", *departmentID)
	}
	return q
}

func (s *DashboardService) collect(ctx context.Context, departmentID *uint) (*DashboardData, error) {
	now := s.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	data := &DashboardData{DepartmentID: departmentID}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&data.TotalResources, s.resources(ctx, departmentID)},
		{&data.Available, s.resources(ctx, departmentID).Where("idle_resources.status = ?", string(domain.StatusAvailable))},
		{&data.Allocated, s.resources(ctx, departmentID).Where("idle_resources.status = ?", string(domain.StatusAllocated))},
		{&data.Unavailable, s.resources(ctx, departmentID).Where("idle_resources.status = ?", string(domain.StatusUnavailable))},
		{&data.AddedThisMonth, s.resources(ctx, departmentID).Where("idle_resources.created_at >= ?", startOfMonth)},
		{&data.ActiveAllocations, s.allocations(ctx, departmentID).
			Where("resource_availability.start_date <= ? AND resource_availability.end_date >= ?", now, now)},
		{&data.ExportsThisMonth, s.db.WithContext(ctx).Table("export_sessions").
			Where("status = ? AND created_at >= ?", models.ExportCompleted, startOfMonth)},
		{&data.ImportsThisMonth, s.db.WithContext(ctx).Table("import_sessions").
			Where("status = ? AND created_at >= ?", models.ImportCompleted, startOfMonth)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("dashboard counts: %w", err)
		}
	}

	// Counts by resource type
	var byType []GroupCount
	err := s.resources(ctx, departmentID).
		Select("idle_resources.resource_type as group_key, COUNT(*) as group_count").
		Group("idle_resources.resource_type").
		Order("group_count DESC").
		Scan(&byType).Error
	if err != nil {
		return nil, fmt.Errorf("resource type statistics: %w", err)
	}
	data.ByResourceType = byType

	// Allocations ending soon
	var releases []struct {
		ResourceID          string
		FirstName           string
		LastName            string
		AllocationReference string
		EndDate             time.Time
	}
	err = s.allocations(ctx, departmentID).
		Select("resource_availability.resource_id, emp.first_name, emp.last_name, resource_availability.allocation_reference, resource_availability.end_date").
		Joins("LEFT JOIN employees emp ON emp.id = idle_resources.employee_id").
		Where("resource_availability.end_date BETWEEN ? AND ?", now, now.Add(releaseWindow)).
		Order("resource_availability.end_date ASC").
		Limit(10).
		Scan(&releases).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming releases: %w", err)
	}
	data.UpcomingReleases = make([]AllocationSummary, len(releases))
	for i, r := range releases {
		emp := models.Employee{FirstName: r.FirstName, LastName: r.LastName}
		data.UpcomingReleases[i] = AllocationSummary{
			ResourceID:          r.ResourceID,
			EmployeeName:        emp.FullName(),
			AllocationReference: r.AllocationReference,
			EndDate:             r.EndDate,
		}
	}

	// Recent resources
	var recent []struct {
		ID           string
		FirstName    string
		LastName     string
		ResourceType string
		Status       string
		CreatedAt    time.Time
	}
	err = s.resources(ctx, departmentID).
		Select("idle_resources.id, emp.first_name, emp.last_name, idle_resources.resource_type, idle_resources.status, idle_resources.created_at").
		Joins("LEFT JOIN employees emp ON emp.id = idle_resources.employee_id").
		Order("idle_resources.created_at DESC").
		Limit(10).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("recent resources: %w", err)
	}
	data.RecentResources = make([]ResourceSummary, len(recent))
	for i, r := range recent {
		emp := models.Employee{FirstName: r.FirstName, LastName: r.LastName}
		data.RecentResources[i] = ResourceSummary{
			ID:           r.ID,
			EmployeeName: emp.FullName(),
			ResourceType: r.ResourceType,
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		}
	}

	return data, nil
}

// allocations starts a query over allocated ranges of live resources
func (s *DashboardService) allocations(ctx context.Context, departmentID *uint) *gorm.DB {
	q := s.db.WithContext(ctx).Table("resource_availability").
		Joins("JOIN idle_resources ON idle_resources.id = resource_availability.resource_id").
		Where("resource_availability.is_allocated = ? AND idle_resources.is_deleted = ?", true, false)
	if departmentID != nil {
		q = q.Joins("JOIN employees ON employees.id = idle_resources.employee_id").
			Where("employees.department_id = ?", *departmentID)
	}
	return q
}
