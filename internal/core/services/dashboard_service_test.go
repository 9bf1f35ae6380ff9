package services

import (
	"context"
	"errors"
	"testing"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"
)

func TestDashboard_Overview(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	alan := f.addEmployee(t, "E002", "Alan", "Turing")
	grace := f.addEmployee(t, "E003", "Grace", "Hopper")
	f.createResource(t, ada.ID, nil)
	f.createResource(t, alan.ID, func(in *ResourceInput) { in.Status = strPtr("unavailable") })
	gone := f.createResource(t, grace.ID, func(in *ResourceInput) { in.ResourceType = strPtr("analyst") })
	if _, err := f.resources.Delete(context.Background(), gone.ID, &DeleteInput{DeleteType: "soft"}, managerActor); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	dashboard := NewDashboardService(f.db)
	data, err := dashboard.GetOverview(context.Background())
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}

	if data.TotalResources != 2 {
		t.Errorf("expected 2 live resources, got %d", data.TotalResources)
	}
	if data.Available != 1 || data.Unavailable != 1 {
		t.Errorf("expected 1 available and 1 unavailable, got %d and %d", data.Available, data.Unavailable)
	}
	if len(data.ByResourceType) != 1 || data.ByResourceType[0].Key != "developer" || data.ByResourceType[0].Count != 2 {
		t.Errorf("expected 2 developers, got %+v", data.ByResourceType)
	}
	if len(data.ByDepartment) != 1 || data.ByDepartment[0].Name != "Development" || data.ByDepartment[0].Available != 1 {
		t.Errorf("expected Development with 1 available, got %+v", data.ByDepartment)
	}
	if len(data.RecentResources) != 2 {
		t.Errorf("expected 2 recent resources, got %d", len(data.RecentResources))
	}
}

func TestDashboard_DepartmentScope(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	f.createResource(t, ada.ID, nil)

	other := &models.Department{Name: "Finance", Code: "FIN", IsActive: true}
	if err := f.db.Create(other).Error; err != nil {
		t.Fatalf("failed to create department: %v", err)
	}

	dashboard := NewDashboardService(f.db)
	data, err := dashboard.GetDepartmentDashboard(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("department dashboard failed: %v", err)
	}
	if data.TotalResources != 0 {
		t.Errorf("expected empty Finance pool, got %d", data.TotalResources)
	}

	if _, err := dashboard.GetDepartmentDashboard(context.Background(), 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
