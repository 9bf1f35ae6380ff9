package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"
)

func TestAllocate_ThenOverlapConflicts(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	result, err := f.availability.Allocate(context.Background(), created.ID, &AllocationInput{
		StartDate:           *day(2025, 4, 1),
		EndDate:             *day(2025, 5, 1),
		AllocationReference: "PRJ-1",
	}, managerActor)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if result.ResourceVersion != 2 {
		t.Errorf("expected resource version 2, got %d", result.ResourceVersion)
	}
	if !result.Allocation.IsAllocated || result.Allocation.AvailabilityType != "full_time" {
		t.Errorf("expected allocated full_time window, got %+v", result.Allocation)
	}

	_, err = f.availability.Allocate(context.Background(), created.ID, &AllocationInput{
		StartDate: *day(2025, 4, 20),
		EndDate:   *day(2025, 5, 10),
	}, managerActor)

	var conflict *domain.AllocationConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected allocation conflict, got %v", err)
	}
	if len(conflict.Conflicts) != 1 || conflict.Conflicts[0].AllocationReference != "PRJ-1" {
		t.Errorf("expected one conflict with PRJ-1, got %+v", conflict.Conflicts)
	}
}

func TestCheckAvailability_ReportsEveryConflict(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	if _, err := f.availability.Allocate(context.Background(), created.ID, &AllocationInput{
		StartDate:           *day(2025, 4, 1),
		EndDate:             *day(2025, 5, 1),
		AllocationReference: "PRJ-1",
	}, managerActor); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	result, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 2, 15).Time, day(2025, 4, 15).Time)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.IsAvailable {
		t.Error("expected resource to be unavailable")
	}
	if len(result.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(result.Conflicts))
	}
	if result.Conflicts[0].Type != ConflictAvailabilityWindow || result.Conflicts[1].Type != ConflictAllocation {
		t.Errorf("expected window then allocation conflict, got %s then %s", result.Conflicts[0].Type, result.Conflicts[1].Type)
	}
}

func TestCheckAvailability_ListsOverlappingAllocations(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	// overlapping rows can predate the allocation check, so seed them directly
	for _, w := range []*models.ResourceAvailability{
		{ResourceID: created.ID, AvailabilityType: "part_time", StartDate: day(2025, 4, 1).Time, EndDate: day(2025, 5, 1).Time, CapacityPercentage: 50, HourlyCommitment: 20, IsAllocated: true, AllocationReference: "PRJ-1"},
		{ResourceID: created.ID, AvailabilityType: "part_time", StartDate: day(2025, 4, 15).Time, EndDate: day(2025, 5, 15).Time, CapacityPercentage: 50, HourlyCommitment: 20, IsAllocated: true, AllocationReference: "PRJ-2"},
		{ResourceID: created.ID, AvailabilityType: "full_time", StartDate: day(2025, 4, 10).Time, EndDate: day(2025, 4, 20).Time, CapacityPercentage: 100, HourlyCommitment: 40, IsAllocated: false, AllocationReference: "TENTATIVE"},
	} {
		if err := f.db.Create(w).Error; err != nil {
			t.Fatalf("failed to seed window: %v", err)
		}
	}

	result, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 4, 16).Time, day(2025, 4, 20).Time)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.IsAvailable {
		t.Error("expected resource to be unavailable")
	}
	if len(result.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d: %+v", len(result.Conflicts), result.Conflicts)
	}
	for i, ref := range []string{"PRJ-1", "PRJ-2"} {
		if result.Conflicts[i].Type != ConflictAllocation || result.Conflicts[i].AllocationReference != ref {
			t.Errorf("expected allocation conflict %s at %d, got %+v", ref, i, result.Conflicts[i])
		}
	}
}

func TestCheckAvailability_DoesNotWrite(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)
	if _, err := f.availability.Allocate(context.Background(), created.ID, &AllocationInput{
		StartDate:           *day(2025, 4, 1),
		EndDate:             *day(2025, 5, 1),
		AllocationReference: "PRJ-1",
	}, managerActor); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	countWindows := func() int64 {
		var n int64
		if err := f.db.Model(&models.ResourceAvailability{}).Count(&n).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		return n
	}
	windowsBefore := countWindows()

	first, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 4, 10).Time, day(2025, 4, 20).Time)
	if err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	second, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 4, 10).Time, day(2025, 4, 20).Time)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
	if got := countWindows(); got != windowsBefore {
		t.Errorf("expected %d windows, got %d", windowsBefore, got)
	}
	stored, err := f.resources.Get(context.Background(), created.ID, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Version != 2 {
		t.Errorf("expected version to stay 2, got %d", stored.Version)
	}
}

func TestCheckAvailability_TouchingRangesDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	if _, err := f.availability.Allocate(context.Background(), created.ID, &AllocationInput{
		StartDate: *day(2025, 4, 1),
		EndDate:   *day(2025, 5, 1),
	}, managerActor); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	result, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 5, 1).Time, day(2025, 5, 15).Time)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !result.IsAvailable {
		t.Errorf("expected range starting at the previous end to be free, got %+v", result.Conflicts)
	}
}

func TestCheckAvailability_StatusBlocks(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, func(in *ResourceInput) { in.Status = strPtr("unavailable") })

	result, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 4, 1).Time, day(2025, 4, 2).Time)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.IsAvailable {
		t.Error("expected unavailable resource")
	}
	if result.Reason != "resource status is unavailable" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestCheckAvailability_InvalidRange(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	_, err := f.availability.CheckAvailability(context.Background(), created.ID, day(2025, 4, 2).Time, day(2025, 4, 1).Time)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields[0].Code != domain.CodeInvalidDateRange {
		t.Errorf("expected %s, got %s", domain.CodeInvalidDateRange, ve.Fields[0].Code)
	}
}

func TestAllocate_StaleVersion(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	_, err := f.availability.Allocate(context.Background(), created.ID, &AllocationInput{
		StartDate: *day(2025, 4, 1),
		EndDate:   *day(2025, 5, 1),
		Version:   intPtr(3),
	}, managerActor)

	var conflict *domain.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	windows, err := f.availability.ListAvailability(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(windows) != 0 {
		t.Errorf("expected no stored allocation, got %d", len(windows))
	}
}

func TestSkills_AddDuplicateAndRemove(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	skill, err := f.skills.Add(context.Background(), created.ID, &SkillInput{SkillName: "Kubernetes", SkillCategory: "cloud"}, managerActor)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if skill.ProficiencyLevel != "intermediate" {
		t.Errorf("expected default proficiency intermediate, got %s", skill.ProficiencyLevel)
	}

	if _, err := f.skills.Add(context.Background(), created.ID, &SkillInput{SkillName: "Kubernetes"}, managerActor); !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Errorf("expected duplicate error, got %v", err)
	}

	if err := f.skills.Remove(context.Background(), created.ID, skill.ID, managerActor); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := f.skills.Remove(context.Background(), created.ID, skill.ID, managerActor); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("expected ErrSkillNotFound, got %v", err)
	}
}
