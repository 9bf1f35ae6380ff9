package services

import (
	"context"
	"errors"
	"testing"

	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/pagination"

	"go.uber.org/zap"
)

func newOrganizationService(f *fixture) *OrganizationService {
	return NewOrganizationService(
		repositories.NewEmployeeRepository(f.db),
		repositories.NewDepartmentRepository(f.db),
		zap.NewNop(),
	)
}

func TestCreateEmployee(t *testing.T) {
	f := newFixture(t)
	org := newOrganizationService(f)
	ctx := context.Background()

	_, err := org.CreateEmployee(ctx, &EmployeeInput{FirstName: strPtr("Ada")})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("expected employeeNumber, email and hireDate errors, got %v", ve.Fields)
	}

	in := &EmployeeInput{
		EmployeeNumber: strPtr("E100"),
		FirstName:      strPtr("Ada"),
		LastName:       strPtr("Lovelace"),
		Email:          strPtr("ada@example.com"),
		DepartmentID:   &f.department.ID,
		HireDate:       day(2021, 2, 1),
	}
	emp, err := org.CreateEmployee(ctx, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !emp.IsActive || emp.Department == nil || emp.Department.Name != "Development" {
		t.Errorf("expected active employee in Development, got %+v", emp)
	}

	if _, err := org.CreateEmployee(ctx, in); !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Errorf("expected duplicate employee, got %v", err)
	}
}

func TestCreateEmployee_UnknownDepartment(t *testing.T) {
	f := newFixture(t)
	org := newOrganizationService(f)

	_, err := org.CreateEmployee(context.Background(), &EmployeeInput{
		EmployeeNumber: strPtr("E100"),
		FirstName:      strPtr("Ada"),
		Email:          strPtr("ada@example.com"),
		DepartmentID:   uintPtr(999),
		HireDate:       day(2021, 2, 1),
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Code != domain.CodeInvalidReference {
		t.Fatalf("expected invalid department reference, got %v", err)
	}
}

func TestUpdateEmployee_TerminationRules(t *testing.T) {
	f := newFixture(t)
	org := newOrganizationService(f)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")

	_, err := org.UpdateEmployee(context.Background(), ada.ID, &EmployeeInput{TerminationDate: day(2024, 12, 31)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "isActive" {
		t.Fatalf("expected active terminated employee to be rejected, got %v", err)
	}

	inactive := false
	emp, err := org.UpdateEmployee(context.Background(), ada.ID, &EmployeeInput{TerminationDate: day(2024, 12, 31), IsActive: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if emp.IsActive {
		t.Error("expected employee to be inactive")
	}
}

func TestListEmployees_FiltersByDepartment(t *testing.T) {
	f := newFixture(t)
	org := newOrganizationService(f)
	f.addEmployee(t, "E001", "Ada", "Lovelace")
	f.addEmployee(t, "E002", "Alan", "Turing")

	result, err := org.ListEmployees(context.Background(), repositories.EmployeeFilter{DepartmentID: &f.department.ID}, pagination.New(1, 1))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.TotalCount != 2 || len(result.Records) != 1 {
		t.Errorf("expected 2 total and 1 on the page, got %d and %d", result.TotalCount, len(result.Records))
	}
	if !result.PageInfo.HasNextPage {
		t.Error("expected a next page")
	}
}

func TestDepartments(t *testing.T) {
	f := newFixture(t)
	org := newOrganizationService(f)
	ctx := context.Background()

	if _, err := org.CreateDepartment(ctx, &DepartmentInput{Name: strPtr("Development")}); !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Errorf("expected duplicate name, got %v", err)
	}

	qa, err := org.CreateDepartment(ctx, &DepartmentInput{Name: strPtr("Quality"), Code: strPtr("qa"), ParentDepartmentID: &f.department.ID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if qa.Code != "QA" {
		t.Errorf("expected upper-cased code QA, got %s", qa.Code)
	}

	if _, err := org.UpdateDepartment(ctx, qa.ID, &DepartmentInput{ParentDepartmentID: &qa.ID}); err == nil {
		t.Error("expected self-parent to be rejected")
	}

	if _, err := org.DeactivateDepartment(ctx, qa.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	active, err := org.ListDepartments(ctx, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected only Development active, got %d departments", len(active))
	}
}
