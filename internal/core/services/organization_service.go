package services

import (
	"context"
	"fmt"
	"strings"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"
	"idle-resource-hub/internal/pkg/pagination"

	"go.uber.org/zap"
)

// Organization errors
var (
	ErrEmployeeNotFound   = fmt.Errorf("employee %w", domain.ErrNotFound)
	ErrDepartmentNotFound = fmt.Errorf("department %w", domain.ErrNotFound)
	ErrEmployeeExists     = fmt.Errorf("employee number or email %w", domain.ErrDuplicateEntry)
	ErrDepartmentExists   = fmt.Errorf("department name %w", domain.ErrDuplicateEntry)
)

// OrganizationService manages employees and departments
type OrganizationService struct {
	employees   repositories.EmployeeRepository
	departments repositories.DepartmentRepository
	log         *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	employees repositories.EmployeeRepository,
	departments repositories.DepartmentRepository,
	log *zap.Logger,
) *OrganizationService {
	return &OrganizationService{employees: employees, departments: departments, log: log}
}

// ============================================================
// Employees
// ============================================================

// EmployeeInput creates or patches an employee; nil fields are unchanged
type EmployeeInput struct {
	EmployeeNumber  *string     `json:"employeeNumber" validate:"omitempty,min=1,max=20"`
	FirstName       *string     `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName        *string     `json:"lastName" validate:"omitempty,max=100"`
	Email           *string     `json:"email" validate:"omitempty,email,max=150"`
	DepartmentID    *uint       `json:"departmentId"`
	HireDate        *dates.Time `json:"hireDate"`
	TerminationDate *dates.Time `json:"terminationDate"`
	IsActive        *bool       `json:"isActive"`
}

// EmployeeListResult is a page of employees
type EmployeeListResult struct {
	Records    []*models.Employee  `json:"records"`
	TotalCount int64               `json:"totalCount"`
	PageInfo   pagination.PageInfo `json:"pageInfo"`
}

// CreateEmployee creates a new employee
func (s *OrganizationService) CreateEmployee(ctx context.Context, in *EmployeeInput) (*models.Employee, error) {
	ve := domain.NewValidationError("Invalid employee data")
	if in.EmployeeNumber == nil || strings.TrimSpace(*in.EmployeeNumber) == "" {
		ve.Add("employeeNumber", domain.CodeRequired, "is required")
	}
	if in.FirstName == nil || strings.TrimSpace(*in.FirstName) == "" {
		ve.Add("firstName", domain.CodeRequired, "is required")
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		ve.Add("email", domain.CodeRequired, "is required")
	}
	if in.HireDate == nil || in.HireDate.IsZero() {
		ve.Add("hireDate", domain.CodeRequired, "is required")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	emp := &models.Employee{IsActive: true}
	s.applyEmployee(emp, in)
	if err := s.checkEmployee(ctx, emp, ve); err != nil {
		return nil, err
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}
	s.log.Info("employee created", zap.Uint("id", emp.ID), zap.String("employeeNumber", emp.EmployeeNumber))
	return s.GetEmployee(ctx, emp.ID)
}

// GetEmployee gets an employee by ID
func (s *OrganizationService) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEmployeeNotFound)
	}
	return emp, nil
}

// ListEmployees lists employees with pagination
func (s *OrganizationService) ListEmployees(ctx context.Context, filter repositories.EmployeeFilter, params pagination.Params) (*EmployeeListResult, error) {
	emps, total, err := s.employees.List(ctx, filter, params.Offset, params.PageSize)
	if err != nil {
		return nil, err
	}
	if emps == nil {
		emps = []*models.Employee{}
	}
	return &EmployeeListResult{
		Records:    emps,
		TotalCount: total,
		PageInfo:   pagination.GetPageInfo(params, total),
	}, nil
}

// UpdateEmployee patches an employee
func (s *OrganizationService) UpdateEmployee(ctx context.Context, id uint, in *EmployeeInput) (*models.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEmployeeNotFound)
	}

	s.applyEmployee(emp, in)
	emp.Department = nil

	ve := domain.NewValidationError("Invalid employee data")
	if err := s.checkEmployee(ctx, emp, ve); err != nil {
		return nil, err
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}
	return s.GetEmployee(ctx, id)
}

func (s *OrganizationService) applyEmployee(emp *models.Employee, in *EmployeeInput) {
	if in.EmployeeNumber != nil {
		emp.EmployeeNumber = strings.TrimSpace(*in.EmployeeNumber)
	}
	if in.FirstName != nil {
		emp.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		emp.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		emp.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.DepartmentID != nil {
		emp.DepartmentID = in.DepartmentID
	}
	if in.HireDate != nil && !in.HireDate.IsZero() {
		emp.HireDate = in.HireDate.Time
	}
	if in.TerminationDate != nil {
		emp.TerminationDate = in.TerminationDate.Ptr()
	}
	if in.IsActive != nil {
		emp.IsActive = *in.IsActive
	}
}

// checkEmployee enforces date order, termination, department and uniqueness rules
func (s *OrganizationService) checkEmployee(ctx context.Context, emp *models.Employee, ve *domain.ValidationError) error {
	if emp.TerminationDate != nil {
		if !emp.TerminationDate.After(emp.HireDate) {
			ve.Add("terminationDate", domain.CodeInvalidDateRange, "terminationDate must be after hireDate")
		}
		if emp.IsActive {
			ve.Add("isActive", domain.CodeInvalidChoice, "a terminated employee cannot be active")
		}
	}

	if emp.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *emp.DepartmentID); err != nil {
			if notFound(err, ErrDepartmentNotFound) == ErrDepartmentNotFound {
				ve.Add("departmentId", domain.CodeInvalidReference, fmt.Sprintf("department %d does not exist", *emp.DepartmentID))
			} else {
				return err
			}
		}
	}
	if ve.HasErrors() {
		return nil
	}

	exists, err := s.employees.ExistsByNumber(ctx, emp.EmployeeNumber, emp.ID)
	if err != nil {
		return err
	}
	if !exists {
		exists, err = s.employees.ExistsByEmail(ctx, emp.Email, emp.ID)
		if err != nil {
			return err
		}
	}
	if exists {
		return ErrEmployeeExists
	}
	return nil
}

// ============================================================
// Departments
// ============================================================

// DepartmentInput creates or patches a department
type DepartmentInput struct {
	Name               *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code               *string `json:"code" validate:"omitempty,max=20"`
	ParentDepartmentID *uint   `json:"parentDepartmentId"`
	ManagerID          *uint   `json:"managerId"`
	IsActive           *bool   `json:"isActive"`
}

// CreateDepartment creates a new department
func (s *OrganizationService) CreateDepartment(ctx context.Context, in *DepartmentInput) (*models.Department, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		ve := domain.NewValidationError("Invalid department data")
		ve.Add("name", domain.CodeRequired, "is required")
		return nil, ve
	}

	dept := &models.Department{IsActive: true}
	applyDepartment(dept, in)
	if err := s.checkDepartment(ctx, dept); err != nil {
		return nil, err
	}

	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	s.log.Info("department created", zap.Uint("id", dept.ID), zap.String("name", dept.Name))
	return dept, nil
}

// ListDepartments lists departments
func (s *OrganizationService) ListDepartments(ctx context.Context, activeOnly bool) ([]*models.Department, error) {
	depts, err := s.departments.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if depts == nil {
		depts = []*models.Department{}
	}
	return depts, nil
}

// UpdateDepartment patches a department
func (s *OrganizationService) UpdateDepartment(ctx context.Context, id uint, in *DepartmentInput) (*models.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrDepartmentNotFound)
	}

	applyDepartment(dept, in)
	if err := s.checkDepartment(ctx, dept); err != nil {
		return nil, err
	}

	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// DeactivateDepartment is the only way to retire a department
func (s *OrganizationService) DeactivateDepartment(ctx context.Context, id uint) (*models.Department, error) {
	inactive := false
	return s.UpdateDepartment(ctx, id, &DepartmentInput{IsActive: &inactive})
}

func applyDepartment(dept *models.Department, in *DepartmentInput) {
	if in.Name != nil {
		dept.Name = strings.TrimSpace(*in.Name)
	}
	if in.Code != nil {
		dept.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.ParentDepartmentID != nil {
		dept.ParentDepartmentID = in.ParentDepartmentID
	}
	if in.ManagerID != nil {
		dept.ManagerID = in.ManagerID
	}
	if in.IsActive != nil {
		dept.IsActive = *in.IsActive
	}
}

func (s *OrganizationService) checkDepartment(ctx context.Context, dept *models.Department) error {
	ve := domain.NewValidationError("Invalid department data")
	if parent := dept.ParentDepartmentID; parent != nil {
		if dept.ID != 0 && *parent == dept.ID {
			ve.Add("parentDepartmentId", domain.CodeInvalidReference, "a department cannot be its own parent")
		} else if _, err := s.departments.GetByID(ctx, *parent); err != nil {
			if notFound(err, ErrDepartmentNotFound) != ErrDepartmentNotFound {
				return err
			}
			ve.Add("parentDepartmentId", domain.CodeInvalidReference, fmt.Sprintf("department %d does not exist", *parent))
		}
	}
	if ve.HasErrors() {
		return ve
	}

	exists, err := s.departments.ExistsByName(ctx, dept.Name, dept.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDepartmentExists
	}
	return nil
}
