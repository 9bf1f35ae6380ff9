package handlers

import (
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/pagination"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrganizationHandler handles employee and department endpoints
type OrganizationHandler struct {
	org *services.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(org *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{org: org}
}

// ListEmployees handles listing employees
// @Summary List employees
// @Tags Organization
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param activeOnly query bool false "Only active employees"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(25)
// @Success 200 {object} services.EmployeeListResult
// @Router /employees [get]
func (h *OrganizationHandler) ListEmployees(c *fiber.Ctx) error {
	ve := domain.NewValidationError("Invalid list parameters")
	filter := repositories.EmployeeFilter{
		DepartmentID: uintQuery(c, "departmentId", ve),
		ActiveOnly:   c.QueryBool("activeOnly", false),
	}
	if ve.HasErrors() {
		return response.FromError(c, ve)
	}

	result, err := h.org.ListEmployees(c.UserContext(), filter, pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// CreateEmployee handles creating an employee
// @Summary Create employee
// @Tags Organization
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.EmployeeInput true "Employee"
// @Success 201 {object} models.Employee
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /employees [post]
func (h *OrganizationHandler) CreateEmployee(c *fiber.Ctx) error {
	var req services.EmployeeInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	emp, err := h.org.CreateEmployee(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, emp)
}

// GetEmployee handles getting an employee
// @Summary Get employee
// @Tags Organization
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} models.Employee
// @Failure 404 {object} response.ErrorResponse
// @Router /employees/{id} [get]
func (h *OrganizationHandler) GetEmployee(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	emp, err := h.org.GetEmployee(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, emp)
}

// UpdateEmployee handles patching an employee
// @Summary Update employee
// @Tags Organization
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param body body services.EmployeeInput true "Fields to change"
// @Success 200 {object} models.Employee
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /employees/{id} [put]
func (h *OrganizationHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.EmployeeInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	emp, err := h.org.UpdateEmployee(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, emp)
}

// ListDepartments handles listing departments
// @Summary List departments
// @Tags Organization
// @Produce json
// @Security BearerAuth
// @Param activeOnly query bool false "Only active departments"
// @Success 200 {array} models.Department
// @Router /departments [get]
func (h *OrganizationHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.org.ListDepartments(c.UserContext(), c.QueryBool("activeOnly", false))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"records": depts, "totalCount": len(depts)})
}

// CreateDepartment handles creating a department
// @Summary Create department
// @Tags Organization
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DepartmentInput true "Department"
// @Success 201 {object} models.Department
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /departments [post]
func (h *OrganizationHandler) CreateDepartment(c *fiber.Ctx) error {
	var req services.DepartmentInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	dept, err := h.org.CreateDepartment(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, dept)
}

// UpdateDepartment handles patching a department
// @Summary Update department
// @Tags Organization
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param body body services.DepartmentInput true "Fields to change"
// @Success 200 {object} models.Department
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /departments/{id} [put]
func (h *OrganizationHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.DepartmentInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	dept, err := h.org.UpdateDepartment(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, dept)
}

// DeactivateDepartment handles department deactivation
// @Summary Deactivate department
// @Description Departments are never removed, only deactivated
// @Tags Organization
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} models.Department
// @Failure 404 {object} response.ErrorResponse
// @Router /departments/{id} [delete]
func (h *OrganizationHandler) DeactivateDepartment(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	dept, err := h.org.DeactivateDepartment(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, dept)
}
