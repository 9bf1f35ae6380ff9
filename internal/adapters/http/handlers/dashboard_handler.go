package handlers

import (
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetOverview returns pool statistics
// @Summary Idle resource dashboard
// @Description Pool overview with status counts, allocations ending soon and per-department totals (Manager or Admin)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.DashboardData
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetOverview(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetOverview(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, data)
}

// GetDepartmentDashboard returns statistics of one department
// @Summary Department dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} services.DashboardData
// @Failure 404 {object} response.ErrorResponse
// @Router /dashboard/departments/{id} [get]
func (h *DashboardHandler) GetDepartmentDashboard(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	data, err := h.dashboardService.GetDepartmentDashboard(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, data)
}
