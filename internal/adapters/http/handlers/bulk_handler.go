package handlers

import (
	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BulkHandler handles bulk idle resource endpoints
type BulkHandler struct {
	bulk *services.BulkService
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulk *services.BulkService) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

// Create handles bulk create
// @Summary Bulk create
// @Description Validates every item first; inserts all items or none
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkCreateInput true "Items"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/bulk [post]
func (h *BulkHandler) Create(c *fiber.Ctx) error {
	var req services.BulkCreateInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.bulk.BulkCreate(c.UserContext(), &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Update handles bulk update
// @Summary Bulk update
// @Description Applies each versioned patch independently
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkUpdateInput true "Patches"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/bulk [patch]
func (h *BulkHandler) Update(c *fiber.Ctx) error {
	var req services.BulkUpdateInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.bulk.BulkUpdate(c.UserContext(), &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// UpdateStatus handles bulk status change
// @Summary Bulk status update
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkStatusInput true "IDs and status"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/bulk/status [post]
func (h *BulkHandler) UpdateStatus(c *fiber.Ctx) error {
	var req services.BulkStatusInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.bulk.BulkStatusUpdate(c.UserContext(), &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Delete handles bulk delete
// @Summary Bulk delete
// @Description Soft delete by default; hard delete requires ADMIN
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkDeleteInput true "IDs"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /idle-resources/bulk/delete [post]
func (h *BulkHandler) Delete(c *fiber.Ctx) error {
	var req services.BulkDeleteInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.bulk.BulkDelete(c.UserContext(), &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Validate handles bulk validation
// @Summary Bulk validate
// @Description Validates each item and flags repeated employees; stores nothing
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkValidateInput true "Items"
// @Success 200 {object} services.BulkResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/bulk/validate [post]
func (h *BulkHandler) Validate(c *fiber.Ctx) error {
	var req services.BulkValidateInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.bulk.BulkValidate(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}
