package handlers

import (
	"errors"

	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/pagination"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(25)
// @Success 200 {object} services.UserListResult
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// CreateUser handles creating a user (Admin only)
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, user)
}

// GetUser handles getting a user by ID (Admin only)
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, user)
}

// UpdateUser handles updating a user (Admin only)
// @Summary Update user
// @Description Update email, role, active flag or department (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserByAdminInput true "Update data"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UpdateUserByAdminInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	adminID, _ := c.Locals(middleware.LocalUserID).(uint)

	user, err := h.userService.UpdateUserByAdmin(c.UserContext(), id, adminID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCannotChangeOwnRole) {
			return response.BadRequest(c, "Cannot change your own role")
		}
		return response.FromError(c, err)
	}
	return response.OK(c, user)
}
