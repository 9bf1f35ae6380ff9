package response

import (
	"errors"

	"idle-resource-hub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse is a bare acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// OK sends a 200 response with the payload as body
func OK(c *fiber.Ctx, payload interface{}) error {
	return c.Status(fiber.StatusOK).JSON(payload)
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, payload interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(payload)
}

// Message sends a 200 response with a message only
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(MessageResponse{Message: message})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, code, message string, details interface{}) error {
	return c.Status(statusCode).JSON(ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, domain.CodeValidation, message, nil)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, domain.CodeAuthentication, message, nil)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, domain.CodeAuthorization, message, nil)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, domain.CodeNotFound, message, nil)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusConflict, domain.CodeConflict, message, details)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, domain.CodeInternal, message, nil)
}

// FromError maps a service error onto the error envelope
func FromError(c *fiber.Ctx, err error) error {
	var validationErr *domain.ValidationError
	var conflictErr *domain.VersionConflictError
	var allocationErr *domain.AllocationConflictError

	switch {
	case errors.As(err, &validationErr):
		return Error(c, fiber.StatusBadRequest, domain.CodeValidation, validationErr.Message, validationErr.Fields)
	case errors.As(err, &conflictErr):
		return Error(c, fiber.StatusBadRequest, domain.CodeVersionConflict, "Version conflict", fiber.Map{
			"resourceId":      conflictErr.ResourceID,
			"currentVersion":  conflictErr.CurrentVersion,
			"providedVersion": conflictErr.ProvidedVersion,
		})
	case errors.As(err, &allocationErr):
		return Conflict(c, allocationErr.Error(), fiber.Map{
			"reason":    allocationErr.Reason,
			"conflicts": allocationErr.Conflicts,
		})
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateEntry):
		return Conflict(c, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		return Unauthorized(c, "Invalid or expired session")
	case errors.Is(err, domain.ErrForbidden):
		return Forbidden(c, "You don't have permission to perform this action")
	default:
		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return InternalServerError(c, "Internal server error")
	}
}
