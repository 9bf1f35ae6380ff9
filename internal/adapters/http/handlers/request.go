package handlers

import (
	"strconv"
	"strings"

	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the JSON body and runs struct validation
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		ve := domain.NewValidationError("Invalid request body")
		ve.Add("body", domain.CodeInvalidFormat, err.Error())
		return ve
	}
	return validation.Struct(dst)
}

// uintParam reads a positive integer path parameter
func uintParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		ve := domain.NewValidationError("Invalid path parameter")
		ve.Add(name, domain.CodeInvalidFormat, "must be a positive integer")
		return 0, ve
	}
	return uint(id), nil
}

// uintQuery reads an optional positive integer query parameter
func uintQuery(c *fiber.Ctx, name string, ve *domain.ValidationError) *uint {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ve.Add(name, domain.CodeInvalidFormat, "must be a positive integer")
		return nil
	}
	id := uint(v)
	return &id
}

// csvQuery splits a comma separated query parameter
func csvQuery(c *fiber.Ctx, name string) []string {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
