package handlers

import (
	"strconv"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/dates"
	"idle-resource-hub/internal/pkg/ids"
	"idle-resource-hub/internal/pkg/pagination"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// IdleResourceHandler handles idle resource endpoints
type IdleResourceHandler struct {
	resources    *services.IdleResourceService
	availability *services.AvailabilityService
	skills       *services.SkillService
	audit        *services.AuditRecorder
}

// NewIdleResourceHandler creates a new idle resource handler
func NewIdleResourceHandler(
	resources *services.IdleResourceService,
	availability *services.AvailabilityService,
	skills *services.SkillService,
	audit *services.AuditRecorder,
) *IdleResourceHandler {
	return &IdleResourceHandler{
		resources:    resources,
		availability: availability,
		skills:       skills,
		audit:        audit,
	}
}

// AvailabilityCheckRequest represents availability check request body
type AvailabilityCheckRequest struct {
	StartDate dates.Time `json:"startDate"`
	EndDate   dates.Time `json:"endDate"`
}

// resourceID reads and checks the :id path parameter
func resourceID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if !ids.IsUUID(id) {
		ve := domain.NewValidationError("Invalid path parameter")
		ve.Add("id", domain.CodeInvalidFormat, "must be a valid UUID")
		return "", ve
	}
	return id, nil
}

// listFilter reads list filters from the query string
func listFilter(c *fiber.Ctx) (services.ListFilter, error) {
	ve := domain.NewValidationError("Invalid list parameters")
	f := services.ListFilter{
		Status:       c.Query("status"),
		ResourceType: c.Query("resourceType"),
		DepartmentID: uintQuery(c, "departmentId", ve),
		EmployeeID:   uintQuery(c, "employeeId", ve),
		Skills:       csvQuery(c, "skills"),
	}

	if raw := c.Query("minExperience"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ve.Add("minExperience", domain.CodeInvalidFormat, "must be an integer")
		} else {
			f.MinExperience = &n
		}
	}
	for name, dst := range map[string]**time.Time{
		"availableFrom":  &f.AvailableFrom,
		"availableUntil": &f.AvailableUntil,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := dates.Parse(raw)
		if err != nil {
			ve.Add(name, domain.CodeInvalidFormat, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
			continue
		}
		*dst = &t
	}
	f.IncludeDeleted = c.QueryBool("includeDeleted", false)

	return f, ve.OrNil()
}

// List handles listing idle resources
// @Summary List idle resources
// @Description Filtered, sorted and paginated list with aggregations
// @Tags IdleResources
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param resourceType query string false "Resource type"
// @Param departmentId query int false "Department ID"
// @Param employeeId query int false "Employee ID"
// @Param skills query string false "Comma separated skills, all must match"
// @Param minExperience query int false "Minimum years of experience"
// @Param availableFrom query string false "Available on or after"
// @Param availableUntil query string false "Available until at least"
// @Param includeDeleted query bool false "Include soft-deleted records"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(25)
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} services.ListResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources [get]
func (h *IdleResourceHandler) List(c *fiber.Ctx) error {
	filter, err := listFilter(c)
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.resources.List(c.UserContext(), filter, pagination.GetParams(c), sortingFromQuery(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Create handles creating an idle resource
// @Summary Create idle resource
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ResourceInput true "Idle resource"
// @Success 201 {object} services.MutationResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources [post]
func (h *IdleResourceHandler) Create(c *fiber.Ctx) error {
	var req services.ResourceInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.resources.Create(c.UserContext(), &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, result)
}

// Get handles getting one idle resource
// @Summary Get idle resource
// @Tags IdleResources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param includeDeleted query bool false "Return soft-deleted records too"
// @Success 200 {object} models.IdleResourceResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id} [get]
func (h *IdleResourceHandler) Get(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	resource, err := h.resources.Get(c.UserContext(), id, c.QueryBool("includeDeleted", false))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, resource.ToResponse())
}

// Update handles versioned updates
// @Summary Update idle resource
// @Description Applies the patch only when version matches the stored version
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param body body services.ResourceInput true "Fields to change plus version"
// @Success 200 {object} services.MutationResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id} [put]
func (h *IdleResourceHandler) Update(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.ResourceInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.Version == nil {
		ve := domain.NewValidationError("Invalid idle resource data")
		ve.Add("version", domain.CodeRequired, "is required")
		return response.FromError(c, ve)
	}

	result, err := h.resources.Update(c.UserContext(), id, &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Delete handles soft and hard deletes
// @Summary Delete idle resource
// @Description Soft delete by default; hard delete requires ADMIN
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param deleteType query string false "soft or hard" default(soft)
// @Param body body services.DeleteInput false "Reason and version"
// @Success 200 {object} services.DeleteResult
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id} [delete]
func (h *IdleResourceHandler) Delete(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.DeleteInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return response.FromError(c, err)
		}
	}
	if q := c.Query("deleteType"); q != "" {
		req.DeleteType = q
	}
	if q := c.Query("reason"); q != "" && req.Reason == "" {
		req.Reason = q
	}

	result, err := h.resources.Delete(c.UserContext(), id, &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Search handles faceted search
// @Summary Search idle resources
// @Description Text search over employee name, number and skills, combined with filters
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SearchInput true "Search request"
// @Success 200 {object} services.SearchResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/search [post]
func (h *IdleResourceHandler) Search(c *fiber.Ctx) error {
	var req services.SearchInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.resources.Search(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// validateRequest accepts the payload wrapped in "data" or bare
type validateRequest struct {
	Data *services.ResourceInput `json:"data"`
}

// Validate handles standalone validation
// @Summary Validate idle resource data
// @Description Run the create rules without storing anything
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ResourceInput true "Payload, optionally wrapped in data"
// @Success 200 {object} services.ValidationReport
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/validate [post]
func (h *IdleResourceHandler) Validate(c *fiber.Ctx) error {
	var wrapped validateRequest
	if err := parseBody(c, &wrapped); err != nil {
		return response.FromError(c, err)
	}
	input := wrapped.Data
	if input == nil {
		input = &services.ResourceInput{}
		if err := parseBody(c, input); err != nil {
			return response.FromError(c, err)
		}
	}

	report, err := h.resources.ValidateData(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, report)
}

// CheckAvailability handles availability checks
// @Summary Check availability
// @Description Report window and allocation conflicts for a date range; never writes
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param body body AvailabilityCheckRequest true "Requested range"
// @Success 200 {object} services.AvailabilityResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id}/availability-check [post]
func (h *IdleResourceHandler) CheckAvailability(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req AvailabilityCheckRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.availability.CheckAvailability(c.UserContext(), id, req.StartDate.Time, req.EndDate.Time)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// ListAllocations handles listing availability windows
// @Summary List allocations
// @Tags IdleResources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Success 200 {array} models.ResourceAvailability
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id}/allocations [get]
func (h *IdleResourceHandler) ListAllocations(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	windows, err := h.availability.ListAvailability(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"records": windows, "totalCount": len(windows)})
}

// Allocate handles booking a resource
// @Summary Allocate resource
// @Description Book a date range when the availability check finds no conflicts
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param body body services.AllocationInput true "Allocation"
// @Success 201 {object} services.AllocationResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /idle-resources/{id}/allocations [post]
func (h *IdleResourceHandler) Allocate(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.AllocationInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.availability.Allocate(c.UserContext(), id, &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, result)
}

// ListSkills handles listing skills of a resource
// @Summary List skills
// @Tags IdleResources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Success 200 {array} models.ResourceSkill
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id}/skills [get]
func (h *IdleResourceHandler) ListSkills(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	skills, err := h.skills.List(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"records": skills, "totalCount": len(skills)})
}

// AddSkill handles adding a skill
// @Summary Add skill
// @Tags IdleResources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param body body services.SkillInput true "Skill"
// @Success 201 {object} models.ResourceSkill
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /idle-resources/{id}/skills [post]
func (h *IdleResourceHandler) AddSkill(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.SkillInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	skill, err := h.skills.Add(c.UserContext(), id, &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, skill)
}

// RemoveSkill handles removing a skill
// @Summary Remove skill
// @Tags IdleResources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param skillId path int true "Skill ID"
// @Success 200 {object} response.MessageResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/{id}/skills/{skillId} [delete]
func (h *IdleResourceHandler) RemoveSkill(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	skillID, err := uintParam(c, "skillId")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.skills.Remove(c.UserContext(), id, skillID, middleware.ActorFrom(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Skill removed successfully")
}

// History handles listing audit entries of a resource
// @Summary Audit history
// @Tags IdleResources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idle resource ID"
// @Param limit query int false "Max entries" default(20)
// @Success 200 {array} models.AuditEntry
// @Router /idle-resources/{id}/history [get]
func (h *IdleResourceHandler) History(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	entries, err := h.audit.History(c.UserContext(), id, c.QueryInt("limit", 20))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"records": entries, "totalCount": len(entries)})
}

// sortingFromQuery is shared by endpoints that take sortBy/sortOrder in the query
func sortingFromQuery(c *fiber.Ctx) services.Sorting {
	return services.Sorting{
		SortBy:    strings.TrimSpace(c.Query("sortBy")),
		SortOrder: strings.TrimSpace(c.Query("sortOrder")),
	}
}
