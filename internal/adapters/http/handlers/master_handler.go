package handlers

import (
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MasterHandler handles master data endpoints
type MasterHandler struct {
	masterData *services.MasterDataService
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(masterData *services.MasterDataService) *MasterHandler {
	return &MasterHandler{masterData: masterData}
}

// GetMasterData handles lookup lists
// @Summary Get master data
// @Description Lookup lists for clients; all lists when dataTypes is empty
// @Tags MasterData
// @Produce json
// @Security BearerAuth
// @Param dataTypes query string false "Comma separated: departments,resourceTypes,statuses,skillCategories,proficiencyLevels,availabilityTypes,sortFields,exportFormats"
// @Success 200 {object} map[string][]services.LookupItem
// @Router /master-data [get]
func (h *MasterHandler) GetMasterData(c *fiber.Ctx) error {
	data, err := h.masterData.Get(c.UserContext(), csvQuery(c, "dataTypes"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"data": data})
}
