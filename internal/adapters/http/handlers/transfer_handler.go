package handlers

import (
	"path/filepath"
	"strings"

	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxImportSize caps uploaded workbooks
const maxImportSize = 10 << 20

// TransferHandler handles export and import endpoints
type TransferHandler struct {
	exports *services.ExportService
	imports *services.ImportService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(exports *services.ExportService, imports *services.ImportService) *TransferHandler {
	return &TransferHandler{exports: exports, imports: imports}
}

// Export handles export requests
// @Summary Export idle resources
// @Description Writes the filtered records as csv, excel, json or pdf and returns a signed download link
// @Tags Transfer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ExportInput true "Format, filters and columns"
// @Success 200 {object} services.ExportResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/export [post]
func (h *TransferHandler) Export(c *fiber.Ctx) error {
	var req services.ExportInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.exports.Export(c.UserContext(), &req, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Download handles signed export downloads
// @Summary Download export
// @Description Serves an export file; the signed token replaces the session
// @Tags Transfer
// @Produce octet-stream
// @Param exportId path string true "Export ID"
// @Param token query string true "Download token"
// @Success 200 {file} file
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /idle-resources/exports/{exportId}/download [get]
func (h *TransferHandler) Download(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return response.Unauthorized(c, "Download token required")
	}

	export, err := h.exports.Download(c.UserContext(), c.Params("exportId"), token)
	if err != nil {
		return response.FromError(c, err)
	}

	c.Set(fiber.HeaderContentType, services.ContentType(export.Format))
	return c.Download(export.FilePath, export.FileName)
}

// Import handles workbook uploads
// @Summary Import idle resources
// @Description Reads the first sheet of an xlsx file; creates all rows in one batch unless validateOnly
// @Tags Transfer
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx workbook"
// @Param validateOnly formData bool false "Only validate"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} response.ErrorResponse
// @Router /idle-resources/import [post]
func (h *TransferHandler) Import(c *fiber.Ctx) error {
	ve := domain.NewValidationError("Invalid import request")

	fh, err := c.FormFile("file")
	if err != nil {
		ve.Add("file", domain.CodeRequired, "is required")
		return response.FromError(c, ve)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		ve.Add("file", domain.CodeInvalidFormat, "must be an .xlsx workbook")
		return response.FromError(c, ve)
	}
	if fh.Size > maxImportSize {
		ve.Add("file", domain.CodeOutOfRange, "must be at most 10 MB")
		return response.FromError(c, ve)
	}

	f, err := fh.Open()
	if err != nil {
		return response.FromError(c, err)
	}
	defer f.Close()

	validateOnly := strings.EqualFold(c.FormValue("validateOnly"), "true") || c.QueryBool("validateOnly", false)

	result, err := h.imports.Import(c.UserContext(), filepath.Base(fh.Filename), f, validateOnly, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}
