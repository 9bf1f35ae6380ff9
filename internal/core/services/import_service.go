package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"
	"idle-resource-hub/internal/pkg/ids"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportService loads idle resources from an xlsx workbook
type ImportService struct {
	bulk      *BulkService
	transfers repositories.TransferRepository
	audit     *AuditRecorder
	log       *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(bulk *BulkService, transfers repositories.TransferRepository, audit *AuditRecorder, log *zap.Logger) *ImportService {
	return &ImportService{bulk: bulk, transfers: transfers, audit: audit, log: log}
}

// ImportRowError is a problem found on one sheet row
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult summarizes an import run
type ImportResult struct {
	ImportID     string           `json:"importId"`
	FileName     string           `json:"fileName"`
	Status       string           `json:"status"`
	ValidateOnly bool             `json:"validateOnly"`
	TotalRows    int              `json:"totalRows"`
	ValidRows    int              `json:"validRows"`
	InvalidRows  int              `json:"invalidRows"`
	CreatedRows  int              `json:"createdRows"`
	Errors       []ImportRowError `json:"errors"`
	OperationID  string           `json:"operationId,omitempty"`
	AuditTrailID string           `json:"auditTrailId,omitempty"`
}

// importHeaders maps normalized header text to input fields; export headers are accepted too
var importHeaders = map[string]string{
	"employeeid":        "employeeId",
	"employee id":       "employeeId",
	"resourcetype":      "resourceType",
	"resource type":     "resourceType",
	"status":            "status",
	"availabilitystart": "availabilityStart",
	"available from":    "availabilityStart",
	"idlefromdate":      "availabilityStart",
	"availabilityend":   "availabilityEnd",
	"available until":   "availabilityEnd",
	"idletodate":        "availabilityEnd",
	"skills":            "skills",
	"experienceyears":   "experienceYears",
	"experience (y)":    "experienceYears",
	"hourlyrate":        "hourlyRate",
	"hourly rate":       "hourlyRate",
}

// sheetRow is one parsed data row and its 1-based sheet row number
type sheetRow struct {
	number int
	input  ResourceInput
}

// Import parses the first sheet, validates every row and creates all rows
// in one batch unless validateOnly is set or any row is invalid
func (s *ImportService) Import(ctx context.Context, fileName string, r io.Reader, validateOnly bool, actor Actor) (*ImportResult, error) {
	session := &models.ImportSession{
		ID:          ids.NewUUID(),
		FileName:    fileName,
		Status:      models.ImportProcessing,
		RequestedBy: actor.idPtr(),
	}
	if err := s.transfers.CreateImport(ctx, session); err != nil {
		return nil, err
	}

	result := &ImportResult{
		ImportID:     session.ID,
		FileName:     fileName,
		ValidateOnly: validateOnly,
		Errors:       []ImportRowError{},
	}

	// 1. Parse the workbook
	rows, parseErrors, err := readSheet(r)
	if err != nil {
		s.finish(ctx, session, result, models.ImportFailed)
		ve := domain.NewValidationError("Invalid import file")
		ve.Add("file", domain.CodeInvalidFormat, err.Error())
		return nil, ve
	}
	result.Errors = append(result.Errors, parseErrors...)
	badRows := rowSet(parseErrors)
	result.TotalRows = len(rows)

	var candidates []sheetRow
	for _, row := range rows {
		if !badRows[row.number] {
			candidates = append(candidates, row)
		}
	}
	if len(candidates) == 0 {
		result.InvalidRows = len(badRows)
		s.finish(ctx, session, result, models.ImportFailed)
		return result, nil
	}

	// 2. Validate the parsable rows
	items := make([]ResourceInput, len(candidates))
	for i, row := range candidates {
		items[i] = row.input
	}
	validation, err := s.bulk.BulkValidate(ctx, &BulkValidateInput{Items: items})
	if err != nil {
		s.finish(ctx, session, result, models.ImportFailed)
		return nil, err
	}
	result.OperationID = validation.OperationID
	for _, item := range validation.Results {
		row := candidates[item.Index].number
		for _, fe := range item.Errors {
			result.Errors = append(result.Errors, ImportRowError{Row: row, Field: fe.Field, Code: fe.Code, Message: fe.Message})
		}
		if item.Status == ItemInvalid {
			badRows[row] = true
		}
	}
	result.InvalidRows = len(badRows)
	result.ValidRows = result.TotalRows - result.InvalidRows

	if validateOnly {
		s.finish(ctx, session, result, models.ImportCompleted)
		return result, nil
	}
	if result.InvalidRows > 0 {
		s.finish(ctx, session, result, models.ImportFailed)
		return result, nil
	}

	// 3. Create everything at once
	created, err := s.bulk.BulkCreate(ctx, &BulkCreateInput{OperationID: validation.OperationID, Items: items}, actor)
	if err != nil {
		s.finish(ctx, session, result, models.ImportFailed)
		return nil, err
	}
	result.CreatedRows = created.Successful
	status := models.ImportCompleted
	if created.Failed > 0 {
		status = models.ImportFailed
		result.CreatedRows = 0
	}

	result.AuditTrailID = s.audit.Record(ctx, AuditImport, "", actor, map[string]interface{}{
		"importId":    session.ID,
		"fileName":    fileName,
		"createdRows": result.CreatedRows,
	})
	s.finish(ctx, session, result, status)

	s.log.Info("import completed",
		zap.String("importId", session.ID),
		zap.Int("rows", result.TotalRows),
		zap.Int("created", result.CreatedRows),
	)
	return result, nil
}

func (s *ImportService) finish(ctx context.Context, session *models.ImportSession, result *ImportResult, status string) {
	result.Status = status
	session.Status = status
	session.TotalRows = result.TotalRows
	session.ValidRows = result.ValidRows
	session.InvalidRows = result.InvalidRows
	session.CreatedRows = result.CreatedRows
	session.Errors = models.JSONMap{"rows": result.Errors}
	if err := s.transfers.UpdateImport(ctx, session); err != nil {
		s.log.Warn("failed to update import session", zap.String("importId", session.ID), zap.Error(err))
	}
}

// readSheet reads the first worksheet; the first row holds the headers
func readSheet(r io.Reader) ([]sheetRow, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := make(map[int]string)
	for i, h := range raw[0] {
		if field, ok := importHeaders[strings.ToLower(strings.TrimSpace(h))]; ok {
			columns[i] = field
		}
	}
	if !hasField(columns, "employeeId") {
		return nil, nil, fmt.Errorf("header row must contain an employeeId column")
	}

	var rows []sheetRow
	var errs []ImportRowError
	for i, cells := range raw[1:] {
		if blank(cells) {
			continue
		}
		row := sheetRow{number: i + 2}
		for col, field := range columns {
			if col >= len(cells) {
				continue
			}
			if msg := setField(&row.input, field, strings.TrimSpace(cells[col])); msg != "" {
				errs = append(errs, ImportRowError{Row: row.number, Field: field, Code: domain.CodeInvalidFormat, Message: msg})
			}
		}
		rows = append(rows, row)
	}
	return rows, errs, nil
}

// setField parses one cell into the input; it returns a message on bad input
func setField(in *ResourceInput, field, value string) string {
	if value == "" {
		return ""
	}
	switch field {
	case "employeeId":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return "must be a positive whole number"
		}
		id := uint(n)
		in.EmployeeID = &id
	case "resourceType":
		v := strings.ToLower(value)
		in.ResourceType = &v
	case "status":
		v := strings.ToLower(value)
		in.Status = &v
	case "availabilityStart", "availabilityEnd":
		t, err := dates.Parse(value)
		if err != nil {
			return "must be a date (YYYY-MM-DD)"
		}
		d := &dates.Time{Time: t}
		if field == "availabilityStart" {
			in.AvailabilityStart = d
		} else {
			in.AvailabilityEnd = d
		}
	case "skills":
		for _, skill := range strings.Split(value, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				in.Skills = append(in.Skills, skill)
			}
		}
	case "experienceYears":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "must be a whole number"
		}
		in.ExperienceYears = &n
	case "hourlyRate":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "must be a number"
		}
		in.HourlyRate = &v
	}
	return ""
}

func hasField(columns map[int]string, field string) bool {
	for _, f := range columns {
		if f == field {
			return true
		}
	}
	return false
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowSet(errs []ImportRowError) map[int]bool {
	set := make(map[int]bool, len(errs))
	for _, e := range errs {
		set[e.Row] = true
	}
	return set
}
