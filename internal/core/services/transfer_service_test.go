package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func (f *fixture) exportService(t *testing.T) *ExportService {
	t.Helper()
	return NewExportService(f.resourceRepo, f.transfers, f.audit, ExportOptions{
		Dir:     t.TempDir(),
		Secret:  "export-secret",
		LinkTTL: time.Hour,
	}, zap.NewNop())
}

func TestExport_WritesFileAndSignsLink(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	f.createResource(t, ada.ID, nil)
	exports := f.exportService(t)
	ctx := context.Background()

	result, err := exports.Export(ctx, &ExportInput{Format: domain.ExportCSV, Columns: []string{"employeeName", "skills"}}, managerActor)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if result.RecordCount != 1 {
		t.Errorf("expected 1 record, got %d", result.RecordCount)
	}
	if !strings.HasSuffix(result.FileName, ".csv") {
		t.Errorf("expected csv file name, got %s", result.FileName)
	}

	session, err := exports.Download(ctx, result.ExportID, result.DownloadToken)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	content, err := os.ReadFile(session.FilePath)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(content), "Ada Lovelace") {
		t.Errorf("expected employee name in export, got %q", content)
	}

	if _, err := exports.Download(ctx, "another-export", result.DownloadToken); !errors.Is(err, ErrDownloadTokenValid) {
		t.Errorf("expected token bound to its export, got %v", err)
	}
	if _, err := exports.Download(ctx, result.ExportID, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected unauthorized for a bad token, got %v", err)
	}
}

func TestExport_RejectsUnknownFormatAndColumns(t *testing.T) {
	f := newFixture(t)
	exports := f.exportService(t)

	_, err := exports.Export(context.Background(), &ExportInput{Format: "docx", Columns: []string{"shoeSize"}}, managerActor)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("expected format and column errors, got %v", ve.Fields)
	}
}

func TestExport_EveryFormat(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	f.createResource(t, ada.ID, nil)
	exports := f.exportService(t)

	for _, format := range domain.ExportFormats {
		result, err := exports.Export(context.Background(), &ExportInput{Format: format}, managerActor)
		if err != nil {
			t.Errorf("export %s failed: %v", format, err)
			continue
		}
		if result.FileSize == 0 {
			t.Errorf("expected non-empty %s file", format)
		}
	}
}

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t)
	exports := f.exportService(t)
	ctx := context.Background()

	result, err := exports.Export(ctx, &ExportInput{Format: domain.ExportJSON}, managerActor)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	exports.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	purged, err := exports.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged export, got %d", purged)
	}

	var session models.ExportSession
	if err := f.db.First(&session, "id = ?", result.ExportID).Error; err != nil {
		t.Fatalf("failed to load export: %v", err)
	}
	if session.Status != models.ExportExpired {
		t.Errorf("expected status %s, got %s", models.ExportExpired, session.Status)
	}
	if _, err := os.Stat(session.FilePath); !os.IsNotExist(err) {
		t.Errorf("expected export file removed, got %v", err)
	}
}

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("bad cell: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf
}

func TestImport_ValidateOnlyThenCreate(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	alan := f.addEmployee(t, "E002", "Alan", "Turing")
	imports := NewImportService(f.bulk, f.transfers, f.audit, zap.NewNop())
	ctx := context.Background()

	rows := [][]interface{}{
		{"employeeId", "resourceType", "availabilityStart", "availabilityEnd", "skills", "experienceYears"},
		{ada.ID, "developer", "2025-03-01", "2025-06-30", "Go, SQL", 5},
		{alan.ID, "analyst", "2025-04-01", "2025-05-31", "Excel", 3},
	}

	checked, err := imports.Import(ctx, "people.xlsx", workbook(t, rows), true, managerActor)
	if err != nil {
		t.Fatalf("validate import failed: %v", err)
	}
	if checked.ValidRows != 2 || checked.CreatedRows != 0 {
		t.Errorf("expected 2 valid and 0 created, got %d and %d", checked.ValidRows, checked.CreatedRows)
	}

	created, err := imports.Import(ctx, "people.xlsx", workbook(t, rows), false, managerActor)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if created.Status != models.ImportCompleted || created.CreatedRows != 2 {
		t.Errorf("expected completed with 2 rows, got %s with %d", created.Status, created.CreatedRows)
	}

	var count int64
	f.db.Table("idle_resources").Count(&count)
	if count != 2 {
		t.Errorf("expected 2 stored resources, got %d", count)
	}
}

func TestImport_InvalidRowBlocksBatch(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	imports := NewImportService(f.bulk, f.transfers, f.audit, zap.NewNop())

	rows := [][]interface{}{
		{"Employee ID", "Experience (y)"},
		{ada.ID, 4},
		{"abc", 2},
	}

	result, err := imports.Import(context.Background(), "people.xlsx", workbook(t, rows), false, managerActor)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Status != models.ImportFailed {
		t.Errorf("expected failed import, got %s", result.Status)
	}
	if result.InvalidRows != 1 || result.Errors[0].Row != 3 {
		t.Errorf("expected sheet row 3 reported invalid, got %+v", result.Errors)
	}

	var count int64
	f.db.Table("idle_resources").Count(&count)
	if count != 0 {
		t.Errorf("expected nothing stored, got %d", count)
	}
}

func TestImport_RequiresEmployeeColumn(t *testing.T) {
	f := newFixture(t)
	imports := NewImportService(f.bulk, f.transfers, f.audit, zap.NewNop())

	_, err := imports.Import(context.Background(), "people.xlsx", workbook(t, [][]interface{}{{"skills"}, {"Go"}}), true, managerActor)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields[0].Field != "file" {
		t.Errorf("expected file error, got %v", ve.Fields)
	}
}
