package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/ids"
	"idle-resource-hub/internal/pkg/jwt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Export errors
var (
	ErrExportNotFound     = fmt.Errorf("export %w", domain.ErrNotFound)
	ErrExportExpired      = fmt.Errorf("export has expired: %w", domain.ErrNotFound)
	ErrDownloadTokenValid = fmt.Errorf("invalid or expired download token: %w", domain.ErrUnauthorized)
)

// ExportOptions configures where files go and how long links live
type ExportOptions struct {
	Dir        string
	Secret     string
	LinkTTL    time.Duration
	MaxRecords int
}

// ExportService writes filtered idle resources to downloadable files
type ExportService struct {
	resources repositories.IdleResourceRepository
	transfers repositories.TransferRepository
	audit     *AuditRecorder
	opts      ExportOptions
	log       *zap.Logger
	now       func() time.Time
}

// NewExportService creates a new export service
func NewExportService(
	resources repositories.IdleResourceRepository,
	transfers repositories.TransferRepository,
	audit *AuditRecorder,
	opts ExportOptions,
	log *zap.Logger,
) *ExportService {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = 10000
	}
	return &ExportService{
		resources: resources,
		transfers: transfers,
		audit:     audit,
		opts:      opts,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ExportInput selects format, rows and columns
type ExportInput struct {
	Format  string     `json:"format" validate:"required,oneof=csv excel json pdf"`
	Filters ListFilter `json:"filters"`
	Columns []string   `json:"columns"`
	Sorting
}

// ExportResult describes a generated file
type ExportResult struct {
	ExportID      string    `json:"exportId"`
	Format        string    `json:"format"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	RecordCount   int       `json:"recordCount"`
	ExpiresAt     time.Time `json:"expiresAt"`
	DownloadToken string    `json:"downloadToken"`
	FileURL       string    `json:"fileUrl"`
	AuditTrailID  string    `json:"auditTrailId"`
}

var fileExtensions = map[string]string{
	domain.ExportCSV:   "csv",
	domain.ExportExcel: "xlsx",
	domain.ExportJSON:  "json",
	domain.ExportPDF:   "pdf",
}

// ContentType returns the MIME type served for an export format
func ContentType(format string) string {
	switch format {
	case domain.ExportCSV:
		return "text/csv"
	case domain.ExportExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case domain.ExportJSON:
		return "application/json"
	case domain.ExportPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func (s *ExportService) columns(in *ExportInput, ve *domain.ValidationError) []exportColumn {
	keys := in.Columns
	if len(keys) == 0 {
		keys = exportKeys()
		if in.Format == domain.ExportPDF {
			keys = defaultPDFColumns
		}
	}
	cols, unknown := columnsByKey(keys)
	if len(unknown) > 0 {
		ve.Add("columns", domain.CodeInvalidChoice,
			fmt.Sprintf("unknown column(s) %s; must be among: %s", strings.Join(unknown, ", "), strings.Join(exportKeys(), ", ")))
	}
	return cols
}

// Export writes the filtered records to a file and returns a signed download link
func (s *ExportService) Export(ctx context.Context, in *ExportInput, actor Actor) (*ExportResult, error) {
	// 1. Validate request
	ve := domain.NewValidationError("Invalid export request")
	ext, ok := fileExtensions[in.Format]
	if !ok {
		ve.Add("format", domain.CodeInvalidChoice, "must be one of: "+strings.Join(domain.ExportFormats, ", "))
	}
	cols := s.columns(in, ve)
	if ve.HasErrors() {
		return nil, ve
	}

	filters := in.Filters
	filters.IncludeDeleted = false
	q, err := buildQuery(filters, in.Sorting)
	if err != nil {
		return nil, err
	}

	total, err := s.resources.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	if total > int64(s.opts.MaxRecords) {
		ve.Add("filters", domain.CodeOutOfRange,
			fmt.Sprintf("export matches %d records; narrow the filters to at most %d", total, s.opts.MaxRecords))
		return nil, ve
	}

	// 2. Record the session
	now := s.now()
	session := &models.ExportSession{
		ID:          ids.NewUUID(),
		Format:      in.Format,
		Status:      models.ExportPending,
		RequestedBy: actor.idPtr(),
		Filters: models.JSONMap{
			"filters": filters,
			"columns": in.Columns,
		},
	}
	session.FileName = fmt.Sprintf("idle_resources_%s.%s", now.Format("20060102_150405"), ext)
	session.FilePath = filepath.Join(s.opts.Dir, session.ID+"."+ext)
	if err := s.transfers.CreateExport(ctx, session); err != nil {
		return nil, err
	}

	// 3. Write the file
	session.Status = models.ExportProcessing
	if err := s.transfers.UpdateExport(ctx, session); err != nil {
		return nil, err
	}

	records, err := s.resources.List(ctx, q.Page(0, s.opts.MaxRecords))
	if err == nil {
		err = s.write(session, cols, toResponses(records))
	}
	if err != nil {
		s.fail(ctx, session, err)
		return nil, err
	}

	info, err := os.Stat(session.FilePath)
	if err != nil {
		s.fail(ctx, session, err)
		return nil, err
	}

	// 4. Sign the link and complete the session
	token, expiresAt, err := jwt.GenerateDownloadToken(session.ID, actor.UserID, s.opts.Secret, s.opts.LinkTTL)
	if err != nil {
		s.fail(ctx, session, err)
		return nil, err
	}

	completed := s.now()
	expiresAt = expiresAt.UTC()
	session.Status = models.ExportCompleted
	session.RecordCount = len(records)
	session.FileSize = info.Size()
	session.CompletedAt = &completed
	session.ExpiresAt = &expiresAt
	if err := s.transfers.UpdateExport(ctx, session); err != nil {
		return nil, err
	}

	auditID := s.audit.Record(ctx, AuditExport, "", actor, map[string]interface{}{
		"exportId":    session.ID,
		"format":      session.Format,
		"recordCount": session.RecordCount,
	})

	s.log.Info("export completed",
		zap.String("exportId", session.ID),
		zap.String("format", session.Format),
		zap.Int("records", session.RecordCount),
	)

	return &ExportResult{
		ExportID:      session.ID,
		Format:        session.Format,
		FileName:      session.FileName,
		FileSize:      session.FileSize,
		RecordCount:   session.RecordCount,
		ExpiresAt:     expiresAt,
		DownloadToken: token,
		FileURL:       fmt.Sprintf("/api/v1/idle-resources/exports/%s/download?token=%s", session.ID, token),
		AuditTrailID:  auditID,
	}, nil
}

func (s *ExportService) write(session *models.ExportSession, cols []exportColumn, records []*models.IdleResourceResponse) error {
	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return err
	}
	switch session.Format {
	case domain.ExportCSV:
		return writeCSV(session.FilePath, cols, records)
	case domain.ExportExcel:
		return writeExcel(session.FilePath, cols, records)
	case domain.ExportJSON:
		return writeJSON(session.FilePath, cols, records)
	case domain.ExportPDF:
		return writePDF(session.FilePath, cols, records)
	default:
		return fmt.Errorf("unsupported export format %q", session.Format)
	}
}

func (s *ExportService) fail(ctx context.Context, session *models.ExportSession, cause error) {
	session.Status = models.ExportFailed
	session.ErrorMessage = cause.Error()
	if err := s.transfers.UpdateExport(ctx, session); err != nil {
		s.log.Warn("failed to mark export as failed", zap.String("exportId", session.ID), zap.Error(err))
	}
	os.Remove(session.FilePath)
	s.log.Error("export failed", zap.String("exportId", session.ID), zap.Error(cause))
}

// Download checks the signed token and returns the export ready to serve
func (s *ExportService) Download(ctx context.Context, exportID, token string) (*models.ExportSession, error) {
	claims, err := jwt.ValidateDownloadToken(token, s.opts.Secret)
	if err != nil || claims.ExportID != exportID {
		return nil, ErrDownloadTokenValid
	}

	session, err := s.transfers.GetExport(ctx, exportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}

	switch session.Status {
	case models.ExportCompleted:
	case models.ExportExpired:
		return nil, ErrExportExpired
	default:
		return nil, ErrExportNotFound
	}
	if session.ExpiresAt != nil && s.now().After(*session.ExpiresAt) {
		return nil, ErrExportExpired
	}
	if _, err := os.Stat(session.FilePath); err != nil {
		return nil, ErrExportNotFound
	}
	return session, nil
}

// PurgeExpired removes files of completed exports whose link has expired
func (s *ExportService) PurgeExpired(ctx context.Context) (int, error) {
	expired, err := s.transfers.ListExpiredExports(ctx, s.now())
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, session := range expired {
		if err := os.Remove(session.FilePath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove export file", zap.String("exportId", session.ID), zap.Error(err))
			continue
		}
		session.Status = models.ExportExpired
		if err := s.transfers.UpdateExport(ctx, session); err != nil {
			return purged, err
		}
		purged++
	}

	if purged > 0 {
		s.log.Info("expired exports purged", zap.Int("count", purged))
	}
	return purged, nil
}
