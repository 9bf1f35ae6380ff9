package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/ids"
	"idle-resource-hub/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Idle resource errors
var (
	ErrResourceNotFound    = fmt.Errorf("idle resource %w", domain.ErrNotFound)
	ErrHardDeleteForbidden = fmt.Errorf("hard delete requires ADMIN role: %w", domain.ErrForbidden)
)

// IdleResourceService handles idle resource business logic
type IdleResourceService struct {
	resources repositories.IdleResourceRepository
	employees repositories.EmployeeRepository
	tx        repositories.Transactor
	audit     *AuditRecorder
	log       *zap.Logger
	now       func() time.Time
}

// NewIdleResourceService creates a new idle resource service
func NewIdleResourceService(
	resources repositories.IdleResourceRepository,
	employees repositories.EmployeeRepository,
	tx repositories.Transactor,
	audit *AuditRecorder,
	log *zap.Logger,
) *IdleResourceService {
	return &IdleResourceService{
		resources: resources,
		employees: employees,
		tx:        tx,
		audit:     audit,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// MutationResult is the envelope returned by create and update
type MutationResult struct {
	*models.IdleResourceResponse
	AuditTrailID        string                 `json:"auditTrailId"`
	ValidationWarnings  []ValidationMessage    `json:"validationWarnings"`
	BusinessRuleResults map[string]interface{} `json:"businessRuleResults"`
	ChangedFields       []string               `json:"changedFields,omitempty"`
}

// ============================================================
// Create
// ============================================================

// prepared is a validated, not yet stored, new resource
type prepared struct {
	record   *models.IdleResource
	warnings []ValidationMessage
}

// prepareCreate applies defaults and runs every create rule without writing
func (s *IdleResourceService) prepareCreate(ctx context.Context, in *ResourceInput, actor Actor) (*prepared, error) {
	ve := domain.NewValidationError("Invalid idle resource data")

	record := &models.IdleResource{
		ResourceType: string(domain.ResourceDeveloper),
		Status:       string(domain.StatusAvailable),
		Skills:       models.StringList{},
		Version:      1,
	}
	if in.EmployeeID != nil {
		record.EmployeeID = *in.EmployeeID
	}
	applyInput(record, in)
	validateRecord(record, in.names(), ve)

	if _, err := checkEmployee(ctx, s.employees, record.EmployeeID, ve); err != nil {
		return nil, err
	}
	if ve.HasErrors() {
		return nil, ve
	}

	var warnings []ValidationMessage
	if isActiveStatus(record.Status) {
		exists, err := s.resources.HasActiveForEmployee(ctx, record.EmployeeID, "")
		if err != nil {
			return nil, err
		}
		if exists {
			warnings = append(warnings, activeRecordWarning(record.EmployeeID))
		}
	}

	record.ID = ids.NewUUID()
	record.CreatedBy = actor.idPtr()
	record.UpdatedBy = actor.idPtr()

	return &prepared{record: record, warnings: warnings}, nil
}

// Create creates a new idle resource
func (s *IdleResourceService) Create(ctx context.Context, in *ResourceInput, actor Actor) (*MutationResult, error) {
	p, err := s.prepareCreate(ctx, in, actor)
	if err != nil {
		return nil, err
	}

	if err := s.resources.Create(ctx, p.record); err != nil {
		return nil, err
	}

	auditID := s.audit.Record(ctx, AuditCreate, p.record.ID, actor, map[string]interface{}{
		"employeeId":   p.record.EmployeeID,
		"resourceType": p.record.ResourceType,
		"status":       p.record.Status,
	})

	created, err := s.resources.GetByID(ctx, p.record.ID, false)
	if err != nil {
		return nil, err
	}

	s.log.Info("idle resource created",
		zap.String("id", created.ID),
		zap.Uint("employeeId", created.EmployeeID),
	)

	return &MutationResult{
		IdleResourceResponse: created.ToResponse(),
		AuditTrailID:         auditID,
		ValidationWarnings:   nonNilMessages(p.warnings),
		BusinessRuleResults: map[string]interface{}{
			"appliedRules": []string{"employee_validation", "date_validation", "single_active_record"},
		},
	}, nil
}

// ============================================================
// Read
// ============================================================

// Get gets an idle resource by ID
func (s *IdleResourceService) Get(ctx context.Context, id string, includeDeleted bool) (*models.IdleResource, error) {
	resource, err := s.resources.GetByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, notFound(err, ErrResourceNotFound)
	}
	return resource, nil
}

// ============================================================
// Update
// ============================================================

// Update applies a patch using compare-and-swap on the version
func (s *IdleResourceService) Update(ctx context.Context, id string, in *ResourceInput, actor Actor) (*MutationResult, error) {
	updated, changed, err := s.update(ctx, id, in, actor)
	if err != nil {
		return nil, err
	}

	var warnings []ValidationMessage
	if containsString(changed, "status") && isActiveStatus(updated.Status) {
		exists, err := s.resources.HasActiveForEmployee(ctx, updated.EmployeeID, updated.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			warnings = append(warnings, activeRecordWarning(updated.EmployeeID))
		}
	}

	auditID := s.audit.Record(ctx, AuditUpdate, id, actor, map[string]interface{}{
		"changedFields": changed,
		"version":       updated.Version,
	})

	return &MutationResult{
		IdleResourceResponse: updated.ToResponse(),
		AuditTrailID:         auditID,
		ValidationWarnings:   nonNilMessages(warnings),
		BusinessRuleResults: map[string]interface{}{
			"appliedRules": []string{"optimistic_locking", "date_validation"},
		},
		ChangedFields: nonNilStrings(changed),
	}, nil
}

// update runs the versioned write without auditing
func (s *IdleResourceService) update(ctx context.Context, id string, in *ResourceInput, actor Actor) (*models.IdleResource, []string, error) {
	var changed []string

	err := s.tx.WithinTransaction(ctx, func(tx repositories.TxRepositories) error {
		current, err := tx.Resources.GetByID(ctx, id, false)
		if err != nil {
			return notFound(err, ErrResourceNotFound)
		}

		if in.Version != nil && *in.Version != current.Version {
			return &domain.VersionConflictError{
				ResourceID:      id,
				CurrentVersion:  current.Version,
				ProvidedVersion: *in.Version,
			}
		}

		merged := *current
		changed = applyInput(&merged, in)

		ve := domain.NewValidationError("Invalid idle resource data")
		validateRecord(&merged, in.names(), ve)
		if ve.HasErrors() {
			return ve
		}

		fields := columnsFor(&merged, changed)
		fields["updated_by"] = actor.idPtr()

		rows, err := tx.Resources.UpdateWithVersion(ctx, id, fields, current.Version)
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.conflictAfterRace(ctx, tx.Resources, id, current.Version)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.resources.GetByID(ctx, id, false)
	if err != nil {
		return nil, nil, notFound(err, ErrResourceNotFound)
	}
	return updated, changed, nil
}

// conflictAfterRace re-reads the version after a zero-row compare-and-swap
func (s *IdleResourceService) conflictAfterRace(ctx context.Context, repo repositories.IdleResourceRepository, id string, provided int) error {
	current, err := repo.CurrentVersion(ctx, id)
	if err != nil {
		return notFound(err, ErrResourceNotFound)
	}
	return &domain.VersionConflictError{
		ResourceID:      id,
		CurrentVersion:  current,
		ProvidedVersion: provided,
	}
}

// ============================================================
// Delete
// ============================================================

// DeleteInput selects the delete path
type DeleteInput struct {
	DeleteType string `json:"deleteType"`
	Reason     string `json:"reason"`
	Version    *int   `json:"version"`
}

// DeleteResult describes the outcome of a delete
type DeleteResult struct {
	ID           string     `json:"id"`
	Deleted      bool       `json:"deleted"`
	DeletionType string     `json:"deletionType"`
	State        string     `json:"state"`
	Version      int        `json:"version,omitempty"`
	DeletedAt    *time.Time `json:"deletedAt"`
	Reason       string     `json:"reason,omitempty"`
	AuditTrailID string     `json:"auditTrailId"`
}

func parseDeleteType(raw string) (domain.DeleteType, error) {
	switch domain.DeleteType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", domain.DeleteSoft:
		return domain.DeleteSoft, nil
	case domain.DeleteHard:
		return domain.DeleteHard, nil
	default:
		ve := domain.NewValidationError("Invalid delete request")
		ve.Add("deleteType", domain.CodeInvalidChoice, "must be one of: soft, hard")
		return "", ve
	}
}

// Delete soft- or hard-deletes an idle resource
func (s *IdleResourceService) Delete(ctx context.Context, id string, in *DeleteInput, actor Actor) (*DeleteResult, error) {
	result, err := s.delete(ctx, id, in, actor)
	if err != nil {
		return nil, err
	}

	operation := AuditSoftDelete
	if result.DeletionType == string(domain.DeleteHard) {
		operation = AuditHardDelete
	}
	result.AuditTrailID = s.audit.Record(ctx, operation, id, actor, map[string]interface{}{
		"reason": in.Reason,
		"state":  result.State,
	})
	return result, nil
}

func (s *IdleResourceService) delete(ctx context.Context, id string, in *DeleteInput, actor Actor) (*DeleteResult, error) {
	deleteType, err := parseDeleteType(in.DeleteType)
	if err != nil {
		return nil, err
	}
	if deleteType == domain.DeleteHard && !actor.IsAdmin() {
		return nil, ErrHardDeleteForbidden
	}

	now := s.now()
	result := &DeleteResult{
		ID:           id,
		Deleted:      true,
		DeletionType: string(deleteType),
		DeletedAt:    &now,
		Reason:       in.Reason,
	}

	err = s.tx.WithinTransaction(ctx, func(tx repositories.TxRepositories) error {
		current, err := tx.Resources.GetByID(ctx, id, deleteType == domain.DeleteHard)
		if err != nil {
			return notFound(err, ErrResourceNotFound)
		}
		if in.Version != nil && *in.Version != current.Version {
			return &domain.VersionConflictError{
				ResourceID:      id,
				CurrentVersion:  current.Version,
				ProvidedVersion: *in.Version,
			}
		}

		if deleteType == domain.DeleteHard {
			rows, err := tx.Resources.HardDelete(ctx, id)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrResourceNotFound
			}
			result.State = string(domain.StatePurged)
			return nil
		}

		rows, err := tx.Resources.UpdateWithVersion(ctx, id, map[string]interface{}{
			"is_deleted": true,
			"status":     string(domain.StatusDeleted),
			"deleted_at": now,
			"deleted_by": actor.idPtr(),
			"updated_by": actor.idPtr(),
		}, current.Version)
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.conflictAfterRace(ctx, tx.Resources, id, current.Version)
		}
		result.State = string(domain.StateSoftDeleted)
		result.Version = current.Version + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ============================================================
// List
// ============================================================

// ListFilter holds the AND-combined list filters
type ListFilter struct {
	Status         string     `json:"status"`
	ResourceType   string     `json:"resourceType"`
	DepartmentID   *uint      `json:"departmentId"`
	EmployeeID     *uint      `json:"employeeId"`
	Skills         []string   `json:"skills"`
	MinExperience  *int       `json:"minExperience"`
	AvailableFrom  *time.Time `json:"availableFrom"`
	AvailableUntil *time.Time `json:"availableUntil"`
	IncludeDeleted bool       `json:"includeDeleted"`
}

// Sorting selects the sort column and direction
type Sorting struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// ListResult is the list envelope
type ListResult struct {
	Records       []*models.IdleResourceResponse `json:"records"`
	TotalCount    int64                          `json:"totalCount"`
	PageInfo      pagination.PageInfo            `json:"pageInfo"`
	Aggregations  map[string]map[string]int64    `json:"aggregations"`
	ExecutionTime int64                          `json:"executionTime"`
}

// buildQuery turns a filter into a query builder, collecting filter errors
func buildQuery(f ListFilter, sorting Sorting) (*repositories.ResourceQuery, error) {
	ve := domain.NewValidationError("Invalid list parameters")
	q := repositories.NewResourceQuery().IncludeDeleted(f.IncludeDeleted)

	if f.Status != "" {
		if !domain.ResourceStatus(f.Status).Valid() {
			ve.Add("status", domain.CodeInvalidChoice, "must be one of: available, allocated, unavailable, deleted")
		}
		q.Status(f.Status)
	}
	if f.ResourceType != "" {
		if !domain.ResourceType(f.ResourceType).Valid() {
			ve.Add("resourceType", domain.CodeInvalidChoice,
				fmt.Sprintf("must be one of: %s", joinTypes(domain.ResourceTypes)))
		}
		q.ResourceType(f.ResourceType)
	}
	if f.DepartmentID != nil {
		q.Department(*f.DepartmentID)
	}
	if f.EmployeeID != nil {
		q.Employee(*f.EmployeeID)
	}
	if len(f.Skills) > 0 {
		q.Skills(f.Skills...)
	}
	if f.MinExperience != nil {
		if *f.MinExperience < 0 {
			ve.Add("minExperience", domain.CodeOutOfRange, "must be at least 0")
		}
		q.MinExperience(*f.MinExperience)
	}
	if f.AvailableFrom != nil {
		q.AvailableFrom(*f.AvailableFrom)
	}
	if f.AvailableUntil != nil {
		q.AvailableUntil(*f.AvailableUntil)
	}

	sortBy := sorting.SortBy
	if sortBy == "" && sorting.SortOrder != "" {
		sortBy = "createdAt"
	}
	if sorting.SortOrder != "" && !strings.EqualFold(sorting.SortOrder, "asc") && !strings.EqualFold(sorting.SortOrder, "desc") {
		ve.Add("sortOrder", domain.CodeInvalidChoice, "must be one of: asc, desc")
	}
	if err := q.OrderBy(sortBy, strings.EqualFold(sorting.SortOrder, "desc")); err != nil {
		if !errors.Is(err, repositories.ErrUnknownSortField) {
			return nil, err
		}
		ve.Add("sortBy", domain.CodeInvalidChoice, fmt.Sprintf("must be one of: %s", strings.Join(sortFieldNames(), ", ")))
	}

	if ve.HasErrors() {
		return nil, ve
	}
	return q, nil
}

// List returns a filtered, sorted page with totals and aggregations
func (s *IdleResourceService) List(ctx context.Context, filter ListFilter, params pagination.Params, sorting Sorting) (*ListResult, error) {
	started := time.Now()

	q, err := buildQuery(filter, sorting)
	if err != nil {
		return nil, err
	}

	total, err := s.resources.Count(ctx, q)
	if err != nil {
		return nil, err
	}

	records, err := s.resources.List(ctx, q.Page(params.Offset, params.PageSize))
	if err != nil {
		return nil, err
	}

	aggregations, err := s.aggregate(ctx, q)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Records:       toResponses(records),
		TotalCount:    total,
		PageInfo:      pagination.GetPageInfo(params, total),
		Aggregations:  aggregations,
		ExecutionTime: time.Since(started).Milliseconds(),
	}, nil
}

// aggregate counts the filtered set by status, resource type and department
func (s *IdleResourceService) aggregate(ctx context.Context, q *repositories.ResourceQuery) (map[string]map[string]int64, error) {
	dims := map[string]string{
		"byStatus":       repositories.DimensionStatus,
		"byResourceType": repositories.DimensionResourceType,
		"byDepartment":   repositories.DimensionDepartment,
	}
	out := make(map[string]map[string]int64, len(dims))
	for name, dim := range dims {
		counts, err := s.resources.CountBy(ctx, q, dim)
		if err != nil {
			return nil, err
		}
		out[name] = counts
	}
	return out, nil
}

// ============================================================
// Search
// ============================================================

// SearchInput is a free-text search combined with list filters
type SearchInput struct {
	Query    string     `json:"query"`
	Filters  ListFilter `json:"filters"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Sorting
}

// SearchHit is one search result with its relevance
type SearchHit struct {
	*models.IdleResourceResponse
	RelevanceScore float64 `json:"relevanceScore"`
}

// SearchResult is the search envelope
type SearchResult struct {
	Results        []SearchHit                 `json:"results"`
	TotalCount     int64                       `json:"totalCount"`
	PageInfo       pagination.PageInfo         `json:"pageInfo"`
	Facets         map[string]map[string]int64 `json:"facets"`
	SearchMetadata map[string]interface{}      `json:"searchMetadata"`
	ExecutionTime  int64                       `json:"executionTime"`
}

// Search matches employee names, employee number and skills
func (s *IdleResourceService) Search(ctx context.Context, in *SearchInput) (*SearchResult, error) {
	started := time.Now()
	params := pagination.New(in.Page, in.PageSize)

	q, err := buildQuery(in.Filters, in.Sorting)
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(in.Query)
	q.Text(query)

	total, err := s.resources.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	records, err := s.resources.List(ctx, q.Page(params.Offset, params.PageSize))
	if err != nil {
		return nil, err
	}
	facets, err := s.aggregate(ctx, q)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(records))
	for _, r := range records {
		hits = append(hits, SearchHit{
			IdleResourceResponse: r.ToResponse(),
			RelevanceScore:       relevance(r, query),
		})
	}
	if in.SortBy == "" && query != "" {
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].RelevanceScore > hits[j].RelevanceScore
		})
	}

	return &SearchResult{
		Results:    hits,
		TotalCount: total,
		PageInfo:   pagination.GetPageInfo(params, total),
		Facets:     facets,
		SearchMetadata: map[string]interface{}{
			"query":      query,
			"searchTime": time.Since(started).Milliseconds(),
		},
		ExecutionTime: time.Since(started).Milliseconds(),
	}, nil
}

// relevance scores where the query matched: exact name, name, number, skill
func relevance(r *models.IdleResource, query string) float64 {
	if query == "" {
		return 1
	}
	q := strings.ToLower(query)
	if r.Employee != nil {
		name := strings.ToLower(r.Employee.FullName())
		switch {
		case name == q:
			return 1
		case strings.Contains(name, q):
			return 0.8
		case strings.Contains(strings.ToLower(r.Employee.EmployeeNumber), q):
			return 0.7
		}
	}
	for _, skill := range r.Skills {
		if strings.EqualFold(skill, query) {
			return 0.6
		}
	}
	return 0.5
}

// ============================================================
// Validate
// ============================================================

// ValidationReport is the result of a standalone validation pass
type ValidationReport struct {
	IsValid           bool                `json:"isValid"`
	ValidationResults []ValidationMessage `json:"validationResults"`
	ErrorCount        int                 `json:"errorCount"`
	WarningCount      int                 `json:"warningCount"`
	Suggestions       []Suggestion        `json:"suggestions"`
	ValidationSummary ValidationSummary   `json:"validationSummary"`
}

// Suggestion is a hint to fix one field
type Suggestion struct {
	Field      string `json:"field"`
	Suggestion string `json:"suggestion"`
}

// ValidationSummary totals a validation report
type ValidationSummary struct {
	Overall        string `json:"overall"`
	CriticalErrors int    `json:"criticalErrors"`
	Warnings       int    `json:"warnings"`
}

// ValidateData runs the create rules on data without storing anything
func (s *IdleResourceService) ValidateData(ctx context.Context, in *ResourceInput) (*ValidationReport, error) {
	results, err := s.validateItem(ctx, in)
	if err != nil {
		return nil, err
	}
	return buildReport(results, in), nil
}

// validateItem returns error and warning messages for one payload
func (s *IdleResourceService) validateItem(ctx context.Context, in *ResourceInput) ([]ValidationMessage, error) {
	p, err := s.prepareCreate(ctx, in, Actor{})

	var ve *domain.ValidationError
	switch {
	case err == nil:
		return p.warnings, nil
	case errors.As(err, &ve):
		results := make([]ValidationMessage, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			results = append(results, ValidationMessage{
				Field: f.Field, Type: MessageError, Message: f.Message, Code: f.Code,
			})
		}
		return results, nil
	default:
		return nil, err
	}
}

func buildReport(results []ValidationMessage, in *ResourceInput) *ValidationReport {
	report := &ValidationReport{
		ValidationResults: nonNilMessages(results),
		Suggestions:       []Suggestion{},
	}
	for _, r := range results {
		if r.Type == MessageError {
			report.ErrorCount++
		} else {
			report.WarningCount++
		}
		if sug, ok := suggestionFor(r, in); ok {
			report.Suggestions = append(report.Suggestions, sug)
		}
	}
	report.IsValid = report.ErrorCount == 0

	report.ValidationSummary = ValidationSummary{
		Overall:        "passed",
		CriticalErrors: report.ErrorCount,
		Warnings:       report.WarningCount,
	}
	if !report.IsValid {
		report.ValidationSummary.Overall = "failed"
	}
	return report
}

func suggestionFor(m ValidationMessage, in *ResourceInput) (Suggestion, bool) {
	switch m.Code {
	case domain.CodeInvalidDateRange:
		if s := in.start(); s != nil && !s.IsZero() {
			return Suggestion{
				Field:      m.Field,
				Suggestion: "Set date to " + s.AddDate(0, 0, 1).Format("2006-01-02") + " or later",
			}, true
		}
	case domain.CodeInvalidReference:
		return Suggestion{Field: m.Field, Suggestion: "Use an active employee from /api/v1/employees"}, true
	case domain.CodeDuplicateActive:
		return Suggestion{Field: m.Field, Suggestion: "Update the existing record instead of creating a new one"}, true
	}
	return Suggestion{}, false
}

// ============================================================
// helpers
// ============================================================

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func toResponses(records []*models.IdleResource) []*models.IdleResourceResponse {
	out := make([]*models.IdleResourceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToResponse())
	}
	return out
}

func sortFieldNames() []string {
	names := make([]string, 0, len(repositories.SortFields))
	for name := range repositories.SortFields {
		if !strings.Contains(name, "_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func nonNilMessages(m []ValidationMessage) []ValidationMessage {
	if m == nil {
		return []ValidationMessage{}
	}
	return m
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

