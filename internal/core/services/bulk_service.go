package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/ids"

	"go.uber.org/zap"
)

// MaxBulkItems caps the number of items in one bulk request
const MaxBulkItems = 1000

// Bulk item statuses
const (
	ItemSuccess = "success"
	ItemFailed  = "failed"
	ItemValid   = "valid"
	ItemInvalid = "invalid"
)

const batchAborted = "batch aborted"

// BulkService runs bulk operations on top of the single-record rules
type BulkService struct {
	resources *IdleResourceService
	audit     *AuditRecorder
	log       *zap.Logger
}

// NewBulkService creates a new bulk service
func NewBulkService(resources *IdleResourceService, audit *AuditRecorder, log *zap.Logger) *BulkService {
	return &BulkService{resources: resources, audit: audit, log: log}
}

// BulkItemResult is the outcome of one item
type BulkItemResult struct {
	Index        int                 `json:"index"`
	ID           string              `json:"id,omitempty"`
	Status       string              `json:"status"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	Errors       []domain.FieldError `json:"errors,omitempty"`
	Warnings     []ValidationMessage `json:"warnings,omitempty"`
}

// BulkResult is the envelope of every bulk operation
type BulkResult struct {
	OperationID    string           `json:"operationId"`
	TotalRequested int              `json:"totalRequested"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Results        []BulkItemResult `json:"results"`
	AuditTrailID   string           `json:"auditTrailId,omitempty"`
	ExecutionTime  int64            `json:"executionTime"`
}

func newBulkResult(operationID string, total int) *BulkResult {
	if strings.TrimSpace(operationID) == "" {
		operationID = ids.NewOperationID()
	}
	return &BulkResult{
		OperationID:    operationID,
		TotalRequested: total,
		Results:        make([]BulkItemResult, 0, total),
	}
}

func (r *BulkResult) add(item BulkItemResult) {
	r.Results = append(r.Results, item)
	switch item.Status {
	case ItemSuccess, ItemValid:
		r.Successful++
	default:
		r.Failed++
	}
}

func (r *BulkResult) finish(started time.Time) *BulkResult {
	r.ExecutionTime = time.Since(started).Milliseconds()
	return r
}

func checkBatchSize(n int) error {
	ve := domain.NewValidationError("Invalid bulk request")
	switch {
	case n == 0:
		ve.Add("items", domain.CodeRequired, "must contain at least one item")
	case n > MaxBulkItems:
		ve.Add("items", domain.CodeOutOfRange, fmt.Sprintf("must contain at most %d items", MaxBulkItems))
	}
	return ve.OrNil()
}

// recordBulk writes the single counts-only audit entry of a bulk operation
func (s *BulkService) recordBulk(ctx context.Context, operation string, result *BulkResult, actor Actor, extra map[string]interface{}) {
	details := map[string]interface{}{
		"operationId":    result.OperationID,
		"totalRequested": result.TotalRequested,
		"successful":     result.Successful,
		"failed":         result.Failed,
	}
	for k, v := range extra {
		details[k] = v
	}
	result.AuditTrailID = s.audit.Record(ctx, operation, "", actor, details)
}

// BulkCreateInput is a batch of creates
type BulkCreateInput struct {
	OperationID string          `json:"operationId"`
	Items       []ResourceInput `json:"items"`
}

// BulkCreate validates every item first and inserts all of them or none
func (s *BulkService) BulkCreate(ctx context.Context, in *BulkCreateInput, actor Actor) (*BulkResult, error) {
	started := time.Now()
	if err := checkBatchSize(len(in.Items)); err != nil {
		return nil, err
	}
	result := newBulkResult(in.OperationID, len(in.Items))

	// 1. Validate everything
	items := make([]BulkItemResult, len(in.Items))
	records := make([]*models.IdleResource, 0, len(in.Items))
	invalid := 0
	for i := range in.Items {
		p, err := s.resources.prepareCreate(ctx, &in.Items[i], actor)
		var ve *domain.ValidationError
		switch {
		case err == nil:
			items[i] = BulkItemResult{Index: i, ID: p.record.ID, Status: ItemSuccess, Warnings: p.warnings}
			records = append(records, p.record)
		case errors.As(err, &ve):
			items[i] = BulkItemResult{Index: i, Status: ItemFailed, ErrorMessage: ve.Error(), Errors: ve.Fields}
			invalid++
		default:
			return nil, err
		}
	}

	// 2. Abort the batch on any invalid item
	if invalid > 0 {
		for _, item := range items {
			if item.Status == ItemSuccess {
				item = BulkItemResult{Index: item.Index, Status: ItemFailed, ErrorMessage: batchAborted}
			}
			result.add(item)
		}
		s.recordBulk(ctx, AuditBulkCreate, result, actor, map[string]interface{}{"aborted": true})
		return result.finish(started), nil
	}

	// 3. Insert all rows in one transaction
	if err := s.resources.resources.CreateBatch(ctx, records); err != nil {
		return nil, err
	}
	for _, item := range items {
		result.add(item)
	}
	s.recordBulk(ctx, AuditBulkCreate, result, actor, nil)

	s.log.Info("bulk create completed",
		zap.String("operationId", result.OperationID),
		zap.Int("created", result.Successful),
	)
	return result.finish(started), nil
}

// BulkUpdateItem is one versioned patch
type BulkUpdateItem struct {
	ID string `json:"id"`
	ResourceInput
}

// BulkUpdateInput is a batch of patches
type BulkUpdateInput struct {
	OperationID string           `json:"operationId"`
	Items       []BulkUpdateItem `json:"items"`
}

// BulkUpdate applies every patch independently
func (s *BulkService) BulkUpdate(ctx context.Context, in *BulkUpdateInput, actor Actor) (*BulkResult, error) {
	started := time.Now()
	if err := checkBatchSize(len(in.Items)); err != nil {
		return nil, err
	}
	result := newBulkResult(in.OperationID, len(in.Items))

	for i := range in.Items {
		item := &in.Items[i]
		if strings.TrimSpace(item.ID) == "" {
			result.add(BulkItemResult{Index: i, Status: ItemFailed, ErrorMessage: "id is required"})
			continue
		}
		if _, _, err := s.resources.update(ctx, item.ID, &item.ResourceInput, actor); err != nil {
			result.add(s.failedItem(i, item.ID, err))
			continue
		}
		result.add(BulkItemResult{Index: i, ID: item.ID, Status: ItemSuccess})
	}

	s.recordBulk(ctx, AuditBulkUpdate, result, actor, nil)
	return result.finish(started), nil
}

// BulkStatusInput sets one status on many resources
type BulkStatusInput struct {
	OperationID string   `json:"operationId"`
	IDs         []string `json:"ids"`
	Status      string   `json:"status"`
	Reason      string   `json:"reason"`
}

// BulkStatusUpdate validates the status once and then updates each resource
func (s *BulkService) BulkStatusUpdate(ctx context.Context, in *BulkStatusInput, actor Actor) (*BulkResult, error) {
	started := time.Now()
	if err := checkBatchSize(len(in.IDs)); err != nil {
		return nil, err
	}
	if st := domain.ResourceStatus(in.Status); !st.Valid() || st == domain.StatusDeleted {
		ve := domain.NewValidationError("Invalid bulk status request")
		ve.Add("status", domain.CodeInvalidChoice, "must be one of: available, allocated, unavailable")
		return nil, ve
	}
	result := newBulkResult(in.OperationID, len(in.IDs))

	for i, id := range in.IDs {
		status := in.Status
		if _, _, err := s.resources.update(ctx, id, &ResourceInput{Status: &status}, actor); err != nil {
			result.add(s.failedItem(i, id, err))
			continue
		}
		result.add(BulkItemResult{Index: i, ID: id, Status: ItemSuccess})
	}

	s.recordBulk(ctx, AuditBulkStatus, result, actor, map[string]interface{}{
		"status": in.Status,
		"reason": in.Reason,
	})
	return result.finish(started), nil
}

// BulkDeleteInput deletes many resources
type BulkDeleteInput struct {
	OperationID string   `json:"operationId"`
	IDs         []string `json:"ids"`
	DeleteType  string   `json:"deleteType"`
	Reason      string   `json:"reason"`
}

// BulkDelete deletes each resource independently
func (s *BulkService) BulkDelete(ctx context.Context, in *BulkDeleteInput, actor Actor) (*BulkResult, error) {
	started := time.Now()
	if err := checkBatchSize(len(in.IDs)); err != nil {
		return nil, err
	}
	deleteType, err := parseDeleteType(in.DeleteType)
	if err != nil {
		return nil, err
	}
	if deleteType == domain.DeleteHard && !actor.IsAdmin() {
		return nil, ErrHardDeleteForbidden
	}
	result := newBulkResult(in.OperationID, len(in.IDs))

	for i, id := range in.IDs {
		_, err := s.resources.delete(ctx, id, &DeleteInput{DeleteType: string(deleteType), Reason: in.Reason}, actor)
		if err != nil {
			result.add(s.failedItem(i, id, err))
			continue
		}
		result.add(BulkItemResult{Index: i, ID: id, Status: ItemSuccess})
	}

	s.recordBulk(ctx, AuditBulkDelete, result, actor, map[string]interface{}{
		"deleteType": string(deleteType),
		"reason":     in.Reason,
	})
	return result.finish(started), nil
}

// BulkValidateInput is a batch of payloads to check
type BulkValidateInput struct {
	OperationID string          `json:"operationId"`
	Items       []ResourceInput `json:"items"`
}

// BulkValidate validates each item and flags repeated employees without storing anything
func (s *BulkService) BulkValidate(ctx context.Context, in *BulkValidateInput) (*BulkResult, error) {
	started := time.Now()
	if err := checkBatchSize(len(in.Items)); err != nil {
		return nil, err
	}
	result := newBulkResult(in.OperationID, len(in.Items))

	seen := make(map[uint]int, len(in.Items))
	for i := range in.Items {
		item := &in.Items[i]
		messages, err := s.resources.validateItem(ctx, item)
		if err != nil {
			return nil, err
		}

		if item.EmployeeID != nil && *item.EmployeeID != 0 {
			if first, dup := seen[*item.EmployeeID]; dup {
				messages = append(messages, ValidationMessage{
					Field:   "employeeId",
					Type:    MessageError,
					Message: fmt.Sprintf("employee %d is already used by item %d", *item.EmployeeID, first),
					Code:    domain.CodeDuplicate,
				})
			} else {
				seen[*item.EmployeeID] = i
			}
		}

		result.add(itemFromMessages(i, messages))
	}

	return result.finish(started), nil
}

func itemFromMessages(index int, messages []ValidationMessage) BulkItemResult {
	item := BulkItemResult{Index: index, Status: ItemValid}
	var failures []string
	for _, m := range messages {
		if m.Type == MessageWarning {
			item.Warnings = append(item.Warnings, m)
			continue
		}
		item.Errors = append(item.Errors, domain.FieldError{Field: m.Field, Code: m.Code, Message: m.Message})
		failures = append(failures, m.Field+": "+m.Message)
	}
	if len(item.Errors) > 0 {
		item.Status = ItemInvalid
		item.ErrorMessage = strings.Join(failures, "; ")
	}
	return item
}

// failedItem reports a per-item failure; storage errors are logged and masked
func (s *BulkService) failedItem(index int, id string, err error) BulkItemResult {
	if !domain.IsClientError(err) {
		s.log.Error("bulk item failed",
			zap.Int("index", index),
			zap.String("resource_id", id),
			zap.Error(err),
		)
		return BulkItemResult{Index: index, ID: id, Status: ItemFailed, ErrorMessage: "internal error"}
	}
	item := BulkItemResult{Index: index, ID: id, Status: ItemFailed, ErrorMessage: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		item.Errors = ve.Fields
	}
	return item
}
