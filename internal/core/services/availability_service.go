package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"

	"go.uber.org/zap"
)

// Conflict types reported by the availability checker
const (
	ConflictAvailabilityWindow = "availability_window"
	ConflictAllocation         = "allocation_conflict"
)

// AvailabilityService checks and books resource availability
type AvailabilityService struct {
	resources    repositories.IdleResourceRepository
	availability repositories.AvailabilityRepository
	tx           repositories.Transactor
	audit        *AuditRecorder
	log          *zap.Logger
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	resources repositories.IdleResourceRepository,
	availability repositories.AvailabilityRepository,
	tx repositories.Transactor,
	audit *AuditRecorder,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		resources:    resources,
		availability: availability,
		tx:           tx,
		audit:        audit,
		log:          log,
	}
}

// AvailabilityWindow is the declared availability range of a resource
type AvailabilityWindow struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// AvailabilityResult is the outcome of an availability check
type AvailabilityResult struct {
	ResourceID         string                      `json:"resourceId"`
	IsAvailable        bool                        `json:"isAvailable"`
	Reason             string                      `json:"reason,omitempty"`
	Conflicts          []domain.AllocationConflict `json:"conflicts"`
	AvailabilityWindow AvailabilityWindow          `json:"availabilityWindow"`
	RequestedStart     string                      `json:"requestedStart"`
	RequestedEnd       string                      `json:"requestedEnd"`
}

func validateRange(start, end time.Time, startField, endField string) error {
	ve := domain.NewValidationError("Invalid date range")
	if start.IsZero() {
		ve.Add(startField, domain.CodeRequired, "is required")
	}
	if end.IsZero() {
		ve.Add(endField, domain.CodeRequired, "is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		ve.Add(endField, domain.CodeInvalidDateRange, fmt.Sprintf("%s must be after %s", endField, startField))
	}
	return ve.OrNil()
}

// evaluate decides availability of r over [start, end) given its overlapping allocations
func evaluate(r *models.IdleResource, allocations []*models.ResourceAvailability, start, end time.Time) *AvailabilityResult {
	result := &AvailabilityResult{
		ResourceID:  r.ID,
		IsAvailable: true,
		Conflicts:   []domain.AllocationConflict{},
		AvailabilityWindow: AvailabilityWindow{
			Start: dates.Format(r.AvailabilityStart),
			End:   dates.Format(r.AvailabilityEnd),
		},
		RequestedStart: start.UTC().Format(time.RFC3339),
		RequestedEnd:   end.UTC().Format(time.RFC3339),
	}

	if r.Status != string(domain.StatusAvailable) {
		result.IsAvailable = false
		result.Reason = "resource status is " + r.Status
		return result
	}

	if r.AvailabilityStart != nil && start.Before(*r.AvailabilityStart) {
		result.Conflicts = append(result.Conflicts, domain.AllocationConflict{
			Type:          ConflictAvailabilityWindow,
			Message:       "requested start is before the resource becomes available",
			ExistingStart: dates.Format(r.AvailabilityStart),
			ExistingEnd:   dates.Format(r.AvailabilityEnd),
		})
	}
	if r.AvailabilityEnd != nil && end.After(*r.AvailabilityEnd) {
		result.Conflicts = append(result.Conflicts, domain.AllocationConflict{
			Type:          ConflictAvailabilityWindow,
			Message:       "requested end is after the resource availability ends",
			ExistingStart: dates.Format(r.AvailabilityStart),
			ExistingEnd:   dates.Format(r.AvailabilityEnd),
		})
	}
	for _, a := range allocations {
		from, to := a.StartDate, a.EndDate
		result.Conflicts = append(result.Conflicts, domain.AllocationConflict{
			Type:                ConflictAllocation,
			Message:             "overlaps an existing allocation",
			ExistingStart:       dates.Format(&from),
			ExistingEnd:         dates.Format(&to),
			AllocationReference: a.AllocationReference,
		})
	}

	if len(result.Conflicts) > 0 {
		result.IsAvailable = false
		result.Reason = fmt.Sprintf("%d conflict(s) found", len(result.Conflicts))
	}
	return result
}

// CheckAvailability reports whether a resource can be booked over [start, end)
func (s *AvailabilityService) CheckAvailability(ctx context.Context, id string, start, end time.Time) (*AvailabilityResult, error) {
	if err := validateRange(start, end, "startDate", "endDate"); err != nil {
		return nil, err
	}

	resource, err := s.resources.GetByID(ctx, id, false)
	if err != nil {
		return nil, notFound(err, ErrResourceNotFound)
	}

	allocations, err := s.availability.ListAllocatedOverlapping(ctx, id, start, end)
	if err != nil {
		return nil, err
	}

	return evaluate(resource, allocations, start, end), nil
}

// AllocationInput books a resource over a date range
type AllocationInput struct {
	StartDate           dates.Time `json:"startDate"`
	EndDate             dates.Time `json:"endDate"`
	AvailabilityType    string     `json:"availabilityType" validate:"omitempty,oneof=full_time part_time on_call consulting project_based"`
	CapacityPercentage  *int       `json:"capacityPercentage" validate:"omitempty,min=0,max=100"`
	HourlyCommitment    *int       `json:"hourlyCommitment" validate:"omitempty,min=0,max=168"`
	AllocationReference string     `json:"allocationReference" validate:"max=100"`
	Notes               string     `json:"notes"`
	Version             *int       `json:"version"`
}

// AllocationResult is the stored allocation plus the new resource version
type AllocationResult struct {
	Allocation      *models.ResourceAvailability `json:"allocation"`
	ResourceVersion int                          `json:"resourceVersion"`
	AuditTrailID    string                       `json:"auditTrailId"`
}

// Allocate books the range if the checker finds no conflicts
func (s *AvailabilityService) Allocate(ctx context.Context, id string, in *AllocationInput, actor Actor) (*AllocationResult, error) {
	start, end := in.StartDate.Time, in.EndDate.Time
	if err := validateRange(start, end, "startDate", "endDate"); err != nil {
		return nil, err
	}

	window := &models.ResourceAvailability{
		ResourceID:          id,
		AvailabilityType:    in.AvailabilityType,
		StartDate:           start,
		EndDate:             end,
		CapacityPercentage:  100,
		HourlyCommitment:    40,
		IsAllocated:         true,
		AllocationReference: strings.TrimSpace(in.AllocationReference),
		Notes:               in.Notes,
		CreatedBy:           actor.idPtr(),
	}
	if window.AvailabilityType == "" {
		window.AvailabilityType = "full_time"
	}
	if in.CapacityPercentage != nil {
		window.CapacityPercentage = *in.CapacityPercentage
	}
	if in.HourlyCommitment != nil {
		window.HourlyCommitment = *in.HourlyCommitment
	}

	var version int
	err := s.tx.WithinTransaction(ctx, func(tx repositories.TxRepositories) error {
		resource, err := tx.Resources.GetByID(ctx, id, false)
		if err != nil {
			return notFound(err, ErrResourceNotFound)
		}
		if in.Version != nil && *in.Version != resource.Version {
			return &domain.VersionConflictError{
				ResourceID:      id,
				CurrentVersion:  resource.Version,
				ProvidedVersion: *in.Version,
			}
		}

		allocations, err := tx.Availability.ListAllocatedOverlapping(ctx, id, start, end)
		if err != nil {
			return err
		}
		check := evaluate(resource, allocations, start, end)
		if !check.IsAvailable {
			return &domain.AllocationConflictError{Reason: check.Reason, Conflicts: check.Conflicts}
		}

		rows, err := tx.Resources.UpdateWithVersion(ctx, id, map[string]interface{}{
			"updated_by": actor.idPtr(),
		}, resource.Version)
		if err != nil {
			return err
		}
		if rows == 0 {
			current, err := tx.Resources.CurrentVersion(ctx, id)
			if err != nil {
				return notFound(err, ErrResourceNotFound)
			}
			return &domain.VersionConflictError{ResourceID: id, CurrentVersion: current, ProvidedVersion: resource.Version}
		}
		version = resource.Version + 1

		return tx.Availability.Create(ctx, window)
	})
	if err != nil {
		return nil, err
	}

	auditID := s.audit.Record(ctx, AuditAllocate, id, actor, map[string]interface{}{
		"allocationId":        window.ID,
		"startDate":           start.Format(time.RFC3339),
		"endDate":             end.Format(time.RFC3339),
		"allocationReference": window.AllocationReference,
	})

	s.log.Info("resource allocated",
		zap.String("resourceId", id),
		zap.Uint("allocationId", window.ID),
	)

	return &AllocationResult{Allocation: window, ResourceVersion: version, AuditTrailID: auditID}, nil
}

// ListAvailability lists every availability window of a resource
func (s *AvailabilityService) ListAvailability(ctx context.Context, id string) ([]*models.ResourceAvailability, error) {
	if _, err := s.resources.GetByID(ctx, id, false); err != nil {
		return nil, notFound(err, ErrResourceNotFound)
	}
	return s.availability.ListByResource(ctx, id)
}
