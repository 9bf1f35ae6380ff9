package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"

	"gorm.io/gorm"
)

// ResourceInput is the writable part of an idle resource. Nil fields are
// left untouched on update. idleFromDate/idleToDate are accepted as aliases
// of availabilityStart/availabilityEnd.
type ResourceInput struct {
	EmployeeID        *uint       `json:"employeeId"`
	ResourceType      *string     `json:"resourceType"`
	Status            *string     `json:"status"`
	AvailabilityStart *dates.Time `json:"availabilityStart"`
	AvailabilityEnd   *dates.Time `json:"availabilityEnd"`
	IdleFromDate      *dates.Time `json:"idleFromDate,omitempty"`
	IdleToDate        *dates.Time `json:"idleToDate,omitempty"`
	Skills            []string    `json:"skills"`
	ExperienceYears   *int        `json:"experienceYears"`
	HourlyRate        *float64    `json:"hourlyRate"`
	Version           *int        `json:"version,omitempty"`
}

func (in *ResourceInput) start() *dates.Time {
	if in.AvailabilityStart != nil {
		return in.AvailabilityStart
	}
	return in.IdleFromDate
}

func (in *ResourceInput) end() *dates.Time {
	if in.AvailabilityEnd != nil {
		return in.AvailabilityEnd
	}
	return in.IdleToDate
}

// fieldNames reports errors under the names the caller used
type fieldNames struct {
	start string
	end   string
}

func (in *ResourceInput) names() fieldNames {
	n := fieldNames{start: "availabilityStart", end: "availabilityEnd"}
	if in.AvailabilityStart == nil && in.IdleFromDate != nil {
		n.start = "idleFromDate"
	}
	if in.AvailabilityEnd == nil && in.IdleToDate != nil {
		n.end = "idleToDate"
	}
	return n
}

// ValidationMessage is one finding of a validation pass
type ValidationMessage struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Validation message types
const (
	MessageError   = "error"
	MessageWarning = "warning"
)

// Updatable fields, in the order they are reported as changed
var updatableFields = []string{
	"resourceType", "status", "availabilityStart", "availabilityEnd",
	"skills", "experienceYears", "hourlyRate",
}

// applyInput merges the whitelisted fields of in onto r and returns the changed field names
func applyInput(r *models.IdleResource, in *ResourceInput) []string {
	var changed []string

	if in.ResourceType != nil {
		if v := strings.TrimSpace(*in.ResourceType); v != r.ResourceType {
			r.ResourceType = v
			changed = append(changed, "resourceType")
		}
	}
	if in.Status != nil {
		if v := strings.TrimSpace(*in.Status); v != r.Status {
			r.Status = v
			changed = append(changed, "status")
		}
	}
	if s := in.start(); s != nil {
		if v := s.Ptr(); !sameTime(v, r.AvailabilityStart) {
			r.AvailabilityStart = v
			changed = append(changed, "availabilityStart")
		}
	}
	if e := in.end(); e != nil {
		if v := e.Ptr(); !sameTime(v, r.AvailabilityEnd) {
			r.AvailabilityEnd = v
			changed = append(changed, "availabilityEnd")
		}
	}
	if in.Skills != nil {
		skills := normalizeSkills(in.Skills)
		if !sameStrings(skills, r.Skills) {
			r.Skills = skills
			changed = append(changed, "skills")
		}
	}
	if in.ExperienceYears != nil && *in.ExperienceYears != r.ExperienceYears {
		r.ExperienceYears = *in.ExperienceYears
		changed = append(changed, "experienceYears")
	}
	if in.HourlyRate != nil && (r.HourlyRate == nil || *in.HourlyRate != *r.HourlyRate) {
		rate := *in.HourlyRate
		r.HourlyRate = &rate
		changed = append(changed, "hourlyRate")
	}
	return changed
}

// columnsFor maps changed field names onto column updates
func columnsFor(r *models.IdleResource, changed []string) map[string]interface{} {
	cols := make(map[string]interface{}, len(changed))
	for _, f := range changed {
		switch f {
		case "resourceType":
			cols["resource_type"] = r.ResourceType
		case "status":
			cols["status"] = r.Status
		case "availabilityStart":
			cols["availability_start"] = r.AvailabilityStart
		case "availabilityEnd":
			cols["availability_end"] = r.AvailabilityEnd
		case "skills":
			cols["skills"] = r.Skills
		case "experienceYears":
			cols["experience_years"] = r.ExperienceYears
		case "hourlyRate":
			cols["hourly_rate"] = r.HourlyRate
		}
	}
	return cols
}

// validateRecord checks the merged record and collects every problem
func validateRecord(r *models.IdleResource, names fieldNames, ve *domain.ValidationError) {
	if r.EmployeeID == 0 {
		ve.Add("employeeId", domain.CodeRequired, "is required")
	}
	if !domain.ResourceType(r.ResourceType).Valid() {
		ve.Add("resourceType", domain.CodeInvalidChoice,
			fmt.Sprintf("must be one of: %s", joinTypes(domain.ResourceTypes)))
	}
	if st := domain.ResourceStatus(r.Status); !st.Valid() || st == domain.StatusDeleted {
		ve.Add("status", domain.CodeInvalidChoice, "must be one of: available, allocated, unavailable")
	}
	if r.AvailabilityStart != nil && r.AvailabilityEnd != nil && !r.AvailabilityStart.Before(*r.AvailabilityEnd) {
		ve.Add(names.end, domain.CodeInvalidDateRange,
			fmt.Sprintf("%s must be after %s", names.end, names.start))
	}
	for i, s := range r.Skills {
		if strings.TrimSpace(s) == "" {
			ve.Add(fmt.Sprintf("skills[%d]", i), domain.CodeInvalidFormat, "must be a non-empty string")
		}
	}
	if r.ExperienceYears < 0 {
		ve.Add("experienceYears", domain.CodeOutOfRange, "must be at least 0")
	}
	if r.HourlyRate != nil && *r.HourlyRate < 0 {
		ve.Add("hourlyRate", domain.CodeOutOfRange, "must be at least 0")
	}
}

// checkEmployee verifies the referenced employee exists and is active
func checkEmployee(ctx context.Context, employees repositories.EmployeeRepository, employeeID uint, ve *domain.ValidationError) (*models.Employee, error) {
	if employeeID == 0 {
		return nil, nil
	}
	emp, err := employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.Add("employeeId", domain.CodeInvalidReference, fmt.Sprintf("employee %d does not exist", employeeID))
			return nil, nil
		}
		return nil, err
	}
	if !emp.IsActive {
		ve.Add("employeeId", domain.CodeInvalidReference, fmt.Sprintf("employee %d is not active", employeeID))
	}
	return emp, nil
}

func activeRecordWarning(employeeID uint) ValidationMessage {
	return ValidationMessage{
		Field:   "employeeId",
		Type:    MessageWarning,
		Message: fmt.Sprintf("employee %d already has an active idle resource record", employeeID),
		Code:    domain.CodeDuplicateActive,
	}
}

func isActiveStatus(status string) bool {
	return status == string(domain.StatusAvailable) || status == string(domain.StatusAllocated)
}

func normalizeSkills(skills []string) models.StringList {
	out := make(models.StringList, 0, len(skills))
	for _, s := range skills {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func joinTypes(types []domain.ResourceType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
