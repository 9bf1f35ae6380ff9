package services

import (
	"context"
	"strings"

	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
)

// Master data types
const (
	MasterDepartments       = "departments"
	MasterResourceTypes     = "resourceTypes"
	MasterStatuses          = "statuses"
	MasterSkillCategories   = "skillCategories"
	MasterProficiencyLevels = "proficiencyLevels"
	MasterAvailabilityTypes = "availabilityTypes"
	MasterSortFields        = "sortFields"
	MasterExportFormats     = "exportFormats"
)

var masterDataTypes = []string{
	MasterDepartments, MasterResourceTypes, MasterStatuses, MasterSkillCategories,
	MasterProficiencyLevels, MasterAvailabilityTypes, MasterSortFields, MasterExportFormats,
}

// MasterDataService serves lookup lists for clients
type MasterDataService struct {
	departments repositories.DepartmentRepository
}

// NewMasterDataService creates a new master data service
func NewMasterDataService(departments repositories.DepartmentRepository) *MasterDataService {
	return &MasterDataService{departments: departments}
}

// LookupItem is one selectable value
type LookupItem struct {
	ID    interface{} `json:"id"`
	Code  string      `json:"code"`
	Label string      `json:"label"`
}

// Get returns the requested lookup lists; an empty request returns all of them.
// Unknown types are ignored.
func (s *MasterDataService) Get(ctx context.Context, dataTypes []string) (map[string][]LookupItem, error) {
	wanted := make(map[string]bool)
	for _, t := range dataTypes {
		if t = strings.TrimSpace(t); t != "" {
			wanted[t] = true
		}
	}
	include := func(t string) bool {
		return len(wanted) == 0 || wanted[t]
	}

	out := make(map[string][]LookupItem)
	for _, t := range masterDataTypes {
		if !include(t) {
			continue
		}
		switch t {
		case MasterDepartments:
			depts, err := s.departments.List(ctx, true)
			if err != nil {
				return nil, err
			}
			items := make([]LookupItem, 0, len(depts))
			for _, d := range depts {
				items = append(items, LookupItem{ID: d.ID, Code: d.Code, Label: d.Name})
			}
			out[t] = items
		case MasterResourceTypes:
			values := make([]string, len(domain.ResourceTypes))
			for i, v := range domain.ResourceTypes {
				values[i] = string(v)
			}
			out[t] = lookups(values)
		case MasterStatuses:
			values := make([]string, len(domain.ResourceStatuses))
			for i, v := range domain.ResourceStatuses {
				values[i] = string(v)
			}
			out[t] = lookups(values)
		case MasterSkillCategories:
			out[t] = lookups(domain.SkillCategories)
		case MasterProficiencyLevels:
			out[t] = lookups(domain.ProficiencyLevels)
		case MasterAvailabilityTypes:
			out[t] = lookups(domain.AvailabilityTypes)
		case MasterSortFields:
			out[t] = lookups(sortFieldNames())
		case MasterExportFormats:
			out[t] = lookups(domain.ExportFormats)
		}
	}
	return out, nil
}

func lookups(values []string) []LookupItem {
	items := make([]LookupItem, len(values))
	for i, v := range values {
		items[i] = LookupItem{ID: v, Code: v, Label: label(v)}
	}
	return items
}

// label turns "soft_skill" or "resourceType" into "Soft Skill" / "Resource Type"
func label(code string) string {
	var b strings.Builder
	upperNext := true
	for i, r := range code {
		switch {
		case r == '_':
			b.WriteByte(' ')
			upperNext = true
			continue
		case r >= 'A' && r <= 'Z' && i > 0:
			b.WriteByte(' ')
		}
		if upperNext && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upperNext = false
		b.WriteRune(r)
	}
	return b.String()
}
