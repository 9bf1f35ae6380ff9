package services

import (
	"context"
	"fmt"
	"strings"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"
)

// Skill errors
var (
	ErrSkillNotFound = fmt.Errorf("skill %w", domain.ErrNotFound)
	ErrSkillExists   = fmt.Errorf("skill %w", domain.ErrDuplicateEntry)
)

// SkillService manages the detailed skills of a resource
type SkillService struct {
	resources repositories.IdleResourceRepository
	skills    repositories.SkillRepository
	audit     *AuditRecorder
}

// NewSkillService creates a new skill service
func NewSkillService(resources repositories.IdleResourceRepository, skills repositories.SkillRepository, audit *AuditRecorder) *SkillService {
	return &SkillService{resources: resources, skills: skills, audit: audit}
}

// SkillInput is a new skill entry
type SkillInput struct {
	SkillName         string      `json:"skillName" validate:"required,max=100"`
	SkillCategory     string      `json:"skillCategory" validate:"omitempty,oneof=technical programming framework database cloud soft_skill certification tool"`
	ProficiencyLevel  string      `json:"proficiencyLevel" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsExperience   float64     `json:"yearsExperience" validate:"gte=0,lte=60"`
	CertificationName string      `json:"certificationName" validate:"max=150"`
	CertificationDate *dates.Time `json:"certificationDate"`
	IsVerified        bool        `json:"isVerified"`
}

// Add adds a skill to a resource; names are unique per resource
func (s *SkillService) Add(ctx context.Context, resourceID string, in *SkillInput, actor Actor) (*models.ResourceSkill, error) {
	if _, err := s.resources.GetByID(ctx, resourceID, false); err != nil {
		return nil, notFound(err, ErrResourceNotFound)
	}

	name := strings.TrimSpace(in.SkillName)
	ve := domain.NewValidationError("Invalid skill data")
	if name == "" {
		ve.Add("skillName", domain.CodeRequired, "is required")
	}
	if in.SkillCategory != "" && !domain.Contains(domain.SkillCategories, in.SkillCategory) {
		ve.Add("skillCategory", domain.CodeInvalidChoice, "must be one of: "+strings.Join(domain.SkillCategories, ", "))
	}
	if in.ProficiencyLevel != "" && !domain.Contains(domain.ProficiencyLevels, in.ProficiencyLevel) {
		ve.Add("proficiencyLevel", domain.CodeInvalidChoice, "must be one of: "+strings.Join(domain.ProficiencyLevels, ", "))
	}
	if in.YearsExperience < 0 {
		ve.Add("yearsExperience", domain.CodeOutOfRange, "must be at least 0")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	exists, err := s.skills.ExistsByName(ctx, resourceID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSkillExists
	}

	skill := &models.ResourceSkill{
		ResourceID:        resourceID,
		SkillName:         name,
		SkillCategory:     in.SkillCategory,
		ProficiencyLevel:  in.ProficiencyLevel,
		YearsExperience:   in.YearsExperience,
		CertificationName: strings.TrimSpace(in.CertificationName),
		CertificationDate: in.CertificationDate.Ptr(),
		IsVerified:        in.IsVerified,
	}
	if skill.SkillCategory == "" {
		skill.SkillCategory = "technical"
	}
	if skill.ProficiencyLevel == "" {
		skill.ProficiencyLevel = "intermediate"
	}

	if err := s.skills.Create(ctx, skill); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditSkillAdd, resourceID, actor, map[string]interface{}{
		"skillId":   skill.ID,
		"skillName": skill.SkillName,
	})
	return skill, nil
}

// List lists the skills of a resource
func (s *SkillService) List(ctx context.Context, resourceID string) ([]*models.ResourceSkill, error) {
	if _, err := s.resources.GetByID(ctx, resourceID, false); err != nil {
		return nil, notFound(err, ErrResourceNotFound)
	}
	return s.skills.ListByResource(ctx, resourceID)
}

// Remove deletes one skill of a resource
func (s *SkillService) Remove(ctx context.Context, resourceID string, skillID uint, actor Actor) error {
	rows, err := s.skills.Delete(ctx, resourceID, skillID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSkillNotFound
	}

	s.audit.Record(ctx, AuditSkillRemove, resourceID, actor, map[string]interface{}{
		"skillId": skillID,
	})
	return nil
}
