package config

import (
	"errors"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db    *gorm.DB
	admin AdminConfig
	log   *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, admin AdminConfig, log *zap.Logger) *Seeder {
	return &Seeder{db: db, admin: admin, log: log}
}

// defaultDepartments are created on an empty database
var defaultDepartments = []models.Department{
	{Name: "Development", Code: "DEV", IsActive: true},
	{Name: "Quality Assurance", Code: "QA", IsActive: true},
	{Name: "Business Analysis", Code: "BA", IsActive: true},
	{Name: "Project Management", Code: "PM", IsActive: true},
}

// Run executes all seeders
func (s *Seeder) Run() error {
	s.log.Info("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		s.log.Warn("⚠️ Admin seeder skipped", zap.Error(err))
	}
	if err := s.seedDepartments(); err != nil {
		s.log.Warn("⚠️ Department seeder skipped", zap.Error(err))
	}

	s.log.Info("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the configured admin account when no admin exists
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.admin.Password == "" {
		return errors.New("ADMIN_PASSWORD is empty")
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:  s.admin.Username,
		Email:     s.admin.Email,
		Password:  hashedPassword,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      string(domain.RoleAdmin),
		IsActive:  true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	s.log.Info("✅ Admin user created", zap.String("username", admin.Username))
	return nil
}

// seedDepartments creates the default departments on an empty table
func (s *Seeder) seedDepartments() error {
	var count int64
	if err := s.db.Model(&models.Department{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	depts := make([]models.Department, len(defaultDepartments))
	copy(depts, defaultDepartments)
	if err := s.db.Create(&depts).Error; err != nil {
		return err
	}

	s.log.Info("✅ Default departments created", zap.Int("count", len(depts)))
	return nil
}
