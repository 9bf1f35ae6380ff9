package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	adminActor   = Actor{UserID: 1, Username: "admin", Role: domain.RoleAdmin, IPAddress: "127.0.0.1"}
	managerActor = Actor{UserID: 2, Username: "manager", Role: domain.RoleManager, IPAddress: "127.0.0.1"}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type fixture struct {
	db           *gorm.DB
	audit        *AuditRecorder
	resources    *IdleResourceService
	availability *AvailabilityService
	skills       *SkillService
	bulk         *BulkService
	transfers    repositories.TransferRepository
	resourceRepo repositories.IdleResourceRepository
	department   *models.Department
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	resourceRepo := repositories.NewIdleResourceRepository(db)
	employeeRepo := repositories.NewEmployeeRepository(db)
	tx := repositories.NewTransactor(db)
	audit := NewAuditRecorder(repositories.NewAuditRepository(db), log)
	resources := NewIdleResourceService(resourceRepo, employeeRepo, tx, audit, log)

	dept := &models.Department{Name: "Development", Code: "DEV", IsActive: true}
	if err := db.Create(dept).Error; err != nil {
		t.Fatalf("failed to create department: %v", err)
	}

	return &fixture{
		db:           db,
		audit:        audit,
		resources:    resources,
		availability: NewAvailabilityService(resourceRepo, repositories.NewAvailabilityRepository(db), tx, audit, log),
		skills:       NewSkillService(resourceRepo, repositories.NewSkillRepository(db), audit),
		bulk:         NewBulkService(resources, audit, log),
		transfers:    repositories.NewTransferRepository(db),
		resourceRepo: resourceRepo,
		department:   dept,
	}
}

// addEmployee stores an active employee of the fixture department
func (f *fixture) addEmployee(t *testing.T, number, first, last string) *models.Employee {
	t.Helper()
	emp := &models.Employee{
		EmployeeNumber: number,
		FirstName:      first,
		LastName:       last,
		Email:          strings.ToLower(number) + "@example.com",
		DepartmentID:   &f.department.ID,
		HireDate:       time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
	}
	if err := f.db.Create(emp).Error; err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}
	return emp
}

// createResource stores an available developer for the employee
func (f *fixture) createResource(t *testing.T, employeeID uint, mutate func(in *ResourceInput)) *MutationResult {
	t.Helper()
	in := &ResourceInput{
		EmployeeID:        &employeeID,
		AvailabilityStart: day(2025, 3, 1),
		AvailabilityEnd:   day(2025, 6, 30),
		Skills:            []string{"Go", "PostgreSQL"},
		ExperienceYears:   intPtr(5),
	}
	if mutate != nil {
		mutate(in)
	}
	result, err := f.resources.Create(context.Background(), in, managerActor)
	if err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}
	return result
}

func day(y int, m time.Month, d int) *dates.Time {
	return &dates.Time{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }
