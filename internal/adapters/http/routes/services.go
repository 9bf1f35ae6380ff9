package routes

import (
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/config"
	"idle-resource-hub/internal/core/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services holds every service the HTTP layer and background jobs share
type Services struct {
	Audit        *services.AuditRecorder
	Sessions     *services.SessionService
	Auth         *services.AuthService
	Users        *services.UserService
	Resources    *services.IdleResourceService
	Availability *services.AvailabilityService
	Skills       *services.SkillService
	Bulk         *services.BulkService
	Exports      *services.ExportService
	Imports      *services.ImportService
	Organization *services.OrganizationService
	MasterData   *services.MasterDataService
	Dashboard    *services.DashboardService
}

// BuildServices wires repositories into services
func BuildServices(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Services {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	departmentRepo := repositories.NewDepartmentRepository(db)
	employeeRepo := repositories.NewEmployeeRepository(db)
	resourceRepo := repositories.NewIdleResourceRepository(db)
	skillRepo := repositories.NewSkillRepository(db)
	availabilityRepo := repositories.NewAvailabilityRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	tx := repositories.NewTransactor(db)

	// Initialize services
	audit := services.NewAuditRecorder(auditRepo, log.Named("audit"))
	sessions := services.NewSessionService(sessionRepo, cfg.Session.AccessTTL, cfg.Session.RememberTTL, log.Named("session"))
	resources := services.NewIdleResourceService(resourceRepo, employeeRepo, tx, audit, log.Named("resources"))
	bulk := services.NewBulkService(resources, audit, log.Named("bulk"))

	return &Services{
		Audit:        audit,
		Sessions:     sessions,
		Auth:         services.NewAuthService(userRepo, sessions, log.Named("auth")),
		Users:        services.NewUserService(userRepo),
		Resources:    resources,
		Availability: services.NewAvailabilityService(resourceRepo, availabilityRepo, tx, audit, log.Named("availability")),
		Skills:       services.NewSkillService(resourceRepo, skillRepo, audit),
		Bulk:         bulk,
		Exports: services.NewExportService(resourceRepo, transferRepo, audit, services.ExportOptions{
			Dir:        cfg.Export.Dir,
			Secret:     cfg.Export.Secret,
			LinkTTL:    cfg.Export.LinkTTL,
			MaxRecords: cfg.Export.MaxRecords,
		}, log.Named("export")),
		Imports:      services.NewImportService(bulk, transferRepo, audit, log.Named("import")),
		Organization: services.NewOrganizationService(employeeRepo, departmentRepo, log.Named("organization")),
		MasterData:   services.NewMasterDataService(departmentRepo),
		Dashboard:    services.NewDashboardService(db),
	}
}
