package routes

import (
	"time"

	"idle-resource-hub/internal/adapters/http/handlers"
	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, svc *Services, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, config.HealthCheck)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users, cfg.Cookie, cfg.Session.RememberTTL)
	userHandler := handlers.NewUserHandler(svc.Users)
	resourceHandler := handlers.NewIdleResourceHandler(svc.Resources, svc.Availability, svc.Skills, svc.Audit)
	bulkHandler := handlers.NewBulkHandler(svc.Bulk)
	transferHandler := handlers.NewTransferHandler(svc.Exports, svc.Imports)
	orgHandler := handlers.NewOrganizationHandler(svc.Organization)
	masterHandler := handlers.NewMasterHandler(svc.MasterData)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(svc.Sessions)

	// Auth routes
	authRoutes := apiV1.Group("/auth", middleware.NoStore())
	setupAuthRoutes(authRoutes, authHandler, auth)

	// Signed download links carry their own token
	apiV1.Get("/idle-resources/exports/:exportId/download", middleware.NoStore(), transferHandler.Download)

	// Idle resource routes (Authenticated users)
	resourceRoutes := apiV1.Group("/idle-resources", auth)
	setupIdleResourceRoutes(resourceRoutes, resourceHandler, bulkHandler, transferHandler)

	// Organization routes
	setupOrganizationRoutes(apiV1, orgHandler, auth)

	// Master data routes
	apiV1.Get("/master-data", auth, middleware.PrivateCache(5*time.Minute), masterHandler.GetMasterData)

	// Dashboard routes (Manager or Admin)
	dashboard := apiV1.Group("/dashboard", auth, middleware.ManagerOrAdmin())
	dashboard.Get("/", dashboardHandler.GetOverview)
	dashboard.Get("/departments/:id", dashboardHandler.GetDepartmentDashboard)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users", auth, middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), h.Login)
	router.Post("/validate", h.Validate)
	router.Post("/refresh", middleware.AuthRateLimiter(), h.Refresh)

	// Protected routes
	router.Post("/logout", auth, h.Logout)
	router.Get("/me", auth, h.Me)
	router.Post("/change-password", auth, middleware.StrictRateLimiter(), h.ChangePassword)
	router.Post("/sessions/cleanup", auth, middleware.AdminOnly(), h.CleanupSessions)
}

// setupIdleResourceRoutes configures idle resource routes; static paths come before /:id
func setupIdleResourceRoutes(
	router fiber.Router,
	h *handlers.IdleResourceHandler,
	bulk *handlers.BulkHandler,
	transfer *handlers.TransferHandler,
) {
	writer := middleware.ManagerOrAdmin()

	router.Get("/", h.List)
	router.Post("/", writer, h.Create)

	router.Post("/search", h.Search)
	router.Post("/validate", h.Validate)
	router.Post("/export", middleware.StrictRateLimiter(), transfer.Export)
	router.Post("/import", writer, middleware.StrictRateLimiter(), transfer.Import)

	// Bulk operations
	router.Post("/bulk", writer, bulk.Create)
	router.Patch("/bulk", writer, bulk.Update)
	router.Post("/bulk/status", writer, bulk.UpdateStatus)
	router.Post("/bulk/delete", writer, bulk.Delete)
	router.Post("/bulk/validate", bulk.Validate)

	router.Get("/:id", h.Get)
	router.Put("/:id", writer, h.Update)
	router.Delete("/:id", writer, h.Delete)
	router.Get("/:id/history", h.History)
	router.Post("/:id/availability-check", h.CheckAvailability)
	router.Get("/:id/allocations", h.ListAllocations)
	router.Post("/:id/allocations", writer, h.Allocate)
	router.Get("/:id/skills", h.ListSkills)
	router.Post("/:id/skills", writer, h.AddSkill)
	router.Delete("/:id/skills/:skillId", writer, h.RemoveSkill)
}

// setupOrganizationRoutes configures employee and department routes
func setupOrganizationRoutes(router fiber.Router, h *handlers.OrganizationHandler, auth fiber.Handler) {
	employees := router.Group("/employees", auth)
	employees.Get("/", h.ListEmployees)
	employees.Post("/", middleware.ManagerOrAdmin(), h.CreateEmployee)
	employees.Get("/:id", h.GetEmployee)
	employees.Put("/:id", middleware.ManagerOrAdmin(), h.UpdateEmployee)

	departments := router.Group("/departments", auth)
	departments.Get("/", h.ListDepartments)
	departments.Post("/", middleware.AdminOnly(), h.CreateDepartment)
	departments.Put("/:id", middleware.AdminOnly(), h.UpdateDepartment)
	departments.Delete("/:id", middleware.AdminOnly(), h.DeactivateDepartment)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, h *handlers.UserHandler) {
	router.Get("/", h.ListUsers)
	router.Post("/", h.CreateUser)
	router.Get("/:id", h.GetUser)
	router.Put("/:id", h.UpdateUser)
}
