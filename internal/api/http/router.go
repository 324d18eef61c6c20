package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classroom-kit/student-records/internal/api/http/handlers"
	"github.com/classroom-kit/student-records/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	Students       *handlers.StudentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.Logout)

	students := app.Group("/students", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	students.Get("/", cfg.Students.List)
	students.Post("/", cfg.Students.Create)
	students.Get("/export", cfg.Students.Export)
	students.Post("/export/archive", cfg.Students.Archive)
	students.Get("/:id", cfg.Students.Get)
	students.Put("/:id", cfg.Students.Update)
	students.Delete("/:id", cfg.Students.Delete)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users/pending", cfg.Admin.ListPending)
	admin.Post("/users/:id/approve", cfg.Admin.Approve)
	admin.Delete("/users", cfg.Admin.DeleteUser)
}

// NewApp builds a fiber app with the shared error handler.
func NewApp(appName string, errorHandler fiber.ErrorHandler) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
}
