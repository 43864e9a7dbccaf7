package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-registry/internal/api/http/handlers"
	"github.com/spec-kit/member-registry/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Members        *handlers.MembersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The authentication gate runs on every
// request; only the members group carries the authorization stage that turns
// a missing principal into a 401.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/token", cfg.Auth.Token)

	users := app.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Put("/update-password", cfg.Users.UpdatePassword)

	members := app.Group("/api/v1/members", auth.RequireAuthenticated())
	members.Post("/", cfg.Members.Create)
	members.Get("/", cfg.Members.List)
	members.Get("/:id", cfg.Members.Get)
	members.Delete("/:id", cfg.Members.Delete)
	members.Patch("/status/:id", cfg.Members.ChangeStatus)
}
