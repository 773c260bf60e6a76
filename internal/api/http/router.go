package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Tickets  *handlers.TicketsHandler
	Messages *handlers.MessagesHandler
	Assist   *handlers.AssistHandler
	Identity *auth.IdentityMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Get("/users", cfg.Users.ListUsers)
	app.Get("/users/:id", cfg.Users.GetUser)

	identified := cfg.Identity.Require
	optional := cfg.Identity.Optional
	agentOnly := auth.RequireAgent()

	tickets := app.Group("/tickets")
	tickets.Get("/", identified, cfg.Tickets.ListTickets)
	tickets.Post("/", optional, cfg.Tickets.CreateTicket)
	tickets.Get("/:id", identified, cfg.Tickets.GetTicket)
	tickets.Put("/:id/status", optional, cfg.Tickets.ChangeStatus)
	tickets.Get("/:id/history", identified, agentOnly, cfg.Tickets.ListHistory)

	tickets.Get("/:id/messages", identified, cfg.Messages.ListMessages)
	tickets.Post("/:id/messages", optional, cfg.Messages.AppendMessage)

	tickets.Post("/:id/analyze", identified, agentOnly, cfg.Assist.Analyze)
	tickets.Post("/:id/draft-reply", identified, agentOnly, cfg.Assist.DraftReply)
}
