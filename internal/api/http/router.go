package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/miniinbox/inbox/internal/api/http/handlers"
	"github.com/miniinbox/inbox/internal/session"
	"github.com/miniinbox/inbox/web"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Dashboard  *handlers.DashboardHandler
	Tickets    *handlers.TicketsHandler
	Clock      *handlers.ClockHandler
	SessionTTL time.Duration
}

// RegisterRoutes wires HTTP routes. Probes, assets and the clock are served
// without a session.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   nethttp.FS(web.Static()),
		MaxAge: 3600,
	}))
	app.Get("/clock", cfg.Clock.Stream)

	pages := app.Group("", session.Middleware(cfg.SessionTTL))
	pages.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusFound)
	})
	pages.Get("/dashboard", cfg.Dashboard.Show)

	tickets := pages.Group("/tickets")
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Show)
	tickets.Post("/:id/status", cfg.Tickets.SetStatus)
	tickets.Post("/:id/priority", cfg.Tickets.SetPriority)
	tickets.Post("/:id/save", cfg.Tickets.Save)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)
}
