package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miniinbox/inbox/internal/service"
)

// DashboardHandler serves the metrics view.
type DashboardHandler struct {
	service *service.DashboardService
	layout  *Layout
	logger  *zap.Logger
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService, layout *Layout, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: dashboardService, layout: layout, logger: logger}
}

// Show GET /dashboard.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	loc := h.layout.Localizer(c)
	data := fiber.Map{}

	dashboard, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		h.logger.Warn("load metrics", zap.Error(err))
		data["Error"] = loc.T("metrics_load_failed")
		c.Status(fiber.StatusBadGateway)
	} else {
		data["Dashboard"] = dashboard
	}
	return h.layout.Render(c, loc, "dashboard", "dashboard_title", data)
}
