package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miniinbox/inbox/internal/api/dto"
	"github.com/miniinbox/inbox/internal/apiclient"
	"github.com/miniinbox/inbox/internal/domain"
	"github.com/miniinbox/inbox/internal/editor"
	"github.com/miniinbox/inbox/internal/locale"
	"github.com/miniinbox/inbox/internal/persistence"
	"github.com/miniinbox/inbox/internal/service"
	"github.com/miniinbox/inbox/internal/session"
	apperrors "github.com/miniinbox/inbox/pkg/util"
)

// TicketsHandler serves the ticket list and the edit form.
type TicketsHandler struct {
	service *service.TicketService
	layout  *Layout
	logger  *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, layout *Layout, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{service: ticketService, layout: layout, logger: logger}
}

// ticketPage carries the optional banners of the detail view.
type ticketPage struct {
	alert  string
	notice string
	busy   bool
}

// List GET /tickets?q=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	loc := h.layout.Localizer(c)
	query := c.Query("q")
	data := fiber.Map{"Query": query}

	tickets, err := h.service.ListTickets(c.UserContext(), query)
	if err != nil {
		h.logger.Warn("load tickets", zap.Error(err))
		data["Error"] = loc.T("tickets_load_failed")
		c.Status(fiber.StatusBadGateway)
	} else {
		data["Rows"] = dto.NewTicketRows(tickets)
		data["Count"] = loc.Plural("ticket_count", len(tickets))
	}
	return h.layout.Render(c, loc, "tickets", "tickets_title", data)
}

// Show GET /tickets/:id. Every visit starts a fresh draft.
func (h *TicketsHandler) Show(c *fiber.Ctx) error {
	key, err := draftKey(c)
	if err != nil {
		return err
	}
	loc := h.layout.Localizer(c)

	ctl, err := h.service.OpenEditor(c.UserContext(), key)
	if err != nil {
		return h.loadFailed(c, loc, err)
	}
	return h.renderTicket(c, loc, ctl, ticketPage{})
}

// SetStatus POST /tickets/:id/status.
func (h *TicketsHandler) SetStatus(c *fiber.Ctx) error {
	key, err := draftKey(c)
	if err != nil {
		return err
	}
	status := domain.TicketStatus(c.FormValue("status"))
	ctl, err := h.service.SetDraftStatus(c.UserContext(), key, status)
	return h.afterEdit(c, ctl, err)
}

// SetPriority POST /tickets/:id/priority.
func (h *TicketsHandler) SetPriority(c *fiber.Ctx) error {
	key, err := draftKey(c)
	if err != nil {
		return err
	}
	priority := domain.TicketPriority(c.FormValue("priority"))
	ctl, err := h.service.SetDraftPriority(c.UserContext(), key, priority)
	return h.afterEdit(c, ctl, err)
}

// Save POST /tickets/:id/save. A failed save keeps the draft and shows a
// blocking alert so the user can retry.
func (h *TicketsHandler) Save(c *fiber.Ctx) error {
	key, err := draftKey(c)
	if err != nil {
		return err
	}
	loc := h.layout.Localizer(c)

	res, err := h.service.Save(c.UserContext(), key)
	if err != nil {
		if res.Editor == nil {
			return h.loadFailed(c, loc, err)
		}
		c.Status(fiber.StatusBadGateway)
		return h.renderTicket(c, loc, res.Editor, ticketPage{alert: loc.T("save_failed")})
	}

	page := ticketPage{busy: res.Busy}
	switch {
	case res.Busy:
		c.Status(fiber.StatusConflict)
		page.notice = loc.T("save_in_progress")
	case res.Saved:
		page.notice = loc.T("changes_saved")
	}
	return h.renderTicket(c, loc, res.Editor, page)
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	key, err := draftKey(c)
	if err != nil {
		return err
	}
	loc := h.layout.Localizer(c)

	res, err := h.service.Cancel(c.UserContext(), key)
	if err != nil {
		return h.loadFailed(c, loc, err)
	}
	page := ticketPage{busy: res.Busy}
	if res.Busy {
		c.Status(fiber.StatusConflict)
		page.notice = loc.T("save_in_progress")
	}
	return h.renderTicket(c, loc, res.Editor, page)
}

func (h *TicketsHandler) afterEdit(c *fiber.Ctx, ctl *editor.Controller, err error) error {
	loc := h.layout.Localizer(c)
	var invalid *editor.InvalidValueError
	if errors.As(err, &invalid) && ctl != nil {
		c.Status(fiber.StatusBadRequest)
		return h.renderTicket(c, loc, ctl, ticketPage{
			alert: loc.Format("invalid_value", map[string]any{"Field": invalid.Field, "Value": invalid.Value}),
		})
	}
	if err != nil {
		return h.loadFailed(c, loc, err)
	}
	return h.renderTicket(c, loc, ctl, ticketPage{})
}

func (h *TicketsHandler) renderTicket(c *fiber.Ctx, loc *locale.Localizer, ctl *editor.Controller, page ticketPage) error {
	data := fiber.Map{
		"Editor": dto.NewTicketEditor(ctl, page.busy),
		"Alert":  page.alert,
		"Notice": page.notice,
	}
	return h.layout.Render(c, loc, "ticket", "tickets_title", data)
}

// loadFailed renders the not-found state for unknown tickets and hands every
// other failure to the error middleware.
func (h *TicketsHandler) loadFailed(c *fiber.Ctx, loc *locale.Localizer, err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		c.Status(fiber.StatusNotFound)
		return h.layout.Render(c, loc, "ticket", "ticket_not_found", fiber.Map{"NotFound": true})
	}
	h.logger.Warn("load ticket", zap.String("path", c.Path()), zap.Error(err))
	return apperrors.MapError(err)
}

func draftKey(c *fiber.Ctx) (persistence.DraftKey, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return persistence.DraftKey{}, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	sessionID, ok := session.ID(c)
	if !ok {
		return persistence.DraftKey{}, apperrors.NewInternalError(errors.New("session middleware not installed"))
	}
	return persistence.DraftKey{SessionID: sessionID, TicketID: id}, nil
}
