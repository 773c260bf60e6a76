package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	queries *service.TicketQueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, queries *service.TicketQueryService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, queries: queries}
}

// ListTickets GET /tickets?status=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller identity required")
	}
	filter, err := policy.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return apperrors.NewInvalidInput("invalid status filter", map[string]any{"status": c.Query("status")})
	}
	tickets, err := h.queries.ListTickets(c.UserContext(), principal.Viewer(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	customerID := strings.TrimSpace(req.UserID)
	if principal, ok := auth.PrincipalFromContext(c); ok {
		switch {
		case customerID == "":
			customerID = principal.User.ID
		case customerID != principal.User.ID && !principal.User.IsAgent():
			return apperrors.NewForbidden("customers can only open tickets for themselves")
		}
	}
	if customerID == "" {
		return apperrors.NewInvalidInput("userId is required", map[string]any{"field": "userId"})
	}

	if req.Priority != nil {
		p := domain.TicketPriority(strings.ToUpper(strings.TrimSpace(string(*req.Priority))))
		if p == "" {
			req.Priority = nil
		} else {
			req.Priority = &p
		}
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketCreateInput{
		CustomerID:  customerID,
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller identity required")
	}
	ticket, err := h.tickets.GetTicketFor(c.UserContext(), principal.Viewer(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ChangeStatus PUT /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))

	var actor *domain.User
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = principal.User
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), c.Params("id"), status, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	history, err := h.tickets.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketHistoryList(history)})
}
