package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// AssistHandler exposes agent-only AI helpers.
type AssistHandler struct {
	assist *service.AssistService
}

// NewAssistHandler constructs handler.
func NewAssistHandler(assist *service.AssistService) *AssistHandler {
	return &AssistHandler{assist: assist}
}

// Analyze POST /tickets/:id/analyze.
func (h *AssistHandler) Analyze(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller identity required")
	}
	outcome, err := h.assist.Reanalyze(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAnalysisResponse(outcome.Ticket, outcome.Result)})
}

// DraftReply POST /tickets/:id/draft-reply.
func (h *AssistHandler) DraftReply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller identity required")
	}
	reply, err := h.assist.DraftReply(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftReplyResponse(reply)})
}
