package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// MessagesHandler manages ticket thread endpoints.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

// ListMessages GET /tickets/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller identity required")
	}
	msgs, err := h.messages.ListMessages(c.UserContext(), principal.Viewer(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageList(msgs)})
}

// AppendMessage POST /tickets/:id/messages.
func (h *MessagesHandler) AppendMessage(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	senderID := strings.TrimSpace(req.SenderID)
	if principal, ok := auth.PrincipalFromContext(c); ok {
		switch {
		case senderID == "":
			senderID = principal.User.ID
		case senderID != principal.User.ID:
			return apperrors.NewForbidden("senderId must match the caller")
		}
	}
	if senderID == "" {
		return apperrors.NewInvalidInput("senderId is required", map[string]any{"field": "senderId"})
	}

	msg, err := h.messages.AppendMessage(c.UserContext(), service.MessageAppendInput{
		TicketID:       c.Params("id"),
		SenderID:       senderID,
		Content:        req.Content,
		IsInternalNote: req.IsInternalNote,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}
