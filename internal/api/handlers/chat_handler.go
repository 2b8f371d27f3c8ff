package handlers

import (
	"context"
	"time"

	"clinic-assistant/internal/dto"
	"clinic-assistant/internal/models"
	"clinic-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionHeader = "X-Chat-Session"

type ChatProcessor interface {
	ProcessMessage(ctx context.Context, userMessage, sessionID string, patientID *int64) *dto.ChatResult
	Menu() string
}

type ConversationHistory interface {
	ListBySession(ctx context.Context, sessionID string, patientID int64, limit int) ([]*models.ConversationLog, error)
}

type ChatHandler struct {
	chatService ChatProcessor
	history     ConversationHistory
	logger      *zap.Logger
}

func NewChatHandler(chatService ChatProcessor, history ConversationHistory, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		history:     history,
		logger:      logger,
	}
}

// SendMessage godoc
// @Summary Send a message to the assistant
// @Description Classifies the message and returns a canned reply. A bearer token is optional; without it the caller is a guest.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat message"
// @Success 200 {object} dto.ChatResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/chat [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	req, err := parseBody[dto.ChatRequest](c)
	if err != nil {
		return err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.Get(sessionHeader)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result := h.chatService.ProcessMessage(c.UserContext(), req.Message, sessionID, middleware.PatientID(c))
	c.Set(sessionHeader, result.SessionID)
	return c.JSON(result)
}

// Menu godoc
// @Summary Interactive menu
// @Tags chat
// @Produce json
// @Success 200 {object} dto.MenuResponse
// @Router /api/v1/chat/menu [get]
func (h *ChatHandler) Menu(c *fiber.Ctx) error {
	return c.JSON(dto.MenuResponse{Menu: h.chatService.Menu()})
}

// History godoc
// @Summary Conversation history of a session
// @Description Returns the caller's own messages in the given session.
// @Tags chat
// @Produce json
// @Param session_id query string true "Session ID"
// @Param limit query int false "Limit" default(50)
// @Security Bearer
// @Success 200 {array} dto.ConversationEntryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/chat/history [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	patientID := middleware.PatientID(c)
	if patientID == nil {
		return fiber.ErrUnauthorized
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	entries, err := h.history.ListBySession(c.UserContext(), sessionID, *patientID, c.QueryInt("limit", 50))
	if err != nil {
		h.logger.Error("Failed to load conversation history", zap.String("session_id", sessionID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load history")
	}

	resp := make([]dto.ConversationEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.ConversationEntryResponse{
			ID:             e.ID,
			UserMessage:    e.UserMessage,
			BotResponse:    e.BotResponse,
			MatchedScopeID: e.MatchedScopeID,
			IsRestricted:   e.IsRestricted,
			CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(resp)
}
