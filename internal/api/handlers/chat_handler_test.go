package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-assistant/internal/dto"
	"clinic-assistant/internal/models"
	"clinic-assistant/pkg/auth"
	"clinic-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingProcessor struct {
	message   string
	sessionID string
	patientID *int64
}

func (p *recordingProcessor) ProcessMessage(ctx context.Context, userMessage, sessionID string, patientID *int64) *dto.ChatResult {
	p.message, p.sessionID, p.patientID = userMessage, sessionID, patientID
	return &dto.ChatResult{Reply: "ok", MatchedScope: "General", ScopeCategory: "General", SessionID: sessionID}
}

func (p *recordingProcessor) Menu() string { return "menu text" }

type fakeHistory struct {
	entries   []*models.ConversationLog
	patientID int64
	limit     int
}

func (h *fakeHistory) ListBySession(ctx context.Context, sessionID string, patientID int64, limit int) ([]*models.ConversationLog, error) {
	h.patientID, h.limit = patientID, limit
	var out []*models.ConversationLog
	for _, e := range h.entries {
		if e.SessionID == sessionID && e.PatientID != nil && *e.PatientID == patientID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func newChatApp(p ChatProcessor, history ConversationHistory, jwtManager *auth.JWTManager) *fiber.App {
	h := NewChatHandler(p, history, zap.NewNop())
	app := fiber.New()
	chat := app.Group("/api/v1/chat", middleware.OptionalAuth(jwtManager, zap.NewNop()))
	chat.Post("", h.SendMessage)
	chat.Get("/menu", h.Menu)
	chat.Get("/history", h.History)
	return app
}

func TestSendMessage_GuestGetsGeneratedSession(t *testing.T) {
	p := &recordingProcessor{}
	app := newChatApp(p, &fakeHistory{}, auth.NewJWTManager("s", time.Hour, time.Hour))

	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"message":"headache"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "headache", p.message)
	assert.Nil(t, p.patientID)
	assert.NotEmpty(t, p.sessionID)
	assert.Equal(t, p.sessionID, resp.Header.Get("X-Chat-Session"))

	var result dto.ChatResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Reply)
}

func TestSendMessage_AuthenticatedPatient(t *testing.T) {
	jwtManager := auth.NewJWTManager("s", time.Hour, time.Hour)
	token, err := jwtManager.GenerateToken(77, "p@example.com", "P")
	require.NoError(t, err)

	p := &recordingProcessor{}
	app := newChatApp(p, &fakeHistory{}, jwtManager)

	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"message":"1","session_id":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, p.patientID)
	assert.Equal(t, int64(77), *p.patientID)
	assert.Equal(t, "abc", p.sessionID)
}

func TestSendMessage_BadBody(t *testing.T) {
	app := newChatApp(&recordingProcessor{}, &fakeHistory{}, auth.NewJWTManager("s", time.Hour, time.Hour))

	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHistory_OnlyOwnEntries(t *testing.T) {
	jwtManager := auth.NewJWTManager("s", time.Hour, time.Hour)
	token, err := jwtManager.GenerateToken(5, "", "")
	require.NoError(t, err)

	own, other := int64(5), int64(6)
	history := &fakeHistory{entries: []*models.ConversationLog{
		{ID: 1, SessionID: "s1", PatientID: &other, UserMessage: "theirs"},
		{ID: 2, SessionID: "s1", PatientID: &other, UserMessage: "theirs again"},
		{ID: 3, SessionID: "s1", UserMessage: "guest"},
		{ID: 4, SessionID: "s1", PatientID: &own, UserMessage: "mine"},
		{ID: 5, SessionID: "s1", PatientID: &own, UserMessage: "mine too"},
	}}
	app := newChatApp(&recordingProcessor{}, history, jwtManager)

	req := httptest.NewRequest("GET", "/api/v1/chat/history?session_id=s1&limit=2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int64(5), history.patientID)
	assert.Equal(t, 2, history.limit)

	var entries []dto.ConversationEntryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "mine", entries[0].UserMessage)
	assert.Equal(t, "mine too", entries[1].UserMessage)

	guestReq := httptest.NewRequest("GET", "/api/v1/chat/history?session_id=s1", nil)
	guestResp, err := app.Test(guestReq)
	require.NoError(t, err)
	guestResp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, guestResp.StatusCode)
}

func TestMenu(t *testing.T) {
	app := newChatApp(&recordingProcessor{}, &fakeHistory{}, auth.NewJWTManager("s", time.Hour, time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/chat/menu", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var menu dto.MenuResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&menu))
	assert.Equal(t, "menu text", menu.Menu)
}
