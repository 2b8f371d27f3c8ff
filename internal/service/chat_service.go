package service

import (
	"context"
	"strings"

	"clinic-assistant/internal/dto"
	"clinic-assistant/internal/models"
	"clinic-assistant/pkg/config"
	"clinic-assistant/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatService struct {
	restrictions  *RestrictionFilter
	menu          *MenuResolver
	scopes        *ScopeMatcher
	composer      *ResponseComposer
	conversations *ConversationLogger
	config        *config.ChatConfig
	logger        *zap.Logger
}

func NewChatService(
	restrictionStore RestrictionStore,
	scopeStore ScopeStore,
	conversationStore ConversationStore,
	cfg *config.ChatConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		restrictions:  NewRestrictionFilter(restrictionStore, logger),
		menu:          NewMenuResolver(),
		scopes:        NewScopeMatcher(scopeStore, logger),
		composer:      NewResponseComposer(),
		conversations: NewConversationLogger(conversationStore, logger),
		config:        cfg,
		logger:        logger,
	}
}

// ProcessMessage classifies one patient message and records it. It always
// returns a well-formed result; patientID nil means a guest.
//
// Empty messages are answered with an apology and are not logged. Every
// other message is logged exactly once, whichever stage produced the reply.
func (s *ChatService) ProcessMessage(ctx context.Context, userMessage, sessionID string, patientID *int64) (result *dto.ChatResult) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := logger.ForChat(s.logger, sessionID, patientID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Chat processing panicked", zap.Any("panic", r), zap.Stack("stack"))
			result = newResult(Reply{
				Text:     FailureReply,
				State:    StateFailed,
				Topic:    generalScope,
				Category: generalScope,
			}, sessionID, nil)
		}
	}()

	message := strings.TrimSpace(sanitizeUTF8(userMessage))
	if message == "" {
		log.Debug("Rejected empty message")
		return newResult(Reply{
			Text:     EmptyMessageReply,
			State:    StateRejected,
			Topic:    generalScope,
			Category: generalScope,
		}, sessionID, nil)
	}

	isLoggedIn := patientID != nil
	reply := s.composer.Compose(s.classify(ctx, message, isLoggedIn), isLoggedIn)

	// Only the stored copy is capped; classification always sees the whole message.
	logID := s.conversations.Log(ctx, &models.ConversationLog{
		PatientID:         patientID,
		SessionID:         sessionID,
		UserMessage:       truncateRunes(message, s.config.MaxMessageLength),
		BotResponse:       reply.Text,
		MatchedScopeID:    reply.ScopeID,
		IsRestricted:      reply.IsRestricted,
		RestrictionReason: reply.RestrictionReason,
	})

	log.Info("Message processed",
		zap.String("state", string(reply.State)),
		zap.Int64p("scope_id", reply.ScopeID),
		zap.Bool("is_restricted", reply.IsRestricted),
		zap.Bool("logged_in", isLoggedIn),
		zap.Int64p("log_id", logID),
	)

	return newResult(reply, sessionID, logID)
}

// classify runs the stages in order and stops at the first that decides
// the reply: restrictions, then menu shortcuts, then scope matching.
func (s *ChatService) classify(ctx context.Context, message string, isLoggedIn bool) Classification {
	cls := Classification{
		Restriction: s.restrictions.CheckRestrictions(ctx, message),
		FailClosed:  s.config.RestrictionFailClosed,
	}
	if cls.Restriction.Matched || (cls.Restriction.LookupFailed && cls.FailClosed) {
		return cls
	}

	if cls.Menu = s.menu.Resolve(message, isLoggedIn); cls.Menu != nil {
		return cls
	}

	cls.Scope = s.scopes.Match(ctx, message, isLoggedIn)
	return cls
}

// Menu returns the interactive menu text.
func (s *ChatService) Menu() string {
	return InteractiveMenu
}

func newResult(reply Reply, sessionID string, logID *int64) *dto.ChatResult {
	return &dto.ChatResult{
		Reply:             reply.Text,
		MatchedScope:      reply.Topic,
		ScopeCategory:     reply.Category,
		IsRestricted:      reply.IsRestricted,
		RestrictionReason: reply.RestrictionReason,
		LogID:             logID,
		ScopeID:           reply.ScopeID,
		SessionID:         sessionID,
		State:             string(reply.State),
	}
}
