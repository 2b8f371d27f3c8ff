package service

import (
	"context"

	"clinic-assistant/internal/models"

	"go.uber.org/zap"
)

type ConversationLogger struct {
	store  ConversationStore
	logger *zap.Logger
}

func NewConversationLogger(store ConversationStore, logger *zap.Logger) *ConversationLogger {
	return &ConversationLogger{
		store:  store,
		logger: logger,
	}
}

// Log appends one audit row and returns its id. Failures are logged and
// reported as a nil id; they never affect the reply.
func (l *ConversationLogger) Log(ctx context.Context, entry *models.ConversationLog) *int64 {
	entry.UserMessage = sanitizeUTF8(entry.UserMessage)
	entry.BotResponse = sanitizeUTF8(entry.BotResponse)

	id, err := l.store.Append(ctx, entry)
	if err != nil {
		l.logger.Error("Failed to write conversation log",
			zap.String("session_id", entry.SessionID),
			zap.Bool("is_restricted", entry.IsRestricted),
			zap.Error(err),
		)
		return nil
	}
	return &id
}
