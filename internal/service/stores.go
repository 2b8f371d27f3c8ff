package service

import (
	"context"

	"clinic-assistant/internal/models"
)

// RestrictionStore yields active restriction rules, severity descending.
type RestrictionStore interface {
	ListActive(ctx context.Context) ([]*models.RestrictionRule, error)
}

// ScopeStore yields active scope rules, priority descending.
type ScopeStore interface {
	ListActive(ctx context.Context) ([]*models.ScopeRule, error)
}

type ConversationStore interface {
	Append(ctx context.Context, entry *models.ConversationLog) (int64, error)
}
