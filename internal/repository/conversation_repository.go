package repository

import (
	"context"

	"clinic-assistant/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const conversationTable = "chatbot_conversations"

type ConversationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConversationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one conversation row and returns its id. created_at is
// assigned by the database.
func (r *ConversationRepository) Append(ctx context.Context, entry *models.ConversationLog) (int64, error) {
	sql, args, err := appendConversationQuery(entry).ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id, &entry.CreatedAt); err != nil {
		return 0, err
	}
	entry.ID = id
	return id, nil
}

// ListBySession returns a patient's most recent entries in a session, in
// chronological order. Rows of other patients and guests are never returned.
func (r *ConversationRepository) ListBySession(ctx context.Context, sessionID string, patientID int64, limit int) ([]*models.ConversationLog, error) {
	sql, args, err := listBySessionQuery(sessionID, patientID, limit).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ConversationLog
	for rows.Next() {
		var e models.ConversationLog
		if err := rows.Scan(
			&e.ID, &e.PatientID, &e.SessionID, &e.UserMessage, &e.BotResponse,
			&e.MatchedScopeID, &e.IsRestricted, &e.RestrictionReason, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func appendConversationQuery(entry *models.ConversationLog) squirrel.InsertBuilder {
	return squirrel.Insert(conversationTable).
		Columns("patient_id", "session_id", "user_message", "bot_response", "matched_scope_id", "is_restricted", "restriction_reason").
		Values(entry.PatientID, entry.SessionID, entry.UserMessage, entry.BotResponse, entry.MatchedScopeID, entry.IsRestricted, entry.RestrictionReason).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)
}

func listBySessionQuery(sessionID string, patientID int64, limit int) squirrel.SelectBuilder {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return squirrel.Select("id", "patient_id", "session_id", "user_message", "bot_response",
		"matched_scope_id", "is_restricted", "restriction_reason", "created_at").
		From(conversationTable).
		Where(squirrel.Eq{"session_id": sessionID, "patient_id": patientID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
}
