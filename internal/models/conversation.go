package models

import "time"

// ConversationLog is one audited exchange. Rows are append-only.
type ConversationLog struct {
	ID                int64     `db:"id"`
	PatientID         *int64    `db:"patient_id"`
	SessionID         string    `db:"session_id"`
	UserMessage       string    `db:"user_message"`
	BotResponse       string    `db:"bot_response"`
	MatchedScopeID    *int64    `db:"matched_scope_id"`
	IsRestricted      bool      `db:"is_restricted"`
	RestrictionReason *string   `db:"restriction_reason"`
	CreatedAt         time.Time `db:"created_at"`
}
