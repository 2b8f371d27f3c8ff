package dto

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResult is returned for every processed message. Reply is never empty.
type ChatResult struct {
	Reply             string  `json:"reply"`
	MatchedScope      string  `json:"matched_scope"`
	ScopeCategory     string  `json:"scope_category"`
	IsRestricted      bool    `json:"is_restricted"`
	RestrictionReason *string `json:"restriction_reason"`
	LogID             *int64  `json:"log_id"`
	ScopeID           *int64  `json:"scope_id"`
	SessionID         string  `json:"session_id"`
	State             string  `json:"state"`
}

type MenuResponse struct {
	Menu string `json:"menu"`
}

type ConversationEntryResponse struct {
	ID             int64  `json:"id"`
	UserMessage    string `json:"user_message"`
	BotResponse    string `json:"bot_response"`
	MatchedScopeID *int64 `json:"matched_scope_id"`
	IsRestricted   bool   `json:"is_restricted"`
	CreatedAt      string `json:"created_at"`
}
