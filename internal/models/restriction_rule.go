package models

import "fmt"

// RestrictionRule is a topic the assistant refuses to discuss.
type RestrictionRule struct {
	ID                int64    `db:"id" json:"id"`
	TopicName         string   `db:"topic_name" json:"topic_name"`
	Keywords          []string `db:"keywords" json:"keywords"`
	RestrictionReason string   `db:"restriction_reason" json:"restriction_reason"`
	RedirectMessage   string   `db:"redirect_message" json:"redirect_message"`
	Severity          int      `db:"severity" json:"severity"`
	LogAttempt        bool     `db:"log_attempt" json:"log_attempt"`
	IsActive          bool     `db:"is_active" json:"is_active"`
}

func (r *RestrictionRule) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: restriction rule id %d", ErrInvalidRule, r.ID)
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("%w: restriction rule %d has no keywords", ErrInvalidRule, r.ID)
	}
	if r.RedirectMessage == "" {
		return fmt.Errorf("%w: restriction rule %d has no redirect message", ErrInvalidRule, r.ID)
	}
	return nil
}
