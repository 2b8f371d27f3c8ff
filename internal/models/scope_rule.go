package models

import (
	"errors"
	"fmt"
)

var ErrInvalidRule = errors.New("invalid rule")

type ResponseType string

const (
	ResponseTypeInformational ResponseType = "informational"
	ResponseTypeGuidance      ResponseType = "guidance"
	ResponseTypeRedirect      ResponseType = "redirect"
)

// ScopeRule is a topic the assistant answers from a canned template.
type ScopeRule struct {
	ID                  int64        `db:"id" json:"id"`
	Category            string       `db:"category" json:"category"`
	Topic               string       `db:"topic" json:"topic"`
	Keywords            []string     `db:"keywords" json:"keywords"`
	AllowedResponseType ResponseType `db:"allowed_response_type" json:"allowed_response_type"`
	ResponseTemplate    string       `db:"response_template" json:"response_template"`
	MaxDetailLevel      int          `db:"max_detail_level" json:"max_detail_level"`
	RequiresLogin       bool         `db:"requires_login" json:"requires_login"`
	Priority            int          `db:"priority" json:"priority"`
	IsActive            bool         `db:"is_active" json:"is_active"`
}

func (r *ScopeRule) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: scope rule id %d", ErrInvalidRule, r.ID)
	}
	if r.Topic == "" {
		return fmt.Errorf("%w: scope rule %d has no topic", ErrInvalidRule, r.ID)
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("%w: scope rule %d has no keywords", ErrInvalidRule, r.ID)
	}
	switch r.AllowedResponseType {
	case ResponseTypeInformational, ResponseTypeGuidance, ResponseTypeRedirect:
	case "":
		r.AllowedResponseType = ResponseTypeInformational
	default:
		return fmt.Errorf("%w: scope rule %d response type %q", ErrInvalidRule, r.ID, r.AllowedResponseType)
	}
	return nil
}
