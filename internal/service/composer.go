package service

import (
	"clinic-assistant/internal/models"
)

const LoginRequiredReply = "This information is available to registered patients only.\n" +
	"Please log in to your patient account to continue."

const (
	EmptyMessageReply = "Sorry, I didn't catch that. Please type your question or reply with a number from the menu."
	FailureReply      = "Sorry, something went wrong while processing your message. Please try again in a moment."
)

// UnavailableReply is used only when restriction lookups fail closed.
const UnavailableReply = "I can't answer questions right now. If this is an emergency, please call your local emergency number."

const (
	generalScope            = "General"
	reasonLookupUnavailable = "restriction_lookup_unavailable"
)

type State string

const (
	StateRestricted  State = "restricted"
	StateMenuMatched State = "menu_matched"
	StateScope       State = "scope_matched"
	StateFallback    State = "fallback"
	StateRejected    State = "rejected"
	StateFailed      State = "failed"
)

// Classification collects what each stage found for one message.
// FailClosed turns a failed restriction lookup into a refusal.
type Classification struct {
	Restriction RestrictionMatch
	FailClosed  bool
	Menu        *MenuReply
	Scope       *models.ScopeRule
}

type Reply struct {
	Text              string
	State             State
	ScopeID           *int64
	Topic             string
	Category          string
	IsRestricted      bool
	RestrictionReason *string
}

type ResponseComposer struct{}

func NewResponseComposer() *ResponseComposer {
	return &ResponseComposer{}
}

// Compose applies, in order: restriction refusal, menu shortcut, scope
// template (withheld from guests on login-gated rules) and the fallback menu.
func (c *ResponseComposer) Compose(cls Classification, isLoggedIn bool) Reply {
	if cls.Restriction.Matched && cls.Restriction.Rule != nil {
		rule := cls.Restriction.Rule
		reason := rule.RestrictionReason
		return Reply{
			Text:              rule.RedirectMessage,
			State:             StateRestricted,
			Topic:             generalScope,
			Category:          generalScope,
			IsRestricted:      true,
			RestrictionReason: &reason,
		}
	}

	if cls.Restriction.LookupFailed && cls.FailClosed {
		reason := reasonLookupUnavailable
		return Reply{
			Text:              UnavailableReply,
			State:             StateRestricted,
			Topic:             generalScope,
			Category:          generalScope,
			IsRestricted:      true,
			RestrictionReason: &reason,
		}
	}

	if cls.Menu != nil {
		topic, category := cls.Menu.Topic, menuCategory
		if cls.Menu.ScopeID == nil {
			topic, category = generalScope, generalScope
		}
		return Reply{
			Text:     cls.Menu.Reply,
			State:    StateMenuMatched,
			ScopeID:  cls.Menu.ScopeID,
			Topic:    topic,
			Category: category,
		}
	}

	if rule := cls.Scope; rule != nil && rule.ResponseTemplate != "" {
		scopeID := rule.ID
		text := rule.ResponseTemplate
		if rule.RequiresLogin && !isLoggedIn {
			text = LoginRequiredReply
		}
		return Reply{
			Text:     text,
			State:    StateScope,
			ScopeID:  &scopeID,
			Topic:    rule.Topic,
			Category: rule.Category,
		}
	}

	return Fallback()
}

// Fallback is the reply used when nothing more specific applies.
func Fallback() Reply {
	return Reply{
		Text:     InteractiveMenu,
		State:    StateFallback,
		Topic:    generalScope,
		Category: generalScope,
	}
}
