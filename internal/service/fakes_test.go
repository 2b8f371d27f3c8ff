package service

import (
	"context"
	"errors"
	"sync"

	"clinic-assistant/internal/models"
)

var errStoreDown = errors.New("store unavailable")

type fakeRestrictionStore struct {
	rules []*models.RestrictionRule
	err   error
	calls int
}

func (f *fakeRestrictionStore) ListActive(ctx context.Context) ([]*models.RestrictionRule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

type fakeScopeStore struct {
	rules []*models.ScopeRule
	err   error
	panic bool
	calls int
}

func (f *fakeScopeStore) ListActive(ctx context.Context) ([]*models.ScopeRule, error) {
	f.calls++
	if f.panic {
		panic("scope store exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

type fakeConversationStore struct {
	mu      sync.Mutex
	entries []*models.ConversationLog
	err     error
	nextID  int64
}

func (f *fakeConversationStore) Append(ctx context.Context, entry *models.ConversationLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, entry)
	return f.nextID, nil
}

func (f *fakeConversationStore) last() *models.ConversationLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}

func scopeRule(id int64, keywords string, priority int) *models.ScopeRule {
	return &models.ScopeRule{
		ID:               id,
		Category:         "Care",
		Topic:            "topic-" + keywords,
		Keywords:         models.ParseKeywords(keywords),
		ResponseTemplate: "template for " + keywords,
		Priority:         priority,
		IsActive:         true,
	}
}

func restrictionRule(id int64, keywords string, severity int, redirect string) *models.RestrictionRule {
	return &models.RestrictionRule{
		ID:                id,
		TopicName:         "restricted-" + keywords,
		Keywords:          models.ParseKeywords(keywords),
		RestrictionReason: "reason-" + keywords,
		RedirectMessage:   redirect,
		Severity:          severity,
		LogAttempt:        true,
		IsActive:          true,
	}
}

func int64p(v int64) *int64 { return &v }
