package service

import (
	"context"
	"sort"
	"strings"

	"clinic-assistant/internal/models"

	"go.uber.org/zap"
)

type ScopeMatcher struct {
	store  ScopeStore
	logger *zap.Logger
}

func NewScopeMatcher(store ScopeStore, logger *zap.Logger) *ScopeMatcher {
	return &ScopeMatcher{
		store:  store,
		logger: logger,
	}
}

// Match scores every eligible rule by the number of its keywords found in
// the message and returns the best one, or nil when nothing scored.
//
// Rules are visited by priority descending and a rule only takes over on a
// strictly higher score, so on equal scores the higher priority rule wins.
// Login-gated rules are not scored at all for guests.
func (m *ScopeMatcher) Match(ctx context.Context, message string, isLoggedIn bool) *models.ScopeRule {
	rules, err := m.store.ListActive(ctx)
	if err != nil {
		m.logger.Warn("Scope lookup failed, falling back to menu", zap.Error(err))
		return nil
	}

	ordered := make([]*models.ScopeRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	lowered := strings.ToLower(message)
	var (
		best      *models.ScopeRule
		bestScore int
	)
	for _, rule := range ordered {
		if rule.RequiresLogin && !isLoggedIn {
			continue
		}
		score := keywordHits(lowered, rule.Keywords)
		if score > bestScore {
			best, bestScore = rule, score
		}
	}

	if best != nil {
		m.logger.Debug("Scope matched",
			zap.Int64("scope_id", best.ID),
			zap.String("topic", best.Topic),
			zap.Int("score", bestScore),
		)
	}
	return best
}

// keywordHits counts distinct keywords that occur in the lowered message.
func keywordHits(lowered string, keywords []string) int {
	hits := 0
	seen := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}
		if strings.Contains(lowered, keyword) {
			hits++
		}
	}
	return hits
}
