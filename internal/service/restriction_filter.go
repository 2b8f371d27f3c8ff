package service

import (
	"context"
	"sort"
	"strings"

	"clinic-assistant/internal/models"

	"go.uber.org/zap"
)

type RestrictionMatch struct {
	Matched      bool
	Rule         *models.RestrictionRule
	// LookupFailed is set when the rule set could not be read.
	LookupFailed bool
}

type RestrictionFilter struct {
	store  RestrictionStore
	logger *zap.Logger
}

func NewRestrictionFilter(store RestrictionStore, logger *zap.Logger) *RestrictionFilter {
	return &RestrictionFilter{
		store:  store,
		logger: logger,
	}
}

// CheckRestrictions returns the first rule, in severity order, that has a
// keyword contained in the message. A store failure is reported as no match.
func (f *RestrictionFilter) CheckRestrictions(ctx context.Context, message string) RestrictionMatch {
	rules, err := f.store.ListActive(ctx)
	if err != nil {
		f.logger.Warn("Restriction lookup failed, continuing without restrictions", zap.Error(err))
		return RestrictionMatch{LookupFailed: true}
	}

	ordered := make([]*models.RestrictionRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Severity > ordered[j].Severity
	})

	lowered := strings.ToLower(message)
	for _, rule := range ordered {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(lowered, keyword) {
				f.logger.Debug("Restriction matched",
					zap.Int64("restriction_id", rule.ID),
					zap.String("keyword", keyword),
					zap.Int("severity", rule.Severity),
				)
				return RestrictionMatch{Matched: true, Rule: rule}
			}
		}
	}

	return RestrictionMatch{}
}
