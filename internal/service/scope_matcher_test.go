package service

import (
	"context"
	"testing"

	"clinic-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func match(t *testing.T, rules []*models.ScopeRule, message string, loggedIn bool) *models.ScopeRule {
	t.Helper()
	m := NewScopeMatcher(&fakeScopeStore{rules: rules}, zap.NewNop())
	return m.Match(context.Background(), message, loggedIn)
}

func TestScopeMatcher_HigherHitCountBeatsPriority(t *testing.T) {
	rules := []*models.ScopeRule{
		scopeRule(1, "fever", 100),
		scopeRule(2, "fever,cough,throat", 1),
	}

	got := match(t, rules, "fever and cough with a sore throat", false)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestScopeMatcher_EqualHitsPreferHigherPriority(t *testing.T) {
	rules := []*models.ScopeRule{
		scopeRule(1, "fever", 1),
		scopeRule(2, "fever", 10),
	}

	got := match(t, rules, "I have a fever", false)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestScopeMatcher_EqualHitsEqualPriorityFirstSeenWins(t *testing.T) {
	rules := []*models.ScopeRule{
		scopeRule(4, "rash", 5),
		scopeRule(9, "rash", 5),
	}

	got := match(t, rules, "a rash on my arm", false)
	require.NotNil(t, got)
	assert.Equal(t, int64(4), got.ID)
}

func TestScopeMatcher_LoginGatedRulesInvisibleToGuests(t *testing.T) {
	gated := scopeRule(1, "lab,results,blood", 10)
	gated.RequiresLogin = true
	open := scopeRule(2, "lab", 1)

	got := match(t, []*models.ScopeRule{gated, open}, "my blood lab results", false)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)

	got = match(t, []*models.ScopeRule{gated, open}, "my blood lab results", true)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	assert.Nil(t, match(t, []*models.ScopeRule{gated}, "my blood lab results", false))
}

func TestScopeMatcher_ZeroHitsNoMatch(t *testing.T) {
	assert.Nil(t, match(t, []*models.ScopeRule{scopeRule(1, "fever", 1)}, "what is the weather", true))
	assert.Nil(t, match(t, nil, "fever", true))
}

func TestScopeMatcher_StoreFailureNoMatch(t *testing.T) {
	m := NewScopeMatcher(&fakeScopeStore{err: errStoreDown}, zap.NewNop())
	assert.Nil(t, m.Match(context.Background(), "fever", true))
}

func TestKeywordHits_CountsDistinctTokens(t *testing.T) {
	assert.Equal(t, 2, keywordHits("pain pain headache", []string{"pain", "headache", "pain", ""}))
	assert.Equal(t, 0, keywordHits("hello", []string{"bye"}))
}
