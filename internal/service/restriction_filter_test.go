package service

import (
	"context"
	"testing"

	"clinic-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRestrictionFilter_HighestSeverityWins(t *testing.T) {
	store := &fakeRestrictionStore{rules: []*models.RestrictionRule{
		restrictionRule(1, "dosage", 1, "Ask your pharmacist."),
		restrictionRule(2, "overdose, dosage", 5, "Call emergency services."),
	}}
	f := NewRestrictionFilter(store, zap.NewNop())

	match := f.CheckRestrictions(context.Background(), "What DOSAGE is safe?")
	require.True(t, match.Matched)
	assert.Equal(t, int64(2), match.Rule.ID)
}

func TestRestrictionFilter_EqualSeverityKeepsStoreOrder(t *testing.T) {
	store := &fakeRestrictionStore{rules: []*models.RestrictionRule{
		restrictionRule(7, "pills", 3, "first"),
		restrictionRule(3, "pills", 3, "second"),
	}}
	f := NewRestrictionFilter(store, zap.NewNop())

	match := f.CheckRestrictions(context.Background(), "how many pills")
	require.True(t, match.Matched)
	assert.Equal(t, "first", match.Rule.RedirectMessage)
}

func TestRestrictionFilter_SubstringCaseInsensitive(t *testing.T) {
	store := &fakeRestrictionStore{rules: []*models.RestrictionRule{
		restrictionRule(1, " Suicide ", 9, "Please contact emergency services."),
	}}
	f := NewRestrictionFilter(store, zap.NewNop())

	assert.True(t, f.CheckRestrictions(context.Background(), "thoughts of SUICIDEs").Matched)
	assert.False(t, f.CheckRestrictions(context.Background(), "I have a headache").Matched)
}

func TestRestrictionFilter_StoreFailureIsNoMatch(t *testing.T) {
	f := NewRestrictionFilter(&fakeRestrictionStore{err: errStoreDown}, zap.NewNop())

	match := f.CheckRestrictions(context.Background(), "anything")
	assert.False(t, match.Matched)
	assert.Nil(t, match.Rule)
	assert.True(t, match.LookupFailed)
}

func TestRestrictionFilter_DoesNotReorderStoreSlice(t *testing.T) {
	rules := []*models.RestrictionRule{
		restrictionRule(1, "a", 1, "low"),
		restrictionRule(2, "b", 9, "high"),
	}
	f := NewRestrictionFilter(&fakeRestrictionStore{rules: rules}, zap.NewNop())

	f.CheckRestrictions(context.Background(), "zzz")
	assert.Equal(t, int64(1), rules[0].ID)
}
