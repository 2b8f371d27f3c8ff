package main

import (
	"bytes"
	"context"
	"testing"

	"clinic-assistant/internal/models"
	"clinic-assistant/internal/service"
	"clinic-assistant/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scopeListerFunc func(ctx context.Context) ([]*models.ScopeRule, error)

func (f scopeListerFunc) ListAll(ctx context.Context) ([]*models.ScopeRule, error) { return f(ctx) }

type restrictionListerFunc func(ctx context.Context) ([]*models.RestrictionRule, error)

func (f restrictionListerFunc) ListAll(ctx context.Context) ([]*models.RestrictionRule, error) {
	return f(ctx)
}

func TestListRules(t *testing.T) {
	scopes := scopeListerFunc(func(ctx context.Context) ([]*models.ScopeRule, error) {
		return []*models.ScopeRule{
			{ID: 3, Category: "Symptoms", Topic: "Headache", Keywords: []string{"headache", "migraine"}, Priority: 7, IsActive: true},
		}, nil
	})
	restrictions := restrictionListerFunc(func(ctx context.Context) ([]*models.RestrictionRule, error) {
		return []*models.RestrictionRule{{ID: 9, TopicName: "Diagnosis", Keywords: []string{"diagnose"}, Severity: 6}}, nil
	})

	var out bytes.Buffer
	require.NoError(t, listRules(context.Background(), &out, "scope", scopes, restrictions))
	assert.Equal(t, "3\tSymptoms\tHeadache\tpriority=7\tlogin=false\tactive=true\theadache,migraine\n", out.String())

	out.Reset()
	require.NoError(t, listRules(context.Background(), &out, "restriction", scopes, restrictions))
	assert.Equal(t, "9\tDiagnosis\tseverity=6\tactive=false\tdiagnose\n", out.String())

	err := listRules(context.Background(), &out, "bogus", scopes, restrictions)
	assert.ErrorContains(t, err, "unknown rule kind")
}

func TestCommandTree(t *testing.T) {
	classify := classifyCmd()
	assert.NotNil(t, classify.Flags().Lookup("session"))
	assert.NotNil(t, classify.Flags().Lookup("patient"))
	assert.Error(t, classify.Args(classify, nil))

	list, _, err := rulesCmd().Find([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, "scope", list.Flags().Lookup("kind").DefValue)

	invalidate, _, err := cacheCmd().Find([]string{"invalidate"})
	require.NoError(t, err)
	assert.Equal(t, "invalidate", invalidate.Name())
}

type noRestrictions struct{}

func (noRestrictions) ListActive(ctx context.Context) ([]*models.RestrictionRule, error) {
	return nil, nil
}

type noScopes struct{}

func (noScopes) ListActive(ctx context.Context) ([]*models.ScopeRule, error) { return nil, nil }

func TestDiscardConversations_LeavesLogIDEmpty(t *testing.T) {
	_, err := discardConversations{}.Append(context.Background(), &models.ConversationLog{})
	assert.ErrorIs(t, err, errLoggingDisabled)

	chat := service.NewChatService(noRestrictions{}, noScopes{}, discardConversations{},
		&config.ChatConfig{MaxMessageLength: 2000}, zap.NewNop())
	result := chat.ProcessMessage(context.Background(), "5", "s", nil)

	assert.Nil(t, result.LogID)
	assert.NotEmpty(t, result.Reply)
}
