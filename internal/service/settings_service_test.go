package service

import (
	"testing"

	"github.com/solenne/roadmapper/config"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettingsService() SettingsService {
	cfg := &config.Config{}
	cfg.AI.DefaultModel = "gpt-4"
	cfg.AI.DefaultTemperature = 0.7
	cfg.AI.DefaultMaxTokens = 4096
	return NewSettingsService(cfg)
}

func TestSettingsService_Resolve_Defaults(t *testing.T) {
	svc := newTestSettingsService()

	resolved, err := svc.Resolve(ConfigOverride{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", resolved.Model)
	assert.InDelta(t, 0.7, resolved.Temperature, 0.001)
	assert.Equal(t, 4096, resolved.MaxTokens)
}

func TestSettingsService_Resolve_UnknownModelListed(t *testing.T) {
	svc := newTestSettingsService()

	model := "gpt-99"
	_, err := svc.Resolve(ConfigOverride{Model: &model})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "gpt-3.5-turbo")
	assert.Contains(t, err.Error(), "gpt-4-turbo")
}

func TestSettingsService_Resolve_BoundsRejected(t *testing.T) {
	svc := newTestSettingsService()

	temp := 1.5
	_, err := svc.Resolve(ConfigOverride{Temperature: &temp})
	assert.Error(t, err)

	tokens := 500
	_, err = svc.Resolve(ConfigOverride{MaxTokens: &tokens})
	assert.Error(t, err)

	penalty := 2.5
	_, err = svc.Resolve(ConfigOverride{PresencePenalty: &penalty})
	assert.Error(t, err)
}

func TestSettingsService_Resolve_MaxTokensClampedToModelWindow(t *testing.T) {
	svc := newTestSettingsService()

	model := "gpt-3.5-turbo"
	tokens := 8000
	resolved, err := svc.Resolve(ConfigOverride{Model: &model, MaxTokens: &tokens})
	require.NoError(t, err)
	assert.Equal(t, SupportedModels["gpt-3.5-turbo"].MaxTokens, resolved.MaxTokens)
}

func TestSettingsService_Resolve_PenaltyEdges(t *testing.T) {
	svc := newTestSettingsService()

	penalty := -2.0
	resolved, err := svc.Resolve(ConfigOverride{FrequencyPenalty: &penalty})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, resolved.FrequencyPenalty, 0.001)
}
