package service

import (
	"sort"
	"strings"

	"github.com/solenne/roadmapper/config"
	"github.com/solenne/roadmapper/internal/apperror"
)

// ModelLimits describes one entry of the completion-model allow-list.
type ModelLimits struct {
	Name      string
	MaxTokens int
}

// SupportedModels is the fixed allow-list for generation requests.
var SupportedModels = map[string]ModelLimits{
	"gpt-4":         {Name: "GPT-4", MaxTokens: 8192},
	"gpt-4-turbo":   {Name: "GPT-4 Turbo", MaxTokens: 32768},
	"gpt-3.5-turbo": {Name: "GPT-3.5 Turbo", MaxTokens: 4096},
}

// GenerationConfig is a fully resolved configuration for one completion call.
type GenerationConfig struct {
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

// ConfigOverride carries caller-supplied overrides; nil fields keep defaults.
type ConfigOverride struct {
	Model            *string  `json:"model,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
}

// SettingsService resolves and validates generation configuration before any
// external call is made.
type SettingsService interface {
	DefaultConfiguration() GenerationConfig
	Resolve(override ConfigOverride) (GenerationConfig, error)
	Validate(cfg GenerationConfig) error
}

type settingsService struct {
	cfg *config.Config
}

func NewSettingsService(cfg *config.Config) SettingsService {
	return &settingsService{cfg: cfg}
}

func (s *settingsService) DefaultConfiguration() GenerationConfig {
	return GenerationConfig{
		Model:       s.cfg.AI.DefaultModel,
		Temperature: s.cfg.AI.DefaultTemperature,
		MaxTokens:   s.cfg.AI.DefaultMaxTokens,
	}
}

// Resolve merges override onto the defaults and validates the result.
// Invalid values fail fast; nothing is silently corrected except the final
// clamp of max_tokens to the selected model's window.
func (s *settingsService) Resolve(override ConfigOverride) (GenerationConfig, error) {
	resolved := s.DefaultConfiguration()

	if override.Model != nil {
		resolved.Model = *override.Model
	}
	if override.Temperature != nil {
		resolved.Temperature = *override.Temperature
	}
	if override.MaxTokens != nil {
		resolved.MaxTokens = *override.MaxTokens
	}
	if override.PresencePenalty != nil {
		resolved.PresencePenalty = *override.PresencePenalty
	}
	if override.FrequencyPenalty != nil {
		resolved.FrequencyPenalty = *override.FrequencyPenalty
	}

	if err := s.Validate(resolved); err != nil {
		return GenerationConfig{}, err
	}

	if limits := SupportedModels[resolved.Model]; resolved.MaxTokens > limits.MaxTokens {
		resolved.MaxTokens = limits.MaxTokens
	}
	return resolved, nil
}

func (s *settingsService) Validate(cfg GenerationConfig) error {
	if _, ok := SupportedModels[cfg.Model]; !ok {
		return apperror.Validation("model", "unsupported model %q, options: %s", cfg.Model, supportedModelNames())
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return apperror.Validation("temperature", "temperature must be between 0 and 1")
	}
	if cfg.MaxTokens < 1000 || cfg.MaxTokens > 32000 {
		return apperror.Validation("max_tokens", "max_tokens must be between 1000 and 32000")
	}
	if cfg.PresencePenalty < -2 || cfg.PresencePenalty > 2 {
		return apperror.Validation("presence_penalty", "presence_penalty must be between -2.0 and 2.0")
	}
	if cfg.FrequencyPenalty < -2 || cfg.FrequencyPenalty > 2 {
		return apperror.Validation("frequency_penalty", "frequency_penalty must be between -2.0 and 2.0")
	}
	return nil
}

func supportedModelNames() string {
	names := make([]string, 0, len(SupportedModels))
	for name := range SupportedModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
