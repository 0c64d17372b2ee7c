package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/solenne/roadmapper/config"
	"github.com/solenne/roadmapper/internal/apperror"
)

// Message is one ordered role/content entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionResult carries the generated text and the usage metadata the
// generation history records.
type CompletionResult struct {
	Content          string  `json:"content"`
	Model            string  `json:"model"`
	TotalTokens      int     `json:"token_count"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	FinishReason     string  `json:"finish_reason"`
	GenerationTime   float64 `json:"generation_time"`
}

// CompletionService is the boundary to the external completion API. Failures
// never leak raw transport errors; everything is wrapped into an
// external-service error kind.
type CompletionService interface {
	GenerateCompletion(ctx context.Context, messages []Message, cfg GenerationConfig) (*CompletionResult, error)
	HealthCheck(ctx context.Context) error
}

type openAICompletionService struct {
	client *openai.Client
}

// NewCompletionService builds the OpenAI-backed client. Without an API key
// the service starts but every call fails with an external-service error,
// which keeps local development of the storage layers possible.
func NewCompletionService(cfg *config.Config) CompletionService {
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set, completion service will be non-functional")
		return &openAICompletionService{client: nil}
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
	}
	return &openAICompletionService{client: openai.NewClientWithConfig(clientConfig)}
}

func (s *openAICompletionService) GenerateCompletion(ctx context.Context, messages []Message, cfg GenerationConfig) (*CompletionResult, error) {
	if s.client == nil {
		return nil, apperror.ExternalService(nil, "completion client not initialized")
	}

	request := openai.ChatCompletionRequest{
		Model:            cfg.Model,
		Temperature:      float32(cfg.Temperature),
		MaxTokens:        cfg.MaxTokens,
		PresencePenalty:  float32(cfg.PresencePenalty),
		FrequencyPenalty: float32(cfg.FrequencyPenalty),
	}
	for _, msg := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	start := time.Now()
	response, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		log.Error().Err(err).Str("model", cfg.Model).Msg("Completion API request failed")
		return nil, apperror.ExternalService(err, "completion request failed")
	}
	if len(response.Choices) == 0 {
		return nil, apperror.ExternalService(nil, "completion response contained no choices")
	}

	return &CompletionResult{
		Content:          response.Choices[0].Message.Content,
		Model:            cfg.Model,
		TotalTokens:      response.Usage.TotalTokens,
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
		FinishReason:     string(response.Choices[0].FinishReason),
		GenerationTime:   time.Since(start).Seconds(),
	}, nil
}

// HealthCheck issues a minimal completion to confirm API connectivity.
func (s *openAICompletionService) HealthCheck(ctx context.Context) error {
	_, err := s.GenerateCompletion(ctx, []Message{{Role: RoleUser, Content: "Test"}}, GenerationConfig{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	return err
}
