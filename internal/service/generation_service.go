package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/config"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const systemPrompt = "You are an expert at building personalized roadmaps. " +
	"Produce clear, actionable plans tailored to the user's answers."

// GenerationOutcome is returned to the caller after a successful generation.
type GenerationOutcome struct {
	Roadmap    *model.Roadmap    `json:"roadmap"`
	Config     GenerationConfig  `json:"used_config"`
	Completion *CompletionResult `json:"metadata"`
}

// GenerationService drives the roadmap state machine:
// DRAFT → GENERATING → {COMPLETED, ERROR}; COMPLETED/ERROR → GENERATING on
// regenerate; any non-GENERATING, non-ARCHIVED state → ARCHIVED (terminal).
type GenerationService interface {
	Create(userID *string, title string) (*model.Roadmap, error)
	Get(roadmapID string) (*model.Roadmap, error)
	ListForUser(userID string) ([]model.Roadmap, error)
	Generate(ctx context.Context, roadmapID, userID string, override ConfigOverride) (*GenerationOutcome, error)
	Regenerate(ctx context.Context, roadmapID, userID string, override ConfigOverride) (*GenerationOutcome, error)
	Archive(roadmapID string) (*model.Roadmap, error)
	Delete(roadmapID string) error
	History(roadmapID string) ([]model.GenerationRecord, error)
}

type generationService struct {
	roadmapRepo repository.RoadmapRepository
	recordRepo  repository.GenerationRecordRepository
	userRepo    repository.UserRepository
	preparation PreparationService
	completion  CompletionService
	settings    SettingsService
	buffer      AnswerBufferService
	timeout     time.Duration
	db          *gorm.DB
}

func NewGenerationService(
	roadmapRepo repository.RoadmapRepository,
	recordRepo repository.GenerationRecordRepository,
	userRepo repository.UserRepository,
	preparation PreparationService,
	completion CompletionService,
	settings SettingsService,
	buffer AnswerBufferService,
	cfg *config.Config,
	db *gorm.DB,
) GenerationService {
	return &generationService{
		roadmapRepo: roadmapRepo,
		recordRepo:  recordRepo,
		userRepo:    userRepo,
		preparation: preparation,
		completion:  completion,
		settings:    settings,
		buffer:      buffer,
		timeout:     time.Duration(cfg.AI.RequestTimeoutSec) * time.Second,
		db:          db,
	}
}

func (s *generationService) Create(userID *string, title string) (*model.Roadmap, error) {
	roadmap := model.Roadmap{
		UserID:  userID,
		Title:   title,
		Version: 1,
		Status:  model.RoadmapStatusDraft,
	}
	if err := s.roadmapRepo.Create(&roadmap); err != nil {
		return nil, fmt.Errorf("failed to create roadmap: %w", err)
	}
	return &roadmap, nil
}

func (s *generationService) Get(roadmapID string) (*model.Roadmap, error) {
	return s.roadmapRepo.FindByID(roadmapID)
}

func (s *generationService) ListForUser(userID string) ([]model.Roadmap, error) {
	return s.roadmapRepo.FindAllByUser(userID)
}

// Generate runs one full generation attempt. The GENERATING claim is an
// atomic conditional update persisted before the external call starts, so a
// concurrent caller observes the in-progress state immediately. On success
// the staged answers are cleared; on failure they are kept for retry.
func (s *generationService) Generate(ctx context.Context, roadmapID, userID string, override ConfigOverride) (*GenerationOutcome, error) {
	roadmap, err := s.roadmapRepo.FindByID(roadmapID)
	if err != nil {
		return nil, fmt.Errorf("roadmap %s not found: %w", roadmapID, err)
	}
	if !roadmap.CanGenerate() {
		return nil, apperror.StateConflict("roadmap cannot be generated in status %s", roadmap.Status)
	}

	tempAnswers := s.buffer.Snapshot(userID)
	if len(tempAnswers) == 0 {
		return nil, apperror.Validation("answers", "no staged answers found")
	}

	cfg, err := s.settings.Resolve(override)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user %s not found: %w", userID, err)
	}

	claimed, err := s.roadmapRepo.ClaimForGeneration(roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim roadmap %s: %w", roadmapID, err)
	}
	if !claimed {
		return nil, apperror.StateConflict("roadmap %s is already generating", roadmapID)
	}

	start := time.Now()

	prepared, err := s.preparation.Prepare(tempAnswers, user)
	if err != nil {
		return nil, s.fail(roadmap, cfg, "", start, err)
	}

	// Technical users get a lower temperature unless the caller pinned one.
	if override.Temperature == nil {
		cfg.Temperature = prepared.ContextAnalysis.SuggestedTemperature
	}

	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: prepared.Prompt},
	}

	// The completion call is the only long-latency operation; it runs with a
	// deadline and outside any storage transaction.
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.completion.GenerateCompletion(callCtx, messages, cfg)
	if err != nil {
		return nil, s.fail(roadmap, cfg, prepared.Prompt, start, err)
	}

	// The COMPLETED transition is conditional on the row still holding the
	// GENERATING claim. If something else ended the attempt meanwhile, for
	// example an archive racing the completion call, the result is discarded
	// instead of overwriting the newer state.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Roadmap{}).
			Where("id = ? AND status = ?", roadmap.ID, model.RoadmapStatusGenerating).
			Updates(map[string]interface{}{
				"content": result.Content,
				"status":  model.RoadmapStatusCompleted,
				"version": roadmap.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to persist completed roadmap: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.StateConflict("roadmap %s left GENERATING before completion", roadmap.ID)
		}
		return tx.Create(&model.GenerationRecord{
			RoadmapID:         roadmap.ID,
			ConfigurationUsed: marshalConfig(cfg),
			PromptUsed:        prepared.Prompt,
			TokenCount:        result.TotalTokens,
			GenerationTime:    time.Since(start).Seconds(),
			Success:           true,
		}).Error
	})
	if err != nil {
		return nil, s.fail(roadmap, cfg, prepared.Prompt, start, err)
	}

	roadmap.Content = result.Content
	roadmap.Status = model.RoadmapStatusCompleted
	roadmap.IncrementVersion()

	s.buffer.Clear(userID)

	log.Info().
		Str("roadmapID", roadmap.ID).
		Int("version", roadmap.Version).
		Int("tokens", result.TotalTokens).
		Msg("Roadmap generated")

	return &GenerationOutcome{Roadmap: roadmap, Config: cfg, Completion: result}, nil
}

// Regenerate is Generate preceded by a conditional version pre-increment
// marking the new attempt. The increment only applies while the roadmap can
// still generate, so it doubles as the state guard.
func (s *generationService) Regenerate(ctx context.Context, roadmapID, userID string, override ConfigOverride) (*GenerationOutcome, error) {
	roadmap, err := s.roadmapRepo.FindByID(roadmapID)
	if err != nil {
		return nil, fmt.Errorf("roadmap %s not found: %w", roadmapID, err)
	}
	advanced, err := s.roadmapRepo.AdvanceVersion(roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to advance roadmap version: %w", err)
	}
	if !advanced {
		return nil, apperror.StateConflict("roadmap cannot be regenerated in status %s", roadmap.Status)
	}

	return s.Generate(ctx, roadmapID, userID, override)
}

// Archive is the terminal transition. The conditional update in the
// repository guards it against mid-generation and already-archived roadmaps.
func (s *generationService) Archive(roadmapID string) (*model.Roadmap, error) {
	roadmap, err := s.roadmapRepo.FindByID(roadmapID)
	if err != nil {
		return nil, fmt.Errorf("roadmap %s not found: %w", roadmapID, err)
	}

	archived, err := s.roadmapRepo.Archive(roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to archive roadmap: %w", err)
	}
	if !archived {
		return nil, apperror.StateConflict("roadmap cannot be archived in status %s", roadmap.Status)
	}

	roadmap.Status = model.RoadmapStatusArchived
	return roadmap, nil
}

func (s *generationService) Delete(roadmapID string) error {
	roadmap, err := s.roadmapRepo.FindByID(roadmapID)
	if err != nil {
		return fmt.Errorf("roadmap %s not found: %w", roadmapID, err)
	}
	if !roadmap.CanDelete() {
		return apperror.Protection("archived roadmap cannot be deleted")
	}
	return s.roadmapRepo.Delete(roadmapID)
}

func (s *generationService) History(roadmapID string) ([]model.GenerationRecord, error) {
	return s.recordRepo.FindByRoadmap(roadmapID)
}

// fail records the attempt and moves the roadmap to ERROR. The transition
// and the history row share a transaction, and the write does not depend on
// the caller's context so a disconnect cannot strand the roadmap in
// GENERATING. The status update only applies while the GENERATING claim is
// still held; the history row is written either way. The staged answer
// snapshot is deliberately not cleared.
func (s *generationService) fail(roadmap *model.Roadmap, cfg GenerationConfig, promptUsed string, start time.Time, cause error) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Roadmap{}).
			Where("id = ? AND status = ?", roadmap.ID, model.RoadmapStatusGenerating).
			Update("status", model.RoadmapStatusError).Error; err != nil {
			return err
		}
		return tx.Create(&model.GenerationRecord{
			RoadmapID:         roadmap.ID,
			ConfigurationUsed: marshalConfig(cfg),
			PromptUsed:        promptUsed,
			GenerationTime:    time.Since(start).Seconds(),
			Success:           false,
			ErrorMessage:      cause.Error(),
		}).Error
	})
	if err != nil {
		log.Error().Err(err).Str("roadmapID", roadmap.ID).Msg("Failed to record generation error state")
	}
	roadmap.Status = model.RoadmapStatusError

	log.Error().Err(cause).Str("roadmapID", roadmap.ID).Msg("Roadmap generation failed")
	return fmt.Errorf("roadmap generation failed: %w", cause)
}

func marshalConfig(cfg GenerationConfig) datatypes.JSON {
	data, err := json.Marshal(cfg)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}
