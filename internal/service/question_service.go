package service

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/solenne/roadmapper/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxChoiceOptions = 5
	maxTableColumns  = 3
)

// QuestionInput carries the administrator-editable fields of a catalog entry.
type QuestionInput struct {
	Text          string
	Type          string
	Category      string
	OrderNum      int
	Configuration datatypes.JSON
	CreatedByID   *string
}

// QuestionStats summarizes the catalog for the admin dashboard.
type QuestionStats struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	Inactive   int64            `json:"inactive"`
	ByType     map[string]int64 `json:"by_type"`
	ByCategory map[string]int64 `json:"by_category"`
}

type QuestionService interface {
	Create(input QuestionInput) (*model.Question, error)
	Update(id string, input QuestionInput) (*model.Question, error)
	ToggleActive(id string) (*model.Question, error)
	Reorder(category string, orderByID map[string]int) error
	Delete(id string) error
	Get(id string) (*model.Question, error)
	List() ([]model.Question, error)
	ListActive() ([]model.Question, error)
	Stats() (*QuestionStats, error)
}

type questionService struct {
	questionRepo repository.QuestionRepository
	db           *gorm.DB
}

func NewQuestionService(questionRepo repository.QuestionRepository, db *gorm.DB) QuestionService {
	return &questionService{questionRepo: questionRepo, db: db}
}

func (s *questionService) Create(input QuestionInput) (*model.Question, error) {
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question := model.Question{
		Text:          input.Text,
		Type:          input.Type,
		Category:      input.Category,
		OrderNum:      input.OrderNum,
		IsActive:      true,
		Configuration: input.Configuration,
		CreatedByID:   input.CreatedByID,
	}
	if err := s.questionRepo.Create(&question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	log.Info().Str("questionID", question.ID).Str("type", question.Type).Msg("Question created")
	return &question, nil
}

func (s *questionService) Update(id string, input QuestionInput) (*model.Question, error) {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("question %s not found: %w", id, err)
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question.Text = input.Text
	question.Type = input.Type
	question.Category = input.Category
	question.OrderNum = input.OrderNum
	question.Configuration = input.Configuration
	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *questionService) ToggleActive(id string) (*model.Question, error) {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("question %s not found: %w", id, err)
	}

	question.IsActive = !question.IsActive
	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to toggle question: %w", err)
	}

	log.Info().Str("questionID", id).Bool("isActive", question.IsActive).Msg("Question visibility toggled")
	return question, nil
}

// Reorder rewrites order_num for every listed question of one category. The
// target positions must be unique; a clash leaves the category untouched.
func (s *questionService) Reorder(category string, orderByID map[string]int) error {
	if len(orderByID) == 0 {
		return apperror.Validation("order", "no questions to reorder")
	}

	seen := make(map[int]string, len(orderByID))
	for id, pos := range orderByID {
		if other, ok := seen[pos]; ok {
			return apperror.Validation("order", "duplicate position %d for questions %s and %s", pos, other, id)
		}
		seen[pos] = id
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for id, pos := range orderByID {
			result := tx.Model(&model.Question{}).
				Where("id = ? AND category = ?", id, category).
				Update("order_num", pos)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder question %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return apperror.Validation("order", "question %s does not belong to category %s", id, category)
			}
		}
		return nil
	})
}

// Delete removes a catalog entry. Questions that have ever been answered are
// kept and deactivated instead, preserving response history.
func (s *questionService) Delete(id string) error {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("question %s not found: %w", id, err)
	}

	count, err := s.questionRepo.CountResponses(id)
	if err != nil {
		return fmt.Errorf("failed to count responses for question %s: %w", id, err)
	}
	if count > 0 {
		return apperror.Protection("question has %d response(s); deactivate it instead", count)
	}

	return s.db.Delete(question).Error
}

func (s *questionService) Get(id string) (*model.Question, error) {
	return s.questionRepo.FindByID(id)
}

func (s *questionService) List() ([]model.Question, error) {
	return s.questionRepo.FindAll()
}

func (s *questionService) ListActive() ([]model.Question, error) {
	return s.questionRepo.FindActiveOrdered()
}

func (s *questionService) Stats() (*QuestionStats, error) {
	questions, err := s.questionRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	stats := QuestionStats{
		ByType:     make(map[string]int64),
		ByCategory: make(map[string]int64),
	}
	for _, q := range questions {
		stats.Total++
		if q.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByType[q.Type]++
		if q.Category != "" {
			stats.ByCategory[q.Category]++
		}
	}
	return &stats, nil
}

func validateQuestionInput(input QuestionInput) error {
	if input.Text == "" {
		return apperror.Validation("text", "question text is required")
	}
	if !model.IsSupportedQuestionType(input.Type) {
		return apperror.Validation("type", "unsupported question type: %s", input.Type)
	}
	return validateQuestionConfig(input.Type, input.Configuration)
}

// validateQuestionConfig checks the admin-supplied configuration object
// against the per-type shape and limits before it is stored.
func validateQuestionConfig(questionType string, config datatypes.JSON) error {
	switch questionType {
	case model.QuestionTypeText:
		if len(config) == 0 {
			return nil
		}
		var cfg validation.TextConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return apperror.Validation("configuration", "invalid TEXT configuration")
		}
		if cfg.MinLength < 0 || cfg.MaxLength < 0 || cfg.MaxTokens < 0 {
			return apperror.Validation("configuration", "length limits must be non-negative")
		}
		if cfg.MaxLength > 0 && cfg.MinLength > cfg.MaxLength {
			return apperror.Validation("configuration", "min_length cannot exceed max_length")
		}
		return nil

	case model.QuestionTypeMultipleChoice:
		var cfg validation.ChoiceConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return apperror.Validation("configuration", "invalid MULTIPLE_CHOICE configuration")
		}
		if len(cfg.Options) == 0 {
			return apperror.Validation("configuration", "at least one option is required")
		}
		if len(cfg.Options) > maxChoiceOptions {
			return apperror.Validation("configuration", "at most %d options allowed", maxChoiceOptions)
		}
		seen := make(map[string]struct{}, len(cfg.Options))
		for _, opt := range cfg.Options {
			if opt == "" {
				return apperror.Validation("configuration", "options cannot be empty")
			}
			if _, ok := seen[opt]; ok {
				return apperror.Validation("configuration", "duplicate option: %s", opt)
			}
			seen[opt] = struct{}{}
		}
		if cfg.MaxSelections > 0 && cfg.MinSelections > cfg.MaxSelections {
			return apperror.Validation("configuration", "min_selections cannot exceed max_selections")
		}
		return nil

	case model.QuestionTypeTable:
		var cfg validation.TableConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return apperror.Validation("configuration", "invalid TABLE configuration")
		}
		if len(cfg.Columns) == 0 {
			return apperror.Validation("configuration", "at least one column is required")
		}
		if len(cfg.Columns) > maxTableColumns {
			return apperror.Validation("configuration", "at most %d columns allowed", maxTableColumns)
		}
		seen := make(map[string]struct{}, len(cfg.Columns))
		for _, col := range cfg.Columns {
			if col.Name == "" {
				return apperror.Validation("configuration", "column names cannot be empty")
			}
			if _, ok := seen[col.Name]; ok {
				return apperror.Validation("configuration", "duplicate column: %s", col.Name)
			}
			seen[col.Name] = struct{}{}
			switch col.DataType {
			case "", "string", "integer", "float", "boolean":
			default:
				return apperror.Validation("configuration", "unknown column data type: %s", col.DataType)
			}
		}
		if cfg.MaxRows > 0 && cfg.MinRows > cfg.MaxRows {
			return apperror.Validation("configuration", "min_rows cannot exceed max_rows")
		}
		return nil
	}
	return nil
}
