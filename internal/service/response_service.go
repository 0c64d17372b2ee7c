package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/solenne/roadmapper/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseService owns the lifecycle of an answer record and its backup
// chain: at most one live Response per (user, question) pair, with every
// overwritten version preserved as an immutable ResponseBackup.
type ResponseService interface {
	SubmitAnswer(userID, questionID string, content datatypes.JSON, isComplete bool, sourceToken string) (*model.Response, error)
	RestoreAnswer(userID, questionID string, content datatypes.JSON, isComplete bool) (*model.Response, error)
	DeleteResponse(responseID string, forceDelete bool) error
	DeleteAllForUser(userID string) error
	GetUserResponses(userID string) ([]model.Response, error)
	GetAnswer(userID, questionID string) (*model.Response, error)
	GetBackupChain(responseID string) ([]model.ResponseBackup, error)
	SwapTableResponses(questionAID, questionBID string) error
}

type responseService struct {
	responseRepo repository.ResponseRepository
	questionRepo repository.QuestionRepository
	validator    *validation.Validator
	db           *gorm.DB
}

func NewResponseService(
	responseRepo repository.ResponseRepository,
	questionRepo repository.QuestionRepository,
	validator *validation.Validator,
	db *gorm.DB,
) ResponseService {
	return &responseService{
		responseRepo: responseRepo,
		questionRepo: questionRepo,
		validator:    validator,
		db:           db,
	}
}

// SubmitAnswer records an answer for (user, question). The first submission
// inserts the Response with IsOriginal set; every later submission first
// snapshots the existing content into the backup chain, then updates the
// live row in place. Backup and overwrite share one transaction.
//
// Complete submissions are gated strictly: a validation failure leaves
// nothing written. Draft submissions persist with the computed IsValid flag.
func (s *responseService) SubmitAnswer(userID, questionID string, content datatypes.JSON, isComplete bool, sourceToken string) (*model.Response, error) {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		return nil, fmt.Errorf("question %s not found: %w", questionID, err)
	}

	validationErr := s.validator.Validate(question.Type, content, question.Configuration)
	if isComplete && validationErr != nil {
		return nil, validationErr
	}

	var saved *model.Response
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Response
		findErr := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&existing).Error

		switch {
		case findErr == nil:
			var backupCount int64
			if err := tx.Model(&model.ResponseBackup{}).Where("response_id = ?", existing.ID).Count(&backupCount).Error; err != nil {
				return fmt.Errorf("failed to count backups for response %s: %w", existing.ID, err)
			}
			backup := model.ResponseBackup{
				ResponseID:      existing.ID,
				UserID:          existing.UserID,
				QuestionID:      existing.QuestionID,
				Content:         existing.Content,
				IsComplete:      existing.IsComplete,
				ConnectionToken: sourceToken,
				VersionIndex:    int(backupCount) + 1,
			}
			if err := tx.Create(&backup).Error; err != nil {
				return fmt.Errorf("failed to back up response %s: %w", existing.ID, err)
			}

			existing.Content = content
			existing.IsComplete = isComplete
			existing.IsValid = validationErr == nil
			if err := tx.Model(&existing).Select("content", "is_complete", "is_valid", "updated_at").Updates(&existing).Error; err != nil {
				return fmt.Errorf("failed to update response %s: %w", existing.ID, err)
			}
			saved = &existing
			return nil

		case errors.Is(findErr, gorm.ErrRecordNotFound):
			response := model.Response{
				UserID:     userID,
				QuestionID: questionID,
				Content:    content,
				IsComplete: isComplete,
				IsValid:    validationErr == nil,
				IsOriginal: true,
			}
			if err := tx.Create(&response).Error; err != nil {
				return fmt.Errorf("failed to create response: %w", err)
			}
			saved = &response
			return nil

		default:
			return findErr
		}
	})
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Str("questionID", questionID).Msg("SubmitAnswer failed")
		return nil, err
	}
	return saved, nil
}

// RestoreAnswer is the force-insert save path for bulk or administrative
// restoration. It bypasses the backup step entirely: an existing row is
// overwritten in place, a missing row is inserted as original.
func (s *responseService) RestoreAnswer(userID, questionID string, content datatypes.JSON, isComplete bool) (*model.Response, error) {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		return nil, fmt.Errorf("question %s not found: %w", questionID, err)
	}

	var saved *model.Response
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Response
		findErr := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&existing).Error
		if findErr == nil {
			existing.Content = content
			existing.IsComplete = isComplete
			existing.IsValid = s.validator.IsValid(question.Type, content, question.Configuration)
			if err := tx.Model(&existing).Select("content", "is_complete", "is_valid", "updated_at").Updates(&existing).Error; err != nil {
				return err
			}
			saved = &existing
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		response := model.Response{
			UserID:     userID,
			QuestionID: questionID,
			Content:    content,
			IsComplete: isComplete,
			IsValid:    s.validator.IsValid(question.Type, content, question.Configuration),
			IsOriginal: true,
		}
		if err := tx.Create(&response).Error; err != nil {
			return err
		}
		saved = &response
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("responseID", saved.ID).Msg("Response restored without backup")
	return saved, nil
}

// DeleteResponse physically removes a response. Original responses are
// protected unless forceDelete is set.
func (s *responseService) DeleteResponse(responseID string, forceDelete bool) error {
	response, err := s.responseRepo.FindByID(responseID)
	if err != nil {
		return fmt.Errorf("response %s not found: %w", responseID, err)
	}
	if response.IsOriginal && !forceDelete {
		return apperror.Protection("cannot delete the original response")
	}
	return s.db.Delete(&model.Response{}, "id = ?", responseID).Error
}

// DeleteAllForUser runs the four-step user-deletion flow in one
// transaction: final backup for every original response, flip IsOriginal,
// delete all backups for the user, then delete all responses. Any failure
// rolls back everything so no response is left orphaned or permanently
// protected.
func (s *responseService) DeleteAllForUser(userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var originals []model.Response
		if err := tx.Where("user_id = ? AND is_original = ?", userID, true).Find(&originals).Error; err != nil {
			return fmt.Errorf("failed to load original responses: %w", err)
		}

		for _, response := range originals {
			var backupCount int64
			if err := tx.Model(&model.ResponseBackup{}).Where("response_id = ?", response.ID).Count(&backupCount).Error; err != nil {
				return fmt.Errorf("failed to count backups for response %s: %w", response.ID, err)
			}
			final := model.ResponseBackup{
				ResponseID:   response.ID,
				UserID:       response.UserID,
				QuestionID:   response.QuestionID,
				Content:      response.Content,
				IsComplete:   response.IsComplete,
				VersionIndex: int(backupCount) + 1,
			}
			if err := tx.Create(&final).Error; err != nil {
				return fmt.Errorf("failed to write final backup for response %s: %w", response.ID, err)
			}
		}

		if err := tx.Model(&model.Response{}).Where("user_id = ? AND is_original = ?", userID, true).Update("is_original", false).Error; err != nil {
			return fmt.Errorf("failed to clear original flags: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.ResponseBackup{}).Error; err != nil {
			return fmt.Errorf("failed to delete backups: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Response{}).Error; err != nil {
			return fmt.Errorf("failed to delete responses: %w", err)
		}

		log.Info().Str("userID", userID).Int("originals", len(originals)).Msg("User responses and backups deleted")
		return nil
	})
}

func (s *responseService) GetUserResponses(userID string) ([]model.Response, error) {
	return s.responseRepo.FindAllByUser(userID)
}

func (s *responseService) GetAnswer(userID, questionID string) (*model.Response, error) {
	return s.responseRepo.FindByUserAndQuestion(userID, questionID)
}

func (s *responseService) GetBackupChain(responseID string) ([]model.ResponseBackup, error) {
	return s.responseRepo.FindBackups(responseID)
}

// SwapTableResponses exchanges the contents of two TABLE responses. It is an
// administrative repair for questionnaires whose table answers were captured
// against swapped questions.
func (s *responseService) SwapTableResponses(questionAID, questionBID string) error {
	questionA, err := s.questionRepo.FindByID(questionAID)
	if err != nil {
		return fmt.Errorf("question %s not found: %w", questionAID, err)
	}
	questionB, err := s.questionRepo.FindByID(questionBID)
	if err != nil {
		return fmt.Errorf("question %s not found: %w", questionBID, err)
	}
	if questionA.Type != model.QuestionTypeTable || questionB.Type != model.QuestionTypeTable {
		return apperror.Validation("type", "both questions must be of type TABLE")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var responseA, responseB model.Response
		if err := tx.Where("question_id = ?", questionAID).First(&responseA).Error; err != nil {
			return fmt.Errorf("response for question %s not found: %w", questionAID, err)
		}
		if err := tx.Where("question_id = ?", questionBID).First(&responseB).Error; err != nil {
			return fmt.Errorf("response for question %s not found: %w", questionBID, err)
		}

		contentA, completeA := responseA.Content, responseA.IsComplete

		responseA.Content = responseB.Content
		responseA.IsComplete = responseB.IsComplete
		if err := tx.Model(&responseA).Select("content", "is_complete", "updated_at").Updates(&responseA).Error; err != nil {
			return err
		}

		responseB.Content = contentA
		responseB.IsComplete = completeA
		if err := tx.Model(&responseB).Select("content", "is_complete", "updated_at").Updates(&responseB).Error; err != nil {
			return err
		}

		log.Info().Str("questionA", questionAID).Str("questionB", questionBID).Msg("Table responses swapped")
		return nil
	})
}
