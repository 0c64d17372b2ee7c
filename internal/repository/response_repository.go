package repository

import (
	"github.com/solenne/roadmapper/internal/model"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	FindByID(id string) (*model.Response, error)
	FindByUserAndQuestion(userID, questionID string) (*model.Response, error)
	FindAllByUser(userID string) ([]model.Response, error)
	FindBackups(responseID string) ([]model.ResponseBackup, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) FindByID(id string) (*model.Response, error) {
	var response model.Response
	if err := r.db.Preload("Question").First(&response, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) FindByUserAndQuestion(userID, questionID string) (*model.Response, error) {
	var response model.Response
	err := r.db.Where("user_id = ? AND question_id = ?", userID, questionID).First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) FindAllByUser(userID string) ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.Preload("Question").Where("user_id = ?", userID).Order("created_at ASC").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

// FindBackups returns the backup chain in version order. BackupAt ordering
// equals VersionIndex ordering by construction.
func (r *responseRepository) FindBackups(responseID string) ([]model.ResponseBackup, error) {
	var backups []model.ResponseBackup
	if err := r.db.Where("response_id = ?", responseID).Order("version_index ASC").Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}
