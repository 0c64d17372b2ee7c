package repository

import (
	"github.com/solenne/roadmapper/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id string) (*model.Question, error)
	FindAll() ([]model.Question, error)
	FindActiveOrdered() ([]model.Question, error)
	FindByCategory(category string) ([]model.Question, error)
	Update(question *model.Question) error
	CountResponses(questionID string) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindAll() ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Order("category ASC, order_num ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindActiveOrdered() ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("is_active = ?", true).Order("order_num ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindByCategory(category string) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("category = ?", category).Order("order_num ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

// CountResponses reports how many live responses reference the question.
// Questions are never deleted while this is non-zero.
func (r *questionRepository) CountResponses(questionID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Response{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}
