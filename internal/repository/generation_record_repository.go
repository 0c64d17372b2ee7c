package repository

import (
	"github.com/solenne/roadmapper/internal/model"
	"gorm.io/gorm"
)

// GenerationRecordRepository reads generation history. Records are written
// inside the generation service's transactions, never through this interface.
type GenerationRecordRepository interface {
	FindByRoadmap(roadmapID string) ([]model.GenerationRecord, error)
}

type generationRecordRepository struct {
	db *gorm.DB
}

func NewGenerationRecordRepository(db *gorm.DB) GenerationRecordRepository {
	return &generationRecordRepository{db: db}
}

func (r *generationRecordRepository) FindByRoadmap(roadmapID string) ([]model.GenerationRecord, error) {
	var records []model.GenerationRecord
	if err := r.db.Where("roadmap_id = ?", roadmapID).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
