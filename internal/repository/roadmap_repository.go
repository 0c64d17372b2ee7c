package repository

import (
	"github.com/solenne/roadmapper/internal/model"
	"gorm.io/gorm"
)

type RoadmapRepository interface {
	Create(roadmap *model.Roadmap) error
	FindByID(id string) (*model.Roadmap, error)
	FindAllByUser(userID string) ([]model.Roadmap, error)
	Delete(id string) error
	ClaimForGeneration(id string) (bool, error)
	AdvanceVersion(id string) (bool, error)
	Archive(id string) (bool, error)
}

type roadmapRepository struct {
	db *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

func (r *roadmapRepository) Create(roadmap *model.Roadmap) error {
	return r.db.Create(roadmap).Error
}

func (r *roadmapRepository) FindByID(id string) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	if err := r.db.First(&roadmap, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *roadmapRepository) FindAllByUser(userID string) ([]model.Roadmap, error) {
	var roadmaps []model.Roadmap
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&roadmaps).Error; err != nil {
		return nil, err
	}
	return roadmaps, nil
}

func (r *roadmapRepository) Delete(id string) error {
	return r.db.Delete(&model.Roadmap{}, "id = ?", id).Error
}

// ClaimForGeneration atomically moves the roadmap into GENERATING when the
// current status allows it. The conditional UPDATE plus rows-affected check
// is the concurrency guard: two concurrent generate calls cannot both claim
// the same roadmap.
func (r *roadmapRepository) ClaimForGeneration(id string) (bool, error) {
	result := r.db.Model(&model.Roadmap{}).
		Where("id = ? AND status IN ?", id, []string{
			model.RoadmapStatusDraft,
			model.RoadmapStatusCompleted,
			model.RoadmapStatusError,
		}).
		Update("status", model.RoadmapStatusGenerating)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AdvanceVersion bumps the version of a roadmap that is still allowed to
// generate. The bump happens in the database so a stale in-memory copy can
// never clobber a concurrent status change.
func (r *roadmapRepository) AdvanceVersion(id string) (bool, error) {
	result := r.db.Model(&model.Roadmap{}).
		Where("id = ? AND status NOT IN ?", id, []string{
			model.RoadmapStatusGenerating,
			model.RoadmapStatusArchived,
		}).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Archive moves the roadmap into ARCHIVED with the same conditional-update
// discipline: a roadmap that is mid-generation or already archived is left
// untouched and the caller sees false.
func (r *roadmapRepository) Archive(id string) (bool, error) {
	result := r.db.Model(&model.Roadmap{}).
		Where("id = ? AND status NOT IN ?", id, []string{
			model.RoadmapStatusGenerating,
			model.RoadmapStatusArchived,
		}).
		Update("status", model.RoadmapStatusArchived)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
