package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoadmapStatusDraft      = "DRAFT"
	RoadmapStatusGenerating = "GENERATING"
	RoadmapStatusCompleted  = "COMPLETED"
	RoadmapStatusError      = "ERROR"
	RoadmapStatusArchived   = "ARCHIVED"
)

// Roadmap is the generation target. UserID is nullable so the record
// survives user deletion via SET NULL rather than a cascade.
type Roadmap struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *string   `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Title     string    `gorm:"size:200" json:"title"`
	Content   string    `gorm:"type:text" json:"content,omitempty"`
	Version   int       `gorm:"default:1" json:"version"`
	Status    string    `gorm:"size:20;not null;default:'DRAFT'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// CanGenerate reports whether a generation may start from the current status.
func (r *Roadmap) CanGenerate() bool {
	return r.Status != RoadmapStatusGenerating && r.Status != RoadmapStatusArchived
}

// CanDelete reports whether the roadmap may be deleted. Archived roadmaps
// are terminal and immutable.
func (r *Roadmap) CanDelete() bool {
	return r.Status != RoadmapStatusArchived
}

func (r *Roadmap) IncrementVersion() {
	if r.Version <= 0 {
		r.Version = 0
	}
	r.Version++
}
