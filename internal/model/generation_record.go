package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationRecord is an append-only log entry for one generation attempt.
// Rows are never mutated after creation.
type GenerationRecord struct {
	ID                string         `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID         string         `gorm:"type:uuid;not null;index" json:"roadmap_id"`
	ConfigurationUsed datatypes.JSON `json:"configuration_used"`
	PromptUsed        string         `gorm:"type:text" json:"prompt_used"`
	TokenCount        int            `json:"token_count"`
	GenerationTime    float64        `json:"generation_time"`
	Success           bool           `gorm:"default:true" json:"success"`
	ErrorMessage      string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (g *GenerationRecord) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
