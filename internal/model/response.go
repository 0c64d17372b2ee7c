package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Response is the current answer for a (user, question) pair. At most one
// live row exists per pair; re-submissions update this row in place after the
// previous content has been pushed onto the backup chain.
//
// IsOriginal is true only for the very first answer ever recorded for the
// pair and protects the row from casual deletion.
type Response struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string         `gorm:"type:uuid;not null;index:idx_responses_user_question,unique" json:"user_id"`
	QuestionID string         `gorm:"type:uuid;not null;index:idx_responses_user_question,unique" json:"question_id"`
	Question   Question       `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Content    datatypes.JSON `json:"content,omitempty"`
	DraftData  datatypes.JSON `json:"draft_data,omitempty"`
	IsValid    bool           `gorm:"default:false" json:"is_valid"`
	IsComplete bool           `gorm:"default:false" json:"is_complete"`
	IsOriginal bool           `gorm:"default:false" json:"is_original"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
