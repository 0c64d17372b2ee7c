package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeText           = "TEXT"
	QuestionTypeMultipleChoice = "MULTIPLE_CHOICE"
	QuestionTypeTable          = "TABLE"
)

// Question is a catalog entry owned by an administrator. Configuration is a
// type-shaped JSON object: {min_length,max_length,max_tokens} for TEXT,
// {options,allow_multiple,min_selections,max_selections} for MULTIPLE_CHOICE,
// {columns,min_rows,max_rows} for TABLE.
type Question struct {
	ID            string         `gorm:"type:uuid;primaryKey" json:"id"`
	Text          string         `gorm:"size:255;uniqueIndex" json:"text"`
	Type          string         `gorm:"size:50;not null" json:"type"`
	Category      string         `gorm:"size:50;index" json:"category,omitempty"`
	OrderNum      int            `json:"order_num"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	Configuration datatypes.JSON `json:"configuration,omitempty"`
	CreatedByID   *string        `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func IsSupportedQuestionType(t string) bool {
	switch t {
	case QuestionTypeText, QuestionTypeMultipleChoice, QuestionTypeTable:
		return true
	}
	return false
}
