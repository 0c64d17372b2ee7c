package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseBackup is an immutable snapshot of a Response's content taken
// before an overwrite. VersionIndex values for a given response are
// contiguous and strictly increasing starting at 1; ordering by BackupAt
// equals ordering by VersionIndex. The (ResponseID, VersionIndex) pair is
// unique at the schema level.
type ResponseBackup struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	ResponseID      string         `gorm:"type:uuid;not null;index;uniqueIndex:uniq_backup_version" json:"response_id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	QuestionID      string         `gorm:"type:uuid;not null" json:"question_id"`
	Content         datatypes.JSON `json:"content"`
	IsComplete      bool           `gorm:"default:false" json:"is_complete"`
	ConnectionToken string         `gorm:"size:255" json:"connection_token,omitempty"`
	VersionIndex    int            `gorm:"not null;uniqueIndex:uniq_backup_version" json:"version_index"`
	BackupAt        time.Time      `gorm:"autoCreateTime" json:"backup_at"`
}

func (b *ResponseBackup) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
