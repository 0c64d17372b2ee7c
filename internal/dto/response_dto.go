package dto

import (
	"time"

	"gorm.io/datatypes"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ResponseDTO struct {
	ID         string         `json:"id"`
	QuestionID string         `json:"question_id"`
	Content    datatypes.JSON `json:"content"`
	IsValid    bool           `json:"is_valid"`
	IsComplete bool           `json:"is_complete"`
	IsOriginal bool           `json:"is_original"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type ResponseBackupDTO struct {
	ID           string         `json:"id"`
	ResponseID   string         `json:"response_id"`
	Content      datatypes.JSON `json:"content"`
	IsComplete   bool           `json:"is_complete"`
	VersionIndex int            `json:"version_index"`
	BackupAt     time.Time      `json:"backup_at"`
}

type RoadmapDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Version   int       `json:"version"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoadmapStatusDTO is the lightweight polling shape: no content body.
type RoadmapStatusDTO struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Version int    `json:"version"`
}

type GenerationRecordDTO struct {
	ID                string         `json:"id"`
	ConfigurationUsed datatypes.JSON `json:"configuration_used"`
	TokenCount        int            `json:"token_count"`
	GenerationTime    float64        `json:"generation_time"`
	Success           bool           `json:"success"`
	ErrorMessage      string         `json:"error_message,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

type QuestionDTO struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	Type          string         `json:"type"`
	Category      string         `json:"category,omitempty"`
	OrderNum      int            `json:"order_num"`
	IsActive      bool           `json:"is_active"`
	Configuration datatypes.JSON `json:"configuration,omitempty"`
}

type UserDTO struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
