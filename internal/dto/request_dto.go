package dto

import "gorm.io/datatypes"

// SubmitAnswerRequest carries one answer for a question. Content is the
// type-shaped payload: {"text": ...} for TEXT, {"selected": [...]} for
// MULTIPLE_CHOICE, {"rows": [{...}]} for TABLE.
type SubmitAnswerRequest struct {
	QuestionID  string         `json:"question_id" binding:"required,uuid"`
	Content     datatypes.JSON `json:"content" binding:"required"`
	IsComplete  bool           `json:"is_complete"`
	SourceToken string         `json:"source_token"`
}

// StageAnswerRequest stages an answer in the generation buffer without
// persisting it.
type StageAnswerRequest struct {
	QuestionID string         `json:"question_id" binding:"required,uuid"`
	Answer     datatypes.JSON `json:"answer" binding:"required"`
}

type RestoreAnswerRequest struct {
	QuestionID string         `json:"question_id" binding:"required,uuid"`
	Content    datatypes.JSON `json:"content" binding:"required"`
	IsComplete bool           `json:"is_complete"`
}

type CreateRoadmapRequest struct {
	Title string `json:"title" binding:"required"`
}

// GenerateRoadmapRequest overrides pieces of the default generation
// configuration. Absent fields keep their defaults.
type GenerateRoadmapRequest struct {
	Model            *string  `json:"model"`
	Temperature      *float64 `json:"temperature"`
	MaxTokens        *int     `json:"max_tokens"`
	PresencePenalty  *float64 `json:"presence_penalty"`
	FrequencyPenalty *float64 `json:"frequency_penalty"`
}

type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}
