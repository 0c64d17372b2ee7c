package dto

import "gorm.io/datatypes"

// CreateQuestionRequest is for administrators managing the catalog.
// Configuration is the per-type rule object stored verbatim after
// validation.
type CreateQuestionRequest struct {
	Text          string         `json:"text" binding:"required"`
	Type          string         `json:"type" binding:"required,oneof=TEXT MULTIPLE_CHOICE TABLE"`
	Category      string         `json:"category"`
	OrderNum      int            `json:"order_num"`
	Configuration datatypes.JSON `json:"configuration"`
}

type UpdateQuestionRequest struct {
	Text          string         `json:"text" binding:"required"`
	Type          string         `json:"type" binding:"required,oneof=TEXT MULTIPLE_CHOICE TABLE"`
	Category      string         `json:"category"`
	OrderNum      int            `json:"order_num"`
	Configuration datatypes.JSON `json:"configuration"`
}

// ReorderQuestionsRequest maps question IDs to their new positions within
// one category. Positions must be unique.
type ReorderQuestionsRequest struct {
	Category  string         `json:"category" binding:"required"`
	OrderByID map[string]int `json:"order_by_id" binding:"required"`
}

type SwapTableResponsesRequest struct {
	QuestionAID string `json:"question_a_id" binding:"required,uuid"`
	QuestionBID string `json:"question_b_id" binding:"required,uuid"`
}
