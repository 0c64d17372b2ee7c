package validation

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"gorm.io/datatypes"
)

// TextConfig bounds a TEXT answer. MaxTokens of zero disables token bounding.
type TextConfig struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
	MaxTokens int `json:"max_tokens"`
}

type ChoiceConfig struct {
	Options       []string `json:"options"`
	AllowMultiple bool     `json:"allow_multiple"`
	MinSelections int      `json:"min_selections"`
	MaxSelections int      `json:"max_selections"`
}

type TableColumn struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

type TableConfig struct {
	Columns []TableColumn `json:"columns"`
	MinRows int           `json:"min_rows"`
	MaxRows int           `json:"max_rows"`
}

// Content payload shapes, one per question type.
type textContent struct {
	Text string `json:"text"`
}

type choiceContent struct {
	Selected []string `json:"selected"`
}

type tableContent struct {
	Rows []map[string]any `json:"rows"`
}

// Validator checks answer content against a question's declared type and
// configuration. It is pure: callers persist the resulting is_valid flag.
type Validator struct {
	tokens TokenEstimator
}

func NewValidator(tokens TokenEstimator) *Validator {
	return &Validator{tokens: tokens}
}

// Validate returns nil when content satisfies every rule for the question
// type, or a validation error describing the first violated rule.
func (v *Validator) Validate(questionType string, content, config datatypes.JSON) error {
	switch questionType {
	case model.QuestionTypeText:
		return v.validateText(content, config)
	case model.QuestionTypeMultipleChoice:
		return v.validateMultipleChoice(content, config)
	case model.QuestionTypeTable:
		return v.validateTable(content, config)
	default:
		return apperror.Validation("type", "unsupported question type: %s", questionType)
	}
}

// IsValid is the non-strict form of Validate.
func (v *Validator) IsValid(questionType string, content, config datatypes.JSON) bool {
	return v.Validate(questionType, content, config) == nil
}

func (v *Validator) validateText(content, config datatypes.JSON) error {
	var payload textContent
	if err := json.Unmarshal(content, &payload); err != nil {
		return apperror.Validation("content", "text answer must be an object with a text field")
	}

	cfg := TextConfig{MaxLength: 10000, MaxTokens: 4096}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return apperror.Validation("configuration", "invalid TEXT configuration")
		}
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = 10000
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return apperror.Validation("text", "answer must be a non-empty string")
	}
	// Length bounds count characters, not bytes.
	length := utf8.RuneCountInString(text)
	if length < cfg.MinLength {
		return apperror.Validation("text", "answer must contain at least %d characters", cfg.MinLength)
	}
	if length > cfg.MaxLength {
		return apperror.Validation("text", "answer must not exceed %d characters", cfg.MaxLength)
	}
	if cfg.MaxTokens > 0 && v.tokens != nil {
		if n := v.tokens.EstimateTokens(text); n > cfg.MaxTokens {
			return apperror.Validation("text", "answer exceeds the limit of %d tokens", cfg.MaxTokens)
		}
	}
	return nil
}

func (v *Validator) validateMultipleChoice(content, config datatypes.JSON) error {
	var payload choiceContent
	if err := json.Unmarshal(content, &payload); err != nil {
		return apperror.Validation("content", "selected options must be a list")
	}

	var cfg ChoiceConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return apperror.Validation("configuration", "invalid MULTIPLE_CHOICE configuration")
	}
	if cfg.MinSelections == 0 {
		cfg.MinSelections = 1
	}
	if cfg.MaxSelections == 0 {
		cfg.MaxSelections = len(cfg.Options)
	}

	allowed := make(map[string]struct{}, len(cfg.Options))
	for _, opt := range cfg.Options {
		allowed[opt] = struct{}{}
	}
	for _, sel := range payload.Selected {
		if _, ok := allowed[sel]; !ok {
			return apperror.Validation("selected", "invalid option: %s", sel)
		}
	}

	if !cfg.AllowMultiple && len(payload.Selected) > 1 {
		return apperror.Validation("selected", "only one option may be selected")
	}
	if len(payload.Selected) < cfg.MinSelections {
		return apperror.Validation("selected", "at least %d option(s) required", cfg.MinSelections)
	}
	if len(payload.Selected) > cfg.MaxSelections {
		return apperror.Validation("selected", "at most %d option(s) allowed", cfg.MaxSelections)
	}
	return nil
}

func (v *Validator) validateTable(content, config datatypes.JSON) error {
	var payload tableContent
	if err := json.Unmarshal(content, &payload); err != nil {
		return apperror.Validation("content", "table rows must be a list of objects")
	}

	cfg := TableConfig{MaxRows: 100}
	if err := json.Unmarshal(config, &cfg); err != nil {
		return apperror.Validation("configuration", "invalid TABLE configuration")
	}
	if cfg.MaxRows == 0 {
		cfg.MaxRows = 100
	}

	if len(payload.Rows) < cfg.MinRows {
		return apperror.Validation("rows", "at least %d row(s) required", cfg.MinRows)
	}
	if len(payload.Rows) > cfg.MaxRows {
		return apperror.Validation("rows", "at most %d row(s) allowed", cfg.MaxRows)
	}

	declared := make(map[string]TableColumn, len(cfg.Columns))
	for _, col := range cfg.Columns {
		declared[col.Name] = col
	}

	for _, row := range payload.Rows {
		// Row key set must exactly equal the configured column set; keys are
		// never silently dropped.
		for _, col := range cfg.Columns {
			if _, ok := row[col.Name]; !ok {
				return apperror.Validation("rows", "missing required column: %s", col.Name)
			}
		}
		for key := range row {
			if _, ok := declared[key]; !ok {
				return apperror.Validation("rows", "unexpected column: %s", key)
			}
		}
		for _, col := range cfg.Columns {
			if col.DataType == "" {
				continue
			}
			if err := coerceValue(row[col.Name], col.DataType, col.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// coerceValue applies best-effort coercion of a JSON value to the declared
// column type; a value that cannot be coerced fails validation.
func coerceValue(value any, dataType, field string) error {
	switch dataType {
	case "string":
		return nil
	case "integer":
		switch v := value.(type) {
		case float64:
			if v == float64(int64(v)) {
				return nil
			}
		case string:
			if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return nil
			}
		}
	case "float":
		switch v := value.(type) {
		case float64:
			return nil
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return nil
			}
		}
	case "boolean":
		switch v := value.(type) {
		case bool:
			return nil
		case string:
			if _, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return nil
			}
		}
	default:
		return apperror.Validation(field, "unknown declared data type: %s", dataType)
	}
	return apperror.Validation(field, "invalid data type, expected %s", dataType)
}
