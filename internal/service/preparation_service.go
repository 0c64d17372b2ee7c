package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/prompt"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/solenne/roadmapper/internal/validation"
	"gorm.io/datatypes"
)

// technicalVocabulary is the fixed keyword list behind the technical-precision
// heuristic. Answers containing any of these words bias the generation
// temperature downward.
var technicalVocabulary = []string{
	"code", "programming", "development", "technical",
	"engineering", "software", "algorithm",
}

// ContextAnalysis summarizes the staged answers for parameter tuning.
type ContextAnalysis struct {
	TechnicalPrecision   float64 `json:"technical_precision"`
	ResponseComplexity   int     `json:"response_complexity"`
	SuggestedTemperature float64 `json:"suggested_temperature"`
}

// PreparedGeneration is the output of the preparation pipeline: the
// structured substitution data, the rendered prompt, and the analysis used
// to tune the completion call.
type PreparedGeneration struct {
	Data            map[string]any
	Prompt          string
	ContextAnalysis ContextAnalysis
}

// PreparationService assembles the structured payload for one generation
// from the user's staged answers and the active question catalog.
type PreparationService interface {
	Prepare(tempAnswers map[string]datatypes.JSON, user *model.User) (*PreparedGeneration, error)
}

type preparationService struct {
	questionRepo repository.QuestionRepository
	validator    *validation.Validator
	engine       *prompt.Engine
}

func NewPreparationService(
	questionRepo repository.QuestionRepository,
	validator *validation.Validator,
	engine *prompt.Engine,
) PreparationService {
	return &preparationService{
		questionRepo: questionRepo,
		validator:    validator,
		engine:       engine,
	}
}

func (s *preparationService) Prepare(tempAnswers map[string]datatypes.JSON, user *model.User) (*PreparedGeneration, error) {
	questions, err := s.questionRepo.FindActiveOrdered()
	if err != nil {
		return nil, fmt.Errorf("failed to load active questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, apperror.Integrity("no active questions available for generation")
	}

	questionData := make([]map[string]any, 0, len(questions))
	responseData := make([]map[string]any, 0, len(tempAnswers))
	var unanswered []int
	categories := distinctCategories(questions)

	for i, question := range questions {
		questionData = append(questionData, map[string]any{
			"text": question.Text,
			"type": question.Type,
		})

		answer, answered := tempAnswers[question.ID]
		if !answered {
			unanswered = append(unanswered, i)
			continue
		}
		if err := s.validator.Validate(question.Type, answer, question.Configuration); err != nil {
			return nil, err
		}
		responseData = append(responseData, map[string]any{
			"question_id": question.ID,
			"content":     answerText(question.Type, answer),
			"is_valid":    true,
		})
	}

	completionRate := float64(len(responseData)) / float64(len(questions)) * 100

	data := map[string]any{
		"user": map[string]any{
			"username": user.Username,
			"role":     user.Role,
		},
		"questions": toAnySlice(questionData),
		"responses": toAnySlice(responseData),
		"metadata": map[string]any{
			"total_questions":    len(questions),
			"answered_questions": len(responseData),
			"completion_rate":    completionRate,
			"categories":         categories,
		},
		"context": map[string]any{
			"experience_duration": experienceDuration(user.CreatedAt, time.Now()),
			"activity_level":      activityLevel(user.LastLogin, time.Now()),
		},
	}

	analysis := analyzeContext(responseData)

	rendered, err := s.buildPrompt(questions, unanswered, len(responseData), data)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("userID", user.ID).
		Int("answered", len(responseData)).
		Int("unanswered", len(unanswered)).
		Float64("technical_precision", analysis.TechnicalPrecision).
		Msg("Generation data prepared")

	return &PreparedGeneration{Data: data, Prompt: rendered, ContextAnalysis: analysis}, nil
}

// buildPrompt assembles a template with indexed placeholders for the staged
// answers and the unanswered questions, then renders it through the engine
// in safe mode so invalid data can never produce a partially-filled prompt.
func (s *preparationService) buildPrompt(questions []model.Question, unanswered []int, answeredCount int, data map[string]any) (string, error) {
	var b strings.Builder
	b.WriteString("User profile: {user.username} (role: {user.role}).\n")
	b.WriteString("Experience: {context.experience_duration}, activity level: {context.activity_level}.\n")
	b.WriteString("Questionnaire progress: {metadata.answered_questions}/{metadata.total_questions} answered ({metadata.completion_rate}% complete).\n")
	b.WriteString("Categories covered: {metadata.categories}.\n\n")

	b.WriteString("Answers provided:\n")
	for i := 0; i < answeredCount; i++ {
		fmt.Fprintf(&b, "- {responses[%d].content}\n", i)
	}

	if len(unanswered) > 0 {
		b.WriteString("\nQuestions left unanswered:\n")
		for _, idx := range unanswered {
			fmt.Fprintf(&b, "- {questions[%d].text}\n", idx)
		}
	}

	b.WriteString("\nBuild a personalized, step-by-step roadmap for this user. ")
	b.WriteString("Structure it into phases with concrete milestones, and take the unanswered areas into account as open assumptions.")

	return s.engine.Substitute(b.String(), data, true)
}

// analyzeContext computes the technical-precision ratio over the staged
// answers and the temperature it suggests: max(0.3, 1 - precision).
func analyzeContext(responses []map[string]any) ContextAnalysis {
	if len(responses) == 0 {
		return ContextAnalysis{TechnicalPrecision: 0.5, SuggestedTemperature: 0.7}
	}

	technicalCount := 0
	for _, response := range responses {
		content := strings.ToLower(fmt.Sprint(response["content"]))
		for _, term := range technicalVocabulary {
			if strings.Contains(content, term) {
				technicalCount++
				break
			}
		}
	}

	precision := float64(technicalCount) / float64(len(responses))
	return ContextAnalysis{
		TechnicalPrecision:   precision,
		ResponseComplexity:   len(responses),
		SuggestedTemperature: max(0.3, 1-precision),
	}
}

// answerText flattens a typed answer payload into a prompt-safe line.
func answerText(questionType string, content datatypes.JSON) string {
	switch questionType {
	case model.QuestionTypeText:
		var payload struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(content, &payload) == nil {
			return payload.Text
		}
	case model.QuestionTypeMultipleChoice:
		var payload struct {
			Selected []string `json:"selected"`
		}
		if json.Unmarshal(content, &payload) == nil {
			return strings.Join(payload.Selected, ", ")
		}
	case model.QuestionTypeTable:
		var payload struct {
			Rows []map[string]any `json:"rows"`
		}
		if json.Unmarshal(content, &payload) == nil {
			parts := make([]string, 0, len(payload.Rows))
			for _, row := range payload.Rows {
				cells := make([]string, 0, len(row))
				for key, value := range row {
					cells = append(cells, fmt.Sprintf("%s=%v", key, value))
				}
				parts = append(parts, strings.Join(cells, " "))
			}
			return strings.Join(parts, "; ")
		}
	}
	return string(content)
}

// experienceDuration buckets account age into days, months or years.
func experienceDuration(createdAt, now time.Time) string {
	days := int(now.Sub(createdAt).Hours() / 24)
	switch {
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		return fmt.Sprintf("%d months", days/30)
	default:
		return fmt.Sprintf("%d years", days/365)
	}
}

func activityLevel(lastLogin *time.Time, now time.Time) string {
	if lastLogin == nil {
		return "inactive"
	}
	since := now.Sub(*lastLogin)
	switch {
	case since < 7*24*time.Hour:
		return "very active"
	case since < 30*24*time.Hour:
		return "active"
	default:
		return "inactive"
	}
}

// distinctCategories preserves catalog order while deduplicating.
func distinctCategories(questions []model.Question) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, question := range questions {
		if question.Category == "" {
			continue
		}
		if _, ok := seen[question.Category]; ok {
			continue
		}
		seen[question.Category] = struct{}{}
		categories = append(categories, question.Category)
	}
	return categories
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
