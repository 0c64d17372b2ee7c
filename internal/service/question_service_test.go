package service

import (
	"testing"

	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestQuestionService(t *testing.T, db *gorm.DB) QuestionService {
	t.Helper()
	return NewQuestionService(repository.NewQuestionRepository(db), db)
}

func TestQuestionService_Create_ConfigLimits(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)

	// Six options exceed the multiple-choice cap.
	_, err := svc.Create(QuestionInput{
		Text:          "Pick a language",
		Type:          model.QuestionTypeMultipleChoice,
		Configuration: datatypes.JSON(`{"options":["a","b","c","d","e","f"]}`),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Four columns exceed the table cap.
	_, err = svc.Create(QuestionInput{
		Text:          "Your skills",
		Type:          model.QuestionTypeTable,
		Configuration: datatypes.JSON(`{"columns":[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"}]}`),
	})
	require.Error(t, err)

	// Within limits passes.
	question, err := svc.Create(QuestionInput{
		Text:          "Pick one",
		Type:          model.QuestionTypeMultipleChoice,
		Configuration: datatypes.JSON(`{"options":["Go","Rust"]}`),
	})
	require.NoError(t, err)
	assert.True(t, question.IsActive)
}

func TestQuestionService_Create_RejectsDuplicateOptions(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)

	_, err := svc.Create(QuestionInput{
		Text:          "Duplicates",
		Type:          model.QuestionTypeMultipleChoice,
		Configuration: datatypes.JSON(`{"options":["Go","Go"]}`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestQuestionService_Reorder_RejectsDuplicatePositions(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)

	q1 := seedTextQuestion(t, db, "R1")
	q2 := seedTextQuestion(t, db, "R2")
	require.NoError(t, db.Model(&model.Question{}).Where("id IN ?", []string{q1.ID, q2.ID}).Update("category", "general").Error)

	err := svc.Reorder("general", map[string]int{q1.ID: 1, q2.ID: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Order values are untouched after the rejected call.
	var after model.Question
	require.NoError(t, db.First(&after, "id = ?", q1.ID).Error)
	assert.Equal(t, 0, after.OrderNum)
}

func TestQuestionService_Reorder_AppliesPositionsAtomically(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)

	q1 := seedTextQuestion(t, db, "A1")
	q2 := seedTextQuestion(t, db, "A2")
	require.NoError(t, db.Model(&model.Question{}).Where("id IN ?", []string{q1.ID, q2.ID}).Update("category", "general").Error)

	require.NoError(t, svc.Reorder("general", map[string]int{q1.ID: 2, q2.ID: 1}))

	var after1, after2 model.Question
	require.NoError(t, db.First(&after1, "id = ?", q1.ID).Error)
	require.NoError(t, db.First(&after2, "id = ?", q2.ID).Error)
	assert.Equal(t, 2, after1.OrderNum)
	assert.Equal(t, 1, after2.OrderNum)
}

func TestQuestionService_Reorder_RejectsForeignQuestion(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)

	q1 := seedTextQuestion(t, db, "F1")
	require.NoError(t, db.Model(&model.Question{}).Where("id = ?", q1.ID).Update("category", "general").Error)
	other := seedTextQuestion(t, db, "F2") // stays in the empty category

	err := svc.Reorder("general", map[string]int{q1.ID: 1, other.ID: 2})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Nothing is applied when one entry fails.
	var after model.Question
	require.NoError(t, db.First(&after, "id = ?", q1.ID).Error)
	assert.Equal(t, 0, after.OrderNum)
}

func TestQuestionService_Delete_GuardedByResponses(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)
	responses := newTestResponseService(t, db)

	question := seedTextQuestion(t, db, "Answered question")
	_, err := responses.SubmitAnswer("user-1", question.ID, datatypes.JSON(`{"text":"yes"}`), true, "")
	require.NoError(t, err)

	err = svc.Delete(question.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsProtection(err))

	// An unanswered question deletes cleanly.
	fresh := seedTextQuestion(t, db, "Unanswered question")
	require.NoError(t, svc.Delete(fresh.ID))
}

func TestQuestionService_ToggleAndStats(t *testing.T) {
	db := openTestDB(t)
	svc := newTestQuestionService(t, db)

	q1 := seedTextQuestion(t, db, "S1")
	seedTableQuestion(t, db, "S2")

	toggled, err := svc.ToggleActive(q1.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Active)
	assert.EqualValues(t, 1, stats.Inactive)
	assert.EqualValues(t, 1, stats.ByType[model.QuestionTypeText])
	assert.EqualValues(t, 1, stats.ByType[model.QuestionTypeTable])
}
