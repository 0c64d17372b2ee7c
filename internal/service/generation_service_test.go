package service

import (
	"context"
	"errors"
	"testing"

	"github.com/solenne/roadmapper/config"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/prompt"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/solenne/roadmapper/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeCompletion struct {
	result  *CompletionResult
	err     error
	calls   int
	lastCfg GenerationConfig
	onCall  func()
}

func (f *fakeCompletion) GenerateCompletion(_ context.Context, _ []Message, cfg GenerationConfig) (*CompletionResult, error) {
	f.calls++
	f.lastCfg = cfg
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeCompletion) HealthCheck(context.Context) error { return nil }

type generationFixture struct {
	db         *gorm.DB
	svc        GenerationService
	buffer     AnswerBufferService
	completion *fakeCompletion
	user       *model.User
	question   *model.Question
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	db := openTestDB(t)

	user := &model.User{Email: "alice@example.com", Username: "alice", Role: model.RoleUser, IsActive: true}
	require.NoError(t, db.Create(user).Error)

	question := seedTextQuestion(t, db, "What do you want to learn?")

	cfg := &config.Config{}
	cfg.AI.DefaultModel = "gpt-4"
	cfg.AI.DefaultTemperature = 0.7
	cfg.AI.DefaultMaxTokens = 4096
	cfg.AI.RequestTimeoutSec = 5

	buffer := NewAnswerBufferService()
	completion := &fakeCompletion{result: &CompletionResult{
		Content:     "# Roadmap\n1. Learn the basics",
		Model:       "gpt-4",
		TotalTokens: 321,
	}}

	questionRepo := repository.NewQuestionRepository(db)
	validator := validation.NewValidator(stubEstimator{})
	preparation := NewPreparationService(questionRepo, validator, prompt.NewEngine(prompt.DefaultCatalog()))

	svc := NewGenerationService(
		repository.NewRoadmapRepository(db),
		repository.NewGenerationRecordRepository(db),
		repository.NewUserRepository(db),
		preparation,
		completion,
		NewSettingsService(cfg),
		buffer,
		cfg,
		db,
	)

	return &generationFixture{db: db, svc: svc, buffer: buffer, completion: completion, user: user, question: question}
}

func (f *generationFixture) stageAnswer(text string) {
	f.buffer.Stage(f.user.ID, f.question.ID, datatypes.JSON(`{"text":"`+text+`"}`))
}

func (f *generationFixture) createRoadmap(t *testing.T) *model.Roadmap {
	t.Helper()
	roadmap, err := f.svc.Create(&f.user.ID, "My roadmap")
	require.NoError(t, err)
	return roadmap
}

func TestGenerationService_Generate_Success(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("learn backend basics")

	outcome, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.NoError(t, err)

	assert.Equal(t, model.RoadmapStatusCompleted, outcome.Roadmap.Status)
	assert.Equal(t, 2, outcome.Roadmap.Version)
	assert.Contains(t, outcome.Roadmap.Content, "Roadmap")

	// Buffer is consumed on success.
	assert.Empty(t, f.buffer.Snapshot(f.user.ID))

	records, err := f.svc.History(roadmap.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Success)
	assert.Equal(t, 321, records[0].TokenCount)
	assert.NotEmpty(t, records[0].PromptUsed)
}

func TestGenerationService_Generate_NoStagedAnswers(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)

	_, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Zero(t, f.completion.calls)
}

func TestGenerationService_Generate_WhileGenerating(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("anything")

	require.NoError(t, f.db.Model(&model.Roadmap{}).Where("id = ?", roadmap.ID).Update("status", model.RoadmapStatusGenerating).Error)

	_, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))
	assert.Zero(t, f.completion.calls)

	var after model.Roadmap
	require.NoError(t, f.db.First(&after, "id = ?", roadmap.ID).Error)
	assert.Equal(t, model.RoadmapStatusGenerating, after.Status)
	assert.Equal(t, 1, after.Version)
}

func TestGenerationService_Generate_FailureKeepsBufferAndRecordsError(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("learn databases")
	f.completion.err = apperror.ExternalService(errors.New("upstream timeout"), "completion request failed")

	_, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsExternalService(err))

	var after model.Roadmap
	require.NoError(t, f.db.First(&after, "id = ?", roadmap.ID).Error)
	assert.Equal(t, model.RoadmapStatusError, after.Status)

	// Staged answers survive a failed attempt so the user can retry.
	assert.NotEmpty(t, f.buffer.Snapshot(f.user.ID))

	records, err := f.svc.History(roadmap.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.Contains(t, records[0].ErrorMessage, "completion request failed")
}

func TestGenerationService_Regenerate_FromErrorState(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("learn testing")

	require.NoError(t, f.db.Model(&model.Roadmap{}).Where("id = ?", roadmap.ID).Update("status", model.RoadmapStatusError).Error)

	outcome, err := f.svc.Regenerate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.NoError(t, err)
	assert.Equal(t, model.RoadmapStatusCompleted, outcome.Roadmap.Status)
	// Version advances once for the regenerate marker and once for the
	// completed generation.
	assert.Equal(t, 3, outcome.Roadmap.Version)
}

func TestGenerationService_Regenerate_WhileGenerating(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)

	require.NoError(t, f.db.Model(&model.Roadmap{}).Where("id = ?", roadmap.ID).Update("status", model.RoadmapStatusGenerating).Error)

	_, err := f.svc.Regenerate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))
}

func TestGenerationService_ArchivedIsTerminal(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("anything")

	archived, err := f.svc.Archive(roadmap.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoadmapStatusArchived, archived.Status)

	_, err = f.svc.Archive(roadmap.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))

	_, err = f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))

	_, err = f.svc.Regenerate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))

	err = f.svc.Delete(roadmap.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsProtection(err))
}

func TestGenerationService_Archive_WhileGenerating(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)

	require.NoError(t, f.db.Model(&model.Roadmap{}).Where("id = ?", roadmap.ID).Update("status", model.RoadmapStatusGenerating).Error)

	_, err := f.svc.Archive(roadmap.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))

	var after model.Roadmap
	require.NoError(t, f.db.First(&after, "id = ?", roadmap.ID).Error)
	assert.Equal(t, model.RoadmapStatusGenerating, after.Status)
}

func TestGenerationService_Generate_ArchivedDuringCompletionStaysArchived(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("learn concurrency")

	// The roadmap reaches ARCHIVED while the completion call is in flight.
	f.completion.onCall = func() {
		require.NoError(t, f.db.Model(&model.Roadmap{}).Where("id = ?", roadmap.ID).Update("status", model.RoadmapStatusArchived).Error)
	}

	_, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.Error(t, err)
	assert.True(t, apperror.IsStateConflict(err))

	// The late result must not overwrite the terminal state, on either the
	// COMPLETED or the ERROR path.
	var after model.Roadmap
	require.NoError(t, f.db.First(&after, "id = ?", roadmap.ID).Error)
	assert.Equal(t, model.RoadmapStatusArchived, after.Status)
	assert.Equal(t, 1, after.Version)
	assert.Empty(t, after.Content)

	// The attempt is still accounted for in the history.
	records, err := f.svc.History(roadmap.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)

	// Staged answers survive since nothing was applied.
	assert.NotEmpty(t, f.buffer.Snapshot(f.user.ID))
}

func TestGenerationService_Generate_TemperatureBiasedByContext(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	// A fully technical answer set drives the suggested temperature to its floor.
	f.stageAnswer("software engineering and algorithm development")

	_, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, f.completion.lastCfg.Temperature, 0.001)
}

func TestGenerationService_Generate_ExplicitTemperatureWins(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)
	f.stageAnswer("software engineering and algorithm development")

	temp := 0.9
	_, err := f.svc.Generate(context.Background(), roadmap.ID, f.user.ID, ConfigOverride{Temperature: &temp})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, f.completion.lastCfg.Temperature, 0.001)
}

func TestGenerationService_Delete_NonArchived(t *testing.T) {
	f := newGenerationFixture(t)
	roadmap := f.createRoadmap(t)

	require.NoError(t, f.svc.Delete(roadmap.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.Roadmap{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
