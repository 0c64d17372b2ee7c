package service

import (
	"testing"

	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T, db *gorm.DB) UserService {
	t.Helper()
	return NewUserService(repository.NewUserRepository(db), newTestResponseService(t, db))
}

func TestUserService_DeleteAccount_ArchivesResponsesFirst(t *testing.T) {
	db := openTestDB(t)
	users := newTestUserService(t, db)
	responses := newTestResponseService(t, db)

	user, err := users.Register("erin@example.com", "erin")
	require.NoError(t, err)

	question := seedTextQuestion(t, db, "Account deletion question")
	_, err = responses.SubmitAnswer(user.ID, question.ID, datatypes.JSON(`{"text":"v1"}`), true, "")
	require.NoError(t, err)
	_, err = responses.SubmitAnswer(user.ID, question.ID, datatypes.JSON(`{"text":"v2"}`), true, "")
	require.NoError(t, err)

	roadmap := model.Roadmap{UserID: &user.ID, Title: "Survivor", Version: 1, Status: model.RoadmapStatusCompleted}
	require.NoError(t, db.Create(&roadmap).Error)

	require.NoError(t, users.DeleteAccount(user.ID))

	var userCount, responseCount, backupCount int64
	require.NoError(t, db.Model(&model.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&model.Response{}).Count(&responseCount).Error)
	require.NoError(t, db.Model(&model.ResponseBackup{}).Count(&backupCount).Error)
	assert.EqualValues(t, 0, userCount)
	assert.EqualValues(t, 0, responseCount)
	assert.EqualValues(t, 0, backupCount)

	// The roadmap survives without a user reference.
	var survivor model.Roadmap
	require.NoError(t, db.First(&survivor, "id = ?", roadmap.ID).Error)
	assert.Nil(t, survivor.UserID)
}

func TestUserService_Register_RequiresFields(t *testing.T) {
	db := openTestDB(t)
	users := newTestUserService(t, db)

	_, err := users.Register("", "name")
	assert.Error(t, err)

	_, err = users.Register("x@example.com", "")
	assert.Error(t, err)
}

func TestUserService_Deactivate(t *testing.T) {
	db := openTestDB(t)
	users := newTestUserService(t, db)

	user, err := users.Register("frank@example.com", "frank")
	require.NoError(t, err)

	deactivated, err := users.Deactivate(user.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
}
