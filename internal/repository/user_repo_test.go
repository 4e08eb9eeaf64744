package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/testutil"
)

func TestUserRepository_Increments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithMsgCount(3), testutil.WithImgCount(1))

	require.NoError(t, r.IncrementMsgCount(user.ID))
	require.NoError(t, r.IncrementImgCount(user.ID))

	got, err := r.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.DailyMsgCount)
	assert.Equal(t, 2, got.DailyImgCount)
}

func TestUserRepository_ResetQuota(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewUserRepository(db)
	user := testutil.TestUser(t, db,
		testutil.WithMsgCount(10),
		testutil.WithImgCount(3),
		testutil.WithLastReset(time.Now().Add(-30*time.Hour)),
	)

	now := time.Now()
	require.NoError(t, r.ResetQuota(user.ID, now))

	got, err := r.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DailyMsgCount)
	assert.Equal(t, 0, got.DailyImgCount)
	assert.WithinDuration(t, now, got.LastResetTime, time.Second)
}

func TestUserRepository_ResetExpiredQuotas(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewUserRepository(db)

	expired1 := testutil.TestUser(t, db,
		testutil.WithMsgCount(10),
		testutil.WithLastReset(time.Now().Add(-25*time.Hour)),
	)
	expired2 := testutil.TestUser(t, db,
		testutil.WithImgCount(3),
		testutil.WithLastReset(time.Now().Add(-48*time.Hour)),
	)
	fresh := testutil.TestUser(t, db,
		testutil.WithMsgCount(5),
		testutil.WithLastReset(time.Now().Add(-1*time.Hour)),
	)

	affected, err := r.ResetExpiredQuotas(time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	for _, id := range []string{expired1.ID, expired2.ID} {
		got, err := r.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, 0, got.DailyMsgCount)
		assert.Equal(t, 0, got.DailyImgCount)
	}

	untouched, err := r.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, untouched.DailyMsgCount)
}

func TestUserRepository_SetPremium(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, r.SetPremium(user.ID, true))

	got, err := r.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPremium)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewUserRepository(db)

	_, err := r.GetByID("tg_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, r.UpdateFields(user.ID, map[string]interface{}{
		"username": "renamed",
	}))

	var got model.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, "renamed", got.Username)
}
