package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/repository"
	"github.com/qs3c/companion_go_server/internal/testutil"
)

func TestUserService_GetOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	s := NewUserService(repository.NewUserRepository(db))

	t.Run("creates unknown user with zeroed counters", func(t *testing.T) {
		user, err := s.GetOrCreate("tg_new", "newbie", "New")
		require.NoError(t, err)

		assert.Equal(t, "tg_new", user.ID)
		assert.Equal(t, "newbie", user.Username)
		assert.Equal(t, 0, user.DailyMsgCount)
		assert.Equal(t, 0, user.DailyImgCount)
		assert.False(t, user.IsPremium)
		assert.WithinDuration(t, time.Now(), user.LastResetTime, time.Second)
	})

	t.Run("returns existing user unchanged inside window", func(t *testing.T) {
		existing := testutil.TestUser(t, db,
			testutil.WithMsgCount(7),
			testutil.WithLastReset(time.Now().Add(-23*time.Hour)),
		)

		user, err := s.GetOrCreate(existing.ID, "", "")
		require.NoError(t, err)
		assert.Equal(t, 7, user.DailyMsgCount)
	})

	t.Run("lazily resets counters past 24h window", func(t *testing.T) {
		existing := testutil.TestUser(t, db,
			testutil.WithMsgCount(10),
			testutil.WithImgCount(3),
			testutil.WithLastReset(time.Now().Add(-25*time.Hour)),
		)

		user, err := s.GetOrCreate(existing.ID, "", "")
		require.NoError(t, err)
		assert.Equal(t, 0, user.DailyMsgCount)
		assert.Equal(t, 0, user.DailyImgCount)
		assert.WithinDuration(t, time.Now(), user.LastResetTime, time.Second)

		// Reset must be persisted, not just in-memory
		var persisted model.User
		require.NoError(t, db.First(&persisted, "id = ?", existing.ID).Error)
		assert.Equal(t, 0, persisted.DailyMsgCount)
	})

	t.Run("reset is idempotent across repeated reads", func(t *testing.T) {
		existing := testutil.TestUser(t, db,
			testutil.WithMsgCount(10),
			testutil.WithLastReset(time.Now().Add(-25*time.Hour)),
		)

		first, err := s.GetOrCreate(existing.ID, "", "")
		require.NoError(t, err)
		firstReset := first.LastResetTime

		second, err := s.GetOrCreate(existing.ID, "", "")
		require.NoError(t, err)
		assert.Equal(t, 0, second.DailyMsgCount)
		assert.WithinDuration(t, firstReset, second.LastResetTime, time.Second)
	})

	t.Run("reset preserves premium flag", func(t *testing.T) {
		existing := testutil.TestUser(t, db,
			testutil.WithPremium(),
			testutil.WithMsgCount(50),
			testutil.WithLastReset(time.Now().Add(-48*time.Hour)),
		)

		user, err := s.GetOrCreate(existing.ID, "", "")
		require.NoError(t, err)
		assert.True(t, user.IsPremium)
		assert.Equal(t, 0, user.DailyMsgCount)
	})
}

func TestUserService_GrantPremium(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	s := NewUserService(repository.NewUserRepository(db))

	t.Run("grants premium to existing user", func(t *testing.T) {
		user := testutil.TestUser(t, db)

		require.NoError(t, s.GrantPremium(user.ID))

		var after model.User
		require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
		assert.True(t, after.IsPremium)
	})

	t.Run("unknown user is a logged no-op", func(t *testing.T) {
		err := s.GrantPremium("tg_ghost")
		assert.NoError(t, err)
	})

	t.Run("granting twice keeps premium", func(t *testing.T) {
		user := testutil.TestUser(t, db)

		require.NoError(t, s.GrantPremium(user.ID))
		require.NoError(t, s.GrantPremium(user.ID))

		var after model.User
		require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
		assert.True(t, after.IsPremium)
	})
}

func TestUserService_GetQuotaInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	s := NewUserService(repository.NewUserRepository(db))

	t.Run("returns counters and limits", func(t *testing.T) {
		user := testutil.TestUser(t, db,
			testutil.WithMsgCount(4),
			testutil.WithImgCount(2),
		)

		info, err := s.GetQuotaInfo(user.ID)
		require.NoError(t, err)

		assert.False(t, info.IsPremium)
		assert.Equal(t, 4, info.MsgUsed)
		assert.Equal(t, FreeMessageLimit, info.MsgLimit)
		assert.Equal(t, 2, info.ImgUsed)
		assert.Equal(t, FreeImageLimit, info.ImgLimit)
		assert.NotEmpty(t, info.ResetAt)
	})

	t.Run("applies lazy reset on read", func(t *testing.T) {
		user := testutil.TestUser(t, db,
			testutil.WithMsgCount(10),
			testutil.WithLastReset(time.Now().Add(-30*time.Hour)),
		)

		info, err := s.GetQuotaInfo(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, info.MsgUsed)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.GetQuotaInfo("tg_ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_IncrementCounters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	s := NewUserService(repository.NewUserRepository(db))
	user := testutil.TestUser(t, db)

	require.NoError(t, s.IncrementMessageCount(user.ID))
	require.NoError(t, s.IncrementMessageCount(user.ID))
	require.NoError(t, s.IncrementImageCount(user.ID))

	var after model.User
	require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
	assert.Equal(t, 2, after.DailyMsgCount)
	assert.Equal(t, 1, after.DailyImgCount)
}
