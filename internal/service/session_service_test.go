package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/repository"
	"github.com/qs3c/companion_go_server/internal/testutil"
)

func setupSessionService(t *testing.T) (*SessionService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	s := NewSessionService(
		repository.NewSessionRepository(db),
		repository.NewCharacterRepository(db),
		NewQuotaService(),
	)
	return s, db
}

func TestSessionService_GetActive(t *testing.T) {
	s, db := setupSessionService(t)

	t.Run("no session returns nil without error", func(t *testing.T) {
		user := testutil.TestUser(t, db)

		session, err := s.GetActive(user.ID)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("existing session is returned with character preloaded", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		character := testutil.TestCharacter(t, db)
		testutil.TestSession(t, db, user.ID, character.ID)

		session, err := s.GetActive(user.ID)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, character.ID, session.CharacterID)
		require.NotNil(t, session.Character)
		assert.Equal(t, character.Name, session.Character.Name)
	})
}

func TestSessionService_SelectCharacter(t *testing.T) {
	s, db := setupSessionService(t)

	t.Run("creates a fresh session", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		character := testutil.TestCharacter(t, db)

		got, err := s.SelectCharacter(user, character.ID)
		require.NoError(t, err)
		assert.Equal(t, character.ID, got.ID)

		session, err := s.GetActive(user.ID)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, DefaultStyle, session.CurrentStyle)
		assert.Empty(t, session.ChatHistory)
		assert.Equal(t, 0, session.MsgCounter)
	})

	t.Run("replaces the old session and wipes its history", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		first := testutil.TestCharacter(t, db)
		second := testutil.TestCharacter(t, db)

		_, err := s.SelectCharacter(user, first.ID)
		require.NoError(t, err)
		_, err = s.AppendTurn(user.ID, model.RoleUser, "hello")
		require.NoError(t, err)

		_, err = s.SelectCharacter(user, second.ID)
		require.NoError(t, err)

		session, err := s.GetActive(user.ID)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, second.ID, session.CharacterID)
		assert.Empty(t, session.ChatHistory)

		// Only one active session per user
		var count int64
		require.NoError(t, db.Model(&model.Session{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("locked character denied for free user", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		locked := testutil.TestCharacter(t, db, testutil.WithLocked())

		_, err := s.SelectCharacter(user, locked.ID)
		assert.ErrorIs(t, err, ErrCharacterLocked)

		session, err := s.GetActive(user.ID)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("locked character allowed for premium user", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithPremium())
		locked := testutil.TestCharacter(t, db, testutil.WithLocked())

		_, err := s.SelectCharacter(user, locked.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown character", func(t *testing.T) {
		user := testutil.TestUser(t, db)

		_, err := s.SelectCharacter(user, 99999)
		assert.ErrorIs(t, err, ErrCharacterNotFound)
	})
}

func TestSessionService_AppendTurn(t *testing.T) {
	s, db := setupSessionService(t)

	t.Run("appends in order", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		character := testutil.TestCharacter(t, db)
		testutil.TestSession(t, db, user.ID, character.ID)

		_, err := s.AppendTurn(user.ID, model.RoleUser, "hi")
		require.NoError(t, err)
		history, err := s.AppendTurn(user.ID, model.RoleAssistant, "hey you 😘")
		require.NoError(t, err)

		require.Len(t, history, 2)
		assert.Equal(t, model.RoleUser, history[0].Role)
		assert.Equal(t, "hi", history[0].Content)
		assert.Equal(t, model.RoleAssistant, history[1].Role)
	})

	t.Run("trims to the newest turns", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		character := testutil.TestCharacter(t, db)
		testutil.TestSession(t, db, user.ID, character.ID)

		for i := 0; i < model.MaxHistoryTurns+5; i++ {
			_, err := s.AppendTurn(user.ID, model.RoleUser, fmt.Sprintf("msg %d", i))
			require.NoError(t, err)
		}

		session, err := s.GetActive(user.ID)
		require.NoError(t, err)
		require.Len(t, session.ChatHistory, model.MaxHistoryTurns)
		// Oldest turns dropped, newest kept
		assert.Equal(t, "msg 5", session.ChatHistory[0].Content)
		assert.Equal(t, fmt.Sprintf("msg %d", model.MaxHistoryTurns+4), session.ChatHistory[model.MaxHistoryTurns-1].Content)
	})

	t.Run("no active session yields nil history", func(t *testing.T) {
		user := testutil.TestUser(t, db)

		history, err := s.AppendTurn(user.ID, model.RoleUser, "hello?")
		require.NoError(t, err)
		assert.Nil(t, history)
	})
}

func TestSessionService_RestoreSession(t *testing.T) {
	s, db := setupSessionService(t)

	user := testutil.TestUser(t, db)
	character := testutil.TestCharacter(t, db)
	other := testutil.TestCharacter(t, db)
	testutil.TestSession(t, db, user.ID, other.ID,
		testutil.WithHistory(model.ChatHistory{{Role: model.RoleUser, Content: "current"}}),
		testutil.WithMsgCounter(2),
	)

	saved := model.ChatHistory{
		{Role: model.RoleUser, Content: "old times"},
		{Role: model.RoleAssistant, Content: "I remember 😉"},
	}
	checkpoint := testutil.TestCheckpoint(t, db, user.ID, character.ID,
		testutil.WithCheckpointHistory(saved),
	)

	require.NoError(t, s.RestoreSession(user.ID, checkpoint))

	session, err := s.GetActive(user.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, character.ID, session.CharacterID)
	assert.Equal(t, saved, session.ChatHistory)
	assert.Equal(t, 0, session.MsgCounter)
}

func TestSessionService_SetMsgCounter(t *testing.T) {
	s, db := setupSessionService(t)

	user := testutil.TestUser(t, db)
	character := testutil.TestCharacter(t, db)
	testutil.TestSession(t, db, user.ID, character.ID)

	require.NoError(t, s.SetMsgCounter(user.ID, 2))

	session, err := s.GetActive(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.MsgCounter)
}

func TestSessionService_ListCharacters(t *testing.T) {
	s, db := setupSessionService(t)

	testutil.TestCharacter(t, db, testutil.WithCharacterName("Luna"))
	testutil.TestCharacter(t, db, testutil.WithCharacterName("Raven"), testutil.WithLocked())

	characters, err := s.ListCharacters()
	require.NoError(t, err)
	assert.Len(t, characters, 2)
}
