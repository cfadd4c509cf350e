package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midGameSession(id string) *entity.Session {
	session := entity.NewSession(id, entity.HumanVsComputer, entity.PlayerX)
	session.State = entity.FromBoard(entity.Board{
		{entity.PlayerX, entity.EmptyCell, entity.EmptyCell},
		{entity.EmptyCell, entity.PlayerO, entity.EmptyCell},
		{entity.EmptyCell, entity.EmptyCell, entity.EmptyCell},
	}, entity.PlayerX)

	return session
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, 0)

	// Given: a session in the middle of a game
	session := midGameSession("123")

	// When: CreateOrUpdate is called twice with a changed board
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

	session.State.Board[2][2] = entity.PlayerX
	session.State.Turn = entity.PlayerO
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

	// Then: the latest position is stored
	stored, err := sessionRepo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, stored)
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Minute)

		// Given: a stored session
		session := midGameSession("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with existing ID
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: the retrieved session matches and carries the ttl
		require.NoError(t, err)
		assert.Equal(t, session, retrieved)

		ttl, err := st.Storage.TTL(ctx, sessionKeyPrefix+session.ID).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// When: GetByID is called with non-existent ID
		retrieved, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, ErrSessionNotFound)
		assert.Empty(t, retrieved.ID)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// Given: a stored session
		session := midGameSession("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: DeleteByID is called with existing ID
		err := sessionRepo.DeleteByID(ctx, session.ID)

		// Then: the session is gone
		require.NoError(t, err)

		_, err = sessionRepo.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := sessionRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}
