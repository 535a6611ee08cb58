package admin

import (
	"context"
	"testing"
	"time"

	"bookcollect/internal/platform/crypto"
	"bookcollect/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(testutil.TestSecret, time.Hour, repo)

	stored := Administrator{ID: 3, Login: "editor", PasswordHash: mustHash(t, "Secret#123")}

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().GetByLogin(gomock.Any(), "editor").Return(stored, nil)

		sess, err := svc.Login(context.Background(), " editor ", "Secret#123")
		require.NoError(t, err)
		assert.Equal(t, int64(3), sess.AdminID)
		assert.NotEmpty(t, sess.TokenID)

		claims, err := crypto.ParseToken(testutil.TestSecret, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.TokenID, claims.ID)
		assert.Equal(t, "editor", claims.Login)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo.EXPECT().GetByLogin(gomock.Any(), "editor").Return(stored, nil)

		_, err := svc.Login(context.Background(), "editor", "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown login", func(t *testing.T) {
		repo.EXPECT().GetByLogin(gomock.Any(), "ghost").Return(Administrator{}, ErrNotFound)

		_, err := svc.Login(context.Background(), "ghost", "Secret#123")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(testutil.TestSecret, time.Hour, repo)

	token, jti, err := crypto.GenerateToken(testutil.TestSecret, 5, "editor", time.Hour)
	require.NoError(t, err)

	repo.EXPECT().Revoke(gomock.Any(), jti, int64(5), gomock.Any()).Return(nil)
	assert.NoError(t, svc.Logout(context.Background(), token))

	assert.ErrorIs(t, svc.Logout(context.Background(), "garbage"), ErrUnauthorized)
}

func TestService_EnsureAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(testutil.TestSecret, time.Hour, repo)

	repo.EXPECT().Upsert(gomock.Any(), "admin", gomock.Any()).DoAndReturn(func(_ context.Context, _, hash string) (int64, error) {
		assert.True(t, crypto.VerifyPassword(hash, "Пароль#2025a"))
		return 1, nil
	})
	id, err := svc.EnsureAdmin(context.Background(), "admin", "Пароль#2025a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = svc.EnsureAdmin(context.Background(), "admin", "weak")
	assert.ErrorIs(t, err, crypto.ErrPasswordTooShort)
}

func TestService_IsRevoked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(testutil.TestSecret, time.Hour, repo)

	revoked, err := svc.IsRevoked(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, revoked, "tokens without jti are never accepted")

	repo.EXPECT().IsRevoked(gomock.Any(), "abc").Return(false, nil)
	revoked, err = svc.IsRevoked(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}
