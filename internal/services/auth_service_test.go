package services

import (
	"context"
	"testing"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: "test",
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenSecret: "refresh-secret",
			RefreshTokenExpiry: time.Hour,
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewAuthService(repos.Users, testConfig())

	user, err := svc.Register(ctx, RegisterInput{
		Username: " Alice ",
		Email:    "Alice@Example.com",
		FullName: "Alice Liddell",
		Password: "wonderland",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "wonderland", user.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "new@example.com", FullName: "A", Password: "x"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "", FullName: "Bob", Password: "x"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	result, err := svc.Login(ctx, "", "alice@example.com", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	current, err := svc.GetUserFromToken(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	_, err = svc.Login(ctx, "ALICE", "", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	_, err = svc.Login(ctx, "nobody", "", "wonderland")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.GetUserFromToken(ctx, result.RefreshToken)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	svc := NewAuthService(repos.Users, testConfig())

	login, err := svc.Login(ctx, fx.Users[0].Username, "", mock.Password)
	require.NoError(t, err)

	pair, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	// 使用済みのリフレッシュトークンは拒否
	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	require.NoError(t, svc.Logout(ctx, fx.Users[0].ID))
	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	_, err = svc.RefreshToken(ctx, "")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	svc := NewUserService(repos.Users)

	channel, err := svc.GetChannel(ctx, "JaneSmith")
	require.NoError(t, err)
	assert.Equal(t, fx.Users[1].ID, channel.ID)

	_, err = svc.GetChannel(ctx, "ghost")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.GetChannel(ctx, "  ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
