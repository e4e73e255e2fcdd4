package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetLifecycle(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	svc := NewTweetService(repos)
	comments := NewCommentService(repos, nil)

	john, jane := fx.Users[0], fx.Users[1]

	_, err := svc.Create(ctx, jane.ID, "  ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	tweet, err := svc.Create(ctx, jane.ID, "second tweet")
	require.NoError(t, err)
	assert.Equal(t, "janesmith", tweet.Owner.Username)

	tweets, err := svc.ListByUser(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, tweet.ID, tweets[0].ID)

	_, err = comments.Create(ctx, models.TweetTarget(tweet.ID), "nice", john.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, tweet.ID, john.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	require.NoError(t, svc.Delete(ctx, tweet.ID, jane.ID))

	_, err = svc.GetByID(ctx, tweet.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	page, err := comments.ListByTarget(ctx, models.TweetTarget(tweet.ID), models.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
}

func TestHealthService(t *testing.T) {
	ok := NewHealthService(func(context.Context) error { return nil })
	assert.Equal(t, "ok", ok.GetStatus(context.Background()).Status)

	down := NewHealthService(func(context.Context) error { return errors.New("refused") })
	status := down.GetStatus(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unreachable", status.Database)
}
