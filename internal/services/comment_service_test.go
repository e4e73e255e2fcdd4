package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/events"
	"github.com/SketchShifter/vidtube_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreateAndList(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	pub := &recordingPublisher{}
	svc := NewCommentService(repos, pub)

	john, jane := fx.Users[0], fx.Users[1]
	target := models.VideoTarget(fx.Videos[0].ID)

	created, err := svc.Create(ctx, target, "  Great video!  ", john.ID)
	require.NoError(t, err)
	assert.Equal(t, "Great video!", created.Content)
	assert.Contains(t, created.ContentHTML, "Great video!")
	assert.Nil(t, created.ParentCommentID)
	assert.Equal(t, target, created.AttachedTo)
	require.NotNil(t, created.Owner)
	assert.Equal(t, "johndoe", created.Owner.Username)

	assert.Equal(t, events.CommentCreated, pub.last().Type)
	assert.Equal(t, created.ID, pub.last().CommentID)

	page, err := svc.ListByTarget(ctx, target, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, models.DefaultLimit, page.Limit)
	require.Len(t, page.Comments, 2)

	// 新しい順、返信は含まない
	assert.Equal(t, created.ID, page.Comments[0].ID)
	assert.Equal(t, fx.Comments[0].ID, page.Comments[1].ID)
	assert.Equal(t, jane.Username, page.Comments[1].Owner.Username)
	assert.Contains(t, page.Comments[1].ContentHTML, "<strong>particles</strong>")
}

func TestCommentListEmptyTarget(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewCommentService(repos, nil)

	page, err := svc.ListByTarget(context.Background(), models.TweetTarget(models.NewID()), models.NewPageRequest(3, 5))
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
	assert.Zero(t, page.TotalPages)
	assert.NotNil(t, page.Comments)
	assert.Empty(t, page.Comments)
	assert.False(t, page.HasNextPage)
}

func TestCommentCreateValidation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	svc := NewCommentService(repos, nil)
	owner := fx.Users[0].ID

	_, err := svc.Create(ctx, models.VideoTarget(fx.Videos[0].ID), "   ", owner)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Create(ctx, models.VideoTarget("not-an-id"), "hi", owner)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Create(ctx, models.VideoTarget(models.NewID()), "hi", owner)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.Create(ctx, models.TweetTarget(models.NewID()), "hi", owner)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	created, err := svc.Create(ctx, models.TweetTarget(fx.Tweets[0].ID), "on a tweet", owner)
	require.NoError(t, err)
	assert.Equal(t, models.TargetTweet, created.AttachedTo.Kind)
}

func TestCommentReplies(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	pub := &recordingPublisher{}
	svc := NewCommentService(repos, pub)

	john, jane := fx.Users[0], fx.Users[1]
	top := fx.Comments[0]

	reply, err := svc.CreateReply(ctx, top.ID, "Agreed", john.ID)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, top.ID, *reply.ParentCommentID)
	assert.Equal(t, top.Target(), reply.AttachedTo)

	event := pub.last()
	assert.Equal(t, events.CommentReplied, event.Type)
	assert.Equal(t, jane.ID, event.RecipientID)

	// 自分のコメントへの返信は通知しない
	_, err = svc.CreateReply(ctx, top.ID, "Self reply", jane.ID)
	require.NoError(t, err)
	assert.Empty(t, pub.last().RecipientID)

	replies, err := svc.ListReplies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, fx.Comments[1].ID, replies[0].ID)
	assert.Equal(t, "Agreed", replies[1].Content)
	assert.Equal(t, "Self reply", replies[2].Content)
	assert.Equal(t, "johndoe", replies[1].Owner.Username)

	// 返信への返信はできない
	_, err = svc.CreateReply(ctx, reply.ID, "nested", jane.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.ListReplies(ctx, "bad-id")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCommentReplyToMissingParent(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	svc := NewCommentService(repos, nil)

	missing := models.NewID()
	_, err := svc.CreateReply(ctx, missing, "hello?", fx.Users[0].ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	replies, err := svc.ListReplies(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestCommentUpdateContent(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	svc := NewCommentService(repos, nil)

	john, jane := fx.Users[0], fx.Users[1]
	top := fx.Comments[0]

	_, err := svc.UpdateContent(ctx, top.ID, john.ID, "hijacked")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	stored, err := svc.GetByID(ctx, top.ID)
	require.NoError(t, err)
	assert.Equal(t, top.Content, stored.Content)

	_, err = svc.UpdateContent(ctx, top.ID, jane.ID, "   ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.UpdateContent(ctx, models.NewID(), jane.ID, "x")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	updated, err := svc.UpdateContent(ctx, top.ID, jane.ID, " Edited! ")
	require.NoError(t, err)
	assert.Equal(t, "Edited!", updated.Content)
	assert.Equal(t, "janesmith", updated.Owner.Username)
}

func TestCommentDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	pub := &recordingPublisher{}
	svc := NewCommentService(repos, pub)

	john, jane := fx.Users[0], fx.Users[1]
	top := fx.Comments[0]
	_, err := svc.CreateReply(ctx, top.ID, "second reply", jane.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, top.ID, john.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	require.NoError(t, svc.Delete(ctx, top.ID, jane.ID))
	assert.Equal(t, events.CommentDeleted, pub.last().Type)

	replies, err := svc.ListReplies(ctx, top.ID)
	require.NoError(t, err)
	assert.Empty(t, replies)

	_, err = svc.GetByID(ctx, fx.Comments[1].ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.Delete(ctx, top.ID, jane.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCommentPublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	fx := seed(t, repos)
	pub := &recordingPublisher{err: errors.New("queue down")}
	svc := NewCommentService(repos, pub)

	_, err := svc.Create(ctx, models.VideoTarget(fx.Videos[0].ID), "still saved", fx.Users[0].ID)
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}
