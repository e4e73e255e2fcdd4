package services

import (
	"context"

	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
	"github.com/SketchShifter/vidtube_backend/internal/utils"
)

// ownerLoader 投稿者の公開プロフィールをまとめて取得する
type ownerLoader struct {
	userRepo repository.UserRepository
}

// load 重複を除いたIDで一括取得
func (l ownerLoader) load(ctx context.Context, ids ...string) (map[string]models.OwnerSummary, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return l.userRepo.FindSummaries(ctx, unique)
}

// lookupOwner 見つからない投稿者 (退会済みなど) は nil
func lookupOwner(owners map[string]models.OwnerSummary, id string) *models.OwnerSummary {
	owner, ok := owners[id]
	if !ok {
		return nil
	}
	return &owner
}

// toCommentView 投稿者情報とHTMLを付与
func toCommentView(c *models.Comment, owners map[string]models.OwnerSummary) models.CommentView {
	return models.CommentView{
		ID:              c.ID,
		Content:         c.Content,
		ContentHTML:     utils.RenderMarkdown(c.Content),
		AttachedTo:      c.Target(),
		ParentCommentID: c.ParentCommentID,
		Owner:           lookupOwner(owners, c.OwnerID),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// decorateComments 一覧に投稿者情報を付与
func (l ownerLoader) decorateComments(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]string, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].OwnerID)
	}

	owners, err := l.load(ctx, ids...)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, toCommentView(&comments[i], owners))
	}
	return views, nil
}

// decorateVideos 動画一覧に投稿者情報を付与
func (l ownerLoader) decorateVideos(ctx context.Context, videos []models.Video) error {
	ids := make([]string, 0, len(videos))
	for i := range videos {
		ids = append(ids, videos[i].OwnerID)
	}

	owners, err := l.load(ctx, ids...)
	if err != nil {
		return err
	}
	for i := range videos {
		videos[i].Owner = lookupOwner(owners, videos[i].OwnerID)
	}
	return nil
}

// decorateTweets ツイート一覧に投稿者情報を付与
func (l ownerLoader) decorateTweets(ctx context.Context, tweets []models.Tweet) error {
	ids := make([]string, 0, len(tweets))
	for i := range tweets {
		ids = append(ids, tweets[i].OwnerID)
	}

	owners, err := l.load(ctx, ids...)
	if err != nil {
		return err
	}
	for i := range tweets {
		tweets[i].Owner = lookupOwner(owners, tweets[i].OwnerID)
	}
	return nil
}
