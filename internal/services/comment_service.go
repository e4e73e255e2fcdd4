package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/events"
	"github.com/SketchShifter/vidtube_backend/internal/logger"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// CommentService コメントに関するサービスインターフェース
type CommentService interface {
	Create(ctx context.Context, target models.Target, content, ownerID string) (*models.CommentView, error)
	CreateReply(ctx context.Context, parentID, content, ownerID string) (*models.CommentView, error)
	GetByID(ctx context.Context, id string) (*models.CommentView, error)
	ListByTarget(ctx context.Context, target models.Target, page models.PageRequest) (*models.CommentPage, error)
	ListReplies(ctx context.Context, parentID string) ([]models.CommentView, error)
	UpdateContent(ctx context.Context, id, ownerID, content string) (*models.CommentView, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// commentService CommentServiceの実装
type commentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	tweetRepo   repository.TweetRepository
	owners      ownerLoader
	publisher   events.Publisher
}

// NewCommentService CommentServiceを作成
func NewCommentService(repos *repository.Repositories, publisher events.Publisher) CommentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &commentService{
		commentRepo: repos.Comments,
		videoRepo:   repos.Videos,
		tweetRepo:   repos.Tweets,
		owners:      ownerLoader{userRepo: repos.Users},
		publisher:   publisher,
	}
}

// validateTarget 添付先のIDを検証
func validateTarget(target models.Target) error {
	switch target.Kind {
	case models.TargetVideo:
		if !models.IsValidID(target.ID) {
			return apperrors.Validation("Invalid video id")
		}
	case models.TargetTweet:
		if !models.IsValidID(target.ID) {
			return apperrors.Validation("Invalid tweet id")
		}
	default:
		return apperrors.Validation("Invalid comment target")
	}
	return nil
}

// ensureTargetExists 添付先が存在するか確認
func (s *commentService) ensureTargetExists(ctx context.Context, target models.Target) error {
	var (
		exists bool
		err    error
	)
	if target.Kind == models.TargetTweet {
		exists, err = s.tweetRepo.Exists(ctx, target.ID)
	} else {
		exists, err = s.videoRepo.Exists(ctx, target.ID)
	}
	if err != nil {
		return apperrors.Internal(err, "添付先の確認に失敗しました")
	}
	if !exists {
		if target.Kind == models.TargetTweet {
			return apperrors.NotFound("Tweet not found")
		}
		return apperrors.NotFound("Video not found")
	}
	return nil
}

// Create 新しいコメントを作成
func (s *commentService) Create(ctx context.Context, target models.Target, content, ownerID string) (*models.CommentView, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}

	// コンテンツのバリデーション
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Content is required")
	}

	// 添付先が存在するか確認
	if err := s.ensureTargetExists(ctx, target); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		OwnerID: ownerID,
	}
	comment.SetTarget(target)

	// データベースに保存
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, apperrors.Internal(err, "コメントの保存に失敗しました")
	}

	s.publish(ctx, events.NewCommentEvent(events.CommentCreated, comment, ownerID))

	return s.view(ctx, comment)
}

// CreateReply コメントに返信
func (s *commentService) CreateReply(ctx context.Context, parentID, content, ownerID string) (*models.CommentView, error) {
	if !models.IsValidID(parentID) {
		return nil, apperrors.Validation("Invalid comment id")
	}

	// コンテンツのバリデーション
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Content is required")
	}

	// 親コメントを取得
	parent, err := s.find(ctx, parentID)
	if err != nil {
		return nil, err
	}

	// 返信への返信はできない
	if parent.IsReply() {
		return nil, apperrors.Validation("Cannot reply to a reply")
	}

	// 返信は親コメントと同じ添付先になる
	reply := &models.Comment{
		Content:         content,
		ParentCommentID: &parent.ID,
		OwnerID:         ownerID,
	}
	reply.SetTarget(parent.Target())

	if err := s.commentRepo.Create(ctx, reply); err != nil {
		return nil, apperrors.Internal(err, "返信の保存に失敗しました")
	}

	event := events.NewCommentEvent(events.CommentReplied, reply, ownerID)
	if parent.OwnerID != ownerID {
		event.RecipientID = parent.OwnerID
	}
	s.publish(ctx, event)

	return s.view(ctx, reply)
}

// GetByID IDでコメントを取得
func (s *commentService) GetByID(ctx context.Context, id string) (*models.CommentView, error) {
	if !models.IsValidID(id) {
		return nil, apperrors.Validation("Invalid comment id")
	}

	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, comment)
}

// ListByTarget 添付先のトップレベルコメント一覧を取得
func (s *commentService) ListByTarget(ctx context.Context, target models.Target, page models.PageRequest) (*models.CommentPage, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	page = models.NewPageRequest(page.Page, page.Limit)

	// コメント一覧を取得
	comments, total, err := s.commentRepo.ListTopLevel(ctx, target, page)
	if err != nil {
		return nil, apperrors.Internal(err, "コメント一覧の取得に失敗しました")
	}

	views, err := s.owners.decorateComments(ctx, comments)
	if err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}

	return &models.CommentPage{
		Comments:   views,
		Pagination: models.NewPagination(total, page),
	}, nil
}

// ListReplies 返信一覧を取得
func (s *commentService) ListReplies(ctx context.Context, parentID string) ([]models.CommentView, error) {
	if !models.IsValidID(parentID) {
		return nil, apperrors.Validation("Invalid comment id")
	}

	replies, err := s.commentRepo.ListReplies(ctx, parentID)
	if err != nil {
		return nil, apperrors.Internal(err, "返信一覧の取得に失敗しました")
	}

	views, err := s.owners.decorateComments(ctx, replies)
	if err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}
	return views, nil
}

// UpdateContent コメントを更新
func (s *commentService) UpdateContent(ctx context.Context, id, ownerID, content string) (*models.CommentView, error) {
	if !models.IsValidID(id) {
		return nil, apperrors.Validation("Invalid comment id")
	}

	// コメントを取得
	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	// 権限チェック
	if !comment.IsOwnedBy(ownerID) {
		return nil, apperrors.Forbidden("You are not allowed to update this comment")
	}

	// コンテンツのバリデーション
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Content is required")
	}

	// データベースを更新
	if err := s.commentRepo.UpdateContent(ctx, id, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Comment not found")
		}
		return nil, apperrors.Internal(err, "コメントの更新に失敗しました")
	}

	return s.GetByID(ctx, id)
}

// Delete コメントと返信を削除
func (s *commentService) Delete(ctx context.Context, id, ownerID string) error {
	if !models.IsValidID(id) {
		return apperrors.Validation("Invalid comment id")
	}

	// コメントを取得
	comment, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	// 権限チェック
	if !comment.IsOwnedBy(ownerID) {
		return apperrors.Forbidden("You are not allowed to delete this comment")
	}

	// データベースから削除
	deleted, err := s.commentRepo.DeleteWithReplies(ctx, id)
	if err != nil {
		return apperrors.Internal(err, "コメントの削除に失敗しました")
	}

	logger.For(ctx).WithFields(logrus.Fields{
		"comment_id": id,
		"deleted":    deleted,
	}).Info("コメントを削除しました")

	s.publish(ctx, events.NewCommentEvent(events.CommentDeleted, comment, ownerID))
	return nil
}

// find リポジトリのエラーをアプリケーションエラーに変換して取得
func (s *commentService) find(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Comment not found")
		}
		return nil, apperrors.Internal(err, "コメントの取得に失敗しました")
	}
	return comment, nil
}

// view 1件分の投稿者情報を付与
func (s *commentService) view(ctx context.Context, comment *models.Comment) (*models.CommentView, error) {
	owners, err := s.owners.load(ctx, comment.OwnerID)
	if err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}
	view := toCommentView(comment, owners)
	return &view, nil
}

// publish イベント送信の失敗はリクエストを失敗させない
func (s *commentService) publish(ctx context.Context, event events.CommentEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.For(ctx).WithError(err).WithFields(logrus.Fields{
			"event":      event.Type,
			"comment_id": event.CommentID,
		}).Warn("コメントイベントの送信に失敗しました")
	}
}
