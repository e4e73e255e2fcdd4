package repository

import (
	"context"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"gorm.io/gorm"
)

// CommentRepository コメントに関するデータベース操作を行うインターフェース
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	DeleteWithReplies(ctx context.Context, id string) (int64, error)
	ListTopLevel(ctx context.Context, target models.Target, page models.PageRequest) ([]models.Comment, int64, error)
	ListReplies(ctx context.Context, parentID string) ([]models.Comment, error)
}

// commentRepository CommentRepositoryの実装
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository CommentRepositoryを作成
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create 新しいコメントを作成
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translateGormError(r.db.WithContext(ctx).Create(comment).Error)
}

// FindByID IDでコメントを検索
func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &comment, nil
}

// UpdateContent 本文のみ更新
func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
	return translateGormError(r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error)
}

// DeleteWithReplies コメントとその返信を1文で削除
func (r *commentRepository) DeleteWithReplies(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? OR parent_comment_id = ?", id, id).
		Delete(&models.Comment{})
	if result.Error != nil {
		return 0, translateGormError(result.Error)
	}
	return result.RowsAffected, nil
}

// ListTopLevel 添付先のトップレベルコメント一覧を新しい順に取得
func (r *commentRepository) ListTopLevel(ctx context.Context, target models.Target, page models.PageRequest) ([]models.Comment, int64, error) {
	comments := []models.Comment{}
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("target_kind = ? AND target_id = ? AND parent_comment_id IS NULL", target.Kind, target.ID).
		Session(&gorm.Session{})

	// 合計数を取得
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return comments, 0, nil
	}

	// データを取得
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListReplies 返信一覧を古い順に取得
func (r *commentRepository) ListReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	replies := []models.Comment{}
	if err := r.db.WithContext(ctx).
		Where("parent_comment_id = ?", parentID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// deleteCommentsByTarget 添付先に紐づくコメントをすべて削除
func deleteCommentsByTarget(tx *gorm.DB, target models.Target) error {
	return tx.Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Delete(&models.Comment{}).Error
}
