package repository

import (
	"context"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"gorm.io/gorm"
)

// TweetRepository ツイートに関するデータベース操作を行うインターフェース
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	FindByID(ctx context.Context, id string) (*models.Tweet, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// tweetRepository TweetRepositoryの実装
type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository TweetRepositoryを作成
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

// Create 新しいツイートを作成
func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	return translateGormError(r.db.WithContext(ctx).Create(tweet).Error)
}

// FindByID IDでツイートを検索
func (r *tweetRepository) FindByID(ctx context.Context, id string) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tweet).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &tweet, nil
}

// Exists ツイートが存在するか
func (r *tweetRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tweet{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByOwner ユーザーのツイート一覧を新しい順に取得
func (r *tweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	tweets := []models.Tweet{}
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tweets).Error; err != nil {
		return nil, err
	}
	return tweets, nil
}

// Delete ツイートとそのコメントを削除
func (r *tweetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteCommentsByTarget(tx, models.TweetTarget(id)); err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Tweet{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
