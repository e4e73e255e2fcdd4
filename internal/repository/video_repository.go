package repository

import (
	"context"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"gorm.io/gorm"
)

// VideoRepository 動画に関するデータベース操作を行うインターフェース
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id string) (*models.Video, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, video *models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) ([]models.Video, int64, error)
}

// videoRepository VideoRepositoryの実装
type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository VideoRepositoryを作成
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create 新しい動画を作成
func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	return translateGormError(r.db.WithContext(ctx).Create(video).Error)
}

// FindByID IDで動画を検索
func (r *videoRepository) FindByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &video, nil
}

// Exists 動画が存在するか
func (r *videoRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update タイトル・説明・サムネイルを更新
func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	return translateGormError(r.db.WithContext(ctx).Model(video).
		Select("title", "description", "thumbnail_url", "thumbnail_public_id", "updated_at").
		Updates(video).Error)
}

// SetPublished 公開状態を変更
func (r *videoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	return r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

// Delete 動画とそのコメントを削除
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteCommentsByTarget(tx, models.VideoTarget(id)); err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Video{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IncrementViews 閲覧数を増加
func (r *videoRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// List 動画一覧を取得
func (r *videoRepository) List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) ([]models.Video, int64, error) {
	videos := []models.Video{}
	var total int64

	// クエリビルダーを初期化
	query := r.db.WithContext(ctx).Model(&models.Video{})

	// 検索条件を適用
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	// 投稿者でフィルタリング
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}

	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	query = query.Session(&gorm.Session{})

	// 合計数を取得
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return videos, 0, nil
	}

	// ソート順を適用
	column, ok := models.VideoSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := " ASC"
	if filter.SortDesc {
		direction = " DESC"
	}

	// データを取得
	if err := query.
		Order(column + direction).
		Order("id" + direction).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}
