package repository

import (
	"context"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository ユーザーに関するデータベース操作を行うインターフェース
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	FindSummaries(ctx context.Context, ids []string) (map[string]models.OwnerSummary, error)
	UpdateRefreshToken(ctx context.Context, id, token string) error
}

// userRepository UserRepositoryの実装
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository UserRepositoryを作成
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 新しいユーザーを作成
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateGormError(r.db.WithContext(ctx).Create(user).Error)
}

// FindByID IDでユーザーを検索
func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

// FindByUsername ユーザー名で検索
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

// FindByUsernameOrEmail ユーザー名またはメールアドレスで検索
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

// FindSummaries 複数ユーザーの公開プロフィールをまとめて取得
func (r *userRepository) FindSummaries(ctx context.Context, ids []string) (map[string]models.OwnerSummary, error) {
	summaries := make(map[string]models.OwnerSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("id", "username", "full_name", "avatar_url").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}

	for i := range users {
		summaries[users[i].ID] = users[i].Summary()
	}
	return summaries, nil
}

// UpdateRefreshToken リフレッシュトークンを保存 (空文字で無効化)
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", token).Error
}
