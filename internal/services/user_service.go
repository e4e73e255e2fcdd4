package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
)

// UserService ユーザーに関するサービスインターフェース
type UserService interface {
	GetChannel(ctx context.Context, username string) (*models.OwnerSummary, error)
}

// userService UserServiceの実装
type userService struct {
	userRepo repository.UserRepository
}

// NewUserService UserServiceを作成
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetChannel ユーザー名で公開プロフィールを取得
func (s *userService) GetChannel(ctx context.Context, username string) (*models.OwnerSummary, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.Validation("Username is missing")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Channel does not exist")
		}
		return nil, apperrors.Internal(err, "チャンネルの取得に失敗しました")
	}

	summary := user.Summary()
	return &summary, nil
}
