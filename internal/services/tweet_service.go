package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
)

// TweetService ツイートに関するサービスインターフェース
type TweetService interface {
	Create(ctx context.Context, ownerID, content string) (*models.Tweet, error)
	GetByID(ctx context.Context, id string) (*models.Tweet, error)
	ListByUser(ctx context.Context, userID string) ([]models.Tweet, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// tweetService TweetServiceの実装
type tweetService struct {
	tweetRepo repository.TweetRepository
	owners    ownerLoader
}

// NewTweetService TweetServiceを作成
func NewTweetService(repos *repository.Repositories) TweetService {
	return &tweetService{
		tweetRepo: repos.Tweets,
		owners:    ownerLoader{userRepo: repos.Users},
	}
}

// Create 新しいツイートを作成
func (s *tweetService) Create(ctx context.Context, ownerID, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Content is required")
	}

	tweet := &models.Tweet{Content: content, OwnerID: ownerID}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, apperrors.Internal(err, "ツイートの保存に失敗しました")
	}

	return s.decorate(ctx, tweet)
}

// GetByID IDでツイートを取得
func (s *tweetService) GetByID(ctx context.Context, id string) (*models.Tweet, error) {
	tweet, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, tweet)
}

// ListByUser ユーザーのツイート一覧を取得
func (s *tweetService) ListByUser(ctx context.Context, userID string) ([]models.Tweet, error) {
	if !models.IsValidID(userID) {
		return nil, apperrors.Validation("Invalid user id")
	}

	tweets, err := s.tweetRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "ツイート一覧の取得に失敗しました")
	}

	if err := s.owners.decorateTweets(ctx, tweets); err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}
	return tweets, nil
}

// Delete ツイートとそのコメントを削除
func (s *tweetService) Delete(ctx context.Context, id, ownerID string) error {
	tweet, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if tweet.OwnerID != ownerID {
		return apperrors.Forbidden("You are not allowed to delete this tweet")
	}

	if err := s.tweetRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Tweet not found")
		}
		return apperrors.Internal(err, "ツイートの削除に失敗しました")
	}
	return nil
}

func (s *tweetService) find(ctx context.Context, id string) (*models.Tweet, error) {
	if !models.IsValidID(id) {
		return nil, apperrors.Validation("Invalid tweet id")
	}

	tweet, err := s.tweetRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Tweet not found")
		}
		return nil, apperrors.Internal(err, "ツイートの取得に失敗しました")
	}
	return tweet, nil
}

func (s *tweetService) decorate(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error) {
	tweets := []models.Tweet{*tweet}
	if err := s.owners.decorateTweets(ctx, tweets); err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}
	return &tweets[0], nil
}
