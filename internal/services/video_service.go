package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/logger"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
)

// VideoService 動画に関するサービスインターフェース
type VideoService interface {
	List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) (*models.VideoPage, error)
	Publish(ctx context.Context, ownerID string, input PublishVideoInput) (*models.Video, error)
	GetByID(ctx context.Context, id, viewerID string) (*models.Video, error)
	Update(ctx context.Context, id, ownerID string, input UpdateVideoInput) (*models.Video, error)
	Delete(ctx context.Context, id, ownerID string) error
	TogglePublish(ctx context.Context, id, ownerID string) (*models.Video, error)
}

// PublishVideoInput 動画投稿の入力
type PublishVideoInput struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   io.Reader
	Thumbnail   io.Reader
}

// UpdateVideoInput 動画更新の入力 (nil の項目は変更しない)
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   io.Reader
}

// videoService VideoServiceの実装
type videoService struct {
	videoRepo repository.VideoRepository
	owners    ownerLoader
	storage   MediaStorage
}

// NewVideoService VideoServiceを作成
func NewVideoService(repos *repository.Repositories, storage MediaStorage) VideoService {
	return &videoService{
		videoRepo: repos.Videos,
		owners:    ownerLoader{userRepo: repos.Users},
		storage:   storage,
	}
}

// List 公開中の動画一覧を取得
func (s *videoService) List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) (*models.VideoPage, error) {
	if filter.OwnerID != "" && !models.IsValidID(filter.OwnerID) {
		return nil, apperrors.Validation("Invalid user id")
	}
	if _, ok := models.VideoSortColumns[filter.SortBy]; !ok {
		filter.SortBy = "createdAt"
	}
	filter.PublishedOnly = true
	page = models.NewPageRequest(page.Page, page.Limit)

	videos, total, err := s.videoRepo.List(ctx, filter, page)
	if err != nil {
		return nil, apperrors.Internal(err, "動画一覧の取得に失敗しました")
	}

	if err := s.owners.decorateVideos(ctx, videos); err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}

	return &models.VideoPage{
		Videos:     videos,
		Pagination: models.NewPagination(total, page),
	}, nil
}

// Publish 動画とサムネイルをアップロードして登録
func (s *videoService) Publish(ctx context.Context, ownerID string, input PublishVideoInput) (*models.Video, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.Validation("Title and description are required")
	}
	if input.VideoFile == nil {
		return nil, apperrors.Validation("Video file is required")
	}
	if input.Thumbnail == nil {
		return nil, apperrors.Validation("Thumbnail is required")
	}
	if input.Duration < 0 {
		return nil, apperrors.Validation("Duration must not be negative")
	}

	// 動画をアップロード
	videoFile, err := s.storage.Upload(ctx, input.VideoFile, MediaVideo)
	if err != nil {
		return nil, apperrors.Internal(err, "動画のアップロードに失敗しました")
	}

	// サムネイルをアップロード
	thumbnail, err := s.storage.Upload(ctx, input.Thumbnail, MediaImage)
	if err != nil {
		s.deleteMedia(ctx, videoFile.PublicID, MediaVideo)
		return nil, apperrors.Internal(err, "サムネイルのアップロードに失敗しました")
	}

	video := &models.Video{
		Title:             title,
		Description:       description,
		VideoURL:          videoFile.URL,
		VideoPublicID:     videoFile.PublicID,
		ThumbnailURL:      thumbnail.URL,
		ThumbnailPublicID: thumbnail.PublicID,
		Duration:          input.Duration,
		IsPublished:       true,
		OwnerID:           ownerID,
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		s.deleteMedia(ctx, videoFile.PublicID, MediaVideo)
		s.deleteMedia(ctx, thumbnail.PublicID, MediaImage)
		return nil, apperrors.Internal(err, "動画の保存に失敗しました")
	}

	return s.decorate(ctx, video)
}

// GetByID IDで動画を取得し閲覧数を増加。非公開の動画は投稿者のみ閲覧できる
func (s *videoService) GetByID(ctx context.Context, id, viewerID string) (*models.Video, error) {
	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, apperrors.NotFound("Video not found")
	}

	if err := s.videoRepo.IncrementViews(ctx, id); err != nil {
		logger.For(ctx).WithError(err).Warn("閲覧数の更新に失敗しました")
	} else {
		video.Views++
	}

	return s.decorate(ctx, video)
}

// Update タイトル・説明・サムネイルを更新
func (s *videoService) Update(ctx context.Context, id, ownerID string, input UpdateVideoInput) (*models.Video, error) {
	video, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.Validation("Title must not be empty")
		}
		video.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperrors.Validation("Description must not be empty")
		}
		video.Description = description
	}

	oldThumbnail := ""
	if input.Thumbnail != nil {
		thumbnail, err := s.storage.Upload(ctx, input.Thumbnail, MediaImage)
		if err != nil {
			return nil, apperrors.Internal(err, "サムネイルのアップロードに失敗しました")
		}
		oldThumbnail = video.ThumbnailPublicID
		video.ThumbnailURL = thumbnail.URL
		video.ThumbnailPublicID = thumbnail.PublicID
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, apperrors.Internal(err, "動画の更新に失敗しました")
	}

	// 古いサムネイルを削除
	s.deleteMedia(ctx, oldThumbnail, MediaImage)

	return s.decorate(ctx, video)
}

// Delete 動画とコメントを削除し、アップロード済みファイルも削除
func (s *videoService) Delete(ctx context.Context, id, ownerID string) error {
	video, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.videoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Video not found")
		}
		return apperrors.Internal(err, "動画の削除に失敗しました")
	}

	s.deleteMedia(ctx, video.VideoPublicID, MediaVideo)
	s.deleteMedia(ctx, video.ThumbnailPublicID, MediaImage)
	return nil
}

// TogglePublish 公開状態を切り替え
func (s *videoService) TogglePublish(ctx context.Context, id, ownerID string) (*models.Video, error) {
	video, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	video.IsPublished = !video.IsPublished
	if err := s.videoRepo.SetPublished(ctx, id, video.IsPublished); err != nil {
		return nil, apperrors.Internal(err, "公開状態の更新に失敗しました")
	}

	return s.decorate(ctx, video)
}

func (s *videoService) find(ctx context.Context, id string) (*models.Video, error) {
	if !models.IsValidID(id) {
		return nil, apperrors.Validation("Invalid video id")
	}

	video, err := s.videoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Video not found")
		}
		return nil, apperrors.Internal(err, "動画の取得に失敗しました")
	}
	return video, nil
}

// findOwned 投稿者本人の動画のみ取得
func (s *videoService) findOwned(ctx context.Context, id, ownerID string) (*models.Video, error) {
	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != ownerID {
		return nil, apperrors.Forbidden("You are not the owner of this video")
	}
	return video, nil
}

func (s *videoService) decorate(ctx context.Context, video *models.Video) (*models.Video, error) {
	videos := []models.Video{*video}
	if err := s.owners.decorateVideos(ctx, videos); err != nil {
		return nil, apperrors.Internal(err, "投稿者情報の取得に失敗しました")
	}
	return &videos[0], nil
}

// deleteMedia ファイル削除の失敗はログのみ
func (s *videoService) deleteMedia(ctx context.Context, publicID string, kind MediaKind) {
	if publicID == "" {
		return
	}
	if err := s.storage.Delete(ctx, publicID, kind); err != nil {
		logger.For(ctx).WithError(err).WithField("public_id", publicID).Warn("ファイルの削除に失敗しました")
	}
}
