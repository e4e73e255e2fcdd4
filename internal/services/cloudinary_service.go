package services

import (
	"context"
	"fmt"
	"io"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MediaKind アップロードするファイルの種類
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
)

// UploadedMedia アップロード結果
type UploadedMedia struct {
	PublicID string
	URL      string
}

// MediaStorage 動画・画像の保存先
type MediaStorage interface {
	Upload(ctx context.Context, file io.Reader, kind MediaKind) (*UploadedMedia, error)
	Delete(ctx context.Context, publicID string, kind MediaKind) error
}

type cloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryService Cloudinaryを使うMediaStorageを作成
func NewCloudinaryService(cfg *config.Config) (MediaStorage, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, err
	}

	return &cloudinaryService{
		cld:    cld,
		folder: cfg.Cloudinary.Folder,
	}, nil
}

// NewMediaStorage 設定に応じてMediaStorageを作成
func NewMediaStorage(cfg *config.Config) (MediaStorage, error) {
	if !cfg.CloudinaryEnabled() {
		return unavailableStorage{}, nil
	}
	return NewCloudinaryService(cfg)
}

// Upload ファイルをアップロード
func (s *cloudinaryService) Upload(ctx context.Context, file io.Reader, kind MediaKind) (*UploadedMedia, error) {
	// アップロードパラメータを設定
	uploadParams := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     models.NewID(),
		ResourceType: string(kind),
	}

	result, err := s.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		return nil, fmt.Errorf("Cloudinaryへのアップロードに失敗しました: %w", err)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("CloudinaryからURLが返されませんでした")
	}

	return &UploadedMedia{PublicID: result.PublicID, URL: result.SecureURL}, nil
}

// Delete ファイルを削除
func (s *cloudinaryService) Delete(ctx context.Context, publicID string, kind MediaKind) error {
	if publicID == "" {
		return nil
	}

	// Cloudinaryから削除
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("Cloudinaryからの削除に失敗しました: %w", err)
	}

	return nil
}

// unavailableStorage Cloudinary未設定時のMediaStorage
type unavailableStorage struct{}

func (unavailableStorage) Upload(context.Context, io.Reader, MediaKind) (*UploadedMedia, error) {
	return nil, apperrors.Internal(nil, "Media storage is not configured")
}

func (unavailableStorage) Delete(context.Context, string, MediaKind) error {
	return nil
}
