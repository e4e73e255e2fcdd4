package utils

import (
	"path/filepath"
	"strings"
)

// MediaTypeFromFilename 拡張子からMIMEタイプを判定
func MediaTypeFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}

// IsVideoFile 動画ファイルかどうか
func IsVideoFile(name string) bool {
	return strings.HasPrefix(MediaTypeFromFilename(name), "video/")
}

// IsImageFile 画像ファイルかどうか
func IsImageFile(name string) bool {
	return strings.HasPrefix(MediaTypeFromFilename(name), "image/")
}
