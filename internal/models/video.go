package models

import (
	"time"

	"gorm.io/gorm"
)

// Video は動画モデル
type Video struct {
	ID                string        `json:"id" gorm:"primaryKey;type:char(24)"`
	Title             string        `json:"title" gorm:"type:varchar(255);not null"`
	Description       string        `json:"description" gorm:"type:text"`
	VideoURL          string        `json:"videoUrl" gorm:"not null"`
	VideoPublicID     string        `json:"-"`
	ThumbnailURL      string        `json:"thumbnailUrl"`
	ThumbnailPublicID string        `json:"-"`
	Duration          float64       `json:"duration"`
	Views             int64         `json:"views"`
	IsPublished       bool          `json:"isPublished" gorm:"index"`
	OwnerID           string        `json:"ownerId" gorm:"type:char(24);not null;index"`
	CreatedAt         time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time     `json:"updatedAt"`
	Owner             *OwnerSummary `json:"owner,omitempty" gorm:"-"`
}

// BeforeCreate IDが未設定なら採番
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = NewID()
	}
	return nil
}

// VideoFilter 動画一覧の検索条件
type VideoFilter struct {
	Query         string // タイトル・説明の部分一致 (大文字小文字を区別しない)
	OwnerID       string
	PublishedOnly bool
	SortBy        string // createdAt | views | duration | title
	SortDesc      bool
}

// VideoSortColumns ソートに使える項目
var VideoSortColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// VideoPage 動画一覧のページ
type VideoPage struct {
	Videos []Video `json:"videos"`
	Pagination
}
