package models

import (
	"time"

	"gorm.io/gorm"
)

// User はユーザーモデル
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:char(24)"`
	Username     string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName     string    `json:"fullName" gorm:"type:varchar(100);not null"`
	AvatarURL    string    `json:"avatarUrl"`
	PasswordHash string    `json:"-" gorm:"not null"`
	RefreshToken string    `json:"-" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate IDが未設定なら採番
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// OwnerSummary コメントや動画に付与する投稿者の公開プロフィール
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// Summary 公開プロフィールを返す
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}
