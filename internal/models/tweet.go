package models

import (
	"time"

	"gorm.io/gorm"
)

// Tweet はツイートモデル
type Tweet struct {
	ID        string        `json:"id" gorm:"primaryKey;type:char(24)"`
	Content   string        `json:"content" gorm:"type:text;not null"`
	OwnerID   string        `json:"ownerId" gorm:"type:char(24);not null;index"`
	CreatedAt time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Owner     *OwnerSummary `json:"owner,omitempty" gorm:"-"`
}

// BeforeCreate IDが未設定なら採番
func (t *Tweet) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}
