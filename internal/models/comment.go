package models

import (
	"time"

	"gorm.io/gorm"
)

// TargetKind コメントの添付先の種類
type TargetKind string

const (
	TargetVideo TargetKind = "video"
	TargetTweet TargetKind = "tweet"
)

// Target コメントの添付先 (動画またはツイートのどちらか一方)
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// VideoTarget 動画を添付先にする
func VideoTarget(videoID string) Target {
	return Target{Kind: TargetVideo, ID: videoID}
}

// TweetTarget ツイートを添付先にする
func TweetTarget(tweetID string) Target {
	return Target{Kind: TargetTweet, ID: tweetID}
}

// Valid 種類とIDが正しいか
func (t Target) Valid() bool {
	return (t.Kind == TargetVideo || t.Kind == TargetTweet) && IsValidID(t.ID)
}

// Comment はコメントモデル
//
// ParentCommentID が nil ならトップレベル、設定されていれば返信。
// 返信の返信は作らない。
type Comment struct {
	ID              string     `gorm:"primaryKey;type:char(24)"`
	Content         string     `gorm:"type:text;not null"`
	TargetKind      TargetKind `gorm:"type:varchar(10);not null;index:idx_comments_target,priority:1"`
	TargetID        string     `gorm:"type:char(24);not null;index:idx_comments_target,priority:2"`
	ParentCommentID *string    `gorm:"type:char(24);index"`
	OwnerID         string     `gorm:"type:char(24);not null;index"`
	CreatedAt       time.Time  `gorm:"index"`
	UpdatedAt       time.Time
}

// BeforeCreate IDが未設定なら採番
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// Target 添付先を返す
func (c *Comment) Target() Target {
	return Target{Kind: c.TargetKind, ID: c.TargetID}
}

// SetTarget 添付先を設定
func (c *Comment) SetTarget(t Target) {
	c.TargetKind = t.Kind
	c.TargetID = t.ID
}

// IsReply 返信かどうか
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// IsOwnedBy 更新・削除できるのは投稿者のみ
func (c *Comment) IsOwnedBy(userID string) bool {
	return userID != "" && c.OwnerID == userID
}

// CommentView APIレスポンス用のコメント
type CommentView struct {
	ID              string        `json:"id"`
	Content         string        `json:"content"`
	ContentHTML     string        `json:"contentHtml"`
	AttachedTo      Target        `json:"attachedTo"`
	ParentCommentID *string       `json:"parentCommentId"`
	Owner           *OwnerSummary `json:"owner"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CommentPage コメント一覧のページ
type CommentPage struct {
	Comments []CommentView `json:"comments"`
	Pagination
}
