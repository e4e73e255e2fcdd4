package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Password モックユーザー共通のパスワード
const Password = "password123"

// Fixtures 投入したデータ
type Fixtures struct {
	Users    []models.User
	Videos   []models.Video
	Tweets   []models.Tweet
	Comments []models.Comment
}

// Users モックユーザー
func Users() []models.User {
	return []models.User{
		{
			Username:  "johndoe",
			Email:     "john@example.com",
			FullName:  "John Doe",
			AvatarURL: "https://via.placeholder.com/150",
		},
		{
			Username:  "janesmith",
			Email:     "jane@example.com",
			FullName:  "Jane Smith",
			AvatarURL: "https://via.placeholder.com/150",
		},
	}
}

// NewSQLiteDB インメモリSQLiteにテーブルを作成して返す
func NewSQLiteDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	// インメモリDBは接続ごとに別物になるため1本に制限
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repository.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Seed モックデータを投入
func Seed(ctx context.Context, repos *repository.Repositories) (*Fixtures, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	base := time.Now().UTC().Add(-30 * 24 * time.Hour).Truncate(time.Second)
	fx := &Fixtures{}

	// ユーザー
	for _, u := range Users() {
		user := u
		user.PasswordHash = string(hash)
		if err := repos.Users.Create(ctx, &user); err != nil {
			return nil, fmt.Errorf("ユーザー %s の作成に失敗しました: %w", user.Username, err)
		}
		fx.Users = append(fx.Users, user)
	}
	john, jane := fx.Users[0], fx.Users[1]

	// 動画
	video := models.Video{
		Title:        "Generative art in 10 minutes",
		Description:  "A quick tour of flow fields and particles",
		VideoURL:     "https://res.cloudinary.com/demo/video/upload/sample.mp4",
		ThumbnailURL: "https://res.cloudinary.com/demo/image/upload/sample.jpg",
		Duration:     612.5,
		Views:        120,
		IsPublished:  true,
		OwnerID:      john.ID,
		CreatedAt:    base,
		UpdatedAt:    base,
	}
	if err := repos.Videos.Create(ctx, &video); err != nil {
		return nil, fmt.Errorf("動画の作成に失敗しました: %w", err)
	}
	fx.Videos = append(fx.Videos, video)

	// ツイート
	tweet := models.Tweet{
		Content:   "New video coming this weekend!",
		OwnerID:   jane.ID,
		CreatedAt: base.Add(time.Hour),
		UpdatedAt: base.Add(time.Hour),
	}
	if err := repos.Tweets.Create(ctx, &tweet); err != nil {
		return nil, fmt.Errorf("ツイートの作成に失敗しました: %w", err)
	}
	fx.Tweets = append(fx.Tweets, tweet)

	// コメントと返信
	top := models.Comment{
		Content:   "Loved the **particles** section",
		OwnerID:   jane.ID,
		CreatedAt: base.Add(2 * time.Hour),
		UpdatedAt: base.Add(2 * time.Hour),
	}
	top.SetTarget(models.VideoTarget(video.ID))
	if err := repos.Comments.Create(ctx, &top); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	reply := models.Comment{
		Content:         "Thanks! More coming soon.",
		ParentCommentID: &top.ID,
		OwnerID:         john.ID,
		CreatedAt:       base.Add(3 * time.Hour),
		UpdatedAt:       base.Add(3 * time.Hour),
	}
	reply.SetTarget(top.Target())
	if err := repos.Comments.Create(ctx, &reply); err != nil {
		return nil, fmt.Errorf("返信の作成に失敗しました: %w", err)
	}
	fx.Comments = append(fx.Comments, top, reply)

	return fx, nil
}
