package repository

import (
	"context"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Repositories アプリケーションで使うリポジトリ一式
type Repositories struct {
	Users    UserRepository
	Videos   VideoRepository
	Tweets   TweetRepository
	Comments CommentRepository
}

// NewGormRepositories MySQL/PostgreSQL用のリポジトリ一式を作成
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Videos:   NewVideoRepository(db),
		Tweets:   NewTweetRepository(db),
		Comments: NewCommentRepository(db),
	}
}

// NewMongoRepositories MongoDB用のリポジトリ一式を作成
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:    NewMongoUserRepository(db),
		Videos:   NewMongoVideoRepository(db),
		Tweets:   NewMongoTweetRepository(db),
		Comments: NewMongoCommentRepository(db),
	}
}

// schemaModels マイグレーション対象のモデル
func schemaModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Video{},
		&models.Tweet{},
		&models.Comment{},
	}
}

// AutoMigrate テーブルを作成・更新
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(schemaModels()...)
}

// DropTables テーブルを削除 (依存関係の逆順)
func DropTables(db *gorm.DB) error {
	tables := schemaModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return err
		}
	}
	return nil
}

// EnsureIndexes MongoDBのインデックスを作成
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		videosCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		tweetsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "parentComment", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "tweet", Value: 1}, {Key: "parentComment", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "parentComment", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// DropCollections MongoDBのコレクションを削除
func DropCollections(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{commentsCollection, tweetsCollection, videosCollection, usersCollection} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}
