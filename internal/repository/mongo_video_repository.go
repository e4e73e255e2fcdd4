package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// videoDocument videosコレクションのドキュメント
type videoDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	Title             string             `bson:"title"`
	Description       string             `bson:"description"`
	VideoFile         string             `bson:"videoFile"`
	VideoPublicID     string             `bson:"videoPublicId"`
	Thumbnail         string             `bson:"thumbnail"`
	ThumbnailPublicID string             `bson:"thumbnailPublicId"`
	Duration          float64            `bson:"duration"`
	Views             int64              `bson:"views"`
	IsPublished       bool               `bson:"isPublished"`
	Owner             primitive.ObjectID `bson:"owner"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func (d *videoDocument) toModel() models.Video {
	return models.Video{
		ID:                d.ID.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		VideoURL:          d.VideoFile,
		VideoPublicID:     d.VideoPublicID,
		ThumbnailURL:      d.Thumbnail,
		ThumbnailPublicID: d.ThumbnailPublicID,
		Duration:          d.Duration,
		Views:             d.Views,
		IsPublished:       d.IsPublished,
		OwnerID:           d.Owner.Hex(),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// mongoVideoRepository VideoRepositoryのMongoDB実装
type mongoVideoRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoVideoRepository MongoDB版のVideoRepositoryを作成
func NewMongoVideoRepository(db *mongo.Database) VideoRepository {
	return &mongoVideoRepository{db: db, coll: db.Collection(videosCollection)}
}

// Create 新しい動画を作成
func (r *mongoVideoRepository) Create(ctx context.Context, video *models.Video) error {
	oid, err := ensureObjectID(&video.ID)
	if err != nil {
		return err
	}
	owner, err := toObjectID(video.OwnerID)
	if err != nil {
		return err
	}
	stampTimes(&video.CreatedAt, &video.UpdatedAt)

	_, err = r.coll.InsertOne(ctx, videoDocument{
		ID:                oid,
		Title:             video.Title,
		Description:       video.Description,
		VideoFile:         video.VideoURL,
		VideoPublicID:     video.VideoPublicID,
		Thumbnail:         video.ThumbnailURL,
		ThumbnailPublicID: video.ThumbnailPublicID,
		Duration:          video.Duration,
		Views:             video.Views,
		IsPublished:       video.IsPublished,
		Owner:             owner,
		CreatedAt:         video.CreatedAt,
		UpdatedAt:         video.UpdatedAt,
	})
	return translateMongoError(err)
}

// FindByID IDで動画を検索
func (r *mongoVideoRepository) FindByID(ctx context.Context, id string) (*models.Video, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc videoDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	video := doc.toModel()
	return &video, nil
}

// Exists 動画が存在するか
func (r *mongoVideoRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return false, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	return count > 0, err
}

// Update タイトル・説明・サムネイルを更新
func (r *mongoVideoRepository) Update(ctx context.Context, video *models.Video) error {
	oid, err := toObjectID(video.ID)
	if err != nil {
		return err
	}

	video.UpdatedAt = now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":             video.Title,
		"description":       video.Description,
		"thumbnail":         video.ThumbnailURL,
		"thumbnailPublicId": video.ThumbnailPublicID,
		"updatedAt":         video.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished 公開状態を変更
func (r *mongoVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isPublished": published, "updatedAt": now()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 動画とそのコメントを削除
func (r *mongoVideoRepository) Delete(ctx context.Context, id string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}

	// コメントを先に削除し、途中で失敗してもコメントだけが残らないようにする
	if err := deleteMongoCommentsByTarget(ctx, r.db, models.TargetVideo, oid); err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews 閲覧数を増加
func (r *mongoVideoRepository) IncrementViews(ctx context.Context, id string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// List 動画一覧を取得
func (r *mongoVideoRepository) List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) ([]models.Video, int64, error) {
	match := bson.D{}

	// 検索条件を適用
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		match = append(match, bson.E{Key: "$or", Value: bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}})
	}

	// 投稿者でフィルタリング
	if filter.OwnerID != "" {
		owner, err := toObjectID(filter.OwnerID)
		if err != nil {
			return []models.Video{}, 0, nil
		}
		match = append(match, bson.E{Key: "owner", Value: owner})
	}

	if filter.PublishedOnly {
		match = append(match, bson.E{Key: "isPublished", Value: true})
	}

	// ソート順を適用
	field := filter.SortBy
	if _, ok := models.VideoSortColumns[field]; !ok {
		field = "createdAt"
	}
	direction := 1
	if filter.SortDesc {
		direction = -1
	}
	sort := bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}}

	docs, total, err := aggregatePage[videoDocument](ctx, r.coll, match, sort, page)
	if err != nil {
		return nil, 0, err
	}

	videos := make([]models.Video, 0, len(docs))
	for i := range docs {
		videos = append(videos, docs[i].toModel())
	}
	return videos, total, nil
}
