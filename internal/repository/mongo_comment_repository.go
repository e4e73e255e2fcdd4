package repository

import (
	"context"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// commentDocument commentsコレクションのドキュメント
//
// 添付先は video か tweet のどちらか一方のみ設定される。
type commentDocument struct {
	ID            primitive.ObjectID  `bson:"_id"`
	Content       string              `bson:"content"`
	Video         *primitive.ObjectID `bson:"video,omitempty"`
	Tweet         *primitive.ObjectID `bson:"tweet,omitempty"`
	ParentComment *primitive.ObjectID `bson:"parentComment"`
	Owner         primitive.ObjectID  `bson:"owner"`
	CreatedAt     time.Time           `bson:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt"`
}

func (d *commentDocument) toModel() models.Comment {
	comment := models.Comment{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		OwnerID:   d.Owner.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	switch {
	case d.Video != nil:
		comment.SetTarget(models.VideoTarget(d.Video.Hex()))
	case d.Tweet != nil:
		comment.SetTarget(models.TweetTarget(d.Tweet.Hex()))
	}
	if d.ParentComment != nil {
		parentID := d.ParentComment.Hex()
		comment.ParentCommentID = &parentID
	}
	return comment
}

// targetField 添付先の種類に対応するフィールド名
func targetField(kind models.TargetKind) string {
	if kind == models.TargetTweet {
		return "tweet"
	}
	return "video"
}

// mongoCommentRepository CommentRepositoryのMongoDB実装
type mongoCommentRepository struct {
	coll *mongo.Collection
}

// NewMongoCommentRepository MongoDB版のCommentRepositoryを作成
func NewMongoCommentRepository(db *mongo.Database) CommentRepository {
	return &mongoCommentRepository{coll: db.Collection(commentsCollection)}
}

// Create 新しいコメントを作成
func (r *mongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	oid, err := ensureObjectID(&comment.ID)
	if err != nil {
		return err
	}
	owner, err := toObjectID(comment.OwnerID)
	if err != nil {
		return err
	}
	target, err := toObjectID(comment.TargetID)
	if err != nil {
		return err
	}
	stampTimes(&comment.CreatedAt, &comment.UpdatedAt)

	doc := commentDocument{
		ID:        oid,
		Content:   comment.Content,
		Owner:     owner,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.TargetKind == models.TargetTweet {
		doc.Tweet = &target
	} else {
		doc.Video = &target
	}
	if comment.ParentCommentID != nil {
		parent, err := toObjectID(*comment.ParentCommentID)
		if err != nil {
			return err
		}
		doc.ParentComment = &parent
	}

	_, err = r.coll.InsertOne(ctx, doc)
	return translateMongoError(err)
}

// FindByID IDでコメントを検索
func (r *mongoCommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc commentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	comment := doc.toModel()
	return &comment, nil
}

// UpdateContent 本文のみ更新
func (r *mongoCommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content, "updatedAt": now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithReplies コメントとその返信を1回の操作で削除
func (r *mongoCommentRepository) DeleteWithReplies(ctx context.Context, id string) (int64, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return 0, nil
	}

	result, err := r.coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"_id": oid},
		bson.M{"parentComment": oid},
	}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ListTopLevel 添付先のトップレベルコメント一覧を新しい順に取得
func (r *mongoCommentRepository) ListTopLevel(ctx context.Context, target models.Target, page models.PageRequest) ([]models.Comment, int64, error) {
	oid, err := toObjectID(target.ID)
	if err != nil {
		return []models.Comment{}, 0, nil
	}

	match := bson.D{
		{Key: targetField(target.Kind), Value: oid},
		{Key: "parentComment", Value: nil},
	}
	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

	docs, total, err := aggregatePage[commentDocument](ctx, r.coll, match, sort, page)
	if err != nil {
		return nil, 0, err
	}

	comments := make([]models.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toModel())
	}
	return comments, total, nil
}

// ListReplies 返信一覧を古い順に取得
func (r *mongoCommentRepository) ListReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	oid, err := toObjectID(parentID)
	if err != nil {
		return []models.Comment{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"parentComment": oid}, opts)
	if err != nil {
		return nil, err
	}

	var docs []commentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	replies := make([]models.Comment, 0, len(docs))
	for i := range docs {
		replies = append(replies, docs[i].toModel())
	}
	return replies, nil
}

// deleteMongoCommentsByTarget 添付先に紐づくコメントをすべて削除
func deleteMongoCommentsByTarget(ctx context.Context, db *mongo.Database, kind models.TargetKind, oid primitive.ObjectID) error {
	_, err := db.Collection(commentsCollection).DeleteMany(ctx, bson.M{targetField(kind): oid})
	return err
}
