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

// tweetDocument tweetsコレクションのドキュメント
type tweetDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *tweetDocument) toModel() models.Tweet {
	return models.Tweet{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		OwnerID:   d.Owner.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// mongoTweetRepository TweetRepositoryのMongoDB実装
type mongoTweetRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoTweetRepository MongoDB版のTweetRepositoryを作成
func NewMongoTweetRepository(db *mongo.Database) TweetRepository {
	return &mongoTweetRepository{db: db, coll: db.Collection(tweetsCollection)}
}

// Create 新しいツイートを作成
func (r *mongoTweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	oid, err := ensureObjectID(&tweet.ID)
	if err != nil {
		return err
	}
	owner, err := toObjectID(tweet.OwnerID)
	if err != nil {
		return err
	}
	stampTimes(&tweet.CreatedAt, &tweet.UpdatedAt)

	_, err = r.coll.InsertOne(ctx, tweetDocument{
		ID:        oid,
		Content:   tweet.Content,
		Owner:     owner,
		CreatedAt: tweet.CreatedAt,
		UpdatedAt: tweet.UpdatedAt,
	})
	return translateMongoError(err)
}

// FindByID IDでツイートを検索
func (r *mongoTweetRepository) FindByID(ctx context.Context, id string) (*models.Tweet, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc tweetDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	tweet := doc.toModel()
	return &tweet, nil
}

// Exists ツイートが存在するか
func (r *mongoTweetRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return false, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	return count > 0, err
}

// ListByOwner ユーザーのツイート一覧を新しい順に取得
func (r *mongoTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	oid, err := toObjectID(ownerID)
	if err != nil {
		return []models.Tweet{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner": oid}, opts)
	if err != nil {
		return nil, err
	}

	var docs []tweetDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tweets := make([]models.Tweet, 0, len(docs))
	for i := range docs {
		tweets = append(tweets, docs[i].toModel())
	}
	return tweets, nil
}

// Delete ツイートとそのコメントを削除
func (r *mongoTweetRepository) Delete(ctx context.Context, id string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}

	// コメントを先に削除し、途中で失敗してもコメントだけが残らないようにする
	if err := deleteMongoCommentsByTarget(ctx, r.db, models.TargetTweet, oid); err != nil {
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
