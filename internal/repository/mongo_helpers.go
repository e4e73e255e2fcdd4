package repository

import (
	"context"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// コレクション名
const (
	usersCollection    = "users"
	videosCollection   = "videos"
	tweetsCollection   = "tweets"
	commentsCollection = "comments"
)

// toObjectID 16進数IDをObjectIDに変換。不正な形式は存在しないものとして扱う
func toObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// toObjectIDs 不正な形式のIDは除外して変換
func toObjectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}

// ensureObjectID 未設定ならIDを採番
func ensureObjectID(id *string) (primitive.ObjectID, error) {
	if *id == "" {
		*id = models.NewID()
	}
	return toObjectID(*id)
}

// now MongoDBの精度 (ミリ秒) に揃えた現在時刻
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// stampTimes 作成日時・更新日時が未設定なら現在時刻を入れる
func stampTimes(createdAt, updatedAt *time.Time) {
	t := now()
	if createdAt.IsZero() {
		*createdAt = t
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

// pageResult $facet の結果
type pageResult[T any] struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Items []T `bson:"items"`
}

// aggregatePage 件数とページを1回の集計で取得
func aggregatePage[T any](ctx context.Context, coll *mongo.Collection, match, sort bson.D, page models.PageRequest) ([]T, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$facet", Value: bson.D{
			{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "$skip", Value: int64(page.Offset())}},
				bson.D{{Key: "$limit", Value: int64(page.Limit)}},
			}},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}

	var results []pageResult[T]
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}

	if len(results) == 0 || len(results[0].Metadata) == 0 {
		return []T{}, 0, nil
	}
	return results[0].Items, results[0].Metadata[0].Total, nil
}
