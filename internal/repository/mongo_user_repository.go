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

// userDocument usersコレクションのドキュメント
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	FullName     string             `bson:"fullName"`
	Avatar       string             `bson:"avatar"`
	Password     string             `bson:"password"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		AvatarURL:    d.Avatar,
		PasswordHash: d.Password,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// mongoUserRepository UserRepositoryのMongoDB実装
type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository MongoDB版のUserRepositoryを作成
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(usersCollection)}
}

// Create 新しいユーザーを作成
func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	oid, err := ensureObjectID(&user.ID)
	if err != nil {
		return err
	}
	stampTimes(&user.CreatedAt, &user.UpdatedAt)

	_, err = r.coll.InsertOne(ctx, userDocument{
		ID:           oid,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Avatar:       user.AvatarURL,
		Password:     user.PasswordHash,
		RefreshToken: user.RefreshToken,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	return translateMongoError(err)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toModel(), nil
}

// FindByID IDでユーザーを検索
func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByUsername ユーザー名で検索
func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByUsernameOrEmail ユーザー名またはメールアドレスで検索
func (r *mongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
}

// FindSummaries 複数ユーザーの公開プロフィールをまとめて取得
func (r *mongoUserRepository) FindSummaries(ctx context.Context, ids []string) (map[string]models.OwnerSummary, error) {
	summaries := make(map[string]models.OwnerSummary, len(ids))
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return summaries, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "fullName": 1, "avatar": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for i := range docs {
		summaries[docs[i].ID.Hex()] = docs[i].toModel().Summary()
	}
	return summaries, nil
}

// UpdateRefreshToken リフレッシュトークンを保存 (空文字で無効化)
func (r *mongoUserRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	oid, err := toObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": 1},
			"$set":   bson.M{"updatedAt": now()},
		}
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
