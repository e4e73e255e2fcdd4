package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID 新しいIDを生成 (24桁の16進数ObjectID)
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID IDの形式が正しいかどうか
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
