package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType トークンの種類
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// ErrInvalidToken トークンが不正または期限切れ
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims はJWTトークンのペイロード
type JWTClaims struct {
	UserID string    `json:"user_id"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager アクセストークンとリフレッシュトークンを別々の鍵で発行・検証する
type TokenManager struct {
	accessSecret  []byte
	accessExpiry  time.Duration
	refreshSecret []byte
	refreshExpiry time.Duration
}

// NewTokenManager TokenManagerを作成
func NewTokenManager(accessSecret string, accessExpiry time.Duration, refreshSecret string, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		accessExpiry:  accessExpiry,
		refreshSecret: []byte(refreshSecret),
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken アクセストークンを生成
func (m *TokenManager) GenerateAccessToken(userID string) (string, error) {
	return m.generate(userID, AccessToken, m.accessSecret, m.accessExpiry)
}

// GenerateRefreshToken リフレッシュトークンを生成
func (m *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	return m.generate(userID, RefreshToken, m.refreshSecret, m.refreshExpiry)
}

// ValidateAccessToken アクセストークンを検証しユーザーIDを返す
func (m *TokenManager) ValidateAccessToken(tokenString string) (string, error) {
	return m.validate(tokenString, AccessToken, m.accessSecret)
}

// ValidateRefreshToken リフレッシュトークンを検証しユーザーIDを返す
func (m *TokenManager) ValidateRefreshToken(tokenString string) (string, error) {
	return m.validate(tokenString, RefreshToken, m.refreshSecret)
}

func (m *TokenManager) generate(userID string, typ TokenType, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()

	// クレームを作成 (jtiで毎回異なるトークンにする)
	claims := &JWTClaims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	// 署名して文字列化
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *TokenManager) validate(tokenString string, typ TokenType, secret []byte) (string, error) {
	claims := &JWTClaims{}

	// トークンをパース
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Type != typ || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
