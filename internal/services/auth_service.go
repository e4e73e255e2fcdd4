package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
	"github.com/SketchShifter/vidtube_backend/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 認証に関するサービスインターフェース
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, email, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID string) error
	GetUserFromToken(ctx context.Context, accessToken string) (*models.User, error)
}

// RegisterInput ユーザー登録の入力
type RegisterInput struct {
	Username  string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
}

// TokenPair アクセストークンとリフレッシュトークン
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult ログイン結果
type LoginResult struct {
	User *models.User `json:"user"`
	TokenPair
}

// authService AuthServiceの実装
type authService struct {
	userRepo repository.UserRepository
	tokens   *utils.TokenManager
}

// NewAuthService AuthServiceを作成
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens: utils.NewTokenManager(
			cfg.Auth.AccessTokenSecret, cfg.Auth.AccessTokenExpiry,
			cfg.Auth.RefreshTokenSecret, cfg.Auth.RefreshTokenExpiry,
		),
	}
}

// Register ユーザー登録
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	if username == "" || email == "" || fullName == "" || input.Password == "" {
		return nil, apperrors.Validation("All fields are required")
	}

	// ユーザー名・メールアドレスが既に使用されているか確認
	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict("User with email or username already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err, "ユーザーの確認に失敗しました")
	}

	// パスワードをハッシュ化
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "パスワードのハッシュ化に失敗しました")
	}

	// 新しいユーザーを作成
	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		AvatarURL:    strings.TrimSpace(input.AvatarURL),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("User with email or username already exists")
		}
		return nil, apperrors.Internal(err, "ユーザーの作成に失敗しました")
	}

	return user, nil
}

// Login ユーザー名またはメールアドレスでログイン
func (s *authService) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return nil, apperrors.Validation("Username or email is required")
	}

	// ユーザーを検索
	user, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User does not exist")
		}
		return nil, apperrors.Internal(err, "ユーザーの取得に失敗しました")
	}

	// パスワードを検証
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.RefreshToken = pair.RefreshToken

	return &LoginResult{User: user, TokenPair: *pair}, nil
}

// RefreshToken リフレッシュトークンを検証して新しいトークンを発行
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized("Unauthorized request")
	}

	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid refresh token")
		}
		return nil, apperrors.Internal(err, "ユーザーの取得に失敗しました")
	}

	// 使用済みのトークンは拒否
	if user.RefreshToken != refreshToken {
		return nil, apperrors.Unauthorized("Refresh token is expired or used")
	}

	return s.issueTokens(ctx, user.ID)
}

// Logout 保存済みのリフレッシュトークンを無効化
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User does not exist")
		}
		return apperrors.Internal(err, "ログアウトに失敗しました")
	}
	return nil
}

// GetUserFromToken トークンからユーザーを取得
func (s *authService) GetUserFromToken(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid access token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid access token")
		}
		return nil, apperrors.Internal(err, "ユーザーの取得に失敗しました")
	}
	return user, nil
}

// issueTokens トークンを発行しリフレッシュトークンを保存
func (s *authService) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, apperrors.Internal(err, "アクセストークンの生成に失敗しました")
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, apperrors.Internal(err, "リフレッシュトークンの生成に失敗しました")
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, userID, refresh); err != nil {
		return nil, apperrors.Internal(err, "リフレッシュトークンの保存に失敗しました")
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
