package controllers

import (
	"net/http"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// クッキー名
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AuthController 認証に関するコントローラー
type AuthController struct {
	authService   services.AuthService
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	secureCookies bool
}

// NewAuthController AuthControllerを作成
func NewAuthController(authService services.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		authService:   authService,
		accessExpiry:  cfg.Auth.AccessTokenExpiry,
		refreshExpiry: cfg.Auth.RefreshTokenExpiry,
		secureCookies: cfg.Env != "local" && cfg.Env != "test",
	}
}

// RegisterRequest ユーザー登録リクエスト
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	FullName  string `json:"fullName" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
	AvatarURL string `json:"avatarUrl" binding:"omitempty,url"`
}

// LoginRequest ログインリクエスト (ユーザー名かメールアドレスのどちらか)
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest トークン更新リクエスト
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register ユーザー登録
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		RespondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, user, "User registered successfully")
}

// Login ログイン
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	c.setTokenCookies(ctx, &result.TokenPair)
	respond(ctx, http.StatusOK, result, "User logged in successfully")
}

// RefreshToken アクセストークンを更新
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	token, _ := ctx.Cookie(RefreshTokenCookie)
	if token == "" {
		var req RefreshRequest
		// ボディは任意
		_ = ctx.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	pair, err := c.authService.RefreshToken(ctx.Request.Context(), token)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	c.setTokenCookies(ctx, pair)
	respond(ctx, http.StatusOK, pair, "Access token refreshed")
}

// Logout ログアウト
func (c *AuthController) Logout(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), user.ID); err != nil {
		RespondError(ctx, err)
		return
	}

	c.clearTokenCookies(ctx)
	respond(ctx, http.StatusOK, gin.H{}, "User logged out")
}

// CurrentUser 現在のユーザー情報を取得
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, user, "Current user fetched successfully")
}

func (c *AuthController) setTokenCookies(ctx *gin.Context, pair *services.TokenPair) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(AccessTokenCookie, pair.AccessToken, int(c.accessExpiry.Seconds()), "/", "", c.secureCookies, true)
	ctx.SetCookie(RefreshTokenCookie, pair.RefreshToken, int(c.refreshExpiry.Seconds()), "/", "", c.secureCookies, true)
}

func (c *AuthController) clearTokenCookies(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(AccessTokenCookie, "", -1, "/", "", c.secureCookies, true)
	ctx.SetCookie(RefreshTokenCookie, "", -1, "/", "", c.secureCookies, true)
}
