package middlewares

import (
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/controllers"
	"github.com/SketchShifter/vidtube_backend/internal/logger"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware 認証ミドルウェア
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)

		// トークンがない場合は認証エラー
		if token == "" {
			controllers.RespondError(ctx, apperrors.Unauthorized("Unauthorized request"))
			return
		}

		// ユーザーを取得
		user, err := authService.GetUserFromToken(ctx.Request.Context(), token)
		if err != nil {
			controllers.RespondError(ctx, err)
			return
		}

		setUser(ctx, user.ID)
		ctx.Set("user", user)
		ctx.Next()
	}
}

// OptionalAuthMiddleware オプショナル認証ミドルウェア（認証がない場合もエラーを返さない）
func OptionalAuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			ctx.Next()
			return
		}

		user, err := authService.GetUserFromToken(ctx.Request.Context(), token)
		if err != nil {
			ctx.Next()
			return
		}

		setUser(ctx, user.ID)
		ctx.Set("user", user)
		ctx.Next()
	}
}

// extractToken Authorizationヘッダー、なければクッキーからトークンを取り出す
func extractToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	token, err := ctx.Cookie(controllers.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// setUser リクエストロガーにユーザーIDを追加
func setUser(ctx *gin.Context, userID string) {
	ctx.Request = ctx.Request.WithContext(
		logger.NewContextWithFields(ctx.Request.Context(), logrus.Fields{"userId": userID}),
	)
}
