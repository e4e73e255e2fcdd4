package controllers

import (
	"net/http"
	"strconv"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/logger"
	"github.com/SketchShifter/vidtube_backend/internal/models"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Response 共通レスポンス
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// respond 成功レスポンスを返す
func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// RespondError エラーをHTTPステータスに変換して返す
func RespondError(ctx *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	if status >= http.StatusInternalServerError {
		logger.For(ctx).WithError(err).Error("リクエストの処理に失敗しました")
		if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		}
	}
	_ = ctx.Error(err)

	ctx.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    apperrors.PublicMessage(err),
		Success:    false,
	})
}

// bindJSON リクエストボディをバインド。失敗時は400を返す
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		RespondError(ctx, apperrors.Validation("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// currentUser 認証済みユーザーを取得
func currentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get("user")
	if !exists {
		RespondError(ctx, apperrors.Unauthorized("Unauthorized request"))
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok || user == nil {
		RespondError(ctx, apperrors.Unauthorized("Unauthorized request"))
		return nil, false
	}
	return user, true
}

// viewerID 任意認証のユーザーID (未ログインなら空)
func viewerID(ctx *gin.Context) string {
	if value, exists := ctx.Get("user"); exists {
		if user, ok := value.(*models.User); ok && user != nil {
			return user.ID
		}
	}
	return ""
}

// requireID パスパラメータのIDを検証
func requireID(ctx *gin.Context, param, message string) (string, bool) {
	id := ctx.Param(param)
	if !models.IsValidID(id) {
		RespondError(ctx, apperrors.Validation(message))
		return "", false
	}
	return id, true
}

// pageRequest page と limit を解析。不正な値はデフォルトになる
func pageRequest(ctx *gin.Context) models.PageRequest {
	page, _ := strconv.Atoi(ctx.Query("page"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	return models.NewPageRequest(page, limit)
}

// NoRoute 未登録のパスを404のエラーレスポンスにする
func NoRoute(ctx *gin.Context) {
	RespondError(ctx, apperrors.NotFound("Route not found"))
}

// NoMethod 許可されていないメソッドを405のエラーレスポンスにする
func NoMethod(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusMethodNotAllowed, ErrorResponse{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed",
		Success:    false,
	})
}
