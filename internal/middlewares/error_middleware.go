package middlewares

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/controllers"
	"github.com/SketchShifter/vidtube_backend/internal/logger"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ErrorMiddleware パニックを500のエラーレスポンスに変換する
func ErrorMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.For(ctx).WithField("stack", string(debug.Stack())).Errorf("パニックが発生しました: %v", rec)

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				if ctx.Writer.Written() {
					ctx.Abort()
					return
				}
				controllers.RespondError(ctx, apperrors.Internal(err, "パニックから復帰しました"))
			}
		}()
		ctx.Next()
	}
}

// SentryMiddleware リクエストごとにSentryのハブを用意する
func SentryMiddleware() gin.HandlerFunc {
	handler := sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second})

	return func(ctx *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		ctx.Request = ctx.Request.WithContext(sentry.SetHubOnContext(ctx.Request.Context(), hub))

		// sentrygin が ctx.Next() を呼ぶ
		handler(ctx)
	}
}

// CORSMiddleware CORSミドルウェア
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
