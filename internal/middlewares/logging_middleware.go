package middlewares

import (
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader リクエストIDのヘッダー名
const RequestIDHeader = "X-Request-ID"

// RequestLogger リクエストIDを採番し、1リクエストにつき1行ログを出力する
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		ctx.Header(RequestIDHeader, requestID)
		ctx.Set("requestId", requestID)

		ctx.Request = ctx.Request.WithContext(logger.NewContextWithFields(ctx.Request.Context(), logrus.Fields{
			"requestId": requestID,
			"method":    ctx.Request.Method,
			"path":      ctx.Request.URL.Path,
		}))

		ctx.Next()

		status := ctx.Writer.Status()
		entry := logger.For(ctx).WithFields(logrus.Fields{
			"status":   status,
			"latency":  time.Since(start).String(),
			"clientIp": ctx.ClientIP(),
		})

		switch {
		case status >= 500:
			entry.Error("リクエスト完了")
		case status >= 400:
			entry.Warn("リクエスト完了")
		default:
			entry.Info("リクエスト完了")
		}
	}
}
