package controllers

import (
	"net/http"

	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// HealthController ヘルスチェックに関するコントローラー
type HealthController struct {
	healthService services.HealthService
}

// NewHealthController HealthControllerを作成
func NewHealthController(healthService services.HealthService) *HealthController {
	return &HealthController{
		healthService: healthService,
	}
}

// Check ヘルスチェック
func (c *HealthController) Check(ctx *gin.Context) {
	status := c.healthService.GetStatus(ctx.Request.Context())

	if status.Status != "ok" {
		respond(ctx, http.StatusServiceUnavailable, status, "Service degraded")
		return
	}
	respond(ctx, http.StatusOK, status, "OK")
}
