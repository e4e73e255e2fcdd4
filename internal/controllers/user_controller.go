package controllers

import (
	"net/http"

	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// UserController ユーザーに関するコントローラー
type UserController struct {
	userService services.UserService
}

// NewUserController UserControllerを作成
func NewUserController(userService services.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// GetChannel ユーザー名でチャンネル情報を取得
func (c *UserController) GetChannel(ctx *gin.Context) {
	channel, err := c.userService.GetChannel(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, channel, "User channel fetched successfully")
}
