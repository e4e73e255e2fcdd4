package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/services"
	"github.com/SketchShifter/vidtube_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// VideoController 動画に関するコントローラー
type VideoController struct {
	videoService  services.VideoService
	maxUploadSize int64
}

// NewVideoController VideoControllerを作成
func NewVideoController(videoService services.VideoService, maxUploadSize int64) *VideoController {
	return &VideoController{
		videoService:  videoService,
		maxUploadSize: maxUploadSize,
	}
}

// UpdateVideoRequest 動画更新リクエスト (JSON)
type UpdateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List 動画一覧を取得
func (c *VideoController) List(ctx *gin.Context) {
	filter := models.VideoFilter{
		Query:    ctx.Query("query"),
		OwnerID:  ctx.Query("userId"),
		SortBy:   ctx.DefaultQuery("sortBy", "createdAt"),
		SortDesc: !strings.EqualFold(ctx.Query("sortType"), "asc"),
	}

	page, err := c.videoService.List(ctx.Request.Context(), filter, pageRequest(ctx))
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Videos fetched successfully")
}

// Publish 動画をアップロードして公開
func (c *VideoController) Publish(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadSize)

	videoFile, ok := c.openFormFile(ctx, "videoFile", true, utils.IsVideoFile)
	if !ok {
		return
	}
	defer videoFile.Close()

	thumbnail, ok := c.openFormFile(ctx, "thumbnail", true, utils.IsImageFile)
	if !ok {
		return
	}
	defer thumbnail.Close()

	var duration float64
	if raw := ctx.PostForm("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondError(ctx, apperrors.Validation("Invalid duration"))
			return
		}
		duration = d
	}

	video, err := c.videoService.Publish(ctx.Request.Context(), user.ID, services.PublishVideoInput{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Duration:    duration,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, video, "Video published successfully")
}

// GetByID 動画を取得
func (c *VideoController) GetByID(ctx *gin.Context) {
	videoID, ok := requireID(ctx, "videoId", "Invalid video id")
	if !ok {
		return
	}

	video, err := c.videoService.GetByID(ctx.Request.Context(), videoID, viewerID(ctx))
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, video, "Video fetched successfully")
}

// Update 動画情報を更新 (multipart または JSON)
func (c *VideoController) Update(ctx *gin.Context) {
	videoID, ok := requireID(ctx, "videoId", "Invalid video id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var input services.UpdateVideoInput
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadSize)
		if title, exists := ctx.GetPostForm("title"); exists {
			input.Title = &title
		}
		if description, exists := ctx.GetPostForm("description"); exists {
			input.Description = &description
		}
		thumbnail, ok := c.openFormFile(ctx, "thumbnail", false, utils.IsImageFile)
		if !ok {
			return
		}
		if thumbnail != nil {
			defer thumbnail.Close()
			input.Thumbnail = thumbnail
		}
	} else {
		var req UpdateVideoRequest
		if !bindJSON(ctx, &req) {
			return
		}
		input.Title = req.Title
		input.Description = req.Description
	}

	video, err := c.videoService.Update(ctx.Request.Context(), videoID, user.ID, input)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, video, "Video updated successfully")
}

// Delete 動画を削除
func (c *VideoController) Delete(ctx *gin.Context) {
	videoID, ok := requireID(ctx, "videoId", "Invalid video id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.videoService.Delete(ctx.Request.Context(), videoID, user.ID); err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, gin.H{}, "Video deleted successfully")
}

// TogglePublish 公開状態を切り替え
func (c *VideoController) TogglePublish(ctx *gin.Context) {
	videoID, ok := requireID(ctx, "videoId", "Invalid video id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	video, err := c.videoService.TogglePublish(ctx.Request.Context(), videoID, user.ID)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, video, "Publish status toggled successfully")
}

// openFormFile アップロードファイルを開く。required でなければ未指定時に nil を返す
func (c *VideoController) openFormFile(ctx *gin.Context, field string, required bool, allowed func(string) bool) (multipart.File, bool) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if !required && errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		RespondError(ctx, apperrors.Validation(field+" is required"))
		return nil, false
	}
	if !allowed(header.Filename) {
		RespondError(ctx, apperrors.Validation("Unsupported file type for "+field))
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		RespondError(ctx, apperrors.Internal(err, "ファイルを開けませんでした"))
		return nil, false
	}
	return file, true
}
