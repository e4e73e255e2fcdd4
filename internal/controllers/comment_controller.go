package controllers

import (
	"net/http"

	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CommentController コメントに関するコントローラー
type CommentController struct {
	commentService services.CommentService
}

// NewCommentController CommentControllerを作成
func NewCommentController(commentService services.CommentService) *CommentController {
	return &CommentController{
		commentService: commentService,
	}
}

// CommentRequest コメントリクエスト
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListByVideo 動画のコメント一覧を取得
func (c *CommentController) ListByVideo(ctx *gin.Context) {
	videoID, ok := requireID(ctx, "videoId", "Invalid video id")
	if !ok {
		return
	}
	c.list(ctx, models.VideoTarget(videoID))
}

// ListByTweet ツイートのコメント一覧を取得
func (c *CommentController) ListByTweet(ctx *gin.Context) {
	tweetID, ok := requireID(ctx, "tweetId", "Invalid tweet id")
	if !ok {
		return
	}
	c.list(ctx, models.TweetTarget(tweetID))
}

func (c *CommentController) list(ctx *gin.Context, target models.Target) {
	page, err := c.commentService.ListByTarget(ctx.Request.Context(), target, pageRequest(ctx))
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Comments fetched successfully")
}

// AddToVideo 動画にコメントを追加
func (c *CommentController) AddToVideo(ctx *gin.Context) {
	videoID, ok := requireID(ctx, "videoId", "Invalid video id")
	if !ok {
		return
	}
	c.add(ctx, models.VideoTarget(videoID))
}

// AddToTweet ツイートにコメントを追加
func (c *CommentController) AddToTweet(ctx *gin.Context) {
	tweetID, ok := requireID(ctx, "tweetId", "Invalid tweet id")
	if !ok {
		return
	}
	c.add(ctx, models.TweetTarget(tweetID))
}

func (c *CommentController) add(ctx *gin.Context, target models.Target) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	comment, err := c.commentService.Create(ctx.Request.Context(), target, req.Content, user.ID)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, comment, "Comment added successfully")
}

// Update コメントを更新
func (c *CommentController) Update(ctx *gin.Context) {
	commentID, ok := requireID(ctx, "commentId", "Invalid comment id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	comment, err := c.commentService.UpdateContent(ctx.Request.Context(), commentID, user.ID, req.Content)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, comment, "Comment updated successfully")
}

// Delete コメントと返信を削除
func (c *CommentController) Delete(ctx *gin.Context) {
	commentID, ok := requireID(ctx, "commentId", "Invalid comment id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.commentService.Delete(ctx.Request.Context(), commentID, user.ID); err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, gin.H{}, "Comment deleted successfully")
}

// ListReplies 返信一覧を取得
func (c *CommentController) ListReplies(ctx *gin.Context) {
	commentID, ok := requireID(ctx, "commentId", "Invalid comment id")
	if !ok {
		return
	}

	replies, err := c.commentService.ListReplies(ctx.Request.Context(), commentID)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, replies, "Replies fetched successfully")
}

// AddReply コメントに返信
func (c *CommentController) AddReply(ctx *gin.Context) {
	commentID, ok := requireID(ctx, "commentId", "Invalid comment id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	reply, err := c.commentService.CreateReply(ctx.Request.Context(), commentID, req.Content, user.ID)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, reply, "Reply added successfully")
}
