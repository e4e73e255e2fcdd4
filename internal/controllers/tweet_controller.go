package controllers

import (
	"net/http"

	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// TweetController ツイートに関するコントローラー
type TweetController struct {
	tweetService services.TweetService
}

// NewTweetController TweetControllerを作成
func NewTweetController(tweetService services.TweetService) *TweetController {
	return &TweetController{
		tweetService: tweetService,
	}
}

// TweetRequest ツイート作成リクエスト
type TweetRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create ツイートを作成
func (c *TweetController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req TweetRequest
	if !bindJSON(ctx, &req) {
		return
	}

	tweet, err := c.tweetService.Create(ctx.Request.Context(), user.ID, req.Content)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, tweet, "Tweet created successfully")
}

// ListByUser ユーザーのツイート一覧
func (c *TweetController) ListByUser(ctx *gin.Context) {
	userID, ok := requireID(ctx, "userId", "Invalid user id")
	if !ok {
		return
	}

	tweets, err := c.tweetService.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, tweets, "Tweets fetched successfully")
}

// GetByID ツイートを取得
func (c *TweetController) GetByID(ctx *gin.Context) {
	tweetID, ok := requireID(ctx, "tweetId", "Invalid tweet id")
	if !ok {
		return
	}

	tweet, err := c.tweetService.GetByID(ctx.Request.Context(), tweetID)
	if err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, tweet, "Tweet fetched successfully")
}

// Delete ツイートを削除 (コメントも削除される)
func (c *TweetController) Delete(ctx *gin.Context) {
	tweetID, ok := requireID(ctx, "tweetId", "Invalid tweet id")
	if !ok {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.tweetService.Delete(ctx.Request.Context(), tweetID, user.ID); err != nil {
		RespondError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, gin.H{}, "Tweet deleted successfully")
}
