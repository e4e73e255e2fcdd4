package routes

import (
	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/controllers"
	"github.com/SketchShifter/vidtube_backend/internal/events"
	"github.com/SketchShifter/vidtube_backend/internal/middlewares"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Dependencies ルーターが使う外部リソース
type Dependencies struct {
	Repositories *repository.Repositories
	Publisher    events.Publisher
	Storage      services.MediaStorage
	Ping         services.Pinger
}

// SetupRouter ルーターを設定
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.HandleMethodNotAllowed = true
	r.NoRoute(controllers.NoRoute)
	r.NoMethod(controllers.NoMethod)

	// ミドルウェアを設定
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.ErrorMiddleware())
	if cfg.Sentry.DSN != "" {
		r.Use(middlewares.SentryMiddleware())
	}
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))

	repos := deps.Repositories

	// サービスを作成
	authService := services.NewAuthService(repos.Users, cfg)
	userService := services.NewUserService(repos.Users)
	commentService := services.NewCommentService(repos, deps.Publisher)
	videoService := services.NewVideoService(repos, deps.Storage)
	tweetService := services.NewTweetService(repos)
	healthService := services.NewHealthService(deps.Ping)

	// コントローラーを作成
	authController := controllers.NewAuthController(authService, cfg)
	userController := controllers.NewUserController(userService)
	commentController := controllers.NewCommentController(commentService)
	videoController := controllers.NewVideoController(videoService, cfg.Storage.MaxUploadSize)
	tweetController := controllers.NewTweetController(tweetService)
	healthController := controllers.NewHealthController(healthService)

	// 認証ミドルウェア
	authMiddleware := middlewares.AuthMiddleware(authService)
	optionalAuthMiddleware := middlewares.OptionalAuthMiddleware(authService)

	// APIグループを作成
	api := r.Group("/api/v1")
	{
		// ヘルスチェックルート（認証不要）
		api.GET("/health", healthController.Check)

		// ユーザー・認証ルート
		users := api.Group("/users")
		{
			users.POST("/register", authController.Register)
			users.POST("/login", authController.Login)
			users.POST("/refresh-token", authController.RefreshToken)
			users.POST("/logout", authMiddleware, authController.Logout)
			users.GET("/current-user", authMiddleware, authController.CurrentUser)
			users.GET("/c/:username", userController.GetChannel)
		}

		// コメントルート (すべて認証が必要)
		comments := api.Group("/comments", authMiddleware)
		{
			comments.GET("/:videoId", commentController.ListByVideo)
			comments.POST("/:videoId", commentController.AddToVideo)
			comments.PATCH("/c/:commentId", commentController.Update)
			comments.DELETE("/c/:commentId", commentController.Delete)
			comments.GET("/tweet/:tweetId", commentController.ListByTweet)
			comments.POST("/tweet/:tweetId", commentController.AddToTweet)
			comments.GET("/replies/:commentId", commentController.ListReplies)
			comments.POST("/replies/:commentId", commentController.AddReply)
		}

		// 動画ルート
		videos := api.Group("/videos")
		{
			videos.GET("", videoController.List)
			videos.GET("/:videoId", optionalAuthMiddleware, videoController.GetByID)
			videos.POST("", authMiddleware, videoController.Publish)
			videos.PATCH("/:videoId", authMiddleware, videoController.Update)
			videos.DELETE("/:videoId", authMiddleware, videoController.Delete)
			videos.PATCH("/toggle/publish/:videoId", authMiddleware, videoController.TogglePublish)
		}

		// ツイートルート
		tweets := api.Group("/tweets")
		{
			tweets.POST("", authMiddleware, tweetController.Create)
			tweets.GET("/user/:userId", tweetController.ListByUser)
			tweets.GET("/:tweetId", tweetController.GetByID)
			tweets.DELETE("/:tweetId", authMiddleware, tweetController.Delete)
		}
	}

	return r
}
