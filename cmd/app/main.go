package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/events"
	"github.com/SketchShifter/vidtube_backend/internal/logger"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
	"github.com/SketchShifter/vidtube_backend/internal/routes"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		logger.Logger().Fatalf("サーバーが異常終了しました: %v", err)
	}
}

// run サーバーを起動し、シグナルを受け取るまで待つ。defer は必ず実行される
func run() error {
	// 設定をロード
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	log := logger.Logger()
	log.Info("サーバーを起動しています...")

	// Gin モードの設定（環境変数が設定されていない場合はデバッグモード）
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		log.Debugf("エンドポイント登録: %s %s -> %s (%d handlers)", httpMethod, absolutePath, handlerName, nuHandlers)
	}

	// エラー通知
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("Sentryの初期化に失敗しました: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()

	// データベース接続
	repos, ping, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("データベース接続に失敗しました: %w", err)
	}
	defer closeDB()

	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		return fmt.Errorf("イベント送信の初期化に失敗しました: %w", err)
	}

	storage, err := services.NewMediaStorage(cfg)
	if err != nil {
		return fmt.Errorf("Cloudinaryサービスの初期化に失敗しました: %w", err)
	}

	// ルーターをセットアップ
	router := routes.SetupRouter(cfg, routes.Dependencies{
		Repositories: repos,
		Publisher:    publisher,
		Storage:      storage,
		Ping:         ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("サーバーを開始しています... PORT: %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// シグナルを待ってからシャットダウン
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info("サーバーを停止しています...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗しました: %w", err)
	}
	return nil
}

// openRepositories DB_DRIVER に応じてリポジトリを作成
func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, services.Pinger, func(), error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, db, err := config.InitMongo(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := repository.EnsureIndexes(ctx, db); err != nil {
				return nil, nil, nil, err
			}
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repository.NewMongoRepositories(db), ping, closeFn, nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() { _ = sqlDB.Close() }
	return repository.NewGormRepositories(db), sqlDB.PingContext, closeFn, nil
}
