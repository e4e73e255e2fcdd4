package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/logger"
	"github.com/SketchShifter/vidtube_backend/internal/mock"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
)

func main() {
	log := logger.Logger()

	// 引数をチェック
	if len(os.Args) < 2 {
		log.Fatal("使用方法: migrate [up|down|seed]")
	}

	// 設定をロード
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	command := os.Args[1]
	if cfg.Database.Driver == config.DriverMongo {
		err = runMongo(ctx, cfg, command)
	} else {
		err = runSQL(ctx, cfg, command)
	}
	if err != nil {
		log.Fatalf("%s に失敗しました: %v", command, err)
	}
	fmt.Printf("%s が成功しました\n", command)
}

// runSQL MySQL/PostgreSQL のテーブルを操作
func runSQL(ctx context.Context, cfg *config.Config, command string) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return repository.AutoMigrate(db)
	case "down":
		return repository.DropTables(db)
	case "seed":
		if err := repository.AutoMigrate(db); err != nil {
			return err
		}
		return seed(ctx, repository.NewGormRepositories(db))
	default:
		return fmt.Errorf("不明なコマンドです: %s", command)
	}
}

// runMongo MongoDB のインデックスとコレクションを操作
func runMongo(ctx context.Context, cfg *config.Config, command string) error {
	client, db, err := config.InitMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	switch command {
	case "up":
		return repository.EnsureIndexes(ctx, db)
	case "down":
		return repository.DropCollections(ctx, db)
	case "seed":
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		return seed(ctx, repository.NewMongoRepositories(db))
	default:
		return fmt.Errorf("不明なコマンドです: %s", command)
	}
}

func seed(ctx context.Context, repos *repository.Repositories) error {
	fx, err := mock.Seed(ctx, repos)
	if err != nil {
		return err
	}
	logger.For(ctx).Infof("ユーザー%d件、動画%d件、ツイート%d件、コメント%d件を投入しました (パスワード: %s)",
		len(fx.Users), len(fx.Videos), len(fx.Tweets), len(fx.Comments), mock.Password)
	return nil
}
