package config

import (
	"context"
	"fmt"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newGormLogger GORMのログをlogrusに流す
func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		logger.Logger().WithField("component", "gorm"),
		gormlogger.Config{
			SlowThreshold:             time.Second, // 1秒以上のクエリを遅いと判断
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Dialector ドライバに応じたGORMダイアレクタを作成
func Dialector(cfg *Config) (gorm.Dialector, error) {
	db := cfg.Database
	switch db.Driver {
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			db.Username, db.Password, db.Host, db.Port, db.DBName)
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			db.Host, db.Username, db.Password, db.DBName, db.Port, db.SSLMode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%s はSQLドライバではありません", db.Driver)
	}
}

// InitDB データベース接続を初期化
func InitDB(cfg *Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logger.Logger().Infof("データベースに接続中: %s %s:%s/%s",
		cfg.Database.Driver, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// 接続プールの設定
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 接続テスト
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("データベース接続テストに失敗: %w", err)
	}

	logger.Logger().Info("データベース接続に成功しました")

	return db, nil
}

// InitMongo MongoDB接続を初期化
func InitMongo(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	logger.Logger().Infof("MongoDBに接続中: %s", cfg.Database.DBName)

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Database.MongoURI).
		SetMaxPoolSize(100))
	if err != nil {
		return nil, nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("MongoDB接続テストに失敗: %w", err)
	}

	logger.Logger().Info("MongoDB接続に成功しました")

	return client, client.Database(cfg.Database.DBName), nil
}
