package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// データベースドライバ
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const defaultSecret = "your-secret-key"

// Config アプリケーション設定
type Config struct {
	Env        string
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Cloudinary CloudinaryConfig
	AWS        AWSConfig
	Sentry     SentryConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	GinMode      string
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	Username    string
	Password    string
	DBName      string
	SSLMode     string
	MongoURI    string
	AutoMigrate bool // 起動時にスキーマ/インデックスを作成
}

// AuthConfig 認証設定
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
}

// StorageConfig アップロード設定
type StorageConfig struct {
	MaxUploadSize int64
}

// CloudinaryConfig Cloudinary設定
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// AWSConfig AWS設定
type AWSConfig struct {
	Region                string
	CommentEventsQueueURL string // 空の場合はイベントを送信しない
}

// SentryConfig エラー通知設定
type SentryConfig struct {
	DSN string
}

// LogConfig ログ設定
type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig CORS設定
type CORSConfig struct {
	AllowedOrigins []string
}

// Load 環境変数から設定をロード
func Load() (*Config, error) {
	// .env ファイルをロード (存在すれば)
	_ = godotenv.Load()

	config := &Config{
		Env: getEnv("APP_ENV", "local"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 10)) * time.Second,
			GinMode:      getEnv("GIN_MODE", ""),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Username: getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "vidtube"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),

			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Auth: AuthConfig{
			AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", defaultSecret),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRY", 60)) * time.Minute,
			RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", defaultSecret+"-refresh"),
			RefreshTokenExpiry: time.Duration(getEnvAsInt("REFRESH_TOKEN_EXPIRY", 240)) * time.Hour,
		},
		Storage: StorageConfig{
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 200)) * 1024 * 1024, // MB to Bytes
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "vidtube"),
		},
		AWS: AWSConfig{
			Region:                getEnv("AWS_REGION", "ap-northeast-1"),
			CommentEventsQueueURL: getEnv("AWS_COMMENT_EVENTS_QUEUE_URL", ""),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate 設定値を検証
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("不明なDB_DRIVERです: %q", c.Database.Driver)
	}

	if c.Env != "local" && c.Env != "test" {
		if strings.HasPrefix(c.Auth.AccessTokenSecret, defaultSecret) ||
			strings.HasPrefix(c.Auth.RefreshTokenSecret, defaultSecret) {
			return errors.New("ACCESS_TOKEN_SECRET と REFRESH_TOKEN_SECRET を設定してください")
		}
	}

	return nil
}

// CloudinaryEnabled Cloudinaryの認証情報が揃っているか
func (c *Config) CloudinaryEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}

// getEnv 環境変数を取得、存在しない場合はデフォルト値を返す
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool 環境変数をboolとして取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList カンマ区切りの環境変数をスライスとして取得
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
