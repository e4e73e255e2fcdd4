package services

import (
	"context"
	"time"
)

// Pinger データベースの疎通確認
type Pinger func(ctx context.Context) error

// HealthStatus ヘルスチェックの結果
type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// HealthService ヘルスチェックに関するサービスインターフェース
type HealthService interface {
	GetStatus(ctx context.Context) HealthStatus
}

// healthService HealthServiceの実装
type healthService struct {
	startTime time.Time
	ping      Pinger
}

// NewHealthService HealthServiceを作成
func NewHealthService(ping Pinger) HealthService {
	return &healthService{
		startTime: time.Now(),
		ping:      ping,
	}
}

// GetStatus サービスのステータスを取得
func (s *healthService) GetStatus(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Database:  "ok",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if s.ping != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			status.Status = "degraded"
			status.Database = "unreachable"
		}
	}

	return status
}
