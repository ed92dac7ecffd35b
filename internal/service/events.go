// internal/service/events.go
package service

import (
	"context"

	"go_5_srs_engine/internal/middleware"
)

// EventSink はテレメトリイベントの送信先です。fire-and-forget で、
// 送信失敗がスケジューリングの正しさに影響することはありません。
type EventSink interface {
	Publish(ctx context.Context, name string, props map[string]any)
}

// LogSink はイベントをDebugログに書くだけの実装です
type LogSink struct{}

func NewLogSink() EventSink {
	return &LogSink{}
}

func (s *LogSink) Publish(ctx context.Context, name string, props map[string]any) {
	logger := middleware.GetLogger(ctx)
	logger.Debug("event", "name", name, "props", props)
}
