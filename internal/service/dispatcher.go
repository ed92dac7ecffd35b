// internal/service/dispatcher.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/config"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"

	"github.com/google/uuid"
)

// Dispatcher は通知ディスパッチャの契約です。OSレベルの実際の配信は
// スコープ外で、schedule/cancel だけを提供します。
type Dispatcher interface {
	Schedule(ctx context.Context, id uuid.UUID, fireTime time.Time, payload model.NotificationPayload) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Sender は発火した通知を実際に届ける手段です
type Sender interface {
	Send(ctx context.Context, payload model.NotificationPayload) error
}

// --- LogSender ---
type LogSender struct{}

func (s *LogSender) Send(ctx context.Context, payload model.NotificationPayload) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Reminder (LogSender) ---",
		"learner_id", payload.LearnerID,
		"due_card_count", payload.DueCardCount,
		"message", payload.Message,
	)
	return nil
}

// --- TimerDispatcher ---

// TimerDispatcher は通知IDごとにタイマーを保持し、発火時刻に Sender へ
// 引き渡すインプロセス実装です。Cancel は未知のIDに対しては no-op。
type TimerDispatcher struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
	sender Sender
	clock  clock.Clock
}

func NewTimerDispatcher(sender Sender, clk clock.Clock) *TimerDispatcher {
	return &TimerDispatcher{
		timers: make(map[uuid.UUID]*time.Timer),
		sender: sender,
		clock:  clk,
	}
}

func (d *TimerDispatcher) Schedule(ctx context.Context, id uuid.UUID, fireTime time.Time, payload model.NotificationPayload) error {
	delay := fireTime.Sub(d.clock.Now())
	if delay < 0 {
		return fmt.Errorf("fire time %s is in the past", fireTime)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// 同じIDの再スケジュールは古いタイマーを置き換える
	if old, ok := d.timers[id]; ok {
		old.Stop()
	}

	d.timers[id] = time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.timers, id)
		d.mu.Unlock()

		// 発火時点のコンテキストはリクエストに紐付かない
		if err := d.sender.Send(context.Background(), payload); err != nil {
			slog.Error("Failed to deliver scheduled notification",
				"notification_id", id, "learner_id", payload.LearnerID, "error", err)
		}
	})
	return nil
}

func (d *TimerDispatcher) Cancel(ctx context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
	}
	return nil
}

// Pending は登録中のタイマー数を返します (テスト・デバッグ用)
func (d *TimerDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// --- NewSender ファクトリ関数 ---
func NewSender(cfg *config.Config, resolver EmailResolver) Sender {
	logger := slog.Default()
	switch cfg.Dispatcher.Type {
	case "ses":
		logger.Info("Initializing SES sender...")
		return NewSESSender(cfg, resolver)
	case "log":
		logger.Info("Initializing Log sender...")
		return &LogSender{}
	default:
		logger.Warn("Unknown dispatcher type, defaulting to LogSender", "type", cfg.Dispatcher.Type)
		return &LogSender{}
	}
}
