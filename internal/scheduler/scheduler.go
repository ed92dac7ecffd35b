// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go_5_srs_engine/internal/config"
	"go_5_srs_engine/internal/service"

	"github.com/go-co-op/gocron"
)

// Scheduler は定期ジョブを管理します。
// 行動分析は毎時、通知頻度の最適化は日次で実行します。
type Scheduler struct {
	scheduler    *gocron.Scheduler
	analyzer     service.AnalyzerService
	notification service.NotificationService
	logger       *slog.Logger
}

func New(cfg *config.Config, analyzer service.AnalyzerService, notification service.NotificationService, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	sched := &Scheduler{
		scheduler:    s,
		analyzer:     analyzer,
		notification: notification,
		logger:       logger,
	}

	s.Every(cfg.Scheduler.AnalyzeIntervalMinutes).Minutes().Do(sched.runAnalyze)
	s.Every(cfg.Scheduler.OptimizeIntervalHours).Hours().Do(sched.runOptimize)

	return sched
}

// Start はジョブの実行を非同期で開始します
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
	s.logger.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))
}

// Stop は全ジョブを停止します
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runAnalyze() {
	ctx := context.Background()
	s.logger.Info("Running periodic behavior analysis")

	if err := s.analyzer.AnalyzeAll(ctx); err != nil {
		s.logger.Error("Periodic behavior analysis failed", "error", err)
	}
}

func (s *Scheduler) runOptimize() {
	ctx := context.Background()
	s.logger.Info("Running periodic notification optimization")

	if err := s.notification.OptimizeAll(ctx); err != nil {
		s.logger.Error("Periodic notification optimization failed", "error", err)
	}
}
