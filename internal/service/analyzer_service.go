// internal/service/analyzer_service.go
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/config"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyzerService は完了セッションの履歴から学習者ごとの
// ActivityPattern を導出し、NotificationStrategy に書き込みます。
// Card や Session の状態には一切触れません。
type AnalyzerService interface {
	AnalyzeLearner(ctx context.Context, learnerID uuid.UUID) error
	AnalyzeAll(ctx context.Context) error
}

type analyzerService struct {
	db           *gorm.DB
	sessionRepo  repository.SessionRepository
	configRepo   repository.ConfigRepository
	strategyRepo repository.StrategyRepository
	locker       *LearnerLocker
	clock        clock.Clock
	cfg          *config.Config
}

func NewAnalyzerService(
	db *gorm.DB,
	sessionRepo repository.SessionRepository,
	configRepo repository.ConfigRepository,
	strategyRepo repository.StrategyRepository,
	locker *LearnerLocker,
	clk clock.Clock,
	cfg *config.Config,
) AnalyzerService {
	return &analyzerService{
		db:           db,
		sessionRepo:  sessionRepo,
		configRepo:   configRepo,
		strategyRepo: strategyRepo,
		locker:       locker,
		clock:        clk,
		cfg:          cfg,
	}
}

func (s *analyzerService) AnalyzeLearner(ctx context.Context, learnerID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	now := s.clock.Now()
	windowStart := now.AddDate(0, 0, -s.cfg.App.AnalyzerWindowDays)

	sessions, err := s.sessionRepo.FindCompletedSince(ctx, s.db, learnerID, windowStart)
	if err != nil {
		logger.Error("Failed to load completed sessions for analysis", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "セッション履歴の取得に失敗しました。", "", err)
	}

	// 既存の戦略があれば responseRate やメッセージ実績を引き継ぐ
	strategy, err := s.strategyRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to load notification strategy", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "通知戦略の取得に失敗しました。", "", err)
		}
		strategy = &model.NotificationStrategy{
			LearnerID:    learnerID,
			ResponseRate: 0.5,
			Frequency:    model.FrequencyMedium,
		}
	}

	if len(sessions) == 0 {
		// 履歴なし: UserConfig の希望時間帯にフォールバック
		cfg, err := s.configRepo.FindByLearner(ctx, s.db, learnerID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "学習者の設定が見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の取得に失敗しました。", "", err)
		}
		strategy.MostActiveHours = append([]int(nil), cfg.LearningHabits.PreferredHours...)
		strategy.SessionsPerDay = 0
	} else {
		strategy.MostActiveHours = topStartHours(sessions, s.cfg.App.MostActiveHoursCount)
		strategy.SessionsPerDay = sessionsPerDay(sessions, now)
		last := latestCompletion(sessions)
		strategy.LastEngagementTime = &last
	}

	// BestHours は活動実績に追従させる (将来、配信反応で分離更新する余地あり)
	strategy.BestHours = append([]int(nil), strategy.MostActiveHours...)

	s.locker.Lock(learnerID)
	defer s.locker.Unlock(learnerID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.strategyRepo.Upsert(ctx, tx, strategy)
	})
	if err != nil {
		logger.Error("Failed to upsert notification strategy", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "通知戦略の保存に失敗しました。", "", err)
	}

	logger.Debug("Learner analyzed",
		"most_active_hours", strategy.MostActiveHours,
		"sessions_per_day", strategy.SessionsPerDay,
	)
	return nil
}

// AnalyzeAll は分析ウィンドウ内に完了セッションを持つ全学習者を分析します
func (s *analyzerService) AnalyzeAll(ctx context.Context) error {
	logger := middleware.GetLogger(ctx)

	windowStart := s.clock.Now().AddDate(0, 0, -s.cfg.App.AnalyzerWindowDays)
	learnerIDs, err := s.sessionRepo.ListLearnersWithCompletedSince(ctx, s.db, windowStart)
	if err != nil {
		logger.Error("Failed to list learners for analysis", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "分析対象の取得に失敗しました。", "", err)
	}

	for _, id := range learnerIDs {
		if err := s.AnalyzeLearner(ctx, id); err != nil {
			// 1学習者の失敗で全体を止めない
			logger.Warn("Failed to analyze learner, continuing", "learner_id", id, "error", err)
		}
	}

	logger.Info("Behavior analysis finished", "learner_count", len(learnerIDs))
	return nil
}

// topStartHours は開始時刻の頻度上位 n 件の時間帯を返します。
// 頻度が同じ場合は時間帯の昇順で安定させます。
func topStartHours(sessions []*model.ReviewSession, n int) []int {
	counts := make(map[int]int)
	for _, sess := range sessions {
		counts[sess.StartedAt.Hour()]++
	}

	hours := make([]int, 0, len(counts))
	for h := range counts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})

	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

// sessionsPerDay は直近7日間の1日あたり完了セッション数を返します
func sessionsPerDay(sessions []*model.ReviewSession, now time.Time) float64 {
	weekAgo := now.AddDate(0, 0, -7)
	count := 0
	for _, sess := range sessions {
		if sess.CompletedAt != nil && sess.CompletedAt.After(weekAgo) {
			count++
		}
	}
	return float64(count) / 7.0
}

func latestCompletion(sessions []*model.ReviewSession) time.Time {
	var latest time.Time
	for _, sess := range sessions {
		if sess.CompletedAt != nil && sess.CompletedAt.After(latest) {
			latest = *sess.CompletedAt
		}
	}
	return latest
}
