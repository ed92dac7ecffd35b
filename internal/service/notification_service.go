// internal/service/notification_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// responseRate の補正幅 (指数移動平均的な調整で、全面再計算はしない)
const (
	responseRateRewardDelta  = 0.1
	responseRatePenaltyDelta = 0.05
	// Optimize が頻度を変更する responseRate の閾値
	frequencyDowngradeBelow = 0.3
	frequencyUpgradeAbove   = 0.8
)

// 文体ごとのリマインダーメッセージ。%d には期限到来カード数が入る
var reminderMessages = map[model.MessageStyle]string{
	model.MessageStyleEncouraging: "今日も頑張りましょう！%d件の単語があなたを待っています。",
	model.MessageStyleNeutral:     "復習カードが%d件あります。",
	model.MessageStyleUrgent:      "%d件のカードが期限切れです。忘れる前に復習しましょう！",
}

// NotificationService は学習者ごとのリマインダー計画を担います。
// ActivityPattern (Behavior Analyzer の出力) と UserConfig、期限到来
// カード数から通知時刻を決め、ディスパッチャに登録します。
type NotificationService interface {
	ScheduleReminders(ctx context.Context, learnerID uuid.UUID) (int, error)
	RecordDelivery(ctx context.Context, learnerID, notificationID uuid.UUID, responded bool) error
	Optimize(ctx context.Context, learnerID uuid.UUID) error
	OptimizeAll(ctx context.Context) error
}

type notificationService struct {
	db               *gorm.DB
	cardRepo         repository.CardRepository
	configRepo       repository.ConfigRepository
	strategyRepo     repository.StrategyRepository
	notificationRepo repository.NotificationRepository
	dispatcher       Dispatcher
	locker           *LearnerLocker
	clock            clock.Clock
	events           EventSink
}

func NewNotificationService(
	db *gorm.DB,
	cardRepo repository.CardRepository,
	configRepo repository.ConfigRepository,
	strategyRepo repository.StrategyRepository,
	notificationRepo repository.NotificationRepository,
	dispatcher Dispatcher,
	locker *LearnerLocker,
	clk clock.Clock,
	events EventSink,
) NotificationService {
	return &notificationService{
		db:               db,
		cardRepo:         cardRepo,
		configRepo:       configRepo,
		strategyRepo:     strategyRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
		locker:           locker,
		clock:            clk,
		events:           events,
	}
}

// ScheduleReminders は既存の通知を取り消してから再計画します。
// 通知が無効、または期限到来カードが0件の場合は何も登録しません。
// ディスパッチ失敗は致命的ではなく、残りの候補時刻で続行します。
func (s *notificationService) ScheduleReminders(ctx context.Context, learnerID uuid.UUID) (int, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	cfg, err := s.configRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, model.NewAppError("NOT_FOUND", "学習者の設定が見つかりません。", "", model.ErrNotFound)
		}
		return 0, model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の取得に失敗しました。", "", err)
	}

	// 再計画の前に、追跡中の通知は常に一括キャンセルする
	if err := s.cancelTracked(ctx, learnerID); err != nil {
		return 0, err
	}

	if !cfg.NotificationsEnabled {
		logger.Debug("Notifications disabled, nothing scheduled")
		return 0, nil
	}

	dueCount, err := s.cardRepo.CountDueByLearner(ctx, s.db, learnerID, s.clock.Now())
	if err != nil {
		return 0, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カード数の取得に失敗しました。", "", err)
	}
	if dueCount == 0 {
		logger.Debug("No due cards, nothing scheduled")
		return 0, nil
	}

	strategy, err := s.strategyRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return 0, model.NewAppError("INTERNAL_SERVER_ERROR", "通知戦略の取得に失敗しました。", "", err)
		}
		// 戦略未生成の学習者は設定値のみで計画する
		strategy = &model.NotificationStrategy{LearnerID: learnerID, Frequency: cfg.FrequencyTier}
	}

	hours := candidateHours(cfg, strategy)
	if len(hours) == 0 {
		logger.Debug("All candidate hours fall into quiet hours")
		return 0, nil
	}

	style := strategy.BestMessageStyle(cfg.MessageStyle)
	message := fmt.Sprintf(reminderMessages[style], dueCount)
	now := s.clock.Now()

	scheduled := 0
	for _, hour := range hours {
		fireTime := nextOccurrence(now, hour)

		notification := &model.ScheduledNotification{
			NotificationID: uuid.New(),
			LearnerID:      learnerID,
			FireTime:       fireTime,
			Message:        message,
			MessageStyle:   style,
			DueCardCount:   int(dueCount),
		}
		payload := model.NotificationPayload{
			LearnerID:    learnerID,
			DueCardCount: int(dueCount),
			Message:      message,
		}

		// ディスパッチ失敗はイベントシンクに記録して次の候補へ。
		// 既に確定したカード・セッションの変更を巻き戻すことはない
		if err := s.dispatcher.Schedule(ctx, notification.NotificationID, fireTime, payload); err != nil {
			logger.Warn("Failed to schedule notification, skipping", "fire_time", fireTime, "error", err)
			s.events.Publish(ctx, "notification_schedule_failed", map[string]any{
				"learner_id": learnerID.String(),
				"fire_time":  fireTime.String(),
			})
			continue
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.notificationRepo.Create(ctx, tx, notification)
		})
		if err != nil {
			// 追跡できない通知は残さない
			s.dispatcher.Cancel(ctx, notification.NotificationID)
			return scheduled, model.NewAppError("INTERNAL_SERVER_ERROR", "通知の記録に失敗しました。", "", err)
		}
		scheduled++
	}

	logger.Info("Reminders scheduled", "count", scheduled, "due_card_count", dueCount, "style", style)
	return scheduled, nil
}

// RecordDelivery は配信済み通知への反応を responseRate と文体実績に反映します
func (s *notificationService) RecordDelivery(ctx context.Context, learnerID, notificationID uuid.UUID, responded bool) error {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID, "notification_id", notificationID)

	notification, err := s.notificationRepo.FindByID(ctx, s.db, notificationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "通知が見つかりません。", "notification_id", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "通知の取得に失敗しました。", "", err)
	}
	if notification.LearnerID != learnerID {
		return model.NewAppError("FORBIDDEN", "この通知にはアクセスできません。", "", model.ErrForbidden)
	}

	s.locker.Lock(learnerID)
	defer s.locker.Unlock(learnerID)

	strategy, err := s.strategyRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "通知戦略の取得に失敗しました。", "", err)
		}
		strategy = &model.NotificationStrategy{LearnerID: learnerID, ResponseRate: 0.5, Frequency: model.FrequencyMedium}
	}

	if responded {
		strategy.ResponseRate += responseRateRewardDelta
		if strategy.ResponseRate > 1.0 {
			strategy.ResponseRate = 1.0
		}
	} else {
		strategy.ResponseRate -= responseRatePenaltyDelta
		if strategy.ResponseRate < 0.0 {
			strategy.ResponseRate = 0.0
		}
	}

	if strategy.MessageStats == nil {
		strategy.MessageStats = make(map[model.MessageStyle]model.MessageStat)
	}
	stat := strategy.MessageStats[notification.MessageStyle]
	stat.Sent++
	if responded {
		stat.Responded++
	}
	strategy.MessageStats[notification.MessageStyle] = stat

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.strategyRepo.Upsert(ctx, tx, strategy); err != nil {
			return err
		}
		// 配信済みの通知は追跡対象から外す
		return s.notificationRepo.Delete(ctx, tx, notificationID)
	})
	if err != nil {
		logger.Error("Failed to record delivery", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "配信結果の記録に失敗しました。", "", err)
	}

	logger.Info("Delivery recorded", "responded", responded, "response_rate", strategy.ResponseRate)
	return nil
}

// Optimize は responseRate に応じて通知頻度を1段階調整し、再計画します
func (s *notificationService) Optimize(ctx context.Context, learnerID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	strategy, err := s.strategyRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// 戦略が無ければ調整対象もない
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "通知戦略の取得に失敗しました。", "", err)
	}

	before := strategy.Frequency
	switch {
	case strategy.ResponseRate < frequencyDowngradeBelow:
		strategy.Frequency = strategy.Frequency.Downgrade()
	case strategy.ResponseRate > frequencyUpgradeAbove:
		strategy.Frequency = strategy.Frequency.Upgrade()
	}

	if strategy.Frequency != before {
		s.locker.Lock(learnerID)
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.strategyRepo.Upsert(ctx, tx, strategy)
		})
		s.locker.Unlock(learnerID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "通知戦略の保存に失敗しました。", "", err)
		}
		logger.Info("Notification frequency adjusted", "from", before, "to", strategy.Frequency,
			"response_rate", strategy.ResponseRate)
	}

	_, err = s.ScheduleReminders(ctx, learnerID)
	return err
}

// OptimizeAll は戦略を持つ全学習者の頻度を調整します (日次ジョブ用)
func (s *notificationService) OptimizeAll(ctx context.Context) error {
	logger := middleware.GetLogger(ctx)

	learnerIDs, err := s.strategyRepo.ListLearnerIDs(ctx, s.db)
	if err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "最適化対象の取得に失敗しました。", "", err)
	}

	for _, id := range learnerIDs {
		if err := s.Optimize(ctx, id); err != nil {
			logger.Warn("Failed to optimize learner notifications, continuing", "learner_id", id, "error", err)
		}
	}

	logger.Info("Notification optimization finished", "learner_count", len(learnerIDs))
	return nil
}

// --- 内部ヘルパー ---

// cancelTracked は追跡中の通知をディスパッチャと追跡テーブルの両方から外します
func (s *notificationService) cancelTracked(ctx context.Context, learnerID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	tracked, err := s.notificationRepo.ListByLearner(ctx, s.db, learnerID)
	if err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "既存通知の取得に失敗しました。", "", err)
	}
	for _, n := range tracked {
		if err := s.dispatcher.Cancel(ctx, n.NotificationID); err != nil {
			// キャンセル失敗は記録するだけで続行する
			logger.Warn("Failed to cancel notification", "notification_id", n.NotificationID, "error", err)
		}
	}
	if len(tracked) == 0 {
		return nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.notificationRepo.DeleteByLearner(ctx, tx, learnerID)
	})
	if err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "既存通知の削除に失敗しました。", "", err)
	}
	return nil
}

// candidateHours は 希望時間帯 ∪ bestHours から静音時間帯を除き、
// 頻度ティアの件数まで切り詰めた時刻リストを返します
func candidateHours(cfg *model.UserConfig, strategy *model.NotificationStrategy) []int {
	seen := make(map[int]bool)
	var hours []int
	for _, h := range cfg.LearningHabits.PreferredHours {
		if h < 0 || h > 23 || seen[h] {
			continue
		}
		seen[h] = true
		hours = append(hours, h)
	}
	for _, h := range strategy.BestHours {
		if h < 0 || h > 23 || seen[h] {
			continue
		}
		seen[h] = true
		hours = append(hours, h)
	}

	filtered := hours[:0]
	for _, h := range hours {
		if !isQuietHour(h, cfg.QuietHoursStart, cfg.QuietHoursEnd) {
			filtered = append(filtered, h)
		}
	}
	sort.Ints(filtered)

	tier := strategy.Frequency
	if tier == "" {
		tier = cfg.FrequencyTier
	}
	if limit := tier.NotificationsPerDay(); len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// isQuietHour は時間帯 h が静音時間に含まれるかを判定します。
// start <= end なら start <= h <= end、start > end なら日付をまたぐ
// 範囲として h >= start または h <= end で判定します。
func isQuietHour(h, start, end int) bool {
	if start <= end {
		return h >= start && h <= end
	}
	return h >= start || h <= end
}

// nextOccurrence は now 以降で最初に hour:00 になる時刻を返します
func nextOccurrence(now time.Time, hour int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
