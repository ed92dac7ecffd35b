// internal/service/notification_service_test.go
package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"
	"go_5_srs_engine/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestNotificationService(db *gorm.DB, clk clock.Clock, dispatcher Dispatcher) NotificationService {
	return NewNotificationService(
		db,
		repository.NewGormCardRepository(),
		repository.NewGormConfigRepository(),
		repository.NewGormStrategyRepository(),
		repository.NewGormNotificationRepository(),
		dispatcher,
		NewLearnerLocker(),
		clk,
		NewLogSink(),
	)
}

func Test_notificationService_ScheduleReminders(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("正常系: 静音時間帯を除外し頻度ティアの件数まで計画する", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		learner := createTestLearner(t, db, model.SessionLengthShort) // quiet 22-7, medium
		learner.LearningHabits.PreferredHours = []int{8, 23}
		require.NoError(t, db.Save(learner).Error)
		createDueCard(t, db, learner.LearnerID, now, 2, 2.5)

		strategy := &model.NotificationStrategy{
			LearnerID: learner.LearnerID,
			BestHours: []int{9, 20, 6, 15},
			Frequency: model.FrequencyMedium,
		}
		require.NoError(t, db.Create(strategy).Error)

		var fireHours []int
		mockDispatcher.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				fireHours = append(fireHours, args.Get(2).(time.Time).Hour())
			}).
			Return(nil).Times(3)

		scheduled, err := svc.ScheduleReminders(ctx, learner.LearnerID)
		require.NoError(t, err)
		assert.Equal(t, 3, scheduled)

		// 候補 8∪{9,20,6,15} から静音帯の 23,6 を除き、昇順3件 = 8,9,15
		sort.Ints(fireHours)
		assert.Equal(t, []int{8, 9, 15}, fireHours)

		var tracked []model.ScheduledNotification
		require.NoError(t, db.Where("learner_id = ?", learner.LearnerID).Find(&tracked).Error)
		require.Len(t, tracked, 3)
		assert.Equal(t, 1, tracked[0].DueCardCount)
		assert.Equal(t, model.MessageStyleEncouraging, tracked[0].MessageStyle)
		assert.Contains(t, tracked[0].Message, "1件")
	})

	t.Run("正常系: 過去の時刻は翌日に繰り越される", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now} // 12:00
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.LearningHabits.PreferredHours = []int{9}
		require.NoError(t, db.Save(learner).Error)
		createDueCard(t, db, learner.LearnerID, now, 1, 2.5)

		var fireTime time.Time
		mockDispatcher.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { fireTime = args.Get(2).(time.Time) }).
			Return(nil).Once()

		scheduled, err := svc.ScheduleReminders(ctx, learner.LearnerID)
		require.NoError(t, err)
		assert.Equal(t, 1, scheduled)
		assert.Equal(t, now.AddDate(0, 0, 1).Truncate(24*time.Hour).Add(9*time.Hour), fireTime)
	})

	t.Run("正常系: 通知が無効なら何も計画しない", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.NotificationsEnabled = false
		require.NoError(t, db.Save(learner).Error)
		createDueCard(t, db, learner.LearnerID, now, 1, 2.5)

		scheduled, err := svc.ScheduleReminders(ctx, learner.LearnerID)
		require.NoError(t, err)
		assert.Equal(t, 0, scheduled)
		mockDispatcher.AssertNotCalled(t, "Schedule")
	})

	t.Run("正常系: 期限到来カードが0件なら何も計画しない", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.LearningHabits.PreferredHours = []int{9}
		require.NoError(t, db.Save(learner).Error)

		scheduled, err := svc.ScheduleReminders(ctx, learner.LearnerID)
		require.NoError(t, err)
		assert.Equal(t, 0, scheduled)
		mockDispatcher.AssertNotCalled(t, "Schedule")
	})

	t.Run("正常系: ディスパッチ失敗は記録して残りの候補で続行する", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.LearningHabits.PreferredHours = []int{8, 9, 15}
		require.NoError(t, db.Save(learner).Error)
		createDueCard(t, db, learner.LearnerID, now, 1, 2.5)

		mockDispatcher.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("dispatcher unavailable")).Once()
		mockDispatcher.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Times(2)

		scheduled, err := svc.ScheduleReminders(ctx, learner.LearnerID)
		require.NoError(t, err, "dispatch failure is not fatal")
		assert.Equal(t, 2, scheduled)

		var count int64
		require.NoError(t, db.Model(&model.ScheduledNotification{}).Where("learner_id = ?", learner.LearnerID).Count(&count).Error)
		assert.EqualValues(t, 2, count, "failed candidate is not tracked")
	})

	t.Run("正常系: 再計画は既存の追跡中通知を取り消す", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.LearningHabits.PreferredHours = []int{9}
		require.NoError(t, db.Save(learner).Error)
		createDueCard(t, db, learner.LearnerID, now, 1, 2.5)

		stale := &model.ScheduledNotification{
			NotificationID: uuid.New(),
			LearnerID:      learner.LearnerID,
			FireTime:       now.Add(2 * time.Hour),
			Message:        "復習カードが3件あります。",
			MessageStyle:   model.MessageStyleNeutral,
			DueCardCount:   3,
		}
		require.NoError(t, db.Create(stale).Error)

		mockDispatcher.On("Cancel", mock.Anything, stale.NotificationID).Return(nil).Once()
		mockDispatcher.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		scheduled, err := svc.ScheduleReminders(ctx, learner.LearnerID)
		require.NoError(t, err)
		assert.Equal(t, 1, scheduled)

		var staleCount int64
		require.NoError(t, db.Model(&model.ScheduledNotification{}).
			Where("notification_id = ?", stale.NotificationID).Count(&staleCount).Error)
		assert.EqualValues(t, 0, staleCount)
	})

	t.Run("異常系: 未登録の学習者は ErrNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		mockDispatcher := mocks.NewMockDispatcher(t)
		svc := newTestNotificationService(db, clk, mockDispatcher)

		_, err := svc.ScheduleReminders(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_notificationService_RecordDelivery(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	createTrackedNotification := func(t *testing.T, db *gorm.DB, learnerID uuid.UUID, style model.MessageStyle) *model.ScheduledNotification {
		t.Helper()
		n := &model.ScheduledNotification{
			NotificationID: uuid.New(),
			LearnerID:      learnerID,
			FireTime:       now.Add(-1 * time.Hour),
			Message:        "復習カードが2件あります。",
			MessageStyle:   style,
			DueCardCount:   2,
		}
		require.NoError(t, db.Create(n).Error)
		return n
	}

	t.Run("正常系: 反応ありで responseRate と文体実績が更新される", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

		learnerID := uuid.New()
		notification := createTrackedNotification(t, db, learnerID, model.MessageStyleUrgent)
		require.NoError(t, db.Create(&model.NotificationStrategy{
			LearnerID:    learnerID,
			ResponseRate: 0.5,
			Frequency:    model.FrequencyMedium,
		}).Error)

		require.NoError(t, svc.RecordDelivery(ctx, learnerID, notification.NotificationID, true))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learnerID).First(&strategy).Error)
		assert.InDelta(t, 0.6, strategy.ResponseRate, 0.001)
		assert.Equal(t, 1, strategy.MessageStats[model.MessageStyleUrgent].Sent)
		assert.Equal(t, 1, strategy.MessageStats[model.MessageStyleUrgent].Responded)

		// 配信済み通知は追跡から消える
		var count int64
		require.NoError(t, db.Model(&model.ScheduledNotification{}).
			Where("notification_id = ?", notification.NotificationID).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})

	t.Run("正常系: responseRate は [0.0, 1.0] にクランプされる", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

		learnerID := uuid.New()
		require.NoError(t, db.Create(&model.NotificationStrategy{
			LearnerID:    learnerID,
			ResponseRate: 0.95,
			Frequency:    model.FrequencyMedium,
		}).Error)

		first := createTrackedNotification(t, db, learnerID, model.MessageStyleNeutral)
		require.NoError(t, svc.RecordDelivery(ctx, learnerID, first.NotificationID, true))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learnerID).First(&strategy).Error)
		assert.InDelta(t, 1.0, strategy.ResponseRate, 0.001, "capped at 1.0")

		// 下限 0.0 も確認する
		strategy.ResponseRate = 0.02
		require.NoError(t, db.Save(&strategy).Error)
		second := createTrackedNotification(t, db, learnerID, model.MessageStyleNeutral)
		require.NoError(t, svc.RecordDelivery(ctx, learnerID, second.NotificationID, false))

		require.NoError(t, db.Where("learner_id = ?", learnerID).First(&strategy).Error)
		assert.InDelta(t, 0.0, strategy.ResponseRate, 0.001, "floored at 0.0")
		assert.Equal(t, 2, strategy.MessageStats[model.MessageStyleNeutral].Sent)
		assert.Equal(t, 1, strategy.MessageStats[model.MessageStyleNeutral].Responded)
	})

	t.Run("正常系: 戦略が未生成でも初期値から反映される", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

		learnerID := uuid.New()
		notification := createTrackedNotification(t, db, learnerID, model.MessageStyleEncouraging)

		require.NoError(t, svc.RecordDelivery(ctx, learnerID, notification.NotificationID, false))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learnerID).First(&strategy).Error)
		assert.InDelta(t, 0.45, strategy.ResponseRate, 0.001)
	})

	t.Run("異常系: 他学習者の通知は ErrForbidden", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

		notification := createTrackedNotification(t, db, uuid.New(), model.MessageStyleNeutral)
		err := svc.RecordDelivery(ctx, uuid.New(), notification.NotificationID, true)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("異常系: 存在しない通知は ErrNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

		err := svc.RecordDelivery(ctx, uuid.New(), uuid.New(), true)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_notificationService_Optimize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	// 再計画が何も登録しないよう、通知を無効にした学習者を使う
	createDisabledLearner := func(t *testing.T, db *gorm.DB) *model.UserConfig {
		t.Helper()
		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.NotificationsEnabled = false
		require.NoError(t, db.Save(learner).Error)
		return learner
	}

	tests := []struct {
		name         string
		responseRate float64
		frequency    model.FrequencyTier
		want         model.FrequencyTier
	}{
		{"正常系: 反応率が低いと頻度を1段階下げる", 0.2, model.FrequencyMedium, model.FrequencyLow},
		{"正常系: 反応率が高いと頻度を1段階上げる", 0.9, model.FrequencyMedium, model.FrequencyHigh},
		{"正常系: 中間の反応率では頻度を変えない", 0.5, model.FrequencyMedium, model.FrequencyMedium},
		{"正常系: low が下限", 0.1, model.FrequencyLow, model.FrequencyLow},
		{"正常系: high が上限", 0.95, model.FrequencyHigh, model.FrequencyHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			clk := &clock.Fixed{T: now}
			svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))
			learner := createDisabledLearner(t, db)

			require.NoError(t, db.Create(&model.NotificationStrategy{
				LearnerID:    learner.LearnerID,
				ResponseRate: tt.responseRate,
				Frequency:    tt.frequency,
			}).Error)

			require.NoError(t, svc.Optimize(ctx, learner.LearnerID))

			var strategy model.NotificationStrategy
			require.NoError(t, db.Where("learner_id = ?", learner.LearnerID).First(&strategy).Error)
			assert.Equal(t, tt.want, strategy.Frequency)
		})
	}

	t.Run("正常系: 戦略を持たない学習者は no-op", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

		assert.NoError(t, svc.Optimize(ctx, uuid.New()))
	})
}

func Test_notificationService_OptimizeAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	db := setupTestDB(t)
	clk := &clock.Fixed{T: now}
	svc := newTestNotificationService(db, clk, mocks.NewMockDispatcher(t))

	learnerA := createTestLearner(t, db, model.SessionLengthShort)
	learnerA.NotificationsEnabled = false
	require.NoError(t, db.Save(learnerA).Error)
	learnerB := createTestLearner(t, db, model.SessionLengthShort)
	learnerB.NotificationsEnabled = false
	require.NoError(t, db.Save(learnerB).Error)

	require.NoError(t, db.Create(&model.NotificationStrategy{
		LearnerID: learnerA.LearnerID, ResponseRate: 0.2, Frequency: model.FrequencyHigh,
	}).Error)
	require.NoError(t, db.Create(&model.NotificationStrategy{
		LearnerID: learnerB.LearnerID, ResponseRate: 0.9, Frequency: model.FrequencyLow,
	}).Error)

	require.NoError(t, svc.OptimizeAll(ctx))

	var a, b model.NotificationStrategy
	require.NoError(t, db.Where("learner_id = ?", learnerA.LearnerID).First(&a).Error)
	require.NoError(t, db.Where("learner_id = ?", learnerB.LearnerID).First(&b).Error)
	assert.Equal(t, model.FrequencyMedium, a.Frequency)
	assert.Equal(t, model.FrequencyMedium, b.Frequency)
}
