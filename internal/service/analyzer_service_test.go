// internal/service/analyzer_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAnalyzerService(db *gorm.DB, clk clock.Clock) AnalyzerService {
	return NewAnalyzerService(
		db,
		repository.NewGormSessionRepository(),
		repository.NewGormConfigRepository(),
		repository.NewGormStrategyRepository(),
		NewLearnerLocker(),
		clk,
		testAppConfig(),
	)
}

// createCompletedSession は指定時刻に開始・完了したセッションを作成します
func createCompletedSession(t *testing.T, db *gorm.DB, learnerID uuid.UUID, startedAt time.Time) *model.ReviewSession {
	t.Helper()
	completedAt := startedAt.Add(2 * time.Minute)
	session := &model.ReviewSession{
		SessionID:         uuid.New(),
		LearnerID:         learnerID,
		SessionType:       model.SessionTypeManual,
		Status:            model.SessionStatusCompleted,
		StartedAt:         startedAt,
		CompletedAt:       &completedAt,
		MaxCards:          5,
		TargetDurationSec: 60,
		Queue:             []uuid.UUID{uuid.New()},
		CurrentIndex:      1,
		EngagementLevel:   55,
		Mood:              model.MoodNeutral,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func Test_analyzerService_AnalyzeLearner(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("正常系: 開始時刻の頻度上位が MostActiveHours になる", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestAnalyzerService(db, clk)
		learner := createTestLearner(t, db, model.SessionLengthShort)

		// 9時台×3、21時台×2、7時台×1、14時台×1 (上位3件は 9, 21, 7)
		base := now.AddDate(0, 0, -3)
		for i := 0; i < 3; i++ {
			createCompletedSession(t, db, learner.LearnerID, base.Add(time.Duration(i)*24*time.Hour).Truncate(24*time.Hour).Add(9*time.Hour))
		}
		for i := 0; i < 2; i++ {
			createCompletedSession(t, db, learner.LearnerID, base.Add(time.Duration(i)*24*time.Hour).Truncate(24*time.Hour).Add(21*time.Hour))
		}
		createCompletedSession(t, db, learner.LearnerID, base.Truncate(24*time.Hour).Add(7*time.Hour))
		createCompletedSession(t, db, learner.LearnerID, base.Truncate(24*time.Hour).Add(14*time.Hour))

		require.NoError(t, svc.AnalyzeLearner(ctx, learner.LearnerID))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learner.LearnerID).First(&strategy).Error)
		assert.Equal(t, []int{9, 21, 7}, strategy.MostActiveHours)
		assert.Equal(t, strategy.MostActiveHours, strategy.BestHours)
		assert.InDelta(t, 0.5, strategy.ResponseRate, 0.001, "initial response rate")
		require.NotNil(t, strategy.LastEngagementTime)
	})

	t.Run("正常系: SessionsPerDay は直近7日間の完了数から算出される", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestAnalyzerService(db, clk)
		learner := createTestLearner(t, db, model.SessionLengthShort)

		// 直近7日間に7件、ウィンドウ内だが7日より前に3件
		for i := 0; i < 7; i++ {
			createCompletedSession(t, db, learner.LearnerID, now.AddDate(0, 0, -i).Add(-3*time.Hour))
		}
		for i := 0; i < 3; i++ {
			createCompletedSession(t, db, learner.LearnerID, now.AddDate(0, 0, -9-i))
		}

		require.NoError(t, svc.AnalyzeLearner(ctx, learner.LearnerID))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learner.LearnerID).First(&strategy).Error)
		assert.InDelta(t, 1.0, strategy.SessionsPerDay, 0.001)
	})

	t.Run("正常系: 履歴がない場合は設定の希望時間帯にフォールバックする", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestAnalyzerService(db, clk)
		learner := createTestLearner(t, db, model.SessionLengthShort)
		learner.LearningHabits.PreferredHours = []int{8, 20}
		require.NoError(t, db.Save(learner).Error)

		require.NoError(t, svc.AnalyzeLearner(ctx, learner.LearnerID))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learner.LearnerID).First(&strategy).Error)
		assert.Equal(t, []int{8, 20}, strategy.MostActiveHours)
		assert.InDelta(t, 0.0, strategy.SessionsPerDay, 0.001)
		assert.Nil(t, strategy.LastEngagementTime)
	})

	t.Run("正常系: 再分析は既存戦略の配信実績を保持する", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestAnalyzerService(db, clk)
		learner := createTestLearner(t, db, model.SessionLengthShort)
		createCompletedSession(t, db, learner.LearnerID, now.Add(-2*time.Hour))

		existing := &model.NotificationStrategy{
			LearnerID:    learner.LearnerID,
			ResponseRate: 0.8,
			Frequency:    model.FrequencyHigh,
			MessageStats: map[model.MessageStyle]model.MessageStat{
				model.MessageStyleEncouraging: {Sent: 10, Responded: 8},
			},
		}
		require.NoError(t, db.Create(existing).Error)

		require.NoError(t, svc.AnalyzeLearner(ctx, learner.LearnerID))

		var strategy model.NotificationStrategy
		require.NoError(t, db.Where("learner_id = ?", learner.LearnerID).First(&strategy).Error)
		assert.InDelta(t, 0.8, strategy.ResponseRate, 0.001)
		assert.Equal(t, model.FrequencyHigh, strategy.Frequency)
		assert.Equal(t, 10, strategy.MessageStats[model.MessageStyleEncouraging].Sent)
		assert.Equal(t, []int{10}, strategy.MostActiveHours)
	})

	t.Run("異常系: 履歴も設定もない学習者は ErrNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		clk := &clock.Fixed{T: now}
		svc := newTestAnalyzerService(db, clk)

		err := svc.AnalyzeLearner(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_analyzerService_AnalyzeAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	db := setupTestDB(t)
	clk := &clock.Fixed{T: now}
	svc := newTestAnalyzerService(db, clk)

	learnerA := createTestLearner(t, db, model.SessionLengthShort)
	learnerB := createTestLearner(t, db, model.SessionLengthShort)
	createCompletedSession(t, db, learnerA.LearnerID, now.Add(-2*time.Hour))
	createCompletedSession(t, db, learnerB.LearnerID, now.Add(-5*time.Hour))
	// ウィンドウ外の学習者は対象にならない
	learnerC := createTestLearner(t, db, model.SessionLengthShort)
	createCompletedSession(t, db, learnerC.LearnerID, now.AddDate(0, 0, -30))

	require.NoError(t, svc.AnalyzeAll(ctx))

	var count int64
	require.NoError(t, db.Model(&model.NotificationStrategy{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
