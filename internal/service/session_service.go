// internal/service/session_service.go
package service

import (
	"context"
	"errors"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/config"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"
	"go_5_srs_engine/internal/sm2"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// engagement の更新幅と初期値
const (
	engagementInitial      = 50
	engagementSuccessDelta = 5
	engagementFailureDelta = -10
)

type SessionService interface {
	StartSession(ctx context.Context, learnerID uuid.UUID, sessionType model.SessionType) (*model.ReviewSession, error)
	RecordResponse(ctx context.Context, learnerID, sessionID uuid.UUID, req *model.SubmitResponseRequest) (*model.ReviewSession, error)
	CompleteSession(ctx context.Context, learnerID, sessionID uuid.UUID) (*model.ReviewSession, error)
	GetSessionState(ctx context.Context, learnerID, sessionID uuid.UUID) (*model.SessionStateResponse, error)
}

type sessionService struct {
	db           *gorm.DB
	sessionRepo  repository.SessionRepository
	cardRepo     repository.CardRepository
	configRepo   repository.ConfigRepository
	locker       *LearnerLocker
	clock        clock.Clock
	events       EventSink
	cfg          *config.Config
	onCompletion func(learnerID uuid.UUID) // 完了後の通知再計画フック (nil可)
}

func NewSessionService(
	db *gorm.DB,
	sessionRepo repository.SessionRepository,
	cardRepo repository.CardRepository,
	configRepo repository.ConfigRepository,
	locker *LearnerLocker,
	clk clock.Clock,
	events EventSink,
	cfg *config.Config,
) *sessionService {
	return &sessionService{
		db:          db,
		sessionRepo: sessionRepo,
		cardRepo:    cardRepo,
		configRepo:  configRepo,
		locker:      locker,
		clock:       clk,
		events:      events,
		cfg:         cfg,
	}
}

// SetCompletionHook はセッション完了後に呼ぶフックを設定します。
// Notification Planner の再スケジュールに使います (ロック解放後に呼ばれる)。
func (s *sessionService) SetCompletionHook(hook func(learnerID uuid.UUID)) {
	s.onCompletion = hook
}

// StartSession は新しいセッションを開始します。
// アクティブセッションの存在チェックと作成は active_sessions への挿入で
// compare-and-set として実現し、学習者ロック下で行います。
func (s *sessionService) StartSession(ctx context.Context, learnerID uuid.UUID, sessionType model.SessionType) (*model.ReviewSession, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	s.locker.Lock(learnerID)
	defer s.locker.Unlock(learnerID)

	cfg, err := s.configRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "学習者の設定が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error finding user config", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の取得に失敗しました。", "", err)
	}

	maxCards, targetSec, ok := cfg.SessionLengthTier.Limits()
	if !ok {
		return nil, model.NewAppError("VALIDATION_ERROR", "セッション長の設定値が不正です。", "session_length_tier", model.ErrInvalidInput)
	}

	now := s.clock.Now()
	dueCards, err := s.cardRepo.FindDueByLearner(ctx, s.db, learnerID, now, s.cfg.App.ReviewLimit)
	if err != nil {
		logger.Error("Error finding due cards for session", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
	}
	if len(dueCards) == 0 {
		return nil, model.NewAppError("NOT_FOUND", "復習対象のカードがありません。", "", model.ErrNotFound)
	}

	// 緊急度順に並べてから上限で切り詰める
	sortDueCards(dueCards, now)
	if len(dueCards) > maxCards {
		dueCards = dueCards[:maxCards]
	}
	queue := make([]uuid.UUID, 0, len(dueCards))
	for _, c := range dueCards {
		queue = append(queue, c.CardID)
	}

	session := &model.ReviewSession{
		SessionID:         uuid.New(),
		LearnerID:         learnerID,
		SessionType:       sessionType,
		Status:            model.SessionStatusActive,
		StartedAt:         now,
		MaxCards:          maxCards,
		TargetDurationSec: targetSec,
		Queue:             queue,
		CurrentIndex:      0,
		EngagementLevel:   engagementInitial,
		Mood:              model.MoodNeutral,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// アクティブセッションのインデックスを先に挿入する。
		// 主キー重複 = 既にアクティブなセッションがある
		active := &model.ActiveSession{LearnerID: learnerID, SessionID: session.SessionID}
		if err := s.sessionRepo.CreateActive(ctx, tx, active); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("CONFLICT", "アクティブなセッションが既に存在します。", "", model.ErrConflict)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの開始に失敗しました。", "", err)
		}
		if err := s.sessionRepo.Create(ctx, tx, session); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの作成に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, "session_started", map[string]any{
		"session_id":   session.SessionID.String(),
		"session_type": string(sessionType),
		"queue_size":   len(queue),
	})
	logger.Info("Session started", "session_id", session.SessionID, "queue_size", len(queue))
	return session, nil
}

// RecordResponse は1回答を記録し、SM-2でカードを更新します。
// キュー先頭以外のカードへの回答は順序違反として拒否します。
func (s *sessionService) RecordResponse(ctx context.Context, learnerID, sessionID uuid.UUID, req *model.SubmitResponseRequest) (*model.ReviewSession, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID, "session_id", sessionID)

	assessment := model.Assessment(req.Assessment)
	quality, err := sm2.Quality(assessment)
	if err != nil {
		return nil, err
	}

	var completed bool
	var session *model.ReviewSession

	s.locker.Lock(learnerID)
	err = func() error {
		defer s.locker.Unlock(learnerID)

		session, err = s.sessionRepo.FindByID(ctx, s.db, sessionID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "セッションが見つかりません。", "session_id", model.ErrNotFound)
			}
			logger.Error("Error finding session", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの取得に失敗しました。", "", err)
		}
		if session.LearnerID != learnerID {
			return model.NewAppError("FORBIDDEN", "このセッションにはアクセスできません。", "", model.ErrForbidden)
		}
		if session.Status != model.SessionStatusActive {
			return model.NewAppError("NOT_FOUND", "セッションはアクティブではありません。", "session_id", model.ErrNotFound)
		}
		if session.CurrentCardID() != req.CardID {
			// 先回りや飛ばしは許可しない
			return model.NewAppError("CONFLICT", "このカードは現在の出題対象ではありません。", "card_id", model.ErrConflict)
		}

		card, err := s.cardRepo.FindByID(ctx, s.db, learnerID, req.CardID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "カードが見つかりません。", "card_id", model.ErrNotFound)
			}
			logger.Error("Error finding card", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの取得に失敗しました。", "", err)
		}

		now := s.clock.Now()

		// 監査用に更新前の値を控えてからSM-2を適用する
		response := &model.ReviewResponse{
			ResponseID:     uuid.New(),
			SessionID:      sessionID,
			CardID:         card.CardID,
			Assessment:     assessment,
			ResponseTimeMs: req.ResponseTimeMs,
			EaseBefore:     card.EaseFactor,
			IntervalBefore: card.IntervalDays,
			AnsweredAt:     now,
		}

		updated, err := sm2.Apply(*card, assessment, req.ResponseTimeMs, now)
		if err != nil {
			return err
		}

		applySessionMetrics(session, quality, assessment, req.ResponseTimeMs)
		session.CurrentIndex++

		// キュー消化または時間超過で自動完了する (呼び出し側の責務ではない)
		elapsed := now.Sub(session.StartedAt)
		limit := time.Duration(float64(session.TargetDurationSec)*s.cfg.App.SessionOverrunTolerance) * time.Second
		if session.Exhausted() || elapsed >= limit {
			s.finalize(session, now)
			completed = true
		}

		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.cardRepo.Update(ctx, tx, &updated); err != nil {
				logger.Error("Error updating card in transaction", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの更新に失敗しました。", "", err)
			}
			if err := s.sessionRepo.CreateResponse(ctx, tx, response); err != nil {
				logger.Error("Error recording response in transaction", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "回答の記録に失敗しました。", "", err)
			}
			if err := s.sessionRepo.Update(ctx, tx, session); err != nil {
				logger.Error("Error updating session in transaction", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの更新に失敗しました。", "", err)
			}
			if completed {
				if err := s.completeInTx(ctx, tx, session); err != nil {
					return err
				}
			}
			return nil
		})
	}()
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, "response_recorded", map[string]any{
		"session_id": sessionID.String(),
		"card_id":    req.CardID.String(),
		"assessment": req.Assessment,
	})

	if completed {
		logger.Info("Session auto-completed", "answered", session.CurrentIndex)
		s.notifyCompletion(learnerID)
	}

	return session, nil
}

// CompleteSession はセッションを完了させます。冪等で、完了済みの
// セッションに対する呼び出しはエラーではなく no-op です。
func (s *sessionService) CompleteSession(ctx context.Context, learnerID, sessionID uuid.UUID) (*model.ReviewSession, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID, "session_id", sessionID)

	var session *model.ReviewSession
	var alreadyDone bool

	s.locker.Lock(learnerID)
	err := func() error {
		defer s.locker.Unlock(learnerID)

		var err error
		session, err = s.sessionRepo.FindByID(ctx, s.db, sessionID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "セッションが見つかりません。", "session_id", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの取得に失敗しました。", "", err)
		}
		if session.LearnerID != learnerID {
			return model.NewAppError("FORBIDDEN", "このセッションにはアクセスできません。", "", model.ErrForbidden)
		}
		if session.Status == model.SessionStatusCompleted {
			alreadyDone = true
			return nil
		}

		s.finalize(session, s.clock.Now())

		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.sessionRepo.Update(ctx, tx, session); err != nil {
				logger.Error("Error updating session in transaction", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの更新に失敗しました。", "", err)
			}
			return s.completeInTx(ctx, tx, session)
		})
	}()
	if err != nil {
		return nil, err
	}

	if !alreadyDone {
		s.events.Publish(ctx, "session_completed", map[string]any{
			"session_id": sessionID.String(),
			"answered":   session.CurrentIndex,
			"accuracy":   session.AccuracyRate,
		})
		logger.Info("Session completed", "answered", session.CurrentIndex)
		s.notifyCompletion(learnerID)
	}
	return session, nil
}

func (s *sessionService) GetSessionState(ctx context.Context, learnerID, sessionID uuid.UUID) (*model.SessionStateResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "セッションが見つかりません。", "session_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの取得に失敗しました。", "", err)
	}
	if session.LearnerID != learnerID {
		return nil, model.NewAppError("FORBIDDEN", "このセッションにはアクセスできません。", "", model.ErrForbidden)
	}

	resp := &model.SessionStateResponse{
		SessionID:         session.SessionID,
		SessionType:       session.SessionType,
		Status:            session.Status,
		StartedAt:         session.StartedAt,
		CompletedAt:       session.CompletedAt,
		RemainingCards:    len(session.Queue) - session.CurrentIndex,
		TargetDurationSec: session.TargetDurationSec,
		CurrentStreak:     session.CurrentStreak,
		PerfectAnswers:    session.PerfectAnswers,
		AccuracyRate:      session.AccuracyRate,
		AvgResponseTimeMs: session.AvgResponseTimeMs,
		EngagementLevel:   session.EngagementLevel,
		Mood:              session.Mood,
	}
	if id := session.CurrentCardID(); id != uuid.Nil && session.Status == model.SessionStatusActive {
		resp.CurrentCardID = &id
	}
	return resp, nil
}

// --- 内部ヘルパー ---

// applySessionMetrics は1回答分のセッション内指標を更新します
func applySessionMetrics(session *model.ReviewSession, quality int, assessment model.Assessment, responseTimeMs int64) {
	success := quality >= sm2.PassThreshold

	if success {
		session.CurrentStreak++
		session.CorrectAnswers++
	} else {
		session.CurrentStreak = 0
	}
	if assessment == model.AssessmentEasy {
		session.PerfectAnswers++
	}

	answered := session.CurrentIndex + 1 // この回答を含む回答数
	session.AccuracyRate = float64(session.CorrectAnswers) / float64(answered)
	session.AvgResponseTimeMs += (responseTimeMs - session.AvgResponseTimeMs) / int64(answered)

	delta := engagementFailureDelta
	if success {
		delta = engagementSuccessDelta
	}
	session.EngagementLevel = clampEngagement(session.EngagementLevel + delta)
	session.Mood = deriveMood(session.CurrentStreak, session.EngagementLevel)
}

func clampEngagement(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// deriveMood は連続正解数とエンゲージメントから気分ラベルを導出します
func deriveMood(streak, engagement int) model.Mood {
	switch {
	case engagement < 30:
		return model.MoodStruggling
	case streak >= 3 && engagement >= 70:
		return model.MoodConfident
	case streak >= 5:
		return model.MoodFocused
	default:
		return model.MoodNeutral
	}
}

// finalize はセッションを完了状態に凍結します (永続化は呼び出し側)
func (s *sessionService) finalize(session *model.ReviewSession, now time.Time) {
	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &now
}

// completeInTx はアクティブインデックスの削除と学習習慣の更新を
// セッション完了と同一トランザクションで行います
func (s *sessionService) completeInTx(ctx context.Context, tx *gorm.DB, session *model.ReviewSession) error {
	if err := s.sessionRepo.DeleteActive(ctx, tx, session.LearnerID); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "アクティブセッションの解除に失敗しました。", "", err)
	}

	cfg, err := s.configRepo.FindByLearner(ctx, tx, session.LearnerID)
	if err != nil {
		// 設定が無くてもセッション完了自体は成立させる
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の取得に失敗しました。", "", err)
	}

	updateLearningHabits(&cfg.LearningHabits, session)
	if err := s.configRepo.Update(ctx, tx, cfg); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "学習習慣の更新に失敗しました。", "", err)
	}
	return nil
}

// updateLearningHabits は完了セッションから習慣サマリを更新します
func updateLearningHabits(habits *model.LearningHabits, session *model.ReviewSession) {
	completedAt := *session.CompletedAt
	today := completedAt.Truncate(24 * time.Hour)

	if habits.LastStudyDate != nil {
		last := habits.LastStudyDate.Truncate(24 * time.Hour)
		switch today.Sub(last) {
		case 0:
			// 同日2回目以降はストリーク変化なし
		case 24 * time.Hour:
			habits.CurrentStreakDays++
		default:
			habits.CurrentStreakDays = 1
		}
	} else {
		habits.CurrentStreakDays = 1
	}
	if habits.CurrentStreakDays > habits.LongestStreakDays {
		habits.LongestStreakDays = habits.CurrentStreakDays
	}

	durationSec := int(completedAt.Sub(session.StartedAt).Seconds())
	if habits.AvgSessionDurationSec == 0 {
		habits.AvgSessionDurationSec = durationSec
	} else {
		habits.AvgSessionDurationSec = (habits.AvgSessionDurationSec + durationSec) / 2
	}
	habits.LastStudyDate = &completedAt
}

// notifyCompletion はロック解放後に通知の再計画フックを同期的に呼びます
func (s *sessionService) notifyCompletion(learnerID uuid.UUID) {
	if s.onCompletion != nil {
		s.onCompletion(learnerID)
	}
}
