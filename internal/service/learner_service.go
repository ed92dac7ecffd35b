// internal/service/learner_service.go
package service

import (
	"context"
	"errors"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearnerService は学習者の登録と設定管理を担います
type LearnerService interface {
	RegisterLearner(ctx context.Context, req *model.RegisterLearnerRequest) (*model.UserConfig, error)
	GetConfig(ctx context.Context, learnerID uuid.UUID) (*model.UserConfig, error)
	UpdateConfig(ctx context.Context, learnerID uuid.UUID, req *model.PatchUserConfigRequest) (*model.UserConfig, error)
	Exists(ctx context.Context, learnerID uuid.UUID) (bool, error)
}

type learnerService struct {
	db           *gorm.DB
	configRepo   repository.ConfigRepository
	notification NotificationService
	locker       *LearnerLocker
	clock        clock.Clock
	events       EventSink
}

func NewLearnerService(
	db *gorm.DB,
	configRepo repository.ConfigRepository,
	notification NotificationService,
	locker *LearnerLocker,
	clk clock.Clock,
	events EventSink,
) LearnerService {
	return &learnerService{
		db:           db,
		configRepo:   configRepo,
		notification: notification,
		locker:       locker,
		clock:        clk,
		events:       events,
	}
}

// RegisterLearner は学習者をデフォルト設定で登録します
func (s *learnerService) RegisterLearner(ctx context.Context, req *model.RegisterLearnerRequest) (*model.UserConfig, error) {
	logger := middleware.GetLogger(ctx)

	cfg := &model.UserConfig{
		LearnerID:            uuid.New(),
		Name:                 req.Name,
		Email:                req.Email,
		NotificationsEnabled: true,
		QuietHoursStart:      22,
		QuietHoursEnd:        7,
		FrequencyTier:        model.FrequencyMedium,
		MessageStyle:         model.MessageStyleEncouraging,
		SessionLengthTier:    model.SessionLengthMedium,
		Pacing:               "normal",
		AdaptiveDifficulty:   true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.configRepo.Create(ctx, tx, cfg)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Email already registered", "email", req.Email)
			return nil, model.NewAppError("CONFLICT", "このメールアドレスは既に登録されています。", "email", model.ErrConflict)
		}
		logger.Error("Failed to register learner", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習者の登録に失敗しました。", "", err)
	}

	s.events.Publish(ctx, "learner_registered", map[string]any{
		"learner_id": cfg.LearnerID.String(),
	})
	logger.Info("Learner registered", "learner_id", cfg.LearnerID)
	return cfg, nil
}

func (s *learnerService) GetConfig(ctx context.Context, learnerID uuid.UUID) (*model.UserConfig, error) {
	cfg, err := s.configRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "学習者の設定が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の取得に失敗しました。", "", err)
	}
	return cfg, nil
}

// UpdateConfig は指定されたフィールドのみを上書きし、
// 通知に影響する設定が変わった可能性があるのでリマインダーを再計画します
func (s *learnerService) UpdateConfig(ctx context.Context, learnerID uuid.UUID, req *model.PatchUserConfigRequest) (*model.UserConfig, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	s.locker.Lock(learnerID)
	cfg, err := s.updateConfigLocked(ctx, learnerID, req)
	s.locker.Unlock(learnerID)
	if err != nil {
		return nil, err
	}

	// 再計画の失敗で設定更新自体は巻き戻さない
	if _, err := s.notification.ScheduleReminders(ctx, learnerID); err != nil {
		logger.Warn("Failed to reschedule reminders after config update", "error", err)
	}

	logger.Info("User config updated")
	return cfg, nil
}

func (s *learnerService) updateConfigLocked(ctx context.Context, learnerID uuid.UUID, req *model.PatchUserConfigRequest) (*model.UserConfig, error) {
	cfg, err := s.configRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "学習者の設定が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の取得に失敗しました。", "", err)
	}

	applyConfigPatch(cfg, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.configRepo.Update(ctx, tx, cfg)
	})
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習者設定の更新に失敗しました。", "", err)
	}
	return cfg, nil
}

// Exists は認証ミドルウェアが学習者IDを検証するために使います
func (s *learnerService) Exists(ctx context.Context, learnerID uuid.UUID) (bool, error) {
	_, err := s.configRepo.FindByLearner(ctx, s.db, learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func applyConfigPatch(cfg *model.UserConfig, req *model.PatchUserConfigRequest) {
	if req.NotificationsEnabled != nil {
		cfg.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.QuietHoursStart != nil {
		cfg.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		cfg.QuietHoursEnd = *req.QuietHoursEnd
	}
	if req.FrequencyTier != nil {
		cfg.FrequencyTier = model.FrequencyTier(*req.FrequencyTier)
	}
	if req.MessageStyle != nil {
		cfg.MessageStyle = model.MessageStyle(*req.MessageStyle)
	}
	if req.SessionLengthTier != nil {
		cfg.SessionLengthTier = model.SessionLengthTier(*req.SessionLengthTier)
	}
	if req.Pacing != nil {
		cfg.Pacing = *req.Pacing
	}
	if req.AdaptiveDifficulty != nil {
		cfg.AdaptiveDifficulty = *req.AdaptiveDifficulty
	}
	if req.PreferredHours != nil {
		cfg.LearningHabits.PreferredHours = req.PreferredHours
	}
}
