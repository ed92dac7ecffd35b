// internal/repository/config_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_srs_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfigRepository interface {
	Create(ctx context.Context, tx *gorm.DB, cfg *model.UserConfig) error
	FindByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) (*model.UserConfig, error)
	Update(ctx context.Context, tx *gorm.DB, cfg *model.UserConfig) error
	ListLearnerIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error)
}

type gormConfigRepository struct {
}

func NewGormConfigRepository() ConfigRepository {
	return &gormConfigRepository{}
}

func (r *gormConfigRepository) Create(ctx context.Context, tx *gorm.DB, cfg *model.UserConfig) error {
	result := tx.WithContext(ctx).Create(cfg)
	if result.Error != nil {
		// Email の一意制約違反を重複エラーとして返す
		if isUniqueViolation(result.Error) {
			return model.ErrConflict
		}
		return result.Error
	}
	return nil
}

func (r *gormConfigRepository) FindByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) (*model.UserConfig, error) {
	var cfg model.UserConfig
	result := db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		First(&cfg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &cfg, nil
}

func (r *gormConfigRepository) Update(ctx context.Context, tx *gorm.DB, cfg *model.UserConfig) error {
	// 事前の存在確認は呼び出し元(Service)で行っている想定
	result := tx.WithContext(ctx).Save(cfg)
	return result.Error
}

func (r *gormConfigRepository) ListLearnerIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := db.WithContext(ctx).
		Model(&model.UserConfig{}).
		Pluck("learner_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
