// internal/repository/strategy_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_srs_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StrategyRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, strategy *model.NotificationStrategy) error
	FindByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) (*model.NotificationStrategy, error)
	ListLearnerIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error)
}

type gormStrategyRepository struct {
}

func NewGormStrategyRepository() StrategyRepository {
	return &gormStrategyRepository{}
}

func (r *gormStrategyRepository) Upsert(ctx context.Context, tx *gorm.DB, strategy *model.NotificationStrategy) error {
	// 学習者ごとに1レコード。存在すれば全カラム更新
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}},
			UpdateAll: true,
		}).
		Create(strategy)
	return result.Error
}

func (r *gormStrategyRepository) FindByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) (*model.NotificationStrategy, error) {
	var strategy model.NotificationStrategy
	result := db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		First(&strategy)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &strategy, nil
}

func (r *gormStrategyRepository) ListLearnerIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := db.WithContext(ctx).
		Model(&model.NotificationStrategy{}).
		Pluck("learner_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
