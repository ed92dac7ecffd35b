// internal/repository/session_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_5_srs_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.ReviewSession) error
	FindByID(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.ReviewSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *model.ReviewSession) error
	CreateResponse(ctx context.Context, tx *gorm.DB, response *model.ReviewResponse) error
	FindCompletedSince(ctx context.Context, db *gorm.DB, learnerID uuid.UUID, since time.Time) ([]*model.ReviewSession, error)
	ListLearnersWithCompletedSince(ctx context.Context, db *gorm.DB, since time.Time) ([]uuid.UUID, error)

	// 学習者 -> アクティブセッションの明示的インデックス。
	// CreateActive は主キー重複を model.ErrConflict として返す (compare-and-set)。
	FindActive(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) (*model.ActiveSession, error)
	CreateActive(ctx context.Context, tx *gorm.DB, active *model.ActiveSession) error
	DeleteActive(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) error
}

type gormSessionRepository struct {
}

func NewGormSessionRepository() SessionRepository {
	return &gormSessionRepository{}
}

func (r *gormSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *model.ReviewSession) error {
	result := tx.WithContext(ctx).Create(session)
	return result.Error
}

func (r *gormSessionRepository) FindByID(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.ReviewSession, error) {
	var session model.ReviewSession
	result := db.WithContext(ctx).
		Preload("Responses").
		Where("session_id = ?", sessionID).
		First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &session, nil
}

func (r *gormSessionRepository) Update(ctx context.Context, tx *gorm.DB, session *model.ReviewSession) error {
	result := tx.WithContext(ctx).Save(session)
	return result.Error
}

func (r *gormSessionRepository) CreateResponse(ctx context.Context, tx *gorm.DB, response *model.ReviewResponse) error {
	result := tx.WithContext(ctx).Create(response)
	return result.Error
}

func (r *gormSessionRepository) FindCompletedSince(ctx context.Context, db *gorm.DB, learnerID uuid.UUID, since time.Time) ([]*model.ReviewSession, error) {
	var sessions []*model.ReviewSession
	result := db.WithContext(ctx).
		Where("learner_id = ? AND status = ? AND completed_at >= ?", learnerID, model.SessionStatusCompleted, since).
		Order("completed_at ASC").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}
	return sessions, nil
}

func (r *gormSessionRepository) ListLearnersWithCompletedSince(ctx context.Context, db *gorm.DB, since time.Time) ([]uuid.UUID, error) {
	var learnerIDs []uuid.UUID
	result := db.WithContext(ctx).
		Model(&model.ReviewSession{}).
		Where("status = ? AND completed_at >= ?", model.SessionStatusCompleted, since).
		Distinct("learner_id").
		Pluck("learner_id", &learnerIDs)
	if result.Error != nil {
		return nil, result.Error
	}
	return learnerIDs, nil
}

func (r *gormSessionRepository) FindActive(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) (*model.ActiveSession, error) {
	var active model.ActiveSession
	result := db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		First(&active)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &active, nil
}

func (r *gormSessionRepository) CreateActive(ctx context.Context, tx *gorm.DB, active *model.ActiveSession) error {
	result := tx.WithContext(ctx).Create(active)
	if result.Error != nil {
		// 主キー重複 = 既にアクティブセッションが存在する
		if isUniqueViolation(result.Error) {
			return model.ErrConflict
		}
		return result.Error
	}
	return nil
}

func (r *gormSessionRepository) DeleteActive(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Delete(&model.ActiveSession{})
	return result.Error
}
