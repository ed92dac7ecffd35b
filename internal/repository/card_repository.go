// internal/repository/card_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_5_srs_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, card *model.Card) error // トランザクション対応
	FindByID(ctx context.Context, db *gorm.DB, learnerID, cardID uuid.UUID) (*model.Card, error)
	ListByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) ([]*model.Card, error)
	FindDueByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID, now time.Time, limit int) ([]*model.Card, error)
	CountDueByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID, now time.Time) (int64, error)
	CheckVocabularyExists(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, vocabularyID string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, card *model.Card) error
	Delete(ctx context.Context, tx *gorm.DB, learnerID, cardID uuid.UUID) error
}

type gormCardRepository struct {
	// DB接続はService層から渡される想定
}

func NewGormCardRepository() CardRepository {
	return &gormCardRepository{}
}

func (r *gormCardRepository) Create(ctx context.Context, tx *gorm.DB, card *model.Card) error {
	// UUIDはService層で設定済み想定
	result := tx.WithContext(ctx).Create(card)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return model.ErrConflict
		}
		return result.Error
	}
	return nil
}

func (r *gormCardRepository) FindByID(ctx context.Context, db *gorm.DB, learnerID, cardID uuid.UUID) (*model.Card, error) {
	var card model.Card
	result := db.WithContext(ctx).
		Where("learner_id = ? AND card_id = ?", learnerID, cardID).
		First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

func (r *gormCardRepository) ListByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) ([]*model.Card, error) {
	var cards []*model.Card
	result := db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at ASC").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// FindDueByLearner は next_review_date <= now のカードを返します。
// 期限超過日数による最終的な並べ替えはService層で行うため、ここでは
// 期日昇順で安定した順序だけを保証します。
func (r *gormCardRepository) FindDueByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID, now time.Time, limit int) ([]*model.Card, error) {
	var cards []*model.Card
	result := db.WithContext(ctx).
		Where("learner_id = ? AND next_review_date <= ?", learnerID, now).
		Order("next_review_date ASC, ease_factor ASC").
		Limit(limit).
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

func (r *gormCardRepository) CountDueByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.Card{}).
		Where("learner_id = ? AND next_review_date <= ?", learnerID, now).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (r *gormCardRepository) CheckVocabularyExists(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, vocabularyID string) (bool, error) {
	var count int64
	result := tx.WithContext(ctx).
		Model(&model.Card{}).
		Where("learner_id = ? AND vocabulary_id = ?", learnerID, vocabularyID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *gormCardRepository) Update(ctx context.Context, tx *gorm.DB, card *model.Card) error {
	// card オブジェクト全体を渡して更新 (主キーに基づく Save)
	// 事前の存在確認は呼び出し元(Service)で行っている想定
	result := tx.WithContext(ctx).Save(card)
	return result.Error
}

func (r *gormCardRepository) Delete(ctx context.Context, tx *gorm.DB, learnerID, cardID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("learner_id = ? AND card_id = ?", learnerID, cardID).
		Delete(&model.Card{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
