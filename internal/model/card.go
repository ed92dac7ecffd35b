// internal/model/card.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardStatus はカードの学習段階を表します
type CardStatus string

const (
	CardStatusNew       CardStatus = "new"
	CardStatusLearning  CardStatus = "learning"
	CardStatusGraduated CardStatus = "graduated"
)

// Assessment は学習者の自己評価を表します
type Assessment string

const (
	AssessmentForgot Assessment = "forgot"
	AssessmentHard   Assessment = "hard"
	AssessmentGood   Assessment = "good"
	AssessmentEasy   Assessment = "easy"
)

// Card は (学習者, 語彙アイテム) ごとのSM-2スケジューリング状態を表します
type Card struct {
	CardID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"card_id"`
	LearnerID        uuid.UUID `gorm:"type:uuid;not null;index:idx_learner_vocab,unique" json:"-"`
	VocabularyID     string    `gorm:"not null;index:idx_learner_vocab,unique" json:"vocabulary_id"`
	Term             string    `gorm:"not null" json:"term"`
	Definition       string    `gorm:"not null" json:"definition"`
	PronunciationURL string    `json:"pronunciation_url,omitempty"`

	// スケジューリング状態 (SM-2スケジューラのみが更新する)
	EaseFactor     float64    `gorm:"not null;default:2.5" json:"ease_factor"`
	IntervalDays   int        `gorm:"not null;default:0" json:"interval_days"`
	Repetitions    int        `gorm:"not null;default:0" json:"repetitions"`
	NextReviewDate time.Time  `gorm:"not null;index" json:"next_review_date"`
	Status         CardStatus `gorm:"not null;default:new" json:"status"`

	// 統計情報
	TotalReviews      int   `gorm:"not null;default:0" json:"total_reviews"`
	CorrectReviews    int   `gorm:"not null;default:0" json:"correct_reviews"`
	AvgResponseTimeMs int64 `gorm:"not null;default:0" json:"avg_response_time_ms"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用 (親コンテンツ削除に追従)
}

func (Card) TableName() string {
	return "cards"
}

// DaysOverdue は now 時点での期限超過日数を返します (未期限なら負値)
func (c *Card) DaysOverdue(now time.Time) int {
	return int(now.Sub(c.NextReviewDate).Hours() / 24)
}

// IsDue は now 時点で復習期限が到来しているかを返します
func (c *Card) IsDue(now time.Time) bool {
	return !c.NextReviewDate.After(now)
}

// カード作成リクエストDTO
type PostCardRequest struct {
	VocabularyID     string `json:"vocabulary_id" validate:"required,min=1,max=100"`
	Term             string `json:"term" validate:"required,min=1"`
	Definition       string `json:"definition" validate:"required,min=1"`
	PronunciationURL string `json:"pronunciation_url,omitempty" validate:"omitempty,url"`
}

// DueCardResponse は復習対象カードリストのレスポンスDTO
type DueCardResponse struct {
	CardID      uuid.UUID  `json:"card_id"`
	Term        string     `json:"term"`
	Definition  string     `json:"definition"`
	EaseFactor  float64    `json:"ease_factor"`
	DaysOverdue int        `json:"days_overdue"`
	Status      CardStatus `json:"status"`
}

// DueCountResponse は復習対象カード数のレスポンスDTO
type DueCountResponse struct {
	Count int64 `json:"count"`
}
