// internal/model/session.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionType はセッションの開始契機を表します
type SessionType string

const (
	SessionTypeScheduled      SessionType = "scheduled"
	SessionTypeManual         SessionType = "manual"
	SessionTypeStreakRecovery SessionType = "streak_recovery"
)

// SessionStatus はセッションの状態遷移 (active -> completed) を表します
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Mood はセッション内の指標から導出される気分ラベル
type Mood string

const (
	MoodNeutral    Mood = "neutral"
	MoodConfident  Mood = "confident"
	MoodStruggling Mood = "struggling"
	MoodFocused    Mood = "focused"
)

// ReviewSession は1学習者の復習セッションを表します。
// 学習者ごとに active なセッションは高々1つ (active_sessions で保証)。
type ReviewSession struct {
	SessionID   uuid.UUID     `gorm:"type:uuid;primaryKey" json:"session_id"`
	LearnerID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"-"`
	SessionType SessionType   `gorm:"not null" json:"session_type"`
	Status      SessionStatus `gorm:"not null;default:active;index" json:"status"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`

	// セッション開始時に選択されたカードキュー (順序固定)
	MaxCards          int         `gorm:"not null" json:"max_cards"`
	TargetDurationSec int         `gorm:"not null" json:"target_duration_sec"`
	Queue             []uuid.UUID `gorm:"serializer:json" json:"queue"`
	CurrentIndex      int         `gorm:"not null;default:0" json:"current_index"`

	// 回答ごとに更新される指標
	CurrentStreak     int     `gorm:"not null;default:0" json:"current_streak"`
	CorrectAnswers    int     `gorm:"not null;default:0" json:"correct_answers"`
	PerfectAnswers    int     `gorm:"not null;default:0" json:"perfect_answers"`
	AccuracyRate      float64 `gorm:"not null;default:0" json:"accuracy_rate"`
	AvgResponseTimeMs int64   `gorm:"not null;default:0" json:"avg_response_time_ms"`
	EngagementLevel   int     `gorm:"not null;default:50" json:"engagement_level"`
	Mood              Mood    `gorm:"not null;default:neutral" json:"mood"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// 関連 (Preload用)
	Responses []ReviewResponse `gorm:"foreignKey:SessionID;references:SessionID" json:"responses,omitempty"`
}

func (ReviewSession) TableName() string {
	return "review_sessions"
}

// CurrentCardID は現在のキュー先頭のカードIDを返します (キュー消化済みなら uuid.Nil)
func (s *ReviewSession) CurrentCardID() uuid.UUID {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Queue) {
		return uuid.Nil
	}
	return s.Queue[s.CurrentIndex]
}

// Exhausted はキューを消化し終えたかを返します
func (s *ReviewSession) Exhausted() bool {
	return s.CurrentIndex >= len(s.Queue)
}

// ReviewResponse は1回答の不変な監査レコードです。
// ease/interval の更新前の値を持ち、リプレイ・監査に使えます。
type ReviewResponse struct {
	ResponseID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"response_id"`
	SessionID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	CardID         uuid.UUID  `gorm:"type:uuid;not null" json:"card_id"`
	Assessment     Assessment `gorm:"not null" json:"assessment"`
	ResponseTimeMs int64      `gorm:"not null" json:"response_time_ms"`
	EaseBefore     float64    `gorm:"not null" json:"ease_before"`
	IntervalBefore int        `gorm:"not null" json:"interval_before"`
	AnsweredAt     time.Time  `gorm:"not null" json:"answered_at"`
}

func (ReviewResponse) TableName() string {
	return "review_responses"
}

// ActiveSession は学習者 -> アクティブセッションの明示的なインデックスです。
// 主キー制約が startSession の compare-and-set を担保します。
// セッションの開始・完了と同一トランザクションで維持されます。
type ActiveSession struct {
	LearnerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

func (ActiveSession) TableName() string {
	return "active_sessions"
}

// セッション開始リクエストDTO
type StartSessionRequest struct {
	SessionType string `json:"session_type" validate:"required,oneof=scheduled manual streak_recovery"`
}

// 回答送信リクエストDTO
type SubmitResponseRequest struct {
	CardID         uuid.UUID `json:"card_id" validate:"required"`
	Assessment     string    `json:"assessment" validate:"required,oneof=forgot hard good easy"`
	ResponseTimeMs int64     `json:"response_time_ms" validate:"required,gt=0"`
}

// SessionStateResponse はセッション状態のレスポンスDTO
type SessionStateResponse struct {
	SessionID         uuid.UUID     `json:"session_id"`
	SessionType       SessionType   `json:"session_type"`
	Status            SessionStatus `json:"status"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	RemainingCards    int           `json:"remaining_cards"`
	CurrentCardID     *uuid.UUID    `json:"current_card_id,omitempty"`
	TargetDurationSec int           `json:"target_duration_sec"`
	CurrentStreak     int           `json:"current_streak"`
	PerfectAnswers    int           `json:"perfect_answers"`
	AccuracyRate      float64       `json:"accuracy_rate"`
	AvgResponseTimeMs int64         `json:"avg_response_time_ms"`
	EngagementLevel   int           `json:"engagement_level"`
	Mood              Mood          `json:"mood"`
}
