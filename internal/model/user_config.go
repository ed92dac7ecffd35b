// internal/model/user_config.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FrequencyTier は通知頻度の段階を表します
type FrequencyTier string

const (
	FrequencyLow    FrequencyTier = "low"
	FrequencyMedium FrequencyTier = "medium"
	FrequencyHigh   FrequencyTier = "high"
)

// NotificationsPerDay は1日にスケジュールする通知数を返します
func (f FrequencyTier) NotificationsPerDay() int {
	switch f {
	case FrequencyLow:
		return 2
	case FrequencyMedium:
		return 3
	case FrequencyHigh:
		return 5
	default:
		return 3
	}
}

// Downgrade は1段階下の頻度を返します (low が下限)
func (f FrequencyTier) Downgrade() FrequencyTier {
	switch f {
	case FrequencyHigh:
		return FrequencyMedium
	case FrequencyMedium:
		return FrequencyLow
	default:
		return FrequencyLow
	}
}

// Upgrade は1段階上の頻度を返します (high が上限)
func (f FrequencyTier) Upgrade() FrequencyTier {
	switch f {
	case FrequencyLow:
		return FrequencyMedium
	case FrequencyMedium:
		return FrequencyHigh
	default:
		return FrequencyHigh
	}
}

// SessionLengthTier はセッション長の段階を表します
type SessionLengthTier string

const (
	SessionLengthShort  SessionLengthTier = "short"
	SessionLengthMedium SessionLengthTier = "medium"
	SessionLengthLong   SessionLengthTier = "long"
)

// Limits はセッション長に応じた (最大カード数, 目標時間秒) を返します。
// 不明な値は呼び出し側で ErrInvalidInput として扱います。
func (t SessionLengthTier) Limits() (maxCards int, targetDurationSec int, ok bool) {
	switch t {
	case SessionLengthShort:
		return 5, 60, true
	case SessionLengthMedium:
		return 10, 120, true
	case SessionLengthLong:
		return 15, 180, true
	default:
		return 0, 0, false
	}
}

// MessageStyle はリマインダーメッセージの文体を表します
type MessageStyle string

const (
	MessageStyleEncouraging MessageStyle = "encouraging"
	MessageStyleNeutral     MessageStyle = "neutral"
	MessageStyleUrgent      MessageStyle = "urgent"
)

// LearningHabits は学習者の習慣サマリ (UserConfig に埋め込み)
type LearningHabits struct {
	PreferredHours        []int      `gorm:"serializer:json" json:"preferred_hours"`
	AvgSessionDurationSec int        `gorm:"not null;default:0" json:"avg_session_duration_sec"`
	CurrentStreakDays     int        `gorm:"not null;default:0" json:"current_streak_days"`
	LongestStreakDays     int        `gorm:"not null;default:0" json:"longest_streak_days"`
	LastStudyDate         *time.Time `json:"last_study_date,omitempty"`
}

// UserConfig は学習者ごとの設定と習慣サマリを表します
type UserConfig struct {
	LearnerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"learner_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`

	// 通知設定
	NotificationsEnabled bool          `gorm:"not null;default:true" json:"notifications_enabled"`
	QuietHoursStart      int           `gorm:"not null;default:22" json:"quiet_hours_start"`
	QuietHoursEnd        int           `gorm:"not null;default:7" json:"quiet_hours_end"`
	FrequencyTier        FrequencyTier `gorm:"not null;default:medium" json:"frequency_tier"`
	MessageStyle         MessageStyle  `gorm:"not null;default:encouraging" json:"message_style"`

	// 復習設定
	SessionLengthTier  SessionLengthTier `gorm:"not null;default:medium" json:"session_length_tier"`
	Pacing             string            `gorm:"not null;default:normal" json:"pacing"`
	AdaptiveDifficulty bool              `gorm:"not null;default:true" json:"adaptive_difficulty"`

	LearningHabits LearningHabits `gorm:"embedded;embeddedPrefix:habit_" json:"learning_habits"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserConfig) TableName() string {
	return "user_configs"
}

type ContextKey string

const (
	LearnerIDKey ContextKey = "learnerID"
)

// 学習者登録リクエストDTO
type RegisterLearnerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// 設定更新（部分）リクエストDTO
type PatchUserConfigRequest struct {
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	QuietHoursStart      *int    `json:"quiet_hours_start,omitempty" validate:"omitempty,min=0,max=23"`
	QuietHoursEnd        *int    `json:"quiet_hours_end,omitempty" validate:"omitempty,min=0,max=23"`
	FrequencyTier        *string `json:"frequency_tier,omitempty" validate:"omitempty,oneof=low medium high"`
	MessageStyle         *string `json:"message_style,omitempty" validate:"omitempty,oneof=encouraging neutral urgent"`
	SessionLengthTier    *string `json:"session_length_tier,omitempty" validate:"omitempty,oneof=short medium long"`
	Pacing               *string `json:"pacing,omitempty" validate:"omitempty,oneof=relaxed normal intensive"`
	AdaptiveDifficulty   *bool   `json:"adaptive_difficulty,omitempty"`
	PreferredHours       []int   `json:"preferred_hours,omitempty" validate:"omitempty,dive,min=0,max=23"`
}
