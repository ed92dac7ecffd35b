// internal/model/strategy.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageStat は文体ごとの送信・反応実績
type MessageStat struct {
	Sent      int `json:"sent"`
	Responded int `json:"responded"`
}

// Effectiveness は反応率を返します (未送信なら 0)
func (m MessageStat) Effectiveness() float64 {
	if m.Sent == 0 {
		return 0
	}
	return float64(m.Responded) / float64(m.Sent)
}

// NotificationStrategy は学習者ごとの行動分析結果と通知最適化モデルです。
// Behavior Analyzer と Notification Planner だけが更新します。
type NotificationStrategy struct {
	LearnerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"learner_id"`

	// ActivityPattern
	MostActiveHours    []int      `gorm:"serializer:json" json:"most_active_hours"`
	SessionsPerDay     float64    `gorm:"not null;default:0" json:"sessions_per_day"`
	ResponseRate       float64    `gorm:"not null;default:0.5" json:"response_rate"`
	LastEngagementTime *time.Time `json:"last_engagement_time,omitempty"`

	// NotificationOptimization
	BestHours    []int                        `gorm:"serializer:json" json:"best_hours"`
	WorstHours   []int                        `gorm:"serializer:json" json:"worst_hours"`
	Frequency    FrequencyTier                `gorm:"not null;default:medium" json:"frequency"`
	MessageStats map[MessageStyle]MessageStat `gorm:"serializer:json" json:"message_stats"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (NotificationStrategy) TableName() string {
	return "notification_strategies"
}

// BestMessageStyle は実績上最も効果の高い文体を返します。
// 実績が全く無い場合は fallback を返します。
func (s *NotificationStrategy) BestMessageStyle(fallback MessageStyle) MessageStyle {
	best := fallback
	bestScore := -1.0
	for style, stat := range s.MessageStats {
		if stat.Sent == 0 {
			continue
		}
		if score := stat.Effectiveness(); score > bestScore {
			best = style
			bestScore = score
		}
	}
	return best
}
