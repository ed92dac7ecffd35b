// internal/model/notification.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPayload はディスパッチャに渡す通知内容です
type NotificationPayload struct {
	LearnerID    uuid.UUID `json:"learner_id"`
	DueCardCount int       `json:"due_card_count"`
	Message      string    `json:"message"`
}

// ScheduledNotification はディスパッチャに登録済みの通知の追跡レコードです。
// 学習者単位で一括キャンセル・再スケジュールするために保持します。
type ScheduledNotification struct {
	NotificationID uuid.UUID    `gorm:"type:uuid;primaryKey" json:"notification_id"`
	LearnerID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	FireTime       time.Time    `gorm:"not null" json:"fire_time"`
	Message        string       `gorm:"not null" json:"message"`
	MessageStyle   MessageStyle `gorm:"not null" json:"message_style"`
	DueCardCount   int          `gorm:"not null" json:"due_card_count"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (ScheduledNotification) TableName() string {
	return "scheduled_notifications"
}

// 配信結果記録リクエストDTO
type RecordDeliveryRequest struct {
	Responded *bool `json:"responded" validate:"required"`
}
