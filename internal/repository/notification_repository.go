// internal/repository/notification_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_srs_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *model.ScheduledNotification) error
	FindByID(ctx context.Context, db *gorm.DB, notificationID uuid.UUID) (*model.ScheduledNotification, error)
	ListByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) ([]*model.ScheduledNotification, error)
	DeleteByLearner(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) error
}

type gormNotificationRepository struct {
}

func NewGormNotificationRepository() NotificationRepository {
	return &gormNotificationRepository{}
}

func (r *gormNotificationRepository) Create(ctx context.Context, tx *gorm.DB, notification *model.ScheduledNotification) error {
	result := tx.WithContext(ctx).Create(notification)
	return result.Error
}

func (r *gormNotificationRepository) FindByID(ctx context.Context, db *gorm.DB, notificationID uuid.UUID) (*model.ScheduledNotification, error) {
	var notification model.ScheduledNotification
	result := db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&notification)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &notification, nil
}

func (r *gormNotificationRepository) ListByLearner(ctx context.Context, db *gorm.DB, learnerID uuid.UUID) ([]*model.ScheduledNotification, error) {
	var notifications []*model.ScheduledNotification
	result := db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("fire_time ASC").
		Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}
	return notifications, nil
}

func (r *gormNotificationRepository) DeleteByLearner(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Delete(&model.ScheduledNotification{})
	return result.Error
}

func (r *gormNotificationRepository) Delete(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Delete(&model.ScheduledNotification{})
	return result.Error
}
