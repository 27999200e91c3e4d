package repository

import (
	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepository struct{}

func NewNotificationRepository() domainRepo.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *entity.Notification) error {
	return db.Create(notification).Error
}

func (r *notificationRepository) FindByUser(db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	query := db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(db *gorm.DB, id, userID uuid.UUID) (int64, error) {
	result := db.Model(&entity.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllRead(db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
