package repository

import (
	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	FindByUser(db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Notification, error)
	CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error)
	MarkRead(db *gorm.DB, id, userID uuid.UUID) (int64, error)
	MarkAllRead(db *gorm.DB, userID uuid.UUID) (int64, error)
}
