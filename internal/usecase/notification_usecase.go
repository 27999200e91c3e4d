package usecase

import (
	"context"

	"go-vaccination-booking/internal/converter"
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/domain/repository"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const notificationListLimit = 50

var (
	ErrNotificationNotFound = apperror.NotFound("notification not found")
)

type NotificationUsecase interface {
	GetNotifications(ctx context.Context, actor entity.Actor) (*dto.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, actor entity.Actor) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAllRead(ctx context.Context, actor entity.Actor) (*dto.UnreadCountResponse, error)
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	counter          service.UnreadCounter
}

func NewNotificationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	notificationRepo repository.NotificationRepository,
	counter service.UnreadCounter,
) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
		counter:          counter,
	}
}

// GetNotifications lists the latest notifications and resets the unread
// counter from the stored rows
func (u *notificationUsecase) GetNotifications(ctx context.Context, actor entity.Actor) (*dto.NotificationListResponse, error) {
	db := u.db.WithContext(ctx)

	notifications, err := u.notificationRepo.FindByUser(db, actor.ID, notificationListLimit)
	if err != nil {
		u.log.Warnf("Failed to find notifications: %+v", err)
		return nil, err
	}

	unread, err := u.notificationRepo.CountUnread(db, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications: %+v", err)
		return nil, err
	}

	if err := u.counter.Set(ctx, actor.ID, unread); err != nil {
		u.log.Warnf("Failed to reset unread counter: %+v", err)
	}

	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(notifications),
		Unread:        unread,
		Total:         len(notifications),
	}, nil
}

// GetUnreadCount reads the counter, falling back to the database when the
// counter store is unavailable
func (u *notificationUsecase) GetUnreadCount(ctx context.Context, actor entity.Actor) (*dto.UnreadCountResponse, error) {
	unread, err := u.counter.Get(ctx, actor.ID)
	if err == nil {
		return &dto.UnreadCountResponse{Unread: unread}, nil
	}
	u.log.Warnf("Failed to read unread counter: %+v", err)

	unread, err = u.notificationRepo.CountUnread(u.db.WithContext(ctx), actor.ID)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications: %+v", err)
		return nil, err
	}

	return &dto.UnreadCountResponse{Unread: unread}, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.UnreadCountResponse, error) {
	rows, err := u.notificationRepo.MarkRead(u.db.WithContext(ctx), id, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to mark notification read: %+v", err)
		return nil, err
	}
	if rows == 0 {
		// already read or not owned; the counter stays as is
		return u.GetUnreadCount(ctx, actor)
	}

	unread, err := u.counter.Decrement(ctx, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to decrement unread counter: %+v", err)
		return u.GetUnreadCount(ctx, actor)
	}

	return &dto.UnreadCountResponse{Unread: unread}, nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, actor entity.Actor) (*dto.UnreadCountResponse, error) {
	if _, err := u.notificationRepo.MarkAllRead(u.db.WithContext(ctx), actor.ID); err != nil {
		u.log.Warnf("Failed to mark notifications read: %+v", err)
		return nil, err
	}

	if err := u.counter.Set(ctx, actor.ID, 0); err != nil {
		u.log.Warnf("Failed to reset unread counter: %+v", err)
	}

	return &dto.UnreadCountResponse{Unread: 0}, nil
}
