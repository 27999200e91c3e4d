package handler

import (
	"net/http"

	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
	}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationUsecase.GetNotifications(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get notifications")
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	unread, err := h.notificationUsecase.GetUnreadCount(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get unread count")
		return
	}

	response.Success(w, http.StatusOK, "Unread count retrieved successfully", unread)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	notificationID, ok := pathUUID(w, r, "id", "notification")
	if !ok {
		return
	}

	unread, err := h.notificationUsecase.MarkRead(r.Context(), actor, notificationID)
	if err != nil {
		response.FromError(w, err, "Failed to mark notification as read")
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", unread)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	unread, err := h.notificationUsecase.MarkAllRead(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to mark notifications as read")
		return
	}

	response.Success(w, http.StatusOK, "All notifications marked as read", unread)
}
