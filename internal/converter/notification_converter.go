package converter

import (
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// NotificationsToResponses converts a slice of Notification entities to NotificationResponse DTOs
func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = dto.NotificationResponse{
			ID:                   n.ID,
			Kind:                 string(n.Kind),
			Title:                n.Title,
			Message:              n.Message,
			IsRead:               n.IsRead,
			RelatedChildID:       n.RelatedChildID,
			RelatedAppointmentID: n.RelatedAppointmentID,
			RelatedVaccineID:     n.RelatedVaccineID,
			CreatedAt:            n.CreatedAt,
		}
	}
	return responses
}
