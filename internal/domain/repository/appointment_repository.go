package repository

import (
	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	// UpdateFromStatus writes updates only while the appointment is still in
	// one of the expected statuses
	UpdateFromStatus(db *gorm.DB, id uuid.UUID, expected []entity.AppointmentStatus, updates map[string]interface{}) (int64, error)
	DeleteByChild(db *gorm.DB, childID uuid.UUID) (int64, error)
}
