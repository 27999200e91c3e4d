package repository

import (
	"errors"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Child", "Parent", "Doctor").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Child").Preload("Parent").Preload("Doctor").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Preload("Child").Preload("Parent").Preload("Doctor")

	if filter.ChildID != nil {
		query = query.Where("child_id = ?", *filter.ChildID)
	}
	if filter.SlotID != nil {
		query = query.Where("slot_id = ?", *filter.SlotID)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.DoctorID != nil {
		if filter.IncludeUnassigned {
			query = query.Where("(doctor_id = ? OR doctor_id IS NULL)", *filter.DoctorID)
		} else {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Date != nil {
		query = query.Where("scheduled_date = ?", *filter.Date)
	}

	err := query.Order("scheduled_date ASC, scheduled_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateFromStatus(db *gorm.DB, id uuid.UUID, expected []entity.AppointmentStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteByChild(db *gorm.DB, childID uuid.UUID) (int64, error) {
	result := db.Where("child_id = ?", childID).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
