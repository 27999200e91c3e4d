package repository

import (
	"time"

	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	Create(db *gorm.DB, schedule *entity.DoctorSchedule) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoctorSchedule, error)
	FindByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DoctorSchedule, error)
	FindByDoctor(db *gorm.DB, doctorID uuid.UUID, filter *entity.ScheduleFilter) ([]entity.DoctorSchedule, error)
	// FindAvailableByDate returns available schedules of active doctors for
	// date with all of their slots preloaded
	FindAvailableByDate(db *gorm.DB, date time.Time) ([]entity.DoctorSchedule, error)
	Update(db *gorm.DB, schedule *entity.DoctorSchedule) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}

type AvailabilitySlotRepository interface {
	CreateBatch(db *gorm.DB, slots []entity.AvailabilitySlot) error
	FindByID(db *gorm.DB, scheduleID, slotID uuid.UUID) (*entity.AvailabilitySlot, error)
	FindBySchedule(db *gorm.DB, scheduleID uuid.UUID, onlyAvailable bool) ([]entity.AvailabilitySlot, error)
	CountBooked(db *gorm.DB, scheduleID uuid.UUID) (int64, error)
	DeleteUnbooked(db *gorm.DB, scheduleID uuid.UUID) (int64, error)
	// Reserve books the slot for userID only if it is currently free
	Reserve(db *gorm.DB, scheduleID, slotID, userID uuid.UUID, at time.Time) (int64, error)
	// Release frees the slot only if it is still held by bookedBy
	Release(db *gorm.DB, scheduleID, slotID, bookedBy uuid.UUID) (int64, error)
	// ReleaseForChild frees slots bound to open appointments of a child
	ReleaseForChild(db *gorm.DB, childID uuid.UUID) (int64, error)
}
