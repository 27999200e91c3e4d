package repository

import (
	"errors"
	"time"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type availabilitySlotRepository struct{}

func NewAvailabilitySlotRepository() domainRepo.AvailabilitySlotRepository {
	return &availabilitySlotRepository{}
}

func (r *availabilitySlotRepository) CreateBatch(db *gorm.DB, slots []entity.AvailabilitySlot) error {
	if len(slots) == 0 {
		return nil
	}
	return db.Create(&slots).Error
}

func (r *availabilitySlotRepository) FindByID(db *gorm.DB, scheduleID, slotID uuid.UUID) (*entity.AvailabilitySlot, error) {
	var slot entity.AvailabilitySlot
	err := db.Where("id = ? AND schedule_id = ?", slotID, scheduleID).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *availabilitySlotRepository) FindBySchedule(db *gorm.DB, scheduleID uuid.UUID, onlyAvailable bool) ([]entity.AvailabilitySlot, error) {
	var slots []entity.AvailabilitySlot
	query := db.Where("schedule_id = ?", scheduleID)
	if onlyAvailable {
		query = query.Where("is_booked = ?", false)
	}
	err := orderedSlots(query).Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *availabilitySlotRepository) CountBooked(db *gorm.DB, scheduleID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.AvailabilitySlot{}).
		Where("schedule_id = ? AND is_booked = ?", scheduleID, true).
		Count(&count).Error
	return count, err
}

func (r *availabilitySlotRepository) DeleteUnbooked(db *gorm.DB, scheduleID uuid.UUID) (int64, error) {
	result := db.Where("schedule_id = ? AND is_booked = ?", scheduleID, false).Delete(&entity.AvailabilitySlot{})
	return result.RowsAffected, result.Error
}

// Reserve is a single conditional UPDATE. Under concurrent attempts on the
// same slot exactly one caller observes RowsAffected == 1.
func (r *availabilitySlotRepository) Reserve(db *gorm.DB, scheduleID, slotID, userID uuid.UUID, at time.Time) (int64, error) {
	result := db.Model(&entity.AvailabilitySlot{}).
		Where("id = ? AND schedule_id = ? AND is_booked = ?", slotID, scheduleID, false).
		Updates(map[string]interface{}{
			"is_booked": true,
			"booked_by": userID,
			"booked_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *availabilitySlotRepository) Release(db *gorm.DB, scheduleID, slotID, bookedBy uuid.UUID) (int64, error) {
	result := db.Model(&entity.AvailabilitySlot{}).
		Where("id = ? AND schedule_id = ? AND is_booked = ? AND booked_by = ?", slotID, scheduleID, true, bookedBy).
		Updates(map[string]interface{}{
			"is_booked": false,
			"booked_by": nil,
			"booked_at": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *availabilitySlotRepository) ReleaseForChild(db *gorm.DB, childID uuid.UUID) (int64, error) {
	result := db.Model(&entity.AvailabilitySlot{}).
		Where("is_booked = ? AND id IN (SELECT slot_id FROM appointments WHERE child_id = ? AND slot_id IS NOT NULL AND status IN ?)",
			true, childID, []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed}).
		Updates(map[string]interface{}{
			"is_booked": false,
			"booked_by": nil,
			"booked_at": nil,
		})
	return result.RowsAffected, result.Error
}
