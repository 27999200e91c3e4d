package repository

import (
	"errors"
	"time"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorScheduleRepository struct{}

func NewDoctorScheduleRepository() domainRepo.DoctorScheduleRepository {
	return &doctorScheduleRepository{}
}

func orderedSlots(db *gorm.DB) *gorm.DB {
	return db.Order("start_time ASC, end_time ASC")
}

func (r *doctorScheduleRepository) Create(db *gorm.DB, schedule *entity.DoctorSchedule) error {
	return db.Omit("Doctor", "Slots").Create(schedule).Error
}

func (r *doctorScheduleRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoctorSchedule, error) {
	var schedule entity.DoctorSchedule
	err := db.Preload("Doctor").Preload("Slots", orderedSlots).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *doctorScheduleRepository) FindByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DoctorSchedule, error) {
	var schedule entity.DoctorSchedule
	err := db.Preload("Doctor").Preload("Slots", orderedSlots).
		Where("doctor_id = ? AND schedule_date = ?", doctorID, date).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *doctorScheduleRepository) FindByDoctor(db *gorm.DB, doctorID uuid.UUID, filter *entity.ScheduleFilter) ([]entity.DoctorSchedule, error) {
	var schedules []entity.DoctorSchedule
	query := db.Preload("Slots", orderedSlots).Where("doctor_id = ?", doctorID)

	if filter != nil {
		if filter.From != nil {
			query = query.Where("schedule_date >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("schedule_date <= ?", *filter.To)
		}
	}

	err := query.Order("schedule_date ASC").Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *doctorScheduleRepository) FindAvailableByDate(db *gorm.DB, date time.Time) ([]entity.DoctorSchedule, error) {
	var schedules []entity.DoctorSchedule
	err := db.Preload("Doctor").Preload("Slots", orderedSlots).
		Where("schedule_date = ? AND is_available = ?", date, true).
		Where("doctor_id IN (SELECT id FROM users WHERE role = ? AND is_active = ?)", entity.RoleDoctor, true).
		Order("created_at ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *doctorScheduleRepository) Update(db *gorm.DB, schedule *entity.DoctorSchedule) error {
	return db.Model(&entity.DoctorSchedule{}).
		Where("id = ?", schedule.ID).
		Updates(map[string]interface{}{
			"is_available": schedule.IsAvailable,
			"notes":        schedule.Notes,
		}).Error
}

func (r *doctorScheduleRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.DoctorSchedule{})
	return result.RowsAffected, result.Error
}
