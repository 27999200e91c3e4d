package repository

import (
	"errors"
	"time"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const childrenOfParent = "dose_records.child_id IN (SELECT id FROM children WHERE parent_id = ?)"

type doseRecordRepository struct{}

func NewDoseRecordRepository() domainRepo.DoseRecordRepository {
	return &doseRecordRepository{}
}

func (r *doseRecordRepository) CreateBatch(db *gorm.DB, records []entity.DoseRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.Omit("Child", "Vaccine", "Doctor").CreateInBatches(&records, 100).Error
}

func (r *doseRecordRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoseRecord, error) {
	var record entity.DoseRecord
	err := db.Preload("Vaccine").Preload("Child").Preload("Doctor").Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *doseRecordRepository) FindAll(db *gorm.DB, filter entity.DoseFilter) ([]entity.DoseRecord, error) {
	var records []entity.DoseRecord
	query := db.Preload("Vaccine").Preload("Child").Preload("Doctor")

	if filter.ChildID != nil {
		query = query.Where("dose_records.child_id = ?", *filter.ChildID)
	}
	if filter.ParentID != nil {
		query = query.Where(childrenOfParent, *filter.ParentID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("dose_records.status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("dose_records.scheduled_date >= ?", *filter.From)
	}
	if filter.Before != nil {
		query = query.Where("dose_records.scheduled_date < ?", *filter.Before)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("dose_records.scheduled_date ASC, dose_records.dose_number ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *doseRecordRepository) UpdateVersioned(db *gorm.DB, record *entity.DoseRecord, upd entity.DoseUpdate) (int64, error) {
	updates := map[string]interface{}{
		"status":  upd.Status,
		"version": gorm.Expr("version + 1"),
	}
	if upd.AdministeredDate != nil {
		updates["administered_date"] = *upd.AdministeredDate
	}
	if upd.DoctorID != nil {
		updates["doctor_id"] = *upd.DoctorID
	}
	if upd.Notes != nil {
		updates["notes"] = *upd.Notes
	}
	if upd.BatchNumber != nil {
		updates["batch_number"] = *upd.BatchNumber
	}

	result := db.Model(&entity.DoseRecord{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *doseRecordRepository) MarkOverdue(db *gorm.DB, now time.Time, childID *uuid.UUID) (int64, error) {
	query := db.Model(&entity.DoseRecord{}).
		Where("status = ? AND scheduled_date < ?", entity.DoseStatusScheduled, now)
	if childID != nil {
		query = query.Where("child_id = ?", *childID)
	}
	result := query.Update("status", entity.DoseStatusDelayed)
	return result.RowsAffected, result.Error
}

func (r *doseRecordRepository) CountByStatus(db *gorm.DB, parentID *uuid.UUID) ([]entity.DoseStatusCount, error) {
	var counts []entity.DoseStatusCount
	query := db.Model(&entity.DoseRecord{}).Select("dose_records.status AS status, COUNT(*) AS total")
	if parentID != nil {
		query = query.Where(childrenOfParent, *parentID)
	}
	err := query.Group("dose_records.status").Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *doseRecordRepository) CountCompletedSince(db *gorm.DB, parentID *uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := db.Model(&entity.DoseRecord{}).
		Where("dose_records.status = ? AND dose_records.administered_date >= ?", entity.DoseStatusCompleted, since)
	if parentID != nil {
		query = query.Where(childrenOfParent, *parentID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *doseRecordRepository) DeleteByChild(db *gorm.DB, childID uuid.UUID) (int64, error) {
	result := db.Where("child_id = ?", childID).Delete(&entity.DoseRecord{})
	return result.RowsAffected, result.Error
}
