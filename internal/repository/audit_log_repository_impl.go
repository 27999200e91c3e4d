package repository

import (
	"errors"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Omit("User").Create(log).Error
}

func (r *auditLogRepository) FindAll(db *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := db.Preload("User")
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Order("created_at DESC, id DESC").Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.Preload("User").Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
