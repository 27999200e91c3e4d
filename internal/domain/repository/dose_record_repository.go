package repository

import (
	"time"

	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoseRecordRepository interface {
	CreateBatch(db *gorm.DB, records []entity.DoseRecord) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoseRecord, error)
	FindAll(db *gorm.DB, filter entity.DoseFilter) ([]entity.DoseRecord, error)
	// UpdateVersioned applies upd only if the stored version still equals
	// record.Version. Zero rows affected means a concurrent writer won.
	UpdateVersioned(db *gorm.DB, record *entity.DoseRecord, upd entity.DoseUpdate) (int64, error)
	// MarkOverdue moves scheduled doses dated before now to delayed
	MarkOverdue(db *gorm.DB, now time.Time, childID *uuid.UUID) (int64, error)
	CountByStatus(db *gorm.DB, parentID *uuid.UUID) ([]entity.DoseStatusCount, error)
	CountCompletedSince(db *gorm.DB, parentID *uuid.UUID, since time.Time) (int64, error)
	DeleteByChild(db *gorm.DB, childID uuid.UUID) (int64, error)
}
