package repository

import (
	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VaccineRepository interface {
	Create(db *gorm.DB, vaccine *entity.Vaccine) error
	CreateBatch(db *gorm.DB, vaccines []entity.Vaccine) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Vaccine, error)
	FindActive(db *gorm.DB) ([]entity.Vaccine, error)
	Count(db *gorm.DB) (int64, error)
	Deactivate(db *gorm.DB, id uuid.UUID) (int64, error)
}
