package repository

import (
	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChildRepository interface {
	Create(db *gorm.DB, child *entity.Child) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Child, error)
	// FindAll lists active children, scoped to one parent when parentID is set
	FindAll(db *gorm.DB, parentID *uuid.UUID) ([]entity.Child, error)
	CountActive(db *gorm.DB, parentID *uuid.UUID) (int64, error)
	Update(db *gorm.DB, child *entity.Child) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
