package repository

import (
	"errors"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type childRepository struct{}

func NewChildRepository() domainRepo.ChildRepository {
	return &childRepository{}
}

func (r *childRepository) Create(db *gorm.DB, child *entity.Child) error {
	return db.Omit("Parent").Create(child).Error
}

func (r *childRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Child, error) {
	var child entity.Child
	err := db.Preload("Parent").Where("id = ?", id).First(&child).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &child, nil
}

func (r *childRepository) FindAll(db *gorm.DB, parentID *uuid.UUID) ([]entity.Child, error) {
	var children []entity.Child
	query := db.Preload("Parent").Where("is_active = ?", true)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Order("birth_date DESC").Find(&children).Error
	if err != nil {
		return nil, err
	}
	return children, nil
}

func (r *childRepository) CountActive(db *gorm.DB, parentID *uuid.UUID) (int64, error) {
	var count int64
	query := db.Model(&entity.Child{}).Where("is_active = ?", true)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *childRepository) Update(db *gorm.DB, child *entity.Child) error {
	return db.Omit("Parent").Save(child).Error
}

func (r *childRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Child{})
	return result.RowsAffected, result.Error
}
