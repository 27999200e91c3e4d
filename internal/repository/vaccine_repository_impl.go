package repository

import (
	"errors"
	"sort"

	"go-vaccination-booking/internal/domain/entity"
	domainRepo "go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type vaccineRepository struct{}

func NewVaccineRepository() domainRepo.VaccineRepository {
	return &vaccineRepository{}
}

func (r *vaccineRepository) Create(db *gorm.DB, vaccine *entity.Vaccine) error {
	return db.Create(vaccine).Error
}

func (r *vaccineRepository) CreateBatch(db *gorm.DB, vaccines []entity.Vaccine) error {
	if len(vaccines) == 0 {
		return nil
	}
	return db.Create(&vaccines).Error
}

func (r *vaccineRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Vaccine, error) {
	var vaccine entity.Vaccine
	err := db.Where("id = ?", id).First(&vaccine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vaccine, nil
}

// FindActive returns active definitions ordered by their first recommended
// age. Ages live in a JSON column, so ordering happens after the read.
func (r *vaccineRepository) FindActive(db *gorm.DB) ([]entity.Vaccine, error) {
	var vaccines []entity.Vaccine
	err := db.Where("is_active = ?", true).Order("name ASC").Find(&vaccines).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(vaccines, func(i, j int) bool {
		return vaccines[i].FirstAge() < vaccines[j].FirstAge()
	})
	return vaccines, nil
}

func (r *vaccineRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Vaccine{}).Count(&count).Error
	return count, err
}

func (r *vaccineRepository) Deactivate(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Vaccine{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
