package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vaccine is a catalog entry of the national vaccination calendar.
// Definitions are never hard-deleted; IsActive=false retires them.
type Vaccine struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	Description       string    `gorm:"type:text" json:"description,omitempty"`
	RecommendedAges   MonthList `gorm:"type:jsonb;not null" json:"recommended_ages"`
	TotalDoses        int       `gorm:"not null" json:"total_doses"`
	IsMandatory       bool      `gorm:"not null" json:"is_mandatory"`
	SideEffects       string    `gorm:"type:text" json:"side_effects,omitempty"`
	Contraindications string    `gorm:"type:text" json:"contraindications,omitempty"`
	IsActive          bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vaccine) TableName() string {
	return "vaccines"
}

func (v *Vaccine) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

var (
	ErrDoseCountMismatch = errors.New("total doses must equal the number of recommended ages")
	ErrNegativeAge       = errors.New("recommended ages must not be negative")
)

// Validate checks the calendar invariants of a definition
func (v *Vaccine) Validate() error {
	if v.TotalDoses != len(v.RecommendedAges) {
		return ErrDoseCountMismatch
	}
	for _, age := range v.RecommendedAges {
		if age < 0 {
			return ErrNegativeAge
		}
	}
	return nil
}

// FirstAge returns the earliest recommended age, used for catalog ordering
func (v *Vaccine) FirstAge() int {
	if len(v.RecommendedAges) == 0 {
		return -1
	}
	return v.RecommendedAges[0]
}

// MonthList is an ordered list of ages in months stored as a JSON array.
// Order is significant: index i is dose i+1. Duplicates are allowed.
type MonthList []int

// Value returns json value, implement driver.Valuer interface
func (m MonthList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan scan value into MonthList, implements sql.Scanner interface
func (m *MonthList) Scan(value interface{}) error {
	if value == nil {
		*m = MonthList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal month list value: %v", value)
	}

	var result []int
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*m = MonthList(result)
	return nil
}
