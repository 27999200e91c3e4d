package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Child is a registered child owned by a parent account
type Child struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"parent_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	BirthDate time.Time `gorm:"type:date;not null" json:"birth_date"`
	Gender    string    `gorm:"type:varchar(10);not null" json:"gender"`
	BloodType string    `gorm:"type:varchar(3)" json:"blood_type,omitempty"`
	Allergies string    `gorm:"type:text" json:"allergies,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Parent *User `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

func (Child) TableName() string {
	return "children"
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether the parent account owns this child
func (c *Child) IsOwnedBy(userID uuid.UUID) bool {
	return c.ParentID == userID
}

// CanBeViewedBy allows the owning parent and any staff member
func (c *Child) CanBeViewedBy(actor Actor) bool {
	return actor.IsStaff() || c.IsOwnedBy(actor.ID)
}

// AgeInMonths returns the number of whole months lived at now
func (c *Child) AgeInMonths(now time.Time) int {
	months := (now.Year()-c.BirthDate.Year())*12 + int(now.Month()) - int(c.BirthDate.Month())
	if now.Day() < c.BirthDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
