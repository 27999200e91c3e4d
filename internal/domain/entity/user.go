package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the centralized authentication table
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role      Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Specialty string    `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Actor returns the identity used for authorization decisions
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
