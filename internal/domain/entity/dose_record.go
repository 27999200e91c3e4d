package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoseStatus represents the lifecycle state of a single dose
type DoseStatus string

const (
	DoseStatusScheduled DoseStatus = "scheduled"
	DoseStatusDelayed   DoseStatus = "delayed"
	DoseStatusCompleted DoseStatus = "completed"
	DoseStatusMissed    DoseStatus = "missed"
	DoseStatusCancelled DoseStatus = "cancelled"
)

// IsValid reports whether s is a known dose status
func (s DoseStatus) IsValid() bool {
	switch s {
	case DoseStatusScheduled, DoseStatusDelayed, DoseStatusCompleted, DoseStatusMissed, DoseStatusCancelled:
		return true
	}
	return false
}

// IsOpen is true while the dose still waits to be administered
func (s DoseStatus) IsOpen() bool {
	return s == DoseStatusScheduled || s == DoseStatusDelayed
}

// DoseRecord is one expected administration of one vaccine for one child
type DoseRecord struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_dose_records_child_vaccine_dose;index" json:"child_id"`
	VaccineID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_dose_records_child_vaccine_dose" json:"vaccine_id"`
	DoseNumber       int        `gorm:"not null;uniqueIndex:idx_dose_records_child_vaccine_dose" json:"dose_number"`
	ScheduledDate    time.Time  `gorm:"type:date;not null;index" json:"scheduled_date"`
	AdministeredDate *time.Time `json:"administered_date,omitempty"`
	DoctorID         *uuid.UUID `gorm:"type:uuid" json:"doctor_id,omitempty"`
	Status           DoseStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
	BatchNumber      string     `gorm:"type:varchar(100)" json:"batch_number,omitempty"`
	Version          int        `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Child   *Child   `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	Vaccine *Vaccine `gorm:"foreignKey:VaccineID" json:"vaccine,omitempty"`
	Doctor  *User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoseRecord) TableName() string {
	return "dose_records"
}

func (d *DoseRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Version == 0 {
		d.Version = 1
	}
	return nil
}

// CanTransitionTo reports whether a requested status change is allowed.
// scheduled -> delayed is reserved for the overdue scan and is not
// accepted here.
func (d *DoseRecord) CanTransitionTo(next DoseStatus) bool {
	if !d.Status.IsOpen() {
		return false
	}
	switch next {
	case DoseStatusCompleted, DoseStatusMissed, DoseStatusCancelled:
		return true
	}
	return false
}

// IsOverdue is true when a scheduled dose is past its date
func (d *DoseRecord) IsOverdue(now time.Time) bool {
	return d.Status == DoseStatusScheduled && d.ScheduledDate.Before(now)
}

// DoseUpdate carries the fields written by a status transition
type DoseUpdate struct {
	Status           DoseStatus
	AdministeredDate *time.Time
	DoctorID         *uuid.UUID
	Notes            *string
	BatchNumber      *string
}

// DoseFilter narrows dose record queries
type DoseFilter struct {
	ChildID  *uuid.UUID
	ParentID *uuid.UUID
	Statuses []DoseStatus
	From     *time.Time
	Before   *time.Time
	Limit    int
}

// DoseStatusCount is one row of a grouped status count
type DoseStatusCount struct {
	Status DoseStatus
	Total  int64
}

// VaccinationStats is the dashboard summary over a visible set of children.
// CompletionRate is a whole percentage of completed over open and completed doses.
type VaccinationStats struct {
	TotalChildren      int64
	CompletedThisMonth int64
	Scheduled          int64
	Delayed            int64
	Completed          int64
	Missed             int64
	Cancelled          int64
	CompletionRate     int64
}
