package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment request
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentType is the purpose of a visit
type AppointmentType string

const (
	AppointmentTypeVaccination  AppointmentType = "vaccination"
	AppointmentTypeCheckup      AppointmentType = "checkup"
	AppointmentTypeConsultation AppointmentType = "consultation"
)

// Appointment is a parent's request to see a doctor for a child
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"child_id"`
	ParentID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"parent_id"`
	DoctorID        *uuid.UUID        `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	ScheduleID      *uuid.UUID        `gorm:"type:uuid" json:"schedule_id,omitempty"`
	SlotID          *uuid.UUID        `gorm:"type:uuid;index" json:"slot_id,omitempty"`
	ScheduledDate   time.Time         `gorm:"type:date;not null;index" json:"scheduled_date"`
	ScheduledTime   string            `gorm:"type:varchar(5);not null" json:"scheduled_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Type            AppointmentType   `gorm:"type:varchar(20);not null;default:'vaccination'" json:"type"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	RejectionReason string            `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Child  *Child `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	Parent *User  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Doctor *User  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsPending checks if appointment is in pending status
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsConfirmed checks if appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// IsTerminal is true once no further transition is possible
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusRejected, AppointmentStatusCancelled:
		return true
	}
	return false
}

// HasSlot reports whether a slot reservation is bound to the appointment
func (a *Appointment) HasSlot() bool {
	return a.ScheduleID != nil && a.SlotID != nil
}

// IsAssignedTo reports whether the appointment is assigned to doctorID
func (a *Appointment) IsAssignedTo(doctorID uuid.UUID) bool {
	return a.DoctorID != nil && *a.DoctorID == doctorID
}

// CanBeViewedBy allows the requesting parent, the assigned doctor, any doctor
// for unassigned requests, and admins
func (a *Appointment) CanBeViewedBy(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleDoctor:
		return a.DoctorID == nil || a.IsAssignedTo(actor.ID)
	default:
		return a.ParentID == actor.ID
	}
}

// AppointmentFilter narrows appointment queries
type AppointmentFilter struct {
	ChildID  *uuid.UUID
	SlotID   *uuid.UUID
	ParentID *uuid.UUID
	DoctorID *uuid.UUID
	// IncludeUnassigned adds requests without a doctor to a DoctorID filter
	IncludeUnassigned bool
	Statuses          []AppointmentStatus
	Date              *time.Time
}
