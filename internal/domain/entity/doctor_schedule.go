package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorSchedule is a doctor's availability for one calendar date.
// (doctor_id, schedule_date) is unique.
type DoctorSchedule struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_doctor_schedules_doctor_date" json:"doctor_id"`
	ScheduleDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_doctor_schedules_doctor_date;index" json:"schedule_date"`
	IsAvailable  bool      `gorm:"not null" json:"is_available"`
	Notes        string    `gorm:"type:varchar(500)" json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor *User              `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Slots  []AvailabilitySlot `gorm:"foreignKey:ScheduleID" json:"slots,omitempty"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}

func (s *DoctorSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether the doctor owns this schedule
func (s *DoctorSchedule) IsOwnedBy(doctorID uuid.UUID) bool {
	return s.DoctorID == doctorID
}

// AvailableSlots returns the unbooked slots of the loaded schedule
func (s *DoctorSchedule) AvailableSlots() []AvailabilitySlot {
	slots := make([]AvailabilitySlot, 0, len(s.Slots))
	for _, slot := range s.Slots {
		if !slot.IsBooked {
			slots = append(slots, slot)
		}
	}
	return slots
}

// HasBookedSlots is true when any loaded slot is reserved
func (s *DoctorSchedule) HasBookedSlots() bool {
	for _, slot := range s.Slots {
		if slot.IsBooked {
			return true
		}
	}
	return false
}

// AvailabilitySlot is a bookable time window of a schedule.
// IsBooked is true exactly when BookedBy is set.
type AvailabilitySlot struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID uuid.UUID  `gorm:"type:uuid;not null;index" json:"schedule_id"`
	StartTime  string     `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime    string     `gorm:"type:varchar(5);not null" json:"end_time"`
	IsBooked   bool       `gorm:"not null;default:false;index" json:"is_booked"`
	BookedBy   *uuid.UUID `gorm:"type:uuid;index" json:"booked_by,omitempty"`
	BookedAt   *time.Time `json:"booked_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsBookedBy reports whether userID holds the reservation
func (s *AvailabilitySlot) IsBookedBy(userID uuid.UUID) bool {
	return s.IsBooked && s.BookedBy != nil && *s.BookedBy == userID
}

// Overlaps reports whether the half-open window [start, end) shares any time
// with the slot. Times are zero-padded HH:MM, so they compare as strings.
func (s *AvailabilitySlot) Overlaps(start, end string) bool {
	return start < s.EndTime && s.StartTime < end
}

// SlotWindow is a requested slot time range in HH:MM
type SlotWindow struct {
	StartTime string
	EndTime   string
}

// DoctorAvailability is a doctor with the unbooked slots of one date
type DoctorAvailability struct {
	Doctor         User
	Schedule       DoctorSchedule
	AvailableSlots []AvailabilitySlot
	TotalSlots     int
}
