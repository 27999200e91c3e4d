package converter

import (
	"testing"
	"time"

	"go-vaccination-booking/internal/domain/entity"

	"github.com/google/uuid"
)

func TestChildToResponse_AgeInMonths(t *testing.T) {
	child := &entity.Child{
		ID:        uuid.New(),
		Name:      "Ana",
		BirthDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		Parent:    &entity.User{FullName: "Maria"},
	}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"birth day", time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC), 0},
		{"day before month boundary", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 0},
		{"two months", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), 2},
		{"one year", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChildToResponse(child, tt.now)
			if got.AgeMonths != tt.want {
				t.Errorf("AgeMonths = %d, want %d", got.AgeMonths, tt.want)
			}
			if got.BirthDate != "2024-01-31" {
				t.Errorf("BirthDate = %q", got.BirthDate)
			}
			if got.ParentName != "Maria" {
				t.Errorf("ParentName = %q", got.ParentName)
			}
		})
	}
}

func TestScheduleToResponse_CountsAvailableSlots(t *testing.T) {
	parent := uuid.New()
	schedule := &entity.DoctorSchedule{
		ID:           uuid.New(),
		ScheduleDate: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		IsAvailable:  true,
		Slots: []entity.AvailabilitySlot{
			{StartTime: "09:00", EndTime: "09:30"},
			{StartTime: "09:30", EndTime: "10:00", IsBooked: true, BookedBy: &parent},
		},
	}

	got := ScheduleToResponse(schedule)
	if got.AvailableCount != 1 {
		t.Errorf("AvailableCount = %d, want 1", got.AvailableCount)
	}
	if len(got.Slots) != 2 {
		t.Errorf("len(Slots) = %d, want 2", len(got.Slots))
	}
	if got.Doctor != nil {
		t.Error("Doctor should be omitted when not loaded")
	}
	if got.Date != "2025-03-03" {
		t.Errorf("Date = %q", got.Date)
	}
}

func TestAuditLogToResponse_WithoutUser(t *testing.T) {
	got := AuditLogToResponse(&entity.AuditLog{ID: 7, Action: entity.AuditActionSlotBook})
	if got.User != nil {
		t.Error("User should be nil for system entries")
	}
	if got.ID != 7 {
		t.Errorf("ID = %d", got.ID)
	}
}
