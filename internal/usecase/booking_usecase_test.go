package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/testutil"
	"go-vaccination-booking/pkg/apperror"

	"github.com/google/uuid"
)

func TestBookSlotConcurrentAttempts(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	slot := f.slot(t, schedule, "09:00")

	const attempts = 8
	parents := make([]entity.Actor, attempts)
	for i := range parents {
		parents[i] = f.actor(t, entity.RoleParent, "parent")
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range parents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.bookings.BookSlot(context.Background(), parents[i], schedule.ID, slot.ID, nil)
		}(i)
	}
	wg.Wait()

	var winner *entity.Actor
	for i, err := range errs {
		switch {
		case err == nil:
			if winner != nil {
				t.Fatalf("more than one booking succeeded")
			}
			winner = &parents[i]
		case err != ErrSlotAlreadyBooked:
			t.Errorf("attempt %d error = %v, want %v", i, err, ErrSlotAlreadyBooked)
		}
	}
	if winner == nil {
		t.Fatalf("no booking succeeded")
	}

	stored := f.storedSlot(t, slot.ID)
	if !stored.IsBooked || stored.BookedBy == nil || *stored.BookedBy != winner.ID {
		t.Errorf("slot = %+v, want booked by %s", stored, winner.ID)
	}
}

func TestBookSlotErrors(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	other := f.actor(t, entity.RoleParent, "other")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	slot := f.slot(t, schedule, "09:00")
	othersChild := f.addChild(t, other, "2024-06-01")

	closed := false
	unavailable, err := f.schedules.UpsertSchedule(context.Background(), doctor, &dto.UpsertScheduleRequest{
		Date:        "2024-06-21",
		Slots:       []dto.SlotRequest{{StartTime: "10:00", EndTime: "10:30"}},
		IsAvailable: &closed,
	})
	if err != nil {
		t.Fatalf("UpsertSchedule() error = %v", err)
	}

	tests := []struct {
		name       string
		actor      entity.Actor
		scheduleID uuid.UUID
		slotID     uuid.UUID
		req        *dto.BookSlotRequest
		want       error
	}{
		{name: "doctor cannot book", actor: doctor, scheduleID: schedule.ID, slotID: slot.ID, want: ErrParentOnly},
		{name: "unknown schedule", actor: parent, scheduleID: uuid.New(), slotID: slot.ID, want: ErrScheduleNotFound},
		{name: "unknown slot", actor: parent, scheduleID: schedule.ID, slotID: uuid.New(), want: ErrSlotNotFound},
		{name: "schedule closed", actor: parent, scheduleID: unavailable.ID, slotID: slot.ID, want: ErrScheduleUnavailable},
		{
			name:       "child of another parent",
			actor:      parent,
			scheduleID: schedule.ID,
			slotID:     slot.ID,
			req:        &dto.BookSlotRequest{ChildID: &othersChild.Child.ID},
			want:       ErrChildAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.BookSlot(context.Background(), tt.actor, tt.scheduleID, tt.slotID, tt.req)
			if err != tt.want {
				t.Errorf("BookSlot() error = %v, want %v", err, tt.want)
			}
		})
	}

	if stored := f.storedSlot(t, slot.ID); stored.IsBooked {
		t.Errorf("failed attempts left the slot booked")
	}
}

func TestBookSlotWithChildCreatesAppointment(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	created := f.addChild(t, parent, "2024-06-01")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30", "09:30", "10:00")
	slot := f.slot(t, schedule, "09:30")

	// warm the cache so the booking has something to invalidate
	if _, err := f.schedules.GetAvailableDoctors(context.Background(), "2024-06-20"); err != nil {
		t.Fatalf("GetAvailableDoctors() error = %v", err)
	}

	resp, err := f.bookings.BookSlot(context.Background(), parent, schedule.ID, slot.ID, &dto.BookSlotRequest{ChildID: &created.Child.ID})
	if err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}

	if resp.Appointment == nil {
		t.Fatalf("no appointment created")
	}
	if resp.Appointment.Status != string(entity.AppointmentStatusPending) || resp.Appointment.Time != "09:30" || resp.Appointment.Date != "2024-06-20" {
		t.Errorf("appointment = %+v", resp.Appointment)
	}
	if resp.Schedule.AvailableCount != 1 {
		t.Errorf("AvailableCount = %d, want 1", resp.Schedule.AvailableCount)
	}
	if !resp.Slot.IsBooked {
		t.Errorf("returned slot is not booked")
	}
	if _, ok := f.cache.Get(context.Background(), testutil.Date(2024, time.June, 20)); ok {
		t.Errorf("availability cache still holds 2024-06-20")
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	otherDoctor := f.actor(t, entity.RoleDoctor, "other-doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	other := f.actor(t, entity.RoleParent, "other")
	created := f.addChild(t, parent, "2024-06-01")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	slot := f.slot(t, schedule, "09:00")

	booking, err := f.bookings.BookSlot(context.Background(), parent, schedule.ID, slot.ID, &dto.BookSlotRequest{ChildID: &created.Child.ID})
	if err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}

	for _, actor := range []entity.Actor{other, otherDoctor} {
		if _, err := f.bookings.CancelBooking(context.Background(), actor, schedule.ID, slot.ID); err != ErrBookingAccessDenied {
			t.Errorf("CancelBooking(%s) error = %v, want %v", actor.Role, err, ErrBookingAccessDenied)
		}
	}

	resp, err := f.bookings.CancelBooking(context.Background(), doctor, schedule.ID, slot.ID)
	if err != nil {
		t.Fatalf("CancelBooking() error = %v", err)
	}
	if resp.AvailableCount != 1 {
		t.Errorf("AvailableCount = %d, want 1", resp.AvailableCount)
	}

	var appointment entity.Appointment
	if err := f.db.First(&appointment, "id = ?", booking.Appointment.ID).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if appointment.Status != entity.AppointmentStatusCancelled {
		t.Errorf("appointment status = %s, want cancelled", appointment.Status)
	}

	// a second cancel on the now free slot succeeds without changes
	again, err := f.bookings.CancelBooking(context.Background(), other, schedule.ID, slot.ID)
	if err != nil {
		t.Fatalf("repeated CancelBooking() error = %v", err)
	}
	if again.AvailableCount != 1 {
		t.Errorf("AvailableCount = %d, want 1", again.AvailableCount)
	}

	if _, err := f.bookings.CancelBooking(context.Background(), parent, schedule.ID, uuid.New()); !apperror.Is(err, apperror.KindNotFound) {
		t.Errorf("unknown slot error = %v, want not found", err)
	}
}
