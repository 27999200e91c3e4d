package usecase

import (
	"context"
	"testing"
	"time"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/testutil"
	"go-vaccination-booking/pkg/apperror"
)

func TestParseSlotWindows(t *testing.T) {
	tests := []struct {
		name     string
		slots    []dto.SlotRequest
		wantErr  bool
		wantKind apperror.Kind
	}{
		{name: "valid", slots: []dto.SlotRequest{{StartTime: "09:00", EndTime: "09:30"}, {StartTime: "09:30", EndTime: "10:00"}}},
		{name: "bad clock", slots: []dto.SlotRequest{{StartTime: "9am", EndTime: "09:30"}}, wantErr: true, wantKind: apperror.KindValidation},
		{name: "end before start", slots: []dto.SlotRequest{{StartTime: "10:00", EndTime: "09:30"}}, wantErr: true, wantKind: apperror.KindValidation},
		{name: "empty window", slots: []dto.SlotRequest{{StartTime: "10:00", EndTime: "10:00"}}, wantErr: true, wantKind: apperror.KindValidation},
		{
			name:     "duplicate window",
			slots:    []dto.SlotRequest{{StartTime: "09:00", EndTime: "09:30"}, {StartTime: "09:00", EndTime: "09:30"}},
			wantErr:  true,
			wantKind: apperror.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, err := parseSlotWindows(tt.slots)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSlotWindows() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperror.Is(err, tt.wantKind) {
					t.Errorf("error kind = %s, want %s", apperror.KindOf(err), tt.wantKind)
				}
				return
			}
			if len(windows) != len(tt.slots) {
				t.Errorf("got %d windows, want %d", len(windows), len(tt.slots))
			}
		})
	}
}

func TestUpsertScheduleKeepsBookedSlots(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30", "09:30", "10:00")
	booked := f.slot(t, schedule, "09:00")

	if _, err := f.bookings.BookSlot(context.Background(), parent, schedule.ID, booked.ID, nil); err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}

	// resubmitting the booked window next to a new one must not duplicate it
	updated := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30", "11:00", "11:30")

	if updated.ID != schedule.ID {
		t.Errorf("upsert created a new schedule %s", updated.ID)
	}
	if len(updated.Slots) != 2 {
		t.Fatalf("got %d slots, want 2: %+v", len(updated.Slots), updated.Slots)
	}
	kept := f.slot(t, updated, "09:00")
	if kept.ID != booked.ID || !kept.IsBooked {
		t.Errorf("booked slot = %+v, want %s still booked", kept, booked.ID)
	}
	f.slot(t, updated, "11:00")
	if updated.AvailableCount != 1 {
		t.Errorf("AvailableCount = %d, want 1", updated.AvailableCount)
	}
}

func TestUpsertScheduleWithoutSlotsKeepsSlots(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")

	closed := false
	notes := "training day"
	resp, err := f.schedules.UpsertSchedule(context.Background(), doctor, &dto.UpsertScheduleRequest{
		Date:        "2024-06-20",
		IsAvailable: &closed,
		Notes:       &notes,
	})
	if err != nil {
		t.Fatalf("UpsertSchedule() error = %v", err)
	}
	if resp.IsAvailable || resp.Notes != "training day" {
		t.Errorf("schedule = %+v", resp)
	}
	if len(resp.Slots) != 1 {
		t.Errorf("got %d slots, want 1", len(resp.Slots))
	}

	slots, err := f.schedules.GetAvailableSlots(context.Background(), doctor.ID, "2024-06-20")
	if err != nil {
		t.Fatalf("GetAvailableSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("closed schedule offers %d slots", len(slots))
	}
}

func TestUpsertScheduleNotes(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")

	training := "training day"
	empty := ""

	tests := []struct {
		name  string
		notes *string
		want  string
	}{
		{name: "set on create", notes: &training, want: "training day"},
		{name: "omitted keeps notes", notes: nil, want: "training day"},
		{name: "empty clears notes", notes: &empty, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.schedules.UpsertSchedule(context.Background(), doctor, &dto.UpsertScheduleRequest{
				Date:  "2024-06-20",
				Notes: tt.notes,
			})
			if err != nil {
				t.Fatalf("UpsertSchedule() error = %v", err)
			}
			if resp.Notes != tt.want {
				t.Errorf("notes = %q, want %q", resp.Notes, tt.want)
			}

			stored, err := f.schedules.GetSchedule(context.Background(), resp.ID)
			if err != nil {
				t.Fatalf("GetSchedule() error = %v", err)
			}
			if stored.Notes != tt.want {
				t.Errorf("stored notes = %q, want %q", stored.Notes, tt.want)
			}
		})
	}
}

func TestUpsertScheduleSkipsWindowsOverlappingBookedSlots(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")

	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	booked := f.slot(t, schedule, "09:00")
	if _, err := f.bookings.BookSlot(context.Background(), parent, schedule.ID, booked.ID, nil); err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}

	resp := f.addSchedule(t, doctor, "2024-06-20",
		"08:30", "09:00",
		"09:00", "10:00",
		"09:15", "09:45",
		"11:00", "11:30",
	)

	want := map[string]bool{"08:30": false, "09:00": true, "11:00": false}
	if len(resp.Slots) != len(want) {
		t.Fatalf("got %d slots %+v, want %d", len(resp.Slots), resp.Slots, len(want))
	}
	for _, slot := range resp.Slots {
		isBooked, ok := want[slot.StartTime]
		if !ok {
			t.Errorf("unexpected slot %s-%s", slot.StartTime, slot.EndTime)
			continue
		}
		if slot.IsBooked != isBooked {
			t.Errorf("slot %s booked = %v, want %v", slot.StartTime, slot.IsBooked, isBooked)
		}
	}
	if got := f.slot(t, resp, "09:00"); got.ID != booked.ID || got.EndTime != "09:30" {
		t.Errorf("booked slot = %+v, want %s 09:00-09:30", got, booked.ID)
	}
}

func TestDeleteSchedule(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	otherDoctor := f.actor(t, entity.RoleDoctor, "other-doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	admin := f.actor(t, entity.RoleAdmin, "admin")

	busy := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30", "09:30", "10:00")
	if _, err := f.bookings.BookSlot(context.Background(), parent, busy.ID, f.slot(t, busy, "09:00").ID, nil); err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}

	if err := f.schedules.DeleteSchedule(context.Background(), otherDoctor, busy.ID); err != ErrScheduleAccessDenied {
		t.Errorf("other doctor error = %v, want %v", err, ErrScheduleAccessDenied)
	}
	if err := f.schedules.DeleteSchedule(context.Background(), doctor, busy.ID); err != ErrScheduleHasBookings {
		t.Fatalf("DeleteSchedule() error = %v, want %v", err, ErrScheduleHasBookings)
	}

	// the failed deletion rolled back, so the free slot is still offered
	still, err := f.schedules.GetSchedule(context.Background(), busy.ID)
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}
	if len(still.Slots) != 2 {
		t.Errorf("got %d slots after failed delete, want 2", len(still.Slots))
	}

	quiet := f.addSchedule(t, doctor, "2024-06-21", "09:00", "09:30")
	if err := f.schedules.DeleteSchedule(context.Background(), admin, quiet.ID); err != nil {
		t.Fatalf("DeleteSchedule() error = %v", err)
	}
	if _, err := f.schedules.GetSchedule(context.Background(), quiet.ID); err != ErrScheduleNotFound {
		t.Errorf("deleted schedule error = %v, want %v", err, ErrScheduleNotFound)
	}
	if !f.cache.wasInvalidated("2024-06-21") {
		t.Errorf("availability for 2024-06-21 not invalidated")
	}
}

func TestGetAvailableDoctors(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	open := f.actor(t, entity.RoleDoctor, "open")
	full := f.actor(t, entity.RoleDoctor, "full")
	parent := f.actor(t, entity.RoleParent, "parent")

	f.addSchedule(t, open, "2024-06-20", "09:00", "09:30", "09:30", "10:00")
	fullSchedule := f.addSchedule(t, full, "2024-06-20", "09:00", "09:30")
	if _, err := f.bookings.BookSlot(context.Background(), parent, fullSchedule.ID, f.slot(t, fullSchedule, "09:00").ID, nil); err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}

	doctors, err := f.schedules.GetAvailableDoctors(context.Background(), "2024-06-20")
	if err != nil {
		t.Fatalf("GetAvailableDoctors() error = %v", err)
	}
	if len(doctors) != 1 || doctors[0].Doctor.ID != open.ID {
		t.Fatalf("available doctors = %+v, want only %s", doctors, open.ID)
	}
	if doctors[0].Schedule.AvailableCount != 2 || doctors[0].Schedule.TotalSlots != 2 {
		t.Errorf("schedule = %+v", doctors[0].Schedule)
	}

	if _, ok := f.cache.Get(context.Background(), testutil.Date(2024, time.June, 20)); !ok {
		t.Errorf("result was not cached")
	}

	if _, err := f.schedules.GetAvailableDoctors(context.Background(), "20-06-2024"); err != ErrInvalidScheduleDate {
		t.Errorf("bad date error = %v, want %v", err, ErrInvalidScheduleDate)
	}
}

func TestGetAvailableDoctorsDropsSnapshotInvalidatedDuringLoad(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")

	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	slot := f.slot(t, schedule, "09:00")

	// the booking commits after the read loaded the free slot but before
	// the snapshot reaches the cache
	f.cache.beforeSet = func() {
		if _, err := f.bookings.BookSlot(context.Background(), parent, schedule.ID, slot.ID, nil); err != nil {
			t.Errorf("BookSlot() error = %v", err)
		}
	}

	doctors, err := f.schedules.GetAvailableDoctors(context.Background(), "2024-06-20")
	if err != nil {
		t.Fatalf("GetAvailableDoctors() error = %v", err)
	}
	if len(doctors) != 1 {
		t.Fatalf("first read = %d doctors, want 1", len(doctors))
	}

	if _, ok := f.cache.Get(context.Background(), testutil.Date(2024, time.June, 20)); ok {
		t.Errorf("stale snapshot was cached after invalidation")
	}

	doctors, err = f.schedules.GetAvailableDoctors(context.Background(), "2024-06-20")
	if err != nil {
		t.Fatalf("GetAvailableDoctors() error = %v", err)
	}
	if len(doctors) != 0 {
		t.Errorf("second read = %+v, want no doctors", doctors)
	}
}

func TestGetMySchedulesDefaultsToToday(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	f.addSchedule(t, doctor, "2024-06-10", "09:00", "09:30")
	f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")

	if _, err := f.schedules.GetMySchedules(context.Background(), parent, "", ""); err != ErrDoctorOnly {
		t.Fatalf("parent GetMySchedules() error = %v, want %v", err, ErrDoctorOnly)
	}

	upcoming, err := f.schedules.GetMySchedules(context.Background(), doctor, "", "")
	if err != nil {
		t.Fatalf("GetMySchedules() error = %v", err)
	}
	if upcoming.Total != 1 || upcoming.Schedules[0].Date != "2024-06-20" {
		t.Errorf("upcoming = %+v, want only 2024-06-20", upcoming.Schedules)
	}

	all, err := f.schedules.GetDoctorSchedules(context.Background(), doctor.ID, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("GetDoctorSchedules() error = %v", err)
	}
	if all.Total != 2 {
		t.Errorf("got %d schedules, want 2", all.Total)
	}
}
