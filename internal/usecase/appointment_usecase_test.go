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

func TestAppointmentConfirmWithSlotAndComplete(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	otherDoctor := f.actor(t, entity.RoleDoctor, "other-doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	created := f.addChild(t, parent, "2024-06-01")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	slot := f.slot(t, schedule, "09:00")

	requested, err := f.appointments.CreateAppointment(context.Background(), parent, &dto.CreateAppointmentRequest{
		ChildID: created.Child.ID,
		Date:    "2024-06-20",
		Time:    "09:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if requested.Status != string(entity.AppointmentStatusPending) || requested.DoctorID != nil {
		t.Fatalf("requested = %+v", requested)
	}

	if _, err := f.appointments.CompleteAppointment(context.Background(), doctor, requested.ID); !apperror.Is(err, apperror.KindInvalidTransition) {
		t.Errorf("complete pending error = %v, want invalid transition", err)
	}
	if _, err := f.appointments.ConfirmAppointment(context.Background(), otherDoctor, requested.ID, &dto.ConfirmAppointmentRequest{
		ScheduleID: &schedule.ID,
		SlotID:     &slot.ID,
	}); err != ErrScheduleAccessDenied {
		t.Errorf("confirm on foreign schedule error = %v, want %v", err, ErrScheduleAccessDenied)
	}

	confirmed, err := f.appointments.ConfirmAppointment(context.Background(), doctor, requested.ID, &dto.ConfirmAppointmentRequest{
		ScheduleID: &schedule.ID,
		SlotID:     &slot.ID,
	})
	if err != nil {
		t.Fatalf("ConfirmAppointment() error = %v", err)
	}
	if confirmed.Status != string(entity.AppointmentStatusConfirmed) || confirmed.DoctorID == nil || *confirmed.DoctorID != doctor.ID {
		t.Errorf("confirmed = %+v", confirmed)
	}
	if confirmed.SlotID == nil || *confirmed.SlotID != slot.ID {
		t.Errorf("SlotID = %v, want %s", confirmed.SlotID, slot.ID)
	}

	stored := f.storedSlot(t, slot.ID)
	if !stored.IsBookedBy(parent.ID) {
		t.Errorf("slot = %+v, want booked by the parent", stored)
	}

	if _, err := f.appointments.CancelAppointment(context.Background(), parent, requested.ID); !apperror.Is(err, apperror.KindInvalidTransition) {
		t.Errorf("parent cancel of confirmed error = %v, want invalid transition", err)
	}
	if _, err := f.appointments.CompleteAppointment(context.Background(), otherDoctor, requested.ID); err != ErrAppointmentAssignedOther {
		t.Errorf("complete by other doctor error = %v, want %v", err, ErrAppointmentAssignedOther)
	}

	completed, err := f.appointments.CompleteAppointment(context.Background(), doctor, requested.ID)
	if err != nil {
		t.Fatalf("CompleteAppointment() error = %v", err)
	}
	if completed.Status != string(entity.AppointmentStatusCompleted) {
		t.Errorf("Status = %s, want completed", completed.Status)
	}

	// confirmation and completion each notify the parent
	if sent := f.notifier.sent(); len(sent) != 2 {
		t.Errorf("got %d notifications, want 2", len(sent))
	}
}

func TestRejectAppointmentReleasesSlot(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	created := f.addChild(t, parent, "2024-06-01")
	schedule := f.addSchedule(t, doctor, "2024-06-20", "09:00", "09:30")
	slot := f.slot(t, schedule, "09:00")

	requested, err := f.appointments.CreateAppointment(context.Background(), parent, &dto.CreateAppointmentRequest{
		ChildID:    created.Child.ID,
		ScheduleID: &schedule.ID,
		SlotID:     &slot.ID,
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if requested.Date != "2024-06-20" || requested.Time != "09:00" {
		t.Errorf("requested = %+v, want the slot's date and time", requested)
	}
	if stored := f.storedSlot(t, slot.ID); !stored.IsBooked {
		t.Fatalf("slot not reserved by the request")
	}

	rejected, err := f.appointments.RejectAppointment(context.Background(), doctor, requested.ID, &dto.RejectAppointmentRequest{Reason: "on leave"})
	if err != nil {
		t.Fatalf("RejectAppointment() error = %v", err)
	}
	if rejected.Status != string(entity.AppointmentStatusRejected) || rejected.RejectionReason != "on leave" {
		t.Errorf("rejected = %+v", rejected)
	}
	if stored := f.storedSlot(t, slot.ID); stored.IsBooked {
		t.Errorf("slot still booked after rejection")
	}

	if _, err := f.appointments.RejectAppointment(context.Background(), doctor, requested.ID, &dto.RejectAppointmentRequest{Reason: "again"}); !apperror.Is(err, apperror.KindInvalidTransition) {
		t.Errorf("second reject error = %v, want invalid transition", err)
	}
}

func TestCancelAppointment(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	other := f.actor(t, entity.RoleParent, "other")
	admin := f.actor(t, entity.RoleAdmin, "admin")
	created := f.addChild(t, parent, "2024-06-01")

	request := func() *dto.AppointmentResponse {
		resp, err := f.appointments.CreateAppointment(context.Background(), parent, &dto.CreateAppointmentRequest{
			ChildID: created.Child.ID,
			Date:    "2024-06-20",
			Time:    "10:00",
		})
		if err != nil {
			t.Fatalf("CreateAppointment() error = %v", err)
		}
		return resp
	}

	pending := request()
	if _, err := f.appointments.CancelAppointment(context.Background(), other, pending.ID); err != ErrAppointmentCancelDenied {
		t.Errorf("other parent error = %v, want %v", err, ErrAppointmentCancelDenied)
	}
	if _, err := f.appointments.CancelAppointment(context.Background(), doctor, pending.ID); err != ErrAppointmentCancelDenied {
		t.Errorf("doctor error = %v, want %v", err, ErrAppointmentCancelDenied)
	}
	cancelled, err := f.appointments.CancelAppointment(context.Background(), parent, pending.ID)
	if err != nil {
		t.Fatalf("CancelAppointment() error = %v", err)
	}
	if cancelled.Status != string(entity.AppointmentStatusCancelled) {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}

	confirmed := request()
	if _, err := f.appointments.ConfirmAppointment(context.Background(), doctor, confirmed.ID, nil); err != nil {
		t.Fatalf("ConfirmAppointment() error = %v", err)
	}
	if _, err := f.appointments.CancelAppointment(context.Background(), admin, confirmed.ID); err != nil {
		t.Errorf("admin cancel of confirmed error = %v", err)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	parent := f.actor(t, entity.RoleParent, "parent")
	other := f.actor(t, entity.RoleParent, "other")
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	created := f.addChild(t, parent, "2024-06-01")

	tests := []struct {
		name  string
		actor entity.Actor
		req   dto.CreateAppointmentRequest
		want  error
	}{
		{name: "doctor cannot request", actor: doctor, req: dto.CreateAppointmentRequest{ChildID: created.Child.ID, Date: "2024-06-20", Time: "10:00"}, want: ErrParentOnly},
		{name: "missing date", actor: parent, req: dto.CreateAppointmentRequest{ChildID: created.Child.ID, Time: "10:00"}, want: ErrAppointmentDateRequired},
		{name: "bad date", actor: parent, req: dto.CreateAppointmentRequest{ChildID: created.Child.ID, Date: "June 20", Time: "10:00"}, want: ErrInvalidAppointmentDate},
		{name: "bad time", actor: parent, req: dto.CreateAppointmentRequest{ChildID: created.Child.ID, Date: "2024-06-20", Time: "25:00"}, want: ErrInvalidTimeFormat},
		{name: "foreign child", actor: other, req: dto.CreateAppointmentRequest{ChildID: created.Child.ID, Date: "2024-06-20", Time: "10:00"}, want: ErrChildAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.appointments.CreateAppointment(context.Background(), tt.actor, &req)
			if err != tt.want {
				t.Errorf("CreateAppointment() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGetAppointmentsScoping(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 20))
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	otherDoctor := f.actor(t, entity.RoleDoctor, "other-doctor")
	parent := f.actor(t, entity.RoleParent, "parent")
	other := f.actor(t, entity.RoleParent, "other")
	created := f.addChild(t, parent, "2024-06-01")

	requested, err := f.appointments.CreateAppointment(context.Background(), parent, &dto.CreateAppointmentRequest{
		ChildID: created.Child.ID,
		Date:    "2024-06-20",
		Time:    "10:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}

	tests := []struct {
		name  string
		actor entity.Actor
		want  int
	}{
		{name: "owner", actor: parent, want: 1},
		{name: "other parent", actor: other, want: 0},
		{name: "doctor sees unassigned", actor: doctor, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.appointments.GetAppointments(context.Background(), tt.actor)
			if err != nil {
				t.Fatalf("GetAppointments() error = %v", err)
			}
			if list.Total != tt.want {
				t.Errorf("Total = %d, want %d", list.Total, tt.want)
			}
		})
	}

	if _, err := f.appointments.ConfirmAppointment(context.Background(), doctor, requested.ID, nil); err != nil {
		t.Fatalf("ConfirmAppointment() error = %v", err)
	}

	if _, err := f.appointments.GetAppointment(context.Background(), otherDoctor, requested.ID); err != ErrAppointmentAccessDenied {
		t.Errorf("other doctor error = %v, want %v", err, ErrAppointmentAccessDenied)
	}

	today, err := f.appointments.GetTodayAppointments(context.Background(), doctor)
	if err != nil {
		t.Fatalf("GetTodayAppointments() error = %v", err)
	}
	if today.Total != 1 {
		t.Errorf("today Total = %d, want 1", today.Total)
	}

	if _, err := f.appointments.GetPendingAppointments(context.Background(), parent); err != ErrStaffOnly {
		t.Errorf("parent pending error = %v, want %v", err, ErrStaffOnly)
	}
}
