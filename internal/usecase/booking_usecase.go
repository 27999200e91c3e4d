package usecase

import (
	"context"
	"time"

	"go-vaccination-booking/internal/converter"
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/domain/repository"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSlotNotFound        = apperror.NotFound("slot not found")
	ErrSlotAlreadyBooked   = apperror.Conflict("slot is already booked")
	ErrScheduleUnavailable = apperror.Conflict("doctor is not available on this date")
	ErrParentOnly          = apperror.Forbidden("parent access required")
	ErrBookingAccessDenied = apperror.Forbidden("only the booking owner, the doctor or an admin can cancel this booking")
)

type BookingUsecase interface {
	BookSlot(ctx context.Context, actor entity.Actor, scheduleID, slotID uuid.UUID, req *dto.BookSlotRequest) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, scheduleID, slotID uuid.UUID) (*dto.ScheduleResponse, error)
}

type bookingUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	scheduleRepo      repository.DoctorScheduleRepository
	slotRepo          repository.AvailabilitySlotRepository
	childRepo         repository.ChildRepository
	appointmentRepo   repository.AppointmentRepository
	auditService      service.AuditService
	availabilityCache service.AvailabilityCache
	now               func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	slotRepo repository.AvailabilitySlotRepository,
	childRepo repository.ChildRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	availabilityCache service.AvailabilityCache,
) BookingUsecase {
	return &bookingUsecase{
		db:                db,
		log:               log,
		scheduleRepo:      scheduleRepo,
		slotRepo:          slotRepo,
		childRepo:         childRepo,
		appointmentRepo:   appointmentRepo,
		auditService:      auditService,
		availabilityCache: availabilityCache,
		now:               time.Now,
	}
}

// BookSlot reserves a slot for the calling parent with a single conditional
// update. When a child is given, the matching appointment request is
// created in the same transaction.
func (u *bookingUsecase) BookSlot(ctx context.Context, actor entity.Actor, scheduleID, slotID uuid.UUID, req *dto.BookSlotRequest) (*dto.BookingResponse, error) {
	if !actor.IsParent() {
		return nil, ErrParentOnly
	}

	now := u.now().UTC()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	var child *entity.Child
	if req != nil && req.ChildID != nil {
		found, err := u.childRepo.FindByID(tx, *req.ChildID)
		if err != nil {
			u.log.Warnf("Failed to find child: %+v", err)
			return nil, err
		}
		if found == nil {
			return nil, ErrChildNotFound
		}
		if !found.IsOwnedBy(actor.ID) {
			return nil, ErrChildAccessDenied
		}
		child = found
	}

	schedule, err := u.scheduleRepo.FindByID(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return nil, err
	}
	if schedule == nil {
		metrics.booking(ctx, "not_found")
		return nil, ErrScheduleNotFound
	}
	if !schedule.IsAvailable {
		metrics.booking(ctx, "unavailable")
		return nil, ErrScheduleUnavailable
	}

	slot, err := reserveSlot(tx, u.slotRepo, scheduleID, slotID, actor.ID, now)
	if err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			metrics.booking(ctx, "conflict")
		} else if apperror.Is(err, apperror.KindNotFound) {
			metrics.booking(ctx, "not_found")
		} else {
			u.log.Warnf("Failed to reserve slot: %+v", err)
		}
		return nil, err
	}

	var appointment *entity.Appointment
	if child != nil {
		appointment = &entity.Appointment{
			ChildID:       child.ID,
			ParentID:      actor.ID,
			DoctorID:      &schedule.DoctorID,
			ScheduleID:    &schedule.ID,
			SlotID:        &slot.ID,
			ScheduledDate: schedule.ScheduleDate,
			ScheduledTime: slot.StartTime,
			Status:        entity.AppointmentStatusPending,
			Type:          appointmentType(req.Type),
			Notes:         req.Notes,
		}
		if err := u.appointmentRepo.Create(tx, appointment); err != nil {
			u.log.Warnf("Failed to create appointment: %+v", err)
			return nil, err
		}
		appointment.Child = child
		appointment.Doctor = schedule.Doctor
	}

	details := entity.JSON{"schedule_id": scheduleID.String()}
	if appointment != nil {
		details["appointment_id"] = appointment.ID.String()
	}
	if err := u.auditService.LogTransition(ctx, tx, actor, entity.AuditActionSlotBook, "availability_slot", slotID.String(), "free", "booked", details); err != nil {
		return nil, err
	}

	saved, err := u.scheduleRepo.FindByID(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to reload schedule: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	metrics.booking(ctx, "booked")
	u.availabilityCache.Invalidate(ctx, schedule.ScheduleDate)

	return &dto.BookingResponse{
		Schedule:    *converter.ScheduleToResponse(saved),
		Slot:        *converter.SlotToResponse(slot),
		Appointment: converter.AppointmentToResponse(appointment),
	}, nil
}

// CancelBooking frees a booked slot. The booking owner, the owning doctor
// and admins may cancel. Cancelling a free slot succeeds without changes.
// Open appointments bound to the slot are cancelled with it.
func (u *bookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, scheduleID, slotID uuid.UUID) (*dto.ScheduleResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	schedule, err := u.scheduleRepo.FindByID(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	slot, err := u.slotRepo.FindByID(tx, scheduleID, slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot: %+v", err)
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	if !slot.IsBooked || slot.BookedBy == nil {
		return converter.ScheduleToResponse(schedule), nil
	}

	allowed := actor.IsAdmin() ||
		slot.IsBookedBy(actor.ID) ||
		(actor.IsDoctor() && schedule.IsOwnedBy(actor.ID))
	if !allowed {
		return nil, ErrBookingAccessDenied
	}

	released, err := u.slotRepo.Release(tx, scheduleID, slotID, *slot.BookedBy)
	if err != nil {
		u.log.Warnf("Failed to release slot: %+v", err)
		return nil, err
	}
	if released == 0 {
		// freed by a concurrent cancel
		return converter.ScheduleToResponse(schedule), nil
	}

	appointments, err := u.appointmentRepo.FindAll(tx, entity.AppointmentFilter{
		SlotID:   &slotID,
		Statuses: []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed},
	})
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}
	for _, appointment := range appointments {
		if _, err := u.appointmentRepo.UpdateFromStatus(tx, appointment.ID,
			[]entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed},
			map[string]interface{}{"status": entity.AppointmentStatusCancelled},
		); err != nil {
			u.log.Warnf("Failed to cancel appointment: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.LogTransition(ctx, tx, actor, entity.AuditActionSlotCancel, "availability_slot", slotID.String(), "booked", "free", entity.JSON{
		"schedule_id":            scheduleID.String(),
		"booked_by":              slot.BookedBy.String(),
		"appointments_cancelled": len(appointments),
	}); err != nil {
		return nil, err
	}

	saved, err := u.scheduleRepo.FindByID(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to reload schedule: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	metrics.booking(ctx, "cancelled")
	u.availabilityCache.Invalidate(ctx, schedule.ScheduleDate)

	return converter.ScheduleToResponse(saved), nil
}

// reserveSlot books the slot for userID. When the conditional update
// touches no row the slot is either missing or already taken.
func reserveSlot(tx *gorm.DB, slotRepo repository.AvailabilitySlotRepository, scheduleID, slotID, userID uuid.UUID, at time.Time) (*entity.AvailabilitySlot, error) {
	rows, err := slotRepo.Reserve(tx, scheduleID, slotID, userID, at)
	if err != nil {
		return nil, err
	}

	slot, err := slotRepo.FindByID(tx, scheduleID, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if rows != 1 {
		return nil, ErrSlotAlreadyBooked
	}

	return slot, nil
}

func appointmentType(value string) entity.AppointmentType {
	if value == "" {
		return entity.AppointmentTypeVaccination
	}
	return entity.AppointmentType(value)
}
