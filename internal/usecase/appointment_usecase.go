package usecase

import (
	"context"
	"fmt"
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
	ErrAppointmentNotFound      = apperror.NotFound("appointment not found")
	ErrAppointmentAccessDenied  = apperror.Forbidden("access to this appointment is not allowed")
	ErrAppointmentDateRequired  = apperror.Validation("date and time are required without a slot")
	ErrInvalidAppointmentDate   = apperror.Validation("invalid appointment date format, use YYYY-MM-DD")
	ErrAppointmentStateChanged  = apperror.InvalidTransition("appointment status changed concurrently")
	ErrAppointmentAlreadyBound  = apperror.Conflict("appointment already holds a slot")
	ErrAppointmentCancelDenied  = apperror.Forbidden("only the requesting parent or an admin can cancel this appointment")
	ErrAppointmentAssignedOther = apperror.Forbidden("appointment is assigned to another doctor")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	GetPendingAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	GetTodayAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	ConfirmAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.ConfirmAppointmentRequest) (*dto.AppointmentResponse, error)
	RejectAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RejectAppointmentRequest) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	childRepo         repository.ChildRepository
	scheduleRepo      repository.DoctorScheduleRepository
	slotRepo          repository.AvailabilitySlotRepository
	auditService      service.AuditService
	notifier          service.Notifier
	availabilityCache service.AvailabilityCache
	now               func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	childRepo repository.ChildRepository,
	scheduleRepo repository.DoctorScheduleRepository,
	slotRepo repository.AvailabilitySlotRepository,
	auditService service.AuditService,
	notifier service.Notifier,
	availabilityCache service.AvailabilityCache,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                db,
		log:               log,
		appointmentRepo:   appointmentRepo,
		childRepo:         childRepo,
		scheduleRepo:      scheduleRepo,
		slotRepo:          slotRepo,
		auditService:      auditService,
		notifier:          notifier,
		availabilityCache: availabilityCache,
		now:               time.Now,
	}
}

// CreateAppointment files a request for the parent's child. With a slot the
// reservation is taken in the same transaction and the date, time and
// doctor come from the slot.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.IsParent() {
		return nil, ErrParentOnly
	}

	withSlot := req.ScheduleID != nil && req.SlotID != nil

	appointment := &entity.Appointment{
		ChildID:  req.ChildID,
		ParentID: actor.ID,
		Status:   entity.AppointmentStatusPending,
		Type:     appointmentType(req.Type),
		Notes:    req.Notes,
	}
	if !withSlot {
		if req.Date == "" || req.Time == "" {
			return nil, ErrAppointmentDateRequired
		}
		date, err := parseDate(req.Date)
		if err != nil {
			return nil, ErrInvalidAppointmentDate
		}
		if _, err := time.Parse("15:04", req.Time); err != nil {
			return nil, ErrInvalidTimeFormat
		}
		appointment.ScheduledDate = date
		appointment.ScheduledTime = req.Time
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	child, err := u.childRepo.FindByID(tx, req.ChildID)
	if err != nil {
		u.log.Warnf("Failed to find child: %+v", err)
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if !child.IsOwnedBy(actor.ID) {
		return nil, ErrChildAccessDenied
	}

	var schedule *entity.DoctorSchedule
	if withSlot {
		schedule, err = u.scheduleRepo.FindByID(tx, *req.ScheduleID)
		if err != nil {
			u.log.Warnf("Failed to find schedule: %+v", err)
			return nil, err
		}
		if schedule == nil {
			return nil, ErrScheduleNotFound
		}
		if !schedule.IsAvailable {
			return nil, ErrScheduleUnavailable
		}

		slot, err := reserveSlot(tx, u.slotRepo, schedule.ID, *req.SlotID, actor.ID, u.now().UTC())
		if err != nil {
			if apperror.KindOf(err) == apperror.KindInternal {
				u.log.Warnf("Failed to reserve slot: %+v", err)
			}
			return nil, err
		}
		metrics.booking(ctx, "booked")

		appointment.DoctorID = &schedule.DoctorID
		appointment.ScheduleID = &schedule.ID
		appointment.SlotID = &slot.ID
		appointment.ScheduledDate = schedule.ScheduleDate
		appointment.ScheduledTime = slot.StartTime
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionAppointmentState, "appointment", appointment.ID.String(), entity.JSON{
		"child_id": child.ID.String(),
		"status":   string(appointment.Status),
		"slot_id":  uuidString(appointment.SlotID),
	}); err != nil {
		return nil, err
	}

	saved, err := u.appointmentRepo.FindByID(tx, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if schedule != nil {
		u.availabilityCache.Invalidate(ctx, schedule.ScheduleDate)
	}

	return converter.AppointmentToResponse(saved), nil
}

// GetAppointments lists appointments visible to the actor: parents see
// their own, doctors see theirs plus unassigned requests, admins see all
func (u *appointmentUsecase) GetAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	return u.list(ctx, scopedFilter(actor))
}

func (u *appointmentUsecase) GetPendingAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	filter := scopedFilter(actor)
	filter.Statuses = []entity.AppointmentStatus{entity.AppointmentStatusPending}
	return u.list(ctx, filter)
}

func (u *appointmentUsecase) GetTodayAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	today := dateOf(u.now())
	filter := scopedFilter(actor)
	filter.IncludeUnassigned = false
	filter.Date = &today
	filter.Statuses = []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed}
	return u.list(ctx, filter)
}

func (u *appointmentUsecase) list(ctx context.Context, filter entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.CanBeViewedBy(actor) {
		return nil, ErrAppointmentAccessDenied
	}

	return converter.AppointmentToResponse(appointment), nil
}

// ConfirmAppointment moves a pending request to confirmed and assigns the
// calling doctor. A slot of the doctor's own schedule can be bound at the
// same time when the request holds none.
func (u *appointmentUsecase) ConfirmAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.ConfirmAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrDoctorOnly
	}

	var bookedDate *time.Time

	result, err := u.transition(ctx, actor, id, entity.AppointmentStatusConfirmed,
		func(tx *gorm.DB, appointment *entity.Appointment) (map[string]interface{}, error) {
			if !appointment.IsPending() {
				return nil, invalidAppointmentTransition(appointment.Status, entity.AppointmentStatusConfirmed)
			}
			if appointment.DoctorID != nil && !appointment.IsAssignedTo(actor.ID) {
				return nil, ErrAppointmentAssignedOther
			}

			updates := map[string]interface{}{
				"status":    entity.AppointmentStatusConfirmed,
				"doctor_id": actor.ID,
			}

			if req == nil || req.ScheduleID == nil || req.SlotID == nil {
				return updates, nil
			}
			if appointment.HasSlot() {
				return nil, ErrAppointmentAlreadyBound
			}

			schedule, err := u.scheduleRepo.FindByID(tx, *req.ScheduleID)
			if err != nil {
				return nil, err
			}
			if schedule == nil {
				return nil, ErrScheduleNotFound
			}
			if !schedule.IsOwnedBy(actor.ID) {
				return nil, ErrScheduleAccessDenied
			}

			slot, err := reserveSlot(tx, u.slotRepo, schedule.ID, *req.SlotID, appointment.ParentID, u.now().UTC())
			if err != nil {
				return nil, err
			}

			updates["schedule_id"] = schedule.ID
			updates["slot_id"] = slot.ID
			updates["scheduled_date"] = schedule.ScheduleDate
			updates["scheduled_time"] = slot.StartTime
			bookedDate = &schedule.ScheduleDate
			return updates, nil
		})
	if err != nil {
		return nil, err
	}

	if bookedDate != nil {
		u.availabilityCache.Invalidate(ctx, *bookedDate)
	}

	u.notifyParent(ctx, result, entity.NotificationConfirmation, "Appointment confirmed",
		fmt.Sprintf("The appointment for %s on %s at %s is confirmed.", childName(result), result.ScheduledDate.Format(converter.DateLayout), result.ScheduledTime))

	return converter.AppointmentToResponse(result), nil
}

// RejectAppointment declines a pending request and frees its slot
func (u *appointmentUsecase) RejectAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RejectAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrDoctorOnly
	}

	result, err := u.transition(ctx, actor, id, entity.AppointmentStatusRejected,
		func(tx *gorm.DB, appointment *entity.Appointment) (map[string]interface{}, error) {
			if !appointment.IsPending() {
				return nil, invalidAppointmentTransition(appointment.Status, entity.AppointmentStatusRejected)
			}
			if appointment.DoctorID != nil && !appointment.IsAssignedTo(actor.ID) {
				return nil, ErrAppointmentAssignedOther
			}
			if err := u.releaseSlot(tx, appointment); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"status":           entity.AppointmentStatusRejected,
				"rejection_reason": req.Reason,
			}, nil
		})
	if err != nil {
		return nil, err
	}

	if result.HasSlot() {
		u.availabilityCache.Invalidate(ctx, result.ScheduledDate)
	}

	u.notifyParent(ctx, result, entity.NotificationCancellation, "Appointment rejected",
		fmt.Sprintf("The appointment for %s was rejected: %s", childName(result), req.Reason))

	return converter.AppointmentToResponse(result), nil
}

// CompleteAppointment closes a confirmed appointment of the assigned doctor
func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrDoctorOnly
	}

	result, err := u.transition(ctx, actor, id, entity.AppointmentStatusCompleted,
		func(tx *gorm.DB, appointment *entity.Appointment) (map[string]interface{}, error) {
			if !appointment.IsConfirmed() {
				return nil, invalidAppointmentTransition(appointment.Status, entity.AppointmentStatusCompleted)
			}
			if !appointment.IsAssignedTo(actor.ID) {
				return nil, ErrAppointmentAssignedOther
			}
			return map[string]interface{}{"status": entity.AppointmentStatusCompleted}, nil
		})
	if err != nil {
		return nil, err
	}

	u.notifyParent(ctx, result, entity.NotificationInfo, "Appointment completed",
		fmt.Sprintf("The appointment for %s is completed.", childName(result)))

	return converter.AppointmentToResponse(result), nil
}

// CancelAppointment withdraws a request. Parents cancel their own pending
// requests; admins cancel any pending or confirmed appointment.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	if !actor.IsParent() && !actor.IsAdmin() {
		return nil, ErrAppointmentCancelDenied
	}

	result, err := u.transition(ctx, actor, id, entity.AppointmentStatusCancelled,
		func(tx *gorm.DB, appointment *entity.Appointment) (map[string]interface{}, error) {
			if actor.IsParent() {
				if appointment.ParentID != actor.ID {
					return nil, ErrAppointmentCancelDenied
				}
				if !appointment.IsPending() {
					return nil, invalidAppointmentTransition(appointment.Status, entity.AppointmentStatusCancelled)
				}
			} else if appointment.IsTerminal() {
				return nil, invalidAppointmentTransition(appointment.Status, entity.AppointmentStatusCancelled)
			}
			if err := u.releaseSlot(tx, appointment); err != nil {
				return nil, err
			}
			return map[string]interface{}{"status": entity.AppointmentStatusCancelled}, nil
		})
	if err != nil {
		return nil, err
	}

	if result.HasSlot() {
		u.availabilityCache.Invalidate(ctx, result.ScheduledDate)
	}

	return converter.AppointmentToResponse(result), nil
}

// transition loads the appointment, lets apply decide the updates, and
// writes them guarded by the status that was read
func (u *appointmentUsecase) transition(
	ctx context.Context,
	actor entity.Actor,
	id uuid.UUID,
	next entity.AppointmentStatus,
	apply func(tx *gorm.DB, appointment *entity.Appointment) (map[string]interface{}, error),
) (*entity.Appointment, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	updates, err := apply(tx, appointment)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			u.log.Warnf("Failed to apply appointment transition: %+v", err)
		}
		return nil, err
	}

	rows, err := u.appointmentRepo.UpdateFromStatus(tx, appointment.ID, []entity.AppointmentStatus{appointment.Status}, updates)
	if err != nil {
		u.log.Warnf("Failed to update appointment: %+v", err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAppointmentStateChanged
	}

	if err := u.auditService.LogTransition(ctx, tx, actor, entity.AuditActionAppointmentState, "appointment", appointment.ID.String(),
		string(appointment.Status), string(next), entity.JSON{"slot_id": uuidString(appointment.SlotID)}); err != nil {
		return nil, err
	}

	saved, err := u.appointmentRepo.FindByID(tx, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	metrics.appointment(ctx, string(next))

	return saved, nil
}

// releaseSlot frees the slot bound to the appointment, if it is still held
// by the requesting parent
func (u *appointmentUsecase) releaseSlot(tx *gorm.DB, appointment *entity.Appointment) error {
	if !appointment.HasSlot() {
		return nil
	}
	_, err := u.slotRepo.Release(tx, *appointment.ScheduleID, *appointment.SlotID, appointment.ParentID)
	return err
}

func (u *appointmentUsecase) notifyParent(ctx context.Context, appointment *entity.Appointment, kind entity.NotificationKind, title, message string) {
	appointmentID := appointment.ID
	childID := appointment.ChildID
	msg := entity.NotificationMessage{
		UserID:               appointment.ParentID,
		Kind:                 kind,
		Title:                title,
		Message:              message,
		RelatedChildID:       &childID,
		RelatedAppointmentID: &appointmentID,
	}
	if err := u.notifier.Notify(ctx, msg); err != nil {
		u.log.Warnf("Failed to notify parent: %+v", err)
	}
}

func scopedFilter(actor entity.Actor) entity.AppointmentFilter {
	switch actor.Role {
	case entity.RoleAdmin:
		return entity.AppointmentFilter{}
	case entity.RoleDoctor:
		return entity.AppointmentFilter{DoctorID: &actor.ID, IncludeUnassigned: true}
	default:
		return entity.AppointmentFilter{ParentID: &actor.ID}
	}
}

func invalidAppointmentTransition(from, to entity.AppointmentStatus) error {
	return apperror.InvalidTransition(fmt.Sprintf("cannot change appointment status from %s to %s", from, to))
}

func childName(appointment *entity.Appointment) string {
	if appointment.Child != nil {
		return appointment.Child.Name
	}
	return "your child"
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
