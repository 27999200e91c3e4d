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
	ErrScheduleNotFound     = apperror.NotFound("schedule not found")
	ErrInvalidScheduleDate  = apperror.Validation("invalid schedule date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat    = apperror.Validation("invalid time format, use HH:MM")
	ErrSlotEndBeforeStart   = apperror.Validation("slot end time must be after start time")
	ErrDuplicateSlot        = apperror.Validation("duplicate slot in submission")
	ErrDoctorOnly           = apperror.Forbidden("doctor access required")
	ErrScheduleAccessDenied = apperror.Forbidden("schedule belongs to another doctor")
	ErrScheduleHasBookings  = apperror.Conflict("cannot delete a schedule with booked slots")
	ErrScheduleExists       = apperror.Conflict("schedule for this date already exists")
)

type DoctorScheduleUsecase interface {
	UpsertSchedule(ctx context.Context, actor entity.Actor, req *dto.UpsertScheduleRequest) (*dto.ScheduleResponse, error)
	AddSlots(ctx context.Context, actor entity.Actor, scheduleID uuid.UUID, req *dto.AddSlotsRequest) (*dto.ScheduleResponse, error)
	GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*dto.ScheduleResponse, error)
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]dto.SlotResponse, error)
	GetAvailableDoctors(ctx context.Context, date string) ([]dto.AvailableDoctorResponse, error)
	GetDoctorSchedules(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.ScheduleListResponse, error)
	GetMySchedules(ctx context.Context, actor entity.Actor, from, to string) (*dto.ScheduleListResponse, error)
	DeleteSchedule(ctx context.Context, actor entity.Actor, scheduleID uuid.UUID) error
}

type doctorScheduleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	scheduleRepo      repository.DoctorScheduleRepository
	slotRepo          repository.AvailabilitySlotRepository
	auditService      service.AuditService
	availabilityCache service.AvailabilityCache
	now               func() time.Time
}

func NewDoctorScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	slotRepo repository.AvailabilitySlotRepository,
	auditService service.AuditService,
	availabilityCache service.AvailabilityCache,
) DoctorScheduleUsecase {
	return &doctorScheduleUsecase{
		db:                db,
		log:               log,
		scheduleRepo:      scheduleRepo,
		slotRepo:          slotRepo,
		auditService:      auditService,
		availabilityCache: availabilityCache,
		now:               time.Now,
	}
}

// UpsertSchedule creates the doctor's schedule for a date or updates it.
// Submitted slots replace the unbooked ones; booked slots always survive
// and a submitted window equal to a booked slot is dropped.
func (u *doctorScheduleUsecase) UpsertSchedule(ctx context.Context, actor entity.Actor, req *dto.UpsertScheduleRequest) (*dto.ScheduleResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrDoctorOnly
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}

	var windows []entity.SlotWindow
	if req.Slots != nil {
		windows, err = parseSlotWindows(req.Slots)
		if err != nil {
			return nil, err
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	schedule, err := u.scheduleRepo.FindByDoctorAndDate(tx, actor.ID, date)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return nil, err
	}

	if schedule == nil {
		schedule = &entity.DoctorSchedule{
			DoctorID:     actor.ID,
			ScheduleDate: date,
			IsAvailable:  true,
		}
		if req.Notes != nil {
			schedule.Notes = *req.Notes
		}
		if req.IsAvailable != nil {
			schedule.IsAvailable = *req.IsAvailable
		}
		if err := u.scheduleRepo.Create(tx, schedule); err != nil {
			if isDuplicateKeyError(err, "doctor_date") {
				return nil, ErrScheduleExists
			}
			u.log.Warnf("Failed to create schedule: %+v", err)
			return nil, err
		}
	} else {
		if req.IsAvailable != nil {
			schedule.IsAvailable = *req.IsAvailable
		}
		if req.Notes != nil {
			schedule.Notes = *req.Notes
		}
		if err := u.scheduleRepo.Update(tx, schedule); err != nil {
			u.log.Warnf("Failed to update schedule: %+v", err)
			return nil, err
		}
	}

	if req.Slots != nil {
		if _, err := u.slotRepo.DeleteUnbooked(tx, schedule.ID); err != nil {
			u.log.Warnf("Failed to delete unbooked slots: %+v", err)
			return nil, err
		}

		booked, err := u.slotRepo.FindBySchedule(tx, schedule.ID, false)
		if err != nil {
			u.log.Warnf("Failed to find booked slots: %+v", err)
			return nil, err
		}

		slots := newSlots(schedule.ID, windows, booked)
		if err := u.slotRepo.CreateBatch(tx, slots); err != nil {
			u.log.Warnf("Failed to create slots: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionScheduleUpsert, "doctor_schedule", schedule.ID.String(), entity.JSON{
		"date":         req.Date,
		"slots":        len(windows),
		"is_available": schedule.IsAvailable,
	}); err != nil {
		return nil, err
	}

	saved, err := u.scheduleRepo.FindByID(tx, schedule.ID)
	if err != nil {
		u.log.Warnf("Failed to reload schedule: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.availabilityCache.Invalidate(ctx, date)

	return converter.ScheduleToResponse(saved), nil
}

// AddSlots appends slots to an existing schedule of the calling doctor
func (u *doctorScheduleUsecase) AddSlots(ctx context.Context, actor entity.Actor, scheduleID uuid.UUID, req *dto.AddSlotsRequest) (*dto.ScheduleResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrDoctorOnly
	}

	windows, err := parseSlotWindows(req.Slots)
	if err != nil {
		return nil, err
	}

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
	if !schedule.IsOwnedBy(actor.ID) {
		return nil, ErrScheduleAccessDenied
	}

	slots := newSlots(schedule.ID, windows, schedule.Slots)
	if err := u.slotRepo.CreateBatch(tx, slots); err != nil {
		u.log.Warnf("Failed to create slots: %+v", err)
		return nil, err
	}

	saved, err := u.scheduleRepo.FindByID(tx, schedule.ID)
	if err != nil {
		u.log.Warnf("Failed to reload schedule: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.availabilityCache.Invalidate(ctx, schedule.ScheduleDate)

	return converter.ScheduleToResponse(saved), nil
}

func (u *doctorScheduleUsecase) GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*dto.ScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	return converter.ScheduleToResponse(schedule), nil
}

// GetAvailableSlots lists the unbooked slots of a doctor on a date. A
// missing or unavailable schedule has no slots.
func (u *doctorScheduleUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]dto.SlotResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}

	schedule, err := u.scheduleRepo.FindByDoctorAndDate(u.db.WithContext(ctx), doctorID, day)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return nil, err
	}
	if schedule == nil || !schedule.IsAvailable {
		return []dto.SlotResponse{}, nil
	}

	return converter.SlotsToResponses(schedule.AvailableSlots()), nil
}

// GetAvailableDoctors lists active doctors with at least one unbooked slot
// on date. Results are served from the availability cache when present.
func (u *doctorScheduleUsecase) GetAvailableDoctors(ctx context.Context, date string) ([]dto.AvailableDoctorResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}

	if cached, ok := u.availabilityCache.Get(ctx, day); ok {
		return converter.AvailabilityToResponses(cached), nil
	}
	generation, cacheable := u.availabilityCache.Generation(ctx, day)

	schedules, err := u.scheduleRepo.FindAvailableByDate(u.db.WithContext(ctx), day)
	if err != nil {
		u.log.Warnf("Failed to find available schedules: %+v", err)
		return nil, err
	}

	availability := make([]entity.DoctorAvailability, 0, len(schedules))
	for _, schedule := range schedules {
		free := schedule.AvailableSlots()
		if len(free) == 0 || schedule.Doctor == nil {
			continue
		}
		total := len(schedule.Slots)
		doctor := *schedule.Doctor
		schedule.Doctor = nil
		schedule.Slots = nil
		availability = append(availability, entity.DoctorAvailability{
			Doctor:         doctor,
			Schedule:       schedule,
			AvailableSlots: free,
			TotalSlots:     total,
		})
	}

	if cacheable {
		u.availabilityCache.Set(ctx, day, generation, availability)
	}

	return converter.AvailabilityToResponses(availability), nil
}

func (u *doctorScheduleUsecase) GetDoctorSchedules(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.ScheduleListResponse, error) {
	filter, err := scheduleFilter(from, to)
	if err != nil {
		return nil, err
	}

	schedules, err := u.scheduleRepo.FindByDoctor(u.db.WithContext(ctx), doctorID, filter)
	if err != nil {
		u.log.Warnf("Failed to find schedules: %+v", err)
		return nil, err
	}

	return &dto.ScheduleListResponse{
		Schedules: converter.SchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

// GetMySchedules lists the calling doctor's schedules, from today onward
// unless a range is given
func (u *doctorScheduleUsecase) GetMySchedules(ctx context.Context, actor entity.Actor, from, to string) (*dto.ScheduleListResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrDoctorOnly
	}

	filter, err := scheduleFilter(from, to)
	if err != nil {
		return nil, err
	}
	if filter.From == nil && filter.To == nil {
		today := dateOf(u.now())
		filter.From = &today
	}

	schedules, err := u.scheduleRepo.FindByDoctor(u.db.WithContext(ctx), actor.ID, filter)
	if err != nil {
		u.log.Warnf("Failed to find schedules: %+v", err)
		return nil, err
	}

	return &dto.ScheduleListResponse{
		Schedules: converter.SchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

// DeleteSchedule removes a schedule and its slots. Unbooked slots are
// deleted first; if any booked slot remains the whole deletion rolls back.
func (u *doctorScheduleUsecase) DeleteSchedule(ctx context.Context, actor entity.Actor, scheduleID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	schedule, err := u.scheduleRepo.FindByID(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return err
	}
	if schedule == nil {
		return ErrScheduleNotFound
	}
	if !actor.IsAdmin() && !(actor.IsDoctor() && schedule.IsOwnedBy(actor.ID)) {
		return ErrScheduleAccessDenied
	}

	if _, err := u.slotRepo.DeleteUnbooked(tx, schedule.ID); err != nil {
		u.log.Warnf("Failed to delete unbooked slots: %+v", err)
		return err
	}

	booked, err := u.slotRepo.CountBooked(tx, schedule.ID)
	if err != nil {
		u.log.Warnf("Failed to count booked slots: %+v", err)
		return err
	}
	if booked > 0 {
		return ErrScheduleHasBookings
	}

	if _, err := u.scheduleRepo.Delete(tx, schedule.ID); err != nil {
		u.log.Warnf("Failed to delete schedule: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionScheduleDelete, "doctor_schedule", schedule.ID.String(), entity.JSON{
		"doctor_id": schedule.DoctorID.String(),
		"date":      schedule.ScheduleDate.Format(converter.DateLayout),
		"slots":     len(schedule.Slots),
	}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.availabilityCache.Invalidate(ctx, schedule.ScheduleDate)

	return nil
}

// parseSlotWindows validates submitted slots: HH:MM times, end after
// start, and no repeated window
func parseSlotWindows(reqs []dto.SlotRequest) ([]entity.SlotWindow, error) {
	windows := make([]entity.SlotWindow, 0, len(reqs))
	seen := make(map[entity.SlotWindow]struct{}, len(reqs))

	for _, req := range reqs {
		start, err := time.Parse("15:04", req.StartTime)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		end, err := time.Parse("15:04", req.EndTime)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		if !end.After(start) {
			return nil, ErrSlotEndBeforeStart
		}

		window := entity.SlotWindow{StartTime: start.Format("15:04"), EndTime: end.Format("15:04")}
		if _, ok := seen[window]; ok {
			return nil, apperror.Validation(fmt.Sprintf("%s: %s-%s", ErrDuplicateSlot.Message, window.StartTime, window.EndTime))
		}
		seen[window] = struct{}{}
		windows = append(windows, window)
	}

	return windows, nil
}

// newSlots builds slot rows for windows, skipping any window that overlaps
// an existing slot so a booked reservation never shares its time
func newSlots(scheduleID uuid.UUID, windows []entity.SlotWindow, existing []entity.AvailabilitySlot) []entity.AvailabilitySlot {
	slots := make([]entity.AvailabilitySlot, 0, len(windows))
	for _, window := range windows {
		overlapping := false
		for i := range existing {
			if existing[i].Overlaps(window.StartTime, window.EndTime) {
				overlapping = true
				break
			}
		}
		if overlapping {
			continue
		}
		slots = append(slots, entity.AvailabilitySlot{
			ScheduleID: scheduleID,
			StartTime:  window.StartTime,
			EndTime:    window.EndTime,
		})
	}
	return slots
}

func scheduleFilter(from, to string) (*entity.ScheduleFilter, error) {
	fromDate, err := parseOptionalDate(from)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}
	toDate, err := parseOptionalDate(to)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}
	return &entity.ScheduleFilter{From: fromDate, To: toDate}, nil
}
