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
	ErrChildNotFound     = apperror.NotFound("child not found")
	ErrChildAccessDenied = apperror.Forbidden("access to this child is not allowed")
	ErrParentNotFound    = apperror.NotFound("parent not found")
	ErrParentRequired    = apperror.Validation("parent_id is required when staff registers a child")
	ErrInvalidBirthDate  = apperror.Validation("invalid birth date format, use YYYY-MM-DD")
	ErrBirthDateInFuture = apperror.Validation("birth date cannot be in the future")
	ErrChildDeleteDenied = apperror.Forbidden("only the parent or an admin can delete a child")
)

type ChildUsecase interface {
	CreateChild(ctx context.Context, actor entity.Actor, req *dto.CreateChildRequest) (*dto.CreateChildResponse, error)
	GetChildren(ctx context.Context, actor entity.Actor) (*dto.ChildListResponse, error)
	GetChild(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ChildDetailResponse, error)
	UpdateChild(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateChildRequest) (*dto.ChildResponse, error)
	DeleteChild(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

type childUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	childRepo         repository.ChildRepository
	userRepo          repository.UserRepository
	vaccineRepo       repository.VaccineRepository
	doseRepo          repository.DoseRecordRepository
	appointmentRepo   repository.AppointmentRepository
	slotRepo          repository.AvailabilitySlotRepository
	auditService      service.AuditService
	availabilityCache service.AvailabilityCache
	now               func() time.Time
}

func NewChildUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	childRepo repository.ChildRepository,
	userRepo repository.UserRepository,
	vaccineRepo repository.VaccineRepository,
	doseRepo repository.DoseRecordRepository,
	appointmentRepo repository.AppointmentRepository,
	slotRepo repository.AvailabilitySlotRepository,
	auditService service.AuditService,
	availabilityCache service.AvailabilityCache,
) ChildUsecase {
	return &childUsecase{
		db:                db,
		log:               log,
		childRepo:         childRepo,
		userRepo:          userRepo,
		vaccineRepo:       vaccineRepo,
		doseRepo:          doseRepo,
		appointmentRepo:   appointmentRepo,
		slotRepo:          slotRepo,
		auditService:      auditService,
		availabilityCache: availabilityCache,
		now:               time.Now,
	}
}

// CreateChild registers a child and generates the dose schedule in the
// same transaction. A failed generation leaves no child behind.
func (u *childUsecase) CreateChild(ctx context.Context, actor entity.Actor, req *dto.CreateChildRequest) (*dto.CreateChildResponse, error) {
	now := u.now().UTC()

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}
	if birthDate.After(now) {
		return nil, ErrBirthDateInFuture
	}

	parentID := actor.ID
	switch {
	case actor.IsParent():
		if req.ParentID != nil && *req.ParentID != actor.ID {
			return nil, ErrChildAccessDenied
		}
	case req.ParentID == nil:
		return nil, ErrParentRequired
	default:
		parentID = *req.ParentID
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if parentID != actor.ID {
		parent, err := u.userRepo.FindByID(tx, parentID)
		if err != nil {
			u.log.Warnf("Failed to find parent: %+v", err)
			return nil, err
		}
		if parent == nil || parent.Role != entity.RoleParent {
			return nil, ErrParentNotFound
		}
	}

	child := &entity.Child{
		ParentID:  parentID,
		Name:      req.Name,
		BirthDate: birthDate,
		Gender:    req.Gender,
		BloodType: req.BloodType,
		Allergies: req.Allergies,
		Notes:     req.Notes,
		IsActive:  true,
	}

	if err := u.childRepo.Create(tx, child); err != nil {
		u.log.Warnf("Failed to create child: %+v", err)
		return nil, err
	}

	vaccines, err := u.vaccineRepo.FindActive(tx)
	if err != nil {
		u.log.Warnf("Failed to find vaccines: %+v", err)
		return nil, err
	}

	for _, vaccine := range vaccines {
		if len(vaccine.RecommendedAges) == 0 {
			u.log.Warnf("Vaccine %s has no recommended ages, skipping", vaccine.Name)
		}
	}

	records, err := GenerateDoseSchedule(child, vaccines, now)
	if err != nil {
		u.log.Warnf("Failed to generate dose schedule: %+v", err)
		return nil, err
	}

	if err := u.doseRepo.CreateBatch(tx, records); err != nil {
		u.log.Warnf("Failed to create dose records: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionChildCreate, "child", child.ID.String(), entity.JSON{
		"name":          child.Name,
		"parent_id":     child.ParentID.String(),
		"birth_date":    req.BirthDate,
		"doses_created": len(records),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"child_id": child.ID,
		"doses":    len(records),
	}).Info("Child registered with dose schedule")

	return &dto.CreateChildResponse{
		Child:               *converter.ChildToResponse(child, now),
		Vaccinations:        converter.VaccinationsToResponses(records),
		VaccinationsCreated: len(records),
	}, nil
}

func (u *childUsecase) GetChildren(ctx context.Context, actor entity.Actor) (*dto.ChildListResponse, error) {
	var parentID *uuid.UUID
	if actor.IsParent() {
		parentID = &actor.ID
	}

	children, err := u.childRepo.FindAll(u.db.WithContext(ctx), parentID)
	if err != nil {
		u.log.Warnf("Failed to find children: %+v", err)
		return nil, err
	}

	return &dto.ChildListResponse{
		Children: converter.ChildrenToResponses(children, u.now().UTC()),
		Total:    len(children),
	}, nil
}

// GetChild returns the child with its dose schedule, refreshed by the
// overdue scan
func (u *childUsecase) GetChild(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ChildDetailResponse, error) {
	now := u.now().UTC()
	db := u.db.WithContext(ctx)

	child, err := u.childRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find child: %+v", err)
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if !child.CanBeViewedBy(actor) {
		return nil, ErrChildAccessDenied
	}

	marked, err := u.doseRepo.MarkOverdue(db, now, &child.ID)
	if err != nil {
		u.log.Warnf("Failed to mark overdue doses: %+v", err)
		return nil, err
	}
	metrics.overdue(ctx, marked)

	records, err := u.doseRepo.FindAll(db, entity.DoseFilter{ChildID: &child.ID})
	if err != nil {
		u.log.Warnf("Failed to find dose records: %+v", err)
		return nil, err
	}

	return &dto.ChildDetailResponse{
		Child:        *converter.ChildToResponse(child, now),
		Vaccinations: converter.VaccinationsToResponses(records),
	}, nil
}

// UpdateChild edits profile fields. The birth date never changes because
// the dose schedule was derived from it.
func (u *childUsecase) UpdateChild(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateChildRequest) (*dto.ChildResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	child, err := u.childRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find child: %+v", err)
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if !child.CanBeViewedBy(actor) {
		return nil, ErrChildAccessDenied
	}

	changes := entity.JSON{}
	if req.Name != nil {
		child.Name = *req.Name
		changes["name"] = *req.Name
	}
	if req.Gender != nil {
		child.Gender = *req.Gender
		changes["gender"] = *req.Gender
	}
	if req.BloodType != nil {
		child.BloodType = *req.BloodType
		changes["blood_type"] = *req.BloodType
	}
	if req.Allergies != nil {
		child.Allergies = *req.Allergies
		changes["allergies"] = *req.Allergies
	}
	if req.Notes != nil {
		child.Notes = *req.Notes
		changes["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		child.IsActive = *req.IsActive
		changes["is_active"] = *req.IsActive
	}

	if err := u.childRepo.Update(tx, child); err != nil {
		u.log.Warnf("Failed to update child: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionChildUpdate, "child", child.ID.String(), changes); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ChildToResponse(child, u.now().UTC()), nil
}

// DeleteChild removes the child together with its dose records and
// appointments, releasing any slot those appointments still hold
func (u *childUsecase) DeleteChild(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	child, err := u.childRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find child: %+v", err)
		return err
	}
	if child == nil {
		return ErrChildNotFound
	}
	if !actor.IsAdmin() && !child.IsOwnedBy(actor.ID) {
		return ErrChildDeleteDenied
	}

	appointments, err := u.appointmentRepo.FindAll(tx, entity.AppointmentFilter{
		ChildID:  &child.ID,
		Statuses: []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed},
	})
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return err
	}
	var releasedDates []time.Time
	for _, appointment := range appointments {
		if appointment.HasSlot() {
			releasedDates = append(releasedDates, appointment.ScheduledDate)
		}
	}

	released, err := u.slotRepo.ReleaseForChild(tx, child.ID)
	if err != nil {
		u.log.Warnf("Failed to release slots: %+v", err)
		return err
	}

	if _, err := u.appointmentRepo.DeleteByChild(tx, child.ID); err != nil {
		u.log.Warnf("Failed to delete appointments: %+v", err)
		return err
	}

	doses, err := u.doseRepo.DeleteByChild(tx, child.ID)
	if err != nil {
		u.log.Warnf("Failed to delete dose records: %+v", err)
		return err
	}

	if _, err := u.childRepo.Delete(tx, child.ID); err != nil {
		u.log.Warnf("Failed to delete child: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionChildDelete, "child", child.ID.String(), entity.JSON{
		"name":           child.Name,
		"parent_id":      child.ParentID.String(),
		"doses_deleted":  doses,
		"slots_released": released,
	}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if len(releasedDates) > 0 {
		u.availabilityCache.Invalidate(ctx, releasedDates...)
	}

	return nil
}
