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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const upcomingLimit = 50

var (
	ErrVaccinationNotFound     = apperror.NotFound("vaccination not found")
	ErrStaffOnly               = apperror.Forbidden("doctor or admin access required")
	ErrVaccinationModified     = apperror.Conflict("vaccination was modified concurrently, reload and retry")
	ErrInvalidAdministeredDate = apperror.Validation("invalid administered date format, use YYYY-MM-DD")
	ErrAdministeredInFuture    = apperror.Validation("administered date cannot be in the future")
	ErrAdministeredBeforeBirth = apperror.Validation("administered date cannot be before the child's birth date")
)

type VaccinationUsecase interface {
	UpdateVaccination(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateVaccinationRequest) (*dto.VaccinationResponse, error)
	GetChildVaccinations(ctx context.Context, actor entity.Actor, childID uuid.UUID) (*dto.VaccinationListResponse, error)
	GetUpcomingVaccinations(ctx context.Context, actor entity.Actor) (*dto.VaccinationListResponse, error)
	GetDelayedVaccinations(ctx context.Context, actor entity.Actor) (*dto.VaccinationListResponse, error)
	GetStats(ctx context.Context, actor entity.Actor) (*dto.VaccinationStatsResponse, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type vaccinationUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doseRepo     repository.DoseRecordRepository
	childRepo    repository.ChildRepository
	auditService service.AuditService
	notifier     service.Notifier
	now          func() time.Time
}

func NewVaccinationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doseRepo repository.DoseRecordRepository,
	childRepo repository.ChildRepository,
	auditService service.AuditService,
	notifier service.Notifier,
) VaccinationUsecase {
	return &vaccinationUsecase{
		db:           db,
		log:          log,
		doseRepo:     doseRepo,
		childRepo:    childRepo,
		auditService: auditService,
		notifier:     notifier,
		now:          time.Now,
	}
}

// UpdateVaccination applies a status transition requested by staff.
// Only open doses (scheduled or delayed) can move, and only to completed,
// missed or cancelled. The write is guarded by the record version.
func (u *vaccinationUsecase) UpdateVaccination(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateVaccinationRequest) (*dto.VaccinationResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	now := u.now().UTC()
	next := entity.DoseStatus(req.Status)
	if !next.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown status %q", req.Status))
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	record, err := u.doseRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find vaccination: %+v", err)
		return nil, err
	}
	if record == nil {
		return nil, ErrVaccinationNotFound
	}

	if !record.CanTransitionTo(next) {
		return nil, apperror.InvalidTransition(fmt.Sprintf("cannot change vaccination status from %s to %s", record.Status, next))
	}

	update := entity.DoseUpdate{
		Status:      next,
		Notes:       req.Notes,
		BatchNumber: req.BatchNumber,
	}
	if next == entity.DoseStatusCompleted {
		administered := now
		if req.AdministeredDate != nil && *req.AdministeredDate != "" {
			administered, err = parseDate(*req.AdministeredDate)
			if err != nil {
				return nil, ErrInvalidAdministeredDate
			}
			if administered.After(dateOf(now)) {
				return nil, ErrAdministeredInFuture
			}
			if record.Child != nil && administered.Before(dateOf(record.Child.BirthDate)) {
				return nil, ErrAdministeredBeforeBirth
			}
		}
		update.AdministeredDate = &administered
		if actor.IsDoctor() {
			doctorID := actor.ID
			update.DoctorID = &doctorID
		}
	}

	rows, err := u.doseRepo.UpdateVersioned(tx, record, update)
	if err != nil {
		u.log.Warnf("Failed to update vaccination: %+v", err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrVaccinationModified
	}

	if err := u.auditService.LogTransition(ctx, tx, actor, entity.AuditActionDoseTransition, "dose_record", record.ID.String(),
		string(record.Status), string(next), entity.JSON{
			"child_id":    record.ChildID.String(),
			"vaccine_id":  record.VaccineID.String(),
			"dose_number": record.DoseNumber,
		}); err != nil {
		return nil, err
	}

	updated, err := u.doseRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to reload vaccination: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	metrics.doseTransition(ctx, string(next))

	if next == entity.DoseStatusCompleted && updated.Child != nil {
		u.notifyCompleted(ctx, updated)
	}

	return converter.VaccinationToResponse(updated), nil
}

func (u *vaccinationUsecase) notifyCompleted(ctx context.Context, record *entity.DoseRecord) {
	vaccineName := "vaccine"
	if record.Vaccine != nil {
		vaccineName = record.Vaccine.Name
	}

	childID := record.ChildID
	vaccineID := record.VaccineID
	msg := entity.NotificationMessage{
		UserID:           record.Child.ParentID,
		Kind:             entity.NotificationInfo,
		Title:            "Vaccination completed",
		Message:          fmt.Sprintf("%s received dose %d of %s.", record.Child.Name, record.DoseNumber, vaccineName),
		RelatedChildID:   &childID,
		RelatedVaccineID: &vaccineID,
	}
	if err := u.notifier.Notify(ctx, msg); err != nil {
		u.log.Warnf("Failed to notify parent: %+v", err)
	}
}

func (u *vaccinationUsecase) GetChildVaccinations(ctx context.Context, actor entity.Actor, childID uuid.UUID) (*dto.VaccinationListResponse, error) {
	db := u.db.WithContext(ctx)

	child, err := u.childRepo.FindByID(db, childID)
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

	if err := u.markOverdue(ctx, db, &child.ID); err != nil {
		return nil, err
	}

	records, err := u.doseRepo.FindAll(db, entity.DoseFilter{ChildID: &child.ID})
	if err != nil {
		u.log.Warnf("Failed to find vaccinations: %+v", err)
		return nil, err
	}

	return &dto.VaccinationListResponse{
		Vaccinations: converter.VaccinationsToResponses(records),
		Total:        len(records),
	}, nil
}

// GetUpcomingVaccinations lists scheduled doses due within the next month
func (u *vaccinationUsecase) GetUpcomingVaccinations(ctx context.Context, actor entity.Actor) (*dto.VaccinationListResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	today := dateOf(u.now())
	before := today.AddDate(0, 1, 0)

	records, err := u.doseRepo.FindAll(u.db.WithContext(ctx), entity.DoseFilter{
		Statuses: []entity.DoseStatus{entity.DoseStatusScheduled},
		From:     &today,
		Before:   &before,
		Limit:    upcomingLimit,
	})
	if err != nil {
		u.log.Warnf("Failed to find upcoming vaccinations: %+v", err)
		return nil, err
	}

	return &dto.VaccinationListResponse{
		Vaccinations: converter.VaccinationsToResponses(records),
		Total:        len(records),
	}, nil
}

func (u *vaccinationUsecase) GetDelayedVaccinations(ctx context.Context, actor entity.Actor) (*dto.VaccinationListResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	db := u.db.WithContext(ctx)
	if err := u.markOverdue(ctx, db, nil); err != nil {
		return nil, err
	}

	records, err := u.doseRepo.FindAll(db, entity.DoseFilter{
		Statuses: []entity.DoseStatus{entity.DoseStatusDelayed},
	})
	if err != nil {
		u.log.Warnf("Failed to find delayed vaccinations: %+v", err)
		return nil, err
	}

	return &dto.VaccinationListResponse{
		Vaccinations: converter.VaccinationsToResponses(records),
		Total:        len(records),
	}, nil
}

// GetStats summarizes the dose records visible to the actor. Parents see
// their own children, staff see everyone. All counts are read in one
// transaction after the overdue scan.
func (u *vaccinationUsecase) GetStats(ctx context.Context, actor entity.Actor) (*dto.VaccinationStatsResponse, error) {
	now := u.now().UTC()

	var parentID *uuid.UUID
	if actor.IsParent() {
		parentID = &actor.ID
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.markOverdue(ctx, tx, nil); err != nil {
		return nil, err
	}

	totalChildren, err := u.childRepo.CountActive(tx, parentID)
	if err != nil {
		u.log.Warnf("Failed to count children: %+v", err)
		return nil, err
	}

	counts, err := u.doseRepo.CountByStatus(tx, parentID)
	if err != nil {
		u.log.Warnf("Failed to count vaccinations: %+v", err)
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	completedThisMonth, err := u.doseRepo.CountCompletedSince(tx, parentID, monthStart)
	if err != nil {
		u.log.Warnf("Failed to count completed vaccinations: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	stats := BuildVaccinationStats(counts)
	stats.TotalChildren = totalChildren
	stats.CompletedThisMonth = completedThisMonth

	return converter.StatsToResponse(stats), nil
}

// MarkOverdue runs the overdue scan over every child
func (u *vaccinationUsecase) MarkOverdue(ctx context.Context) (int64, error) {
	marked, err := u.doseRepo.MarkOverdue(u.db.WithContext(ctx), u.now().UTC(), nil)
	if err != nil {
		u.log.Warnf("Failed to mark overdue doses: %+v", err)
		return 0, err
	}
	metrics.overdue(ctx, marked)
	return marked, nil
}

func (u *vaccinationUsecase) markOverdue(ctx context.Context, db *gorm.DB, childID *uuid.UUID) error {
	marked, err := u.doseRepo.MarkOverdue(db, u.now().UTC(), childID)
	if err != nil {
		u.log.Warnf("Failed to mark overdue doses: %+v", err)
		return err
	}
	metrics.overdue(ctx, marked)
	return nil
}

// BuildVaccinationStats folds grouped status counts into the summary.
// The completion rate is completed over completed, scheduled and delayed,
// as a whole percentage rounded half away from zero; 0 with no open doses.
func BuildVaccinationStats(counts []entity.DoseStatusCount) *entity.VaccinationStats {
	stats := &entity.VaccinationStats{}
	for _, count := range counts {
		switch count.Status {
		case entity.DoseStatusScheduled:
			stats.Scheduled = count.Total
		case entity.DoseStatusDelayed:
			stats.Delayed = count.Total
		case entity.DoseStatusCompleted:
			stats.Completed = count.Total
		case entity.DoseStatusMissed:
			stats.Missed = count.Total
		case entity.DoseStatusCancelled:
			stats.Cancelled = count.Total
		}
	}

	denominator := stats.Completed + stats.Scheduled + stats.Delayed
	if denominator > 0 {
		stats.CompletionRate = decimal.NewFromInt(stats.Completed).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(denominator)).
			Round(0).
			IntPart()
	}

	return stats
}
