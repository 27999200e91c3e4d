package usecase

import (
	"context"

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
	ErrVaccineNotFound      = apperror.NotFound("vaccine not found")
	ErrCatalogAlreadySeeded = apperror.Conflict("vaccine catalog is not empty")
	ErrAdminOnly            = apperror.Forbidden("admin access required")
)

type VaccineUsecase interface {
	GetVaccines(ctx context.Context) (*dto.VaccineListResponse, error)
	GetVaccine(ctx context.Context, id uuid.UUID) (*dto.VaccineResponse, error)
	CreateVaccine(ctx context.Context, actor entity.Actor, req *dto.CreateVaccineRequest) (*dto.VaccineResponse, error)
	DeactivateVaccine(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	SeedNationalCalendar(ctx context.Context, actor entity.Actor) (*dto.VaccineListResponse, error)
}

type vaccineUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	vaccineRepo  repository.VaccineRepository
	auditService service.AuditService
}

func NewVaccineUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	vaccineRepo repository.VaccineRepository,
	auditService service.AuditService,
) VaccineUsecase {
	return &vaccineUsecase{
		db:           db,
		log:          log,
		vaccineRepo:  vaccineRepo,
		auditService: auditService,
	}
}

// NationalCalendar returns the national childhood immunization calendar
func NationalCalendar() []entity.Vaccine {
	return []entity.Vaccine{
		{Name: "BCG", Description: "Tuberculosis vaccine", RecommendedAges: entity.MonthList{0}, TotalDoses: 1},
		{Name: "Hepatitis B", Description: "Hepatitis B vaccine", RecommendedAges: entity.MonthList{0, 1, 6}, TotalDoses: 3},
		{Name: "DTP-Hib-HepB (Pentavalent)", Description: "Diphtheria, tetanus, pertussis, Haemophilus influenzae b, hepatitis B", RecommendedAges: entity.MonthList{2, 3, 4}, TotalDoses: 3},
		{Name: "Polio (OPV)", Description: "Oral poliomyelitis vaccine", RecommendedAges: entity.MonthList{2, 3, 4, 16}, TotalDoses: 4},
		{Name: "Pneumococcal", Description: "Pneumococcal conjugate vaccine", RecommendedAges: entity.MonthList{2, 4, 12}, TotalDoses: 3},
		{Name: "Measles-Rubella (MR)", Description: "Measles and rubella vaccine", RecommendedAges: entity.MonthList{9, 18}, TotalDoses: 2},
		{Name: "DTP (Booster)", Description: "Diphtheria, tetanus, pertussis booster", RecommendedAges: entity.MonthList{18, 72}, TotalDoses: 2},
	}
}

func (u *vaccineUsecase) GetVaccines(ctx context.Context) (*dto.VaccineListResponse, error) {
	vaccines, err := u.vaccineRepo.FindActive(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find vaccines: %+v", err)
		return nil, err
	}

	return &dto.VaccineListResponse{
		Vaccines: converter.VaccinesToResponses(vaccines),
		Total:    len(vaccines),
	}, nil
}

func (u *vaccineUsecase) GetVaccine(ctx context.Context, id uuid.UUID) (*dto.VaccineResponse, error) {
	vaccine, err := u.vaccineRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find vaccine: %+v", err)
		return nil, err
	}
	if vaccine == nil {
		return nil, ErrVaccineNotFound
	}

	return converter.VaccineToResponse(vaccine), nil
}

func (u *vaccineUsecase) CreateVaccine(ctx context.Context, actor entity.Actor, req *dto.CreateVaccineRequest) (*dto.VaccineResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	vaccine := &entity.Vaccine{
		Name:              req.Name,
		Description:       req.Description,
		RecommendedAges:   entity.MonthList(req.RecommendedAges),
		TotalDoses:        req.TotalDoses,
		IsMandatory:       true,
		SideEffects:       req.SideEffects,
		Contraindications: req.Contraindications,
		IsActive:          true,
	}
	if req.IsMandatory != nil {
		vaccine.IsMandatory = *req.IsMandatory
	}
	if err := vaccine.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.vaccineRepo.Create(tx, vaccine); err != nil {
		u.log.Warnf("Failed to create vaccine: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionVaccineCreate, "vaccine", vaccine.ID.String(), vaccine); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.VaccineToResponse(vaccine), nil
}

// DeactivateVaccine retires a definition. Existing dose records keep
// referencing it; new children no longer get doses for it.
func (u *vaccineUsecase) DeactivateVaccine(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	vaccine, err := u.vaccineRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find vaccine: %+v", err)
		return err
	}
	if vaccine == nil {
		return ErrVaccineNotFound
	}

	if _, err := u.vaccineRepo.Deactivate(tx, id); err != nil {
		u.log.Warnf("Failed to deactivate vaccine: %+v", err)
		return err
	}

	if err := u.auditService.LogTransition(ctx, tx, actor, entity.AuditActionVaccineRetire, "vaccine", id.String(), "active", "inactive", nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

// SeedNationalCalendar loads the national calendar into an empty catalog.
// Definitions may be referenced by dose records, so an existing catalog is
// never replaced.
func (u *vaccineUsecase) SeedNationalCalendar(ctx context.Context, actor entity.Actor) (*dto.VaccineListResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	count, err := u.vaccineRepo.Count(tx)
	if err != nil {
		u.log.Warnf("Failed to count vaccines: %+v", err)
		return nil, err
	}
	if count > 0 {
		return nil, ErrCatalogAlreadySeeded
	}

	vaccines := NationalCalendar()
	for i := range vaccines {
		vaccines[i].IsMandatory = true
		vaccines[i].IsActive = true
	}

	if err := u.vaccineRepo.CreateBatch(tx, vaccines); err != nil {
		u.log.Warnf("Failed to seed vaccines: %+v", err)
		return nil, err
	}

	for i := range vaccines {
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionVaccineCreate, "vaccine", vaccines[i].ID.String(), vaccines[i].Name); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Seeded %d vaccines", len(vaccines))

	return &dto.VaccineListResponse{
		Vaccines: converter.VaccinesToResponses(vaccines),
		Total:    len(vaccines),
	}, nil
}
