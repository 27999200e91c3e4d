package usecase

import (
	"context"

	"go-vaccination-booking/internal/converter"
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/domain/repository"
	"go-vaccination-booking/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound = apperror.NotFound("audit log not found")
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, actor entity.Actor, filter entity.AuditLogFilter) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, actor entity.Actor, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, actor entity.Actor, filter entity.AuditLogFilter) (*dto.AuditLogListResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, actor entity.Actor, id int64) (*dto.AuditLogResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	auditLog, err := u.auditLogRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
