package service

import (
	"context"

	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService writes audit rows inside the caller's transaction so the
// trail commits or rolls back together with the change it describes.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, entityName string, entityID string, newValue interface{}) error
	LogTransition(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, entityName string, entityID string, from, to string, details entity.JSON) error
	LogDelete(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, entityName string, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(ctx, tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"new_value": newValue,
	})
}

// LogTransition logs a status change from one state to another
func (s *auditService) LogTransition(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, entityName string, entityID string, from, to string, details entity.JSON) error {
	metadata := entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"from":      from,
		"to":        to,
	}
	for k, v := range details {
		metadata[k] = v
	}
	return s.write(ctx, tx, actor, action, metadata)
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.write(ctx, tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
	})
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, actor entity.Actor, action string, metadata entity.JSON) error {
	metadata["actor_role"] = string(actor.Role)

	auditLog := &entity.AuditLog{
		Action:   action,
		Metadata: metadata,
	}
	if actor.ID != uuid.Nil {
		userID := actor.ID
		auditLog.UserID = &userID
	}

	if err := s.auditRepo.Create(tx.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
