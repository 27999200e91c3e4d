// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"io"
	"testing"
	"time"

	"go-vaccination-booking/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an isolated in-memory SQLite database with the full schema.
// A single connection serializes statements, which is enough for the
// conditional updates under test to behave like they do on PostgreSQL.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Child{},
		&entity.Vaccine{},
		&entity.DoseRecord{},
		&entity.DoctorSchedule{},
		&entity.AvailabilitySlot{},
		&entity.Appointment{},
		&entity.Notification{},
		&entity.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// NewLogger returns a logger that discards output
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// CreateUser inserts an active user with the given role
func CreateUser(t *testing.T, db *gorm.DB, role entity.Role, name string) *entity.User {
	t.Helper()

	user := &entity.User{
		Role:     role,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: "x",
		FullName: name,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
