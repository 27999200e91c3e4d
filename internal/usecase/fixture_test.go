package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-vaccination-booking/internal/converter"
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/repository"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/internal/testutil"

	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []entity.NotificationMessage
}

func (n *recordingNotifier) Notify(ctx context.Context, msg entity.NotificationMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) sent() []entity.NotificationMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.NotificationMessage(nil), n.messages...)
}

// memoryAvailabilityCache records invalidations and keeps snapshots in a map.
// beforeSet, when set, runs ahead of every Set so tests can interleave writes.
type memoryAvailabilityCache struct {
	mu          sync.Mutex
	entries     map[string][]entity.DoctorAvailability
	generations map[string]int64
	invalidated []string
	beforeSet   func()
}

func newMemoryAvailabilityCache() *memoryAvailabilityCache {
	return &memoryAvailabilityCache{
		entries:     make(map[string][]entity.DoctorAvailability),
		generations: make(map[string]int64),
	}
}

func (c *memoryAvailabilityCache) Get(ctx context.Context, date time.Time) ([]entity.DoctorAvailability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[date.Format(converter.DateLayout)]
	return entry, ok
}

func (c *memoryAvailabilityCache) Generation(ctx context.Context, date time.Time) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[date.Format(converter.DateLayout)], true
}

func (c *memoryAvailabilityCache) Set(ctx context.Context, date time.Time, generation int64, availability []entity.DoctorAvailability) {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := date.Format(converter.DateLayout)
	if c.generations[key] != generation {
		return
	}
	c.entries[key] = availability
}

func (c *memoryAvailabilityCache) Invalidate(ctx context.Context, dates ...time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, date := range dates {
		key := date.Format(converter.DateLayout)
		c.generations[key]++
		delete(c.entries, key)
		c.invalidated = append(c.invalidated, key)
	}
}

func (c *memoryAvailabilityCache) wasInvalidated(date string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.invalidated {
		if key == date {
			return true
		}
	}
	return false
}

// fixture wires every usecase against one in-memory database with a fixed
// clock
type fixture struct {
	db       *gorm.DB
	notifier *recordingNotifier
	cache    *memoryAvailabilityCache

	vaccines     VaccineUsecase
	children     ChildUsecase
	vaccinations VaccinationUsecase
	schedules    DoctorScheduleUsecase
	bookings     BookingUsecase
	appointments AppointmentUsecase
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.NewLogger()
	clock := func() time.Time { return now }

	userRepo := repository.NewUserRepository()
	childRepo := repository.NewChildRepository()
	vaccineRepo := repository.NewVaccineRepository()
	doseRepo := repository.NewDoseRecordRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	slotRepo := repository.NewAvailabilitySlotRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())

	notifier := &recordingNotifier{}
	cache := newMemoryAvailabilityCache()

	vaccines := NewVaccineUsecase(db, log, vaccineRepo, auditService)

	children := NewChildUsecase(db, log, childRepo, userRepo, vaccineRepo, doseRepo, appointmentRepo, slotRepo, auditService, cache)
	children.(*childUsecase).now = clock

	vaccinations := NewVaccinationUsecase(db, log, doseRepo, childRepo, auditService, notifier)
	vaccinations.(*vaccinationUsecase).now = clock

	schedules := NewDoctorScheduleUsecase(db, log, scheduleRepo, slotRepo, auditService, cache)
	schedules.(*doctorScheduleUsecase).now = clock

	bookings := NewBookingUsecase(db, log, scheduleRepo, slotRepo, childRepo, appointmentRepo, auditService, cache)
	bookings.(*bookingUsecase).now = clock

	appointments := NewAppointmentUsecase(db, log, appointmentRepo, childRepo, scheduleRepo, slotRepo, auditService, notifier, cache)
	appointments.(*appointmentUsecase).now = clock

	return &fixture{
		db:           db,
		notifier:     notifier,
		cache:        cache,
		vaccines:     vaccines,
		children:     children,
		vaccinations: vaccinations,
		schedules:    schedules,
		bookings:     bookings,
		appointments: appointments,
	}
}

func (f *fixture) actor(t *testing.T, role entity.Role, name string) entity.Actor {
	t.Helper()
	return testutil.CreateUser(t, f.db, role, name).Actor()
}

func (f *fixture) addVaccine(t *testing.T, name string, ages ...int) *entity.Vaccine {
	t.Helper()

	vaccine := &entity.Vaccine{
		Name:            name,
		RecommendedAges: entity.MonthList(ages),
		TotalDoses:      len(ages),
		IsMandatory:     true,
		IsActive:        true,
	}
	if err := f.db.Create(vaccine).Error; err != nil {
		t.Fatalf("create vaccine: %v", err)
	}
	return vaccine
}

func (f *fixture) addChild(t *testing.T, parent entity.Actor, birthDate string) *dto.CreateChildResponse {
	t.Helper()

	resp, err := f.children.CreateChild(context.Background(), parent, &dto.CreateChildRequest{
		Name:      "Ayu",
		BirthDate: birthDate,
		Gender:    entity.GenderFemale,
	})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	return resp
}

func (f *fixture) addSchedule(t *testing.T, doctor entity.Actor, date string, windows ...string) *dto.ScheduleResponse {
	t.Helper()

	slots := make([]dto.SlotRequest, 0, len(windows)/2)
	for i := 0; i+1 < len(windows); i += 2 {
		slots = append(slots, dto.SlotRequest{StartTime: windows[i], EndTime: windows[i+1]})
	}

	resp, err := f.schedules.UpsertSchedule(context.Background(), doctor, &dto.UpsertScheduleRequest{
		Date:  date,
		Slots: slots,
	})
	if err != nil {
		t.Fatalf("UpsertSchedule() error = %v", err)
	}
	return resp
}

func (f *fixture) slot(t *testing.T, schedule *dto.ScheduleResponse, start string) dto.SlotResponse {
	t.Helper()

	for _, slot := range schedule.Slots {
		if slot.StartTime == start {
			return slot
		}
	}
	t.Fatalf("schedule %s has no slot at %s", schedule.ID, start)
	return dto.SlotResponse{}
}

func (f *fixture) storedSlot(t *testing.T, id interface{}) entity.AvailabilitySlot {
	t.Helper()

	var slot entity.AvailabilitySlot
	if err := f.db.Where("id = ?", id).First(&slot).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	return slot
}
