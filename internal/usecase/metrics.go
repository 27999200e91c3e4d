package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "go-vaccination-booking/internal/usecase"

// domainMetrics records booking and transition outcomes. Instruments come
// from the global meter provider and are no-ops until telemetry is set up.
type domainMetrics struct {
	bookings        metric.Int64Counter
	doseTransitions metric.Int64Counter
	overdueMarked   metric.Int64Counter
	appointments    metric.Int64Counter
}

var metrics = newDomainMetrics()

func newDomainMetrics() *domainMetrics {
	meter := otel.Meter(meterName)

	bookings, _ := meter.Int64Counter(
		"booking_attempts_total",
		metric.WithDescription("Slot reservation attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	doseTransitions, _ := meter.Int64Counter(
		"dose_transitions_total",
		metric.WithDescription("Dose status transitions by target status"),
		metric.WithUnit("{transition}"),
	)
	overdueMarked, _ := meter.Int64Counter(
		"dose_overdue_marked_total",
		metric.WithDescription("Doses moved to delayed by the overdue scan"),
		metric.WithUnit("{dose}"),
	)
	appointments, _ := meter.Int64Counter(
		"appointment_transitions_total",
		metric.WithDescription("Appointment status transitions by target status"),
		metric.WithUnit("{transition}"),
	)

	return &domainMetrics{
		bookings:        bookings,
		doseTransitions: doseTransitions,
		overdueMarked:   overdueMarked,
		appointments:    appointments,
	}
}

func (m *domainMetrics) booking(ctx context.Context, outcome string) {
	m.bookings.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *domainMetrics) doseTransition(ctx context.Context, status string) {
	m.doseTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *domainMetrics) overdue(ctx context.Context, count int64) {
	if count > 0 {
		m.overdueMarked.Add(ctx, count)
	}
}

func (m *domainMetrics) appointment(ctx context.Context, status string) {
	m.appointments.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
