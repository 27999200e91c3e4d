package http

import (
	"net/http"

	"go-vaccination-booking/internal/delivery/http/handler"
	"go-vaccination-booking/internal/delivery/http/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth           *handler.AuthHandler
	Doctor         *handler.DoctorHandler
	DoctorSchedule *handler.DoctorScheduleHandler
	Booking        *handler.BookingHandler
	Child          *handler.ChildHandler
	Vaccine        *handler.VaccineHandler
	Vaccination    *handler.VaccinationHandler
	Appointment    *handler.AppointmentHandler
	Notification   *handler.NotificationHandler
	AuditLog       *handler.AuditLogHandler
}

type Router struct {
	router         *mux.Router
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
	bookingLimiter *middleware.RateLimiter
	log            *logrus.Logger
	metricsPath    string
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	bookingLimiter *middleware.RateLimiter,
	log *logrus.Logger,
	metricsPath string,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		handlers:       handlers,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
		bookingLimiter: bookingLimiter,
		log:            log,
		metricsPath:    metricsPath,
	}
}

func (r *Router) Setup() *mux.Router {
	h := r.handlers

	if r.metricsPath != "" {
		r.router.Handle(r.metricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", h.Auth.RefreshToken).Methods(http.MethodPost)

	// Everything below requires a valid access token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", h.Auth.GetCurrentUser).Methods(http.MethodGet)

	protected.HandleFunc("/doctors", h.Doctor.GetDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/schedules", h.DoctorSchedule.GetDoctorSchedules).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/slots", h.DoctorSchedule.GetAvailableSlots).Methods(http.MethodGet)

	// Children
	protected.HandleFunc("/children", h.Child.CreateChild).Methods(http.MethodPost)
	protected.HandleFunc("/children", h.Child.GetChildren).Methods(http.MethodGet)
	protected.HandleFunc("/children/{id}", h.Child.GetChild).Methods(http.MethodGet)
	protected.HandleFunc("/children/{id}", h.Child.UpdateChild).Methods(http.MethodPut)
	protected.HandleFunc("/children/{id}", h.Child.DeleteChild).Methods(http.MethodDelete)

	// Vaccine catalog
	protected.HandleFunc("/vaccines", h.Vaccine.GetVaccines).Methods(http.MethodGet)
	protected.HandleFunc("/vaccines/{id}", h.Vaccine.GetVaccine).Methods(http.MethodGet)
	protected.Handle("/vaccines", middleware.RequireAdmin(http.HandlerFunc(h.Vaccine.CreateVaccine))).Methods(http.MethodPost)
	protected.Handle("/vaccines/seed", middleware.RequireAdmin(http.HandlerFunc(h.Vaccine.SeedVaccines))).Methods(http.MethodPost)
	protected.Handle("/vaccines/{id}", middleware.RequireAdmin(http.HandlerFunc(h.Vaccine.DeactivateVaccine))).Methods(http.MethodDelete)

	// Vaccinations
	protected.HandleFunc("/vaccinations/upcoming", h.Vaccination.GetUpcomingVaccinations).Methods(http.MethodGet)
	protected.HandleFunc("/vaccinations/delayed", h.Vaccination.GetDelayedVaccinations).Methods(http.MethodGet)
	protected.HandleFunc("/vaccinations/stats", h.Vaccination.GetStats).Methods(http.MethodGet)
	protected.HandleFunc("/vaccinations/child/{childId}", h.Vaccination.GetChildVaccinations).Methods(http.MethodGet)
	protected.HandleFunc("/vaccinations/{id}", h.Vaccination.UpdateVaccination).Methods(http.MethodPut)

	// Schedules and bookings
	protected.HandleFunc("/schedules", h.DoctorSchedule.UpsertSchedule).Methods(http.MethodPost)
	protected.HandleFunc("/schedules/available", h.DoctorSchedule.GetAvailableDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/schedules/mine", h.DoctorSchedule.GetMySchedules).Methods(http.MethodGet)
	protected.HandleFunc("/schedules/{id}", h.DoctorSchedule.GetSchedule).Methods(http.MethodGet)
	protected.HandleFunc("/schedules/{id}", h.DoctorSchedule.DeleteSchedule).Methods(http.MethodDelete)
	protected.HandleFunc("/schedules/{id}/slots", h.DoctorSchedule.AddSlots).Methods(http.MethodPost)
	protected.Handle("/schedules/{id}/book/{slotId}", r.bookingLimiter.Limit(http.HandlerFunc(h.Booking.BookSlot))).Methods(http.MethodPost)
	protected.HandleFunc("/schedules/{id}/book/{slotId}", h.Booking.CancelBooking).Methods(http.MethodDelete)

	// Appointments
	protected.HandleFunc("/appointments", h.Appointment.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", h.Appointment.GetAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/pending", h.Appointment.GetPendingAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/today", h.Appointment.GetTodayAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", h.Appointment.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/confirm", h.Appointment.ConfirmAppointment).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}/reject", h.Appointment.RejectAppointment).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}/complete", h.Appointment.CompleteAppointment).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}", h.Appointment.CancelAppointment).Methods(http.MethodDelete)

	// Notifications
	protected.HandleFunc("/notifications", h.Notification.GetNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/unread-count", h.Notification.GetUnreadCount).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/read-all", h.Notification.MarkAllRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id}/read", h.Notification.MarkRead).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors", h.Doctor.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", h.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", h.AuditLog.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(middleware.Telemetry())
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

// Handler wraps the routes with panic recovery and an access log
func (r *Router) Handler() http.Handler {
	routes := r.Setup()
	logged := handlers.CombinedLoggingHandler(r.log.Writer(), routes)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(r.log),
		handlers.PrintRecoveryStack(true),
	)(logged)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
