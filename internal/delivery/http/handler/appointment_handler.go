package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"

	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment requested successfully", appointment)
}

func (h *AppointmentHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.appointmentUsecase.GetAppointments)
}

func (h *AppointmentHandler) GetPendingAppointments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.appointmentUsecase.GetPendingAppointments)
}

func (h *AppointmentHandler) GetTodayAppointments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.appointmentUsecase.GetTodayAppointments)
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	appointments, err := fetch(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), actor, appointmentID)
	if err != nil {
		response.FromError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// ConfirmAppointment accepts an optional body naming the slot to reserve
func (h *AppointmentHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req *dto.ConfirmAppointmentRequest
	var body dto.ConfirmAppointmentRequest
	err := json.NewDecoder(r.Body).Decode(&body)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	default:
		if err := h.validator.Validate(&body); err != nil {
			response.ValidationError(w, h.validator.FormatValidationErrors(err))
			return
		}
		req = &body
	}

	appointment, err := h.appointmentUsecase.ConfirmAppointment(r.Context(), actor, appointmentID, req)
	if err != nil {
		response.FromError(w, err, "Failed to confirm appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment confirmed successfully", appointment)
}

func (h *AppointmentHandler) RejectAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.RejectAppointmentRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.RejectAppointment(r.Context(), actor, appointmentID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to reject appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rejected successfully", appointment)
}

func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.CompleteAppointment, "Appointment completed successfully", "Failed to complete appointment")
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.CancelAppointment, "Appointment cancelled successfully", "Failed to cancel appointment")
}

func (h *AppointmentHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error),
	success, failure string,
) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := apply(r.Context(), actor, appointmentID)
	if err != nil {
		response.FromError(w, err, failure)
		return
	}

	response.Success(w, http.StatusOK, success, appointment)
}
