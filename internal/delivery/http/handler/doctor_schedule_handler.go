package handler

import (
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

type DoctorScheduleHandler struct {
	scheduleUsecase usecase.DoctorScheduleUsecase
	validator       *validator.CustomValidator
}

func NewDoctorScheduleHandler(scheduleUsecase usecase.DoctorScheduleUsecase, validator *validator.CustomValidator) *DoctorScheduleHandler {
	return &DoctorScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
	}
}

// UpsertSchedule creates or updates the calling doctor's schedule for a date
func (h *DoctorScheduleHandler) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.UpsertScheduleRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	schedule, err := h.scheduleUsecase.UpsertSchedule(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to save schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule saved successfully", schedule)
}

func (h *DoctorScheduleHandler) AddSlots(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule")
	if !ok {
		return
	}

	var req dto.AddSlotsRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	schedule, err := h.scheduleUsecase.AddSlots(r.Context(), actor, scheduleID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to add slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots added successfully", schedule)
}

func (h *DoctorScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := pathUUID(w, r, "id", "schedule")
	if !ok {
		return
	}

	schedule, err := h.scheduleUsecase.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		response.FromError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", schedule)
}

// GetAvailableDoctors lists doctors with at least one free slot on ?date=
func (h *DoctorScheduleHandler) GetAvailableDoctors(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.Error(w, http.StatusBadRequest, "date query parameter is required", nil)
		return
	}

	doctors, err := h.scheduleUsecase.GetAvailableDoctors(r.Context(), date)
	if err != nil {
		response.FromError(w, err, "Failed to get available doctors")
		return
	}

	response.Success(w, http.StatusOK, "Available doctors retrieved successfully", doctors)
}

func (h *DoctorScheduleHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "doctorId", "doctor")
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		response.Error(w, http.StatusBadRequest, "date query parameter is required", nil)
		return
	}

	slots, err := h.scheduleUsecase.GetAvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		response.FromError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

func (h *DoctorScheduleHandler) GetDoctorSchedules(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "doctorId", "doctor")
	if !ok {
		return
	}

	query := r.URL.Query()
	schedules, err := h.scheduleUsecase.GetDoctorSchedules(r.Context(), doctorID, query.Get("from"), query.Get("to"))
	if err != nil {
		response.FromError(w, err, "Failed to get schedules")
		return
	}

	response.Success(w, http.StatusOK, "Schedules retrieved successfully", schedules)
}

func (h *DoctorScheduleHandler) GetMySchedules(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	schedules, err := h.scheduleUsecase.GetMySchedules(r.Context(), actor, query.Get("from"), query.Get("to"))
	if err != nil {
		response.FromError(w, err, "Failed to get schedules")
		return
	}

	response.Success(w, http.StatusOK, "Schedules retrieved successfully", schedules)
}

func (h *DoctorScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule")
	if !ok {
		return
	}

	if err := h.scheduleUsecase.DeleteSchedule(r.Context(), actor, scheduleID); err != nil {
		response.FromError(w, err, "Failed to delete schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule deleted successfully", nil)
}
