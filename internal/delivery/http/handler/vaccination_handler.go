package handler

import (
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

type VaccinationHandler struct {
	vaccinationUsecase usecase.VaccinationUsecase
	validator          *validator.CustomValidator
}

func NewVaccinationHandler(vaccinationUsecase usecase.VaccinationUsecase, validator *validator.CustomValidator) *VaccinationHandler {
	return &VaccinationHandler{
		vaccinationUsecase: vaccinationUsecase,
		validator:          validator,
	}
}

// UpdateVaccination applies a dose status transition
func (h *VaccinationHandler) UpdateVaccination(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	vaccinationID, ok := pathUUID(w, r, "id", "vaccination")
	if !ok {
		return
	}

	var req dto.UpdateVaccinationRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	vaccination, err := h.vaccinationUsecase.UpdateVaccination(r.Context(), actor, vaccinationID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update vaccination")
		return
	}

	response.Success(w, http.StatusOK, "Vaccination updated successfully", vaccination)
}

func (h *VaccinationHandler) GetChildVaccinations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	childID, ok := pathUUID(w, r, "childId", "child")
	if !ok {
		return
	}

	vaccinations, err := h.vaccinationUsecase.GetChildVaccinations(r.Context(), actor, childID)
	if err != nil {
		response.FromError(w, err, "Failed to get vaccinations")
		return
	}

	response.Success(w, http.StatusOK, "Vaccinations retrieved successfully", vaccinations)
}

func (h *VaccinationHandler) GetUpcomingVaccinations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	vaccinations, err := h.vaccinationUsecase.GetUpcomingVaccinations(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get upcoming vaccinations")
		return
	}

	response.Success(w, http.StatusOK, "Upcoming vaccinations retrieved successfully", vaccinations)
}

func (h *VaccinationHandler) GetDelayedVaccinations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	vaccinations, err := h.vaccinationUsecase.GetDelayedVaccinations(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get delayed vaccinations")
		return
	}

	response.Success(w, http.StatusOK, "Delayed vaccinations retrieved successfully", vaccinations)
}

func (h *VaccinationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	stats, err := h.vaccinationUsecase.GetStats(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get vaccination stats")
		return
	}

	response.Success(w, http.StatusOK, "Vaccination stats retrieved successfully", stats)
}
