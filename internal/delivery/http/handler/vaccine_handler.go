package handler

import (
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

type VaccineHandler struct {
	vaccineUsecase usecase.VaccineUsecase
	validator      *validator.CustomValidator
}

func NewVaccineHandler(vaccineUsecase usecase.VaccineUsecase, validator *validator.CustomValidator) *VaccineHandler {
	return &VaccineHandler{
		vaccineUsecase: vaccineUsecase,
		validator:      validator,
	}
}

func (h *VaccineHandler) GetVaccines(w http.ResponseWriter, r *http.Request) {
	vaccines, err := h.vaccineUsecase.GetVaccines(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to get vaccines")
		return
	}

	response.Success(w, http.StatusOK, "Vaccines retrieved successfully", vaccines)
}

func (h *VaccineHandler) GetVaccine(w http.ResponseWriter, r *http.Request) {
	vaccineID, ok := pathUUID(w, r, "id", "vaccine")
	if !ok {
		return
	}

	vaccine, err := h.vaccineUsecase.GetVaccine(r.Context(), vaccineID)
	if err != nil {
		response.FromError(w, err, "Failed to get vaccine")
		return
	}

	response.Success(w, http.StatusOK, "Vaccine retrieved successfully", vaccine)
}

func (h *VaccineHandler) CreateVaccine(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateVaccineRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	vaccine, err := h.vaccineUsecase.CreateVaccine(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create vaccine")
		return
	}

	response.Success(w, http.StatusCreated, "Vaccine created successfully", vaccine)
}

// DeactivateVaccine retires a vaccine; existing dose records are kept
func (h *VaccineHandler) DeactivateVaccine(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	vaccineID, ok := pathUUID(w, r, "id", "vaccine")
	if !ok {
		return
	}

	if err := h.vaccineUsecase.DeactivateVaccine(r.Context(), actor, vaccineID); err != nil {
		response.FromError(w, err, "Failed to deactivate vaccine")
		return
	}

	response.Success(w, http.StatusOK, "Vaccine deactivated successfully", nil)
}

func (h *VaccineHandler) SeedVaccines(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	vaccines, err := h.vaccineUsecase.SeedNationalCalendar(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to seed vaccines")
		return
	}

	response.Success(w, http.StatusCreated, "Vaccine catalog seeded successfully", vaccines)
}
