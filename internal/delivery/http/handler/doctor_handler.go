package handler

import (
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

// DoctorHandler serves doctor accounts. Creation is admin only, the listing
// is open to any authenticated user.
type DoctorHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewDoctorHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateDoctorRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.authUsecase.CreateDoctor(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create doctor")
		return
	}

	response.Success(w, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *DoctorHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.authUsecase.GetDoctors(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}
