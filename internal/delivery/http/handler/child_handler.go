package handler

import (
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

type ChildHandler struct {
	childUsecase usecase.ChildUsecase
	validator    *validator.CustomValidator
}

func NewChildHandler(childUsecase usecase.ChildUsecase, validator *validator.CustomValidator) *ChildHandler {
	return &ChildHandler{
		childUsecase: childUsecase,
		validator:    validator,
	}
}

// CreateChild registers a child and generates the dose schedule
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateChildRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	child, err := h.childUsecase.CreateChild(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create child")
		return
	}

	response.Success(w, http.StatusCreated, "Child registered successfully", child)
}

func (h *ChildHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	children, err := h.childUsecase.GetChildren(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get children")
		return
	}

	response.Success(w, http.StatusOK, "Children retrieved successfully", children)
}

func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	childID, ok := pathUUID(w, r, "id", "child")
	if !ok {
		return
	}

	child, err := h.childUsecase.GetChild(r.Context(), actor, childID)
	if err != nil {
		response.FromError(w, err, "Failed to get child")
		return
	}

	response.Success(w, http.StatusOK, "Child retrieved successfully", child)
}

func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	childID, ok := pathUUID(w, r, "id", "child")
	if !ok {
		return
	}

	var req dto.UpdateChildRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	child, err := h.childUsecase.UpdateChild(r.Context(), actor, childID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update child")
		return
	}

	response.Success(w, http.StatusOK, "Child updated successfully", child)
}

func (h *ChildHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	childID, ok := pathUUID(w, r, "id", "child")
	if !ok {
		return
	}

	if err := h.childUsecase.DeleteChild(r.Context(), actor, childID); err != nil {
		response.FromError(w, err, "Failed to delete child")
		return
	}

	response.Success(w, http.StatusOK, "Child deleted successfully", nil)
}
