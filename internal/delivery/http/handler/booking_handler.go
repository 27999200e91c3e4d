package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// BookSlot reserves a slot for the calling parent. The body is optional and
// only needed to open an appointment for a child alongside the booking.
func (h *BookingHandler) BookSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule")
	if !ok {
		return
	}
	slotID, ok := pathUUID(w, r, "slotId", "slot")
	if !ok {
		return
	}

	var req *dto.BookSlotRequest
	var body dto.BookSlotRequest
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

	booking, err := h.bookingUsecase.BookSlot(r.Context(), actor, scheduleID, slotID, req)
	if err != nil {
		response.FromError(w, err, "Failed to book slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot booked successfully", booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule")
	if !ok {
		return
	}
	slotID, ok := pathUUID(w, r, "slotId", "slot")
	if !ok {
		return
	}

	schedule, err := h.bookingUsecase.CancelBooking(r.Context(), actor, scheduleID, slotID)
	if err != nil {
		response.FromError(w, err, "Failed to cancel booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", schedule)
}
