package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-vaccination-booking/pkg/apperror"
)

func TestFromError(t *testing.T) {
	errTaken := apperror.Conflict("slot is already booked")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantKind    string
	}{
		{"conflict", fmt.Errorf("book: %w", errTaken), http.StatusBadRequest, "slot is already booked", "conflict"},
		{"not found", apperror.NotFound("child not found"), http.StatusNotFound, "child not found", "not_found"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "Failed to book slot", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err, "Failed to book slot")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
				Error   *struct {
					Kind string `json:"kind"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success {
				t.Error("success should be false")
			}
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
			if tt.wantKind == "" {
				if body.Error != nil {
					t.Errorf("internal errors must not expose a kind, got %+v", body.Error)
				}
				return
			}
			if body.Error == nil || body.Error.Kind != tt.wantKind {
				t.Errorf("error = %+v, want kind %q", body.Error, tt.wantKind)
			}
		})
	}
}
