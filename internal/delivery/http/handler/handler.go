package handler

import (
	"encoding/json"
	"net/http"

	"go-vaccination-booking/internal/delivery/http/middleware"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// decodeRequest reads a JSON body into req and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}

	return true
}

func currentActor(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return actor, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
