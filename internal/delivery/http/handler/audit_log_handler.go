package handler

import (
	"net/http"
	"strconv"

	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	auditLogID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid audit log ID", nil)
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), actor, auditLogID)
	if err != nil {
		response.FromError(w, err, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

// GetAllAuditLogs accepts ?action=, ?user_id= and ?limit= filters
func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := entity.AuditLogFilter{Action: query.Get("action")}
	if raw := query.Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}
		filter.UserID = &userID
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.Error(w, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		filter.Limit = limit
	}

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), actor, filter)
	if err != nil {
		response.FromError(w, err, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs)
}
