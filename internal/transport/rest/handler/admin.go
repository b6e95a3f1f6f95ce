package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/middleware"
)

// AdminHandler handles account administration
type AdminHandler struct {
	adminSvc *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Users handles GET /v1/admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminSvc.ListUsers(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Ban handles POST /v1/admin/ban/{userId}
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["userId"])
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.adminSvc.Ban(r.Context(), middleware.GetSession(r.Context()), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "isBanned": true})
}
