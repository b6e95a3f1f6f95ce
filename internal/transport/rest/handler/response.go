package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveystudio/internal/model"
	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/middleware"
)

// ResponseHandler serves published surveys to respondents
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// SubmitRequest carries one respondent's answers
type SubmitRequest struct {
	Answers []model.AnswerInput `json:"answers"`
}

// Browse handles GET /v1/browse
func (h *ResponseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	list, err := h.responseSvc.Browse(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Form handles GET /v1/browse/{niceUrl}
func (h *ResponseHandler) Form(w http.ResponseWriter, r *http.Request) {
	sv, err := h.responseSvc.Form(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["niceUrl"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

// Submit handles POST /v1/browse/{niceUrl}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.responseSvc.Submit(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["niceUrl"], req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "recorded", "answers": n})
}
