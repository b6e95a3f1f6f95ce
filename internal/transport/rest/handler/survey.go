package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/middleware"
)

// SurveyHandler handles the owner's survey list
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// CloseSurveyRequest optionally names the numeric survey id so cached
// results can be dropped
type CloseSurveyRequest struct {
	SurveyID int `json:"survey_id"`
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.surveySvc.ListMine(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Close handles POST /v1/surveys/{niceUrl}/close
func (h *SurveyHandler) Close(w http.ResponseWriter, r *http.Request) {
	niceURL := mux.Vars(r)["niceUrl"]

	var req CloseSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	surveyID := ""
	if req.SurveyID > 0 {
		surveyID = strconv.Itoa(req.SurveyID)
	}

	if err := h.surveySvc.Close(r.Context(), middleware.GetSession(r.Context()), niceURL, surveyID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
