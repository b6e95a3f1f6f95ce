package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"surveystudio/internal/results"
	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/middleware"
)

// ResultsHandler serves dashboard results
type ResultsHandler struct {
	resultsSvc *service.ResultsService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(resultsSvc *service.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsSvc: resultsSvc}
}

func refresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}

// Get handles GET /v1/results/{surveyId}
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.resultsSvc.Load(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["surveyId"], refresh(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// View handles GET /v1/results/{surveyId}/view. Load failures are part of
// the returned view.
func (h *ResultsHandler) View(w http.ResponseWriter, r *http.Request) {
	v, err := h.resultsSvc.View(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["surveyId"], refresh(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Trend handles GET /v1/results/{surveyId}/trend?granularity=daily|monthly
func (h *ResultsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	g := results.Granularity(r.URL.Query().Get("granularity"))
	points, err := h.resultsSvc.Trend(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["surveyId"], g)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
