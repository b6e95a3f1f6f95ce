package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/middleware"
)

// ExportHandler serves result downloads
type ExportHandler struct {
	exportSvc *service.ExportService
	log       logrus.FieldLogger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportSvc *service.ExportService, log logrus.FieldLogger) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, log: log}
}

// ExportAllRequest lists the surveys of a batch export
type ExportAllRequest struct {
	Format  service.ExportFormat `json:"format"`
	Surveys []service.ExportItem `json:"surveys"`
}

// Export handles GET /v1/surveys/{surveyId}/export/{format}?title=
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item := service.ExportItem{SurveyID: vars["surveyId"], Title: r.URL.Query().Get("title")}

	f, err := h.exportSvc.Export(r.Context(), middleware.GetSession(r.Context()), item, service.ExportFormat(vars["format"]))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}

// ExportAll handles POST /v1/exports and streams a zip of every file that
// exported, with manifest.json listing the failures
func (h *ExportHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	var req ExportAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Surveys) == 0 {
		writeError(w, http.StatusBadRequest, "no surveys to export")
		return
	}

	batch, err := h.exportSvc.ExportAll(r.Context(), middleware.GetSession(r.Context()), req.Surveys, req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	name := fmt.Sprintf("survey_exports_%s.zip", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := service.WriteZip(w, batch); err != nil {
		h.log.WithError(err).Error("failed to stream export zip")
	}
}
