package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveystudio/internal/model"
	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/middleware"
)

// EditorHandler handles builder sessions
type EditorHandler struct {
	editorSvc *service.EditorService
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorSvc *service.EditorService) *EditorHandler {
	return &EditorHandler{editorSvc: editorSvc}
}

// OpenEditorRequest names the survey to edit; empty starts a new one
type OpenEditorRequest struct {
	NiceURL string `json:"nice_url"`
}

// SaveRequest carries the status to save with
type SaveRequest struct {
	Status model.SurveyStatus `json:"status"`
}

// NavigateRequest carries the navigation target
type NavigateRequest struct {
	Target string `json:"target"`
}

// decodeOptional decodes a JSON body that may be empty
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Open handles POST /v1/editors
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenEditorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.editorSvc.Open(r.Context(), middleware.GetSession(r.Context()), req.NiceURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// List handles GET /v1/editors
func (h *EditorHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.editorSvc.ListOpen(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Get handles GET /v1/editors/{id}
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.editorSvc.Get(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Discard handles DELETE /v1/editors/{id}
func (h *EditorHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.editorSvc.Discard(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Command handles POST /v1/editors/{id}/commands
func (h *EditorHandler) Command(w http.ResponseWriter, r *http.Request) {
	var cmd service.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.editorSvc.Apply(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"], cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Save handles POST /v1/editors/{id}/save
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	req := SaveRequest{Status: model.StatusDraft}
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.editorSvc.Save(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Generate handles POST /v1/editors/{id}/generate
func (h *EditorHandler) Generate(w http.ResponseWriter, r *http.Request) {
	view, added, err := h.editorSvc.Generate(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"editor": view, "added": added})
}

// Refine handles POST /v1/editors/{id}/questions/{index}/refine
func (h *EditorHandler) Refine(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}
	view, err := h.editorSvc.Refine(r.Context(), middleware.GetSession(r.Context()), vars["id"], index)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Navigate handles POST /v1/editors/{id}/navigate
func (h *EditorHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Target == "" {
		writeError(w, http.StatusBadRequest, "missing navigation target")
		return
	}
	decision, view, err := h.editorSvc.Navigate(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"], req.Target)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"decision": decision, "editor": view})
}

// ConfirmNavigation handles POST /v1/editors/{id}/navigate/confirm
func (h *EditorHandler) ConfirmNavigation(w http.ResponseWriter, r *http.Request) {
	target, view, err := h.editorSvc.ConfirmNavigation(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"target": target, "editor": view})
}

// CancelNavigation handles POST /v1/editors/{id}/navigate/cancel
func (h *EditorHandler) CancelNavigation(w http.ResponseWriter, r *http.Request) {
	view, err := h.editorSvc.CancelNavigation(r.Context(), middleware.GetSession(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
