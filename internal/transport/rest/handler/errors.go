package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"surveystudio/internal/backend"
	"surveystudio/internal/editor"
	"surveystudio/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and backend errors to a status code
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":         verr.Error(),
			"reason":        verr.Reason,
			"questionIndex": verr.QuestionIndex,
			"optionIndex":   verr.OptionIndex,
		})
		return
	}
	var aerr *service.AnswerError
	if errors.As(err, &aerr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      aerr.Error(),
			"reason":     aerr.Reason,
			"questionId": aerr.QuestionID,
		})
		return
	}
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, service.ErrSessionEnded),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, backend.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEditorNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSaveInProgress),
		errors.Is(err, service.ErrNoPendingNavigate),
		errors.Is(err, service.ErrRefineLocked),
		errors.Is(err, service.ErrSurveyNotOpen):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrUnknownCommand),
		errors.Is(err, service.ErrEmptySubmission),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, editor.ErrInvalidType):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
