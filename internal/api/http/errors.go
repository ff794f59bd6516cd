package http

import (
	"encoding/json"
	"net/http"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/logger"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindForbidden:         http.StatusForbidden,
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInvalidTransition: http.StatusUnprocessableEntity,
	apperr.KindExternalFailure:   http.StatusPaymentRequired,
	apperr.KindUnauthorized:      http.StatusUnauthorized,
	apperr.KindInternal:          http.StatusInternalServerError,
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "kind", kind, "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind.String(), Message: apperr.MessageOf(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
