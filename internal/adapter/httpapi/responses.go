package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"weather-audit/internal/domain"
	"weather-audit/internal/store"
)

// errorResponse is the JSON envelope for every non-2xx body.
type errorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// incompleteDataDetails accompanies an audit rejected over missing days.
type incompleteDataDetails struct {
	Found        int                 `json:"found"`
	Expected     int                 `json:"expected"`
	Missing      int                 `json:"missing"`
	FetchRequest domain.FetchRequest `json:"fetchRequest"`
}

// noDataDetails accompanies an audit rejected over an empty range.
type noDataDetails struct {
	FetchRequest domain.FetchRequest `json:"fetchRequest"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

// writeError translates domain and store errors into HTTP responses. Gate
// failures stay 400s with their remediation attached; unexpected errors are
// logged and collapse to an opaque 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		valErr     *validationError
		notFound   *domain.NotFoundError
		noData     *domain.NoDataError
		incomplete *domain.IncompleteDataError
	)
	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "validation failed",
			Details: valErr.Fields,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: notFound.Error()})
	case errors.As(err, &noData):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: noData.Error(),
			Details: noDataDetails{FetchRequest: noData.Remediation},
		})
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: incomplete.Error(),
			Details: incompleteDataDetails{
				Found:        incomplete.Found,
				Expected:     incomplete.Expected,
				Missing:      incomplete.Missing,
				FetchRequest: incomplete.Remediation,
			},
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "record not found"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}
