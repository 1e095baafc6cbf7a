package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/planner"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/pkg/errors"
)

const maxBodySize = 1 << 20 // 1Mb

func getQueryPage(query url.Values, defaultValue int) int {
	return getQueryInt(query, "page", defaultValue)
}

func getQueryLimit(query url.Values, defaultValue int) int {
	return getQueryInt(query, "limit", defaultValue)
}

func getQueryInt(query url.Values, name string, defaultValue int) int {
	raw := query.Get(name)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return defaultValue
	}

	return int(value)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, res any) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := encoder.Encode(res); err != nil {
		slog.ErrorContext(r.Context(), "could not encode response", slog.Any("error", errors.WithStack(err)))
	}
}

// writeError maps domain errors to client errors carrying their message.
// Any other error is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var invalidTransition *planner.InvalidTransitionError

	switch {
	case errors.As(err, &invalidTransition):
		writeJSON(w, r, http.StatusUnprocessableEntity, ErrorResponse{Error: invalidTransition.Error()})
	case errors.Is(err, port.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{Error: http.StatusText(http.StatusNotFound)})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, model.ErrUnknownValue):
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, port.ErrCanceled):
		writeJSON(w, r, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), message, slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return errors.Wrapf(service.ErrInvalidInput, "could not decode request body: %s", err.Error())
	}

	return nil
}
