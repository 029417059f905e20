package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/planmark/planmark-go/internal/services/analysis"
	"github.com/planmark/planmark-go/internal/services/costlink"
	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/internal/services/scale"
	"github.com/planmark/planmark-go/internal/services/workspace"
)

// errUnavailable is returned when an optional collaborator is not wired.
var errUnavailable = errors.New("service unavailable")

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, workspace.ErrInvalidInput),
		errors.Is(err, scale.ErrInvalidDistance),
		errors.Is(err, region.ErrInvalidZoom),
		errors.Is(err, analysis.ErrUnsupportedMime),
		errors.Is(err, analysis.ErrEmptyImage):
		return http.StatusBadRequest
	case errors.Is(err, workspace.ErrItemNotFound),
		errors.Is(err, persistence.ErrDesignNotFound),
		errors.Is(err, errProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrScaleNotSet),
		errors.Is(err, scale.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, workspace.ErrDegenerateGeometry),
		errors.Is(err, region.ErrRegionTooSmallOrOutOfBounds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errUnavailable),
		errors.Is(err, analysis.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, workspace.ErrCollaborator),
		errors.Is(err, persistence.ErrCollaborator),
		errors.Is(err, costlink.ErrCollaborator):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

// decode reads a JSON body into v.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// health returns the server health status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.opts.Version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}
