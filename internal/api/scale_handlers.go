package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder for scans
	_ "image/png"  // register PNG decoder for scans
	"net/http"
	"strings"

	"github.com/planmark/planmark-go/internal/services/takeoff"
	"github.com/planmark/planmark-go/pkg/geometry"
)

type beginCalibrationRequest struct {
	Start geometry.Point `json:"start"`
	End   geometry.Point `json:"end"`
}

type beginCalibrationResponse struct {
	PixelDistance float64 `json:"pixelDistance"`
}

type completeCalibrationRequest struct {
	RealDistance float64 `json:"realDistance"`
}

type takeoffResponse struct {
	Summary takeoff.Summary `json:"summary"`
	Rows    []takeoff.Row   `json:"rows"`
}

// scanRequest carries the rendered drawing and the screen selection.
// ImageBase64 may be a bare payload or a data URL.
type scanRequest struct {
	ImageBase64 string        `json:"imageBase64"`
	Rect        geometry.Rect `json:"rect"`
}

func (h *Handler) beginCalibration(w http.ResponseWriter, r *http.Request) {
	var req beginCalibrationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	px := h.workspace.BeginCalibration(req.Start, req.End)
	writeJSON(w, http.StatusOK, beginCalibrationResponse{PixelDistance: px})
}

func (h *Handler) completeCalibration(w http.ResponseWriter, r *http.Request) {
	var req completeCalibrationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	info, err := h.workspace.CompleteCalibration(req.RealDistance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) cancelCalibration(w http.ResponseWriter, r *http.Request) {
	h.workspace.CancelCalibration()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) takeoff(w http.ResponseWriter, r *http.Request) {
	summary := h.workspace.TakeOff()
	rows := summary.Rows()
	if rows == nil {
		rows = []takeoff.Row{}
	}
	writeJSON(w, http.StatusOK, takeoffResponse{Summary: summary, Rows: rows})
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	var req scanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	img, err := decodeImage(req.ImageBase64)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.workspace.ScanRegion(r.Context(), img, req.Rect)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeImage(payload string) (image.Image, error) {
	if i := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && i >= 0 {
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: image is required", errBadRequest)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %v", errBadRequest, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image: %v", errBadRequest, err)
	}
	return img, nil
}
