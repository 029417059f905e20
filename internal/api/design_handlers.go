package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/pkg/geometry"
)

type viewRequest struct {
	Zoom   float64        `json:"zoom"`
	Offset geometry.Point `json:"offset"`
}

type equipmentRequest struct {
	Type     string         `json:"type"`
	Position geometry.Point `json:"position"`
	Rotation float64        `json:"rotation"`
	Name     string         `json:"name"`
}

// positionRequest moves a symbol. Drag is set for every update after the
// first of one pointer drag.
type positionRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Drag bool    `json:"drag"`
}

type containmentRequest struct {
	Type   string           `json:"type"`
	Size   string           `json:"size"`
	Points []geometry.Point `json:"points"`
}

type walkwayRequest struct {
	Points []geometry.Point `json:"points"`
	Width  float64          `json:"width"`
}

type zoneRequest struct {
	Name   string           `json:"name"`
	Color  string           `json:"color"`
	Points []geometry.Point `json:"points"`
}

type roofMaskRequest struct {
	Points    []geometry.Point `json:"points"`
	Pitch     float64          `json:"pitch"`
	Direction float64          `json:"direction"`
}

type pvArrayRequest struct {
	RoofID      string               `json:"roofId"`
	X           float64              `json:"x"`
	Y           float64              `json:"y"`
	Rows        int                  `json:"rows"`
	Cols        int                  `json:"cols"`
	Orientation design.PVOrientation `json:"orientation"`
	Rotation    float64              `json:"rotation"`
}

type taskRequest struct {
	Title        string `json:"title"`
	LinkedItemID string `json:"linkedItemId"`
	AssignedTo   string `json:"assignedTo"`
}

type taskStatusRequest struct {
	Status design.TaskStatus `json:"status"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

func (h *Handler) getDesign(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workspace.State())
}

func (h *Handler) undo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, changedResponse{Changed: h.workspace.Undo()})
}

func (h *Handler) redo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, changedResponse{Changed: h.workspace.Redo()})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.workspace.NewDesign()
	writeJSON(w, http.StatusOK, h.workspace.State())
}

func (h *Handler) setView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.workspace.SetView(req.Zoom, req.Offset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.workspace.View())
}

func (h *Handler) setLayers(w http.ResponseWriter, r *http.Request) {
	var layers map[string]bool
	if err := decode(r, &layers); err != nil {
		writeError(w, err)
		return
	}
	h.workspace.SetLayers(layers)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addEquipment(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	eq, err := h.workspace.AddEquipment(req.Type, req.Position, req.Rotation, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eq)
}

func (h *Handler) moveEquipment(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	pos := geometry.Pt(req.X, req.Y)

	var err error
	if req.Drag {
		err = h.workspace.DragEquipment(id, pos)
	} else {
		err = h.workspace.MoveEquipment(id, pos)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addCable(w http.ResponseWriter, r *http.Request) {
	var spec design.CableSpec
	if err := decode(r, &spec); err != nil {
		writeError(w, err)
		return
	}
	cable, err := h.workspace.AddCable(spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cable)
}

func (h *Handler) addContainment(w http.ResponseWriter, r *http.Request) {
	var req containmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.workspace.AddContainment(req.Type, req.Size, req.Points)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) addWalkway(w http.ResponseWriter, r *http.Request) {
	var req walkwayRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	wk, err := h.workspace.AddWalkway(req.Points, req.Width)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wk)
}

func (h *Handler) addZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	z, err := h.workspace.AddZone(req.Name, req.Color, req.Points)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, z)
}

func (h *Handler) addRoofMask(w http.ResponseWriter, r *http.Request) {
	var req roofMaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.workspace.AddRoofMask(req.Points, req.Pitch, req.Direction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) addPVArray(w http.ResponseWriter, r *http.Request) {
	var req pvArrayRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	arr, err := h.workspace.AddPVArray(req.RoofID, req.X, req.Y, req.Rows, req.Cols, req.Orientation, req.Rotation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, arr)
}

func (h *Handler) addTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := h.workspace.AddTask(req.Title, req.LinkedItemID, req.AssignedTo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) setTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req taskStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.workspace.SetTaskStatus(chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) moveScaleLabel(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pos := geometry.Pt(req.X, req.Y)
	if req.Drag {
		h.workspace.DragScaleLabel(pos)
	} else {
		h.workspace.MoveScaleLabel(pos)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.DeleteItem(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
