package api

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/planmark/planmark-go/internal/database/repositories"
	"github.com/planmark/planmark-go/internal/services/costlink"
	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/pubsub"
)

type fileInput struct {
	Name       string `json:"name"`
	Mime       string `json:"mime"`
	DataBase64 string `json:"dataBase64"`
}

type saveDesignRequest struct {
	Name      string     `json:"name"`
	ProjectID *string    `json:"projectId"`
	File      *fileInput `json:"file"`
}

type saveDesignResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) listDesigns(w http.ResponseWriter, r *http.Request) {
	if h.designs == nil {
		writeError(w, errUnavailable)
		return
	}
	list, err := h.designs.List(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// saveDesign stores the open design. Saving again after a save or open
// updates the same record.
func (h *Handler) saveDesign(w http.ResponseWriter, r *http.Request) {
	if h.designs == nil {
		writeError(w, errUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	var req saveDesignRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}

	var file *persistence.File
	if req.File != nil {
		data, err := base64.StdEncoding.DecodeString(req.File.DataBase64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid file data: %v", errBadRequest, err))
			return
		}
		file = &persistence.File{Name: req.File.Name, Mime: req.File.Mime, Data: data}
	}

	id, err := h.designs.Save(r.Context(), req.Name, h.workspace.Snapshot(), file, req.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.workspace.MarkSaved(id, req.Name)
	h.rememberDesign(r, id)

	writeJSON(w, http.StatusCreated, saveDesignResponse{ID: id, Name: req.Name})
}

// getSavedDesign returns a stored snapshot without opening it.
func (h *Handler) getSavedDesign(w http.ResponseWriter, r *http.Request) {
	if h.designs == nil {
		writeError(w, errUnavailable)
		return
	}
	snap, _, err := h.designs.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) getDesignFile(w http.ResponseWriter, r *http.Request) {
	if h.designs == nil {
		writeError(w, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	_, file, err := h.designs.Load(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if file == nil {
		writeError(w, fmt.Errorf("drawing for %s: %w", id, persistence.ErrDesignNotFound))
		return
	}

	mime := file.Mime
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	if file.Name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		log.Printf("Failed to write design file: %v", err)
	}
}

// openDesign replaces the workspace with a stored design.
func (h *Handler) openDesign(w http.ResponseWriter, r *http.Request) {
	if h.designs == nil {
		writeError(w, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	snap, _, err := h.designs.Load(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.workspace.Open(*snap); err != nil {
		writeError(w, err)
		return
	}
	h.rememberDesign(r, id)
	writeJSON(w, http.StatusOK, h.workspace.State())
}

func (h *Handler) deleteDesign(w http.ResponseWriter, r *http.Request) {
	if h.designs == nil {
		writeError(w, errUnavailable)
		return
	}
	if err := h.designs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rememberDesign records the design to reopen on the next start.
func (h *Handler) rememberDesign(r *http.Request, id string) {
	if h.settings == nil {
		return
	}
	if _, err := h.settings.Upsert(r.Context(), repositories.SettingLastDesignID, id); err != nil {
		log.Printf("Failed to remember last design: %v", err)
	}
}

func (h *Handler) saveMapping(w http.ResponseWriter, r *http.Request) {
	if h.costs == nil {
		writeError(w, errUnavailable)
		return
	}
	var m costlink.Mapping
	if err := decode(r, &m); err != nil {
		writeError(w, err)
		return
	}
	if m.Kind == "" || m.Key == "" || m.BOQItemID == "" {
		writeError(w, fmt.Errorf("%w: kind, key and boqItemId are required", errBadRequest))
		return
	}
	if err := h.costs.SaveMapping(r.Context(), chi.URLParam(r, "projectID"), m); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// costLink writes the current take-off into the project's bill of quantities.
func (h *Handler) costLink(w http.ResponseWriter, r *http.Request) {
	if h.costs == nil {
		writeError(w, errUnavailable)
		return
	}
	report, err := h.costs.LinkProject(r.Context(), chi.URLParam(r, "projectID"), h.workspace.TakeOff())
	if err != nil {
		writeError(w, err)
		return
	}
	if h.pubsub != nil {
		h.pubsub.PublishAll(pubsub.TopicTakeoffLinked, report)
	}
	writeJSON(w, http.StatusOK, report)
}
