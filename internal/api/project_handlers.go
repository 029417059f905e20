package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/planmark/planmark-go/internal/database/models"
)

var errProjectNotFound = errors.New("project not found")

type projectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	DesignCount int64     `json:"designCount"`
	BOQCount    int64     `json:"boqItemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// listProjects returns every project with its design and BOQ item counts.
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	if h.projects == nil {
		writeError(w, errUnavailable)
		return
	}
	ctx := r.Context()

	projects, err := h.projects.FindAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		designs, err := h.projects.CountDesigns(ctx, p.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := h.projects.CountBOQItems(ctx, p.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, projectResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			DesignCount: designs,
			BOQCount:    items,
			CreatedAt:   p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	if h.projects == nil {
		writeError(w, errUnavailable)
		return
	}
	var req projectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}

	project := &models.Project{Name: req.Name, Description: req.Description}
	if err := h.projects.Create(r.Context(), project); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
	})
}

// deleteProject removes a project. Its designs are kept and detached.
func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if h.projects == nil {
		writeError(w, errUnavailable)
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "projectID")

	project, err := h.projects.FindByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if project == nil {
		writeError(w, errProjectNotFound)
		return
	}
	if err := h.projects.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
