package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/api/middleware"
	"github.com/okanelab/ledgersheet/internal/domain"
	"github.com/okanelab/ledgersheet/internal/repository"
)

// ProjectsHandler handles project management endpoints.
type ProjectsHandler struct {
	repo repository.ProjectRepository
	log  zerolog.Logger
}

// NewProjectsHandler creates a projects handler.
func NewProjectsHandler(repo repository.ProjectRepository, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, log: log}
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.FindAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list projects")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Project not found")
			return
		}
		h.log.Error().Err(err).Str("project_id", id).Msg("failed to get project")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get project")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// projectRequest is the body for both create and update; update treats every
// field as optional.
type projectRequest struct {
	Name        *string               `json:"name"`
	Code        *string               `json:"code"`
	Description *string               `json:"description"`
	Status      *domain.ProjectStatus `json:"status"`
	StartDate   *string               `json:"start_date"`
	EndDate     *string               `json:"end_date"`
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	in := domain.CreateProjectInput{Name: *req.Name}
	if req.Code != nil {
		in.Code = *req.Code
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	var err error
	if in.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	if in.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	p, err := h.repo.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to create project")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := domain.UpdateProjectInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Status:      req.Status,
	}
	var err error
	if in.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	if in.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	p, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProjectNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, domain.ErrInvalidInput):
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Str("project_id", id).Msg("failed to update project")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to update project")
		}
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("project_id", id).Msg("failed to delete project")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateParamLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
