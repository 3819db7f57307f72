package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teamlance/engine/internal/api/types"
	"github.com/teamlance/engine/internal/services"
)

type ProjectsHandler struct {
	projects services.ProjectService
	kickoff  services.KickoffService
}

func NewProjectsHandler(projects services.ProjectService, kickoff services.KickoffService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, kickoff: kickoff}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	items, err := h.projects.ListProjects(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items[start:end],
		Meta:    &types.Meta{Page: page, PageSize: size, Total: int64(len(items))},
	})
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}

	input := &services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   time.Now(),
	}
	if req.StartDate != "" {
		if d, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			input.StartDate = d
		}
	}
	if req.DueDate != "" {
		if d, err := time.Parse("2006-01-02", req.DueDate); err == nil {
			input.DueDate = &d
		}
	}

	p, err := h.projects.CreateProject(r.Context(), ownerID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: p})
}

// Get returns the authoritative snapshot: the project together with its full
// assignment set, which push consumers use to resynchronize.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ownerID, ok := h.ids(w, r)
	if !ok {
		return
	}
	snap, err := h.projects.GetProject(r.Context(), projectID, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: snap})
}

func (h *ProjectsHandler) Start(w http.ResponseWriter, r *http.Request) {
	projectID, ownerID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req types.StartProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	kickoffTime, err := time.Parse(time.RFC3339, req.KickoffTime)
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "kickoff_time must be RFC3339")
		return
	}

	p, err := h.kickoff.StartProject(r.Context(), projectID, ownerID, kickoffTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

func (h *ProjectsHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.PauseProject)
}

func (h *ProjectsHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.ResumeProject)
}

func (h *ProjectsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.CompleteProject)
}

func (h *ProjectsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.ArchiveProject)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.DeleteProject)
}

func (h *ProjectsHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, projectID, ownerID uuid.UUID) error) {
	projectID, ownerID, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), projectID, ownerID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *ProjectsHandler) ids(w http.ResponseWriter, r *http.Request) (projectID, ownerID uuid.UUID, ok bool) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return uuid.Nil, uuid.Nil, false
	}
	ownerID, ok = authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return uuid.Nil, uuid.Nil, false
	}
	return projectID, ownerID, true
}
