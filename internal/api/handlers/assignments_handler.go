package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/teamlance/engine/internal/api/types"
	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/services"
)

type AssignmentsHandler struct {
	assignments services.AssignmentService
}

func NewAssignmentsHandler(assignments services.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignments}
}

// Configure creates a draft staffing slot on a project.
func (h *AssignmentsHandler) Configure(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return
	}
	ownerID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}

	req, ok := decodeRequirement(w, r)
	if !ok {
		return
	}

	a, err := h.assignments.ConfigureRequirement(r.Context(), projectID, ownerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: a})
}

func (h *AssignmentsHandler) RequestBooking(w http.ResponseWriter, r *http.Request) {
	assignmentID, userID, ok := h.ids(w, r)
	if !ok {
		return
	}
	a, err := h.assignments.RequestBooking(r.Context(), assignmentID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: a})
}

func (h *AssignmentsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	assignmentID, userID, ok := h.ids(w, r)
	if !ok {
		return
	}
	a, err := h.assignments.Accept(r.Context(), assignmentID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: a})
}

func (h *AssignmentsHandler) Decline(w http.ResponseWriter, r *http.Request) {
	assignmentID, userID, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.assignments.Decline(r.Context(), assignmentID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *AssignmentsHandler) EditRequirement(w http.ResponseWriter, r *http.Request) {
	assignmentID, userID, ok := h.ids(w, r)
	if !ok {
		return
	}
	req, ok := decodeRequirement(w, r)
	if !ok {
		return
	}
	a, err := h.assignments.EditRequirement(r.Context(), assignmentID, userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: a})
}

func (h *AssignmentsHandler) ids(w http.ResponseWriter, r *http.Request) (assignmentID, userID uuid.UUID, ok bool) {
	assignmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid assignment id")
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok = authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return uuid.Nil, uuid.Nil, false
	}
	return assignmentID, userID, true
}

func decodeRequirement(w http.ResponseWriter, r *http.Request) (models.Requirement, bool) {
	var req types.RequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return models.Requirement{}, false
	}
	if err := validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return models.Requirement{}, false
	}
	return models.Requirement{
		Profession: req.Profession,
		Seniority:  req.Seniority,
		Languages:  datatypes.JSONSlice[string](req.Languages),
		Expertise:  datatypes.JSONSlice[string](req.Expertise),
		Automated:  req.Automated,
	}, true
}
