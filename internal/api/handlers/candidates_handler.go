package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/teamlance/engine/internal/api/types"
	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/repository"
)

type CandidatesHandler struct {
	candidateRepo    repository.CandidateRepository
	notificationRepo repository.NotificationRepository
}

func NewCandidatesHandler(candidateRepo repository.CandidateRepository, notificationRepo repository.NotificationRepository) *CandidatesHandler {
	return &CandidatesHandler{candidateRepo: candidateRepo, notificationRepo: notificationRepo}
}

func (h *CandidatesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	var profile models.CandidateProfile
	if err := h.candidateRepo.GetByUserID(r.Context(), userID, &profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: profile})
}

func (h *CandidatesHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	var req types.CandidateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	var profile models.CandidateProfile
	if err := h.candidateRepo.GetByUserID(r.Context(), userID, &profile); err != nil {
		writeError(w, err)
		return
	}

	if req.AvailabilityStatus != "" {
		profile.AvailabilityStatus = models.AvailabilityStatus(req.AvailabilityStatus)
	}
	if req.Profession != "" {
		profile.Profession = req.Profession
	}
	if req.Seniority != "" {
		profile.Seniority = req.Seniority
	}
	if req.Languages != nil {
		profile.Languages = datatypes.JSONSlice[string](req.Languages)
	}
	if req.Expertise != nil {
		profile.Expertise = datatypes.JSONSlice[string](req.Expertise)
	}

	if err := h.candidateRepo.Update(r.Context(), &profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: profile})
}

func (h *CandidatesHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	items, err := h.notificationRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *CandidatesHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.notificationRepo.MarkRead(r.Context(), notificationID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
