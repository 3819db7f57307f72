package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/matching"
	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	"github.com/teamlance/engine/pkg/logger"
)

// TypeMatchFanout is the task type for matching fan-out after request_booking.
const TypeMatchFanout = "assignment:match_fanout"

// MatchFanoutPayload is the task payload for matching fan-out.
type MatchFanoutPayload struct {
	AssignmentID string `json:"assignment_id"`
}

// MatchTaskHandler notifies every qualifying candidate about a searching slot.
// The engine does not rank or pick a winner; the conditional accept on the
// assignment row arbitrates between whoever responds.
type MatchTaskHandler struct {
	assignmentRepo repository.AssignmentRepository
	candidateRepo  repository.CandidateRepository
	notifyRepo     repository.NotificationRepository
	hub            *relay.Hub
}

func NewMatchTaskHandler(assignmentRepo repository.AssignmentRepository, candidateRepo repository.CandidateRepository, notifyRepo repository.NotificationRepository, hub *relay.Hub) *MatchTaskHandler {
	return &MatchTaskHandler{
		assignmentRepo: assignmentRepo,
		candidateRepo:  candidateRepo,
		notifyRepo:     notifyRepo,
		hub:            hub,
	}
}

func (h *MatchTaskHandler) HandleMatchFanout(ctx context.Context, t *asynq.Task) error {
	var p MatchFanoutPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid match fan-out payload", zap.Error(err))
		return err
	}
	id, err := uuid.Parse(p.AssignmentID)
	if err != nil {
		logger.L().Error("invalid assignment id in task", zap.Error(err))
		return err
	}

	logger.L().Info("handling match fan-out", zap.String("assignment_id", id.String()))

	var a models.Assignment
	if err := h.assignmentRepo.GetByID(ctx, id, &a); err != nil {
		return err
	}
	if a.BookingStatus != models.BookingSearching {
		// accepted or retired while the task was queued; nothing to fan out
		logger.L().Info("assignment no longer searching, skipping fan-out",
			zap.String("assignment_id", id.String()),
			zap.String("booking_status", string(a.BookingStatus)),
		)
		return nil
	}

	candidates, err := h.candidateRepo.ListQualified(ctx, models.CandidateHuman)
	if err != nil {
		return err
	}

	notified := 0
	for _, c := range candidates {
		if c.UserID == nil || !matching.Matches(a.Requirement, c) {
			continue
		}
		n := &models.Notification{
			UserID:       *c.UserID,
			Kind:         models.NotifyBookingOpportunity,
			ProjectID:    a.ProjectID,
			AssignmentID: &a.ID,
			Message: fmt.Sprintf("A %s %s slot is open for booking.",
				a.Requirement.Seniority, a.Requirement.Profession),
		}
		if err := h.notifyRepo.Create(ctx, n); err != nil {
			logger.L().Warn("create opportunity notification failed",
				zap.Error(err),
				zap.String("candidate_id", c.ID.String()),
			)
			continue
		}
		notified++
	}

	logger.L().Info("match fan-out completed",
		zap.String("assignment_id", id.String()),
		zap.Int("candidates_notified", notified),
	)

	if h.hub != nil {
		payload, _ := json.Marshal(map[string]any{
			"assignment_id":  a.ID.String(),
			"booking_status": string(a.BookingStatus),
		})
		h.hub.Broadcast(ctx, relay.Event{
			Type:      relay.EventAssignmentUpdated,
			ProjectID: a.ProjectID,
			Payload:   payload,
		})
	}
	return nil
}
