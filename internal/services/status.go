package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	"github.com/teamlance/engine/internal/status"
	"github.com/teamlance/engine/pkg/logger"
)

// refreshProjectStatus re-derives the project status from the current
// assignment set and persists it when it changed. Called after every
// assignment mutation; administrative terminal transitions bypass it.
func refreshProjectStatus(ctx context.Context, projects repository.ProjectRepository, assignments repository.AssignmentRepository, hub *relay.Hub, projectID uuid.UUID) (models.ProjectStatus, error) {
	var p models.Project
	if err := projects.GetByID(ctx, projectID, &p); err != nil {
		return "", err
	}
	as, err := assignments.ListByProject(ctx, projectID)
	if err != nil {
		return "", err
	}

	derived := status.Derive(p, as)
	if derived == p.Status {
		return derived, nil
	}

	if err := projects.SetStatus(ctx, projectID, derived); err != nil {
		return "", err
	}
	logger.L().Info("project status derived",
		zap.String("project_id", projectID.String()),
		zap.String("from", string(p.Status)),
		zap.String("to", string(derived)),
	)

	broadcastStatus(ctx, hub, projectID, derived)
	return derived, nil
}

func broadcastStatus(ctx context.Context, hub *relay.Hub, projectID uuid.UUID, st models.ProjectStatus) {
	if hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"status": string(st)})
	hub.Broadcast(ctx, relay.Event{
		Type:      relay.EventProjectStatus,
		ProjectID: projectID,
		Payload:   payload,
	})
}

func broadcastAssignment(ctx context.Context, hub *relay.Hub, a *models.Assignment) {
	if hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"assignment_id":  a.ID.String(),
		"booking_status": string(a.BookingStatus),
	})
	hub.Broadcast(ctx, relay.Event{
		Type:      relay.EventAssignmentUpdated,
		ProjectID: a.ProjectID,
		Payload:   payload,
	})
}
