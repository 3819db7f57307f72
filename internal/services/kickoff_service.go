package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	"github.com/teamlance/engine/internal/status"
	appErr "github.com/teamlance/engine/pkg/errors"
	"github.com/teamlance/engine/pkg/logger"
)

// KickoffService activates a fully-staffed project. The live slot is reserved
// with a conditional status write BEFORE any side effects run, so a second
// concurrent start fails cleanly with a conflict instead of racing the guard.
// The scaffolding itself (roster, board, storage, meeting, notifications) is
// enqueued as an idempotent best-effort saga handled by the worker.
type KickoffService interface {
	StartProject(ctx context.Context, projectID, ownerID uuid.UUID, kickoffTime time.Time) (*models.Project, error)
}

type kickoffService struct {
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
	asynqClient    *asynq.Client
	hub            *relay.Hub
}

func NewKickoffService(projectRepo repository.ProjectRepository, assignmentRepo repository.AssignmentRepository, client *asynq.Client, hub *relay.Hub) KickoffService {
	return &kickoffService{
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
		asynqClient:    client,
		hub:            hub,
	}
}

var _ KickoffService = (*kickoffService)(nil)

func (s *kickoffService) StartProject(ctx context.Context, projectID, ownerID uuid.UUID, kickoffTime time.Time) (*models.Project, error) {
	logger.L().Info("start project", zap.String("project_id", projectID.String()), zap.Time("kickoff_time", kickoffTime))

	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	if p.Status == models.ProjectLive {
		return nil, appErr.New(appErr.CodeConflict, "project is already live")
	}
	if p.Status.Terminal() {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "project is closed")
	}
	if p.PausedManually {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "project is paused; resume it before starting")
	}

	assignments, err := s.assignmentRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !status.Ready(assignments) {
		return nil, appErr.New(appErr.CodeFailedPrecondition, "not every assignment is accepted")
	}

	// reserve the live slot atomically; a concurrent start sees zero rows
	// affected here and gets a conflict, closing the read-then-act gap
	now := time.Now()
	won, err := s.projectRepo.TransitionStatus(ctx, projectID,
		[]models.ProjectStatus{models.ProjectAwaitingTeam}, models.ProjectLive, &now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, appErr.New(appErr.CodeConflict, "project was started concurrently")
	}

	p.Status = models.ProjectLive
	p.KickedOffAt = &now

	s.enqueueKickoff(ctx, projectID, kickoffTime)
	broadcastStatus(ctx, s.hub, projectID, models.ProjectLive)

	logger.L().Info("project live", zap.String("project_id", projectID.String()))
	return &p, nil
}

func (s *kickoffService) enqueueKickoff(ctx context.Context, projectID uuid.UUID, kickoffTime time.Time) {
	if s.asynqClient == nil {
		logger.L().Warn("asynq client not configured, skipping kickoff enqueue", zap.String("project_id", projectID.String()))
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"project_id":   projectID.String(),
		"kickoff_time": kickoffTime.Format(time.RFC3339),
	})
	task := asynq.NewTask("project:kickoff", payload)
	if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
		// the project is live either way; missing scaffolding is an operator
		// concern, not a user-facing failure
		logger.L().Error("enqueue kickoff task failed", zap.Error(err), zap.String("project_id", projectID.String()))
	}
}
