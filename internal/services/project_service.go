package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamlance/engine/internal/models"
	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/repository"
	appErr "github.com/teamlance/engine/pkg/errors"
	"github.com/teamlance/engine/pkg/logger"
)

// ProjectService owns project CRUD and the explicit administrative
// transitions. Terminal transitions retire every open assignment and stop the
// status aggregator; projects are never hard-deleted.
type ProjectService interface {
	CreateProject(ctx context.Context, ownerID uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID, ownerID uuid.UUID) (*ProjectSnapshot, error)
	ListProjects(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)

	// Manual transitions
	PauseProject(ctx context.Context, projectID, ownerID uuid.UUID) error
	ResumeProject(ctx context.Context, projectID, ownerID uuid.UUID) error

	// Terminal transitions
	CompleteProject(ctx context.Context, projectID, ownerID uuid.UUID) error
	ArchiveProject(ctx context.Context, projectID, ownerID uuid.UUID) error
	DeleteProject(ctx context.Context, projectID, ownerID uuid.UUID) error
}

type CreateProjectInput struct {
	Title       string
	Description string
	StartDate   time.Time
	DueDate     *time.Time
	Budget      *float64
}

// ProjectSnapshot is the authoritative pull-side view consumed by dashboards:
// status is always re-derivable from the full assignment set it carries.
type ProjectSnapshot struct {
	Project     models.Project      `json:"project"`
	Assignments []models.Assignment `json:"assignments"`
}

type projectService struct {
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
	hub            *relay.Hub
}

func NewProjectService(projectRepo repository.ProjectRepository, assignmentRepo repository.AssignmentRepository, hub *relay.Hub) ProjectService {
	return &projectService{projectRepo: projectRepo, assignmentRepo: assignmentRepo, hub: hub}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, ownerID uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	logger.L().Info("create project", zap.String("owner_id", ownerID.String()), zap.String("title", input.Title))

	p := &models.Project{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		Budget:      input.Budget,
		Status:      models.ProjectPaused,
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID, ownerID uuid.UUID) (*ProjectSnapshot, error) {
	p, err := s.owned(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	as, err := s.assignmentRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectSnapshot{Project: *p, Assignments: as}, nil
}

func (s *projectService) ListProjects(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

func (s *projectService) PauseProject(ctx context.Context, projectID, ownerID uuid.UUID) error {
	logger.L().Info("pause project", zap.String("project_id", projectID.String()))

	p, err := s.owned(ctx, projectID, ownerID)
	if err != nil {
		return err
	}
	if p.Status.Terminal() {
		return appErr.New(appErr.CodeFailedPrecondition, "project is closed")
	}
	if err := s.projectRepo.SetPausedManually(ctx, projectID, true, models.ProjectPaused); err != nil {
		return err
	}
	broadcastStatus(ctx, s.hub, projectID, models.ProjectPaused)
	return nil
}

// ResumeProject clears the manual pause and re-derives readiness. A project
// that was live before the pause does not silently resume: it lands in
// awaiting_team and needs a fresh kickoff confirmation.
func (s *projectService) ResumeProject(ctx context.Context, projectID, ownerID uuid.UUID) error {
	logger.L().Info("resume project", zap.String("project_id", projectID.String()))

	p, err := s.owned(ctx, projectID, ownerID)
	if err != nil {
		return err
	}
	if p.Status.Terminal() {
		return appErr.New(appErr.CodeFailedPrecondition, "project is closed")
	}
	if !p.PausedManually {
		return appErr.New(appErr.CodeFailedPrecondition, "project is not paused manually")
	}
	if err := s.projectRepo.SetPausedManually(ctx, projectID, false, models.ProjectPaused); err != nil {
		return err
	}
	if _, err := refreshProjectStatus(ctx, s.projectRepo, s.assignmentRepo, s.hub, projectID); err != nil {
		return err
	}
	return nil
}

func (s *projectService) CompleteProject(ctx context.Context, projectID, ownerID uuid.UUID) error {
	return s.terminate(ctx, projectID, ownerID, models.ProjectCompleted, models.RetireProjectCompleted)
}

func (s *projectService) ArchiveProject(ctx context.Context, projectID, ownerID uuid.UUID) error {
	return s.terminate(ctx, projectID, ownerID, models.ProjectArchived, models.RetireProjectCancelled)
}

func (s *projectService) DeleteProject(ctx context.Context, projectID, ownerID uuid.UUID) error {
	return s.terminate(ctx, projectID, ownerID, models.ProjectDeleted, models.RetireProjectCancelled)
}

func (s *projectService) terminate(ctx context.Context, projectID, ownerID uuid.UUID, to models.ProjectStatus, reason models.RetireReason) error {
	logger.L().Info("terminate project", zap.String("project_id", projectID.String()), zap.String("to", string(to)))

	p, err := s.owned(ctx, projectID, ownerID)
	if err != nil {
		return err
	}
	if p.Status.Terminal() {
		return appErr.New(appErr.CodeFailedPrecondition, "project is already closed").
			WithMeta("status", string(p.Status))
	}

	if err := s.assignmentRepo.RetireOpenByProject(ctx, projectID, reason); err != nil {
		return err
	}

	moved, err := s.projectRepo.TransitionStatus(ctx, projectID, []models.ProjectStatus{
		models.ProjectPaused, models.ProjectAwaitingTeam, models.ProjectLive,
	}, to, nil)
	if err != nil {
		return err
	}
	if !moved {
		return appErr.New(appErr.CodeConflict, "project was closed concurrently")
	}

	broadcastStatus(ctx, s.hub, projectID, to)
	return nil
}

func (s *projectService) owned(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}
